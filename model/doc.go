// Package model defines the normalized language model abstraction used by
// flows and delegation strategies, plus a deterministic MockModel for tests
// and examples. Provider adapters live in the sub-packages openai, anthropic
// and gemini.
package model
