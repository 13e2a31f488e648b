// Package agent provides the concrete agent implementations: BaseAgent with
// shared lifecycle and hierarchy management, ModelAgent for model-backed
// specialists with tool calling, and CoordinatorAgent which routes incoming
// requests to one of its specialists via an injected delegation strategy.
package agent
