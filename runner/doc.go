// Package runner drives agent execution: it persists the user input, runs the
// root agent, applies event actions to the session store and streams events
// back to the caller. Process offers the one-shot string-in/string-out entry
// point built on an ephemeral session per request.
package runner
