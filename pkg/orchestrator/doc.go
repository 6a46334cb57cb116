// Package orchestrator implements the chat request orchestration flow
// behind the transport layer: request validation, authentication and
// quota checks, chat creation with generated titles, pipeline execution
// on a detached context, stream registration for resumability, and chat
// deletion.
//
// The orchestrator is the only place where the error taxonomy ordering
// is decided: parse errors precede auth errors, auth precedes quota,
// quota precedes ownership, ownership precedes existence.
package orchestrator
