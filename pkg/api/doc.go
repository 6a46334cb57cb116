// Package api defines the core protocol types of the chat stream
// orchestrator: chats, turns, stream handles, the pipeline event
// variants emitted while a response is generated, the error taxonomy,
// and request validation.
//
// Types here are shared across the pipeline, transport, ledger, and
// stream registry packages and carry no transport or storage concerns.
package api
