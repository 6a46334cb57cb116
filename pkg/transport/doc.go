// Package transport defines the handler interfaces and middleware chain for
// the chat HTTP/SSE transport layer.
//
// The transport layer bridges external clients and the chat orchestrator.
// It deserializes incoming requests into the core types defined in pkg/api,
// dispatches them for processing, and serializes responses back to the
// client as JSON or as a server-sent event stream.
//
// # Handler Interface
//
// ChatHandler is the single contract between the transport layer and the
// orchestrator: CreateTurn streams generated output, ResumeStream reattaches
// to a recent stream, and DeleteChat removes a chat. The EventWriter
// interface abstracts the streaming output so handlers can emit pipeline
// events without knowing the underlying transport protocol.
//
// # Middleware
//
// The middleware chain wraps ChatHandler with cross-cutting concerns.
// Built-in middleware provides panic recovery, request ID assignment
// (X-Request-ID), and structured logging via log/slog. Custom middleware
// can be added for application-specific concerns.
package transport
