// Package auth provides pluggable authentication for the chat service.
//
// Authentication uses a chain-of-responsibility pattern with three-outcome
// voting: each authenticator returns Yes (identity found), No (credentials
// invalid), or Abstain (can't handle). A configurable default voter decides
// when all authenticators abstain.
//
// The HTTP middleware only attaches the authenticated identity to the
// request context; rejection happens in the request handlers so that
// parse errors can take precedence over auth errors. Entitlements map
// service tiers to usage allowances.
package auth
