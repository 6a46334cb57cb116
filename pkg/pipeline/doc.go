// Package pipeline implements the turn pipeline: the state machine that
// takes an accepted user turn through an optional search sub-workflow,
// streams the generated response as a sequence of events, and persists
// the resulting assistant turn.
package pipeline
