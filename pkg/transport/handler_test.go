package transport

import (
	"errors"
	"fmt"
	"testing"
)

func TestInterfaceSatisfaction(t *testing.T) {
	// Compile-time interface checks.
	var _ ChatHandler = (*stubHandler)(nil)
	var _ EventWriter = (*recordingWriter)(nil)
}

func TestErrResumeDisabledIsMatchable(t *testing.T) {
	wrapped := fmt.Errorf("resuming chat: %w", ErrResumeDisabled)
	if !errors.Is(wrapped, ErrResumeDisabled) {
		t.Error("wrapped ErrResumeDisabled not matched by errors.Is")
	}
}
