package speech

import (
	"errors"
	"fmt"
)

// ErrProviderUnconfigured means narration is enabled without usable credentials.
var ErrProviderUnconfigured = errors.New("speech provider is not configured")

// SynthesisError wraps a failure to turn one caption into audio.
type SynthesisError struct {
	Text string
	Err  error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesis failed for %q: %v", truncate(e.Text, 40), e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
