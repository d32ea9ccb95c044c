package morse

import "fmt"

// SignalError reports an invalid run of ON/OFF bits: an ON run longer than
// three units, or a run whose length doesn't correspond to a dot or dash.
// It is recoverable: the decoder clears its current letter and continues.
type SignalError struct {
	State    bool
	Duration int
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("morse: invalid signal group (on=%v, duration=%d)", e.State, e.Duration)
}

// LetterError reports a completed dot/dash sequence absent from the
// dialect. It is recoverable: the decoder clears its current letter and
// continues.
type LetterError struct {
	Encoding Encoding
}

func (e *LetterError) Error() string {
	return fmt.Sprintf("morse: unknown letter encoding %v", e.Encoding)
}
