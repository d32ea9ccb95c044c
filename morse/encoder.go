package morse

import (
	"unicode"

	"github.com/ratijas/slowmode/signalflow"
)

// Encoder accepts characters and pushes the corresponding Morse signal bits
// (ON/OFF) to an inner Tx[bool]. It implements signalflow.Tx[rune].
//
// Internal state is the pending pause: its duration is the max of every
// pause requested since the last reset, and it is written eagerly — each
// request for a longer pause than is currently written emits the
// difference immediately, rather than waiting for the next mark. A
// request for a shorter or equal pause than already written emits
// nothing. This means a trailing pause (after the last character of a
// burst) is always fully committed to the stream by the time Send
// returns, with nothing left to flush.
func NewEncoder(inner signalflow.Tx[bool], dialect Dialect) *Encoder {
	return &Encoder{inner: inner, dialect: dialect}
}

type Encoder struct {
	inner         signalflow.Tx[bool]
	dialect       Dialect
	pauseDuration int
	pauseWritten  int
}

func (e *Encoder) Send(ch rune) error {
	enc := e.dialect.Lookup(ch)
	switch {
	case len(enc) > 0:
		for _, cp := range enc {
			if err := e.resetPause(); err != nil {
				return err
			}
			if err := e.sendOn(cp); err != nil {
				return err
			}
			if err := e.requestPause(SymbolPause.Duration()); err != nil {
				return err
			}
		}
		if err := e.requestPause(LetterPause.Duration()); err != nil {
			return err
		}
	case unicode.IsSpace(ch):
		if err := e.requestPause(WordPause.Duration()); err != nil {
			return err
		}
	default:
		// Unknown, non-whitespace character: reset and emit nothing.
		if err := e.resetPause(); err != nil {
			return err
		}
	}
	return nil
}

// Flush is a no-op: the eager pause model never leaves anything
// unwritten. Kept so callers written against a deferred-flush model still
// compile.
func (e *Encoder) Flush() error {
	return nil
}

// requestPause extends the pending pause to at least units, writing
// whatever portion of that extension hasn't already been written.
func (e *Encoder) requestPause(units int) error {
	if units > e.pauseDuration {
		e.pauseDuration = units
	}
	return e.sendPause()
}

func (e *Encoder) sendPause() error {
	for e.pauseWritten < e.pauseDuration {
		if err := e.inner.Send(false); err != nil {
			return err
		}
		e.pauseWritten++
	}
	return nil
}

// resetPause commits any still-unwritten portion of the pending pause (in
// the eager model there never is one once the caller has returned from
// the last requestPause) and clears the pause state ahead of the next
// mark.
func (e *Encoder) resetPause() error {
	if err := e.sendPause(); err != nil {
		return err
	}
	e.pauseDuration = 0
	e.pauseWritten = 0
	return nil
}

func (e *Encoder) sendOn(cp CodePoint) error {
	var err error
	cp.expandOn(func(bool) {
		if err != nil {
			return
		}
		err = e.inner.Send(true)
	})
	return err
}

// EncodeString encodes s into a slice of signal bits using the ITU dialect,
// for tests and simple callers that don't need a streaming Tx. The
// trailing pause after the last character is always fully committed (the
// encoder's pause model is eager, not deferred).
func EncodeString(s string) []bool {
	var collector signalflow.VecCollectorTx[bool]
	enc := NewEncoder(&collector, ITU)
	for _, r := range s {
		_ = enc.Send(r)
	}
	return collector.Values
}

// EncodeStringFlush is EncodeString; kept as an alias since there is
// never anything left to flush.
func EncodeStringFlush(s string) []bool {
	return EncodeString(s)
}
