package counterrec

import "testing"

func TestParseCounterTypeRoundTrip(t *testing.T) {
	want := CounterType{Size: SizeLarge, Type: TypeCounter, Subtype: CounterRate, TimeBase: Timer100NS, Modifiers: ModDelta, DisplaySuffix: DisplayPercent}
	got, err := ParseCounterType(want.Raw())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Fatalf("ParseCounterType(Raw()) = %+v, want %+v", got, want)
	}
}

func TestParseCounterTypeRejectsUnrecognizedSize(t *testing.T) {
	raw := uint32(SizeVariable) // the only 2-bit size pattern without a byteLen
	if _, err := ParseCounterType(raw); err == nil {
		t.Fatal("want error for an unrecognized size")
	}
}

func TestParseCounterTypeRejectsUnrecognizedTimeBase(t *testing.T) {
	raw := uint32(SizeDword) | uint32(maskTimeBase) // the one 2-bit time-base pattern left undefined
	if _, err := ParseCounterType(raw); err == nil {
		t.Fatal("want error for an unrecognized time base")
	}
}
