// Package counterrec implements the binary counter-record wire format: the
// nested, variable-length record layout a provider serializes its current
// samples into and a consumer parses back out.
package counterrec

import "fmt"

// Size selects a counter's on-wire data width.
type Size uint32

const (
	SizeDword    Size = 0x00000100
	SizeLarge    Size = 0x00000200
	SizeZero     Size = 0x00000000
	SizeVariable Size = 0x00000300
)

func (s Size) byteLen() (int, bool) {
	switch s {
	case SizeDword:
		return 4, true
	case SizeLarge:
		return 8, true
	case SizeZero:
		return 0, true
	default:
		return 0, false
	}
}

// RawType is the top-level counter-type component: what kind of value a
// counter holds.
type RawType uint32

const (
	TypeNumber  RawType = 0x00000000
	TypeCounter RawType = 0x00000400
	TypeText    RawType = 0x00000800
	TypeZero    RawType = 0x00000C00
)

// Subtype distinguishes the specific shape within a RawType.
type Subtype uint32

const (
	NumberHex     Subtype = 0x00000000
	NumberDecimal Subtype = 0x00010000
	NumberDec1000 Subtype = 0x00020000

	CounterValue     Subtype = 0x00000000
	CounterRate      Subtype = 0x00010000
	CounterFraction  Subtype = 0x00020000
	CounterBase      Subtype = 0x00030000
	CounterElapsed   Subtype = 0x00040000
	CounterQueuelen  Subtype = 0x00050000
	CounterHistogram Subtype = 0x00060000
	CounterPrecision Subtype = 0x00070000

	TextUnicode Subtype = 0x00000000
	TextAscii   Subtype = 0x00010000
)

// TimeBase selects the clock a rate/elapsed counter divides by.
type TimeBase uint32

const (
	TimerTick   TimeBase = 0x00000000
	Timer100NS  TimeBase = 0x00100000
	ObjectTimer TimeBase = 0x00200000
)

// Modifiers is a bitset of calculation modifiers.
type Modifiers uint32

const (
	ModDelta     Modifiers = 0x00400000
	ModDeltaBase Modifiers = 0x00800000
	ModInverse   Modifiers = 0x02000000
	ModMulti     Modifiers = 0x04000000
)

// DisplaySuffix selects how a consumer renders a counter's value.
type DisplaySuffix uint32

const (
	DisplayNone    DisplaySuffix = 0x00000000
	DisplayPerSec  DisplaySuffix = 0x10000000
	DisplayPercent DisplaySuffix = 0x20000000
	DisplaySeconds DisplaySuffix = 0x30000000
	DisplayHidden  DisplaySuffix = 0x40000000
)

const (
	maskSize     = 0x00000300
	maskType     = 0x00000C00
	maskSubtype  = 0x000F0000
	maskTimeBase = 0x00300000
	maskCalcMod  = 0x0FC00000
	maskDisplay  = 0xF0000000
)

// CounterType is the 32-bit packed tag attached to every counter
// definition: the product of a Size, a RawType (with type-specific
// Subtype), a TimeBase, a Modifiers bitset, and a DisplaySuffix.
type CounterType struct {
	Size          Size
	Type          RawType
	Subtype       Subtype
	TimeBase      TimeBase
	Modifiers     Modifiers
	DisplaySuffix DisplaySuffix
}

// Raw packs the fields into the on-wire 32-bit value.
func (c CounterType) Raw() uint32 {
	return uint32(c.Size) | uint32(c.Type) | (uint32(c.Subtype) & maskSubtype) |
		uint32(c.TimeBase) | (uint32(c.Modifiers) & maskCalcMod) | uint32(c.DisplaySuffix)
}

// ParseCounterType unpacks a raw 32-bit counter-type tag, rejecting
// unrecognized Size/TimeBase/DisplaySuffix combinations (RawType's mask
// leaves no unused bit pattern, so every value is recognized there).
func ParseCounterType(raw uint32) (CounterType, error) {
	size := Size(raw & maskSize)
	if _, ok := size.byteLen(); !ok {
		return CounterType{}, fmt.Errorf("counterrec: counter type %#08x has unrecognized size %#x", raw, uint32(size))
	}
	timeBase := TimeBase(raw & maskTimeBase)
	switch timeBase {
	case TimerTick, Timer100NS, ObjectTimer:
	default:
		return CounterType{}, fmt.Errorf("counterrec: counter type %#08x has unrecognized time base %#x", raw, uint32(timeBase))
	}
	display := DisplaySuffix(raw & maskDisplay)
	switch display {
	case DisplayNone, DisplayPerSec, DisplayPercent, DisplaySeconds, DisplayHidden:
	default:
		return CounterType{}, fmt.Errorf("counterrec: counter type %#08x has unrecognized display suffix %#x", raw, uint32(display))
	}
	return CounterType{
		Size:          size,
		Type:          RawType(raw & maskType),
		Subtype:       Subtype(raw & maskSubtype),
		TimeBase:      timeBase,
		Modifiers:     Modifiers(raw & maskCalcMod),
		DisplaySuffix: display,
	}, nil
}

func (c CounterType) String() string {
	return fmt.Sprintf("CounterType{Size:%#x Type:%#x Subtype:%#x TimeBase:%#x Modifiers:%#x Display:%#x}",
		uint32(c.Size), uint32(c.Type), uint32(c.Subtype), uint32(c.TimeBase), uint32(c.Modifiers), uint32(c.DisplaySuffix))
}
