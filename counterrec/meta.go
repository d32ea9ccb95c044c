package counterrec

import "fmt"

// CounterMeta names one counter: the even name_index/name_value pair and
// its odd, adjacent help_index/help_value pair.
type CounterMeta struct {
	NameIndex uint32
	NameValue string
	HelpIndex uint32
	HelpValue string
}

// NewCounterMeta validates the name/help index invariant before
// constructing a CounterMeta: name_index even, help_index == name_index+1.
func NewCounterMeta(nameIndex uint32, nameValue, helpValue string) (CounterMeta, error) {
	if nameIndex%2 != 0 {
		return CounterMeta{}, fmt.Errorf("counterrec: name_index %d must be even", nameIndex)
	}
	return CounterMeta{
		NameIndex: nameIndex,
		NameValue: nameValue,
		HelpIndex: nameIndex + 1,
		HelpValue: helpValue,
	}, nil
}

// AllCounters is the ordered mapping a provider publishes from name_index
// to its CounterMeta.
type AllCounters struct {
	order []uint32
	byIdx map[uint32]CounterMeta
}

func NewAllCounters() *AllCounters {
	return &AllCounters{byIdx: make(map[uint32]CounterMeta)}
}

func (a *AllCounters) Add(m CounterMeta) {
	if _, exists := a.byIdx[m.NameIndex]; !exists {
		a.order = append(a.order, m.NameIndex)
	}
	a.byIdx[m.NameIndex] = m
}

func (a *AllCounters) Get(nameIndex uint32) (CounterMeta, bool) {
	m, ok := a.byIdx[nameIndex]
	return m, ok
}

// InOrder returns every CounterMeta in the order it was added.
func (a *AllCounters) InOrder() []CounterMeta {
	out := make([]CounterMeta, len(a.order))
	for i, idx := range a.order {
		out[i] = a.byIdx[idx]
	}
	return out
}
