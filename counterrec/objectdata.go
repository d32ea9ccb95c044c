package counterrec

import "sync"

type objectDataKey struct {
	counter  CounterId
	instance InstanceId
}

// ObjectData holds the current sample for every (CounterId, InstanceId)
// pair of one counter object, mutated by encoder workers and snapshotted by
// the poll handler, both under the same lock.
type ObjectData struct {
	mu     sync.Mutex
	values map[objectDataKey]Value
}

func NewObjectData() *ObjectData {
	return &ObjectData{values: make(map[objectDataKey]Value)}
}

// Set records the current value for one counter/instance pair. Safe to
// call from any encoder worker goroutine.
func (o *ObjectData) Set(counter CounterId, instance InstanceId, v Value) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.values[objectDataKey{counter, instance}] = v
}

// Get returns the current value for one counter/instance pair, if present.
func (o *ObjectData) Get(counter CounterId, instance InstanceId) (Value, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	v, ok := o.values[objectDataKey{counter, instance}]
	return v, ok
}

// Snapshot returns a shallow copy of every entry, taken under a single
// critical section so a poll observes a consistent cross-counter view.
func (o *ObjectData) Snapshot() []ObjectDataEntry {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]ObjectDataEntry, 0, len(o.values))
	for k, v := range o.values {
		out = append(out, ObjectDataEntry{Counter: k.counter, Instance: k.instance, Value: v})
	}
	return out
}

type ObjectDataEntry struct {
	Counter  CounterId
	Instance InstanceId
	Value    Value
}
