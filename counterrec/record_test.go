package counterrec

import (
	"encoding/binary"
	"reflect"
	"testing"
)

func dwordPayload(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func largePayload(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func twoCounterDefs() []CounterDef {
	return []CounterDef{
		{
			NameIndex: 100, HelpIndex: 101, DetailLevel: 200,
			Type: CounterType{Size: SizeDword, Type: TypeCounter, Subtype: CounterValue, TimeBase: TimerTick},
		},
		{
			NameIndex: 102, HelpIndex: 103, DetailLevel: 200,
			Type: CounterType{Size: SizeLarge, Type: TypeNumber, Subtype: NumberDecimal},
		},
	}
}

func twoCounterPayload(dword uint32, large uint64) []byte {
	out := make([]byte, 0, 12)
	out = append(out, dwordPayload(dword)...)
	out = append(out, largePayload(large)...)
	return out
}

func TestSingletonObjectTypeRoundTrip(t *testing.T) {
	obj := ObjectType{
		NameIndex: 10, HelpIndex: 11, DetailLevel: 200,
		DefaultCounter: 0, NumInstances: -1,
		PerfTime: 111, PerfFreq: 222,
		Counters: twoCounterDefs(),
		Data: ObjectTypeData{
			Singleton: &CounterBlock{Payload: twoCounterPayload(7, 9000)},
		},
	}

	buf := make([]byte, 512)
	n, err := SerializeObjectType(obj, buf)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	got, err := ParseObjectType(buf[:n])
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if got.NameIndex != obj.NameIndex || got.HelpIndex != obj.HelpIndex {
		t.Errorf("name/help index: got %d/%d, want %d/%d", got.NameIndex, got.HelpIndex, obj.NameIndex, obj.HelpIndex)
	}
	if got.NumInstances != -1 {
		t.Errorf("NumInstances = %d, want -1", got.NumInstances)
	}
	if got.PerfTime != 111 || got.PerfFreq != 222 {
		t.Errorf("clock snapshot = %d/%d, want 111/222", got.PerfTime, got.PerfFreq)
	}
	if len(got.Counters) != 2 {
		t.Fatalf("want 2 counters, got %d", len(got.Counters))
	}
	if got.Counters[0].Offset != 0 || got.Counters[0].Size != 4 {
		t.Errorf("counter 0 layout = offset %d size %d, want 0/4", got.Counters[0].Offset, got.Counters[0].Size)
	}
	if got.Counters[1].Offset != 4 || got.Counters[1].Size != 8 {
		t.Errorf("counter 1 layout = offset %d size %d, want 4/8", got.Counters[1].Offset, got.Counters[1].Size)
	}
	if got.Data.Singleton == nil {
		t.Fatal("want singleton data")
	}
	if !reflect.DeepEqual(got.Data.Singleton.Payload, obj.Data.Singleton.Payload) {
		t.Errorf("payload = %v, want %v", got.Data.Singleton.Payload, obj.Data.Singleton.Payload)
	}
}

func TestMultiInstanceObjectTypeRoundTrip(t *testing.T) {
	single := []CounterDef{
		{NameIndex: 200, HelpIndex: 201, Type: CounterType{Size: SizeDword, Type: TypeNumber, Subtype: NumberDecimal}},
	}
	obj := ObjectType{
		NameIndex: 50, HelpIndex: 51, NumInstances: 2,
		DefaultCounter: 0, PerfTime: 1, PerfFreq: 2,
		Counters: single,
		Data: ObjectTypeData{
			Instances: []InstancePair{
				{
					Instance: InstanceDef{UniqueID: -1, Name: "instance-a"},
					Block:    CounterBlock{Payload: dwordPayload(42)},
				},
				{
					Instance: InstanceDef{UniqueID: 7, Name: "instance-b"},
					Block:    CounterBlock{Payload: dwordPayload(43)},
				},
			},
		},
	}

	buf := make([]byte, 512)
	n, err := SerializeObjectType(obj, buf)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	got, err := ParseObjectType(buf[:n])
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if len(got.Data.Instances) != 2 {
		t.Fatalf("want 2 instances, got %d", len(got.Data.Instances))
	}
	a, b := got.Data.Instances[0], got.Data.Instances[1]
	if a.Instance.Name != "instance-a" || a.Instance.hasUniqueID() {
		t.Errorf("instance 0 = %+v, want name-identified instance-a", a.Instance)
	}
	if b.Instance.Name != "instance-b" || b.Instance.UniqueID != 7 {
		t.Errorf("instance 1 = %+v, want unique_id-identified 7/instance-b", b.Instance)
	}
	if !reflect.DeepEqual(a.Block.Payload, dwordPayload(42)) {
		t.Errorf("instance 0 payload = %v, want %v", a.Block.Payload, dwordPayload(42))
	}
	if !reflect.DeepEqual(b.Block.Payload, dwordPayload(43)) {
		t.Errorf("instance 1 payload = %v, want %v", b.Block.Payload, dwordPayload(43))
	}

	if !a.Instance.ID().Equal(InstanceIdByName("instance-a")) {
		t.Errorf("instance 0 ID = %+v, want name key", a.Instance.ID())
	}
	if !b.Instance.ID().Equal(InstanceIdByUniqueID(7)) {
		t.Errorf("instance 1 ID = %+v, want unique_id key", b.Instance.ID())
	}
}

func TestDataBlockRoundTrip(t *testing.T) {
	obj := ObjectType{
		NameIndex: 10, HelpIndex: 11, NumInstances: -1,
		PerfTime: 5, PerfFreq: 6,
		Counters: twoCounterDefs(),
		Data: ObjectTypeData{
			Singleton: &CounterBlock{Payload: twoCounterPayload(1, 2)},
		},
	}
	db := DataBlock{
		SystemName:      "TESTHOST",
		PerfTime:        10,
		PerfFreq:        20,
		PerfTime100nSec: 30,
		ObjectTypes:     []ObjectType{obj},
	}

	buf := make([]byte, 1024)
	n, err := SerializeDataBlock(db, buf)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	got, err := ParseDataBlock(buf[:n])
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if got.SystemName != "TESTHOST" {
		t.Errorf("SystemName = %q, want %q", got.SystemName, "TESTHOST")
	}
	if got.PerfTime != 10 || got.PerfFreq != 20 || got.PerfTime100nSec != 30 {
		t.Errorf("clock snapshot = %d/%d/%d, want 10/20/30", got.PerfTime, got.PerfFreq, got.PerfTime100nSec)
	}
	if len(got.ObjectTypes) != 1 {
		t.Fatalf("want 1 object type, got %d", len(got.ObjectTypes))
	}
	if got.ObjectTypes[0].NameIndex != 10 {
		t.Errorf("object NameIndex = %d, want 10", got.ObjectTypes[0].NameIndex)
	}
}

func TestSerializeObjectTypeInsufficientSpace(t *testing.T) {
	obj := ObjectType{
		NumInstances: -1,
		Counters:     twoCounterDefs(),
		Data: ObjectTypeData{
			Singleton: &CounterBlock{Payload: twoCounterPayload(1, 2)},
		},
	}
	buf := make([]byte, 4)
	if _, err := SerializeObjectType(obj, buf); err != ErrInsufficientSpace {
		t.Fatalf("want ErrInsufficientSpace, got %v", err)
	}
}

func TestInstanceIdCompare(t *testing.T) {
	a := InstanceIdByUniqueID(1)
	b := InstanceIdByUniqueID(2)
	n1 := InstanceIdByName("x")
	n2 := InstanceIdByName("y")

	if a.Compare(b) >= 0 {
		t.Error("unique_id 1 should order before unique_id 2")
	}
	if n1.Compare(n2) >= 0 {
		t.Error("name x should order before name y")
	}
	if a.Compare(n1) <= 0 {
		t.Error("a defined unique_id should order after any undefined id")
	}
	if a.Equal(n1) {
		t.Error("a defined id and an undefined id must never compare equal")
	}
}

func TestNewCounterMetaValidates(t *testing.T) {
	if _, err := NewCounterMeta(1, "odd", "help"); err == nil {
		t.Fatal("want error for odd name_index")
	}
	m, err := NewCounterMeta(10, "name", "help")
	if err != nil {
		t.Fatalf("NewCounterMeta: %v", err)
	}
	if m.HelpIndex != 11 {
		t.Errorf("HelpIndex = %d, want 11", m.HelpIndex)
	}
}
