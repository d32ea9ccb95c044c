package counterrec

import "fmt"

const (
	counterDefWireLen  = 32
	objectHeaderLen    = 56
	dataBlockHeaderLen = 48
	instanceHeaderLen  = 24
)

// CounterDef is one counter's definition within an object type: its
// identity (NameIndex/HelpIndex, looked up against an AllCounters catalog
// for display text), its type tag, and its computed Offset/Size within the
// sibling counter block.
type CounterDef struct {
	NameIndex    uint32
	HelpIndex    uint32
	DefaultScale int32
	DetailLevel  uint32
	Type         CounterType

	Offset uint32
	Size   uint32
}

// InstanceDef is one instance's header within a multi-instance object.
type InstanceDef struct {
	ParentObjectTitleIndex uint32
	ParentObjectInstance   uint32
	UniqueID               int32 // -1 means "identify this instance by Name"
	Name                   string
}

func (d InstanceDef) hasUniqueID() bool { return d.UniqueID != -1 }

// ID converts this definition's identity into an InstanceId key.
func (d InstanceDef) ID() InstanceId {
	if d.hasUniqueID() {
		return InstanceIdByUniqueID(d.UniqueID)
	}
	return InstanceIdByName(d.Name)
}

// CounterBlock holds every counter's payload bytes for one instance (or
// the singleton), packed at the offsets computed for the object's
// CounterDefs.
type CounterBlock struct {
	Payload []byte
}

// InstancePair is one (instance, data) entry of a multi-instance object.
type InstancePair struct {
	Instance InstanceDef
	Block    CounterBlock
}

// ObjectTypeData is either a single counter block (NumInstances == -1) or
// a list of instance/block pairs.
type ObjectTypeData struct {
	Singleton *CounterBlock
	Instances []InstancePair
}

// ObjectType is one performance object: its counter definitions and
// current data, singleton or per-instance.
type ObjectType struct {
	NameIndex      uint32
	HelpIndex      uint32
	DetailLevel    uint32
	DefaultCounter int32
	NumInstances   int32 // -1: singleton
	PerfTime       uint64
	PerfFreq       uint64
	Counters       []CounterDef
	Data           ObjectTypeData
}

// DataBlock is the top-level record: one system name and clock snapshot,
// plus every configured object type.
type DataBlock struct {
	SystemName      string
	PerfTime        uint64
	PerfFreq        uint64
	PerfTime100nSec uint64
	ObjectTypes     []ObjectType
}

// layoutCounters fills in Offset/Size for each counter definition (the
// rolling size of preceding counters, each aligned to 4 bytes) and returns
// the total payload size of the counter block they belong to.
func layoutCounters(defs []CounterDef) ([]CounterDef, uint32, error) {
	out := make([]CounterDef, len(defs))
	var offset uint32
	for i, d := range defs {
		size, ok := d.Type.Size.byteLen()
		if !ok {
			return nil, 0, fmt.Errorf("counterrec: counter %d has unsupported variable size", i)
		}
		aligned := uint32(alignUp(size, 4))
		d.Offset = offset
		d.Size = aligned
		out[i] = d
		offset += aligned
	}
	return out, offset, nil
}

func serializeCounterDef(e *bufEncoder, d CounterDef) error {
	if err := e.putU32(counterDefWireLen); err != nil {
		return err
	}
	if err := e.putU32(d.NameIndex); err != nil {
		return err
	}
	if err := e.putU32(d.HelpIndex); err != nil {
		return err
	}
	if err := e.putI32(d.DefaultScale); err != nil {
		return err
	}
	if err := e.putU32(d.DetailLevel); err != nil {
		return err
	}
	if err := e.putU32(d.Type.Raw()); err != nil {
		return err
	}
	if err := e.putU32(d.Size); err != nil {
		return err
	}
	return e.putU32(d.Offset)
}

func parseCounterDef(d *bufDecoder) (CounterDef, error) {
	if _, err := d.u32(); err != nil { // ByteLength, fixed, not needed further
		return CounterDef{}, err
	}
	nameIndex, err := d.u32()
	if err != nil {
		return CounterDef{}, err
	}
	helpIndex, err := d.u32()
	if err != nil {
		return CounterDef{}, err
	}
	defaultScale, err := d.i32()
	if err != nil {
		return CounterDef{}, err
	}
	detailLevel, err := d.u32()
	if err != nil {
		return CounterDef{}, err
	}
	rawType, err := d.u32()
	if err != nil {
		return CounterDef{}, err
	}
	size, err := d.u32()
	if err != nil {
		return CounterDef{}, err
	}
	offset, err := d.u32()
	if err != nil {
		return CounterDef{}, err
	}
	counterType, err := ParseCounterType(rawType)
	if err != nil {
		return CounterDef{}, err
	}
	return CounterDef{
		NameIndex:    nameIndex,
		HelpIndex:    helpIndex,
		DefaultScale: defaultScale,
		DetailLevel:  detailLevel,
		Type:         counterType,
		Size:         size,
		Offset:       offset,
	}, nil
}

func serializeCounterBlock(e *bufEncoder, b CounterBlock) error {
	total := alignUp(4+len(b.Payload), 8)
	if err := e.putU32(uint32(total)); err != nil {
		return err
	}
	if err := e.putBytes(b.Payload); err != nil {
		return err
	}
	pad := total - 4 - len(b.Payload)
	return e.putZero(pad)
}

func parseCounterBlock(d *bufDecoder, payloadLen int) (CounterBlock, error) {
	total, err := d.u32()
	if err != nil {
		return CounterBlock{}, err
	}
	payload, err := d.bytes(payloadLen)
	if err != nil {
		return CounterBlock{}, err
	}
	pad := int(total) - 4 - payloadLen
	if pad > 0 {
		if err := d.skip(pad); err != nil {
			return CounterBlock{}, err
		}
	}
	return CounterBlock{Payload: payload}, nil
}

func serializeInstanceDef(e *bufEncoder, in InstanceDef) error {
	nameLen := u16cstringByteLen(in.Name)
	total := alignUp(instanceHeaderLen+nameLen, 8)
	if err := e.putU32(uint32(total)); err != nil {
		return err
	}
	if err := e.putU32(in.ParentObjectTitleIndex); err != nil {
		return err
	}
	if err := e.putU32(in.ParentObjectInstance); err != nil {
		return err
	}
	if err := e.putI32(in.UniqueID); err != nil {
		return err
	}
	if err := e.putU32(instanceHeaderLen); err != nil { // NameOffset
		return err
	}
	if err := e.putU32(uint32(nameLen)); err != nil { // NameLength
		return err
	}
	written, err := e.putU16cstring(in.Name)
	if err != nil {
		return err
	}
	pad := total - instanceHeaderLen - written
	return e.putZero(pad)
}

func parseInstanceDef(d *bufDecoder) (InstanceDef, error) {
	start := d.consumed
	total, err := d.u32()
	if err != nil {
		return InstanceDef{}, err
	}
	parentTitle, err := d.u32()
	if err != nil {
		return InstanceDef{}, err
	}
	parentInstance, err := d.u32()
	if err != nil {
		return InstanceDef{}, err
	}
	uniqueID, err := d.i32()
	if err != nil {
		return InstanceDef{}, err
	}
	nameOffset, err := d.u32()
	if err != nil {
		return InstanceDef{}, err
	}
	nameLength, err := d.u32()
	if err != nil {
		return InstanceDef{}, err
	}
	// NameOffset is relative to the start of this instance record.
	if err := d.skip(int(nameOffset) - (d.consumed - start)); err != nil {
		return InstanceDef{}, err
	}
	name, err := d.u16cstring(int(nameLength))
	if err != nil {
		return InstanceDef{}, err
	}
	consumedSoFar := d.consumed - start
	if pad := int(total) - consumedSoFar; pad > 0 {
		if err := d.skip(pad); err != nil {
			return InstanceDef{}, err
		}
	}
	return InstanceDef{
		ParentObjectTitleIndex: parentTitle,
		ParentObjectInstance:   parentInstance,
		UniqueID:               uniqueID,
		Name:                   name,
	}, nil
}

// objectTypeLayout computes the sized counter definitions and the total
// wire length obj will occupy, without writing anything.
func objectTypeLayout(obj ObjectType) ([]CounterDef, int, error) {
	counters, _, err := layoutCounters(obj.Counters)
	if err != nil {
		return nil, 0, err
	}

	definitionLen := objectHeaderLen + len(counters)*counterDefWireLen

	dataLen := 0
	switch {
	case obj.NumInstances < 0:
		if obj.Data.Singleton == nil {
			return nil, 0, fmt.Errorf("counterrec: singleton object type missing data")
		}
		dataLen = alignUp(4+len(obj.Data.Singleton.Payload), 8)
	default:
		for _, pair := range obj.Data.Instances {
			nameLen := u16cstringByteLen(pair.Instance.Name)
			dataLen += alignUp(instanceHeaderLen+nameLen, 8)
			dataLen += alignUp(4+len(pair.Block.Payload), 8)
		}
	}
	return counters, definitionLen + dataLen, nil
}

// SerializeObjectType writes obj into buf, returning the number of bytes
// written. Fails with ErrInsufficientSpace if buf is too small.
func SerializeObjectType(obj ObjectType, buf []byte) (int, error) {
	counters, totalLen, err := objectTypeLayout(obj)
	if err != nil {
		return 0, err
	}
	definitionLen := objectHeaderLen + len(counters)*counterDefWireLen

	e := newBufEncoder(buf)
	if err := e.putU32(uint32(totalLen)); err != nil {
		return 0, err
	}
	if err := e.putU32(uint32(definitionLen)); err != nil {
		return 0, err
	}
	if err := e.putU32(objectHeaderLen); err != nil {
		return 0, err
	}
	if err := e.putU32(obj.NameIndex); err != nil {
		return 0, err
	}
	if err := e.putU32(obj.HelpIndex); err != nil {
		return 0, err
	}
	if err := e.putU32(obj.DetailLevel); err != nil {
		return 0, err
	}
	if err := e.putI32(obj.DefaultCounter); err != nil {
		return 0, err
	}
	if err := e.putI32(obj.NumInstances); err != nil {
		return 0, err
	}
	if err := e.putU32(uint32(len(counters))); err != nil {
		return 0, err
	}
	if err := e.putZero(4); err != nil { // reserved
		return 0, err
	}
	if err := e.putU64(obj.PerfTime); err != nil {
		return 0, err
	}
	if err := e.putU64(obj.PerfFreq); err != nil {
		return 0, err
	}

	for _, c := range counters {
		if err := serializeCounterDef(e, c); err != nil {
			return 0, err
		}
	}

	switch {
	case obj.NumInstances < 0:
		if err := serializeCounterBlock(e, *obj.Data.Singleton); err != nil {
			return 0, err
		}
	default:
		for _, pair := range obj.Data.Instances {
			if err := serializeInstanceDef(e, pair.Instance); err != nil {
				return 0, err
			}
			if err := serializeCounterBlock(e, pair.Block); err != nil {
				return 0, err
			}
		}
	}

	return e.consumed, nil
}

// ParseObjectType reads one ObjectType from the start of buf.
func ParseObjectType(buf []byte) (ObjectType, error) {
	d := newBufDecoder(buf)
	totalByteLength, err := d.u32()
	if err != nil {
		return ObjectType{}, err
	}
	if _, err := d.u32(); err != nil { // DefinitionLength, re-derived, not retained
		return ObjectType{}, err
	}
	headerLength, err := d.u32()
	if err != nil {
		return ObjectType{}, err
	}
	nameIndex, err := d.u32()
	if err != nil {
		return ObjectType{}, err
	}
	helpIndex, err := d.u32()
	if err != nil {
		return ObjectType{}, err
	}
	detailLevel, err := d.u32()
	if err != nil {
		return ObjectType{}, err
	}
	defaultCounter, err := d.i32()
	if err != nil {
		return ObjectType{}, err
	}
	numInstances, err := d.i32()
	if err != nil {
		return ObjectType{}, err
	}
	numCounters, err := d.u32()
	if err != nil {
		return ObjectType{}, err
	}
	if err := d.skip(4); err != nil { // reserved
		return ObjectType{}, err
	}
	perfTime, err := d.u64()
	if err != nil {
		return ObjectType{}, err
	}
	perfFreq, err := d.u64()
	if err != nil {
		return ObjectType{}, err
	}

	if err := d.skip(int(headerLength) - d.consumed); err != nil {
		return ObjectType{}, err
	}

	counters := make([]CounterDef, numCounters)
	for i := range counters {
		c, err := parseCounterDef(d)
		if err != nil {
			return ObjectType{}, err
		}
		counters[i] = c
	}

	var data ObjectTypeData
	if numInstances < 0 {
		payloadLen := 0
		for _, c := range counters {
			payloadLen += int(c.Size)
		}
		block, err := parseCounterBlock(d, payloadLen)
		if err != nil {
			return ObjectType{}, err
		}
		data.Singleton = &block
	} else {
		pairs := make([]InstancePair, numInstances)
		payloadLen := 0
		for _, c := range counters {
			payloadLen += int(c.Size)
		}
		for i := range pairs {
			inst, err := parseInstanceDef(d)
			if err != nil {
				return ObjectType{}, err
			}
			block, err := parseCounterBlock(d, payloadLen)
			if err != nil {
				return ObjectType{}, err
			}
			pairs[i] = InstancePair{Instance: inst, Block: block}
		}
		data.Instances = pairs
	}

	if d.consumed != int(totalByteLength) {
		return ObjectType{}, fmt.Errorf("counterrec: object type declared %d bytes, parsed %d", totalByteLength, d.consumed)
	}

	return ObjectType{
		NameIndex:      nameIndex,
		HelpIndex:      helpIndex,
		DetailLevel:    detailLevel,
		DefaultCounter: defaultCounter,
		NumInstances:   numInstances,
		PerfTime:       perfTime,
		PerfFreq:       perfFreq,
		Counters:       counters,
		Data:           data,
	}, nil
}

// SerializeDataBlock writes db into buf, returning the number of bytes
// written.
func SerializeDataBlock(db DataBlock, buf []byte) (int, error) {
	nameLen := u16cstringByteLen(db.SystemName)
	headerLength := alignUp(dataBlockHeaderLen+nameLen, 8)

	objBufs := make([][]byte, len(db.ObjectTypes))
	totalObjLen := 0
	for i, obj := range db.ObjectTypes {
		_, wireLen, err := objectTypeLayout(obj)
		if err != nil {
			return 0, err
		}
		scratch := make([]byte, wireLen)
		n, err := SerializeObjectType(obj, scratch)
		if err != nil {
			return 0, err
		}
		objBufs[i] = scratch[:n]
		totalObjLen += n
	}

	totalLen := headerLength + totalObjLen

	e := newBufEncoder(buf)
	if err := e.putU32(uint32(totalLen)); err != nil {
		return 0, err
	}
	if err := e.putU32(uint32(headerLength)); err != nil {
		return 0, err
	}
	if err := e.putU32(uint32(len(db.ObjectTypes))); err != nil {
		return 0, err
	}
	if err := e.putU32(dataBlockHeaderLen); err != nil { // SystemNameOffset
		return 0, err
	}
	if err := e.putU32(uint32(nameLen)); err != nil {
		return 0, err
	}
	if err := e.putZero(4); err != nil { // reserved
		return 0, err
	}
	if err := e.putU64(db.PerfTime); err != nil {
		return 0, err
	}
	if err := e.putU64(db.PerfFreq); err != nil {
		return 0, err
	}
	if err := e.putU64(db.PerfTime100nSec); err != nil {
		return 0, err
	}
	if _, err := e.putU16cstring(db.SystemName); err != nil {
		return 0, err
	}
	if err := e.align(8); err != nil {
		return 0, err
	}
	for _, ob := range objBufs {
		if err := e.putBytes(ob); err != nil {
			return 0, err
		}
	}
	return e.consumed, nil
}

// ParseDataBlock reads a DataBlock from the start of buf.
func ParseDataBlock(buf []byte) (DataBlock, error) {
	d := newBufDecoder(buf)
	totalByteLength, err := d.u32()
	if err != nil {
		return DataBlock{}, err
	}
	headerLength, err := d.u32()
	if err != nil {
		return DataBlock{}, err
	}
	numObjectTypes, err := d.u32()
	if err != nil {
		return DataBlock{}, err
	}
	if _, err := d.u32(); err != nil { // SystemNameOffset, fixed, not retained
		return DataBlock{}, err
	}
	nameLength, err := d.u32()
	if err != nil {
		return DataBlock{}, err
	}
	if err := d.skip(4); err != nil { // reserved
		return DataBlock{}, err
	}
	perfTime, err := d.u64()
	if err != nil {
		return DataBlock{}, err
	}
	perfFreq, err := d.u64()
	if err != nil {
		return DataBlock{}, err
	}
	perfTime100ns, err := d.u64()
	if err != nil {
		return DataBlock{}, err
	}
	systemName, err := d.u16cstring(int(nameLength))
	if err != nil {
		return DataBlock{}, err
	}

	if err := d.skip(int(headerLength) - d.consumed); err != nil {
		return DataBlock{}, err
	}

	objectTypes := make([]ObjectType, numObjectTypes)
	for i := range objectTypes {
		obj, err := ParseObjectType(d.buf)
		if err != nil {
			return DataBlock{}, err
		}
		objectTypes[i] = obj
		if err := d.skip(objectTotalLen(d.buf)); err != nil {
			return DataBlock{}, err
		}
	}

	if d.consumed != int(totalByteLength) {
		return DataBlock{}, fmt.Errorf("counterrec: data block declared %d bytes, parsed %d", totalByteLength, d.consumed)
	}

	return DataBlock{
		SystemName:      systemName,
		PerfTime:        perfTime,
		PerfFreq:        perfFreq,
		PerfTime100nSec: perfTime100ns,
		ObjectTypes:     objectTypes,
	}, nil
}

// objectTotalLen peeks the TotalByteLength field at the start of buf
// without otherwise consuming it, so ParseDataBlock can advance its own
// decoder by exactly one object type's span after parsing it independently.
func objectTotalLen(buf []byte) int {
	if len(buf) < 4 {
		return 0
	}
	return int(newBufDecoder(buf[:4]).mustU32())
}

func (d *bufDecoder) mustU32() uint32 {
	v, _ := d.u32()
	return v
}
