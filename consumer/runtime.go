package consumer

import (
	"encoding/binary"
	"errors"
	"log"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ratijas/slowmode/counterrec"
	"github.com/ratijas/slowmode/metrics"
	"github.com/ratijas/slowmode/signalflow"
)

const initialBufSize = 4096

// Runtime polls a Poller on a fixed cadence, parses each DataBlock it gets
// back, and fans each object's per-counter columns out to one Decoder per
// counter, lazily created on first sight.
type Runtime struct {
	poller Poller
	query  string
	tick   time.Duration
	m      *metrics.Runtime

	buf []byte // owned by the single poll goroutine; no lock needed

	mu       sync.Mutex
	decoders map[counterrec.CounterId]*Decoder

	token atomic.Bool
	done  chan struct{}
}

// NewRuntime builds a Runtime that polls poller with query (see §6's
// query-name grammar; "" matches every object) every tick.
func NewRuntime(poller Poller, query string, tick time.Duration, m *metrics.Runtime) *Runtime {
	return &Runtime{
		poller:   poller,
		query:    query,
		tick:     tick,
		m:        m,
		buf:      make([]byte, initialBufSize),
		decoders: make(map[counterrec.CounterId]*Decoder),
	}
}

// Start launches the poll loop. It is not safe to call twice.
func (rt *Runtime) Start() {
	rt.done = make(chan struct{})
	pollTx := signalflow.CustomTx(func(struct{}) error { return rt.pollOnce() })
	paced := signalflow.IntervalTx[struct{}](pollTx, rt.tick)
	cancellable := signalflow.Cancellable[struct{}](paced, &rt.token)

	go func() {
		defer close(rt.done)
		for {
			if err := cancellable.Send(struct{}{}); err != nil {
				if err != signalflow.ErrCancelled {
					log.Printf("consumer: poll loop error: %v", err)
				}
				return
			}
		}
	}()
}

// Stop cancels the poll loop and every decoder it has created, waiting for
// all of them to exit.
func (rt *Runtime) Stop() {
	rt.token.Store(true)
	<-rt.done

	rt.mu.Lock()
	decoders := make([]*Decoder, 0, len(rt.decoders))
	for _, d := range rt.decoders {
		decoders = append(decoders, d)
	}
	rt.mu.Unlock()

	for _, d := range decoders {
		d.Stop()
	}
}

// Decoders snapshots the set of per-counter decoders seen so far.
func (rt *Runtime) Decoders() map[counterrec.CounterId]*Decoder {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	out := make(map[counterrec.CounterId]*Decoder, len(rt.decoders))
	for k, v := range rt.decoders {
		out[k] = v
	}
	return out
}

func (rt *Runtime) pollOnce() error {
	start := time.Now()
	defer func() { rt.m.ObservePollLatency(time.Since(start)) }()

	var n int
	var numObjectTypes uint32
	for {
		var err error
		n, numObjectTypes, err = rt.poller.Poll(rt.query, rt.buf)
		if err == nil {
			break
		}
		if errors.Is(err, ErrBufferTooSmall) {
			rt.buf = make([]byte, len(rt.buf)*2)
			continue
		}
		return err
	}
	if numObjectTypes == 0 {
		return nil
	}

	db, err := counterrec.ParseDataBlock(rt.buf[:n])
	if err != nil {
		return err
	}
	for _, obj := range db.ObjectTypes {
		rt.ingestObjectType(obj)
	}
	return nil
}

type instanceRow struct {
	id  counterrec.InstanceId
	raw []byte
}

// ingestObjectType extracts this poll's per-counter column vectors, in
// sorted-instance order (matching the provider's chunk order), and pushes
// one tick to each counter's Decoder.
func (rt *Runtime) ingestObjectType(obj counterrec.ObjectType) {
	var rows []instanceRow
	if obj.NumInstances == -1 {
		if obj.Data.Singleton != nil {
			rows = []instanceRow{{id: counterrec.InstanceIdByName(""), raw: obj.Data.Singleton.Payload}}
		}
	} else {
		rows = make([]instanceRow, len(obj.Data.Instances))
		for i, p := range obj.Data.Instances {
			rows[i] = instanceRow{id: instanceIDFromDef(p.Instance), raw: p.Block.Payload}
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].id.Compare(rows[j].id) < 0 })
	}
	if len(rows) == 0 {
		return
	}

	ids := make([]counterrec.InstanceId, len(rows))
	for i, r := range rows {
		ids[i] = r.id
	}

	// Counters are published as fixed dword columns at a 4-byte stride, in
	// the same order the provider built them (runtime.go's buildObjectType).
	for k, cdef := range obj.Counters {
		byteOffset := k * 4
		values := make([]uint32, len(rows))
		for i, r := range rows {
			if byteOffset+4 > len(r.raw) {
				log.Printf("consumer: counter block too short for %s (have %d bytes, want offset %d)", nameFor(counterrec.CounterId(cdef.NameIndex-obj.NameIndex)), len(r.raw), byteOffset)
				return
			}
			values[i] = binary.LittleEndian.Uint32(r.raw[byteOffset:])
		}

		cid := counterrec.CounterId(cdef.NameIndex - obj.NameIndex)
		dec := rt.decoderFor(cid, ids)
		if !dec.push(values) {
			log.Printf("consumer: %s decoder not accepting pushes (stopped or instance count changed)", nameFor(cid))
		}
	}
}

func (rt *Runtime) decoderFor(cid counterrec.CounterId, ids []counterrec.InstanceId) *Decoder {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if d, ok := rt.decoders[cid]; ok {
		return d
	}
	d := newDecoder(cid, nameFor(cid), ids, rangesForInstance, rt.m)
	rt.decoders[cid] = d
	return d
}

func instanceIDFromDef(def counterrec.InstanceDef) counterrec.InstanceId {
	if def.UniqueID == -1 {
		return counterrec.InstanceIdByName(def.Name)
	}
	return counterrec.InstanceId{UniqueID: def.UniqueID, HasUniqueID: true, Name: def.Name}
}
