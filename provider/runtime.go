package provider

import (
	"encoding/binary"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ratijas/slowmode/config"
	"github.com/ratijas/slowmode/counterrec"
	"github.com/ratijas/slowmode/metrics"
	"github.com/ratijas/slowmode/morse"
	"github.com/ratijas/slowmode/rtsm"
	"github.com/ratijas/slowmode/signalflow"
)

// channelCounters lists the counter ids published by every Runtime, in
// wire order.
var channelCounters = []counterrec.CounterId{ChannelSOS, ChannelMOTD, ChannelCustom}

// noInstance is the internal ObjectData key used for the singleton case
// (config.NoInstances): there is no instance table on the wire, so this
// key never itself appears in a serialized InstanceDef, only as a lookup
// handle for the one counter block the object carries.
var noInstance = counterrec.InstanceIdByName("")

// Runtime manages counter workers, shared sample storage, and the query
// handler that serves a host's poll requests, matching the upstream App.
type Runtime struct {
	mu         sync.Mutex
	running    bool
	cfg        config.Config
	systemName string
	metrics    *metrics.Runtime

	data      *counterrec.ObjectData
	instances []counterrec.InstanceId
	workers   []*WorkerThread
}

// NewRuntime builds a Runtime from cfg, reporting to m. systemName is
// embedded in every served DataBlock.
func NewRuntime(cfg config.Config, systemName string, m *metrics.Runtime) *Runtime {
	return &Runtime{cfg: cfg, systemName: systemName, metrics: m}
}

// Instances reports the instance identities the runtime is currently
// publishing (one, the singleton sentinel, if NumInstances is
// config.NoInstances).
func (rt *Runtime) Instances() []counterrec.InstanceId {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return append([]counterrec.InstanceId(nil), rt.instances...)
}

// Start spawns one worker per configured counter; it is a no-op if already
// running.
func (rt *Runtime) Start() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.running {
		return
	}
	rt.running = true

	rt.data = counterrec.NewObjectData()
	rt.instances = instancesFor(rt.cfg.NumInstances)
	for _, c := range channelCounters {
		for _, inst := range rt.instances {
			rt.data.Set(c, inst, counterrec.DwordValue(0))
		}
	}

	tick := time.Duration(rt.cfg.TickIntervalMillis) * time.Millisecond
	providers := []StringsProvider{
		NewConstString("SOS"),
		NewJokeStringsProvider(),
		NewRegistryStringsProvider(rt.cfg.CustomMessage),
	}

	rt.workers = make([]*WorkerThread, 0, len(channelCounters))
	for i, c := range channelCounters {
		wb := &workerBuilder{
			data:      rt.data,
			counter:   c,
			name:      channelName[c],
			instances: rt.instances,
			provider:  providers[i],
			tick:      tick,
			metrics:   rt.metrics,
		}
		rt.workers = append(rt.workers, wb.spawn())
	}
}

// Stop cancels every worker and waits for it to exit; it is a no-op if not
// running. Workers that have already exited are joined without error; any
// panic recovered from one is logged and ignored.
func (rt *Runtime) Stop() {
	rt.mu.Lock()
	if !rt.running {
		rt.mu.Unlock()
		return
	}
	rt.running = false
	workers := rt.workers
	rt.workers = nil
	rt.mu.Unlock()

	for _, w := range workers {
		w.Cancel()
	}
	for _, w := range workers {
		if err := w.Join(); err != nil {
			log.Printf("provider: worker stop error: %v", err)
		}
	}
}

func instancesFor(n int32) []counterrec.InstanceId {
	if n == config.NoInstances {
		return []counterrec.InstanceId{noInstance}
	}
	width := len(strconv.Itoa(int(n)))
	out := make([]counterrec.InstanceId, n)
	for i := range out {
		out[i] = counterrec.InstanceId{
			UniqueID:    int32(i),
			HasUniqueID: true,
			Name:        fmt.Sprintf("Channel %0*d", width, i),
		}
	}
	return out
}

// workerBuilder composes one counter's encoder pipeline:
// morse_encode -> chunks(num_instances) -> interval(tick) -> cancellable(token) -> custom_sink,
// where the custom sink fans each tick's chunk of bits out across one RTSM
// encoder per instance, each with its own deterministic range pair, so a
// poller reading several instances at once can still reconstruct the
// single underlying message.
type workerBuilder struct {
	data      *counterrec.ObjectData
	counter   counterrec.CounterId
	name      string
	instances []counterrec.InstanceId
	provider  StringsProvider
	tick      time.Duration
	metrics   *metrics.Runtime
}

func (wb *workerBuilder) spawn() *WorkerThread {
	return Spawn(func(token *atomic.Bool) { wb.run(token) })
}

func (wb *workerBuilder) run(token *atomic.Bool) {
	n := len(wb.instances)
	if n == 0 {
		n = 1
	}

	rtsmTxs := make([]*rtsm.Tx, n)
	for i := range rtsmTxs {
		instance := wb.instances[i]
		sink := signalflow.CustomTx(func(v int) error {
			wb.data.Set(wb.counter, instance, counterrec.DwordValue(uint32(v)))
			return nil
		})
		rtsmTxs[i] = rtsm.NewTx(sink, RangesForInstance(i))
	}

	commit := signalflow.CustomTx(func(bits []bool) error {
		for i, b := range bits {
			if err := rtsmTxs[i].Send(b); err != nil {
				return err
			}
		}
		wb.metrics.IncTick(wb.name)
		return nil
	})
	cancellable := signalflow.Cancellable[[]bool](commit, token)
	paced := signalflow.IntervalTx[[]bool](cancellable, wb.tick)
	chunked := signalflow.Chunks[bool](paced, n)
	encoder := morse.NewEncoder(chunked, morse.ITU)

outer:
	for {
		// A message that produces no bits (empty, or only pauses already
		// written) never reaches the cancellable stage, so check here too.
		if token.Load() {
			break
		}
		str, err := wb.provider.Next()
		if err != nil {
			log.Printf("provider: %s strings provider error: %v", wb.name, err)
			continue
		}
		for _, ch := range str + " " {
			if err := encoder.Send(ch); err != nil {
				if err != signalflow.ErrCancelled {
					log.Printf("provider: %s worker error: %v", wb.name, err)
				}
				break outer
			}
		}
	}
}

// matchesQuery implements the host's query-name grammar: "Global" or empty
// matches everything; "Costly"/"Foreign" match nothing; otherwise the
// query is whitespace-separated decimal name_index values, and the object
// matches if its own name_index appears among them.
func matchesQuery(query string, objectNameIndex uint32) bool {
	q := strings.TrimSpace(query)
	if q == "" || q == "Global" {
		return true
	}
	if q == "Costly" || q == "Foreign" {
		return false
	}
	for _, tok := range strings.Fields(q) {
		n, err := strconv.ParseUint(tok, 10, 32)
		if err == nil && uint32(n) == objectNameIndex {
			return true
		}
	}
	return false
}

// Collect serves one poll request: if the object matches query, it
// snapshots the shared sample table and serializes it into buf. It never
// panics; callers that need ABI-shaped return values wrap this (see
// host.go).
func (rt *Runtime) Collect(query string, buf []byte) (n int, numObjectTypes uint32, err error) {
	start := time.Now()
	defer func() { rt.metrics.ObservePollLatency(time.Since(start)) }()

	rt.mu.Lock()
	data := rt.data
	instances := append([]counterrec.InstanceId(nil), rt.instances...)
	firstCounter := rt.cfg.FirstCounter
	systemName := rt.systemName
	rt.mu.Unlock()

	if data == nil {
		return 0, 0, nil
	}

	objectNameIndex := firstCounter
	if !matchesQuery(query, objectNameIndex) {
		return 0, 0, nil
	}

	obj, err := buildObjectType(data, instances, firstCounter)
	if err != nil {
		return 0, 0, err
	}

	db := counterrec.DataBlock{
		SystemName:  systemName,
		ObjectTypes: []counterrec.ObjectType{obj},
	}
	n, err = counterrec.SerializeDataBlock(db, buf)
	if err != nil {
		return 0, 0, err
	}
	return n, 1, nil
}

func buildObjectType(data *counterrec.ObjectData, instances []counterrec.InstanceId, firstCounter uint32) (counterrec.ObjectType, error) {
	counters := make([]counterrec.CounterDef, len(channelCounters))
	for i, c := range channelCounters {
		counters[i] = counterrec.CounterDef{
			NameIndex:   firstCounter + uint32(c),
			HelpIndex:   firstCounter + uint32(c) + 1,
			DetailLevel: 0,
			Type: counterrec.CounterType{
				Size:    counterrec.SizeDword,
				Type:    counterrec.TypeNumber,
				Subtype: counterrec.NumberDecimal,
			},
		}
	}

	// One snapshot under a single critical section, so every counter and
	// instance in this poll comes from the same moment.
	type sampleKey struct {
		counter  counterrec.CounterId
		instance counterrec.InstanceId
	}
	samples := make(map[sampleKey]uint32)
	for _, e := range data.Snapshot() {
		samples[sampleKey{e.Counter, e.Instance}] = e.Value.Dword
	}

	payload := func(inst counterrec.InstanceId) []byte {
		buf := make([]byte, 4*len(channelCounters))
		for i, c := range channelCounters {
			binary.LittleEndian.PutUint32(buf[i*4:], samples[sampleKey{c, inst}])
		}
		return buf
	}

	obj := counterrec.ObjectType{
		NameIndex:      firstCounter,
		HelpIndex:      firstCounter + 1,
		DefaultCounter: int32(ChannelSOS),
		Counters:       counters,
	}

	if len(instances) == 1 && instances[0].Equal(noInstance) {
		obj.NumInstances = -1
		obj.Data.Singleton = &counterrec.CounterBlock{Payload: payload(instances[0])}
		return obj, nil
	}

	sorted := append([]counterrec.InstanceId(nil), instances...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Compare(sorted[j]) < 0 })

	obj.NumInstances = int32(len(sorted))
	pairs := make([]counterrec.InstancePair, len(sorted))
	for i, inst := range sorted {
		pairs[i] = counterrec.InstancePair{
			Instance: counterrec.InstanceDef{UniqueID: instanceUniqueID(inst), Name: inst.Name},
			Block:    counterrec.CounterBlock{Payload: payload(inst)},
		}
	}
	obj.Data.Instances = pairs
	return obj, nil
}

func instanceUniqueID(id counterrec.InstanceId) int32 {
	if id.HasUniqueID {
		return id.UniqueID
	}
	return -1
}
