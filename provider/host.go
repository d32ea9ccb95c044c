package provider

import (
	"errors"
	"log"
	"sync"

	"github.com/ratijas/slowmode/config"
	"github.com/ratijas/slowmode/counterrec"
	"github.com/ratijas/slowmode/metrics"
)

// Status codes returned at the host ABI boundary (§6): Open/Collect/Close
// never propagate a Go error or panic across this line, only one of these.
const (
	StatusSuccess             uint32 = 0
	StatusInsufficientBuffer  uint32 = 1
	StatusFailure             uint32 = 2
)

var (
	globalMu      sync.Mutex
	globalRuntime *Runtime
	globalMetrics *metrics.Runtime
)

// Open is the provider's fixed ABI entry point: it builds a Runtime from
// built-in defaults and starts it. A recover converts any panic to
// StatusFailure; panics must never cross this boundary.
func Open(context string) (status uint32) {
	return OpenWithConfig(context, config.Default())
}

// OpenWithConfig is Open with an explicit Config, for hosts (such as
// cmd/provide) that read one from a file or the environment before the
// fixed ABI's Open is ever invoked.
func OpenWithConfig(context string, cfg config.Config) (status uint32) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("provider: Open panic: %v", r)
			status = StatusFailure
		}
	}()

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalRuntime != nil {
		return StatusSuccess
	}

	m := metrics.NewRuntime("provider")
	rt := NewRuntime(cfg, context, m)
	rt.Start()

	globalRuntime = rt
	globalMetrics = m
	return StatusSuccess
}

// Collect is the provider's fixed ABI entry point for a poll request: n is
// the number of bytes written to buf, numObjectTypes the number of object
// types among them, status one of the Status constants above.
func Collect(valueName string, buf []byte) (n int, numObjectTypes uint32, status uint32) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("provider: Collect panic: %v", r)
			n, numObjectTypes, status = 0, 0, StatusFailure
		}
	}()

	globalMu.Lock()
	rt := globalRuntime
	globalMu.Unlock()
	if rt == nil {
		return 0, 0, StatusFailure
	}

	n, numObjectTypes, err := rt.Collect(valueName, buf)
	if err != nil {
		if errors.Is(err, counterrec.ErrInsufficientSpace) {
			return 0, 0, StatusInsufficientBuffer
		}
		log.Printf("provider: Collect: %v", err)
		return 0, 0, StatusFailure
	}
	return n, numObjectTypes, StatusSuccess
}

// Close is the provider's fixed ABI entry point for shutdown: it stops the
// runtime and releases the global handle.
func Close() (status uint32) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("provider: Close panic: %v", r)
			status = StatusFailure
		}
	}()

	globalMu.Lock()
	rt := globalRuntime
	globalRuntime = nil
	globalMetrics = nil
	globalMu.Unlock()

	if rt != nil {
		rt.Stop()
	}
	return StatusSuccess
}

// Metrics returns the current run's metrics collector, or nil if the
// runtime is not open. Used by cmd/provide to serve /metrics.
func Metrics() *metrics.Runtime {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalMetrics
}
