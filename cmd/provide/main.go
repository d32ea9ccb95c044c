// Command provide runs a provider runtime as a standalone process: it
// encodes SOS, a joke-of-the-day stand-in, and a configured custom message
// as Morse/RTSM counter samples, serves them over a small HTTP collect
// endpoint, and exposes Prometheus metrics.
package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/ratijas/slowmode/config"
	"github.com/ratijas/slowmode/provider"
)

func main() {
	var (
		flagConfig     = flag.String("config", "", "path to a key=value config `file` (optional; built-in defaults otherwise)")
		flagSystemName = flag.String("system-name", "", "system name embedded in every served data block (default: hostname)")
		flagAddr       = flag.String("addr", ":9090", "listen `address` for /collect and /metrics")
	)
	flag.Parse()

	cfg := config.Default()
	if *flagConfig != "" {
		f, err := os.Open(*flagConfig)
		if err != nil {
			log.Fatalf("provide: %v", err)
		}
		cfg, err = config.Read(f)
		f.Close()
		if err != nil {
			log.Fatalf("provide: reading %s: %v", *flagConfig, err)
		}
	}

	systemName := *flagSystemName
	if systemName == "" {
		h, err := os.Hostname()
		if err != nil {
			log.Fatalf("provide: %v", err)
		}
		systemName = h
	}

	if status := provider.OpenWithConfig(systemName, cfg); status != provider.StatusSuccess {
		log.Fatalf("provide: Open failed with status %d", status)
	}
	log.Printf("provide: running as %q, first counter %d, tick %dms", systemName, cfg.FirstCounter, cfg.TickIntervalMillis)

	mux := http.NewServeMux()
	mux.Handle("/metrics", provider.Metrics().Handler())
	mux.HandleFunc("/collect", collectHandler)

	srv := &http.Server{Addr: *flagAddr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("provide: serving %s: %v", *flagAddr, err)
		}
	}()
	log.Printf("provide: listening on %s", *flagAddr)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Printf("provide: shutting down")
	srv.Close()
	if status := provider.Close(); status != provider.StatusSuccess {
		log.Printf("provide: Close returned status %d", status)
	}
}

// collectHandler serves one poll over HTTP: the status code distinguishes
// success from a retry-with-a-bigger-buffer request from a genuine
// failure, and the object-type count rides along in a header since the
// body alone doesn't carry it.
func collectHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	buf := make([]byte, 1<<16)
	n, numObjectTypes, status := provider.Collect(query, buf)
	switch status {
	case provider.StatusSuccess:
		w.Header().Set("X-Object-Types", strconv.Itoa(int(numObjectTypes)))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(buf[:n]); err != nil {
			log.Printf("provide: writing collect response: %v", err)
		}
	case provider.StatusInsufficientBuffer:
		w.WriteHeader(http.StatusInsufficientStorage)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
}
