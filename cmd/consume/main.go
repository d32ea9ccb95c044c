// Command consume polls a provider's HTTP collect endpoint on a fixed
// cadence, decodes each counter's Morse/RTSM stream, and prints the
// decoded text for each as it grows.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/ratijas/slowmode/consumer"
	"github.com/ratijas/slowmode/counterrec"
	"github.com/ratijas/slowmode/metrics"
)

func main() {
	var (
		flagAddr  = flag.String("addr", "http://127.0.0.1:9090", "provider base `url`")
		flagQuery = flag.String("query", "", "query-name filter; empty matches every object")
		flagTick  = flag.Duration("tick", 200*time.Millisecond, "poll `interval`")
	)
	flag.Parse()

	m := metrics.NewRuntime("consumer")
	go func() {
		log.Printf("consume: metrics on :9091/metrics")
		if err := http.ListenAndServe(":9091", m.Handler()); err != nil && err != http.ErrServerClosed {
			log.Printf("consume: metrics server: %v", err)
		}
	}()

	rt := consumer.NewRuntime(httpPoller{base: *flagAddr}, *flagQuery, *flagTick, m)
	rt.Start()
	defer rt.Stop()

	for range time.Tick(2 * time.Second) {
		printDecoders(rt)
	}
}

func printDecoders(rt *consumer.Runtime) {
	decoders := rt.Decoders()
	ids := make([]counterrec.CounterId, 0, len(decoders))
	for id := range decoders {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		d := decoders[id]
		fmt.Printf("%-8s [%s] %s\n", d.Name, d.State(), d.Text())
	}
}

// httpPoller is a consumer.Poller backed by cmd/provide's /collect
// endpoint: the status code distinguishes success, a too-small buffer, and
// a genuine failure, and the object-type count travels in a header.
type httpPoller struct {
	base string
}

func (p httpPoller) Poll(query string, buf []byte) (int, uint32, error) {
	u := p.base + "/collect?query=" + url.QueryEscape(query)
	resp, err := http.Get(u)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return 0, 0, err
		}
		if len(body) > len(buf) {
			return 0, 0, consumer.ErrBufferTooSmall
		}
		n := copy(buf, body)
		numObjectTypes, _ := strconv.Atoi(resp.Header.Get("X-Object-Types"))
		return n, uint32(numObjectTypes), nil
	case http.StatusInsufficientStorage:
		return 0, 0, consumer.ErrBufferTooSmall
	default:
		return 0, 0, fmt.Errorf("consume: poll failed with status %d", resp.StatusCode)
	}
}
