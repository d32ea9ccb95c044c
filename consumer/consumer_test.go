package consumer_test

import (
	"errors"
	"testing"
	"time"

	"github.com/ratijas/slowmode/config"
	"github.com/ratijas/slowmode/consumer"
	"github.com/ratijas/slowmode/counterrec"
	"github.com/ratijas/slowmode/metrics"
	"github.com/ratijas/slowmode/provider"
)

// providerPoller adapts an in-process provider.Runtime to consumer.Poller,
// the shape a real deployment's transport client would present.
type providerPoller struct{ rt *provider.Runtime }

func (p providerPoller) Poll(query string, buf []byte) (int, uint32, error) {
	n, numObjectTypes, err := p.rt.Collect(query, buf)
	if err != nil {
		if errors.Is(err, counterrec.ErrInsufficientSpace) {
			return 0, 0, consumer.ErrBufferTooSmall
		}
		return 0, 0, err
	}
	return n, numObjectTypes, nil
}

func TestConsumerDecodesProviderOutput(t *testing.T) {
	cfg := config.Default()
	cfg.FirstCounter = 300
	cfg.TickIntervalMillis = 5
	cfg.NumInstances = config.NoInstances
	cfg.CustomMessage = "HELLO"

	pm := metrics.NewRuntime("consumer-test-provider")
	prt := provider.NewRuntime(cfg, "HOST", pm)
	prt.Start()
	defer prt.Stop()

	cm := metrics.NewRuntime("consumer-test-consumer")
	crt := consumer.NewRuntime(providerPoller{prt}, "", 5*time.Millisecond, cm)
	crt.Start()
	defer crt.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		decoders := crt.Decoders()
		if len(decoders) == 3 {
			allRunning := true
			for _, d := range decoders {
				if d.State() != consumer.StateRunning {
					allRunning = false
				}
			}
			if allRunning {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
	}

	decoders := crt.Decoders()
	if len(decoders) != 3 {
		t.Fatalf("got %d decoders, want 3 (SOS, MOTD, Custom)", len(decoders))
	}
	for cid, d := range decoders {
		if d.State() != consumer.StateRunning {
			t.Errorf("decoder for counter %d state = %v, want running", cid, d.State())
		}
		if d.Text() == "" {
			t.Errorf("decoder for counter %d produced no text yet", cid)
		}
	}
}
