package consumer

import (
	"fmt"

	"github.com/ratijas/slowmode/counterrec"
)

// Display names for the counter ids this consumer recognizes. A consumer
// and a provider never exchange these out of band; they're only useful for
// a human-readable label, so an id absent from this map still decodes,
// just under a numeric fallback name (see nameFor).
var channelName = map[counterrec.CounterId]string{
	2: "SOS",
	4: "MOTD",
	6: "Custom",
}

func nameFor(c counterrec.CounterId) string {
	if n, ok := channelName[c]; ok {
		return n
	}
	return fmt.Sprintf("counter %d", c)
}
