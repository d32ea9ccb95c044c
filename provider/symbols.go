package provider

import "github.com/ratijas/slowmode/counterrec"

// Counter ids, relative to the object's own name_index: the object header
// itself occupies the first pair, and each channel's name/help pair
// follows two apart.
const (
	ChannelSOS    counterrec.CounterId = 2
	ChannelMOTD   counterrec.CounterId = 4
	ChannelCustom counterrec.CounterId = 6
)

var channelName = map[counterrec.CounterId]string{
	ChannelSOS:    "SOS",
	ChannelMOTD:   "MOTD",
	ChannelCustom: "Custom",
}
