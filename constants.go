// Package nadavr implements the NAD AVR control protocol: a line-oriented,
// text-based command/response protocol spoken over a persistent TCP
// connection. The client issues commands, correlates queries with inline
// replies, tolerates an unsolicited event stream interleaved with query
// replies, and recovers automatically from connection loss.
package nadavr

import "time"

// Transport constants
const (
	// DefaultPort is the control port on current NAD firmware.
	DefaultPort = 23

	// LegacyPort is the control port used by earlier firmware generations.
	LegacyPort = 50001

	// DefaultConnectTimeout bounds connection establishment.
	DefaultConnectTimeout = 10 * time.Second

	// DefaultReadTimeout bounds a single wait for the next inbound frame.
	// Expiry is not an error; the read loop simply waits again.
	DefaultReadTimeout = 10 * time.Second

	// DefaultQueryTimeout bounds a query's wait for its reply.
	DefaultQueryTimeout = 2 * time.Second

	// DefaultReconnectInterval is the fixed delay between reconnection
	// attempts after a lost connection. No backoff, no attempt cap.
	DefaultReconnectInterval = 5 * time.Second
)

// Main zone commands. Commands and replies share the Key=Value shape;
// queries are the bare key followed by '?'. The client appends the CRLF
// terminator on the wire.
const (
	CmdPowerOn     = "Main.Power=On"
	CmdPowerOff    = "Main.Power=Standby"
	CmdPowerQuery  = "Main.Power?"
	CmdVolumeUp    = "Main.Volume+"
	CmdVolumeDown  = "Main.Volume-"
	CmdVolumeQuery = "Main.Volume?"
	CmdMuteOn      = "Main.Mute=On"
	CmdMuteOff     = "Main.Mute=Off"
	CmdMuteQuery   = "Main.Mute?"
	CmdSourceQuery = "Main.Source?"

	CmdModelQuery   = "Main.Model?"
	CmdVersionQuery = "Main.Version?"
)

// Volume encoding: an integer decibel value on a fixed range.
const (
	VolumeMinDB = -90
	VolumeMaxDB = 0
)

// DefaultSourceCount is how many SourceN slots the poller enumerates.
const DefaultSourceCount = 9

// DefaultSourceNames maps source ids to the factory input names used when
// the device has not been polled or reports no name for a source.
var DefaultSourceNames = map[string]string{
	"1": "CD",
	"2": "Tuner",
	"3": "Video 1",
	"4": "Video 2",
	"5": "Disc",
	"6": "Tape 1",
	"7": "Aux",
	"8": "TV",
}
