package nadavr

import (
	"fmt"
	"strconv"
	"strings"
)

// VolumeToLevel normalizes an integer dB volume to the unit interval,
// clamped to [0, 1].
func VolumeToLevel(db int) float64 {
	level := float64(db-VolumeMinDB) / float64(VolumeMaxDB-VolumeMinDB)
	if level < 0 {
		return 0
	}
	if level > 1 {
		return 1
	}
	return level
}

// LevelToVolume converts a unit-interval level back to an integer dB
// volume on the device range. Inverse of VolumeToLevel up to rounding.
func LevelToVolume(level float64) int {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	return VolumeMinDB + int(level*float64(VolumeMaxDB-VolumeMinDB)+0.5)
}

// ParseVolume parses a reply value as an integer dB volume.
func ParseVolume(value string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(value))
}

// ParseFlag interprets the device's boolean spellings: Yes/On/True/1.
func ParseFlag(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "on", "true", "1":
		return true
	default:
		return false
	}
}

// ParsePower interprets a Main.Power value; anything but On (Standby,
// Off) reads as powered down.
func ParsePower(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "on")
}

// VolumeSetCmd builds the command setting the volume to db.
func VolumeSetCmd(db int) string {
	return fmt.Sprintf("Main.Volume=%d", db)
}

// SourceSetCmd builds the command selecting the source with the given id.
func SourceSetCmd(id string) string {
	return fmt.Sprintf("Main.Source=%s", id)
}

// SourceEnabledQuery builds the query for whether source n is enabled.
func SourceEnabledQuery(n int) string {
	return fmt.Sprintf("Source%d.Enabled?", n)
}

// SourceNameQuery builds the query for the display name of source n.
func SourceNameQuery(n int) string {
	return fmt.Sprintf("Source%d.Name?", n)
}
