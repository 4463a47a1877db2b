package nadavr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVolumeNormalization(t *testing.T) {
	assert.InDelta(t, 0.0, VolumeToLevel(-90), 1e-9)
	assert.InDelta(t, 1.0, VolumeToLevel(0), 1e-9)
	assert.InDelta(t, 0.667, VolumeToLevel(-30), 0.001)

	// Out-of-range input clamps.
	assert.Equal(t, 0.0, VolumeToLevel(-120))
	assert.Equal(t, 1.0, VolumeToLevel(10))
	assert.Equal(t, VolumeMinDB, LevelToVolume(-0.5))
	assert.Equal(t, VolumeMaxDB, LevelToVolume(1.5))
}

func TestVolumeRoundTrip(t *testing.T) {
	for db := VolumeMinDB; db <= VolumeMaxDB; db++ {
		got := LevelToVolume(VolumeToLevel(db))
		if got < db-1 || got > db+1 {
			t.Fatalf("round trip of %d dB drifted to %d", db, got)
		}
	}
}

func TestParseVolume(t *testing.T) {
	db, err := ParseVolume(" -30 ")
	assert.NoError(t, err)
	assert.Equal(t, -30, db)

	_, err = ParseVolume("loud")
	assert.Error(t, err)
}

func TestParseFlag(t *testing.T) {
	for _, v := range []string{"Yes", "yes", "On", "true", "1", " YES "} {
		assert.True(t, ParseFlag(v), "value %q", v)
	}
	for _, v := range []string{"No", "Off", "false", "0", ""} {
		assert.False(t, ParseFlag(v), "value %q", v)
	}
}

func TestParsePower(t *testing.T) {
	assert.True(t, ParsePower("On"))
	assert.True(t, ParsePower("on"))
	assert.False(t, ParsePower("Standby"))
	assert.False(t, ParsePower("Off"))
}

func TestCommandBuilders(t *testing.T) {
	assert.Equal(t, "Main.Volume=-35", VolumeSetCmd(-35))
	assert.Equal(t, "Main.Source=3", SourceSetCmd("3"))
	assert.Equal(t, "Source4.Enabled?", SourceEnabledQuery(4))
	assert.Equal(t, "Source4.Name?", SourceNameQuery(4))
}
