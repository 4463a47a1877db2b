package nadavr

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrame(t *testing.T) {
	f := ParseFrame("Main.Volume=-30")
	assert.Equal(t, "Main.Volume", f.Key)
	assert.Equal(t, "-30", f.Value)
	assert.True(t, f.HasValue())

	f = ParseFrame("Main.Power?")
	assert.Equal(t, "Main.Power?", f.Key)
	assert.Empty(t, f.Value)
	assert.False(t, f.HasValue())

	// Values may themselves contain '='; only the first one splits.
	f = ParseFrame("Source1.Name=A=B")
	assert.Equal(t, "Source1.Name", f.Key)
	assert.Equal(t, "A=B", f.Value)

	// Whitespace around key and value is stripped.
	f = ParseFrame("Main.Mute = On ")
	assert.Equal(t, "Main.Mute", f.Key)
	assert.Equal(t, "On", f.Value)
}

func TestParseSourceKey(t *testing.T) {
	id, attr, ok := ParseSourceKey("Source3.Enabled")
	require.True(t, ok)
	assert.Equal(t, "3", id)
	assert.Equal(t, "Enabled", attr)

	id, attr, ok = ParseSourceKey("Source10.Name")
	require.True(t, ok)
	assert.Equal(t, "10", id)
	assert.Equal(t, "Name", attr)

	for _, key := range []string{"Main.Power", "Source.Name", "SourceX.Name", "Source3", "Source3."} {
		_, _, ok := ParseSourceKey(key)
		assert.False(t, ok, "key %q should not parse", key)
	}
}

func TestSanitizeLine(t *testing.T) {
	assert.Equal(t, "Main.Power=On", sanitizeLine([]byte("Main.Power=On\r\n")))
	assert.Equal(t, "Main.Power=On", sanitizeLine([]byte("  Main.Power=On\n")))
	assert.Empty(t, sanitizeLine([]byte("\r\n")))

	// Invalid UTF-8 bytes are dropped, not surfaced as an error.
	assert.Equal(t, "Main.Model=T778", sanitizeLine([]byte("Main.Model=T\xff778\r\n")))
}

func TestConnReadLine(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	conn := NewConn(client)

	go func() {
		server.Write([]byte("\r\nMain.Power=On\r\nMain.Volume=-30\n"))
	}()

	line, err := conn.ReadLine(time.Second)
	require.NoError(t, err)
	assert.Equal(t, "Main.Power=On", line)

	line, err = conn.ReadLine(time.Second)
	require.NoError(t, err)
	assert.Equal(t, "Main.Volume=-30", line)
}

func TestConnReadLineTimeoutKeepsPartial(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	conn := NewConn(client)

	// First half of a frame, then silence past the read deadline.
	go server.Write([]byte("Main.Mod"))

	_, err := conn.ReadLine(50 * time.Millisecond)
	var ne net.Error
	require.ErrorAs(t, err, &ne)
	assert.True(t, ne.Timeout())

	// The second half completes the interrupted frame.
	go server.Write([]byte("el=T778\r\n"))

	line, err := conn.ReadLine(time.Second)
	require.NoError(t, err)
	assert.Equal(t, "Main.Model=T778", line)
}
