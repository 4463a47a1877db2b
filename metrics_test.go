package nadavr

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics

	// The client never nil-checks its Metrics field; these must not panic.
	m.setConnected(true)
	m.reconnectAttempt()
	m.commandSent()
	m.frameReceived("event")
	m.queryDone("ok", time.Second)
}

func TestMetricsTrackClientLifecycle(t *testing.T) {
	f := newFakeDevice(t)
	f.setReply(func(cmd string) string {
		if cmd == CmdPowerQuery {
			return "Main.Power=On"
		}
		return ""
	})

	m := NewMetrics()
	c := newTestClient(t, f, func(cfg *Config) {
		cfg.Metrics = m
	})
	require.NoError(t, c.Connect(context.Background()))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Connected))

	_, err := c.Query(context.Background(), CmdPowerQuery)
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FramesTotal.WithLabelValues("reply")))

	require.NoError(t, c.Send(CmdPowerOn))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CommandsSent))

	c.Disconnect()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Connected))
}

func TestMetricsQueryConnectionLostLabel(t *testing.T) {
	f := newFakeDevice(t)
	m := NewMetrics()
	c := newTestClient(t, f, func(cfg *Config) {
		cfg.Metrics = m
	})
	require.NoError(t, c.Connect(context.Background()))

	errCh := make(chan error, 1)
	go func() {
		_, err := c.QueryTimeout(context.Background(), CmdPowerQuery, 5*time.Second)
		errCh <- err
	}()

	f.waitCommand(t)
	f.dropConn()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, ErrConnectionLost)
	case <-time.After(2 * time.Second):
		t.Fatal("pending query was not cancelled by the disconnect")
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("connection_lost")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("superseded")))
}

func TestMetricsHandlerServesScrape(t *testing.T) {
	m := NewMetrics()
	m.setConnected(true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "nadavr_connected 1")
}
