package nadavr

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"strconv"
	"sync"
	"time"
)

// ConnState is the connectivity state of a Client.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

// String returns a readable state name.
func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return fmt.Sprintf("ConnState(%d)", int(s))
	}
}

// Config holds the settings for creating a Client.
type Config struct {
	// Host is the device address. Required.
	Host string

	// Port is the control port (DefaultPort when zero). Earlier firmware
	// generations listen on LegacyPort instead.
	Port int

	// ConnectTimeout bounds connection establishment (default 10s).
	ConnectTimeout time.Duration

	// ReadTimeout bounds one wait for the next inbound frame (default
	// 10s). Expiry is a liveness guard, not an inactivity policy: the
	// read loop just waits again.
	ReadTimeout time.Duration

	// QueryTimeout is the default reply wait for Query (default 2s).
	QueryTimeout time.Duration

	// ReconnectInterval is the fixed delay between reconnection attempts
	// after a lost connection (default 5s).
	ReconnectInterval time.Duration

	// TLSConfig enables TLS for the control connection (nil for plain
	// TCP, which is what the devices speak natively).
	TLSConfig *tls.Config

	// Logger for debug output (nil disables logging).
	Logger *slog.Logger

	// Metrics receives instrumentation when non-nil.
	Metrics *Metrics
}

// DefaultConfig returns a Config for host with default values.
func DefaultConfig(host string) *Config {
	return &Config{
		Host:              host,
		Port:              DefaultPort,
		ConnectTimeout:    DefaultConnectTimeout,
		ReadTimeout:       DefaultReadTimeout,
		QueryTimeout:      DefaultQueryTimeout,
		ReconnectInterval: DefaultReconnectInterval,
	}
}

func (c *Config) withDefaults() *Config {
	out := *c
	if out.Port == 0 {
		out.Port = DefaultPort
	}
	if out.ConnectTimeout == 0 {
		out.ConnectTimeout = DefaultConnectTimeout
	}
	if out.ReadTimeout == 0 {
		out.ReadTimeout = DefaultReadTimeout
	}
	if out.QueryTimeout == 0 {
		out.QueryTimeout = DefaultQueryTimeout
	}
	if out.ReconnectInterval == 0 {
		out.ReconnectInterval = DefaultReconnectInterval
	}
	if out.Logger == nil {
		out.Logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)}))
	}
	return &out
}

// Client is a resilient connection to one NAD device. It owns the socket,
// the background reader, the single pending-query slot and the automatic
// reconnection loop. Any number of goroutines may call Send and Query;
// writes and slot arming are serialized through one exclusive section.
type Client struct {
	config *Config

	// Callbacks. Replaceable, nil-tolerant, invoked outside the client
	// mutex; a panicking callback is recovered and logged so it cannot
	// take down the read loop.
	cbMu      sync.Mutex
	onConnect func(connected bool)
	onEvent   func(frame string)

	// The pending-query rendezvous, mutated by the gateway (arm/cancel)
	// and the reader (fulfill).
	slot querySlot

	// writeMu is the command gateway's exclusive section: it serializes
	// all socket writes and all slot arm operations, so the reader can
	// never observe a reply frame whose query has not armed the slot yet.
	writeMu sync.Mutex

	mu              sync.Mutex
	state           ConnState
	conn            *Conn
	gen             uint64 // connection generation, guards the one disconnect transition
	shouldReconnect bool
	readerDone      chan struct{}
	reconnectStop   context.CancelFunc
	reconnectDone   chan struct{}
}

// NewClient creates a Client. It does not connect.
func NewClient(config *Config) *Client {
	if config == nil {
		config = DefaultConfig("")
	}
	return &Client{config: config.withDefaults()}
}

// OnConnect registers the connectivity-changed callback.
func (c *Client) OnConnect(fn func(connected bool)) {
	c.cbMu.Lock()
	defer c.cbMu.Unlock()
	c.onConnect = fn
}

// OnEvent registers the callback for unsolicited frames. Each frame not
// consumed as a query reply is forwarded verbatim, in arrival order.
func (c *Client) OnEvent(fn func(frame string)) {
	c.cbMu.Lock()
	defer c.cbMu.Unlock()
	c.onEvent = fn
}

// State returns the current connectivity state.
func (c *Client) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connected reports whether the client is connected.
func (c *Client) Connected() bool {
	return c.State() == StateConnected
}

// Addr returns the configured host:port.
func (c *Client) Addr() string {
	return net.JoinHostPort(c.config.Host, strconv.Itoa(c.config.Port))
}

// Connect establishes the connection and starts the background reader. On
// failure the client stays disconnected and no retry is scheduled; the
// reconnection loop only ever follows the loss of an established
// connection. Connect re-enables reconnection after a prior Disconnect.
func (c *Client) Connect(ctx context.Context) error {
	return c.connect(ctx, true)
}

// connect runs one connection attempt. Only user-initiated attempts
// re-enable reconnection; the reconnect loop's own attempts must not
// override a concurrent Disconnect.
func (c *Client) connect(ctx context.Context, enableReconnect bool) error {
	c.mu.Lock()
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.state = StateConnecting
	if enableReconnect {
		c.shouldReconnect = true
	}
	c.gen++
	attempt := c.gen
	c.mu.Unlock()

	addr := c.Addr()
	c.config.Logger.Debug("connecting", "addr", addr)

	dialCtx, cancel := context.WithTimeout(ctx, c.config.ConnectTimeout)
	conn, err := DialContext(dialCtx, addr, c.config.TLSConfig)
	cancel()
	if err != nil {
		c.mu.Lock()
		if c.gen == attempt && c.state == StateConnecting {
			c.state = StateDisconnected
		}
		c.mu.Unlock()
		c.config.Logger.Error("connect failed", "addr", addr, "error", err)
		c.notifyConnectivity(false)
		return err
	}

	if !c.install(conn, attempt) {
		// Disconnect ran while the dial was in flight; the late socket
		// must not outlive it.
		conn.Close()
		return ErrNotConnected
	}

	c.config.Logger.Info("connected", "addr", addr)
	c.config.Metrics.setConnected(true)
	c.notifyConnectivity(true)
	return nil
}

// install adopts a freshly dialed connection for the given attempt and
// starts its reader. It refuses when Disconnect voided the attempt while
// the dial was in flight, so Disconnect stays terminal: no reader is ever
// started after it returns.
func (c *Client) install(conn *Conn, attempt uint64) bool {
	c.mu.Lock()
	if c.gen != attempt || c.state != StateConnecting {
		c.mu.Unlock()
		return false
	}
	c.conn = conn
	c.state = StateConnected
	done := make(chan struct{})
	c.readerDone = done
	c.mu.Unlock()

	go c.readLoop(conn, attempt, done)
	return true
}

// Disconnect tears the connection down for good: it disables reconnection,
// stops the reconnect and reader goroutines and waits for them, closes the
// socket and cancels any pending query. Idempotent.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.shouldReconnect = false
	stop := c.reconnectStop
	reconnectDone := c.reconnectDone
	c.reconnectStop = nil
	conn := c.conn
	readerDone := c.readerDone
	wasConnected := c.state == StateConnected
	c.state = StateDisconnected
	c.gen++ // the running reader's disconnect transition is now void
	c.conn = nil
	c.readerDone = nil
	c.mu.Unlock()

	if stop != nil {
		stop()
	}
	if reconnectDone != nil {
		<-reconnectDone
	}
	if conn != nil {
		conn.Close()
	}
	if readerDone != nil {
		<-readerDone
	}

	c.slot.Cancel(ErrNotConnected)

	if wasConnected {
		c.config.Logger.Info("disconnected")
		c.config.Metrics.setConnected(false)
		c.notifyConnectivity(false)
	}
}

// Send writes one command without awaiting a response. A write error is
// treated as connection loss: the socket is closed and the reader performs
// the disconnect transition.
func (c *Client) Send(cmd string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	conn, err := c.activeConn()
	if err != nil {
		c.config.Logger.Warn("cannot send, not connected", "cmd", cmd)
		return err
	}

	c.config.Logger.Debug("send", "cmd", cmd)
	if err := conn.WriteLine(cmd); err != nil {
		c.config.Logger.Error("send failed", "cmd", cmd, "error", err)
		conn.Close()
		return fmt.Errorf("send %q: %w", cmd, err)
	}
	c.config.Metrics.commandSent()
	return nil
}

// Query sends a command and waits for the next inbound frame as its reply,
// up to the configured QueryTimeout.
func (c *Client) Query(ctx context.Context, cmd string) (string, error) {
	return c.QueryTimeout(ctx, cmd, c.config.QueryTimeout)
}

// QueryTimeout is Query with an explicit reply timeout. A timeout is local
// to this call: the slot is cleared, the connection is untouched, and a
// reply that arrives later is forwarded as an unsolicited frame.
// Cancelling ctx likewise clears the slot with no other side effects.
// Arming a new query while one is outstanding supersedes the old one,
// which fails with ErrQuerySuperseded.
func (c *Client) QueryTimeout(ctx context.Context, cmd string, timeout time.Duration) (string, error) {
	c.writeMu.Lock()
	conn, err := c.activeConn()
	if err != nil {
		c.writeMu.Unlock()
		c.config.Logger.Warn("cannot query, not connected", "cmd", cmd)
		return "", err
	}

	// Arm before the write, under the write lock: the reply can never
	// outrace the armed slot.
	pq := c.slot.Arm()

	c.config.Logger.Debug("query", "cmd", cmd)
	if err := conn.WriteLine(cmd); err != nil {
		c.slot.CancelIf(pq, ErrConnectionLost)
		c.writeMu.Unlock()
		c.config.Logger.Error("query write failed", "cmd", cmd, "error", err)
		conn.Close()
		c.config.Metrics.queryDone("write_error", 0)
		return "", fmt.Errorf("query %q: %w", cmd, err)
	}
	c.writeMu.Unlock()

	start := time.Now()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-pq.done:
		if res.err != nil {
			status := "cancelled"
			switch {
			case errors.Is(res.err, ErrQuerySuperseded):
				status = "superseded"
			case errors.Is(res.err, ErrConnectionLost), errors.Is(res.err, ErrNotConnected):
				status = "connection_lost"
			}
			c.config.Metrics.queryDone(status, time.Since(start))
			return "", res.err
		}
		c.config.Logger.Debug("query reply", "cmd", cmd, "reply", res.frame)
		c.config.Metrics.queryDone("ok", time.Since(start))
		return res.frame, nil

	case <-timer.C:
		if frame, ok := c.slot.CancelIf(pq, nil); ok {
			// The reply raced the timer; its caller is gone, so it joins
			// the unsolicited stream.
			c.dispatchEvent(frame)
		}
		c.config.Logger.Warn("query timeout", "cmd", cmd, "timeout", timeout)
		c.config.Metrics.queryDone("timeout", time.Since(start))
		return "", ErrQueryTimeout

	case <-ctx.Done():
		if frame, ok := c.slot.CancelIf(pq, nil); ok {
			c.dispatchEvent(frame)
		}
		c.config.Logger.Debug("query cancelled", "cmd", cmd)
		c.config.Metrics.queryDone("cancelled", time.Since(start))
		return "", ctx.Err()
	}
}

// activeConn returns the live connection or ErrNotConnected.
func (c *Client) activeConn() (*Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateConnected || c.conn == nil {
		return nil, ErrNotConnected
	}
	return c.conn, nil
}

// readLoop runs for the lifetime of one connected period. Each frame
// either fulfills the armed query or is forwarded to the event callback;
// EOF or any I/O error ends the loop and triggers the disconnect
// transition for this connection generation.
func (c *Client) readLoop(conn *Conn, gen uint64, done chan struct{}) {
	defer close(done)

	for {
		line, err := conn.ReadLine(c.config.ReadTimeout)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				// No frame within the read timeout. Silence alone is
				// not a disconnect; keep waiting.
				continue
			}
			if errors.Is(err, io.EOF) {
				c.config.Logger.Warn("connection closed by device")
			} else {
				c.config.Logger.Error("read failed", "error", err)
			}
			break
		}

		c.config.Logger.Debug("recv", "frame", line)
		if c.slot.Fulfill(line) {
			c.config.Metrics.frameReceived("reply")
			continue
		}
		c.dispatchEvent(line)
	}

	c.handleDisconnect(gen)
}

// handleDisconnect performs the Connected -> Disconnected transition for
// connection generation gen: exactly one connectivity notification, the
// pending query cancelled, and exactly one reconnection loop started
// unless Disconnect disabled it. Stale generations are no-ops, so the
// transition runs once no matter how many paths observe the failure.
func (c *Client) handleDisconnect(gen uint64) {
	c.mu.Lock()
	if c.gen != gen || c.state != StateConnected {
		c.mu.Unlock()
		return
	}
	c.state = StateDisconnected
	conn := c.conn
	c.conn = nil

	if c.shouldReconnect && c.reconnectDone == nil {
		ctx, stop := context.WithCancel(context.Background())
		c.reconnectStop = stop
		c.reconnectDone = make(chan struct{})
		go c.reconnectLoop(ctx, c.reconnectDone)
	}
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	c.slot.Cancel(ErrConnectionLost)

	c.config.Logger.Warn("connection lost")
	c.config.Metrics.setConnected(false)
	c.notifyConnectivity(false)
}

// reconnectLoop retries the connection at a fixed interval until it is
// restored or reconnection is disabled. Deliberately no backoff and no
// attempt cap: the peer is a LAN device that may be power-cycled at any
// time. The loop retires only when, in the same critical section that
// deregisters it, no further reconnect is needed; a drop landing while a
// connect attempt is still in flight keeps the loop alive instead of
// leaving none behind.
func (c *Client) reconnectLoop(ctx context.Context, done chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			c.mu.Lock()
			c.reconnectDone = nil
			c.reconnectStop = nil
			c.mu.Unlock()
			close(done)
			return
		case <-time.After(c.config.ReconnectInterval):
		}

		c.mu.Lock()
		retry := c.shouldReconnect && c.state == StateDisconnected
		c.mu.Unlock()

		if retry {
			c.config.Logger.Info("reconnecting", "addr", c.Addr())
			c.config.Metrics.reconnectAttempt()
			if err := c.connect(ctx, false); err != nil {
				c.config.Logger.Warn("reconnect failed", "error", err)
				continue
			}
		}

		c.mu.Lock()
		if c.shouldReconnect && c.state == StateDisconnected {
			// Dropped again before the loop could retire.
			c.mu.Unlock()
			continue
		}
		c.reconnectDone = nil
		c.reconnectStop = nil
		c.mu.Unlock()
		close(done)
		return
	}
}

// dispatchEvent forwards an unsolicited frame to the registered callback.
func (c *Client) dispatchEvent(frame string) {
	c.cbMu.Lock()
	fn := c.onEvent
	c.cbMu.Unlock()

	if fn == nil {
		c.config.Metrics.frameReceived("dropped")
		return
	}
	c.config.Metrics.frameReceived("event")

	defer func() {
		if r := recover(); r != nil {
			c.config.Logger.Error("event callback panicked", "panic", r, "frame", frame)
		}
	}()
	fn(frame)
}

// notifyConnectivity forwards a connectivity transition to the registered
// callback.
func (c *Client) notifyConnectivity(connected bool) {
	c.cbMu.Lock()
	fn := c.onConnect
	c.cbMu.Unlock()

	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.config.Logger.Error("connect callback panicked", "panic", r)
		}
	}()
	fn(connected)
}
