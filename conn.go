package nadavr

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"time"
)

// Conn wraps the TCP connection with buffered I/O, write serialization and
// frame-oriented reads. The partial buffer carries bytes of an incomplete
// line across a read deadline so no frame data is lost when a read times
// out mid-line.
type Conn struct {
	raw    net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
	mu     sync.Mutex // protects writes

	partial []byte
}

// NewConn wraps an established net.Conn.
func NewConn(c net.Conn) *Conn {
	return &Conn{
		raw:    c,
		reader: bufio.NewReader(c),
		writer: bufio.NewWriter(c),
	}
}

// DialContext connects to a NAD device at address. A nil tlsConfig means
// plain TCP, which is what the devices themselves speak; TLS covers
// deployments that front the control port with a TLS terminator.
func DialContext(ctx context.Context, address string, tlsConfig *tls.Config) (*Conn, error) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		// Assume the port was omitted.
		host = address
		port = fmt.Sprintf("%d", DefaultPort)
	}
	address = net.JoinHostPort(host, port)

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", address, err)
	}

	if tlsConfig == nil {
		return NewConn(conn), nil
	}

	tlsConn := tls.Client(conn, tlsConfig)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tls handshake %s: %w", address, err)
	}
	return NewConn(tlsConn), nil
}

// WriteLine writes one command frame, CRLF-terminated, and flushes.
func (c *Conn) WriteLine(cmd string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.writer.WriteString(cmd); err != nil {
		return err
	}
	if _, err := c.writer.WriteString("\r\n"); err != nil {
		return err
	}
	return c.writer.Flush()
}

// ReadLine reads the next non-empty frame, waiting at most timeout. A
// deadline expiry surfaces as a net.Error with Timeout() true; bytes of a
// line interrupted mid-read are kept and prepended on the next call.
// Inbound frames are accepted when terminated by '\n' alone, tolerant of
// CRLF.
func (c *Conn) ReadLine(timeout time.Duration) (string, error) {
	if timeout > 0 {
		if err := c.raw.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return "", err
		}
	}

	for {
		data, err := c.reader.ReadBytes('\n')
		if err != nil {
			if len(data) > 0 {
				c.partial = append(c.partial, data...)
			}
			return "", err
		}
		if len(c.partial) > 0 {
			data = append(c.partial, data...)
			c.partial = nil
		}
		line := sanitizeLine(data)
		if line == "" {
			// Blank frames are discarded without being surfaced.
			continue
		}
		return line, nil
	}
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// RemoteAddr returns the remote network address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}
