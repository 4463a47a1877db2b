package nadavr

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Poll timeouts, deliberately short: a disabled source index or a slow
// device just leaves that field at its default.
const (
	infoQueryTimeout   = 2 * time.Second
	sourceQueryTimeout = 1500 * time.Millisecond

	defaultSettle = 100 * time.Millisecond
)

// Device layers the NAD device model on top of the raw Client: cached
// power/volume/mute/source state, identification, and the source
// directory. State is updated by unsolicited frames and by the explicit
// poll/refresh operations; all cached values are last-known and read-only
// to callers.
type Device struct {
	client *Client

	// Settle is the pause inserted between serial poll queries so replies
	// cannot overlap given the single-pending-query design. Zero means
	// the 100ms default.
	Settle time.Duration

	mu       sync.RWMutex
	model    string
	firmware string
	power    bool
	muted    bool
	volumeDB int
	sourceID string

	sources *SourceDirectory

	cbMu     sync.Mutex
	onUpdate func(Frame)
}

// NewDevice wraps client and registers itself as the client's event
// consumer.
func NewDevice(client *Client) *Device {
	d := &Device{
		client:   client,
		volumeDB: VolumeMinDB,
		sources:  NewSourceDirectory(),
	}
	client.OnEvent(d.handleEvent)
	return d
}

// Client returns the underlying connection client.
func (d *Device) Client() *Client {
	return d.client
}

// OnUpdate registers a callback invoked after each unsolicited frame has
// been folded into the cached state.
func (d *Device) OnUpdate(fn func(Frame)) {
	d.cbMu.Lock()
	defer d.cbMu.Unlock()
	d.onUpdate = fn
}

// Sources returns the source directory.
func (d *Device) Sources() *SourceDirectory {
	return d.sources
}

// Model returns the last-known model identifier.
func (d *Device) Model() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.model
}

// Firmware returns the last-known firmware version.
func (d *Device) Firmware() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.firmware
}

// Power returns the last-known power state. A disconnected device reads
// as powered down.
func (d *Device) Power() bool {
	if !d.client.Connected() {
		return false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.power
}

// Muted returns the last-known mute state.
func (d *Device) Muted() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.muted
}

// VolumeDB returns the last-known volume in device dB.
func (d *Device) VolumeDB() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.volumeDB
}

// VolumeLevel returns the last-known volume normalized to [0, 1].
func (d *Device) VolumeLevel() float64 {
	return VolumeToLevel(d.VolumeDB())
}

// SourceID returns the last-known selected source id.
func (d *Device) SourceID() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.sourceID
}

// Source returns the display name of the selected source.
func (d *Device) Source() string {
	id := d.SourceID()
	if id == "" {
		return ""
	}
	return d.sources.Name(id)
}

// PollDeviceInfo queries the model and firmware version. Timed-out
// queries leave the corresponding field unset; only context cancellation
// aborts the sequence.
func (d *Device) PollDeviceInfo(ctx context.Context) error {
	if reply, err := d.client.QueryTimeout(ctx, CmdModelQuery, infoQueryTimeout); err == nil {
		if f := ParseFrame(reply); f.HasValue() && f.Value != "" {
			d.mu.Lock()
			d.model = f.Value
			d.mu.Unlock()
		}
	} else if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	if err := d.settle(ctx); err != nil {
		return err
	}

	if reply, err := d.client.QueryTimeout(ctx, CmdVersionQuery, infoQueryTimeout); err == nil {
		if f := ParseFrame(reply); f.HasValue() && f.Value != "" {
			d.mu.Lock()
			d.firmware = f.Value
			d.mu.Unlock()
		}
	} else if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return nil
}

// PollSources enumerates count source slots (DefaultSourceCount when
// count <= 0), querying each slot's enabled flag and, only for enabled
// slots, its display name. Partial results are expected: a timeout on one
// slot just moves on to the next.
func (d *Device) PollSources(ctx context.Context, count int) error {
	if count <= 0 {
		count = DefaultSourceCount
	}

	for n := 1; n <= count; n++ {
		enabled := false
		if reply, err := d.client.QueryTimeout(ctx, SourceEnabledQuery(n), sourceQueryTimeout); err == nil {
			if f := ParseFrame(reply); f.HasValue() {
				enabled = ParseFlag(f.Value)
				d.sources.SetEnabled(fmt.Sprintf("%d", n), enabled)
			}
		}
		if err := d.settle(ctx); err != nil {
			return err
		}

		if !enabled {
			continue
		}

		if reply, err := d.client.QueryTimeout(ctx, SourceNameQuery(n), sourceQueryTimeout); err == nil {
			if f := ParseFrame(reply); f.HasValue() {
				d.sources.SetName(fmt.Sprintf("%d", n), f.Value)
			}
		}
		if err := d.settle(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Refresh polls the current power state and, when powered on, volume,
// mute and source.
func (d *Device) Refresh(ctx context.Context) error {
	reply, err := d.client.Query(ctx, CmdPowerQuery)
	if err != nil {
		return err
	}
	on := false
	if f := ParseFrame(reply); f.HasValue() {
		on = ParsePower(f.Value)
	}
	d.mu.Lock()
	d.power = on
	d.mu.Unlock()

	if !on {
		return nil
	}

	if err := d.settle(ctx); err != nil {
		return err
	}
	if reply, err := d.client.Query(ctx, CmdVolumeQuery); err == nil {
		if f := ParseFrame(reply); f.HasValue() {
			if db, err := ParseVolume(f.Value); err == nil {
				d.mu.Lock()
				d.volumeDB = db
				d.mu.Unlock()
			}
		}
	}

	if err := d.settle(ctx); err != nil {
		return err
	}
	if reply, err := d.client.Query(ctx, CmdMuteQuery); err == nil {
		if f := ParseFrame(reply); f.HasValue() {
			d.mu.Lock()
			d.muted = ParseFlag(f.Value)
			d.mu.Unlock()
		}
	}

	if err := d.settle(ctx); err != nil {
		return err
	}
	if reply, err := d.client.Query(ctx, CmdSourceQuery); err == nil {
		if f := ParseFrame(reply); f.HasValue() && f.Value != "" {
			d.mu.Lock()
			d.sourceID = f.Value
			d.mu.Unlock()
		}
	}

	return nil
}

// PowerOn turns the device on.
func (d *Device) PowerOn() error {
	if err := d.client.Send(CmdPowerOn); err != nil {
		return err
	}
	d.mu.Lock()
	d.power = true
	d.mu.Unlock()
	return nil
}

// PowerOff puts the device in standby.
func (d *Device) PowerOff() error {
	if err := d.client.Send(CmdPowerOff); err != nil {
		return err
	}
	d.mu.Lock()
	d.power = false
	d.mu.Unlock()
	return nil
}

// SetMuted mutes or unmutes the device.
func (d *Device) SetMuted(mute bool) error {
	cmd := CmdMuteOff
	if mute {
		cmd = CmdMuteOn
	}
	if err := d.client.Send(cmd); err != nil {
		return err
	}
	d.mu.Lock()
	d.muted = mute
	d.mu.Unlock()
	return nil
}

// VolumeUp steps the volume up by one device increment.
func (d *Device) VolumeUp() error {
	return d.client.Send(CmdVolumeUp)
}

// VolumeDown steps the volume down by one device increment.
func (d *Device) VolumeDown() error {
	return d.client.Send(CmdVolumeDown)
}

// SetVolumeDB sets the volume to an absolute dB value, clamped to the
// device range.
func (d *Device) SetVolumeDB(db int) error {
	if db < VolumeMinDB {
		db = VolumeMinDB
	}
	if db > VolumeMaxDB {
		db = VolumeMaxDB
	}
	if err := d.client.Send(VolumeSetCmd(db)); err != nil {
		return err
	}
	d.mu.Lock()
	d.volumeDB = db
	d.mu.Unlock()
	return nil
}

// SetVolumeLevel sets the volume from a unit-interval level.
func (d *Device) SetVolumeLevel(level float64) error {
	return d.SetVolumeDB(LevelToVolume(level))
}

// SelectSource selects an input by display name, resolving polled names
// first and factory defaults second.
func (d *Device) SelectSource(name string) error {
	id, ok := d.sources.IDForName(name)
	if !ok {
		return fmt.Errorf("nadavr: unknown source %q", name)
	}
	return d.SelectSourceID(id)
}

// SelectSourceID selects an input by source id.
func (d *Device) SelectSourceID(id string) error {
	if err := d.client.Send(SourceSetCmd(id)); err != nil {
		return err
	}
	d.mu.Lock()
	d.sourceID = id
	d.mu.Unlock()
	return nil
}

// handleEvent folds an unsolicited frame into the cached state and then
// forwards it to the update callback.
func (d *Device) handleEvent(line string) {
	f := ParseFrame(line)
	if f.HasValue() {
		switch f.Key {
		case "Main.Power":
			d.mu.Lock()
			d.power = ParsePower(f.Value)
			d.mu.Unlock()
		case "Main.Volume":
			if db, err := ParseVolume(f.Value); err == nil {
				d.mu.Lock()
				d.volumeDB = db
				d.mu.Unlock()
			}
		case "Main.Mute":
			d.mu.Lock()
			d.muted = ParseFlag(f.Value)
			d.mu.Unlock()
		case "Main.Source":
			if f.Value != "" {
				d.mu.Lock()
				d.sourceID = f.Value
				d.mu.Unlock()
			}
		default:
			d.sources.Apply(f)
		}
	}

	d.cbMu.Lock()
	fn := d.onUpdate
	d.cbMu.Unlock()
	if fn != nil {
		fn(f)
	}
}

// settle sleeps the inter-query delay, honouring ctx.
func (d *Device) settle(ctx context.Context) error {
	delay := d.Settle
	if delay == 0 {
		delay = defaultSettle
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}
