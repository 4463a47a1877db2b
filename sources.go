package nadavr

import (
	"sort"
	"strconv"
	"sync"
)

// SourceInfo describes one input source of the device.
type SourceInfo struct {
	ID      string
	Name    string
	Enabled bool
}

// SourceDirectory maps source ids to their enabled flag and display name.
// It is built by the device info poller and kept current by unsolicited
// SourceN.Enabled / SourceN.Name events; a disabled source is excluded
// from the enabled listing even when its name remains cached.
type SourceDirectory struct {
	mu      sync.RWMutex
	enabled map[string]bool
	names   map[string]string
}

// NewSourceDirectory creates an empty directory.
func NewSourceDirectory() *SourceDirectory {
	return &SourceDirectory{
		enabled: make(map[string]bool),
		names:   make(map[string]string),
	}
}

// SetEnabled records whether a source is enabled.
func (d *SourceDirectory) SetEnabled(id string, on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enabled[id] = on
}

// SetName records a source's display name. Empty names are ignored.
func (d *SourceDirectory) SetName(id, name string) {
	if name == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.names[id] = name
}

// Enabled reports whether the source is known to be enabled.
func (d *SourceDirectory) Enabled(id string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.enabled[id]
}

// Name returns the display name for a source id, falling back to the
// factory default and finally to "Source <id>".
func (d *SourceDirectory) Name(id string) string {
	d.mu.RLock()
	name := d.names[id]
	d.mu.RUnlock()
	if name != "" {
		return name
	}
	if name, ok := DefaultSourceNames[id]; ok {
		return name
	}
	return "Source " + id
}

// IDForName resolves a display name back to a source id, checking polled
// names first and then the factory defaults.
func (d *SourceDirectory) IDForName(name string) (string, bool) {
	d.mu.RLock()
	for id, n := range d.names {
		if n == name {
			d.mu.RUnlock()
			return id, true
		}
	}
	d.mu.RUnlock()

	for id, n := range DefaultSourceNames {
		if n == name {
			return id, true
		}
	}
	return "", false
}

// EnabledSources lists the enabled sources in numeric id order.
func (d *SourceDirectory) EnabledSources() []SourceInfo {
	d.mu.RLock()
	ids := make([]string, 0, len(d.enabled))
	for id, on := range d.enabled {
		if on {
			ids = append(ids, id)
		}
	}
	d.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool {
		a, _ := strconv.Atoi(ids[i])
		b, _ := strconv.Atoi(ids[j])
		return a < b
	})

	out := make([]SourceInfo, 0, len(ids))
	for _, id := range ids {
		out = append(out, SourceInfo{ID: id, Name: d.Name(id), Enabled: true})
	}
	return out
}

// Apply folds a SourceN.Enabled or SourceN.Name frame into the directory.
// It reports whether the frame was a source attribute.
func (d *SourceDirectory) Apply(f Frame) bool {
	id, attr, ok := ParseSourceKey(f.Key)
	if !ok || !f.HasValue() {
		return false
	}
	switch attr {
	case "Enabled":
		d.SetEnabled(id, ParseFlag(f.Value))
		return true
	case "Name":
		d.SetName(id, f.Value)
		return true
	default:
		return false
	}
}
