package chronicle

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/KevinKickass/OpenSenseCore/internal/types"
)

// DefaultPrefix is the leading component of generated log filenames.
const DefaultPrefix = "events"

const fileExt = ".json"

// Log is an append-only, timestamp-keyed store of events for one
// device.
//
// A Log is shared between its owning device, any scheduled routine
// that references it, and batch persistence; every operation takes the
// internal lock for its duration. Timestamps are unique keys: pushing
// a duplicate timestamp fails instead of overwriting.
type Log struct {
	mu       sync.Mutex
	metadata types.DeviceMetadata
	events   map[time.Time]types.Event

	// dir is supplied externally by whoever manages storage roots;
	// the log only needs a directory to write into.
	dir    string
	prefix string
}

// logFile is the persisted representation: device metadata plus the
// full timestamp map.
type logFile struct {
	Metadata types.DeviceMetadata      `json:"metadata"`
	Log      map[time.Time]types.Event `json:"log"`
}

func NewLog(metadata types.DeviceMetadata) *Log {
	return &Log{
		metadata: metadata,
		events:   make(map[time.Time]types.Event),
		prefix:   DefaultPrefix,
	}
}

func (l *Log) Metadata() types.DeviceMetadata {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.metadata
}

// SetDir sets the directory save and load operate in.
func (l *Log) SetDir(dir string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dir = dir
}

// SetPrefix overrides the filename prefix.
func (l *Log) SetPrefix(prefix string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if prefix != "" {
		l.prefix = prefix
	}
}

// Rename updates the device name embedded in the log metadata. Kept in
// step with the owning device's explicit rename.
func (l *Log) Rename(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.metadata.Name = name
}

// Filename derives the log's filename from prefix, device name, and
// device id.
func (l *Log) Filename() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filename()
}

func (l *Log) filename() string {
	return fmt.Sprintf("%s_%s_%d%s", l.prefix, l.metadata.Name, l.metadata.ID, fileExt)
}

// FullPath joins the externally supplied directory with the derived
// filename. No directories or files are created.
func (l *Log) FullPath() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return filepath.Join(l.dir, l.filename())
}

// Push inserts an event keyed by its timestamp. A duplicate timestamp
// returns ErrKeyExists and leaves the existing event untouched.
func (l *Log) Push(event types.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := event.Timestamp.UTC()
	if _, ok := l.events[key]; ok {
		return fmt.Errorf("log %q: %s: %w", l.metadata.Name, key.Format(time.RFC3339Nano), types.ErrKeyExists)
	}
	l.events[key] = event
	return nil
}

// Len returns the number of stored events.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

// Events returns stored events ordered by timestamp.
func (l *Log) Events() []types.Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	events := make([]types.Event, 0, len(l.events))
	for _, event := range l.events {
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
	return events
}

// Save writes metadata and the full event map as JSON to the log's
// path. Saving an empty log is refused with ErrContainerEmpty.
func (l *Log) Save() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.events) == 0 {
		return fmt.Errorf("log %q: nothing to save: %w", l.metadata.Name, types.ErrContainerEmpty)
	}

	path := filepath.Join(l.dir, l.filename())
	data, err := json.MarshalIndent(logFile{Metadata: l.metadata, Log: l.events}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize log %q: %w", l.metadata.Name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write log %q: %w", l.metadata.Name, err)
	}
	return nil
}

// Load replaces the in-memory event map with the deserialized one from
// the log's path. Loading into a non-empty log is refused with
// ErrContainerNotEmpty; merging belongs to Extend.
func (l *Log) Load() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.events) != 0 {
		return fmt.Errorf("log %q: cannot load into non-empty log: %w", l.metadata.Name, types.ErrContainerNotEmpty)
	}

	path := filepath.Join(l.dir, l.filename())
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read log %q: %w", l.metadata.Name, err)
	}

	var file logFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to deserialize log %q: %w", l.metadata.Name, err)
	}

	events := make(map[time.Time]types.Event, len(file.Log))
	for ts, event := range file.Log {
		events[ts.UTC()] = event
	}
	l.events = events
	return nil
}

// Extend merges another log's events into this one. Both logs must
// originate from the same device: mismatched metadata returns
// ErrMetadataMismatch. Exists to reassemble archived shards.
func (l *Log) Extend(other *Log) error {
	if other == l {
		return nil
	}

	otherMeta := other.Metadata()
	otherEvents := other.Events()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.metadata != otherMeta {
		return fmt.Errorf("log %q: cannot extend from %q: %w", l.metadata.Name, otherMeta.Name, types.ErrMetadataMismatch)
	}
	for _, event := range otherEvents {
		key := event.Timestamp.UTC()
		if _, ok := l.events[key]; ok {
			return fmt.Errorf("log %q: %s: %w", l.metadata.Name, key.Format(time.RFC3339Nano), types.ErrKeyExists)
		}
		l.events[key] = event
	}
	return nil
}
