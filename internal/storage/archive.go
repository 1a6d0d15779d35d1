package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/KevinKickass/OpenSenseCore/internal/chronicle"
	"github.com/KevinKickass/OpenSenseCore/internal/types"
	"go.uber.org/zap"
)

// Archive consolidates chronicle logs into one SQLite file.
//
// Events already archived are skipped on re-archive, so repeated runs
// against the same log are safe. RestoreLog rebuilds a log shard that
// can be merged back into a live log via Extend.
type Archive struct {
	queries *Queries
	logger  *zap.Logger
}

type deviceRow struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	Kind      string `db:"kind"`
	Direction string `db:"direction"`
}

type eventRow struct {
	DeviceID  int64  `db:"device_id"`
	Timestamp string `db:"timestamp"`
	Value     string `db:"value"`
}

func NewArchive(path string, logger *zap.Logger) (*Archive, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := Open(path)
	if err != nil {
		return nil, err
	}

	queries, err := LoadQueries(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	a := &Archive{queries: queries, logger: logger}
	if err := a.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func (a *Archive) migrate() error {
	for _, name := range []string{"create-devices-table", "create-events-table"} {
		if _, err := a.queries.Exec(name); err != nil {
			return fmt.Errorf("failed to run %s: %w", name, err)
		}
	}
	return nil
}

// ArchiveLog writes a log's metadata and events into the archive.
func (a *Archive) ArchiveLog(log *chronicle.Log) error {
	metadata := log.Metadata()
	events := log.Events()

	if _, err := a.queries.Exec("upsert-device",
		int64(metadata.ID), metadata.Name, string(metadata.Kind), string(metadata.Direction)); err != nil {
		return fmt.Errorf("failed to archive device %q: %w", metadata.Name, err)
	}

	archived := 0
	for _, event := range events {
		value, err := json.Marshal(event.Value)
		if err != nil {
			return fmt.Errorf("failed to serialize value for %q: %w", metadata.Name, err)
		}
		result, err := a.queries.Exec("insert-event",
			int64(metadata.ID), event.Timestamp.Format(time.RFC3339Nano), string(value))
		if err != nil {
			return fmt.Errorf("failed to archive event for %q: %w", metadata.Name, err)
		}
		if n, err := result.RowsAffected(); err == nil {
			archived += int(n)
		}
	}

	a.logger.Info("log archived",
		zap.String("device", metadata.Name),
		zap.Int("events", len(events)),
		zap.Int("new", archived))
	return nil
}

// RestoreLog rebuilds a log shard for the archived device id.
func (a *Archive) RestoreLog(id types.ID) (*chronicle.Log, error) {
	var dev deviceRow
	if err := a.queries.Get("select-device", &dev, int64(id)); err != nil {
		return nil, fmt.Errorf("failed to find archived device %d: %w", id, err)
	}

	var rows []eventRow
	if err := a.queries.Select("select-events", &rows, int64(id)); err != nil {
		return nil, fmt.Errorf("failed to read archived events for %d: %w", id, err)
	}

	metadata := types.NewMetadata(dev.Name, types.ID(dev.ID), types.Kind(dev.Kind), types.Direction(dev.Direction))
	log := chronicle.NewLog(metadata)

	for _, row := range rows {
		ts, err := time.Parse(time.RFC3339Nano, row.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("corrupt timestamp %q for device %d: %w", row.Timestamp, id, err)
		}
		var value types.Value
		if err := json.Unmarshal([]byte(row.Value), &value); err != nil {
			return nil, fmt.Errorf("corrupt value for device %d at %s: %w", id, row.Timestamp, err)
		}
		if err := log.Push(types.EventAt(ts, value)); err != nil {
			return nil, err
		}
	}
	return log, nil
}

// EventCount reports how many events are archived for a device.
func (a *Archive) EventCount(id types.ID) (int, error) {
	var count int
	if err := a.queries.Get("count-events", &count, int64(id)); err != nil {
		return 0, fmt.Errorf("failed to count archived events for %d: %w", id, err)
	}
	return count, nil
}

// Close releases the underlying database.
func (a *Archive) Close() error {
	return a.queries.db.Close()
}
