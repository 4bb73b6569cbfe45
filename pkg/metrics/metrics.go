// Package metrics keeps simple in-process counters in a tstorage time-series
// store so recent activity can be summed over a time window.
package metrics

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	AssetCleanupFailed = "catalogd_asset_cleanup_failed"
	AssetCleanupDone   = "catalogd_asset_cleanup_done"
	MessageReceived    = "catalogd_message_received"
)

// Store timestamps are nanoseconds and strictly increasing, so every Incr
// lands in order even when several happen within one clock tick.
type Store struct {
	storage tstorage.Storage
	mu      sync.Mutex
	last    int64
}

// New opens a store persisted under workdir/data/metrics. An empty workdir
// keeps the series in memory only.
func New(workdir string) (*Store, error) {
	opts := []tstorage.Option{
		tstorage.WithTimestampPrecision(tstorage.Nanoseconds),
		tstorage.WithPartitionDuration(6 * time.Hour),
		tstorage.WithRetention(7 * 24 * time.Hour),
	}
	if workdir != "" {
		opts = append(opts, tstorage.WithDataPath(filepath.Join(workdir, "data", "metrics")))
	}
	storage, err := tstorage.NewStorage(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "open metrics storage")
	}
	return &Store{storage: storage}, nil
}

// Incr records one occurrence of metric at the current time.
func (s *Store) Incr(metric string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := time.Now().UnixNano()
	if ts <= s.last {
		ts = s.last + 1
	}
	s.last = ts
	err := s.storage.InsertRows([]tstorage.Row{{
		Metric:    metric,
		DataPoint: tstorage.DataPoint{Timestamp: ts, Value: 1},
	}})
	if err != nil {
		zap.L().Warn("metrics: insert failed", zap.String("metric", metric), zap.Error(err))
	}
}

// Sum adds up the values of metric recorded since the given time.
func (s *Store) Sum(metric string, since time.Time) float64 {
	if s == nil {
		return 0
	}
	points, err := s.storage.Select(metric, nil, since.UnixNano(), s.lastOrNow()+1)
	if err != nil {
		if !errors.Is(err, tstorage.ErrNoDataPoints) {
			zap.L().Warn("metrics: select failed", zap.String("metric", metric), zap.Error(err))
		}
		return 0
	}
	var total float64
	for _, p := range points {
		total += p.Value
	}
	return total
}

func (s *Store) lastOrNow() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now := time.Now().UnixNano(); now > s.last {
		return now
	}
	return s.last
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.storage.Close()
}
