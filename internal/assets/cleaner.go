package assets

import (
	"context"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// TopicCleanupFailed is published with (ref string, err error).
	TopicCleanupFailed = "asset:cleanup_failed"
	// TopicCleanupDone is published with (ref string).
	TopicCleanupDone = "asset:cleanup_done"
)

// Cleaner deletes assets that are no longer referenced. Deletions run on a
// worker pool after the entity write has completed; failures go to the log and
// the event bus and never reach the caller.
type Cleaner struct {
	host    Host
	pool    *ants.Pool
	bus     EventBus.BusPublisher
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewCleaner(host Host, workers int, bus EventBus.BusPublisher) (*Cleaner, error) {
	if workers <= 0 {
		workers = 4
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, errors.Wrap(err, "create cleanup pool")
	}
	return &Cleaner{host: host, pool: pool, bus: bus, timeout: time.Minute}, nil
}

// Discard schedules ref for deletion. Empty refs are ignored.
func (c *Cleaner) Discard(refs ...string) {
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		ref := ref
		c.wg.Add(1)
		if err := c.pool.Submit(func() {
			defer c.wg.Done()
			c.remove(ref)
		}); err != nil {
			c.wg.Done()
			c.failed(ref, errors.Wrap(err, "submit cleanup"))
		}
	}
}

func (c *Cleaner) remove(ref string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	if err := c.host.Delete(ctx, ref); err != nil {
		c.failed(ref, err)
		return
	}
	zap.L().Debug("asset removed", zap.String("ref", ref))
	if c.bus != nil {
		c.bus.Publish(TopicCleanupDone, ref)
	}
}

func (c *Cleaner) failed(ref string, err error) {
	zap.L().Warn("asset cleanup failed", zap.String("ref", ref), zap.Error(err))
	if c.bus != nil {
		c.bus.Publish(TopicCleanupFailed, ref, err)
	}
}

// Wait blocks until every scheduled deletion has finished.
func (c *Cleaner) Wait() {
	c.wg.Wait()
}

// Release waits for pending deletions and stops the pool.
func (c *Cleaner) Release() {
	c.wg.Wait()
	c.pool.Release()
}
