package app

import (
	"github.com/pkg/errors"
	"github.com/verdantlabs/catalogd/internal/assets"
	"github.com/verdantlabs/catalogd/pkg/metrics"
	"go.uber.org/zap"
)

// TopicMessageReceived is published with (id int64, priority string) after a
// contact-form message is stored.
const TopicMessageReceived = "message:received"

func (a *Application) subscribeEvents() error {
	subs := map[string]interface{}{
		assets.TopicCleanupFailed: func(ref string, err error) {
			a.metrics.Incr(metrics.AssetCleanupFailed)
		},
		assets.TopicCleanupDone: func(ref string) {
			a.metrics.Incr(metrics.AssetCleanupDone)
		},
		TopicMessageReceived: func(id int64, priority string) {
			a.metrics.Incr(metrics.MessageReceived)
			zap.L().Info("message received", zap.Int64("id", id), zap.String("priority", priority))
		},
	}
	for topic, fn := range subs {
		if err := a.bus.Subscribe(topic, fn); err != nil {
			return errors.Wrapf(err, "subscribe %s", topic)
		}
	}
	return nil
}
