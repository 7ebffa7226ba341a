package notify

import (
	"context"

	"github.com/wsn-testbed/clusterhead/internal/log"
)

// LogNotifier records liveness losses in the gateway log only. The default
// for deployments without a mail relay.
type LogNotifier struct {
	logger log.Logger
}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{logger: log.GetLogger().WithField("notifier", "log")}
}

func (n *LogNotifier) Notify(_ context.Context, ev Event) error {
	n.logger.WithFields(map[string]interface{}{
		"event": ev.ID,
		"snid":  ev.SNID,
	}).Warnf("node silent for %s, state purged", ev.Idle)
	return nil
}
