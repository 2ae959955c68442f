package utils

import (
	"log"

	"lectoria/backend/config"
	"lectoria/backend/services"

	"github.com/robfig/cron/v3"
)

// StartReconcileScheduler runs the full-catalog counter reconciliation on
// the configured cron spec. The sweep is idempotent, so overlapping or
// redundant runs are harmless.
func StartReconcileScheduler(cfg *config.Config, reconciler *services.ReconcilerService, logger *log.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(cfg.ReconcileCron, func() {
		if err := reconciler.ReconcileAll(); err != nil {
			logger.Printf("scheduled reconciliation failed: %v", err)
			return
		}
		logger.Printf("discipline counters reconciled")
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
