package utils

import (
	"context"
	"time"

	"campus/logger"

	"github.com/robfig/cron/v3"
)

// UploadSweepSpec runs the pending-upload sweep every 30 minutes.
const UploadSweepSpec = "*/30 * * * *"

// PendingUploadReconciler removes staged uploads older than ttl.
type PendingUploadReconciler interface {
	ReconcilePendingUploads(ctx context.Context, ttl time.Duration) (int, error)
}

// InitializeUploadScheduler starts the cron job that deletes files uploaded
// for lessons that were never created. The caller stops the returned cron.
func InitializeUploadScheduler(reconciler PendingUploadReconciler, ttl time.Duration, log *logger.Logger) (*cron.Cron, error) {
	log = log.With("upload-scheduler")
	log.Info("Initializing pending upload sweep", logger.Fields{"schedule": UploadSweepSpec, "ttl": ttl})

	c := cron.New()
	_, err := c.AddFunc(UploadSweepSpec, func() {
		RunUploadSweep(context.Background(), reconciler, ttl, log)
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	log.Info("Pending upload sweep started")
	return c, nil
}

// RunUploadSweep performs one sweep, bounded to a few minutes.
func RunUploadSweep(ctx context.Context, reconciler PendingUploadReconciler, ttl time.Duration, log *logger.Logger) int {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	removed, err := reconciler.ReconcilePendingUploads(ctx, ttl)
	if err != nil {
		log.Error("Pending upload sweep failed", err)
		return 0
	}
	log.Debug("Pending upload sweep finished", logger.Fields{"removed": removed})
	return removed
}
