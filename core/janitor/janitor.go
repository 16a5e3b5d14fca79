package janitor

import (
	"context"
	"time"

	"mdip/core/store"
	"mdip/core/utils"

	"github.com/robfig/cron/v3"
)

// Janitor runs the periodic cleanup: expired sessions and stale audit rows.
// Every run is logged with what it removed so drift is visible in the logs.
type Janitor struct {
	sessions       store.SessionsStore
	audit          store.AuditStore
	auditRetention time.Duration
	schedule       string
	logger         *utils.Logger
	cron           *cron.Cron
}

func New(sessions store.SessionsStore, audit store.AuditStore, schedule string, auditRetentionDays int, logger *utils.Logger) *Janitor {
	return &Janitor{
		sessions:       sessions,
		audit:          audit,
		auditRetention: time.Duration(auditRetentionDays) * 24 * time.Hour,
		schedule:       schedule,
		logger:         logger,
	}
}

func (j *Janitor) Start() error {
	j.cron = cron.New()
	if _, err := j.cron.AddFunc(j.schedule, j.RunOnce); err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Printf("janitor scheduled: %s", j.schedule)
	return nil
}

func (j *Janitor) Stop() {
	if j.cron != nil {
		ctx := j.cron.Stop()
		<-ctx.Done()
	}
}

func (j *Janitor) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	now := time.Now().UTC()

	purged, err := j.sessions.PurgeExpired(ctx, now)
	if err != nil {
		j.logger.Errorf("janitor: purge sessions: %v", err)
	} else if purged > 0 {
		j.logger.Printf("janitor: purged %d expired sessions", purged)
	}

	if j.auditRetention > 0 {
		removed, err := j.audit.PurgeOlderThan(ctx, now.Add(-j.auditRetention))
		if err != nil {
			j.logger.Errorf("janitor: purge audit log: %v", err)
		} else if removed > 0 {
			j.logger.Printf("janitor: purged %d audit entries", removed)
		}
	}
}
