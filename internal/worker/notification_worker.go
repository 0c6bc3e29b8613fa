package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/shiftboard/internal/service"
)

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// SessionExpirer drops abandoned editor sessions.
type SessionExpirer interface {
	ExpireSessions(cutoff time.Time) int
}

// StartSessionSweeper expires editor sessions idle for longer than maxAge on the given
// cron schedule (for example "@every 1m") until ctx is done. A zero maxAge
// disables the sweeper.
func StartSessionSweeper(ctx context.Context, sessions SessionExpirer, schedule string, maxAge time.Duration, logger *zap.Logger) error {
	if sessions == nil || maxAge <= 0 {
		return nil
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if n := sessions.ExpireSessions(time.Now().Add(-maxAge)); n > 0 {
			logger.Info("expired editor sessions", zap.Int("count", n))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	c.Start()
	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return nil
}
