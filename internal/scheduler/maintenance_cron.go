package cron

import (
	"context"

	"github.com/Dias221467/Beer_Rating/internal/jobs"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartMaintenanceCronJobs schedules the store cleanup jobs on spec. The
// caller stops the returned scheduler on shutdown.
func StartMaintenanceCronJobs(ctx context.Context, spec string, m *jobs.Maintenance) (*cron.Cron, error) {
	c := cron.New()

	// Stale friend requests
	if _, err := c.AddFunc(spec, func() {
		if err := m.SweepFriendRequests(ctx); err != nil {
			logrus.WithError(err).Error("SweepFriendRequests failed")
		}
	}); err != nil {
		return nil, err
	}

	// Expired sessions
	if _, err := c.AddFunc(spec, func() {
		if err := m.PurgeSessions(ctx); err != nil {
			logrus.WithError(err).Error("PurgeSessions failed")
		}
	}); err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}
