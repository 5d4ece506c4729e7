package cron

import (
	"context"
	"testing"

	"github.com/Dias221467/Beer_Rating/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartMaintenanceCronJobs(t *testing.T) {
	m := jobs.NewMaintenance(nil, nil)

	_, err := StartMaintenanceCronJobs(context.Background(), "every tuesday", m)
	assert.Error(t, err)

	c, err := StartMaintenanceCronJobs(context.Background(), "@hourly", m)
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 2)
	<-c.Stop().Done()
}
