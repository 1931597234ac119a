package services

import (
	"context"
	"testing"
	"time"

	"FIN-COACH/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatisticsFromActivity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := createUser(t, "client-1", models.RoleClient, "")

	_, err := f.submissions.SaveDraft(ctx, client, SaveRequest{FormConfigID: f.config.ID, FormData: completeData()})
	require.NoError(t, err)
	_, err = f.submissions.Submit(ctx, client, SaveRequest{FormConfigID: f.config.ID, FormData: completeData()})
	require.NoError(t, err)
	_, err = f.submissions.SaveDraft(ctx, client, SaveRequest{FormConfigID: f.config.ID, FormData: completeData()})
	require.NoError(t, err)

	stats := NewStatisticsService()
	summary, err := stats.GetSummary()
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.TotalFormSubmits)
	assert.Equal(t, int64(0), summary.TotalExports)
	assert.Equal(t, int64(1), summary.OpenDrafts)

	forms, err := stats.GetFormStats()
	require.NoError(t, err)
	require.Len(t, forms, 1)
	assert.Equal(t, f.config.ID, forms[0].FormConfigID)
	assert.Equal(t, "Intake", forms[0].FormName)
	assert.Equal(t, int64(1), forms[0].FormSubmits)
}

func TestIncrementStatAndTimeSeries(t *testing.T) {
	setupDB(t)
	day := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)
	stats := &StatisticsService{now: func() time.Time { return day }}

	require.NoError(t, stats.IncrementStat(models.EventExport, "cfg-1"))
	require.NoError(t, stats.IncrementStat(models.EventExport, "cfg-1"))
	day = day.AddDate(0, 0, -2)
	require.NoError(t, stats.IncrementStat(models.EventExport, "cfg-1"))
	day = day.AddDate(0, 0, 2)

	series, err := stats.GetTimeSeries(models.EventExport, 3, "cfg-1")
	require.NoError(t, err)
	assert.Equal(t, []models.TimeSeriesPoint{
		{Date: "2024-05-08", Count: 1},
		{Date: "2024-05-09", Count: 0},
		{Date: "2024-05-10", Count: 2},
	}, series.DataPoints)
	assert.Equal(t, int64(3), series.Total)

	trends, err := stats.GetTrends(7, "")
	require.NoError(t, err)
	assert.Len(t, trends, len(models.EventTypes))
	assert.Equal(t, int64(0), trends[string(models.EventExport)].Total)

	deleted, err := stats.GetStatsByForm("cfg-1")
	require.NoError(t, err)
	assert.Equal(t, "(deleted form)", deleted.FormName)
	assert.Equal(t, int64(3), deleted.Exports)
}
