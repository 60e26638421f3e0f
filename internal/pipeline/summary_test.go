package pipeline

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarthurdev/vortex-gestao/internal/models"
)

func value(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestSummarizeTotals(t *testing.T) {
	clients := []models.Client{
		{ID: "1", Type: models.ClientLead, Stage: models.StageNovo, PipelineValue: value("1000.50")},
		{ID: "2", Type: models.ClientLead, Stage: models.StageNovo},
		{ID: "3", Type: models.ClientComprador, Stage: models.StageProposta, PipelineValue: value("250000")},
		{ID: "4", Type: models.ClientComprador, Stage: models.StageFechado, PipelineValue: value("300000")},
		{ID: "5", Type: models.ClientProprietario, Stage: models.StageFechado, PipelineValue: value("10")},
	}

	s := Summarize(clients, time.Now())
	require.Len(t, s.Stages, 6)
	for i, st := range models.ClientStages {
		assert.Equal(t, st, s.Stages[i].Stage)
	}

	byStage := map[models.ClientStage]StageTotal{}
	for _, st := range s.Stages {
		byStage[st.Stage] = st
	}
	assert.Equal(t, 2, byStage[models.StageNovo].Count)
	assert.True(t, decimal.RequireFromString("1000.50").Equal(byStage[models.StageNovo].TotalValue))
	assert.Equal(t, 2, byStage[models.StageFechado].Count)
	assert.True(t, decimal.RequireFromString("300010").Equal(byStage[models.StageFechado].TotalValue))
	assert.Equal(t, 0, byStage[models.StagePerdido].Count)
	assert.True(t, byStage[models.StagePerdido].TotalValue.IsZero())

	// 2 fechado over 4 lead/comprador.
	assert.InDelta(t, 50.0, s.ConversionRate, 1e-9)
}

func TestSummarizeZeroDenominator(t *testing.T) {
	clients := []models.Client{
		{ID: "1", Type: models.ClientProprietario, Stage: models.StageFechado},
	}
	s := Summarize(clients, time.Now())
	assert.Zero(t, s.ConversionRate)

	empty := Summarize(nil, time.Now())
	assert.Zero(t, empty.ConversionRate)
	assert.Len(t, empty.Stages, 6)
	assert.NotNil(t, empty.UpcomingFollowUps)
}

func TestSummarizeUpcomingFollowUps(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	at := func(days int) *time.Time {
		v := now.Add(time.Duration(days) * 24 * time.Hour)
		return &v
	}

	clients := []models.Client{
		{ID: "t+7", Stage: models.StageNovo, NextFollowUp: at(7)},
		{ID: "t-1", Stage: models.StageNovo, NextFollowUp: at(-1)},
		{ID: "t+3", Stage: models.StageNovo, NextFollowUp: at(3)},
		{ID: "t+9", Stage: models.StageNovo, NextFollowUp: at(9)},
		{ID: "t+1", Name: "Primeiro", Stage: models.StageProposta, NextFollowUp: at(1)},
		{ID: "t+5", Stage: models.StageNovo, NextFollowUp: at(5)},
		{ID: "now", Stage: models.StageNovo, NextFollowUp: at(0)},
		{ID: "none", Stage: models.StageNovo},
	}

	s := Summarize(clients, now)
	require.Len(t, s.UpcomingFollowUps, 5)
	ids := make([]string, 0, 5)
	for _, f := range s.UpcomingFollowUps {
		ids = append(ids, f.ClientID)
	}
	assert.Equal(t, []string{"t+1", "t+3", "t+5", "t+7", "t+9"}, ids)
	assert.Equal(t, "Primeiro", s.UpcomingFollowUps[0].Name)
	assert.Equal(t, models.StageProposta, s.UpcomingFollowUps[0].Stage)
}
