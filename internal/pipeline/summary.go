package pipeline

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oarthurdev/vortex-gestao/internal/models"
)

const maxUpcomingFollowUps = 5

type StageTotal struct {
	Stage      models.ClientStage `json:"stage"`
	Count      int                `json:"count"`
	TotalValue decimal.Decimal    `json:"totalValue"`
}

type FollowUp struct {
	ClientID     string             `json:"clientId"`
	Name         string             `json:"name"`
	Stage        models.ClientStage `json:"stage"`
	NextFollowUp time.Time          `json:"nextFollowUp"`
}

type Summary struct {
	Stages            []StageTotal `json:"stages"`
	ConversionRate    float64      `json:"conversionRate"`
	UpcomingFollowUps []FollowUp   `json:"upcomingFollowUps"`
}

// Summarize aggregates one company's clients. Every stage is present in
// fixed order even when empty; a missing pipeline value counts as zero.
func Summarize(clients []models.Client, now time.Time) Summary {
	idx := make(map[models.ClientStage]int, len(models.ClientStages))
	stages := make([]StageTotal, len(models.ClientStages))
	for i, s := range models.ClientStages {
		idx[s] = i
		stages[i] = StageTotal{Stage: s, TotalValue: decimal.Zero}
	}

	var closed, leadLike int
	followUps := make([]FollowUp, 0)

	for _, c := range clients {
		if i, ok := idx[c.Stage]; ok {
			stages[i].Count++
			if c.PipelineValue.Valid {
				stages[i].TotalValue = stages[i].TotalValue.Add(c.PipelineValue.Decimal)
			}
		}
		if c.Stage == models.StageFechado {
			closed++
		}
		if c.Type == models.ClientLead || c.Type == models.ClientComprador {
			leadLike++
		}
		if c.NextFollowUp != nil && c.NextFollowUp.After(now) {
			followUps = append(followUps, FollowUp{
				ClientID:     c.ID,
				Name:         c.Name,
				Stage:        c.Stage,
				NextFollowUp: *c.NextFollowUp,
			})
		}
	}

	sort.SliceStable(followUps, func(i, j int) bool {
		return followUps[i].NextFollowUp.Before(followUps[j].NextFollowUp)
	})
	if len(followUps) > maxUpcomingFollowUps {
		followUps = followUps[:maxUpcomingFollowUps]
	}

	var rate float64
	if leadLike > 0 {
		rate = float64(closed) / float64(leadLike) * 100
	}

	return Summary{Stages: stages, ConversionRate: rate, UpcomingFollowUps: followUps}
}
