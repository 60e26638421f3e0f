// Package pipeline holds the client lifecycle rules: how interactions and
// appointments move a client between stages, and the per-stage summary.
package pipeline

import "github.com/oarthurdev/vortex-gestao/internal/models"

// Trigger identifies the write path asking for a stage change.
type Trigger int

const (
	InteractionRecorded Trigger = iota + 1
	AppointmentCreated
	AppointmentUpdated
)

// Event carries what the write path knows. Stage is only read for
// interactions and AppointmentStatus only for appointments.
type Event struct {
	Trigger           Trigger
	Stage             *models.ClientStage
	AppointmentStatus models.AppointmentStatus
}

// rule matches on the appointment status and, optionally, the current
// stage. An empty from matches any stage.
type rule struct {
	status models.AppointmentStatus
	from   models.ClientStage
	to     models.ClientStage
	// exceptStatus inverts the status match: the rule applies to every
	// status other than status.
	exceptStatus bool
}

// rules are evaluated top to bottom; the first match wins.
var rules = map[Trigger][]rule{
	AppointmentCreated: {
		{status: models.AppointmentRealizado, to: models.StageFechado},
		{status: models.AppointmentCancelado, exceptStatus: true, from: models.StageNovo, to: models.StageVisitaAgendada},
	},
	AppointmentUpdated: {
		{status: models.AppointmentRealizado, to: models.StageFechado},
		{status: models.AppointmentCancelado, from: models.StageVisitaAgendada, to: models.StageQualificado},
	},
}

func (r rule) matches(current models.ClientStage, status models.AppointmentStatus) bool {
	if (r.status == status) == r.exceptStatus {
		return false
	}
	return r.from == "" || r.from == current
}

// NextStage returns the stage a client should be in after ev, and whether
// it differs from current.
func NextStage(current models.ClientStage, ev Event) (models.ClientStage, bool) {
	if ev.Trigger == InteractionRecorded {
		if ev.Stage == nil {
			return current, false
		}
		return *ev.Stage, *ev.Stage != current
	}

	for _, r := range rules[ev.Trigger] {
		if r.matches(current, ev.AppointmentStatus) {
			return r.to, r.to != current
		}
	}
	return current, false
}
