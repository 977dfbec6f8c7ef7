package app

import "dtek-outage-monitor/internal/models"

// Decide maps the current snapshot and the stored notification state to the
// action that brings the channel in line with the snapshot. Episode
// boundaries are the transitions of IsOutageActive; the stored state is the
// only memory of a previous notification.
func Decide(snapshot models.StatusSnapshot, state *models.NotificationState) models.Action {
	hasState := state != nil

	switch {
	case snapshot.IsOutageActive() && hasState:
		return models.ActionRefresh
	case snapshot.IsOutageActive():
		return models.ActionCreate
	case hasState:
		return models.ActionClear
	default:
		return models.ActionNoOp
	}
}
