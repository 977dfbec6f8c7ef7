package models

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrFetch         = errors.New("fetch status")
	ErrEmptyResponse = errors.New("empty provider response")
	ErrSend          = errors.New("send message")
	ErrEdit          = errors.New("edit message")
	ErrDelete        = errors.New("delete message")
	ErrStore         = errors.New("notification store")
	ErrNotOutage     = errors.New("snapshot has no active outage")
)

// StatusSnapshot is one point-in-time read of the outage status for the
// configured address. Build it with NewStatusSnapshot so IsOutageActive
// always agrees with the sub-fields.
type StatusSnapshot struct {
	isOutageActive bool

	SubType   string
	StartDate string
	EndDate   string
	Type      string
	UpdatedAt string
	FetchedAt time.Time
}

func NewStatusSnapshot(subType, startDate, endDate, outageType, updatedAt string, fetchedAt time.Time) StatusSnapshot {
	return StatusSnapshot{
		isOutageActive: nonEmpty(subType) || nonEmpty(startDate) || nonEmpty(endDate) || nonEmpty(outageType),
		SubType:        subType,
		StartDate:      startDate,
		EndDate:        endDate,
		Type:           outageType,
		UpdatedAt:      updatedAt,
		FetchedAt:      fetchedAt,
	}
}

func (s StatusSnapshot) IsOutageActive() bool {
	return s.isOutageActive
}

func nonEmpty(v string) bool {
	return strings.TrimSpace(v) != ""
}

// NotificationState describes the live notification message. A nil
// *NotificationState means there is no active notification.
type NotificationState struct {
	MessageID int       `json:"message_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Action int

// ActionUndecided is the zero value: the run failed before an action was
// chosen.
const (
	ActionUndecided Action = iota
	ActionNoOp
	ActionClear
	ActionCreate
	ActionRefresh
)

func (a Action) String() string {
	switch a {
	case ActionNoOp:
		return "noop"
	case ActionClear:
		return "clear"
	case ActionCreate:
		return "create"
	case ActionRefresh:
		return "refresh"
	default:
		return "undecided"
	}
}

var Actions = []Action{ActionUndecided, ActionNoOp, ActionClear, ActionCreate, ActionRefresh}

type EditResult int

const (
	EditOK EditResult = iota
	EditUnchanged
)

func (r EditResult) String() string {
	if r == EditUnchanged {
		return "unchanged"
	}
	return "ok"
}

type DeleteResult int

const (
	DeleteOK DeleteResult = iota
	DeleteAlreadyGone
)

func (r DeleteResult) String() string {
	if r == DeleteAlreadyGone {
		return "already_gone"
	}
	return "ok"
}

// RunResult reports what a single run did.
type RunResult struct {
	RunID        string
	Action       Action
	OutageActive bool
	// Outcome is a short description of the gateway call, e.g. "sent", "unchanged".
	Outcome   string
	MessageID int
	// DeleteErr is set when a Clear could not delete the remote message.
	// The store is cleared regardless.
	DeleteErr error
	Duration  time.Duration
}

// Address identifies the monitored house on the provider's site.
type Address struct {
	City   string
	Street string
	House  string
}

func (a Address) String() string {
	if a.City != "" {
		return a.City + ", " + a.Street + ", " + a.House
	}
	return a.Street + ", " + a.House
}
