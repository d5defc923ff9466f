package models

import "time"

// UnresolvedReason classifies why a demand left an allocation run without a room.
type UnresolvedReason string

const (
	// ReasonUnallocatable means no structurally valid candidate exists
	// (undecodable schedule code or an empty room inventory).
	ReasonUnallocatable UnresolvedReason = "UNALLOCATABLE"
	// ReasonBlockedByConflict means every scored candidate was occupied.
	ReasonBlockedByConflict UnresolvedReason = "BLOCKED_BY_CONFLICT"
)

// UnresolvedDemand is one run-summary entry for a demand left unallocated.
type UnresolvedDemand struct {
	DemandID     int64            `json:"demandId"`
	CourseCode   string           `json:"courseCode"`
	SectionLabel string           `json:"sectionLabel"`
	Reason       UnresolvedReason `json:"reason"`
	Detail       string           `json:"detail,omitempty"`
}

// RunWarning is one non-fatal note from a run, such as a demand naming a
// professor absent from the registry.
type RunWarning struct {
	DemandID   int64  `json:"demandId"`
	CourseCode string `json:"courseCode"`
	Message    string `json:"message"`
}

// RunSummary is the non-fatal outcome report of one orchestrator run.
type RunSummary struct {
	SemesterID      int64              `json:"semesterId"`
	StartedAt       time.Time          `json:"startedAt"`
	FinishedAt      time.Time          `json:"finishedAt"`
	TotalDemands    int                `json:"totalDemands"`
	PhaseACommitted int                `json:"phaseACommitted"`
	PhaseBScored    int                `json:"phaseBScored"`
	PhaseCCommitted int                `json:"phaseCCommitted"`
	Unresolved      []UnresolvedDemand `json:"unresolved"`
	Warnings        []RunWarning       `json:"warnings,omitempty"`
}
