package domain

import "time"

// LeadRecord is an append-only lead assignment written by an external process.
type LeadRecord struct {
	ID               string     `json:"-"`
	DateKey          string     `json:"dateKey"`
	Timestamp        time.Time  `json:"timestamp"`
	AssignedMemberID ExternalID `json:"assignedMemberId"`
	LeadID           string     `json:"leadId"`
}
