package dto

import (
	"time"

	"github.com/spec-kit/shiftboard/internal/domain"
	"github.com/spec-kit/shiftboard/internal/leads"
)

// LeadGroupResponse is the lead count of one member.
type LeadGroupResponse struct {
	MemberID domain.ExternalID `json:"member_id"`
	Name     string            `json:"name"`
	Orphaned bool              `json:"orphaned"`
	Count    int               `json:"count"`
}

// LeadSummaryResponse is the grouped report.
type LeadSummaryResponse struct {
	Start  string              `json:"start"`
	End    string              `json:"end"`
	Total  int                 `json:"total"`
	Groups []LeadGroupResponse `json:"groups"`
}

// LeadRecordResponse is one drill-down row.
type LeadRecordResponse struct {
	ID                 string            `json:"id"`
	LeadID             string            `json:"lead_id"`
	Date               string            `json:"date"`
	AssignedMemberID   domain.ExternalID `json:"assigned_member_id"`
	Timestamp          time.Time         `json:"timestamp"`
	FormattedTimestamp string            `json:"formatted_timestamp"`
}

// NewLeadSummaryResponse maps a report without its raw records.
func NewLeadSummaryResponse(r *leads.Report) LeadSummaryResponse {
	groups := make([]LeadGroupResponse, 0, len(r.Groups))
	for _, g := range r.Groups {
		groups = append(groups, LeadGroupResponse{MemberID: g.MemberID, Name: g.Name, Orphaned: g.Orphaned, Count: g.Count})
	}
	return LeadSummaryResponse{Start: r.StartDateKey, End: r.EndDateKey, Total: r.Total, Groups: groups}
}

// NewLeadRecordResponses maps drill-down rows.
func NewLeadRecordResponses(records []leads.FormattedRecord) []LeadRecordResponse {
	out := make([]LeadRecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, LeadRecordResponse{
			ID:                 rec.ID,
			LeadID:             rec.LeadID,
			Date:               rec.DateKey,
			AssignedMemberID:   rec.AssignedMemberID,
			Timestamp:          rec.Timestamp,
			FormattedTimestamp: rec.FormattedTimestamp,
		})
	}
	return out
}
