package dto

import (
	"time"

	"github.com/spec-kit/shiftboard/internal/domain"
	"github.com/spec-kit/shiftboard/internal/service"
)

// AddMemberRequest payload for queueing an agent. ExternalID may be a string
// or a number.
type AddMemberRequest struct {
	ExternalID any `json:"external_id"`
}

// DayScheduleResponse is a persisted day.
type DayScheduleResponse struct {
	Date            string              `json:"date"`
	Members         []domain.ExternalID `json:"members"`
	RotationPointer int                 `json:"rotation_pointer"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// QueuedMemberResponse is one numbered entry of the editor queue.
type QueuedMemberResponse struct {
	Position   int               `json:"position"`
	ExternalID domain.ExternalID `json:"external_id"`
	Label      string            `json:"label"`
	Orphaned   bool              `json:"orphaned"`
}

// EditorResponse is the state of an editor session.
type EditorResponse struct {
	SessionID string                 `json:"session_id"`
	Date      string                 `json:"date"`
	Queued    []QueuedMemberResponse `json:"queued"`
	Available []AgentResponse        `json:"available"`
}

// NewDayScheduleResponse maps a stored day.
func NewDayScheduleResponse(s *domain.DaySchedule) DayScheduleResponse {
	members := s.Members
	if members == nil {
		members = []domain.ExternalID{}
	}
	return DayScheduleResponse{
		Date:            s.DateKey,
		Members:         members,
		RotationPointer: s.RotationPointer,
		UpdatedAt:       s.UpdatedAt,
	}
}

// NewEditorResponse maps an editor view.
func NewEditorResponse(v *service.EditorView) EditorResponse {
	queued := make([]QueuedMemberResponse, 0, len(v.Partition.Queued))
	for _, q := range v.Partition.Queued {
		queued = append(queued, QueuedMemberResponse{
			Position:   q.Position,
			ExternalID: q.ExternalID,
			Label:      q.Label,
			Orphaned:   q.Orphaned,
		})
	}
	return EditorResponse{
		SessionID: v.SessionID,
		Date:      v.DateKey,
		Queued:    queued,
		Available: NewAgentResponses(v.Partition.Available),
	}
}
