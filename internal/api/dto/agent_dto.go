package dto

import "github.com/spec-kit/shiftboard/internal/domain"

// CreateAgentRequest payload for adding an agent. ExternalID may be a string
// or a number.
type CreateAgentRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	ExternalID any    `json:"external_id"`
}

// AgentResponse is one roster entry.
type AgentResponse struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Email      string            `json:"email,omitempty"`
	ExternalID domain.ExternalID `json:"external_id"`
}

// NewAgentResponses maps agents preserving order.
func NewAgentResponses(agents []domain.Agent) []AgentResponse {
	out := make([]AgentResponse, 0, len(agents))
	for _, a := range agents {
		out = append(out, AgentResponse{ID: a.ID, Name: a.Name, Email: a.Email, ExternalID: a.ExternalID})
	}
	return out
}
