package domain

import "strings"

// Agent is a roster entry that can be queued on a day.
type Agent struct {
	ID         string     `json:"-"`
	Name       string     `json:"name"`
	Email      string     `json:"email,omitempty"`
	ExternalID ExternalID `json:"externalId"`
}

// FirstName returns the first whitespace separated word of the agent name,
// used for compact calendar previews.
func (a Agent) FirstName() string {
	fields := strings.Fields(a.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// UnknownMemberLabel is the display fallback for an id with no roster entry.
func UnknownMemberLabel(id ExternalID) string {
	return "ID: " + string(id)
}
