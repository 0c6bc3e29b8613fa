package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ExternalID is the normalized identifier that cross-references agents, day
// schedules and lead records. Values are always trimmed strings.
type ExternalID string

// NormalizeExternalID canonicalizes a raw identifier that may arrive as a
// string or a number into a trimmed string key.
func NormalizeExternalID(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case ExternalID:
		return strings.TrimSpace(string(v))
	case json.Number:
		return formatNumber(v)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return formatFloat(float64(v))
	case float64:
		return formatFloat(v)
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatNumber gives a decoded JSON number the same key as the equal Go
// numeric value, so 1, 1.0 and 1e0 all become "1".
func formatNumber(n json.Number) string {
	raw := strings.TrimSpace(n.String())
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if !strings.ContainsAny(raw, ".eE") {
		return raw
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return formatFloat(f)
	}
	return raw
}

// NewExternalID normalizes raw into an ExternalID.
func NewExternalID(raw any) ExternalID {
	return ExternalID(NormalizeExternalID(raw))
}

func (id ExternalID) String() string {
	return string(id)
}

// UnmarshalJSON accepts both JSON strings and numbers.
func (id *ExternalID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = NewExternalID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("external id: %w", err)
	}
	*id = NewExternalID(n)
	return nil
}

// NormalizeExternalIDs normalizes every element into a fresh slice.
func NormalizeExternalIDs(raw []ExternalID) []ExternalID {
	out := make([]ExternalID, 0, len(raw))
	for _, id := range raw {
		out = append(out, NewExternalID(id))
	}
	return out
}
