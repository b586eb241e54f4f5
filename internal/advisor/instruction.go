package advisor

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/edgard/intillasense/internal/farm"
)

type farmContextView struct {
	Farm        string                 `json:"farm"`
	Location    string                 `json:"location"`
	Acreage     float64                `json:"acreage"`
	Coordinates []string               `json:"coordinates"`
	Equipment   []farm.EquipmentOption `json:"equipment"`
	CropHistory []farm.CropYear        `json:"cropHistory"`
}

// BuildSystemInstruction renders the system prompt for fc on the date of now.
// An empty context produces an instruction without farm data.
func BuildSystemInstruction(fc farm.Context, now time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, advisorSystemInstruction, now.Format("Monday, January 2, 2006"))

	if fc.IsEmpty() {
		sb.WriteString(noFarmContext)
		return sb.String()
	}

	view := farmContextView{
		Farm:        fc.Name,
		Location:    fc.Location,
		Acreage:     fc.Acreage,
		Coordinates: fc.Coordinates,
		Equipment:   fc.Equipment,
		CropHistory: fc.CropHistory,
	}
	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		// Plain values only; cannot fail in practice.
		data = []byte(fmt.Sprintf("%+v", view))
	}
	fmt.Fprintf(&sb, farmContextHeader, data)

	if notes := strings.TrimSpace(fc.SoilWeather); notes != "" {
		fmt.Fprintf(&sb, soilWeatherHeader, notes)
	}
	return sb.String()
}

// systemPrompt is BuildSystemInstruction plus the reply format note for mode.
func systemPrompt(req Request) string {
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	note := textReplyNote
	if req.Mode == ModeStructured {
		note = structuredReplyNote
	}
	return BuildSystemInstruction(req.Farm, now) + note
}

// BuildHistoryMessage serializes prior chat turns into a single system
// message. An empty history yields "" and no error. Each turn must be valid
// JSON; it is otherwise passed through untouched.
func BuildHistoryMessage(history []json.RawMessage) (string, error) {
	if len(history) == 0 {
		return "", nil
	}
	for i, turn := range history {
		if !json.Valid(turn) {
			return "", fmt.Errorf("%w: turn %d is not valid JSON", ErrInvalidHistory, i)
		}
	}
	data, err := json.Marshal(history)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidHistory, err)
	}
	return historyMessagePrefix + string(data), nil
}
