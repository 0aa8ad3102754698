// Package planner wraps the model-backed reply planner. The planner proposes
// a category, a desired action, slot values, and a reply text for one guest
// turn; it never commits anything. The pipeline audits and gates everything
// it proposes.
//
// The provider contract deliberately mirrors the heuristic interpreter's
// output shape so the two can be compared on identical scales by the verdict
// engine.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrRateLimit is returned when the upstream model API reports a rate-limit
// condition (HTTP 429). Callers degrade to the deterministic reply path.
var ErrRateLimit = errors.New("planner: upstream rate limit exceeded")

// ErrMalformedOutput is returned when the model responds but the body cannot
// be interpreted as a Plan (JSON parse failure or schema violation).
var ErrMalformedOutput = errors.New("planner: malformed response from model")

// HistoryMessage is one prior turn injected into the model context window.
type HistoryMessage struct {
	// Role is "user" or "assistant".
	Role    string
	Content string
}

// Request is the input to a single planning call.
type Request struct {
	// Message is the raw guest utterance.
	Message string
	// Language is the detected reply language ("es", "en").
	Language string
	// KnownSlots is the consolidated reservation draft before this turn's
	// model call, so the planner does not re-ask for known fields.
	KnownSlots map[string]string
	// SalesStage is the conversation's coarse progress marker.
	SalesStage string
	// History contains the most recent turns, oldest first.
	History []HistoryMessage
}

// FlexInt decodes a JSON number or numeric string. Models are inconsistent
// about "numGuests": 2 and "2" both appear in the wild; storage is always the
// canonical int.
type FlexInt int

func (n *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("numeric value expected, got %s", data)
	}
	*n = FlexInt(v)
	return nil
}

// PlanSlots is the slot map proposed by the model. Empty fields mean the
// model extracted nothing for them this turn.
type PlanSlots struct {
	GuestName string  `json:"guestName,omitempty"`
	RoomType  string  `json:"roomType,omitempty"`
	CheckIn   string  `json:"checkIn,omitempty"`
	CheckOut  string  `json:"checkOut,omitempty"`
	NumGuests FlexInt `json:"numGuests,omitempty"`
}

// Plan is the structured output of one planning call, validated against the
// embedded JSON schema before being returned.
type Plan struct {
	// Category is the model's intent classification for the turn.
	Category string `json:"category"`
	// DesiredAction is "create", "update", "cancel", or empty.
	DesiredAction string `json:"desiredAction,omitempty"`
	// Slots holds the field values the model extracted this turn.
	Slots PlanSlots `json:"slots,omitempty"`
	// Reply is the proposed guest-facing text. May be empty when the model
	// produced a classification but no usable reply; the pipeline then falls
	// back to its deterministic formatter.
	Reply string `json:"reply,omitempty"`
	// Explanation is a short model-internal note, kept for the audit trail.
	Explanation string `json:"explanation,omitempty"`
}

// Usage carries the token counts reported by the upstream API for one call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
	LatencyMS        int64
}

// Provider produces a Plan for one guest turn.
//
// Implementations must be safe for concurrent use. On transport or model
// failure they return a descriptive error; callers degrade to the
// deterministic reply path rather than failing the turn.
type Provider interface {
	Plan(ctx context.Context, req Request) (*Plan, *Usage, error)
}

// decodePlan parses raw model output and validates it against the plan
// schema. Returns ErrMalformedOutput (wrapped) on any structural problem.
func decodePlan(content string) (*Plan, error) {
	var generic any
	if err := json.Unmarshal([]byte(content), &generic); err != nil {
		return nil, fmt.Errorf("%w: %v (raw content: %.200s)", ErrMalformedOutput, err, content)
	}
	if err := planSchema.Validate(generic); err != nil {
		return nil, fmt.Errorf("%w: schema: %v", ErrMalformedOutput, err)
	}

	var plan Plan
	if err := json.Unmarshal([]byte(content), &plan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	plan.Category = strings.ToLower(strings.TrimSpace(plan.Category))
	plan.DesiredAction = strings.ToLower(strings.TrimSpace(plan.DesiredAction))
	return &plan, nil
}

// sinceMS returns elapsed wall-clock milliseconds, for Usage.LatencyMS.
func sinceMS(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
