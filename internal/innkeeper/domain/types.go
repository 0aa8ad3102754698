// Package domain defines the shared value types of the innkeeper decision
// core: the per-conversation reservation state, the per-turn interpretation
// and verdict shapes, and the inbound turn envelope.
//
// Everything here is plain data. Behaviour lives in the packages that operate
// on these types (consolidate, interpret, verdict, supervise, pipeline);
// keeping the shapes in one place avoids the ad hoc map-of-any duplication
// that tends to grow around dialogue state.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// SalesStage is the coarse progress marker for a reservation conversation.
type SalesStage string

const (
	StageQualify  SalesStage = "qualify"
	StageQuote    SalesStage = "quote"
	StageClose    SalesStage = "close"
	StageFollowup SalesStage = "followup"
)

// Flow identifies a multi-turn flow the conversation is currently inside.
type Flow string

const (
	FlowReservation Flow = "reservation"
	FlowCancel      Flow = "cancel_reservation"
)

// Category is the classified intent of a single turn.
type Category string

const (
	CategoryReservation Category = "reservation"
	CategoryCancel      Category = "cancel_reservation"
	// CategoryInfo is the generic information-retrieval category. The verdict
	// engine applies a special tolerance to it (see verdict.Engine).
	CategoryInfo Category = "information"
	// CategorySnapshot and CategoryVerify are read-only views over an already
	// committed reservation; replies in these categories always auto-send.
	CategorySnapshot Category = "reservation_snapshot"
	CategoryVerify   Category = "reservation_verify"
	// CategoryResend is the quick-intent side request "send me my booking
	// summary via <channel>".
	CategoryResend   Category = "resend_summary"
	CategoryGreeting Category = "greeting"
	CategoryUnknown  Category = "unknown"
)

// Action is the desired mutation a turn asks for, when any.
type Action string

const (
	ActionNone   Action = ""
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionCancel Action = "cancel"
)

// Source identifies which interpreter produced an Interpretation.
type Source string

const (
	SourcePre Source = "pre" // heuristic, rule-based
	SourceLLM Source = "llm" // model-backed planner
)

// SlotField names one field of the in-progress reservation draft.
type SlotField string

const (
	SlotGuestName SlotField = "guestName"
	SlotRoomType  SlotField = "roomType"
	SlotCheckIn   SlotField = "checkIn"
	SlotCheckOut  SlotField = "checkOut"
	SlotNumGuests SlotField = "numGuests"
)

// DateLayout is the canonical storage format for reservation dates.
// Display formatting (dd/mm/yyyy) is handled by the consolidate package.
const DateLayout = "2006-01-02"

// ReservationSlots is the consolidated reservation draft for a conversation.
// Empty string / zero means the slot is not known yet; the tri-state patch
// semantics live in SlotsPatch, not here.
type ReservationSlots struct {
	GuestName string `json:"guestName,omitempty"`
	RoomType  string `json:"roomType,omitempty"`
	// CheckIn and CheckOut are ISO dates (DateLayout).
	CheckIn  string `json:"checkIn,omitempty"`
	CheckOut string `json:"checkOut,omitempty"`
	// NumGuests is canonically an int; zero means unknown.
	NumGuests int    `json:"numGuests,omitempty"`
	Locale    string `json:"locale,omitempty"`
}

// Validate checks the cross-field invariants of a slot set. It is called by
// the state store before persisting and by the consolidator after merging.
func (s ReservationSlots) Validate() error {
	in, okIn := parseISO(s.CheckIn)
	out, okOut := parseISO(s.CheckOut)
	if s.CheckIn != "" && !okIn {
		return fmt.Errorf("checkIn %q is not a valid %s date", s.CheckIn, DateLayout)
	}
	if s.CheckOut != "" && !okOut {
		return fmt.Errorf("checkOut %q is not a valid %s date", s.CheckOut, DateLayout)
	}
	if okIn && okOut && !in.Before(out) {
		return fmt.Errorf("checkIn %s must be before checkOut %s", s.CheckIn, s.CheckOut)
	}
	if s.NumGuests < 0 {
		return fmt.Errorf("numGuests must not be negative, got %d", s.NumGuests)
	}
	return nil
}

// Nights returns the stay length in nights, or 0 when either date is missing.
func (s ReservationSlots) Nights() int {
	in, okIn := parseISO(s.CheckIn)
	out, okOut := parseISO(s.CheckOut)
	if !okIn || !okOut {
		return 0
	}
	n := int(out.Sub(in).Hours() / 24)
	if n < 0 {
		return 0
	}
	return n
}

func parseISO(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// RoomOption is one quoted room alternative inside a proposal.
type RoomOption struct {
	RoomType      string  `json:"roomType"`
	PricePerNight float64 `json:"pricePerNight"`
	Currency      string  `json:"currency"`
	Availability  string  `json:"availability"`
}

// Proposal is the last availability quote presented to the guest, kept so
// follow-up turns ("book it", "what was the price again?") can refer back to
// it without a fresh availability call.
type Proposal struct {
	Text                   string       `json:"text"`
	Available              bool         `json:"available"`
	Options                []RoomOption `json:"options,omitempty"`
	SuggestedRoomType      string       `json:"suggestedRoomType,omitempty"`
	SuggestedPricePerNight float64      `json:"suggestedPricePerNight,omitempty"`
	// ToolCalls is the audit trail of collaborator calls that produced this
	// proposal, oldest first.
	ToolCalls []string `json:"toolCalls,omitempty"`
}

// ReservationStatus is the lifecycle state of a committed reservation.
type ReservationStatus string

const (
	ReservationCreated   ReservationStatus = "created"
	ReservationUpdated   ReservationStatus = "updated"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationError     ReservationStatus = "error"
)

// Reservation is the last committed reservation of the conversation.
type Reservation struct {
	ID        string            `json:"id"`
	Status    ReservationStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
	Channel   string            `json:"channel,omitempty"`
}

// ConversationState is the per-conversation mutable state, persisted by the
// state store under the composite key {tenantID, conversationID}.
type ConversationState struct {
	TenantID       string `json:"tenantId"`
	ConversationID string `json:"conversationId"`

	Slots           ReservationSlots `json:"reservationSlots"`
	LastProposal    *Proposal        `json:"lastProposal,omitempty"`
	LastReservation *Reservation     `json:"lastReservation,omitempty"`

	SalesStage   SalesStage `json:"salesStage,omitempty"`
	ActiveFlow   Flow       `json:"activeFlow,omitempty"`
	LastCategory Category   `json:"lastCategory,omitempty"`

	// Supervised marks the conversation as requiring human review of outbound
	// replies. Set by the audit stage on disagreement, cleared by operators.
	Supervised      bool               `json:"supervised"`
	LastSupervision *SupervisionRecord `json:"lastSupervision,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
	UpdatedBy string    `json:"updatedBy,omitempty"`
}

// Key returns the composite state-store key "{tenantID}:{conversationID}".
func Key(tenantID, conversationID string) string {
	return tenantID + ":" + conversationID
}

// Confidence carries the rule-derived certainty scores of an Interpretation.
type Confidence struct {
	// Intent is the 0–1 certainty of the category classification.
	Intent float64 `json:"intent"`
	// Slots maps each populated slot field to its 0–1 certainty. Absent
	// fields have no entry (undefined, not zero).
	Slots map[SlotField]float64 `json:"slots,omitempty"`
}

// Interpretation is one interpreter's reading of a single turn. Ephemeral:
// produced, compared, optionally attached to a SupervisionRecord, never
// persisted on its own.
type Interpretation struct {
	Source        Source               `json:"source"`
	Category      Category             `json:"category"`
	DesiredAction Action               `json:"desiredAction,omitempty"`
	Slots         map[SlotField]string `json:"slots,omitempty"`
	Confidence    Confidence           `json:"confidence"`
	Notes         []string             `json:"notes,omitempty"`
}

// VerdictStatus is the outcome of comparing two interpretations.
type VerdictStatus string

const (
	VerdictAgree    VerdictStatus = "agree"
	VerdictDisagree VerdictStatus = "disagree"
)

// Verdict is the result of the dual-interpretation comparison.
type Verdict struct {
	Status VerdictStatus `json:"status"`
	Reason string        `json:"reason,omitempty"`
	// Winner is the side whose reading should drive the turn when the two
	// sides agree. Empty on disagreement.
	Winner Source `json:"winner,omitempty"`
	// Deltas lists the fields the two sides disagreed on, for review UIs.
	Deltas []string `json:"deltas,omitempty"`
}

// SupervisionRecord captures a detected disagreement for later human review.
type SupervisionRecord struct {
	ID          string         `json:"id"`
	At          time.Time      `json:"at"`
	MessageText string         `json:"messageText"`
	Pre         Interpretation `json:"pre"`
	LLM         Interpretation `json:"llm"`
	Verdict     Verdict        `json:"verdict"`
}

// TurnEnvelope is the inbound message handed to the decision core by a
// channel adapter.
type TurnEnvelope struct {
	TenantID       string `json:"tenantId"`
	Channel        string `json:"channel"`
	ConversationID string `json:"conversationId"`
	GuestID        string `json:"guestId"`
	Content        string `json:"content"`
	// DetectedLanguage is a lowercase ISO 639-1 code ("es", "en"). Empty
	// means unknown; the pipeline falls back to Spanish prompts.
	DetectedLanguage string    `json:"detectedLanguage,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// Validate checks that the envelope carries the minimum fields the pipeline
// needs. Channel adapters are expected to call this before handing a turn in.
func (e TurnEnvelope) Validate() error {
	var missing []string
	if e.TenantID == "" {
		missing = append(missing, "tenantId")
	}
	if e.ConversationID == "" {
		missing = append(missing, "conversationId")
	}
	if strings.TrimSpace(e.Content) == "" {
		missing = append(missing, "content")
	}
	if len(missing) > 0 {
		return fmt.Errorf("turn envelope missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}
