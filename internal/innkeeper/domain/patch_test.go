package domain_test

import (
	"testing"
	"time"

	"github.com/dmorandell/innkeeper/internal/innkeeper/domain"
)

func TestPatch_TriState(t *testing.T) {
	var unchanged domain.Patch[string]
	if !unchanged.Unchanged() {
		t.Error("zero-value patch should be Unchanged")
	}
	if unchanged.Cleared() {
		t.Error("zero-value patch should not be Cleared")
	}

	set := domain.Set("deluxe")
	if v, ok := set.Value(); !ok || v != "deluxe" {
		t.Errorf("Set patch: got (%q, %v)", v, ok)
	}

	cleared := domain.Clear[string]()
	if !cleared.Cleared() {
		t.Error("Clear patch should be Cleared")
	}
	if _, ok := cleared.Value(); ok {
		t.Error("Clear patch should not report a value")
	}
}

func TestSlotsPatch_MergesPerSubfield(t *testing.T) {
	prior := domain.ReservationSlots{
		GuestName: "Ana Torres",
		CheckIn:   "2025-10-02",
		NumGuests: 2,
		Locale:    "es",
	}

	patch := domain.SlotsPatch{
		CheckOut:  domain.Set("2025-10-04"),
		NumGuests: domain.Clear[int](),
	}

	got := patch.Apply(prior)
	if got.GuestName != "Ana Torres" {
		t.Errorf("untouched guestName changed: %q", got.GuestName)
	}
	if got.CheckIn != "2025-10-02" {
		t.Errorf("untouched checkIn changed: %q", got.CheckIn)
	}
	if got.CheckOut != "2025-10-04" {
		t.Errorf("checkOut not set: %q", got.CheckOut)
	}
	if got.NumGuests != 0 {
		t.Errorf("numGuests not cleared: %d", got.NumGuests)
	}
}

func TestStatePatch_WholeObjectReplaceAndClear(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	state := &domain.ConversationState{
		TenantID:       "t1",
		ConversationID: "c1",
		LastProposal:   &domain.Proposal{Text: "old quote", Available: true},
		Supervised:     true,
	}

	p := domain.StatePatch{
		LastProposal: domain.Set(domain.Proposal{Text: "new quote"}),
		Supervised:   domain.Set(false),
		UpdatedBy:    "pipeline",
	}
	p.Apply(state, now)

	if state.LastProposal == nil || state.LastProposal.Text != "new quote" {
		t.Fatalf("proposal not replaced: %+v", state.LastProposal)
	}
	if state.LastProposal.Available {
		t.Error("replacement must be atomic, old Available leaked through")
	}
	if state.Supervised {
		t.Error("supervised flag not lowered")
	}
	if !state.UpdatedAt.Equal(now) || state.UpdatedBy != "pipeline" {
		t.Errorf("audit stamps wrong: %v %q", state.UpdatedAt, state.UpdatedBy)
	}

	clear := domain.StatePatch{LastProposal: domain.Clear[domain.Proposal]()}
	clear.Apply(state, now.Add(time.Minute))
	if state.LastProposal != nil {
		t.Error("explicit clear must remove the proposal entirely")
	}
}

func TestReservationSlots_Validate(t *testing.T) {
	cases := []struct {
		name    string
		slots   domain.ReservationSlots
		wantErr bool
	}{
		{"empty", domain.ReservationSlots{}, false},
		{"ordered", domain.ReservationSlots{CheckIn: "2025-10-02", CheckOut: "2025-10-04"}, false},
		{"inverted", domain.ReservationSlots{CheckIn: "2025-10-04", CheckOut: "2025-10-02"}, true},
		{"same day", domain.ReservationSlots{CheckIn: "2025-10-02", CheckOut: "2025-10-02"}, true},
		{"only check-in", domain.ReservationSlots{CheckIn: "2025-10-02"}, false},
		{"bad format", domain.ReservationSlots{CheckIn: "02/10/2025"}, true},
		{"negative guests", domain.ReservationSlots{NumGuests: -1}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.slots.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestTurnEnvelope_Validate(t *testing.T) {
	ok := domain.TurnEnvelope{
		TenantID:       "t1",
		ConversationID: "c1",
		Content:        "hola",
		Timestamp:      time.Now(),
	}
	if err := ok.Validate(); err != nil {
		t.Errorf("valid envelope rejected: %v", err)
	}

	bad := domain.TurnEnvelope{Content: "   "}
	err := bad.Validate()
	if err == nil {
		t.Fatal("expected error for empty envelope")
	}
}
