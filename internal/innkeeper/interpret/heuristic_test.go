package interpret_test

import (
	"testing"

	"github.com/dmorandell/innkeeper/internal/innkeeper/domain"
	"github.com/dmorandell/innkeeper/internal/innkeeper/interpret"
	"github.com/dmorandell/innkeeper/internal/innkeeper/planner"
)

func TestHeuristic_CancelBeatsReservationLexicon(t *testing.T) {
	h := interpret.NewHeuristic()
	got := h.Interpret("quiero cancelar mi reserva", domain.ReservationSlots{}, true)

	if got.Category != domain.CategoryCancel {
		t.Fatalf("category = %q, want cancel_reservation", got.Category)
	}
	if got.DesiredAction != domain.ActionCancel {
		t.Errorf("action = %q, want cancel", got.DesiredAction)
	}
	if got.Confidence.Intent <= interpret.IntentConfidence(domain.CategoryReservation) {
		t.Errorf("cancel confidence %v must exceed reservation confidence", got.Confidence.Intent)
	}
}

func TestHeuristic_ReservationVsFallbackConfidence(t *testing.T) {
	h := interpret.NewHeuristic()

	res := h.Interpret("quiero reservar una habitación doble", domain.ReservationSlots{}, false)
	if res.Category != domain.CategoryReservation {
		t.Fatalf("category = %q", res.Category)
	}
	if res.DesiredAction != domain.ActionCreate {
		t.Errorf("no prior reservation should mean create, got %q", res.DesiredAction)
	}

	info := h.Interpret("¿a qué hora abre la piscina?", domain.ReservationSlots{}, false)
	if info.Category != domain.CategoryInfo {
		t.Fatalf("category = %q", info.Category)
	}
	if info.Confidence.Intent >= res.Confidence.Intent {
		t.Errorf("fallback confidence %v must be below reservation %v",
			info.Confidence.Intent, res.Confidence.Intent)
	}
}

func TestHeuristic_SlotExtraction(t *testing.T) {
	h := interpret.NewHeuristic()
	consolidated := domain.ReservationSlots{CheckIn: "2025-10-03", CheckOut: "2025-10-05"}

	got := h.Interpret("somos 3 personas, a nombre de Marta Ruiz, habitación doble",
		consolidated, false)

	want := map[domain.SlotField]string{
		domain.SlotCheckIn:   "2025-10-03",
		domain.SlotCheckOut:  "2025-10-05",
		domain.SlotNumGuests: "3",
		domain.SlotRoomType:  "doble",
		domain.SlotGuestName: "Marta Ruiz",
	}
	for f, v := range want {
		if got.Slots[f] != v {
			t.Errorf("slot %s = %q, want %q", f, got.Slots[f], v)
		}
	}

	// Every populated field gets a confidence entry; no more, no fewer.
	if len(got.Confidence.Slots) != len(got.Slots) {
		t.Errorf("confidence entries %d != populated slots %d",
			len(got.Confidence.Slots), len(got.Slots))
	}
	for f := range got.Slots {
		if got.Confidence.Slots[f] <= 0 {
			t.Errorf("slot %s has no confidence", f)
		}
	}
}

func TestHeuristic_AbsentSlotsHaveUndefinedConfidence(t *testing.T) {
	h := interpret.NewHeuristic()
	got := h.Interpret("hola", domain.ReservationSlots{}, false)

	if _, ok := got.Confidence.Slots[domain.SlotCheckIn]; ok {
		t.Error("absent slot must have no confidence entry, not zero")
	}
}

func TestHeuristic_GreetingOnlyWhenShort(t *testing.T) {
	h := interpret.NewHeuristic()

	if got := h.Interpret("hola", domain.ReservationSlots{}, false); got.Category != domain.CategoryGreeting {
		t.Errorf("bare greeting: category = %q", got.Category)
	}

	long := h.Interpret("hola, quiero reservar una habitación para dos noches", domain.ReservationSlots{}, false)
	if long.Category == domain.CategoryGreeting {
		t.Error("greeting word inside a real request must not classify as greeting")
	}
}

func TestHeuristic_PartySizeChangeIsReservation(t *testing.T) {
	h := interpret.NewHeuristic()
	got := h.Interpret("al final somos 3", domain.ReservationSlots{CheckIn: "2025-10-03", CheckOut: "2025-10-05", NumGuests: 2}, true)

	if got.Category != domain.CategoryReservation {
		t.Fatalf("category = %q", got.Category)
	}
	if got.DesiredAction != domain.ActionUpdate {
		t.Errorf("existing reservation should mean update, got %q", got.DesiredAction)
	}
	if got.Slots[domain.SlotNumGuests] != "3" {
		t.Errorf("numGuests = %q, want the turn's value 3", got.Slots[domain.SlotNumGuests])
	}
}

func TestHeuristic_StayLengthIsNotAPartySize(t *testing.T) {
	h := interpret.NewHeuristic()
	prior := domain.ReservationSlots{CheckIn: "2025-10-03", CheckOut: "2025-10-05", NumGuests: 4}

	for _, msg := range []string{
		"quiero reservar para 2 noches",
		"I want to book for 2 nights",
		"una habitación para 3 días",
	} {
		got := h.Interpret(msg, prior, true)
		if v := got.Slots[domain.SlotNumGuests]; v != "" {
			t.Errorf("%q: numGuests = %q, want no extraction", msg, v)
		}
	}

	// A party size elsewhere in the same message still wins.
	got := h.Interpret("para 2 noches y somos 3 personas", prior, true)
	if got.Slots[domain.SlotNumGuests] != "3" {
		t.Errorf("numGuests = %q, want 3", got.Slots[domain.SlotNumGuests])
	}
}

func TestHeuristic_ResendAndSnapshot(t *testing.T) {
	h := interpret.NewHeuristic()

	if got := h.Interpret("mándame el resumen por correo", domain.ReservationSlots{}, true); got.Category != domain.CategoryResend {
		t.Errorf("resend: category = %q", got.Category)
	}
	if got := h.Interpret("quiero ver el resumen de mi reserva", domain.ReservationSlots{}, true); got.Category != domain.CategorySnapshot {
		t.Errorf("snapshot: category = %q", got.Category)
	}
}

func TestFromPlan_SameScalesAsHeuristic(t *testing.T) {
	plan := &planner.Plan{
		Category:      "reservation",
		DesiredAction: "create",
		Slots: planner.PlanSlots{
			CheckIn:   "2025-10-03",
			CheckOut:  "2025-10-05",
			NumGuests: 2,
		},
		Explanation: "guest provided both dates",
	}

	got := interpret.FromPlan(plan)
	if got.Source != domain.SourceLLM {
		t.Errorf("source = %q", got.Source)
	}
	if got.Category != domain.CategoryReservation {
		t.Errorf("category = %q", got.Category)
	}
	if got.Confidence.Intent != interpret.IntentConfidence(domain.CategoryReservation) {
		t.Errorf("llm intent confidence %v must use the shared rule value", got.Confidence.Intent)
	}
	if got.Slots[domain.SlotNumGuests] != "2" {
		t.Errorf("numGuests = %q", got.Slots[domain.SlotNumGuests])
	}
	if got.Confidence.Slots[domain.SlotCheckIn] != interpret.SlotConfidence(domain.SlotCheckIn) {
		t.Errorf("slot confidence differs from shared rule value")
	}
	if len(got.Notes) == 0 {
		t.Error("explanation should be carried in notes")
	}
}

func TestFromPlan_EmptyCategoryBecomesUnknown(t *testing.T) {
	got := interpret.FromPlan(&planner.Plan{})
	if got.Category != domain.CategoryUnknown {
		t.Errorf("category = %q, want unknown", got.Category)
	}
}
