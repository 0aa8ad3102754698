package consolidate_test

import (
	"strings"
	"testing"
	"time"

	"github.com/dmorandell/innkeeper/internal/innkeeper/consolidate"
	"github.com/dmorandell/innkeeper/internal/innkeeper/domain"
)

var testNow = time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)

func resolve(t *testing.T, msg string, prior domain.ReservationSlots, history ...consolidate.Turn) consolidate.Result {
	t.Helper()
	return consolidate.Resolve(consolidate.Request{
		Message: msg,
		Prior:   prior,
		History: history,
		Now:     testNow,
	})
}

func TestResolve_TwoDatesOrderedByChronology(t *testing.T) {
	// Mention order reversed: the earlier date is still the check-in.
	res := resolve(t, "queremos salir el 05/10/2025 y llegar el 03/10/2025", domain.ReservationSlots{})

	if res.Outcome != consolidate.OutcomeConfirmRange {
		t.Fatalf("outcome = %q, want confirm_range", res.Outcome)
	}
	if res.Merged.CheckIn != "2025-10-03" || res.Merged.CheckOut != "2025-10-05" {
		t.Errorf("merged dates wrong: %+v", res.Merged)
	}
	if !strings.Contains(res.Reply, "03/10/2025") || !strings.Contains(res.Reply, "05/10/2025") {
		t.Errorf("confirmation must name both dates: %q", res.Reply)
	}
	if !strings.Contains(res.Reply, "disponibilidad") {
		t.Errorf("confirmation must offer an availability check: %q", res.Reply)
	}
}

func TestResolve_TwoDatesSameAsStoredIsSilent(t *testing.T) {
	prior := domain.ReservationSlots{CheckIn: "2025-10-03", CheckOut: "2025-10-05"}
	res := resolve(t, "confirmo, del 03/10/2025 al 05/10/2025", prior)

	if res.Outcome != consolidate.OutcomeNone {
		t.Errorf("restating the stored range should not re-confirm, got %q", res.Outcome)
	}
}

func TestResolve_SingleDateArrivalVocabulary(t *testing.T) {
	res := resolve(t, "la entrada sería el 03/10/2025", domain.ReservationSlots{})

	if res.Outcome != consolidate.OutcomeAskCheckOut {
		t.Fatalf("outcome = %q, want ask_check_out", res.Outcome)
	}
	if res.Merged.CheckIn != "2025-10-03" {
		t.Errorf("checkIn = %q", res.Merged.CheckIn)
	}
	if res.Merged.CheckOut != "" {
		t.Errorf("checkOut should stay empty, got %q", res.Merged.CheckOut)
	}
}

func TestResolve_SingleDateDepartureVocabulary(t *testing.T) {
	prior := domain.ReservationSlots{CheckIn: "2025-10-02"}
	res := resolve(t, "nos vamos el 04/10/2025", prior)

	if res.Outcome != consolidate.OutcomeConfirmRange {
		t.Fatalf("outcome = %q, want confirm_range", res.Outcome)
	}
	if res.Merged.CheckIn != "2025-10-02" || res.Merged.CheckOut != "2025-10-04" {
		t.Errorf("merged = %+v", res.Merged)
	}
}

// Slot merge monotonicity: supplying only the check-out never re-requests the
// known check-in.
func TestResolve_MonotonicMerge(t *testing.T) {
	prior := domain.ReservationSlots{CheckIn: "2025-10-02"}
	res := resolve(t, "salida el 04/10/2025", prior)

	if res.Outcome == consolidate.OutcomeAskCheckIn {
		t.Fatal("check-in must never be re-requested once known")
	}
	if res.Merged.CheckIn != "2025-10-02" || res.Merged.CheckOut != "2025-10-04" {
		t.Errorf("merged = %+v", res.Merged)
	}
}

func TestResolve_AnswerFillsSideTheSystemAskedFor(t *testing.T) {
	history := []consolidate.Turn{
		{Role: "user", Content: "check-in on 03/10/2025"},
		{Role: "assistant", Content: "And the check-out date? (dd/mm/yyyy)"},
	}
	prior := domain.ReservationSlots{CheckIn: "2025-10-03"}
	res := resolve(t, "05/10/2025", prior, history...)

	if res.Outcome != consolidate.OutcomeConfirmRange {
		t.Fatalf("outcome = %q, want confirm_range", res.Outcome)
	}
	if res.Merged.CheckOut != "2025-10-05" {
		t.Errorf("checkOut = %q", res.Merged.CheckOut)
	}
}

// Year inheritance: short date borrows the year of the known check-in.
func TestResolve_ShortDateInheritsYearFromSlots(t *testing.T) {
	prior := domain.ReservationSlots{CheckIn: "2025-12-03"}
	res := resolve(t, "hasta el 05/12", prior)

	if res.Merged.CheckOut != "2025-12-05" {
		t.Errorf("checkOut = %q, want 2025-12-05", res.Merged.CheckOut)
	}
	if res.Outcome != consolidate.OutcomeConfirmRange {
		t.Errorf("outcome = %q", res.Outcome)
	}
}

func TestResolve_ShortDateInheritsYearFromPendingFullDate(t *testing.T) {
	res := resolve(t, "del 03/10/2026 al 05/10", domain.ReservationSlots{})

	if res.Merged.CheckIn != "2026-10-03" || res.Merged.CheckOut != "2026-10-05" {
		t.Errorf("merged = %+v", res.Merged)
	}
}

func TestResolve_ShortDateInheritsYearFromHistory(t *testing.T) {
	history := []consolidate.Turn{
		{Role: "user", Content: "queremos ir en torno al 10/11/2026"},
		{Role: "assistant", Content: "¿Para qué fecha sería la entrada? (dd/mm/aaaa)"},
	}
	res := resolve(t, "12/11", domain.ReservationSlots{}, history...)

	if res.Merged.CheckIn != "2026-11-12" {
		t.Errorf("checkIn = %q, want 2026-11-12", res.Merged.CheckIn)
	}
}

// A bare short date with a check-in in progress becomes the check-out when
// chronologically valid, and replaces the check-in otherwise.
func TestResolve_BareShortDateChronology(t *testing.T) {
	prior := domain.ReservationSlots{CheckIn: "2025-12-03"}

	later := resolve(t, "05/12", prior)
	if later.Merged.CheckOut != "2025-12-05" {
		t.Errorf("later date: merged = %+v", later.Merged)
	}

	earlier := resolve(t, "01/12", prior)
	if earlier.Merged.CheckIn != "2025-12-01" {
		t.Errorf("earlier date should overwrite check-in: %+v", earlier.Merged)
	}
	if earlier.Merged.CheckOut != "" {
		t.Errorf("no check-out should be invented: %+v", earlier.Merged)
	}
}

// The tie-break rule: zero date tokens never confirm, even when the stored
// range is complete.
func TestResolve_TopicChangeNeverConfirms(t *testing.T) {
	prior := domain.ReservationSlots{CheckIn: "2025-10-03", CheckOut: "2025-10-05"}
	res := resolve(t, "quiero modificar la entrada", prior)

	if res.Outcome == consolidate.OutcomeConfirmRange || res.Outcome == consolidate.OutcomeNone {
		t.Fatalf("token-free change request must re-prompt, got %q", res.Outcome)
	}
	if res.Outcome != consolidate.OutcomeAskCheckIn {
		t.Errorf("named side should be asked for, got %q", res.Outcome)
	}
	if !res.Patch.IsZero() {
		t.Error("no slots may change on a token-free turn")
	}
}

func TestResolve_GenericDateChangeAsksBoth(t *testing.T) {
	prior := domain.ReservationSlots{CheckIn: "2025-10-03", CheckOut: "2025-10-05"}
	res := resolve(t, "me gustaría cambiar las fechas", prior)

	if res.Outcome != consolidate.OutcomeAskBoth {
		t.Fatalf("outcome = %q, want ask_both", res.Outcome)
	}
}

func TestResolve_NewCheckInAfterStoredCheckOutDropsStaleSide(t *testing.T) {
	prior := domain.ReservationSlots{CheckIn: "2025-10-03", CheckOut: "2025-10-05"}
	res := resolve(t, "mejor entrada el 10/10/2025", prior)

	if res.Merged.CheckIn != "2025-10-10" {
		t.Errorf("checkIn = %q", res.Merged.CheckIn)
	}
	if res.Merged.CheckOut != "" {
		t.Errorf("stale check-out must be dropped, got %q", res.Merged.CheckOut)
	}
	if res.Outcome != consolidate.OutcomeAskCheckOut {
		t.Errorf("outcome = %q, want ask_check_out", res.Outcome)
	}
}

func TestResolve_NoDateContentIsSilent(t *testing.T) {
	res := resolve(t, "¿tienen parking?", domain.ReservationSlots{CheckIn: "2025-10-03"})

	if res.Outcome != consolidate.OutcomeNone || res.Reply != "" {
		t.Errorf("unrelated message must be silent: %q %q", res.Outcome, res.Reply)
	}
}

func TestResolve_EnglishReplies(t *testing.T) {
	res := consolidate.Resolve(consolidate.Request{
		Message: "check-in on 03/10/2025",
		Locale:  "en",
		Now:     testNow,
	})
	if !strings.Contains(res.Reply, "check-out date") {
		t.Errorf("expected English check-out prompt, got %q", res.Reply)
	}
}

func TestDisplayDate(t *testing.T) {
	if got := consolidate.DisplayDate("2025-10-03"); got != "03/10/2025" {
		t.Errorf("DisplayDate = %q", got)
	}
}
