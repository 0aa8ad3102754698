package quickintent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmorandell/innkeeper/internal/innkeeper/audit"
	"github.com/dmorandell/innkeeper/internal/innkeeper/dispatch"
	"github.com/dmorandell/innkeeper/internal/innkeeper/domain"
)

type recordingDispatcher struct {
	channel      string
	destinations []string
	summaries    []string
	fail         bool
}

func (d *recordingDispatcher) Channel() string { return d.channel }

func (d *recordingDispatcher) Send(ctx context.Context, destination, summary string) error {
	if d.fail {
		return &dispatch.Error{Channel: d.channel, Destination: destination, Err: errors.New("down")}
	}
	d.destinations = append(d.destinations, destination)
	d.summaries = append(d.summaries, summary)
	return nil
}

func newResendUnderTest(fail bool) (*Resend, *recordingDispatcher, *recordingDispatcher) {
	doc := &recordingDispatcher{channel: "document", fail: fail}
	matrix := &recordingDispatcher{channel: "matrix", fail: fail}
	r := NewResend(map[string]dispatch.Dispatcher{"document": doc, "matrix": matrix}, nil, nil)
	return r, doc, matrix
}

type recordingNotifier struct {
	events []audit.Event
}

func (n *recordingNotifier) Notify(_ context.Context, evt audit.Event) {
	n.events = append(n.events, evt)
}

func bookedState() *domain.ConversationState {
	return &domain.ConversationState{
		TenantID:       "tenant-a",
		ConversationID: "conv-1",
		Slots: domain.ReservationSlots{
			GuestName: "Ana García",
			RoomType:  "doble",
			CheckIn:   "2026-09-10",
			CheckOut:  "2026-09-12",
			NumGuests: 2,
		},
		LastProposal: &domain.Proposal{
			Available:              true,
			SuggestedRoomType:      "doble",
			SuggestedPricePerNight: 80,
		},
		LastReservation: &domain.Reservation{ID: "R-1042", Status: domain.ReservationCreated},
	}
}

func TestInterceptStrictWithEmailDestination(t *testing.T) {
	r, doc, _ := newResendUnderTest(false)
	state := bookedState()

	out, handled := r.Intercept(context.Background(), "Reenvíame el resumen a ana@example.org", state, "es")
	if !handled {
		t.Fatal("expected intercept")
	}
	if out.Layer != LayerStrict {
		t.Fatalf("layer = %s, want strict", out.Layer)
	}
	if len(doc.destinations) != 1 || doc.destinations[0] != "ana@example.org" {
		t.Fatalf("destinations = %v", doc.destinations)
	}
	if !strings.Contains(doc.summaries[0], "10/09/2026") || !strings.Contains(doc.summaries[0], "R-1042") {
		t.Fatalf("summary missing fields:\n%s", doc.summaries[0])
	}
	if !strings.Contains(out.Reply, "ana@example.org") {
		t.Fatalf("reply should confirm destination, got %q", out.Reply)
	}
}

func TestInterceptMatrixDestination(t *testing.T) {
	r, _, matrix := newResendUnderTest(false)

	_, handled := r.Intercept(context.Background(), "resend my summary to @ana:example.org", bookedState(), "en")
	if !handled {
		t.Fatal("expected intercept")
	}
	if len(matrix.destinations) != 1 || matrix.destinations[0] != "@ana:example.org" {
		t.Fatalf("destinations = %v", matrix.destinations)
	}
}

func TestInterceptLightNeedsReservationContext(t *testing.T) {
	r, _, _ := newResendUnderTest(false)

	// Same wording, no reservation context: not intercepted.
	bare := &domain.ConversationState{TenantID: "tenant-a", ConversationID: "conv-1"}
	if _, handled := r.Intercept(context.Background(), "mándame el resumen", bare, "es"); handled {
		t.Fatal("light layer should require reservation context")
	}

	out, handled := r.Intercept(context.Background(), "mándame el resumen", bookedState(), "es")
	if !handled {
		t.Fatal("expected light intercept with context")
	}
	if out.Layer != LayerStrict && out.Layer != LayerLight {
		t.Fatalf("layer = %s", out.Layer)
	}
}

func TestInterceptMissingDestinationAsksAndCommits(t *testing.T) {
	r, doc, _ := newResendUnderTest(false)

	out, handled := r.Intercept(context.Background(), "reenvíame el resumen de la reserva", bookedState(), "es")
	if !handled {
		t.Fatal("expected intercept")
	}
	if len(doc.destinations) != 0 {
		t.Fatal("nothing should be dispatched without a destination")
	}
	if !strings.Contains(out.Reply, "¿A dónde") {
		t.Fatalf("expected clarifying question, got %q", out.Reply)
	}
	if cat, ok := out.Patch.LastCategory.Value(); !ok || cat != domain.CategoryResend {
		t.Fatalf("lastCategory patch = %+v, want resend commit", out.Patch.LastCategory)
	}
}

func TestInterceptFollowupBareAddress(t *testing.T) {
	r, doc, _ := newResendUnderTest(false)

	state := bookedState()
	state.LastCategory = domain.CategoryResend

	out, handled := r.Intercept(context.Background(), "ana@example.org", state, "es")
	if !handled {
		t.Fatal("expected follow-up intercept")
	}
	if out.Layer != LayerFollowup {
		t.Fatalf("layer = %s, want followup", out.Layer)
	}
	if len(doc.destinations) != 1 {
		t.Fatalf("destinations = %v", doc.destinations)
	}
}

func TestInterceptNoFollowupWithoutCommit(t *testing.T) {
	r, _, _ := newResendUnderTest(false)

	// A bare address with no committed resend intent is not a quick intent.
	if _, handled := r.Intercept(context.Background(), "ana@example.org", bookedState(), "es"); handled {
		t.Fatal("bare address without committed intent should not intercept")
	}
}

func TestInterceptDispatchFailureOffersChoice(t *testing.T) {
	r, _, _ := newResendUnderTest(true)

	out, handled := r.Intercept(context.Background(), "reenvíame el resumen a ana@example.org", bookedState(), "es")
	if !handled {
		t.Fatal("expected intercept")
	}
	if !strings.Contains(out.Reply, "intente de nuevo") {
		t.Fatalf("expected retry-or-escalate choice, got %q", out.Reply)
	}
}

func TestInterceptDispatchFailureNotifiesOpsRoom(t *testing.T) {
	doc := &recordingDispatcher{channel: "document", fail: true}
	notifier := &recordingNotifier{}
	r := NewResend(map[string]dispatch.Dispatcher{"document": doc}, notifier, nil)

	_, handled := r.Intercept(context.Background(), "reenvíame el resumen a ana@example.org", bookedState(), "es")
	if !handled {
		t.Fatal("expected intercept")
	}
	if len(notifier.events) != 1 {
		t.Fatalf("expected one ops notification, got %d", len(notifier.events))
	}
	evt := notifier.events[0]
	if evt.Kind != audit.KindDispatchFailed {
		t.Errorf("kind = %q", evt.Kind)
	}
	if evt.Conversation != "tenant-a:conv-1" {
		t.Errorf("conversation = %q", evt.Conversation)
	}
	if strings.Contains(evt.Message, "ana@example.org") {
		t.Errorf("destination should be masked in the notice: %q", evt.Message)
	}
	if !strings.Contains(evt.Message, "a***@example.org") {
		t.Errorf("masked destination missing from notice: %q", evt.Message)
	}
}

func TestInterceptIgnoresUnrelatedTurns(t *testing.T) {
	r, _, _ := newResendUnderTest(false)

	if _, handled := r.Intercept(context.Background(), "quiero reservar una habitación doble", bookedState(), "es"); handled {
		t.Fatal("reservation turn should not be intercepted")
	}
}
