// Package audit posts concise human-readable notices about supervision
// events to an operator chat room.
//
// When configured with a Matrix room ID (MATRIX_OPS_ROOM), the service posts
// a notice when the dual interpreters disagree, when a reply is held for
// review, and when an availability failure triggers a human handoff, so
// operators can monitor conversations without tailing the database.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmorandell/innkeeper/common/trace"
)

// Kind is a machine-readable event category.
type Kind string

const (
	KindDisagreement   Kind = "turn.disagreement"
	KindHeldForReview  Kind = "turn.held"
	KindReviewResolved Kind = "turn.resolved"
	KindHumanHandoff   Kind = "availability.handoff"
	KindDispatchFailed Kind = "dispatch.failed"
	KindError          Kind = "error"
)

// Event carries the data the notifier formats and sends.
type Event struct {
	// Kind identifies the type of event.
	Kind Kind
	// Conversation is the composite "{tenantID}:{conversationID}" key.
	Conversation string
	// Message is a human-friendly description of what happened.
	Message string
	// TraceID ties the notification back to the turn's log lines.
	// When empty the value is taken from the context.
	TraceID string
	// Timestamp defaults to time.Now() when zero.
	Timestamp time.Time
}

// Notifier sends operator room notifications. Implementations must not block
// the turn; send failures are logged, never propagated.
type Notifier interface {
	Notify(ctx context.Context, evt Event)
}

// Sender is the subset of the chat client needed by MatrixNotifier. Defined
// as an interface so the notifier can be unit-tested independently.
type Sender interface {
	SendNotice(roomID, message string) error
}

// MatrixNotifier posts formatted notices to an operator room.
type MatrixNotifier struct {
	sender Sender
	roomID string
}

// NewMatrixNotifier creates a MatrixNotifier that posts to roomID via sender.
func NewMatrixNotifier(sender Sender, roomID string) *MatrixNotifier {
	return &MatrixNotifier{sender: sender, roomID: roomID}
}

// Notify formats evt as a notice and posts it to the operator room. Errors
// are logged at WARN level; the caller is never blocked on failure.
func (n *MatrixNotifier) Notify(ctx context.Context, evt Event) {
	if n.roomID == "" {
		return
	}

	tid := evt.TraceID
	if tid == "" {
		tid = trace.FromContext(ctx)
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}

	msg := fmt.Sprintf("%s [%s] %s", kindIcon(evt.Kind), evt.Kind, evt.Message)
	if evt.Conversation != "" {
		msg = fmt.Sprintf("%s\n  conversation: %s", msg, evt.Conversation)
	}
	if tid != "" {
		msg = fmt.Sprintf("%s\n  trace: %s", msg, tid)
	}

	if err := n.sender.SendNotice(n.roomID, msg); err != nil {
		slog.Warn("audit notifier: failed to send room notice",
			"room", n.roomID, "kind", evt.Kind, "err", err)
	} else {
		slog.Debug("audit notifier: sent notice", "room", n.roomID, "kind", evt.Kind)
	}
}

// Noop is a no-op Notifier used when operator notifications are disabled.
type Noop struct{}

// Notify does nothing.
func (Noop) Notify(_ context.Context, _ Event) {}

// kindIcon returns a Unicode icon for the event kind.
func kindIcon(k Kind) string {
	switch k {
	case KindDisagreement:
		return "⚖️"
	case KindHeldForReview:
		return "🔔"
	case KindReviewResolved:
		return "✅"
	case KindHumanHandoff:
		return "🧑‍💼"
	case KindDispatchFailed:
		return "📪"
	case KindError:
		return "🚨"
	default:
		return "ℹ️"
	}
}
