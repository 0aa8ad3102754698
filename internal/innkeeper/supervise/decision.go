// Package supervise decides whether a generated reply goes straight to the
// guest or waits for a human operator, and persists the review queue for the
// latter case.
package supervise

import (
	"github.com/dmorandell/innkeeper/internal/innkeeper/domain"
)

// Mode is the conversation-level supervision mode. Supervised conversations
// hold every non-trivial reply for review; automatic is the default.
type Mode string

const (
	ModeAutomatic  Mode = "automatic"
	ModeSupervised Mode = "supervised"
)

// Status is the fate of one outbound reply.
type Status string

const (
	StatusSent    Status = "sent"
	StatusPending Status = "pending"
)

// safeCategories can auto-send without supervision pressure as long as the
// turn itself raised no disagreement. Read-only or ritual replies only.
var safeCategories = map[domain.Category]bool{
	domain.CategoryInfo:     true,
	domain.CategoryGreeting: true,
	domain.CategoryResend:   true,
}

// Input is everything the decision depends on. Pure data, no side paths.
type Input struct {
	Mode             Mode
	Category         domain.Category
	SalesStage       domain.SalesStage
	NeedsSupervision bool
}

// Outcome says whether to send now and why.
type Outcome struct {
	AutoSend bool
	Status   Status
	Reason   string
}

// Decide applies the auto-send rules in order. Replies that only restate
// already-committed reservation state are always sent, even in supervised
// mode; everything else sends only when supervision is not required and
// either the category is on the safe list or the mode is automatic.
func Decide(in Input) Outcome {
	switch {
	case in.Category == domain.CategorySnapshot || in.Category == domain.CategoryVerify:
		return Outcome{AutoSend: true, Status: StatusSent, Reason: "read-only reservation reply"}
	case in.Category == domain.CategoryReservation && in.SalesStage == domain.StageClose:
		return Outcome{AutoSend: true, Status: StatusSent, Reason: "closed reservation confirmation"}
	case !in.NeedsSupervision && safeCategories[in.Category]:
		return Outcome{AutoSend: true, Status: StatusSent, Reason: "safe category"}
	case !in.NeedsSupervision && in.Mode == ModeAutomatic:
		return Outcome{AutoSend: true, Status: StatusSent, Reason: "automatic mode"}
	default:
		return Outcome{AutoSend: false, Status: StatusPending, Reason: "held for review"}
	}
}
