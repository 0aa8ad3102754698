package interpret

import (
	"strconv"

	"github.com/dmorandell/innkeeper/internal/innkeeper/domain"
	"github.com/dmorandell/innkeeper/internal/innkeeper/planner"
)

// FromPlan reshapes the model planner's structured output into the shared
// Interpretation form. Confidence comes from the same rule-based functions
// as the heuristic side. The model's own self-reported certainty (when it
// offers one) is not trusted, which keeps the two sides on one scale.
func FromPlan(plan *planner.Plan) domain.Interpretation {
	category := domain.Category(plan.Category)
	if category == "" {
		category = domain.CategoryUnknown
	}

	slots := make(map[domain.SlotField]string)
	if plan.Slots.GuestName != "" {
		slots[domain.SlotGuestName] = plan.Slots.GuestName
	}
	if plan.Slots.RoomType != "" {
		slots[domain.SlotRoomType] = plan.Slots.RoomType
	}
	if plan.Slots.CheckIn != "" {
		slots[domain.SlotCheckIn] = plan.Slots.CheckIn
	}
	if plan.Slots.CheckOut != "" {
		slots[domain.SlotCheckOut] = plan.Slots.CheckOut
	}
	if plan.Slots.NumGuests > 0 {
		slots[domain.SlotNumGuests] = strconv.Itoa(int(plan.Slots.NumGuests))
	}

	interp := domain.Interpretation{
		Source:        domain.SourceLLM,
		Category:      category,
		DesiredAction: domain.Action(plan.DesiredAction),
		Slots:         slots,
		Confidence: domain.Confidence{
			Intent: IntentConfidence(category),
			Slots:  scoreSlots(slots),
		},
	}
	if plan.Explanation != "" {
		interp.Notes = append(interp.Notes, plan.Explanation)
	}
	return interp
}
