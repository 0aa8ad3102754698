// Package interpret produces the two per-turn readings the audit engine
// compares: a cheap heuristic interpretation (lexicon rules, no I/O) and an
// adapter that reshapes the model planner's output into the same form.
//
// Both sides share the confidence functions below, so their scores are
// comparable on identical scales. The scores are intentionally coarse fixed
// constants, not probabilities: the verdict engine only needs a stable
// ordering (cancellation match > reservation match > generic fallback), not a
// calibrated distribution.
package interpret

import "github.com/dmorandell/innkeeper/internal/innkeeper/domain"

// Intent confidence by category. A cancellation-lexicon match is the
// strongest signal we have; the generic information fallback is the weakest.
const (
	intentConfidenceCancel      = 0.95
	intentConfidenceReservation = 0.85
	intentConfidenceSideIntent  = 0.9 // greeting, resend, snapshot, verify
	intentConfidenceFallback    = 0.4
)

// IntentConfidence returns the rule-based certainty for a category match.
func IntentConfidence(cat domain.Category) float64 {
	switch cat {
	case domain.CategoryCancel:
		return intentConfidenceCancel
	case domain.CategoryReservation:
		return intentConfidenceReservation
	case domain.CategoryGreeting, domain.CategoryResend, domain.CategorySnapshot, domain.CategoryVerify:
		return intentConfidenceSideIntent
	default:
		return intentConfidenceFallback
	}
}

// Per-field slot confidence for a populated field. Absent fields get no
// entry at all (undefined, not zero).
const (
	slotConfidenceDate      = 0.9
	slotConfidenceNumGuests = 0.85
	slotConfidenceRoomType  = 0.8
	slotConfidenceGuestName = 0.6
)

// SlotConfidence returns the fixed certainty assigned to a populated field.
func SlotConfidence(f domain.SlotField) float64 {
	switch f {
	case domain.SlotCheckIn, domain.SlotCheckOut:
		return slotConfidenceDate
	case domain.SlotNumGuests:
		return slotConfidenceNumGuests
	case domain.SlotRoomType:
		return slotConfidenceRoomType
	case domain.SlotGuestName:
		return slotConfidenceGuestName
	default:
		return 0
	}
}

// scoreSlots builds the per-field confidence map for a populated slot map.
func scoreSlots(slots map[domain.SlotField]string) map[domain.SlotField]float64 {
	if len(slots) == 0 {
		return nil
	}
	scores := make(map[domain.SlotField]float64, len(slots))
	for f, v := range slots {
		if v == "" {
			continue
		}
		scores[f] = SlotConfidence(f)
	}
	return scores
}
