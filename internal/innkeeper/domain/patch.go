package domain

import "time"

// Patch is a tri-state field update: Unchanged (the zero value), Cleared, or
// Set(value). It replaces the loosely-typed $set/$unset records that tend to
// accumulate around document stores: a field key present with an empty value
// clears the field, present with a value sets it, absent leaves it untouched;
// here that contract is explicit and checked at compile time.
type Patch[T any] struct {
	op    patchOp
	value T
}

type patchOp uint8

const (
	opUnchanged patchOp = iota
	opClear
	opSet
)

// Set returns a Patch that writes v.
func Set[T any](v T) Patch[T] { return Patch[T]{op: opSet, value: v} }

// Clear returns a Patch that removes the field.
func Clear[T any]() Patch[T] { return Patch[T]{op: opClear} }

// Unchanged reports whether the patch leaves the field untouched.
func (p Patch[T]) Unchanged() bool { return p.op == opUnchanged }

// Cleared reports whether the patch removes the field.
func (p Patch[T]) Cleared() bool { return p.op == opClear }

// Value returns the value to write and whether the patch is a Set.
func (p Patch[T]) Value() (T, bool) { return p.value, p.op == opSet }

// apply resolves the patch against the current value. Cleared yields the
// type's zero value.
func (p Patch[T]) apply(current T) T {
	switch p.op {
	case opSet:
		return p.value
	case opClear:
		var zero T
		return zero
	default:
		return current
	}
}

func applyPtr[T any](p Patch[T], current *T) *T {
	switch p.op {
	case opSet:
		v := p.value
		return &v
	case opClear:
		return nil
	default:
		return current
	}
}

// SlotsPatch is a per-subfield patch of ReservationSlots. Unlike the
// whole-object fields of StatePatch, slots are always merged field by field so
// a turn that only learned the check-out date cannot wipe the guest name.
type SlotsPatch struct {
	GuestName Patch[string]
	RoomType  Patch[string]
	CheckIn   Patch[string]
	CheckOut  Patch[string]
	NumGuests Patch[int]
	Locale    Patch[string]
}

// IsZero reports whether the patch changes nothing.
func (p SlotsPatch) IsZero() bool {
	return p.GuestName.Unchanged() && p.RoomType.Unchanged() &&
		p.CheckIn.Unchanged() && p.CheckOut.Unchanged() &&
		p.NumGuests.Unchanged() && p.Locale.Unchanged()
}

// Apply merges the patch into s and returns the result.
func (p SlotsPatch) Apply(s ReservationSlots) ReservationSlots {
	s.GuestName = p.GuestName.apply(s.GuestName)
	s.RoomType = p.RoomType.apply(s.RoomType)
	s.CheckIn = p.CheckIn.apply(s.CheckIn)
	s.CheckOut = p.CheckOut.apply(s.CheckOut)
	s.NumGuests = p.NumGuests.apply(s.NumGuests)
	s.Locale = p.Locale.apply(s.Locale)
	return s
}

// StatePatch is a tri-state update of ConversationState. Slots are merged
// per-subfield via SlotsPatch; LastProposal and LastReservation are replaced
// atomically when set and removed when cleared.
type StatePatch struct {
	Slots           SlotsPatch
	LastProposal    Patch[Proposal]
	LastReservation Patch[Reservation]
	SalesStage      Patch[SalesStage]
	ActiveFlow      Patch[Flow]
	LastCategory    Patch[Category]
	Supervised      Patch[bool]
	LastSupervision Patch[SupervisionRecord]
	// UpdatedBy records which component produced the patch ("pipeline",
	// "quickintent", an operator id, ...).
	UpdatedBy string
}

// IsZero reports whether the patch changes nothing.
func (p StatePatch) IsZero() bool {
	return p.Slots.IsZero() && p.LastProposal.Unchanged() &&
		p.LastReservation.Unchanged() && p.SalesStage.Unchanged() &&
		p.ActiveFlow.Unchanged() && p.LastCategory.Unchanged() &&
		p.Supervised.Unchanged() && p.LastSupervision.Unchanged()
}

// Apply merges the patch into state in place, stamping UpdatedAt/UpdatedBy.
// The caller owns validation of the resulting slot set.
func (p StatePatch) Apply(state *ConversationState, now time.Time) {
	state.Slots = p.Slots.Apply(state.Slots)
	state.LastProposal = applyPtr(p.LastProposal, state.LastProposal)
	state.LastReservation = applyPtr(p.LastReservation, state.LastReservation)
	state.SalesStage = p.SalesStage.apply(state.SalesStage)
	state.ActiveFlow = p.ActiveFlow.apply(state.ActiveFlow)
	state.LastCategory = p.LastCategory.apply(state.LastCategory)
	state.Supervised = p.Supervised.apply(state.Supervised)
	state.LastSupervision = applyPtr(p.LastSupervision, state.LastSupervision)
	state.UpdatedAt = now
	if p.UpdatedBy != "" {
		state.UpdatedBy = p.UpdatedBy
	}
}
