// Package availability talks to the property-management availability
// collaborator and quotes room options for a date range.
package availability

import (
	"context"

	"github.com/dmorandell/innkeeper/internal/innkeeper/domain"
)

// Query asks whether the property can host a stay.
type Query struct {
	TenantID  string `json:"tenantId"`
	RoomType  string `json:"roomType,omitempty"`
	NumGuests int    `json:"numGuests,omitempty"`
	CheckIn   string `json:"checkIn"`
	CheckOut  string `json:"checkOut"`
}

// Result is the collaborator's answer. OK false means the backend could not
// answer at all and the caller should treat the turn as a failed check.
type Result struct {
	OK        bool                `json:"ok"`
	Available bool                `json:"available"`
	Options   []domain.RoomOption `json:"options,omitempty"`
	Proposal  *domain.Proposal    `json:"proposal,omitempty"`
}

// Checker is the availability collaborator.
type Checker interface {
	CheckAvailability(ctx context.Context, q Query) (*Result, error)
}
