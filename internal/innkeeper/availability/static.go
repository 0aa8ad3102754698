package availability

import (
	"context"
	"fmt"

	"github.com/dmorandell/innkeeper/internal/innkeeper/domain"
)

// StaticChecker quotes from a fixed catalog. It serves tenants without a
// property-management backend and keeps the re-quote fast path deterministic
// in tests.
type StaticChecker struct {
	catalog Catalog
}

// NewStaticChecker builds a catalog-backed checker. A nil catalog uses
// DefaultCatalog.
func NewStaticChecker(catalog Catalog) *StaticChecker {
	if catalog == nil {
		catalog = DefaultCatalog
	}
	return &StaticChecker{catalog: catalog}
}

// CheckAvailability implements Checker. The requested room type is quoted
// when it fits the party; otherwise the smallest fitting type is suggested.
func (c *StaticChecker) CheckAvailability(_ context.Context, q Query) (*Result, error) {
	spec, ok := c.catalog.FitFor(q.NumGuests)
	if !ok {
		return &Result{OK: true, Available: false}, nil
	}
	if q.RoomType != "" {
		if requested, found := c.catalog.Spec(q.RoomType); found && requested.Capacity >= q.NumGuests {
			spec = requested
		}
	}

	options := []domain.RoomOption{spec.option()}
	for _, alt := range c.catalog {
		if alt.Type != spec.Type && alt.Capacity >= q.NumGuests {
			options = append(options, alt.option())
		}
	}

	return &Result{
		OK:        true,
		Available: true,
		Options:   options,
		Proposal: &domain.Proposal{
			Available:              true,
			Options:                options,
			SuggestedRoomType:      spec.Type,
			SuggestedPricePerNight: spec.PricePerNight,
			ToolCalls:              []string{fmt.Sprintf("catalog:%s:%s..%s", spec.Type, q.CheckIn, q.CheckOut)},
		},
	}, nil
}
