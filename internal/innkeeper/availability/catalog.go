package availability

import "github.com/dmorandell/innkeeper/internal/innkeeper/domain"

// RoomSpec describes one bookable room type.
type RoomSpec struct {
	Type          string
	Capacity      int
	PricePerNight float64
	Currency      string
}

// Catalog is an ordered list of room types, smallest capacity first. Order
// matters: FitFor picks the first spec that can host the party.
type Catalog []RoomSpec

// DefaultCatalog covers the room types the interpreters recognize. Tenants
// with a live property-management backend get real inventory through the
// HTTP checker instead.
var DefaultCatalog = Catalog{
	{Type: "individual", Capacity: 1, PricePerNight: 55, Currency: "EUR"},
	{Type: "doble", Capacity: 2, PricePerNight: 80, Currency: "EUR"},
	{Type: "triple", Capacity: 3, PricePerNight: 105, Currency: "EUR"},
	{Type: "familiar", Capacity: 5, PricePerNight: 140, Currency: "EUR"},
	{Type: "suite", Capacity: 4, PricePerNight: 190, Currency: "EUR"},
}

// FitFor returns the first room spec that can host numGuests, or false when
// the party is larger than anything in the catalog.
func (c Catalog) FitFor(numGuests int) (RoomSpec, bool) {
	if numGuests <= 0 {
		numGuests = 1
	}
	for _, spec := range c {
		if spec.Capacity >= numGuests {
			return spec, true
		}
	}
	return RoomSpec{}, false
}

// Spec looks up a room type by name.
func (c Catalog) Spec(roomType string) (RoomSpec, bool) {
	for _, spec := range c {
		if spec.Type == roomType {
			return spec, true
		}
	}
	return RoomSpec{}, false
}

// Fits reports whether the named room type can host the party. Unknown room
// types are assumed to fit so a guest-supplied type never blocks a quote.
func (c Catalog) Fits(roomType string, numGuests int) bool {
	spec, ok := c.Spec(roomType)
	if !ok {
		return true
	}
	return spec.Capacity >= numGuests
}

func (s RoomSpec) option() domain.RoomOption {
	return domain.RoomOption{
		RoomType:      s.Type,
		PricePerNight: s.PricePerNight,
		Currency:      s.Currency,
		Availability:  "available",
	}
}
