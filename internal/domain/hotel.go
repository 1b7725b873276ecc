package domain

// Hotel is the canonical record every supplier feed is reconciled into.
// Field order here is the JSON output order.
type Hotel struct {
	ID                string    `json:"id"`
	DestinationID     int64     `json:"destination_id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Location          Location  `json:"location"`
	Amenities         Amenities `json:"amenities"`
	Images            Images    `json:"images"`
	BookingConditions []string  `json:"booking_conditions"`
}

type Location struct {
	Address    *string  `json:"address"`
	City       *string  `json:"city"`
	Country    *string  `json:"country"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
	PostalCode *string  `json:"postal_code"`
}

// Amenities holds normalized lowercase terms; a term is in exactly one bucket.
type Amenities struct {
	General []string `json:"general"`
	Room    []string `json:"room"`
}

// Images groups pictures by where they were taken. Links are unique per collection.
type Images struct {
	Rooms     []Image `json:"rooms"`
	Site      []Image `json:"site"`
	Amenities []Image `json:"amenities"`
}

type Image struct {
	Link        string `json:"link"`
	Description string `json:"description"`
}

// Canonical field paths shared by mapping rules, merge rules and the record constructor.
const (
	FieldID                = "id"
	FieldDestinationID     = "destination_id"
	FieldName              = "name"
	FieldDescription       = "description"
	FieldAmenitiesGeneral  = "amenities.general"
	FieldAmenitiesRoom     = "amenities.room"
	FieldBookingConditions = "booking_conditions"
)

// Filter selects merged hotels. An empty axis does not filter.
type Filter struct {
	IDs            []string
	DestinationIDs []int64
}

func (f Filter) Match(h Hotel) bool {
	if len(f.IDs) > 0 && !containsStr(f.IDs, h.ID) {
		return false
	}
	if len(f.DestinationIDs) > 0 && !containsInt(f.DestinationIDs, h.DestinationID) {
		return false
	}
	return true
}

func containsStr(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func containsInt(xs []int64, v int64) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
