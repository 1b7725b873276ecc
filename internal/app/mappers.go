package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"hotelmerge/internal/domain"
	"hotelmerge/internal/tree"
)

var (
	errNoIdentifier  = errors.New("merged record has no identifier")
	errNoDestination = errors.New("merged record has no destination id")
)

/********** tiny helpers **********/

// lookupStr returns the string at path, formatting numbers; "" otherwise.
func lookupStr(doc tree.Node, path string) string {
	v, _ := tree.Get(doc, path)
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	}
	return ""
}

func ptrStr(doc tree.Node, path string) *string {
	if s := lookupStr(doc, path); s != "" {
		return &s
	}
	return nil
}

// getFloatFlexible: float64/int/string like "8,0".
func getFloatFlexible(doc tree.Node, path string) *float64 {
	v, _ := tree.Get(doc, path)
	switch t := v.(type) {
	case float64:
		return &t
	case int64:
		f := float64(t)
		return &f
	case int:
		f := float64(t)
		return &f
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, ",", "."))
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return &f
		}
	}
	return nil
}

// getInt64Flexible: int64/float64/int/string.
func getInt64Flexible(doc tree.Node, path string) (int64, bool) {
	v, _ := tree.Get(doc, path)
	switch t := v.(type) {
	case int64:
		return t, true
	case float64:
		return int64(t), true
	case int:
		return int64(t), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return n, err == nil
	}
	return 0, false
}

// sliceStrings keeps non-empty strings; never nil so JSON renders [].
func sliceStrings(doc tree.Node, path string) []string {
	v, _ := tree.Get(doc, path)
	out := []string{}
	switch t := v.(type) {
	case []any:
		for _, it := range t {
			if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case []string:
		for _, s := range t {
			if strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case string:
		if s := strings.TrimSpace(t); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// sliceImages drops entries without a link and repeated links, keeping the first.
func sliceImages(doc tree.Node, path string) []domain.Image {
	v, _ := tree.Get(doc, path)
	items, _ := v.([]any)
	out := make([]domain.Image, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		link := lookupStr(m, "link")
		if link == "" {
			continue
		}
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}
		// a description nobody supplied renders as ""
		out = append(out, domain.Image{Link: link, Description: lookupStr(m, "description")})
	}
	return out
}

/********** canonical record constructor **********/

// buildHotel converts a merged canonical document into the output record.
func buildHotel(doc tree.Node) (domain.Hotel, error) {
	id := lookupStr(doc, domain.FieldID)
	if id == "" {
		return domain.Hotel{}, fmt.Errorf("build hotel: %w", errNoIdentifier)
	}
	dest, ok := getInt64Flexible(doc, domain.FieldDestinationID)
	if !ok {
		return domain.Hotel{}, fmt.Errorf("build hotel %s: %w", id, errNoDestination)
	}

	return domain.Hotel{
		ID:            id,
		DestinationID: dest,
		Name:          lookupStr(doc, domain.FieldName),
		Description:   lookupStr(doc, domain.FieldDescription),
		Location: domain.Location{
			Address:    ptrStr(doc, "location.address"),
			City:       ptrStr(doc, "location.city"),
			Country:    ptrStr(doc, "location.country"),
			Lat:        getFloatFlexible(doc, "location.lat"),
			Lng:        getFloatFlexible(doc, "location.lng"),
			PostalCode: ptrStr(doc, "location.postal_code"),
		},
		Amenities: domain.Amenities{
			General: sliceStrings(doc, domain.FieldAmenitiesGeneral),
			Room:    sliceStrings(doc, domain.FieldAmenitiesRoom),
		},
		Images: domain.Images{
			Rooms:     sliceImages(doc, "images.rooms"),
			Site:      sliceImages(doc, "images.site"),
			Amenities: sliceImages(doc, "images.amenities"),
		},
		BookingConditions: sliceStrings(doc, domain.FieldBookingConditions),
	}, nil
}
