package app

import (
	"fmt"
	"strconv"
	"strings"

	"hotelmerge/internal/domain"
)

// NoFilter is the selector value meaning "do not filter on this axis".
const NoFilter = "none"

// ParseSelector splits a comma-separated selector, trimming tokens and
// dropping empty ones. "" and "none" (any case) yield nil.
func ParseSelector(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, NoFilter) {
		return nil
	}
	var out []string
	for _, tok := range strings.Split(s, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// ParseFilter builds a Filter from the hotel id and destination id selectors.
func ParseFilter(ids, destinations string) (domain.Filter, error) {
	f := domain.Filter{IDs: ParseSelector(ids)}
	for _, tok := range ParseSelector(destinations) {
		n, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return domain.Filter{}, fmt.Errorf("destination id %q is not an integer", tok)
		}
		f.DestinationIDs = append(f.DestinationIDs, n)
	}
	return f, nil
}

// selectorString renders one filter axis back into selector syntax.
func selectorString(f domain.Filter) (ids, destinations string) {
	ids, destinations = NoFilter, NoFilter
	if len(f.IDs) > 0 {
		ids = strings.Join(f.IDs, ",")
	}
	if len(f.DestinationIDs) > 0 {
		parts := make([]string, len(f.DestinationIDs))
		for i, d := range f.DestinationIDs {
			parts[i] = strconv.FormatInt(d, 10)
		}
		destinations = strings.Join(parts, ",")
	}
	return ids, destinations
}
