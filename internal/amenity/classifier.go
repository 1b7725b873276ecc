// Package amenity buckets free-text amenity terms into the controlled
// general/room vocabulary.
package amenity

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"hotelmerge/internal/domain"
	"hotelmerge/internal/tree"
)

const (
	General = "general"
	Room    = "room"
)

// Classifier is immutable after New and safe for concurrent use.
type Classifier struct {
	general map[string]string // normalized key -> display form
	room    map[string]string
}

// New precomputes the normalized vocabularies. Overlapping terms are a
// configuration mistake; they are reported and resolve to general.
func New(v domain.Vocabulary) *Classifier {
	c := &Classifier{
		general: index(v.General),
		room:    index(v.Room),
	}
	for k := range c.room {
		if _, dup := c.general[k]; dup {
			log.Warn().Str("term", k).Msg("amenity vocabularies overlap; term resolves to general")
		}
	}
	return c
}

func index(terms []string) map[string]string {
	m := make(map[string]string, len(terms))
	for _, t := range terms {
		k := Normalize(t)
		if k == "" {
			continue
		}
		if _, seen := m[k]; !seen {
			m[k] = display(t)
		}
	}
	return m
}

// Normalize is the lookup key: NFKC, lowercase, all whitespace removed.
func Normalize(term string) string {
	s := cases.Lower(language.Und).String(norm.NFKC.String(term))
	return strings.Join(strings.Fields(s), "")
}

// display is the emitted form: lowercase with whitespace runs collapsed.
func display(term string) string {
	s := cases.Lower(language.Und).String(norm.NFKC.String(term))
	return strings.Join(strings.Fields(s), " ")
}

// Bucket returns the bucket and emitted form for one term. Unknown terms
// fall back to general. ok is false for blank input.
func (c *Classifier) Bucket(term string) (bucket, out string, ok bool) {
	k := Normalize(term)
	if k == "" {
		return "", "", false
	}
	if d, hit := c.general[k]; hit {
		return General, d, true
	}
	if d, hit := c.room[k]; hit {
		return Room, d, true
	}
	return General, display(term), true
}

// Classify returns deduplicated, sorted buckets.
func (c *Classifier) Classify(terms []string) domain.Amenities {
	gen := map[string]struct{}{}
	room := map[string]struct{}{}
	for _, t := range terms {
		b, d, ok := c.Bucket(t)
		if !ok {
			continue
		}
		if b == Room {
			room[d] = struct{}{}
		} else {
			gen[d] = struct{}{}
		}
	}
	return domain.Amenities{General: sortedKeys(gen), Room: sortedKeys(room)}
}

// Reclassify pools the raw general and room lists of a canonical document
// and writes both buckets back.
func (c *Classifier) Reclassify(doc tree.Node) error {
	var terms []string
	for _, p := range []string{domain.FieldAmenitiesGeneral, domain.FieldAmenitiesRoom} {
		v, _ := tree.Get(doc, p)
		terms = append(terms, stringsOf(v)...)
	}
	a := c.Classify(terms)
	if err := tree.Set(doc, domain.FieldAmenitiesGeneral, toAny(a.General)); err != nil {
		return fmt.Errorf("classify amenities: %w", err)
	}
	if err := tree.Set(doc, domain.FieldAmenitiesRoom, toAny(a.Room)); err != nil {
		return fmt.Errorf("classify amenities: %w", err)
	}
	return nil
}

func stringsOf(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, x := range t {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return t
	}
	return nil
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func toAny(xs []string) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}
