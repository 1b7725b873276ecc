// Package mapping converts supplier-specific raw objects into canonical
// documents using declarative field rules.
package mapping

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"hotelmerge/internal/adapters/observability"
	"hotelmerge/internal/domain"
	"hotelmerge/internal/tree"
)

// Mapper is stateless apart from the list of mandatory canonical fields and
// safe for concurrent use.
type Mapper struct {
	required []string
}

// New returns a Mapper rejecting records that lack any of required.
// With no arguments the identifier and destination id are mandatory.
func New(required ...string) *Mapper {
	if len(required) == 0 {
		required = []string{domain.FieldID, domain.FieldDestinationID}
	}
	return &Mapper{required: required}
}

// Map applies rules to raw and returns the expanded canonical document.
// A missing or blank mandatory field yields a *domain.RecordRejectedError.
func (m *Mapper) Map(source string, raw map[string]any, rules domain.RuleTable) (tree.Node, error) {
	flat := make(map[string]any, len(rules))
	for path, rule := range rules {
		flat[path] = mapField(raw, rule)
	}

	doc, err := tree.Expand(flat)
	if err != nil {
		// Expand keeps every non-conflicting field; only the clashing writes are lost.
		var ce *tree.ConflictError
		for _, e := range unwrapAll(err) {
			if errors.As(e, &ce) {
				observability.ObservePathConflict("map")
				log.Warn().Str("source", source).Str("path", ce.Path).Str("segment", ce.Segment).Msg("field rule conflict, field skipped")
			}
		}
	}

	for _, f := range m.required {
		v, ok := tree.Get(doc, f)
		if !ok || blank(v) {
			return nil, &domain.RecordRejectedError{Source: source, Field: f, Reason: "missing or invalid mandatory field"}
		}
	}
	return doc, nil
}

// MapAll maps every raw object, dropping rejected ones. Rejections are
// counted, logged and returned so callers can report them.
func (m *Mapper) MapAll(source string, raws []map[string]any, rules domain.RuleTable) ([]tree.Node, []error) {
	out := make([]tree.Node, 0, len(raws))
	var rejected []error
	for i, raw := range raws {
		doc, err := m.Map(source, raw, rules)
		if err != nil {
			observability.ObserveRejected(source)
			log.Warn().Err(err).Str("source", source).Int("index", i).Msg("record rejected")
			rejected = append(rejected, err)
			continue
		}
		observability.ObserveMapped(source)
		out = append(out, doc)
	}
	return out, rejected
}

func mapField(raw map[string]any, r domain.FieldRule) any {
	var v any
	if r.Source != nil && *r.Source != "" {
		v, _ = tree.Get(raw, *r.Source)
	}
	if v == nil && r.Default != nil {
		v = clone(r.Default)
	}
	if v == nil {
		return nil
	}
	if r.Type != "" {
		v = coerce(v, r.Type)
	}
	if len(r.Fields) > 0 {
		if items, ok := v.([]any); ok {
			v = mapItems(items, r.Fields)
		}
	}
	return v
}

// mapItems renames sub-fields of structured list items (image link/description).
// Non-object items are dropped; an absent sub-field stays nil so a later
// source can still supply it during merge.
func mapItems(items []any, fields map[string]string) []any {
	out := make([]any, 0, len(items))
	for _, it := range items {
		obj, ok := it.(map[string]any)
		if !ok {
			continue
		}
		rec := make(map[string]any, len(fields))
		for sub, src := range fields {
			val, _ := tree.Get(obj, src)
			switch t := val.(type) {
			case nil:
				rec[sub] = nil
			case string:
				rec[sub] = strings.TrimSpace(t)
			default:
				rec[sub] = t
			}
		}
		out = append(out, rec)
	}
	return out
}

func blank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}

func unwrapAll(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}

// Validate checks a rule table at load time.
func Validate(rules domain.RuleTable) error {
	paths := make([]string, 0, len(rules))
	for p := range rules {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		if strings.TrimSpace(p) == "" || strings.Contains(p, "..") || strings.HasPrefix(p, ".") || strings.HasSuffix(p, ".") {
			return fmt.Errorf("invalid canonical path %q", p)
		}
		switch rules[p].Type {
		case "", domain.TypeInteger, domain.TypeFloat, domain.TypeString, domain.TypeList:
		default:
			return fmt.Errorf("field %q: unknown type %q", p, rules[p].Type)
		}
		for sub, src := range rules[p].Fields {
			if sub == "" || src == "" {
				return fmt.Errorf("field %q: empty sub-field mapping", p)
			}
		}
	}
	return nil
}
