package merge

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"hotelmerge/internal/domain"
)

// Strategy names accepted in merge configuration.
const (
	FirstNonNull = "first_non_null"
	ChooseBest   = "choose_best"
	Concatenate  = "concatenate"
	MergeList    = "merge_list"
)

// Func reconciles two values of the same field; a is the base value.
type Func func(a, b any) any

// Registry maps strategy names to scalar merge functions. The list strategy
// is not a Func: it takes a dedup key and subfield strategies and is
// compiled by the Engine.
type Registry struct {
	scalars map[string]Func
}

func NewRegistry() *Registry {
	return &Registry{scalars: map[string]Func{
		FirstNonNull: firstNonNull,
		ChooseBest:   chooseBest,
		Concatenate:  concatenate,
	}}
}

// Register adds or replaces a scalar strategy.
func (r *Registry) Register(name string, f Func) { r.scalars[name] = f }

// Lookup resolves a scalar strategy. Unknown names resolve to first_non_null
// together with an error wrapping domain.ErrUnknownStrategy.
func (r *Registry) Lookup(name string) (Func, error) {
	if f, ok := r.scalars[name]; ok {
		return f, nil
	}
	return firstNonNull, fmt.Errorf("%w: %q", domain.ErrUnknownStrategy, name)
}

// Names lists registered scalar strategies plus the list strategy.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.scalars)+1)
	for n := range r.scalars {
		out = append(out, n)
	}
	out = append(out, MergeList)
	sort.Strings(out)
	return out
}

func firstNonNull(a, b any) any {
	if a != nil {
		return a
	}
	return b
}

// chooseBest prefers the longer string (in characters) or the larger
// number; ties keep a.
func chooseBest(a, b any) any {
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			if utf8.RuneCountInString(sb) > utf8.RuneCountInString(sa) {
				return b
			}
			return a
		}
	}
	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			if fb > fa {
				return b
			}
			return a
		}
	}
	return firstNonNull(a, b)
}

// concatenate joins two texts with a single space, skipping blanks and text
// already contained in the other side.
func concatenate(a, b any) any {
	a, b = trimmed(a), trimmed(b)
	sa, aStr := a.(string)
	sb, bStr := b.(string)
	switch {
	case aStr && sa == "" && b != nil:
		return b
	case bStr && sb == "":
		return a
	case !aStr || !bStr:
		return firstNonNull(a, b)
	case strings.Contains(sa, sb):
		return sa
	case strings.Contains(sb, sa):
		return sb
	}
	return sa + " " + sb
}

func trimmed(v any) any {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return v
}

// mergeList unions two lists preserving first-seen order. With a key, items
// sharing the key are folded field by field using sub (first_non_null for
// unlisted fields); items without a usable key are deduplicated by value.
func mergeList(a, b []any, key string, sub map[string]Func) []any {
	if len(a) == 0 && len(b) == 0 {
		return []any{}
	}
	if len(a) == 0 {
		return dedup(b, key, sub)
	}
	if len(b) == 0 {
		return dedup(a, key, sub)
	}
	all := make([]any, 0, len(a)+len(b))
	all = append(all, a...)
	all = append(all, b...)
	return dedup(all, key, sub)
}

func dedup(items []any, key string, sub map[string]Func) []any {
	order := make([]string, 0, len(items))
	byID := make(map[string]any, len(items))
	for _, it := range items {
		id := identity(it, key)
		prev, seen := byID[id]
		if !seen {
			order = append(order, id)
			byID[id] = it
			continue
		}
		if key == "" {
			continue
		}
		pm, ok1 := prev.(map[string]any)
		im, ok2 := it.(map[string]any)
		if ok1 && ok2 {
			byID[id] = mergeItem(pm, im, sub)
		}
	}
	out := make([]any, len(order))
	for i, id := range order {
		out[i] = byID[id]
	}
	return out
}

// mergeItem returns a new map; neither input is modified.
func mergeItem(a, b map[string]any, sub map[string]Func) map[string]any {
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, bv := range b {
		f := sub[k]
		if f == nil {
			f = firstNonNull
		}
		av, has := out[k]
		if !has {
			av = nil
		}
		out[k] = f(av, bv)
	}
	return out
}

// identity is the dedup key of one list item. Keyed maps use the key's
// type and value, so "1" and 1 stay distinct; everything else is compared
// by its JSON form.
func identity(it any, key string) string {
	if key != "" {
		if m, ok := it.(map[string]any); ok {
			if kv, ok := m[key]; ok && kv != nil && kv != "" {
				return fmt.Sprintf("k:%T:%v", kv, kv)
			}
		}
	}
	if s, ok := it.(string); ok {
		return "s:" + s
	}
	b, err := json.Marshal(it)
	if err != nil {
		return fmt.Sprintf("v:%T:%v", it, it)
	}
	return "v:" + string(b)
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t)
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	return 0, false
}

// asList treats nil as empty and a scalar as a one-element list.
func asList(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	}
	return []any{v}
}
