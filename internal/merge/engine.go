// Package merge folds partial canonical documents that share an identifier
// into one, following a per-field strategy table.
package merge

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"hotelmerge/internal/adapters/observability"
	"hotelmerge/internal/domain"
	"hotelmerge/internal/tree"
)

type rule struct {
	path     string
	strategy string
	apply    Func
}

// Engine is compiled once from configuration and is read-only afterwards.
type Engine struct {
	idField string
	rules   []rule
}

// NewEngine resolves every configured strategy against reg. Unknown names
// never fail: they are logged, counted and replaced by first_non_null.
// Rules are applied in lexical path order.
func NewEngine(cfg domain.MergeConfig, reg *Registry) *Engine {
	if reg == nil {
		reg = NewRegistry()
	}
	paths := make([]string, 0, len(cfg.Fields))
	for p := range cfg.Fields {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	e := &Engine{idField: domain.FieldID, rules: make([]rule, 0, len(paths))}
	for _, p := range paths {
		e.rules = append(e.rules, compile(p, cfg.Fields[p], reg))
	}
	return e
}

func compile(path string, mr domain.MergeRule, reg *Registry) rule {
	if mr.Strategy == MergeList {
		sub := make(map[string]Func, len(mr.SubfieldStrategies))
		for field, name := range mr.SubfieldStrategies {
			f, err := reg.Lookup(name)
			if err != nil {
				warnFallback(path+"."+field, name, err)
			}
			sub[field] = f
		}
		key := mr.Key
		return rule{path: path, strategy: MergeList, apply: func(a, b any) any {
			return mergeList(asList(a), asList(b), key, sub)
		}}
	}

	f, err := reg.Lookup(mr.Strategy)
	if err != nil {
		warnFallback(path, mr.Strategy, err)
		return rule{path: path, strategy: FirstNonNull, apply: f}
	}
	return rule{path: path, strategy: mr.Strategy, apply: f}
}

func warnFallback(field, name string, err error) {
	observability.ObserveStrategyFallback(field)
	log.Warn().Err(err).Str("field", field).Str("strategy", name).Msg("unknown merge strategy, using first_non_null")
}

// Strategies reports the resolved strategy per configured path.
func (e *Engine) Strategies() map[string]string {
	out := make(map[string]string, len(e.rules))
	for _, r := range e.rules {
		out[r.path] = r.strategy
	}
	return out
}

// MergePair folds incoming into existing in place and returns existing.
// Only configured fields change; a write blocked by a structural conflict
// leaves the prior value and is reported.
func (e *Engine) MergePair(existing, incoming tree.Node) tree.Node {
	for _, r := range e.rules {
		a, aok := tree.Get(existing, r.path)
		b, bok := tree.Get(incoming, r.path)
		if !aok && !bok {
			continue
		}
		merged := r.apply(a, b)
		if !aok && merged == nil {
			continue
		}
		if err := tree.Set(existing, r.path, merged); err != nil {
			observability.ObservePathConflict("merge")
			log.Warn().Err(err).Str("path", r.path).Msg("merged value not written")
		}
	}
	return existing
}

// MergeAll groups records by identifier in first-seen order and left-folds
// each group in arrival order. Records without an identifier are skipped.
func (e *Engine) MergeAll(records []tree.Node) []tree.Node {
	order := make([]string, 0, len(records))
	groups := make(map[string]tree.Node, len(records))
	for _, rec := range records {
		id, err := e.identifier(rec)
		if err != nil {
			log.Warn().Err(err).Msg("record skipped by merge")
			continue
		}
		base, seen := groups[id]
		if !seen {
			order = append(order, id)
			groups[id] = rec
			continue
		}
		groups[id] = e.MergePair(base, rec)
	}

	out := make([]tree.Node, len(order))
	for i, id := range order {
		out[i] = groups[id]
	}
	return out
}

var errNoIdentifier = errors.New("record has no identifier")

func (e *Engine) identifier(rec tree.Node) (string, error) {
	v, ok := tree.Get(rec, e.idField)
	if !ok || v == nil {
		return "", errNoIdentifier
	}
	id := fmt.Sprint(v)
	if id == "" {
		return "", errNoIdentifier
	}
	return id, nil
}
