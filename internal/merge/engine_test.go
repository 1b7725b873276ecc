package merge_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelmerge/internal/domain"
	"hotelmerge/internal/merge"
	"hotelmerge/internal/tree"
)

var cfg = domain.MergeConfig{Fields: map[string]domain.MergeRule{
	"name":               {Strategy: merge.ChooseBest},
	"description":        {Strategy: merge.ChooseBest},
	"location.address":   {Strategy: merge.ChooseBest},
	"location.lat":       {Strategy: merge.FirstNonNull},
	"amenities.general":  {Strategy: merge.MergeList},
	"amenities.room":     {Strategy: merge.MergeList},
	"images.rooms":       {Strategy: merge.MergeList, Key: "link", SubfieldStrategies: map[string]string{"description": merge.ChooseBest}},
	"booking_conditions": {Strategy: merge.MergeList},
}}

func recordA() tree.Node {
	return tree.Node{
		"id":             "1",
		"destination_id": int64(5432),
		"name":           "Hotel Alpha",
		"description":    "Nice location near the sea.",
		"location": map[string]any{
			"address": "123 Beach Ave", "lat": 34.123456,
		},
		"amenities": map[string]any{
			"general": []any{"wifi", "breakfast"},
			"room":    []any{"tv", "iron"},
		},
		"images": map[string]any{
			"rooms": []any{map[string]any{"link": "http://example.com/img1.jpg", "description": "Room view"}},
		},
		"booking_conditions": []any{"No pets allowed", "Check-in after 3 PM"},
	}
}

func recordB() tree.Node {
	return tree.Node{
		"id":             "1",
		"destination_id": int64(5432),
		"name":           "Hotel Alpha",
		"description":    "Great spot for family vacations.",
		"location": map[string]any{
			"address": "123 Beach Ave", "lat": nil,
		},
		"amenities": map[string]any{
			"general": []any{"pool"},
			"room":    []any{"tv", "hair dryer"},
		},
		"images": map[string]any{
			"rooms": []any{map[string]any{"link": "http://example.com/img2.jpg", "description": "New Room view"}},
		},
		"booking_conditions": []any{"All children are welcome"},
	}
}

func get(t *testing.T, n tree.Node, path string) any {
	t.Helper()
	v, ok := tree.Get(n, path)
	require.True(t, ok, "missing %s", path)
	return v
}

func TestMergePair_TwoPartialRecords(t *testing.T) {
	e := merge.NewEngine(cfg, nil)
	got := e.MergePair(recordA(), recordB())

	assert.Equal(t, "Great spot for family vacations.", got["description"])
	assert.Equal(t, []any{"wifi", "breakfast", "pool"}, get(t, got, "amenities.general"))
	assert.Equal(t, []any{"tv", "iron", "hair dryer"}, get(t, got, "amenities.room"))
	assert.Len(t, get(t, got, "images.rooms"), 2)
	assert.Len(t, get(t, got, "booking_conditions"), 3)
	assert.Equal(t, 34.123456, get(t, got, "location.lat"), "non-null coordinate kept")
}

func TestMergePair_Idempotent(t *testing.T) {
	e := merge.NewEngine(cfg, nil)
	r := recordA()
	assert.Equal(t, recordA(), e.MergePair(r, recordA()))

	same := recordB()
	assert.Equal(t, recordB(), e.MergePair(same, same))
}

func TestMergePair_UnconfiguredFieldsKeepBase(t *testing.T) {
	e := merge.NewEngine(domain.MergeConfig{Fields: map[string]domain.MergeRule{
		"description": {Strategy: merge.Concatenate},
	}}, nil)

	a := tree.Node{"id": "1", "name": "", "description": "Close to the beach."}
	b := tree.Node{"id": "1", "name": "Hotel Alpha", "description": "Pet friendly."}
	got := e.MergePair(a, b)

	assert.Equal(t, "", got["name"], "no implicit first_non_null for unconfigured fields")
	assert.Equal(t, "Close to the beach. Pet friendly.", got["description"])
}

func TestMergePair_FieldOnlyInIncoming(t *testing.T) {
	e := merge.NewEngine(cfg, nil)
	a := tree.Node{"id": "1"}
	b := tree.Node{"id": "1", "location": map[string]any{"address": "8 Sentosa Gateway"}}

	got := e.MergePair(a, b)
	assert.Equal(t, "8 Sentosa Gateway", get(t, got, "location.address"))
	_, ok := tree.Get(got, "images.rooms")
	assert.False(t, ok, "fields absent on both sides stay absent")
}

func TestMergePair_ConflictKeepsPriorValue(t *testing.T) {
	e := merge.NewEngine(cfg, nil)
	a := tree.Node{"id": "1", "location": "somewhere"}
	b := tree.Node{"id": "1", "location": map[string]any{"address": "8 Sentosa Gateway"}}

	got := e.MergePair(a, b)
	assert.Equal(t, "somewhere", got["location"])
}

func TestMergeAll_GroupsInFirstSeenOrder(t *testing.T) {
	e := merge.NewEngine(cfg, nil)
	recs := []tree.Node{
		{"id": "b", "name": "B"},
		{"id": "a", "name": "A"},
		{"id": "b", "name": "B longer"},
		{"name": "no id"},
		{"id": "c", "name": "C"},
	}

	got := e.MergeAll(recs)
	require.Len(t, got, 3)
	assert.Equal(t, "b", got[0]["id"])
	assert.Equal(t, "B longer", got[0]["name"])
	assert.Equal(t, "a", got[1]["id"])
	assert.Equal(t, "c", got[2]["id"])
}

func TestMergeAll_EqualsLeftFold(t *testing.T) {
	e := merge.NewEngine(domain.MergeConfig{Fields: map[string]domain.MergeRule{
		"description": {Strategy: merge.Concatenate},
		"name":        {Strategy: merge.ChooseBest},
	}}, nil)
	mk := func() []tree.Node {
		return []tree.Node{
			{"id": "1", "name": "abc", "description": "first"},
			{"id": "1", "name": "xyz", "description": "second"},
			{"id": "1", "name": "pqr", "description": "third"},
		}
	}

	all := e.MergeAll(mk())
	in := mk()
	folded := e.MergePair(e.MergePair(in[0], in[1]), in[2])

	require.Len(t, all, 1)
	if diff := cmp.Diff(folded, all[0]); diff != "" {
		t.Fatalf("mergeAll differs from left fold (-fold +all):\n%s", diff)
	}
	assert.Equal(t, "first second third", all[0]["description"])
	assert.Equal(t, "abc", all[0]["name"], "ties keep the earliest record")
}

func TestNewEngine_UnknownStrategyFallsBack(t *testing.T) {
	e := merge.NewEngine(domain.MergeConfig{Fields: map[string]domain.MergeRule{
		"name":         {Strategy: "newest"},
		"images.rooms": {Strategy: merge.MergeList, Key: "link", SubfieldStrategies: map[string]string{"description": "fancy"}},
	}}, nil)

	assert.Equal(t, map[string]string{"name": merge.FirstNonNull, "images.rooms": merge.MergeList}, e.Strategies())

	got := e.MergePair(tree.Node{"id": "1", "name": nil}, tree.Node{"id": "1", "name": "Hotel"})
	assert.Equal(t, "Hotel", got["name"])
}
