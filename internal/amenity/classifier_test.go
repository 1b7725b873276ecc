package amenity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelmerge/internal/amenity"
	"hotelmerge/internal/domain"
	"hotelmerge/internal/tree"
)

var vocab = domain.Vocabulary{
	General: []string{"outdoor pool", "indoor pool", "business center", "childcare", "wifi", "dry cleaning", "breakfast", "pool", "bar", "parking", "concierge", "gym"},
	Room:    []string{"aircon", "tv", "coffee machine", "kettle", "hair dryer", "iron", "bathtub", "tub", "minibar"},
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "businesscenter", amenity.Normalize("  Business Center "))
	assert.Equal(t, "businesscenter", amenity.Normalize("BusinessCenter"))
	assert.Equal(t, "wifi", amenity.Normalize("ＷｉＦｉ"), "full-width forms fold under NFKC")
	assert.Equal(t, "", amenity.Normalize("   "))
}

func TestClassify_ExactMatchAndFallback(t *testing.T) {
	c := amenity.New(vocab)

	got := c.Classify([]string{"Pool", "BusinessCenter", "WiFi ", "DryCleaning", " Breakfast", "Aircon", "Tv", "Coffee machine", "Kettle", "Hair dryer", "Iron", "Tub", "Sauna  Room", "wifi"})

	assert.Equal(t, []string{"breakfast", "business center", "dry cleaning", "pool", "sauna room", "wifi"}, got.General)
	assert.Equal(t, []string{"aircon", "coffee machine", "hair dryer", "iron", "kettle", "tub", "tv"}, got.Room)
}

func TestClassify_IsTotalAndStable(t *testing.T) {
	c := amenity.New(vocab)
	in := []string{"Hair Dryer", "rooftop terrace", "BathTub", "GYM", "", "   "}

	first := c.Classify(in)
	for _, term := range in {
		b, _, ok := c.Bucket(term)
		if ok {
			assert.Contains(t, []string{amenity.General, amenity.Room}, b)
		}
	}

	again := c.Classify(append(append([]string{}, first.General...), first.Room...))
	assert.Equal(t, first, again, "classifying the output again keeps every bucket")
}

func TestClassify_OverlapResolvesToGeneral(t *testing.T) {
	c := amenity.New(domain.Vocabulary{General: []string{"mini bar"}, Room: []string{"minibar"}})
	got := c.Classify([]string{"MiniBar"})
	assert.Equal(t, []string{"mini bar"}, got.General)
	assert.Empty(t, got.Room)
}

func TestReclassify_PoolsBothLists(t *testing.T) {
	c := amenity.New(vocab)
	doc := tree.Node{}
	require.NoError(t, tree.Set(doc, "amenities.general", []any{"outdoor pool", "tv", 42}))
	require.NoError(t, tree.Set(doc, "amenities.room", []any{"indoor pool", "minibar"}))

	require.NoError(t, c.Reclassify(doc))

	g, _ := tree.Get(doc, "amenities.general")
	r, _ := tree.Get(doc, "amenities.room")
	assert.Equal(t, []any{"indoor pool", "outdoor pool"}, g)
	assert.Equal(t, []any{"minibar", "tv"}, r)
}

func TestReclassify_EmptyDocumentGetsEmptyBuckets(t *testing.T) {
	c := amenity.New(vocab)
	doc := tree.Node{"id": "1"}
	require.NoError(t, c.Reclassify(doc))

	g, ok := tree.Get(doc, "amenities.general")
	require.True(t, ok)
	assert.Equal(t, []any{}, g)
}

func TestReclassify_Conflict(t *testing.T) {
	c := amenity.New(vocab)
	doc := tree.Node{"amenities": "wifi, pool"}
	assert.ErrorIs(t, c.Reclassify(doc), tree.ErrPathConflict)
}
