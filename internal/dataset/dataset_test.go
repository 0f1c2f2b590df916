package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "nucleval/internal/errors"
	"nucleval/internal/quantity"
)

// TestFromRecord tests classification of raw records
func TestFromRecord(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		usable bool
		note   string
	}{
		{"measured", Record{ID: "a", Value: "123.4", Uncertainty: "5"}, true, ""},
		{"asymmetric", Record{ID: "b", Value: "10.0", Uncertainty: "+12-8"}, true, ""},
		{"upper limit", Record{ID: "c", Value: "5", Uncertainty: "LT"}, false, NoteLimit},
		{"approximate", Record{ID: "d", Value: "~5"}, false, NoteApproximate},
		{"calculated", Record{ID: "e", Value: "5", Uncertainty: "CA"}, false, NoteCalculated},
		{"no uncertainty", Record{ID: "f", Value: "5"}, false, NoteUnknown},
		{"zero uncertainty", Record{ID: "g", Value: "5", Uncertainty: "0"}, false, NoteNonPositive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := FromRecord("ds1", tt.record)
			assert.Equal(t, tt.usable, p.Usable())
			assert.Equal(t, tt.note, p.Note)
			assert.Equal(t, "ds1", p.Dataset)
		})
	}
}

func TestFromRecord_ParseFailure(t *testing.T) {
	p := FromRecord("ds1", Record{ID: "x", Value: "abc", Uncertainty: "1", Provenance: "2001AB01"})

	assert.False(t, p.Usable())
	assert.True(t, p.Quantity.IsZero())
	assert.Contains(t, p.Note, NoteParseFailure)
	assert.Equal(t, "2001AB01", p.Provenance)
}

func TestDataPoint_Weight(t *testing.T) {
	p := NewDataPoint("a", "", "", quantity.FromNumeric(10, ptr(2), ptr(1)))
	w, err := p.Weight()
	require.NoError(t, err)
	assert.InDelta(t, 0.25, w, 1e-12)

	_, err = NewDataPoint("b", "", "", quantity.Limit(quantity.UpperLimit, 5, false)).Weight()
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNegativeWeight)

	_, err = NewDataPoint("c", "", "", quantity.Symmetric(5, 0)).Weight()
	assert.ErrorIs(t, err, apperrors.ErrNegativeWeight)
}

func ptr(f float64) *float64 { return &f }

func TestCollection(t *testing.T) {
	c := NewCollection("level",
		FromRecord("a", Record{ID: "1", Value: "12", Uncertainty: "1"}),
		FromRecord("b", Record{ID: "2", Value: "10", Uncertainty: "1"}),
		FromRecord("c", Record{ID: "3", Value: "11", Uncertainty: "LT"}),
		FromRecord("d", Record{ID: "4", Value: "bad"}),
	)

	assert.Equal(t, 4, c.Len())
	assert.Len(t, c.Usable(), 2)
	assert.Len(t, c.ReferenceOnly(), 2)

	sorted := c.Sorted()
	ids := make([]string, 0, len(sorted))
	for _, p := range sorted {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"4", "2", "3", "1"}, ids)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "ds/1", DataPoint{ID: "1", Dataset: "ds"}.Label())
	assert.Equal(t, "1", DataPoint{ID: "1"}.Label())
	assert.Equal(t, "2005AB12", DataPoint{Provenance: "2005AB12"}.Label())
}

// TestMoreRecent tests key-number recency ordering
func TestMoreRecent(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"2005AB12", "1998XY01", true},
		{"1998XY01", "2005AB12", false},
		{"2005AB12", "2005AA01", true},
		{"2005AB12", "unpublished", true},
		{"note", "2005AB12", false},
	}

	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, MoreRecent(tt.a, tt.b))
		})
	}

	year, ok := ProvenanceYear("2005AB12")
	assert.True(t, ok)
	assert.Equal(t, 2005, year)
	_, ok = ProvenanceYear("AB")
	assert.False(t, ok)
}
