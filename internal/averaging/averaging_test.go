package averaging

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nucleval/internal/dataset"
	apperrors "nucleval/internal/errors"
	"nucleval/internal/quantity"
	"nucleval/internal/shared/testutil"
)

type pt struct {
	x, sigma   float64
	provenance string
}

func points(in ...pt) []dataset.DataPoint {
	out := make([]dataset.DataPoint, len(in))
	for i, p := range in {
		out[i] = dataset.NewDataPoint(fmt.Sprintf("p%d", i+1), "", p.provenance, quantity.Symmetric(p.x, p.sigma))
	}
	return out
}

func consistentSet() []dataset.DataPoint {
	return points(pt{10, 1, ""}, pt{12, 1, ""}, pt{11, 1, ""})
}

func outlierSet() []dataset.DataPoint {
	return points(pt{10, 1, ""}, pt{12, 1, ""}, pt{11, 1, ""}, pt{50, 1, ""})
}

func hasPoint(list []dataset.DataPoint, id string) bool {
	for _, p := range list {
		if p.ID == id {
			return true
		}
	}
	return false
}

func adjusted(r *Result, id string) bool {
	for _, a := range r.Adjustments {
		if a.Point.ID == id {
			return true
		}
	}
	return false
}

func TestWeightedMean(t *testing.T) {
	r, err := Average(consistentSet(), 25, Weighted)
	require.NoError(t, err)

	assert.Equal(t, StatusAveraged, r.Status)
	assert.InDelta(t, 11.0, r.Value, 1e-12)
	assert.InDelta(t, 1/math.Sqrt(3), r.Internal, 1e-12)
	assert.InDelta(t, 1/math.Sqrt(3), r.Sigma, 1e-12)
	assert.InDelta(t, 2.0, r.ChiSquare, 1e-12)
	assert.InDelta(t, 1.0, r.ReducedChiSquare, 1e-12)
	assert.True(t, r.Consistent)
	assert.Equal(t, quantity.Rendered{Value: "11.0", Uncertainty: "6"}, r.Rendered)
	assert.Equal(t, "weighted", r.MethodUsed)
	assert.Len(t, r.Included, 3)
	assert.Empty(t, r.Excluded)
	assert.Equal(t, []Stage{
		StageCollected, StageFiltered, StageWeightComputed,
		StageChiSquareChecked, StageAccepted, StageReported,
	}, r.Stages)
}

func TestOutlierDetected(t *testing.T) {
	r, err := Average(outlierSet(), 25, Auto)
	require.NoError(t, err)

	assert.Greater(t, r.ReducedChiSquare, 1.0)
	assert.False(t, r.Consistent)
	assert.Contains(t, r.Stages, StageOutlierRefined)
	assert.Equal(t, "nrm", r.MethodUsed)
	assert.InDelta(t, 11.0, r.Value, 1e-9)
	assert.InDelta(t, 1/math.Sqrt(3), r.Sigma, 1e-9)
	assert.True(t, hasPoint(r.ExcludedPoints(), "p4"))
	assert.False(t, hasPoint(r.Included, "p4"))
	assert.Contains(t, r.Narrative, "inconsistent")
	assert.Contains(t, r.Narrative, "normalized residual")
}

// TestMethods_Outlier tests that each robust method limits the influence of
// a discrepant point.
func TestMethods_Outlier(t *testing.T) {
	tests := []struct {
		method Method
		check  func(t *testing.T, r *Result)
	}{
		{NRM, func(t *testing.T, r *Result) {
			assert.InDelta(t, 11.0, r.Value, 1e-9)
			assert.True(t, hasPoint(r.ExcludedPoints(), "p4"))
		}},
		{Rajeval, func(t *testing.T, r *Result) {
			assert.InDelta(t, 11.0, r.Value, 1e-9)
			assert.True(t, hasPoint(r.ExcludedPoints(), "p4"))
		}},
		{EVM, func(t *testing.T, r *Result) {
			assert.InDelta(t, 11.0, r.Value, 1e-6)
			assert.True(t, adjusted(r, "p4"))
			assert.Len(t, r.Adjustments, 1)
		}},
		{Iterative, func(t *testing.T, r *Result) {
			assert.InDelta(t, 11.5, r.Value, 0.01)
			assert.True(t, adjusted(r, "p4"))
		}},
		{Bootstrap, func(t *testing.T, r *Result) {
			assert.Greater(t, r.Value, 10.0)
			assert.Less(t, r.Value, 20.0)
			assert.Equal(t, 2000, r.Iterations)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.method.String(), func(t *testing.T) {
			r, err := Average(outlierSet(), 25, tt.method)
			require.NoError(t, err)
			assert.Equal(t, tt.method.String(), r.MethodUsed)
			assert.False(t, r.Consistent)
			assert.Contains(t, r.Stages, StageOutlierRefined)
			tt.check(t, r)
		})
	}
}

func TestMethods_Consistent(t *testing.T) {
	for _, m := range []Method{Weighted, NRM, Rajeval, Auto} {
		t.Run(m.String(), func(t *testing.T) {
			r, err := Average(consistentSet(), 25, m)
			require.NoError(t, err)
			assert.InDelta(t, 11.0, r.Value, 1e-9)
			assert.Empty(t, r.Excluded)
			assert.Empty(t, r.Adjustments)
			assert.Contains(t, r.Stages, StageAccepted)
		})
	}
}

func TestUnweighted(t *testing.T) {
	r, err := Average(consistentSet(), 25, Unweighted)
	require.NoError(t, err)
	assert.InDelta(t, 11.0, r.Value, 1e-12)
	assert.InDelta(t, 1/math.Sqrt(3), r.Sigma, 1e-12)
}

func TestLWM_CapsDominantWeight(t *testing.T) {
	r, err := Average(points(pt{10, 0.1, ""}, pt{12, 1, ""}, pt{11, 1, ""}), 25, LWM)
	require.NoError(t, err)

	require.Len(t, r.Adjustments, 1)
	a := r.Adjustments[0]
	assert.Equal(t, "p1", a.Point.ID)
	assert.Equal(t, AdjustUncertainty, a.Kind)
	assert.InDelta(t, 0.1, a.From, 1e-12)
	assert.InDelta(t, 1/math.Sqrt(2), a.To, 1e-9)

	assert.InDelta(t, 10.75, r.Value, 1e-9)
	assert.InDelta(t, 0.5*math.Sqrt(1.375), r.Sigma, 1e-9)
}

func TestLWM_NeverBelowSmallestInput(t *testing.T) {
	r, err := Average(points(pt{10, 0.2, ""}, pt{10, 0.2, ""}), 25, LWM)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, r.Sigma, 0.2)
}

func TestBest(t *testing.T) {
	pts := points(pt{10, 0.5, "1998AB01"}, pt{11, 0.5, "2005XY02"}, pt{12, 1, "2010ZZ01"})
	r, err := Average(pts, 25, Best)
	require.NoError(t, err)

	assert.Equal(t, 11.0, r.Value)
	require.Len(t, r.Included, 1)
	assert.Equal(t, "p2", r.Included[0].ID)
	assert.Len(t, r.Excluded, 2)
	v, _ := r.Adopted.Value()
	assert.Equal(t, 11.0, v)
}

func TestBootstrap_Reproducible(t *testing.T) {
	a, err := Average(outlierSet(), 25, Bootstrap)
	require.NoError(t, err)
	b, err := Average(outlierSet(), 25, Bootstrap)
	require.NoError(t, err)
	assert.Equal(t, a.Value, b.Value)
	assert.Equal(t, a.Sigma, b.Sigma)
}

func TestEngine_RefinementLog(t *testing.T) {
	tests := []struct {
		method      Method
		wantRefined bool
	}{
		{Weighted, false},
		{Unweighted, false},
		{NRM, true},
	}

	for _, tt := range tests {
		t.Run(tt.method.String(), func(t *testing.T) {
			rec, logger := testutil.NewLogRecorder(t)
			r, err := NewEngine(DefaultOptions(), logger).Average(context.Background(), dataset.NewCollection("g", outlierSet()...), tt.method)
			require.NoError(t, err)
			assert.False(t, r.Consistent)

			_, found := rec.Find("inconsistent group refined")
			assert.Equal(t, tt.wantRefined, found)
		})
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want float64
	}{
		{"odd", []float64{3, 1, 2}, 2},
		{"even", []float64{1, 2, 3, 4}, 2.5},
		{"even unsorted", []float64{1.2, -1, 1, -1.2}, 0},
		{"single", []float64{7}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := append([]float64(nil), tt.in...)
			assert.InDelta(t, tt.want, median(in), 1e-12)
			assert.Equal(t, tt.in, in)
		})
	}

	assert.True(t, math.IsNaN(median(nil)))
}

// Even-sized symmetric data must average to their centre whatever the
// input order.
func TestMethods_SymmetricEvenSet(t *testing.T) {
	sets := map[string][]dataset.DataPoint{
		"two points":           points(pt{-1, 0.1, ""}, pt{1, 0.1, ""}),
		"two points reversed":  points(pt{1, 0.1, ""}, pt{-1, 0.1, ""}),
		"four points":          points(pt{-1.2, 0.1, ""}, pt{-1, 0.1, ""}, pt{1, 0.1, ""}, pt{1.2, 0.1, ""}),
		"four points shuffled": points(pt{1, 0.1, ""}, pt{-1.2, 0.1, ""}, pt{1.2, 0.1, ""}, pt{-1, 0.1, ""}),
	}

	for name, pts := range sets {
		t.Run(name, func(t *testing.T) {
			r, err := Average(pts, 25, Iterative)
			require.NoError(t, err)
			assert.InDelta(t, 0, r.Value, 1e-9)

			r, err = Average(pts, 25, Bootstrap)
			require.NoError(t, err)
			assert.InDelta(t, 0, r.Value, 0.1)
		})
	}
}

func TestInsufficientData(t *testing.T) {
	tests := []struct {
		name   string
		points []dataset.DataPoint
		usable int
	}{
		{"single point", points(pt{10, 1, ""}), 1},
		{"single point with limit", append(points(pt{10, 1, ""}),
			dataset.NewDataPoint("lim", "", "", quantity.Limit(quantity.UpperLimit, 5, false))), 1},
		{"no points", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, m := range Methods() {
				r, err := Average(tt.points, 25, m)
				require.NoError(t, err)

				assert.Equal(t, StatusInsufficientData, r.Status)
				assert.True(t, math.IsNaN(r.ChiSquare))
				assert.True(t, math.IsNaN(r.ReducedChiSquare))
				assert.False(t, r.Consistent)
				assert.Contains(t, r.Narrative, "No average computed")
				assert.Equal(t, []Stage{StageCollected, StageFiltered, StageReported}, r.Stages)
				assert.Len(t, r.Included, tt.usable)
				if tt.usable == 1 {
					assert.Equal(t, 10.0, r.Value)
				} else {
					assert.True(t, r.Adopted.IsZero())
				}
			}
		})
	}
}

func TestReferenceOnlyPointsExcluded(t *testing.T) {
	pts := append(consistentSet(),
		dataset.FromRecord("ds", dataset.Record{ID: "lim", Value: "5", Uncertainty: "LT"}),
		dataset.FromRecord("ds", dataset.Record{ID: "bad", Value: "x"}),
	)
	r, err := Average(pts, 25, Weighted)
	require.NoError(t, err)

	assert.InDelta(t, 11.0, r.Value, 1e-12)
	assert.Len(t, r.Excluded, 2)
	assert.Contains(t, r.Excluded[0].Reason, "reference only")
	assert.Contains(t, r.Narrative, "ds/lim")
}

func TestResultJSON(t *testing.T) {
	r, err := Average(points(pt{10, 1, ""}), 25, Weighted)
	require.NoError(t, err)

	b, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Nil(t, decoded["chi_square"])
	assert.Equal(t, "insufficient_data", decoded["status"])
	assert.Equal(t, "weighted", decoded["method"])
	assert.Equal(t, 10.0, decoded["value"])
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in   string
		want Method
	}{
		{"weighted", Weighted},
		{"WM", Weighted},
		{"uwm", Unweighted},
		{"LWM", LWM},
		{"rt", Rajeval},
		{"huber", Iterative},
		{" Auto ", Auto},
	}
	for _, tt := range tests {
		got, err := ParseMethod(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseMethod("median")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestEngine_Validation(t *testing.T) {
	opts := DefaultOptions()
	opts.ConfidenceLevel = 1.5
	_, err := NewEngine(opts, nil).Average(context.Background(), dataset.NewCollection("g", consistentSet()...), Weighted)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = NewEngine(DefaultOptions(), nil).Average(context.Background(), dataset.NewCollection("g", consistentSet()...), Method(42))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCriticalReduced(t *testing.T) {
	assert.InDelta(t, 5.991/2, criticalReduced(3, 0.95), 1e-3)
	assert.InDelta(t, 7.815/3, criticalReduced(4, 0.95), 1e-3)
	assert.True(t, math.IsNaN(criticalReduced(1, 0.95)))
}
