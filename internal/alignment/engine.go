package alignment

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"

	apperrors "nucleval/internal/errors"
)

// Engine aligns record series
type Engine struct {
	opts   Options
	logger *slog.Logger
}

// NewEngine creates an engine. A nil logger uses slog.Default().
func NewEngine(opts Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{opts: opts, logger: logger}
}

// Align aligns series with the given tolerance and minimum group fraction,
// using default values for the remaining options.
func Align(series []Series, tolerance, minFraction float64) (*Result, error) {
	opts := DefaultOptions()
	opts.Tolerance = tolerance
	opts.MinFraction = minFraction
	return NewEngine(opts, nil).Align(context.Background(), series)
}

// AlignKeys is a convenience wrapper over Align for plain key slices
func AlignKeys(keys [][]float64, tolerance, minFraction float64) (*Result, error) {
	series := make([]Series, len(keys))
	for i, k := range keys {
		series[i] = KeySeries{Keys: k}
	}
	return Align(series, tolerance, minFraction)
}

// Align runs one alignment pass. Invalid options or unsorted keys give a
// VALIDATION error; reaching the iteration cap does not fail the call but
// returns the partial groups with a warning.
func (e *Engine) Align(ctx context.Context, series []Series) (*Result, error) {
	if err := e.opts.Validate(); err != nil {
		return nil, fmt.Errorf("validate options: %w", err)
	}
	if err := validateSeries(series); err != nil {
		return nil, fmt.Errorf("validate series: %w", err)
	}

	s := newSearch(series, e.opts)
	result := &Result{TerminationReason: ReasonCompleted}

	nonEmpty := 0
	for _, sr := range series {
		if sr.Len() > 0 {
			nonEmpty++
		}
	}

	best := 0.0
	stalled := 0

	for !s.exhausted() {
		if err := ctx.Err(); err != nil {
			e.terminate(ctx, result, s, ReasonContextExpired)
			result.Warnings = append(result.Warnings, err.Error())
			return result, nil
		}

		if s.iterations >= e.opts.MaxIterations {
			e.capReached(ctx, result, s)
			return result, nil
		}

		d, capped := s.bestDraft()
		fraction := float64(len(d.members)) / float64(nonEmpty)

		if !capped && fraction < e.opts.MinFraction {
			e.terminate(ctx, result, s, ReasonMinFraction)
			return result, nil
		}
		if !capped && e.opts.StallGroups > 0 {
			// a group holding every non-empty series cannot improve
			if fraction < best || (fraction == best && fraction < 1) {
				stalled++
			} else {
				stalled = 0
				best = fraction
			}
			if stalled >= e.opts.StallGroups {
				e.terminate(ctx, result, s, ReasonStalled)
				return result, nil
			}
		}

		result.Groups = append(result.Groups, s.commit(d)...)
		e.logger.DebugContext(ctx, "alignment group accepted",
			slog.Float64("reference", d.ref),
			slog.Int("members", len(d.members)),
			slog.Int("skipped", d.skipped),
			slog.Float64("fraction", fraction))

		if capped {
			e.capReached(ctx, result, s)
			return result, nil
		}
	}

	result.Iterations = s.iterations
	return result, nil
}

func (e *Engine) capReached(ctx context.Context, r *Result, s *search) {
	e.terminate(ctx, r, s, ReasonIterationCap)
	r.Warnings = append(r.Warnings, apperrors.NewAlignmentError(s.iterations).Error())
	e.logger.WarnContext(ctx, "alignment stopped at iteration cap",
		slog.Int("iterations", s.iterations),
		slog.Int("groups", len(r.Groups)))
}

// terminate flushes every remaining record as a residual group, in key
// order.
func (e *Engine) terminate(ctx context.Context, r *Result, s *search, reason string) {
	residual := s.flush()
	r.Groups = append(r.Groups, residual...)
	r.Terminated = true
	r.TerminationReason = reason
	r.Iterations = s.iterations
	e.logger.DebugContext(ctx, "alignment terminated early",
		slog.String("reason", reason),
		slog.Int("residual_records", len(residual)))
}

func validateSeries(series []Series) error {
	if len(series) == 0 {
		return apperrors.NewValidationError("no series to align", nil)
	}
	for si, sr := range series {
		if sr == nil {
			return apperrors.NewValidationError(fmt.Sprintf("series %d is nil", si), nil)
		}
		prev := math.Inf(-1)
		for i := 0; i < sr.Len(); i++ {
			k := sr.Key(i)
			if math.IsNaN(k) {
				return apperrors.NewValidationError(fmt.Sprintf("series %d record %d has a NaN key", si, i), nil).
					WithContext("series", si)
			}
			if k < prev {
				return apperrors.NewValidationError(fmt.Sprintf("series %d is not sorted at record %d", si, i), nil).
					WithContext("series", si)
			}
			prev = k
		}
	}
	return nil
}

// draft is one candidate group: a tentative index per series.
type draft struct {
	idx     []int
	members []int
	ref     float64
	spread  float64
	skipped int
}

// better orders drafts: more members, then fewer skipped records, then a
// tighter spread.
func (d draft) better(o draft) bool {
	if len(d.members) != len(o.members) {
		return len(d.members) > len(o.members)
	}
	if d.skipped != o.skipped {
		return d.skipped < o.skipped
	}
	return d.spread < o.spread
}

// search holds the committed position of every series and the memo of
// draft states explored so far.
type search struct {
	series     []Series
	tol        float64
	maxIter    int
	maxStates  int
	next       []int
	iterations int
}

func newSearch(series []Series, opts Options) *search {
	states := opts.MaxGroupStates
	if states <= 0 {
		states = DefaultMaxGroupStates
	}
	return &search{
		series:    series,
		tol:       opts.Tolerance,
		maxIter:   opts.MaxIterations,
		maxStates: states,
		next:      make([]int, len(series)),
	}
}

// active counts the series with uncommitted records
func (s *search) active() int {
	n := 0
	for i, sr := range s.series {
		if s.next[i] < sr.Len() {
			n++
		}
	}
	return n
}

func (s *search) exhausted() bool {
	for i, sr := range s.series {
		if s.next[i] < sr.Len() {
			return false
		}
	}
	return true
}

// evaluate computes reference, members and score of a draft tuple
func (s *search) evaluate(idx []int) draft {
	d := draft{idx: idx, ref: math.Inf(1)}
	for si, i := range idx {
		if i < s.series[si].Len() {
			d.ref = math.Min(d.ref, s.series[si].Key(i))
		}
		d.skipped += i - s.next[si]
	}
	top := d.ref
	for si, i := range idx {
		if i >= s.series[si].Len() {
			continue
		}
		if k := s.series[si].Key(i); k <= d.ref+s.tol {
			d.members = append(d.members, si)
			top = math.Max(top, k)
		}
	}
	d.spread = top - d.ref
	return d
}

// bestDraft explores draft states reachable from the committed positions.
// Only a series holding the group reference is advanced, since that is the
// only move that can bring another series into the window. Every move skips
// one more record, so states are visited in order of skipped records and
// the search stops once a draft holds every active series and no state
// with as few skips remains. It reports whether the global iteration cap
// cut the exploration short.
func (s *search) bestDraft() (draft, bool) {
	start := append([]int(nil), s.next...)
	visited := map[string]struct{}{stateKey(start): {}}
	queue := [][]int{start}
	active := s.active()

	var best draft
	found := false
	for explored := 0; len(queue) > 0 && explored < s.maxStates; explored++ {
		if found && s.iterations >= s.maxIter {
			return best, true
		}

		cur := queue[0]
		if found && len(best.members) == active && skippedFrom(cur, s.next) > best.skipped {
			break
		}
		queue = queue[1:]
		s.iterations++

		d := s.evaluate(cur)
		if !found || d.better(best) {
			best, found = d, true
		}
		if len(d.members) == active {
			continue
		}

		for si, i := range cur {
			if i >= s.series[si].Len() || s.series[si].Key(i) != d.ref {
				continue
			}
			j := i + 1
			if j >= s.series[si].Len() || s.series[si].Key(j) > d.ref+s.tol {
				continue
			}
			nxt := append([]int(nil), cur...)
			nxt[si] = j
			key := stateKey(nxt)
			if _, seen := visited[key]; seen {
				continue
			}
			visited[key] = struct{}{}
			queue = append(queue, nxt)
		}
	}
	return best, false
}

func skippedFrom(idx, next []int) int {
	n := 0
	for i, v := range idx {
		n += v - next[i]
	}
	return n
}

// commit emits the records skipped by d as single-record groups, then the
// group itself, and advances the committed positions.
func (s *search) commit(d draft) []Group {
	type rec struct {
		series, index int
		key           float64
	}
	var skipped []rec
	for si, i := range d.idx {
		for j := s.next[si]; j < i; j++ {
			skipped = append(skipped, rec{si, j, s.series[si].Key(j)})
		}
	}
	sort.SliceStable(skipped, func(a, b int) bool { return skipped[a].key < skipped[b].key })

	groups := make([]Group, 0, len(skipped)+1)
	for _, r := range skipped {
		groups = append(groups, s.single(r.series, r.index, false))
	}

	g := Group{Indices: s.empty(), Reference: d.ref, Spread: d.spread}
	for si := range s.next {
		s.next[si] = d.idx[si]
	}
	for _, si := range d.members {
		g.Indices[si] = d.idx[si]
		s.next[si] = d.idx[si] + 1
	}
	return append(groups, g)
}

// flush emits all uncommitted records as residual single-record groups
func (s *search) flush() []Group {
	type rec struct {
		series, index int
		key           float64
	}
	var rest []rec
	for si, sr := range s.series {
		for j := s.next[si]; j < sr.Len(); j++ {
			rest = append(rest, rec{si, j, sr.Key(j)})
		}
		s.next[si] = sr.Len()
	}
	sort.SliceStable(rest, func(a, b int) bool { return rest[a].key < rest[b].key })

	groups := make([]Group, 0, len(rest))
	for _, r := range rest {
		groups = append(groups, s.single(r.series, r.index, true))
	}
	return groups
}

func (s *search) single(series, index int, residual bool) Group {
	g := Group{Indices: s.empty(), Reference: s.series[series].Key(index), Residual: residual}
	g.Indices[series] = index
	return g
}

func (s *search) empty() []int {
	idx := make([]int, len(s.series))
	for i := range idx {
		idx[i] = -1
	}
	return idx
}

func stateKey(idx []int) string {
	b := make([]byte, 0, len(idx)*4)
	for i, v := range idx {
		if i > 0 {
			b = append(b, ',')
		}
		b = strconv.AppendInt(b, int64(v), 10)
	}
	return string(b)
}
