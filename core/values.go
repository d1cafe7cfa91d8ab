package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// NoteValue is (midi_pitch, duration) per spec.md §3. midi_pitch == -1
// denotes a rest. Duration is a decimal.Decimal rather than a float64 so
// that a source literal like "1.5" round-trips exactly through evaluation
// and JSON export.
type NoteValue struct {
	Pitch    int
	Duration decimal.Decimal
}

// RestPitch is the sentinel midi_pitch for a NoteValue that is a rest.
const RestPitch = -1

func Note(pitch int, duration decimal.Decimal) NoteValue {
	return NoteValue{Pitch: pitch, Duration: duration}
}

func Rest(duration decimal.Decimal) NoteValue {
	return NoteValue{Pitch: RestPitch, Duration: duration}
}

func (n NoteValue) IsRest() bool { return n.Pitch == RestPitch }

func (n NoteValue) Equal(o NoteValue) bool {
	return n.Pitch == o.Pitch && n.Duration.Equal(o.Duration)
}

// MusicEvent is a set of NoteValues that all start at Start. The set is
// kept duplicate-free; order within Notes is insertion order except where
// JSON export requires ascending-by-midi (core/json.go sorts at export
// time, not here, since §3 only requires the *set* invariant here).
type MusicEvent struct {
	Start decimal.Decimal
	Notes []NoteValue
}

// NewMusicEvent builds an event from notes, de-duplicating equal
// NoteValues so the "unordered set" invariant in spec.md §3 holds.
func NewMusicEvent(start decimal.Decimal, notes ...NoteValue) MusicEvent {
	out := make([]NoteValue, 0, len(notes))
	for _, n := range notes {
		dup := false
		for _, existing := range out {
			if existing.Equal(n) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, n)
		}
	}
	return MusicEvent{Start: start, Notes: out}
}

func (e MusicEvent) merge(other MusicEvent) MusicEvent {
	return NewMusicEvent(e.Start, append(append([]NoteValue{}, e.Notes...), other.Notes...)...)
}

// maxDuration returns the longest NoteValue.Duration in the event, used by
// Span. An event is non-empty by invariant, so the zero value is never
// observed in practice.
func (e MusicEvent) maxDuration() decimal.Decimal {
	max := decimal.Zero
	for _, n := range e.Notes {
		if n.Duration.GreaterThan(max) {
			max = n.Duration
		}
	}
	return max
}

// MusicResult is the ordered, start_time-sorted sequence of MusicEvents
// that a MusicDSL program's `print` statements and expression values
// ultimately produce (spec.md §3).
type MusicResult struct {
	Events []MusicEvent
}

// Empty is the identity element for ++ and |.
func Empty() MusicResult { return MusicResult{} }

func (r MusicResult) IsEmpty() bool { return len(r.Events) == 0 }

// clone returns a deep-enough copy: MusicResult values are immutable once
// returned from evaluation (spec.md §3 "Lifecycles"), so every operator
// below builds a fresh Events slice rather than mutating r.Events.
func (r MusicResult) clone() MusicResult {
	out := make([]MusicEvent, len(r.Events))
	for i, e := range r.Events {
		notes := make([]NoteValue, len(e.Notes))
		copy(notes, e.Notes)
		out[i] = MusicEvent{Start: e.Start, Notes: notes}
	}
	return MusicResult{Events: out}
}

func sortEvents(events []MusicEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.LessThan(events[j].Start)
	})
}

// Span is the latest end-time reached by any note in S: max over events of
// start + max-duration-in-event. Span(∅) = 0.
func Span(r MusicResult) decimal.Decimal {
	max := decimal.Zero
	for _, e := range r.Events {
		end := e.Start.Add(e.maxDuration())
		if end.GreaterThan(max) {
			max = end
		}
	}
	return max
}

// Shift translates every event's start_time by delta.
func Shift(r MusicResult, delta decimal.Decimal) MusicResult {
	out := r.clone()
	for i := range out.Events {
		out.Events[i].Start = out.Events[i].Start.Add(delta)
	}
	return out
}

// Concat implements `A ++ B` (spec.md §4.5): B is shifted by span(A), then
// the two event lists are merged and re-sorted. A trailing rest in A
// contributes to span(A), so silence advances time.
func Concat(a, b MusicResult) MusicResult {
	if a.IsEmpty() {
		return b.clone()
	}
	if b.IsEmpty() {
		return a.clone()
	}
	shiftedB := Shift(b, Span(a))
	merged := append(a.clone().Events, shiftedB.Events...)
	sortEvents(merged)
	return mergeSameStart(merged)
}

// Union implements `A | B`: the sorted merge of A ∪ B, with events sharing
// a start_time combined into one event whose notes are the set union.
func Union(a, b MusicResult) MusicResult {
	merged := append(a.clone().Events, b.clone().Events...)
	sortEvents(merged)
	return mergeSameStart(merged)
}

// mergeSameStart coalesces adjacent same-start_time events produced by a
// sort into one event, per the Union/Concat invariant in spec.md §3: two
// distinct events never share a start_time.
func mergeSameStart(sorted []MusicEvent) MusicResult {
	if len(sorted) == 0 {
		return Empty()
	}
	out := []MusicEvent{sorted[0]}
	for _, e := range sorted[1:] {
		last := &out[len(out)-1]
		if last.Start.Equal(e.Start) {
			*last = last.merge(e)
		} else {
			out = append(out, e)
		}
	}
	return MusicResult{Events: out}
}

// Transpose implements `A ! k`: every NoteValue's pitch is shifted by k
// semitones; rests are unchanged. Returns a RangeError if any resulting
// pitch leaves [0,127].
func Transpose(r MusicResult, k int, pos Position) (MusicResult, error) {
	out := r.clone()
	for i, e := range out.Events {
		for j, n := range e.Notes {
			if n.IsRest() {
				continue
			}
			shifted := n.Pitch + k
			if shifted < 0 || shifted > 127 {
				return MusicResult{}, NewRangeError(pos, "transpose", shifted)
			}
			out.Events[i].Notes[j].Pitch = shifted
		}
	}
	return out, nil
}

// Head returns a singleton MusicResult containing only the first event.
func Head(r MusicResult) (MusicResult, bool) {
	if r.IsEmpty() {
		return MusicResult{}, false
	}
	return MusicResult{Events: []MusicEvent{r.Events[0]}}, true
}

// Tail returns all events after the first, rebased by the span of the
// first event (spec.md §9 Open Question (c): the convention is picked so
// that property 7, `head(A) ++ tail(A) ≡ A`, holds universally). Concat
// shifts its right operand by span(left), so for `head(A) ++ tail(A)` to
// reconstruct A exactly, tail's stored offsets must already be "net of"
// that shift: tail(A)'s start times are the original ones minus the span
// of the head event. Relative spacing between tail events is unchanged —
// only the common origin moves — so this still matches the "offsets
// preserved" reading of the grammar table.
func Tail(r MusicResult) MusicResult {
	if len(r.Events) <= 1 {
		return MusicResult{}
	}
	head := r.Events[0]
	headSpan := head.Start.Add(head.maxDuration())
	rest := MusicResult{Events: append([]MusicEvent{}, r.Events[1:]...)}
	return Shift(rest, headSpan.Neg())
}

// Initialize translates the sequence so its earliest start_time becomes 0,
// preserving all inter-event offsets.
func Initialize(r MusicResult) MusicResult {
	if r.IsEmpty() {
		return r
	}
	min := r.Events[0].Start
	for _, e := range r.Events[1:] {
		if e.Start.LessThan(min) {
			min = e.Start
		}
	}
	return Shift(r, min.Neg())
}

// PitchOf implements the `pitch` unary. spec.md §9 Open Question (a) fixes
// the first-event-is-a-chord tie-break as the minimum pitch.
func PitchOf(r MusicResult) (int, bool) {
	if r.IsEmpty() {
		return 0, false
	}
	first := r.Events[0]
	min := first.Notes[0].Pitch
	for _, n := range first.Notes[1:] {
		if n.Pitch < min {
			min = n.Pitch
		}
	}
	return min, true
}
