package musicdsl

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mzacho/musicdsl/core"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	music []core.MusicResult
	text  []string
}

func (s *recordingSink) Music(r core.MusicResult) { s.music = append(s.music, r) }
func (s *recordingSink) Text(t string)            { s.text = append(s.text, t) }

// decodeJSON unmarshals into a generic tree so the comparison doesn't
// depend on any unexported schema type.
func decodeJSON(t *testing.T, raw []byte) interface{} {
	t.Helper()
	var v interface{}
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func runAndExportLast(t *testing.T, source string) ([]byte, core.ExitStatus, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	result, status, err := ExecuteProgram(source, sink)
	require.NoError(t, err)
	raw, err := core.ExportJSON(result)
	require.NoError(t, err)
	return raw, status, sink
}

// S1: a single note.
func TestScenarioSingleNote(t *testing.T) {
	raw, status, _ := runAndExportLast(t, "print Cn4/1")
	require.Equal(t, core.ExitOK, status)
	want := decodeJSON(t, []byte(`{"events":[{"start":0,"notes":[{"midi":60,"dur":1}]}]}`))
	got := decodeJSON(t, raw)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected export (-want +got):\n%s", diff)
	}
}

// S2: concatenation through a rest advances time.
func TestScenarioConcatenationWithRest(t *testing.T) {
	raw, _, _ := runAndExportLast(t, "print Cn4/1 ++ R/0.5 ++ En4/0.5")
	want := decodeJSON(t, []byte(`{"events":[
		{"start":0,"notes":[{"midi":60,"dur":1}]},
		{"start":1,"notes":[{"midi":-1,"dur":0.5}]},
		{"start":1.5,"notes":[{"midi":64,"dur":0.5}]}
	]}`))
	got := decodeJSON(t, raw)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected export (-want +got):\n%s", diff)
	}
}

// S3: a chord built with union.
func TestScenarioChordViaUnion(t *testing.T) {
	raw, _, _ := runAndExportLast(t, "print Cn4/1 | En4/1 | Gn4/1")
	want := decodeJSON(t, []byte(`{"events":[
		{"start":0,"notes":[{"midi":60,"dur":1},{"midi":64,"dur":1},{"midi":67,"dur":1}]}
	]}`))
	got := decodeJSON(t, raw)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected export (-want +got):\n%s", diff)
	}
}

// S4: transposition by an octave.
func TestScenarioTransposition(t *testing.T) {
	raw, _, _ := runAndExportLast(t, "print (Cn4/1 ++ Dn4/1) ! 12")
	want := decodeJSON(t, []byte(`{"events":[
		{"start":0,"notes":[{"midi":72,"dur":1}]},
		{"start":1,"notes":[{"midi":74,"dur":1}]}
	]}`))
	got := decodeJSON(t, raw)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected export (-want +got):\n%s", diff)
	}
}

// S5 (adapted): a while loop builds a C major scale one step at a time,
// mutating a store-backed accumulator and an index variable. The
// original scenario calls out to helper functions ("the next semitone
// step", "a note at pitch"); this version does without them and selects
// among literal notes with nested if/else instead. It exercises the same
// mechanics (while, nested if/else inside the loop body, per-iteration
// store reclamation) against the same expected MIDI sequence.
func TestScenarioWhileGeneratedMajorScale(t *testing.T) {
	source := `
var s = Cn4/1;
var steps = 0;
while steps < 7 do {
	if steps == 0 then { s <- s ++ Dn4/1 } else {
	if steps == 1 then { s <- s ++ En4/1 } else {
	if steps == 2 then { s <- s ++ Fn4/1 } else {
	if steps == 3 then { s <- s ++ Gn4/1 } else {
	if steps == 4 then { s <- s ++ An4/1 } else {
	if steps == 5 then { s <- s ++ Bn4/1 } else {
	s <- s ++ Cn5/1
	} } } } } };
	steps <- steps + 1
};
print s
`
	raw, _, _ := runAndExportLast(t, source)
	want := decodeJSON(t, []byte(`{"events":[
		{"start":0,"notes":[{"midi":60,"dur":1}]},
		{"start":1,"notes":[{"midi":62,"dur":1}]},
		{"start":2,"notes":[{"midi":64,"dur":1}]},
		{"start":3,"notes":[{"midi":65,"dur":1}]},
		{"start":4,"notes":[{"midi":67,"dur":1}]},
		{"start":5,"notes":[{"midi":69,"dur":1}]},
		{"start":6,"notes":[{"midi":71,"dur":1}]},
		{"start":7,"notes":[{"midi":72,"dur":1}]}
	]}`))
	got := decodeJSON(t, raw)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected export (-want +got):\n%s", diff)
	}
}

// S6: let-bound names shadow only for the extent of their body.
func TestScenarioLetScoping(t *testing.T) {
	sink := &recordingSink{}
	_, status, err := ExecuteProgram("var x = 1; print (let x = 41 in x + 1) + x", sink)
	require.NoError(t, err)
	require.Equal(t, core.ExitOK, status)
	require.Equal(t, []string{"43"}, sink.text)
}

func TestDeterminism(t *testing.T) {
	source := "print Cn4/1 ++ En4/1 | Gn4/0.5"
	raw1, _, _ := runAndExportLast(t, source)
	raw2, _, _ := runAndExportLast(t, source)
	if diff := cmp.Diff(decodeJSON(t, raw1), decodeJSON(t, raw2)); diff != "" {
		t.Errorf("execute_program is not deterministic (-first +second):\n%s", diff)
	}
}

func TestSyntaxErrorExitStatus(t *testing.T) {
	_, status, err := ExecuteProgram("var = 1", &recordingSink{})
	require.Error(t, err)
	require.Equal(t, core.ExitSyntaxError, status)
}

func TestUnboundNameExitStatus(t *testing.T) {
	_, status, err := ExecuteProgram("print nope", &recordingSink{})
	require.Error(t, err)
	require.Equal(t, core.ExitSemanticError, status)
}

func TestDivisionByZeroExitStatus(t *testing.T) {
	_, status, err := ExecuteProgram("print 1 / 0", &recordingSink{})
	require.Error(t, err)
	require.Equal(t, core.ExitArithError, status)
}

func TestBOMIsStripped(t *testing.T) {
	_, status, err := ExecuteProgram(byteOrderMark+"print 1", &recordingSink{})
	require.NoError(t, err)
	require.Equal(t, core.ExitOK, status)
}
