package core

import (
	"encoding/json"
	"sort"
)

// rawNumber renders a decimal.Decimal as a bare JSON number (never a
// quoted string), independent of the shopspring/decimal package's global
// MarshalJSONWithoutQuotes setting — spec.md §6 requires the export's
// "start"/"dur" fields to be JSON numbers.
type rawNumber string

func (r rawNumber) MarshalJSON() ([]byte, error) {
	return []byte(string(r)), nil
}

type noteJSON struct {
	Midi int       `json:"midi"`
	Dur  rawNumber `json:"dur"`
}

type eventJSON struct {
	Start rawNumber  `json:"start"`
	Notes []noteJSON `json:"notes"`
}

type resultJSON struct {
	Events []eventJSON `json:"events"`
}

// ExportJSON renders r per the schema in spec.md §6: events sorted by
// start (already an invariant of MusicResult), notes within each event
// ordered by ascending midi.
func ExportJSON(r MusicResult) ([]byte, error) {
	doc := resultJSON{Events: make([]eventJSON, len(r.Events))}
	for i, e := range r.Events {
		notes := make([]noteJSON, len(e.Notes))
		for j, n := range e.Notes {
			notes[j] = noteJSON{Midi: n.Pitch, Dur: rawNumber(n.Duration.String())}
		}
		sort.Slice(notes, func(a, b int) bool { return notes[a].Midi < notes[b].Midi })
		doc.Events[i] = eventJSON{Start: rawNumber(e.Start.String()), Notes: notes}
	}
	return json.Marshal(doc)
}
