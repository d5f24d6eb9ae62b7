package anal

import (
	"fmt"
	"strconv"

	"github.com/KyungWonPark/Microemulsion/internal/calc"
)

// Unset marks an event that did not happen.
const Unset = -1

// Events are the time points of the treatments applied during a simulation.
type Events struct {
	Flavopiridol float64
	ActinomycinD float64
	Cutoff       float64
	Activate     float64
}

// NoEvents returns Events with nothing set.
func NoEvents() Events {
	return Events{Flavopiridol: Unset, ActinomycinD: Unset, Cutoff: Unset, Activate: Unset}
}

// Event is a named point in time.
type Event struct {
	Name string
	Time float64
}

// List returns the events that are set, in annotation order.
func (e Events) List() []Event {
	var out []Event
	for _, ev := range []Event{
		{"Flavopiridol", e.Flavopiridol},
		{"Actinomycin D", e.ActinomycinD},
		{"Cutoff", e.Cutoff},
		{"Activation", e.Activate},
	} {
		if ev.Time > 0 {
			out = append(out, ev)
		}
	}
	return out
}

// Treatment returns the time of the treatment that splits the curves:
// flavopiridol if applied, else actinomycin D.
func (e Events) Treatment() (float64, bool) {
	switch {
	case e.Flavopiridol > 0:
		return e.Flavopiridol, true
	case e.ActinomycinD > 0:
		return e.ActinomycinD, true
	}
	return 0, false
}

// SplitIndex returns the index of the snapshot time nearest to the treatment.
func (e Events) SplitIndex(times []float64) (int, bool) {
	t, ok := e.Treatment()
	if !ok || len(times) == 0 {
		return 0, false
	}
	_, i := calc.NearestEntry(times, t)
	return i, true
}

// Split cuts ys at i into a head ending at i and a tail starting at i, so
// the two pieces share the point at i.
func Split(ys []float64, i int) (head, tail []float64) {
	if i < 0 {
		i = 0
	}
	if i >= len(ys) {
		return ys, nil
	}
	return ys[:i+1], ys[i:]
}

// Annotation is a label attached to a curve point.
type Annotation struct {
	Text string
	X, Y float64
}

// Annotations labels the curve point nearest to each event that is set.
// times, xs and ys must be the same length.
func (e Events) Annotations(times, xs, ys []float64) []Annotation {
	if len(times) == 0 {
		return nil
	}

	var out []Annotation
	for _, ev := range e.List() {
		_, i := calc.NearestEntry(times, ev.Time)
		out = append(out, Annotation{
			Text: fmt.Sprintf("%s @ t=%s", ev.Name, strconv.FormatFloat(ev.Time, 'g', -1, 64)),
			X:    xs[i],
			Y:    ys[i],
		})
	}
	return out
}
