package evalsink

import "github.com/kestrelai/ragpipe/query"

// Summary aggregates a query's TransformationEvent history into counters
// an evaluator or a reporting dashboard can consume without re-walking the
// log itself.
type Summary struct {
	Transformations int
	RetrievedDocs   int
	Summarized      bool
	Answered        bool
}

// Summarize walks q's history log.
func Summarize(history []query.TransformationEvent) Summary {
	var s Summary
	for _, e := range history {
		switch e.Kind {
		case query.EventTransformed:
			s.Transformations++
		case query.EventRetrieved:
			s.RetrievedDocs = e.N
		case query.EventSummarized:
			s.Summarized = true
		case query.EventAnswered:
			s.Answered = true
		}
	}
	return s
}
