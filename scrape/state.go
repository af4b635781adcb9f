package scrape

// State is a step of the ingestion state machine:
//
//	Resolving -> Paging -> (Enriching -> Paging)* -> Done
//
// Failed is reachable from every state except Done.
type State int

const (
	Resolving State = iota
	Paging
	Enriching
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Resolving:
		return "resolving"
	case Paging:
		return "paging"
	case Enriching:
		return "enriching"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}
