package domain

// TemporalRings is a deterministic, size-bounded sample of a user's tasks
// grouped by temporal proximity to a reference instant. It is context for a
// downstream suggestion consumer, not a paginated listing.
//
// Ring1 holds tasks due today, closest to now first. Ring2 holds at most one
// task per of the three preceding days, picked by time-of-day proximity.
// Ring3 repeats the same selection for the same weekday one, two and three
// weeks back. Empty rings are a valid result meaning "no contextual data".
type TemporalRings struct {
	Ring1 []Task `json:"ring1"`
	Ring2 []Task `json:"ring2"`
	Ring3 []Task `json:"ring3"`
}

// EmptyRings returns rings with no members, the degraded best-effort result.
func EmptyRings() *TemporalRings {
	return &TemporalRings{
		Ring1: []Task{},
		Ring2: []Task{},
		Ring3: []Task{},
	}
}
