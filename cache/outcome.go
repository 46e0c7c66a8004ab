package cache

// Kind is the kind of memory access replayed against the cache.
type Kind int

const (
	// Load reads a block.
	Load Kind = iota
	// Store writes a block.
	Store
	// Modify is a load followed by a store to the same block.
	Modify
)

func (k Kind) String() string {
	switch k {
	case Load:
		return "load"
	case Store:
		return "store"
	case Modify:
		return "modify"
	default:
		return "unknown"
	}
}

// Outcome classifies a single access.
type Outcome int

const (
	// Miss is a cold miss on an invalid line.
	Miss Outcome = iota
	// Hit is a load or store that found its block.
	Hit
	// MissEviction is a miss that replaced a valid line.
	MissEviction
	// MissHit is a modify on a cold line.
	MissHit
	// HitHit is a modify that found its block.
	HitHit
	// MissEvictionHit is a modify that replaced a valid line.
	MissEvictionHit
)

func (o Outcome) String() string {
	switch o {
	case Miss:
		return "miss"
	case Hit:
		return "hit"
	case MissEviction:
		return "miss eviction"
	case MissHit:
		return "miss hit"
	case HitHit:
		return "hit hit"
	case MissEvictionHit:
		return "miss eviction hit"
	default:
		return "unknown"
	}
}

// Hits returns the number of hit events in the outcome.
func (o Outcome) Hits() uint64 {
	switch o {
	case Hit, MissHit, MissEvictionHit:
		return 1
	case HitHit:
		return 2
	default:
		return 0
	}
}

// Misses returns the number of miss events in the outcome.
func (o Outcome) Misses() uint64 {
	switch o {
	case Miss, MissEviction, MissHit, MissEvictionHit:
		return 1
	default:
		return 0
	}
}

// Evictions returns the number of eviction events in the outcome.
func (o Outcome) Evictions() uint64 {
	switch o {
	case MissEviction, MissEvictionHit:
		return 1
	default:
		return 0
	}
}

// Classify returns the outcome of an access of the given kind to a line that
// was cold, resident, or holding another tag.
func Classify(kind Kind, valid, tagMatch bool) Outcome {
	switch {
	case !valid:
		if kind == Modify {
			return MissHit
		}

		return Miss
	case tagMatch:
		if kind == Modify {
			return HitHit
		}

		return Hit
	default:
		if kind == Modify {
			return MissEvictionHit
		}

		return MissEviction
	}
}
