package probe

// Registry groups the probes the orchestrator drives at each hop. It is
// assembled for each scan by internal/osint/scan's defaultRegistry and
// passed to the orchestrator as a value,
// never as a mutable global the orchestrator reaches for itself.
type Registry struct {
	// Hop1 runs against the seed email directly.
	Hop1 []Probe
	// Hop2 runs once per discovered username.
	Hop2 []Probe
	// Hop3 runs once over the aggregated state produced by hops 1 and 2.
	Hop3 []Probe
}

// NewRegistry returns a Registry populated from the given probe slices, in
// registration order. Order matters: within a hop, ordering guarantees in
// the orchestrator are defined relative to this slice order.
func NewRegistry(hop1, hop2, hop3 []Probe) Registry {
	return Registry{Hop1: hop1, Hop2: hop2, Hop3: hop3}
}
