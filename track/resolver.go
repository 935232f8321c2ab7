package track

// RunResolver maps an opaque executable to a durable run record. A miss is
// a normal outcome, not an error.
type RunResolver interface {
	// Resolve returns the run for the executable, or false when this
	// resolver does not recognize it.
	Resolve(ex Executable) (Run, bool)
}

// RunResolverFunc adapts a function to the RunResolver interface.
type RunResolverFunc func(ex Executable) (Run, bool)

// Resolve calls f.
func (f RunResolverFunc) Resolve(ex Executable) (Run, bool) {
	return f(ex)
}

// Resolvers is an ordered resolver chain; Resolve tries each in turn and
// the first match wins.
type Resolvers []RunResolver

// Resolve returns the first successful resolution, or false when no
// resolver in the chain matched.
func (rs Resolvers) Resolve(ex Executable) (Run, bool) {
	for _, r := range rs {
		if run, ok := r.Resolve(ex); ok {
			return run, true
		}
	}
	return nil, false
}
