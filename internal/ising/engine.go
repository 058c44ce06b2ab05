package ising

type neighbor struct {
	spin     int
	strength float64
}

// Engine maintains a live configuration together with its energy and the
// local field of every spin, so that single-spin flips update the energy
// in O(degree) instead of a full O(n + |J|) rescan.
//
// The engine wraps a Hamiltonian, it does not replace it: after any
// sequence of commits, Energy() equals what Hamiltonian.Energy would
// compute from scratch on the current configuration.
//
// An engine is owned by exactly one solver run and must not be shared.
type Engine struct {
	ham    *Hamiltonian
	adj    [][]neighbor
	field  []float64
	bits   BitState
	energy float64
}

// NewEngine builds an engine for the given Hamiltonian, starting from the
// given configuration. A nil initial state means all spins down (-1).
// Structural problems in the Hamiltonian and length mismatches are
// reported before any caching is done.
func NewEngine(h *Hamiltonian, initial State) (*Engine, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	n := h.Spins()
	if initial == nil {
		initial = make(State, n)
	}
	if len(initial) != n {
		return nil, &LengthError{Got: len(initial), Want: n}
	}

	e := &Engine{
		ham:   h,
		adj:   make([][]neighbor, n),
		field: make([]float64, n),
		bits:  BitStateFrom(initial),
	}
	for _, c := range h.Couplings {
		e.adj[c.I] = append(e.adj[c.I], neighbor{spin: c.J, strength: c.Strength})
		e.adj[c.J] = append(e.adj[c.J], neighbor{spin: c.I, strength: c.Strength})
	}

	// One pass to seed the field cache and the energy.
	for i, bias := range h.Biases {
		e.field[i] = bias
		e.energy -= bias * spinValue(initial[i])
	}
	for _, c := range h.Couplings {
		si, sj := spinValue(initial[c.I]), spinValue(initial[c.J])
		e.field[c.I] += c.Strength * sj
		e.field[c.J] += c.Strength * si
		e.energy -= c.Strength * si * sj
	}
	return e, nil
}

// ProposeFlip returns the energy delta that committing a flip of spin i
// would produce, without changing any state.
func (e *Engine) ProposeFlip(i int) float64 {
	return 2 * spinValue(e.bits.Get(i)) * e.field[i]
}

// CommitFlip flips spin i, applying the cached delta and updating the
// local field of every neighbor. Cost is O(degree(i)).
func (e *Engine) CommitFlip(i int) {
	old := spinValue(e.bits.Get(i))
	e.energy += 2 * old * e.field[i]
	e.bits.Flip(i)
	for _, nb := range e.adj[i] {
		// s_i went from old to -old, a swing of -2*old.
		e.field[nb.spin] -= 2 * old * nb.strength
	}
}

// Energy returns the cached total energy of the current configuration.
func (e *Engine) Energy() float64 { return e.energy }

// Spins returns the number of spins.
func (e *Engine) Spins() int { return e.bits.Len() }

// Bits returns a copy of the current configuration's bit pattern.
func (e *Engine) Bits() BitState { return e.bits.Clone() }

// State returns the current configuration as a full State.
func (e *Engine) State() State { return e.bits.Expand() }
