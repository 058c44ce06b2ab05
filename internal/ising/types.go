package ising

// State assigns a value to every spin: false means -1, true means +1.
type State []bool

// Values returns the state as +1/-1 floats.
func (s State) Values() []float64 {
	vals := make([]float64, len(s))
	for i, up := range s {
		vals[i] = spinValue(up)
	}
	return vals
}

// Clone returns an independent copy of the state.
func (s State) Clone() State {
	out := make(State, len(s))
	copy(out, s)
	return out
}

func spinValue(up bool) float64 {
	if up {
		return 1.0
	}
	return -1.0
}

const wordBits = 64

// BitState packs one spin per bit so configurations can be cloned and
// compared cheaply during enumeration.
type BitState struct {
	words []uint64
	n     int
}

// NewBitState creates an all-down (all -1) configuration of n spins.
func NewBitState(n int) BitState {
	return BitState{
		words: make([]uint64, (n+wordBits-1)/wordBits),
		n:     n,
	}
}

// BitStateFrom packs a full State into a BitState.
func BitStateFrom(s State) BitState {
	b := NewBitState(len(s))
	for i, up := range s {
		if up {
			b.Flip(i)
		}
	}
	return b
}

// Len returns the number of spins.
func (b BitState) Len() int { return b.n }

// Get reports whether spin i is up (+1).
func (b BitState) Get(i int) bool {
	return b.words[i/wordBits]&(1<<(uint(i)%wordBits)) != 0
}

// Flip toggles spin i.
func (b *BitState) Flip(i int) {
	b.words[i/wordBits] ^= 1 << (uint(i) % wordBits)
}

// Clone returns an independent copy of the bit pattern.
func (b BitState) Clone() BitState {
	words := make([]uint64, len(b.words))
	copy(words, b.words)
	return BitState{words: words, n: b.n}
}

// Key returns a comparable encoding of the bit pattern, suitable as a
// set or map key when deduplicating configurations.
func (b BitState) Key() string {
	buf := make([]byte, 0, len(b.words)*8)
	for _, w := range b.words {
		for shift := 0; shift < wordBits; shift += 8 {
			buf = append(buf, byte(w>>uint(shift)))
		}
	}
	return string(buf)
}

// Expand unpacks the bit pattern into a full State.
func (b BitState) Expand() State {
	s := make(State, b.n)
	for i := 0; i < b.n; i++ {
		s[i] = b.Get(i)
	}
	return s
}
