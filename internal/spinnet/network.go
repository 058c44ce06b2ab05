// Package spinnet provides an append-only builder for spin-glass
// Hamiltonians: callers grow the system by adding free spins and by
// splicing in gate widgets that contribute bias and coupling terms, then
// extract the (h, J) pair for the solvers.
package spinnet

import (
	"github.com/brurucy/ernst/internal/ising"
	"github.com/brurucy/ernst/internal/solve"
)

// UnaryGate splices a one-input widget into a network and returns the
// index of the widget's output spin.
type UnaryGate interface {
	ConnectOne(n *Network, input int) int
}

// BinaryGate splices a two-input widget into a network.
type BinaryGate interface {
	ConnectTwo(n *Network, left, right int) int
}

// TernaryGate splices a three-input widget into a network.
type TernaryGate interface {
	ConnectThree(n *Network, first, second, third int) int
}

// NAryGate splices a widget with any number of inputs into a network.
type NAryGate interface {
	ConnectN(n *Network, inputs []int) int
}

// Network is an incrementally growing spin glass. It is append-only:
// spins and couplings are never removed or renumbered, so indices handed
// out earlier stay valid for the network's lifetime. The network also
// remembers which spins were added directly by the caller and which were
// introduced by gate widgets, so results can later be projected onto the
// interesting subset.
type Network struct {
	biases      []float64
	couplings   []ising.Coupling
	inputs      []int
	outputs     []int
	auxiliaries []int
}

// New creates an empty network.
func New() *Network {
	return &Network{}
}

func (n *Network) addFree() int {
	n.biases = append(n.biases, 0.0)
	return len(n.biases) - 1
}

// AddInput appends a free spin with the given bias and returns its index.
// A strong positive bias pins the spin up, mimicking a circuit input
// driven to 1.
func (n *Network) AddInput(bias float64) int {
	index := n.addFree()
	n.biases[index] = bias
	n.inputs = append(n.inputs, index)
	return index
}

// AddOutput appends a spin that a gate widget designates as its output.
// Mostly useful when implementing a custom gate.
func (n *Network) AddOutput(bias float64) int {
	index := n.addFree()
	n.biases[index] = bias
	n.outputs = append(n.outputs, index)
	return index
}

// AddAuxiliary appends an internal spin required by a gate widget.
func (n *Network) AddAuxiliary(bias float64) int {
	index := n.addFree()
	n.biases[index] = bias
	n.auxiliaries = append(n.auxiliaries, index)
	return index
}

// Couple appends a pairwise interaction between two existing spins.
func (n *Network) Couple(i, j int, strength float64) {
	n.couplings = append(n.couplings, ising.Coupling{I: i, J: j, Strength: strength})
}

// AddUnary wires a one-input gate to the given spin and returns the
// gate's output index.
func (n *Network) AddUnary(input int, gate UnaryGate) int {
	return gate.ConnectOne(n, input)
}

// AddBinary wires a two-input gate to the given spins and returns the
// gate's output index.
func (n *Network) AddBinary(left, right int, gate BinaryGate) int {
	return gate.ConnectTwo(n, left, right)
}

// AddTernary wires a three-input gate to the given spins.
func (n *Network) AddTernary(first, second, third int, gate TernaryGate) int {
	return gate.ConnectThree(n, first, second, third)
}

// AddNAry wires a gate to an arbitrary list of input spins.
func (n *Network) AddNAry(inputs []int, gate NAryGate) int {
	return gate.ConnectN(n, inputs)
}

// Spins returns the number of spins added so far.
func (n *Network) Spins() int { return len(n.biases) }

// Inputs returns the indices added via AddInput.
func (n *Network) Inputs() []int { return append([]int(nil), n.inputs...) }

// Outputs returns the indices designated as gate outputs.
func (n *Network) Outputs() []int { return append([]int(nil), n.outputs...) }

// Auxiliaries returns the indices of gate-internal spins.
func (n *Network) Auxiliaries() []int { return append([]int(nil), n.auxiliaries...) }

// Hamiltonian extracts an independent snapshot of the current (h, J).
func (n *Network) Hamiltonian() *ising.Hamiltonian {
	return &ising.Hamiltonian{
		Biases:    append([]float64(nil), n.biases...),
		Couplings: append([]ising.Coupling(nil), n.couplings...),
	}
}

// InvertedBiases returns the bias vector with flipped signs. Together
// with InvertedCouplings this is the serialization expected by annealing
// hardware that minimizes +h*s + J*s*s instead.
func (n *Network) InvertedBiases() []float64 {
	inverted := make([]float64, len(n.biases))
	for i, b := range n.biases {
		inverted[i] = -b
	}
	return inverted
}

// InvertedCouplings returns the coupling list with flipped signs.
func (n *Network) InvertedCouplings() []ising.Coupling {
	inverted := make([]ising.Coupling, len(n.couplings))
	for i, c := range n.couplings {
		inverted[i] = ising.Coupling{I: c.I, J: c.J, Strength: -c.Strength}
	}
	return inverted
}

// GroundStates finds every ground state of the network exhaustively.
// When ordering is non-nil, returned states are projected onto exactly
// those spin indices, in that order; the energy still accounts for every
// spin, auxiliaries included.
func (n *Network) GroundStates(ordering []int) ([]solve.Result, error) {
	results, err := solve.GroundStates(n.Hamiltonian())
	if err != nil {
		return nil, err
	}
	if ordering == nil {
		return results, nil
	}
	projected := make([]solve.Result, len(results))
	for i, r := range results {
		projected[i] = solve.Result{Energy: r.Energy, State: project(r.State, ordering)}
	}
	return projected, nil
}

// Anneal explores the network's energy landscape stochastically. A nil
// cfg uses the default schedule. Projection follows the same rules as
// GroundStates.
func (n *Network) Anneal(cfg *solve.AnnealConfig, ordering []int) ([]solve.AnnealResult, error) {
	config := solve.DefaultAnnealConfig()
	if cfg != nil {
		config = *cfg
	}
	results, err := solve.Anneal(n.Hamiltonian(), config)
	if err != nil {
		return nil, err
	}
	if ordering == nil {
		return results, nil
	}
	projected := make([]solve.AnnealResult, len(results))
	for i, r := range results {
		projected[i] = solve.AnnealResult{Energy: r.Energy, State: project(r.State, ordering), Sweep: r.Sweep}
	}
	return projected, nil
}

func project(state ising.State, ordering []int) ising.State {
	out := make(ising.State, len(ordering))
	for i, index := range ordering {
		out[i] = state[index]
	}
	return out
}
