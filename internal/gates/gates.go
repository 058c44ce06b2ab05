// Package gates is a catalog of logic-gate widgets for spin networks.
// Each gate contributes bias and coupling terms (and sometimes auxiliary
// spins) such that the widget's minimum-energy configurations are exactly
// the rows of the gate's truth table, with spin up encoding logical 1.
//
// The solvers never see this package; gates reach the network only
// through the spinnet gate interfaces.
package gates

import "github.com/brurucy/ernst/internal/spinnet"

// COPY forces its output to track its input. The output bias is
// configurable because other gates reuse COPY as a biased fan-out.
type COPY struct {
	Bias float64
}

// ConnectOne implements spinnet.UnaryGate.
func (g COPY) ConnectOne(n *spinnet.Network, input int) int {
	output := n.AddOutput(g.Bias)
	n.Couple(input, output, 1.0)
	return output
}

// NOT forces its output opposite to its input.
type NOT struct{}

// ConnectOne implements spinnet.UnaryGate.
func (NOT) ConnectOne(n *spinnet.Network, input int) int {
	output := n.AddOutput(0.0)
	n.Couple(input, output, -1.0)
	return output
}

// AND is a two-input conjunction widget. Inputs are fanned out through
// biased COPY spins so that the original input spins stay reusable.
type AND struct{}

// ConnectTwo implements spinnet.BinaryGate.
func (AND) ConnectTwo(n *spinnet.Network, left, right int) int {
	output := n.AddOutput(-1.0)
	leftCopy := n.AddUnary(left, COPY{Bias: 0.5})
	rightCopy := n.AddUnary(right, COPY{Bias: 0.5})

	n.Couple(leftCopy, rightCopy, -0.5)
	n.Couple(leftCopy, output, 1.0)
	n.Couple(rightCopy, output, 1.0)
	return output
}

// OR is a disjunction widget; it supports two, three, or n inputs.
type OR struct{}

// ConnectTwo implements spinnet.BinaryGate.
func (OR) ConnectTwo(n *spinnet.Network, left, right int) int {
	output := n.AddOutput(1.0)
	leftCopy := n.AddUnary(left, COPY{Bias: -0.5})
	rightCopy := n.AddUnary(right, COPY{Bias: -0.5})

	n.Couple(leftCopy, rightCopy, -0.5)
	n.Couple(leftCopy, output, 1.0)
	n.Couple(rightCopy, output, 1.0)
	return output
}

// ConnectThree implements spinnet.TernaryGate with a single widget
// instead of a chain of binary ORs.
func (OR) ConnectThree(n *spinnet.Network, first, second, third int) int {
	output := n.AddOutput(1.0)
	weight := 1.0 / 3.0
	firstCopy := n.AddUnary(first, COPY{Bias: -weight})
	secondCopy := n.AddUnary(second, COPY{Bias: -weight})
	thirdCopy := n.AddUnary(third, COPY{Bias: -weight})

	n.Couple(firstCopy, secondCopy, -weight)
	n.Couple(firstCopy, thirdCopy, -weight)
	n.Couple(secondCopy, thirdCopy, -weight)
	n.Couple(firstCopy, output, 1.0)
	n.Couple(secondCopy, output, 1.0)
	n.Couple(thirdCopy, output, 1.0)
	return output
}

// ConnectN implements spinnet.NAryGate by left-folding binary ORs.
func (g OR) ConnectN(n *spinnet.Network, inputs []int) int {
	if len(inputs) == 1 {
		return n.AddUnary(inputs[0], COPY{})
	}
	output := n.AddBinary(inputs[0], inputs[1], g)
	for _, input := range inputs[2:] {
		output = n.AddBinary(output, input, g)
	}
	return output
}

// NAND is a negated conjunction widget.
type NAND struct{}

// ConnectTwo implements spinnet.BinaryGate.
func (NAND) ConnectTwo(n *spinnet.Network, left, right int) int {
	output := n.AddOutput(1.0)
	leftCopy := n.AddUnary(left, COPY{Bias: 0.5})
	rightCopy := n.AddUnary(right, COPY{Bias: 0.5})

	n.Couple(leftCopy, rightCopy, -0.5)
	n.Couple(leftCopy, output, -1.0)
	n.Couple(rightCopy, output, -1.0)
	return output
}

// NOR is a negated disjunction widget.
type NOR struct{}

// ConnectTwo implements spinnet.BinaryGate.
func (NOR) ConnectTwo(n *spinnet.Network, left, right int) int {
	output := n.AddOutput(-1.0)
	leftCopy := n.AddUnary(left, COPY{Bias: -0.5})
	rightCopy := n.AddUnary(right, COPY{Bias: -0.5})

	n.Couple(leftCopy, rightCopy, -0.5)
	n.Couple(leftCopy, output, -1.0)
	n.Couple(rightCopy, output, -1.0)
	return output
}

// XOR is an exclusive-or widget. Parity is not expressible with pairwise
// couplings over three spins alone, so it needs one auxiliary spin.
type XOR struct{}

// ConnectTwo implements spinnet.BinaryGate.
func (XOR) ConnectTwo(n *spinnet.Network, left, right int) int {
	output := n.AddOutput(-0.5)
	aux := n.AddAuxiliary(-1.0)
	leftCopy := n.AddUnary(left, COPY{Bias: -0.5})
	rightCopy := n.AddUnary(right, COPY{Bias: -0.5})

	n.Couple(leftCopy, rightCopy, -0.5)
	n.Couple(leftCopy, aux, -1.0)
	n.Couple(rightCopy, aux, -1.0)
	n.Couple(leftCopy, output, -0.5)
	n.Couple(rightCopy, output, -0.5)
	n.Couple(aux, output, -1.0)
	return output
}

// XNOR is an exclusive-nor widget, XOR with the output signs mirrored.
type XNOR struct{}

// ConnectTwo implements spinnet.BinaryGate.
func (XNOR) ConnectTwo(n *spinnet.Network, left, right int) int {
	output := n.AddOutput(0.5)
	aux := n.AddAuxiliary(-1.0)
	leftCopy := n.AddUnary(left, COPY{Bias: -0.5})
	rightCopy := n.AddUnary(right, COPY{Bias: -0.5})

	n.Couple(leftCopy, rightCopy, -0.5)
	n.Couple(leftCopy, aux, -1.0)
	n.Couple(rightCopy, aux, -1.0)
	n.Couple(leftCopy, output, 0.5)
	n.Couple(rightCopy, output, 0.5)
	n.Couple(aux, output, 1.0)
	return output
}
