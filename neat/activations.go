package neat

import (
	"fmt"
	"math"
)

// Activation identifies the transfer function applied to a node's accumulated input.
// The numeric values are part of the genome file format.
type Activation uint8

const (
	ActivationNone    Activation = iota // identity
	ActivationSigmoid                   // logistic with steepness 4.9
	ActivationReLU
	ActivationTanh
)

// sigmoidSteepness matches the classic NEAT steepened sigmoid.
const sigmoidSteepness = 4.9

// activationNames maps config/CLI names to activations.
var activationNames = map[string]Activation{
	"none":     ActivationNone,
	"identity": ActivationNone,
	"sigmoid":  ActivationSigmoid,
	"relu":     ActivationReLU,
	"tanh":     ActivationTanh,
}

// ParseActivation retrieves an activation by name.
func ParseActivation(name string) (Activation, error) {
	if a, ok := activationNames[name]; ok {
		return a, nil
	}
	return ActivationNone, fmt.Errorf("unknown activation function: %s", name)
}

// Valid reports whether a is one of the known activations.
func (a Activation) Valid() bool {
	return a <= ActivationTanh
}

func (a Activation) String() string {
	switch a {
	case ActivationNone:
		return "none"
	case ActivationSigmoid:
		return "sigmoid"
	case ActivationReLU:
		return "relu"
	case ActivationTanh:
		return "tanh"
	}
	return fmt.Sprintf("activation(%d)", uint8(a))
}

// Apply evaluates the activation on x. Unknown values behave as identity.
func (a Activation) Apply(x float64) float64 {
	switch a {
	case ActivationSigmoid:
		return Sigmoid(x)
	case ActivationReLU:
		return ReLU(x)
	case ActivationTanh:
		return math.Tanh(x)
	default:
		return x
	}
}

// Sigmoid is the steepened logistic function 1 / (1 + exp(-4.9x)).
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-sigmoidSteepness*x))
}

// ReLU returns max(0, x).
func ReLU(x float64) float64 {
	return (x + math.Abs(x)) * 0.5
}
