package graph_test

import (
	"fmt"

	"github.com/itohio/tensorgraph/pkg/graph"
	"github.com/itohio/tensorgraph/pkg/tensor"
)

// Build e = (a + b) * (b + 1), evaluate it with a = 2, b = 1 and read the
// gradients of both inputs.
func Example() {
	g := graph.New()
	g.SetCurrent()

	a := graph.NewPlaceholder()
	b := graph.NewScalar(1)
	one := graph.NewScalar(1)
	c, _ := graph.NewAdd(a, b)
	d, _ := graph.NewAdd(b, one)
	e, _ := graph.NewMul(c, d)

	bindings := map[*graph.Node]*tensor.Tensor{a: tensor.FromScalar(2)}
	if err := g.Compute(bindings, e); err != nil {
		fmt.Println(err)
		return
	}
	if err := g.Gradient(); err != nil {
		fmt.Println(err)
		return
	}

	out, _ := g.Results().GetOutput(e)
	gradA, _ := g.Results().GetGradient(a)
	gradB, _ := g.Results().GetGradient(b)
	fmt.Println(out.Values()[0], gradA.Values()[0], gradB.Values()[0])
	// Output: 6 2 5
}
