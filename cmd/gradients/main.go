package main

import (
	"flag"

	"github.com/itohio/tensorgraph/pkg/graph"
	. "github.com/itohio/tensorgraph/pkg/logger"
	"github.com/itohio/tensorgraph/pkg/tensor"
)

func main() {
	help := flag.Bool("help", false, "Help")
	configPath := flag.String("config", "", "Engine config YAML")
	flag.Parse()

	if *help {
		flag.PrintDefaults()
		return
	}

	if len(*configPath) != 0 {
		cfg, err := graph.LoadConfig(*configPath)
		if err != nil {
			Log.Error().Err(err).Msg("loading config")
			return
		}
		graph.Configure(cfg)
	}
	defer graph.Shutdown()

	// e = (a + b) * (b + 1), evaluated with a bound per call.
	a := graph.NewPlaceholder()
	b := graph.NewScalar(1)
	one := graph.NewScalar(1)
	c, err := graph.NewAdd(a, b)
	if err != nil {
		Log.Error().Err(err).Msg("building graph")
		return
	}
	d, err := graph.NewAdd(b, one)
	if err != nil {
		Log.Error().Err(err).Msg("building graph")
		return
	}
	e, err := graph.NewMul(c, d)
	if err != nil {
		Log.Error().Err(err).Msg("building graph")
		return
	}

	g := graph.Current()
	bindings := map[*graph.Node]*tensor.Tensor{a: tensor.FromScalar(2)}
	if err := g.Compute(bindings, e); err != nil {
		Log.Error().Err(err).Msg("compute")
		return
	}
	if err := g.Gradient(); err != nil {
		Log.Error().Err(err).Msg("gradient")
		return
	}

	res := g.Results()
	out, ok := res.GetOutput(e)
	gradA, okA := res.GetGradient(a)
	gradB, okB := res.GetGradient(b)
	if !ok || !okA || !okB {
		Log.Error().Msg("missing results")
		return
	}
	Log.Info().
		Float32("e", out.Values()[0]).
		Float32("de/da", gradA.Values()[0]).
		Float32("de/db", gradB.Values()[0]).
		Msg("result")
}
