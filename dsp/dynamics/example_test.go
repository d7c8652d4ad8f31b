package dynamics_test

import (
	"fmt"

	"github.com/cwbudde/algo-rt/dsp/dynamics"
	"github.com/cwbudde/algo-rt/dsp/signal"
)

func Example() {
	comp, err := dynamics.NewCompressor(2, 48000,
		dynamics.WithThreshold(-18),
		dynamics.WithRatio(4),
		dynamics.WithLookAhead(0.005),
		dynamics.WithHold(0.002))
	if err != nil {
		panic(err)
	}

	left := signal.WhiteNoise(0.9, 1, 480)
	right := signal.WhiteNoise(0.9, 2, 480)

	comp.Process(480, [][]float64{left, right})

	silent := 0
	for _, s := range left {
		if s != 0 {
			break
		}
		silent++
	}

	fmt.Println("look-ahead samples:", comp.LookAhead())
	fmt.Println("hold samples:", comp.Hold())
	fmt.Println("leading silence:", silent)
	// Output:
	// look-ahead samples: 240
	// hold samples: 96
	// leading silence: 240
}
