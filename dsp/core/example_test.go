package core_test

import (
	"fmt"

	"github.com/cwbudde/tapdancer/dsp/core"
)

func ExampleNewProcessSpec() {
	spec := core.NewProcessSpec(
		core.WithSampleRate(44100),
		core.WithBlockSize(256),
	)

	fmt.Printf("sampleRate=%.0f channels=%d blockSize=%d\n", spec.SampleRate, spec.Channels, spec.MaxBlockSize)

	// Output:
	// sampleRate=44100 channels=2 blockSize=256
}
