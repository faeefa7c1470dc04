package audio

import (
	"sync"
	"testing"
)

// filled returns a channel buffer of n samples all set to v.
func filled(n int, v float32) []float32 {
	buf := make([]float32, n)
	for i := range buf {
		buf[i] = v
	}
	return buf
}

// TestNewEngine verifies the engine starts silenced.
func TestNewEngine(t *testing.T) {
	engine := NewEngine()
	if engine == nil {
		t.Fatal("Engine should not be nil")
	}
	if engine.IsActive() {
		t.Error("Engine should start inactive")
	}
}

// TestEngineSilencesGarbageOutputs verifies that a silenced engine zeroes
// every output sample regardless of input content: two inputs of 1.0, two
// outputs full of garbage.
func TestEngineSilencesGarbageOutputs(t *testing.T) {
	engine := NewEngine()

	const numSamples = 64
	inputs := [][]float32{filled(numSamples, 1.0), filled(numSamples, 1.0)}
	outputs := [][]float32{filled(numSamples, 99.0), filled(numSamples, 99.0)}

	engine.ProcessBlock(inputs, outputs, numSamples)

	for och, out := range outputs {
		for i, sample := range out {
			if sample != 0 {
				t.Fatalf("output[%d][%d] = %f, want 0 while silenced", och, i, sample)
			}
		}
	}
}

// TestEngineRoutesInputsWhenActive verifies that after a single toggle the
// same buffers come out carrying the input constant.
func TestEngineRoutesInputsWhenActive(t *testing.T) {
	engine := NewEngine()

	if got := engine.Toggle(); !got {
		t.Fatal("Toggle() from initial state should return true")
	}

	const numSamples = 64
	inputs := [][]float32{filled(numSamples, 1.0), filled(numSamples, 1.0)}
	outputs := [][]float32{filled(numSamples, 99.0), filled(numSamples, 99.0)}

	engine.ProcessBlock(inputs, outputs, numSamples)

	for och, out := range outputs {
		for i, sample := range out {
			if sample != 1.0 {
				t.Fatalf("output[%d][%d] = %f, want 1.0 while routing", och, i, sample)
			}
		}
	}
}

// TestEngineFallsBackToPresentInput verifies routing with a nil input
// channel: the only present input feeds the output.
func TestEngineFallsBackToPresentInput(t *testing.T) {
	engine := NewEngine()
	engine.SetActive(true)

	const numSamples = 16
	inputs := [][]float32{filled(numSamples, 5.0), nil}
	outputs := [][]float32{make([]float32, numSamples)}

	engine.ProcessBlock(inputs, outputs, numSamples)

	for i, sample := range outputs[0] {
		if sample != 5.0 {
			t.Fatalf("output[0][%d] = %f, want 5.0 from the only present input", i, sample)
		}
	}
}

// TestEngineLastWriterIsLowestInput pins the many-to-many copy order: with
// distinct per-channel constants, every output carries input channel 0's
// value because inputs iterate in descending index order.
func TestEngineLastWriterIsLowestInput(t *testing.T) {
	engine := NewEngine()
	engine.SetActive(true)

	const numSamples = 8
	inputs := [][]float32{filled(numSamples, 0.25), filled(numSamples, 0.75)}
	outputs := [][]float32{make([]float32, numSamples), make([]float32, numSamples)}

	engine.ProcessBlock(inputs, outputs, numSamples)

	for och, out := range outputs {
		for i, sample := range out {
			if sample != 0.25 {
				t.Fatalf("output[%d][%d] = %f, want input 0's value 0.25", och, i, sample)
			}
		}
	}
}

// TestEngineNilChannelSafety verifies that nil entries on either side are
// skipped without touching anything, in both states.
func TestEngineNilChannelSafety(t *testing.T) {
	tests := []struct {
		name    string
		active  bool
		inputs  [][]float32
		outputs [][]float32
	}{
		{
			name:    "all nil inputs while routing",
			active:  true,
			inputs:  [][]float32{nil, nil},
			outputs: [][]float32{make([]float32, 8), nil},
		},
		{
			name:    "all nil outputs while routing",
			active:  true,
			inputs:  [][]float32{filled(8, 1.0)},
			outputs: [][]float32{nil, nil},
		},
		{
			name:    "all nil outputs while silenced",
			active:  false,
			inputs:  [][]float32{filled(8, 1.0)},
			outputs: [][]float32{nil, nil},
		},
		{
			name:    "no channels at all",
			active:  true,
			inputs:  nil,
			outputs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine()
			engine.SetActive(tt.active)
			// Must not panic.
			engine.ProcessBlock(tt.inputs, tt.outputs, 8)
		})
	}
}

// TestEngineMalformedSampleCounts verifies that zero and negative sample
// counts leave buffers untouched and untrusted counts never overrun a short
// channel slice.
func TestEngineMalformedSampleCounts(t *testing.T) {
	tests := []struct {
		name       string
		active     bool
		numSamples int
	}{
		{name: "zero samples silenced", active: false, numSamples: 0},
		{name: "zero samples routing", active: true, numSamples: 0},
		{name: "negative samples silenced", active: false, numSamples: -3},
		{name: "negative samples routing", active: true, numSamples: -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine()
			engine.SetActive(tt.active)

			inputs := [][]float32{filled(8, 1.0)}
			outputs := [][]float32{filled(8, 99.0)}

			engine.ProcessBlock(inputs, outputs, tt.numSamples)

			for i, sample := range outputs[0] {
				if sample != 99.0 {
					t.Fatalf("output[0][%d] = %f, memory touched for count %d", i, sample, tt.numSamples)
				}
			}
		})
	}

	t.Run("count exceeding channel length", func(t *testing.T) {
		engine := NewEngine()
		engine.SetActive(true)

		inputs := [][]float32{filled(4, 2.0)}
		outputs := [][]float32{make([]float32, 4)}

		// Claims 1024 samples; slices only hold 4. Must clamp, not panic.
		engine.ProcessBlock(inputs, outputs, 1024)

		for i, sample := range outputs[0] {
			if sample != 2.0 {
				t.Fatalf("output[0][%d] = %f, want 2.0", i, sample)
			}
		}
	})
}

// TestEngineResetOnStreamStart verifies that a stream start always lands the
// engine back in the silenced state.
func TestEngineResetOnStreamStart(t *testing.T) {
	engine := NewEngine()
	engine.Toggle()
	if !engine.IsActive() {
		t.Fatal("Engine should be active after one toggle")
	}

	engine.DeviceAboutToStart(StreamInfo{SampleRate: 48000, BlockSize: 480, Inputs: 2, Outputs: 2})

	if engine.IsActive() {
		t.Error("Engine should be silenced when a stream starts")
	}

	inputs := [][]float32{filled(8, 1.0)}
	outputs := [][]float32{filled(8, 99.0)}
	engine.ProcessBlock(inputs, outputs, 8)
	for i, sample := range outputs[0] {
		if sample != 0 {
			t.Fatalf("output[0][%d] = %f, want 0 after stream restart", i, sample)
		}
	}
}

// TestEngineTogglePairsRestoreState verifies toggle parity: an even number
// of toggles restores the initial state, an odd number flips it.
func TestEngineTogglePairsRestoreState(t *testing.T) {
	engine := NewEngine()

	for i := 1; i <= 6; i++ {
		got := engine.Toggle()
		want := i%2 == 1
		if got != want {
			t.Fatalf("Toggle() call %d = %v, want %v", i, got, want)
		}
		if engine.IsActive() != want {
			t.Fatalf("IsActive() after %d toggles = %v, want %v", i, engine.IsActive(), want)
		}
	}
}

// TestEngineToggleAppliesToNextBlock verifies the ordering guarantee: a
// toggle completed between two blocks affects the later block, never the
// earlier one.
func TestEngineToggleAppliesToNextBlock(t *testing.T) {
	engine := NewEngine()

	const numSamples = 32
	inputs := [][]float32{filled(numSamples, 1.0)}
	outputs := [][]float32{filled(numSamples, 99.0)}

	engine.ProcessBlock(inputs, outputs, numSamples)
	if outputs[0][0] != 0 {
		t.Fatal("Block before the toggle should be silenced")
	}

	engine.Toggle()

	engine.ProcessBlock(inputs, outputs, numSamples)
	if outputs[0][0] != 1.0 {
		t.Fatal("Block after the toggle should be routed")
	}
}

// TestEngineConcurrentToggleAndProcess exercises the two-goroutine contract
// under the race detector: a control goroutine toggling while the callback
// goroutine processes blocks. Every processed block must be uniformly routed
// or uniformly silenced; a torn block would mean the flag was read per
// sample instead of per block.
func TestEngineConcurrentToggleAndProcess(t *testing.T) {
	engine := NewEngine()

	const numSamples = 128
	const blocks = 500

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				engine.Toggle()
			}
		}
	}()

	inputs := [][]float32{filled(numSamples, 1.0), filled(numSamples, 1.0)}
	outputs := [][]float32{make([]float32, numSamples), make([]float32, numSamples)}

	for b := 0; b < blocks; b++ {
		for _, out := range outputs {
			for i := range out {
				out[i] = 99.0
			}
		}

		engine.ProcessBlock(inputs, outputs, numSamples)

		for och, out := range outputs {
			first := out[0]
			if first != 0 && first != 1.0 {
				t.Fatalf("block %d output[%d][0] = %f, want 0 or 1", b, och, first)
			}
			for i, sample := range out {
				if sample != first {
					t.Fatalf("block %d output[%d] torn: sample %d = %f, sample 0 = %f",
						b, och, i, sample, first)
				}
			}
		}
	}

	close(stop)
	wg.Wait()
}

// BenchmarkProcessBlockRouting measures the hot path with a typical stereo
// 48kHz/10ms geometry.
func BenchmarkProcessBlockRouting(b *testing.B) {
	engine := NewEngine()
	engine.SetActive(true)

	const numSamples = 480
	inputs := [][]float32{filled(numSamples, 0.5), filled(numSamples, 0.5)}
	outputs := [][]float32{make([]float32, numSamples), make([]float32, numSamples)}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.ProcessBlock(inputs, outputs, numSamples)
	}
}

// BenchmarkProcessBlockSilencing measures the zero-fill path.
func BenchmarkProcessBlockSilencing(b *testing.B) {
	engine := NewEngine()

	const numSamples = 480
	inputs := [][]float32{filled(numSamples, 0.5), filled(numSamples, 0.5)}
	outputs := [][]float32{make([]float32, numSamples), make([]float32, numSamples)}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.ProcessBlock(inputs, outputs, numSamples)
	}
}
