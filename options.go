package unmute

import "github.com/opd-ai/unmute/dispatch"

// Options configures a new Unmute instance.
//
// Source and Sink are optional: a nil Source delivers silent input and a
// nil Sink discards output, which is the useful configuration for tests.
type Options struct {
	// SampleRate is the stream sample rate in Hz.
	SampleRate int

	// BlockSize is the number of samples per device callback.
	BlockSize int

	// InputChannels and OutputChannels set the stream geometry.
	InputChannels  int
	OutputChannels int

	// Source provides input blocks; nil means silence.
	Source dispatch.BlockSource

	// Sink consumes output blocks; nil means discard.
	Sink dispatch.BlockSink
}

// NewOptions creates Options with sensible defaults: 48kHz stereo in and
// out, 480-sample (10ms) blocks.
func NewOptions() *Options {
	return &Options{
		SampleRate:     48000,
		BlockSize:      480,
		InputChannels:  2,
		OutputChannels: 2,
	}
}
