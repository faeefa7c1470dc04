package source

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Tone generates a fixed-frequency sine wave on every input channel.
//
// The phase advances continuously across blocks so the waveform has no
// discontinuities at block boundaries. ReadBlock performs no allocation.
// Tone is not safe for concurrent use; the driver calls it from a single
// goroutine.
type Tone struct {
	frequency  float64
	sampleRate int
	amplitude  float64
	phase      float64
}

// NewTone creates a sine generator.
//
// Parameters:
//   - frequency: Tone frequency in Hz, must be positive and below Nyquist
//   - sampleRate: Output sample rate in Hz
//   - amplitude: Linear amplitude in [0.0, 1.0]
//
// Returns:
//   - *Tone: The new generator
//   - error: Validation error if parameters are out of range
func NewTone(frequency float64, sampleRate int, amplitude float64) (*Tone, error) {
	logrus.WithFields(logrus.Fields{
		"function":    "NewTone",
		"frequency":   frequency,
		"sample_rate": sampleRate,
		"amplitude":   amplitude,
	}).Info("Creating new tone source")

	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}
	if frequency <= 0 || frequency >= float64(sampleRate)/2 {
		return nil, fmt.Errorf("frequency %f out of range (0, %d)", frequency, sampleRate/2)
	}
	if amplitude < 0 || amplitude > 1 {
		return nil, fmt.Errorf("amplitude %f out of range [0, 1]", amplitude)
	}

	return &Tone{
		frequency:  frequency,
		sampleRate: sampleRate,
		amplitude:  amplitude,
	}, nil
}

// ReadBlock fills every non-nil input channel with the next numSamples of
// the sine wave. All channels carry identical samples.
func (t *Tone) ReadBlock(inputs [][]float32, numSamples int) error {
	step := 2 * math.Pi * t.frequency / float64(t.sampleRate)

	for i := 0; i < numSamples; i++ {
		sample := float32(t.amplitude * math.Sin(t.phase))
		for _, in := range inputs {
			if in == nil || i >= len(in) {
				continue
			}
			in[i] = sample
		}
		t.phase += step
		if t.phase >= 2*math.Pi {
			t.phase -= 2 * math.Pi
		}
	}
	return nil
}

// Silence fills every input channel with digital zero.
type Silence struct{}

// NewSilence creates a silent source.
func NewSilence() *Silence {
	return &Silence{}
}

// ReadBlock zeroes the first numSamples of every non-nil input channel.
func (s *Silence) ReadBlock(inputs [][]float32, numSamples int) error {
	for _, in := range inputs {
		if in == nil {
			continue
		}
		n := numSamples
		if n > len(in) {
			n = len(in)
		}
		for i := 0; i < n; i++ {
			in[i] = 0
		}
	}
	return nil
}
