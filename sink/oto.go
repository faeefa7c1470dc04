package sink

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/sirupsen/logrus"
)

// Oto plays routed output through the system audio device.
//
// The driver goroutine interleaves each block into a sample ring; the oto
// player pulls from the ring on the platform's audio callback via Read. The
// two goroutines only meet at the ring, whose lock discipline keeps both
// sides' blocking windows bounded.
type Oto struct {
	ctx      *oto.Context
	player   *oto.Player
	ring     *sampleRing
	channels int
	scratch  []float32 // interleave buffer, driver goroutine only
	readBuf  []float32 // deinterleave buffer, audio callback only

	mu      sync.Mutex
	started bool
}

// NewOto creates a playback sink for the given stream geometry.
//
// Parameters:
//   - sampleRate: Stream sample rate in Hz
//   - channels: Playback channel count (1 or 2)
//   - blockSize: Driver block size, used to size the bridge ring
//
// Returns:
//   - *Oto: The new sink, silent until Start is called
//   - error: Context creation or validation error
func NewOto(sampleRate, channels, blockSize int) (*Oto, error) {
	logrus.WithFields(logrus.Fields{
		"function":    "NewOto",
		"sample_rate": sampleRate,
		"channels":    channels,
		"block_size":  blockSize,
	}).Info("Creating new oto playback sink")

	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("unsupported channel count: %d", channels)
	}
	if sampleRate <= 0 || blockSize <= 0 {
		return nil, fmt.Errorf("invalid stream geometry: rate %d, block %d", sampleRate, blockSize)
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   10 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create audio context: %w", err)
	}
	<-ready

	// Ring holds a handful of blocks of slack between the driver cadence
	// and the platform callback cadence.
	s := &Oto{
		ctx:      ctx,
		ring:     newSampleRing(blockSize * channels * 8),
		channels: channels,
		scratch:  make([]float32, blockSize*channels),
		readBuf:  make([]float32, blockSize*channels),
	}
	s.player = ctx.NewPlayer(s)

	logrus.WithFields(logrus.Fields{
		"function": "NewOto",
	}).Info("Oto playback sink created successfully")

	return s, nil
}

// Start begins playback. Starting a started sink is a no-op.
func (s *Oto) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.player.Play()
	s.started = true

	logrus.WithFields(logrus.Fields{
		"function": "Oto.Start",
	}).Info("Playback started")

	return nil
}

// WriteBlock interleaves the first `channels` output channels into the ring.
//
// Called on the driver goroutine. Nil or short channels contribute zeros.
// No allocation once the scratch buffer has grown to the block size.
func (s *Oto) WriteBlock(outputs [][]float32, numSamples int) {
	if numSamples < 0 {
		numSamples = 0
	}
	need := numSamples * s.channels
	if len(s.scratch) < need {
		s.scratch = make([]float32, need)
	}
	frame := s.scratch[:need]

	for i := 0; i < numSamples; i++ {
		for ch := 0; ch < s.channels; ch++ {
			var sample float32
			if ch < len(outputs) && outputs[ch] != nil && i < len(outputs[ch]) {
				sample = outputs[ch][i]
			}
			frame[i*s.channels+ch] = sample
		}
	}

	s.ring.write(frame)
}

// Read implements io.Reader for the oto player: the platform audio callback
// pulls interleaved float32 little-endian samples from the ring, receiving
// silence on underrun. No logging, bounded locking.
func (s *Oto) Read(p []byte) (int, error) {
	numSamples := len(p) / 4
	if len(s.readBuf) < numSamples {
		s.readBuf = make([]float32, numSamples)
	}
	samples := s.readBuf[:numSamples]

	s.ring.read(samples)

	for i, sample := range samples {
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(sample))
	}
	return numSamples * 4, nil
}

// Close stops playback and releases the player.
func (s *Oto) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.player != nil {
		if err := s.player.Close(); err != nil {
			return fmt.Errorf("failed to close player: %w", err)
		}
		s.player = nil
	}
	s.started = false

	logrus.WithFields(logrus.Fields{
		"function": "Oto.Close",
	}).Info("Playback sink closed")

	return nil
}
