package audio

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// StreamInfo describes the stream a device is about to start.
//
// It mirrors the information an audio device hands its callbacks when the
// stream (re)configures: the sample rate and the nominal block size the
// device will deliver per callback. BlockSize is advisory only; callbacks
// must honor the per-call sample count, which may differ.
type StreamInfo struct {
	SampleRate int
	BlockSize  int
	Inputs     int
	Outputs    int
}

// Engine routes input audio to output audio under a toggleable flag.
//
// When active, every sample of every non-nil input channel is written into
// every non-nil output channel: a many-to-many copy in which the
// lowest-index input is the last writer, not a summing mix. When inactive,
// every non-nil output channel is zeroed so stale buffer contents never
// reach the device.
//
// Engine is safe for concurrent use by exactly two goroutines: the device
// callback goroutine calling ProcessBlock and a control goroutine calling
// Toggle/SetActive. The shared flag is the only shared state.
type Engine struct {
	mu     sync.Mutex
	active bool
}

// NewEngine creates a new passthrough engine in the silenced state.
//
// Returns:
//   - *Engine: The new engine instance, inactive until toggled
func NewEngine() *Engine {
	logrus.WithFields(logrus.Fields{
		"function": "NewEngine",
	}).Info("Creating new passthrough engine")

	return &Engine{}
}

// DeviceAboutToStart notifies the engine that the audio stream is starting.
//
// The engine always starts a stream silenced, regardless of the state it was
// left in when a previous stream stopped. This prevents a surprise blast of
// routed audio when a device restarts.
//
// Parameters:
//   - info: Stream parameters reported by the device
func (e *Engine) DeviceAboutToStart(info StreamInfo) {
	e.mu.Lock()
	e.active = false
	e.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":    "Engine.DeviceAboutToStart",
		"sample_rate": info.SampleRate,
		"block_size":  info.BlockSize,
		"inputs":      info.Inputs,
		"outputs":     info.Outputs,
	}).Info("Audio stream starting, engine reset to silenced")
}

// DeviceStopped notifies the engine that the audio stream has halted.
//
// The engine holds no per-stream resources, so this only logs the event.
func (e *Engine) DeviceStopped() {
	logrus.WithFields(logrus.Fields{
		"function": "Engine.DeviceStopped",
	}).Info("Audio stream stopped")
}

// ProcessBlock transforms one device buffer in place.
//
// inputs and outputs are borrowed channel views owned by the caller for the
// duration of this call only; entries may be nil, meaning "channel not
// present". numSamples is the block length and is treated as untrusted:
// negative values are clamped to zero, and per-channel slice lengths bound
// every access so a short slice degrades to a shorter copy rather than a
// panic.
//
// The active flag is copied under the mutex and the mutex released before
// any sample work, so the control thread can never be blocked behind an
// O(samples × channels) loop and the callback's lock hold time is a few
// instructions regardless of buffer size. A toggle that lands mid-block
// takes effect from the next block.
//
// ProcessBlock never allocates, never logs, and never fails; malformed
// geometry degrades to a no-op for the affected channel.
func (e *Engine) ProcessBlock(inputs, outputs [][]float32, numSamples int) {
	if numSamples < 0 {
		numSamples = 0
	}

	e.mu.Lock()
	active := e.active
	e.mu.Unlock()

	if !active {
		// Clear the output buffers, in case they're full of junk.
		for _, out := range outputs {
			if out == nil {
				continue
			}
			n := numSamples
			if n > len(out) {
				n = len(out)
			}
			for i := 0; i < n; i++ {
				out[i] = 0
			}
		}
		return
	}

	// Many-to-many copy: inputs iterate in descending index order, so for
	// each output sample the lowest-index non-nil input is the last
	// writer. Not a mix.
	for i := 0; i < numSamples; i++ {
		for ich := len(inputs) - 1; ich >= 0; ich-- {
			in := inputs[ich]
			if in == nil || i >= len(in) {
				continue
			}
			for och := len(outputs) - 1; och >= 0; och-- {
				out := outputs[och]
				if out == nil || i >= len(out) {
					continue
				}
				out[i] = in[i]
			}
		}
	}
}

// Toggle flips the engine between routing and silencing.
//
// Safe to call concurrently with ProcessBlock; the flip is observed by the
// next block the device delivers, never retroactively by one in flight.
//
// Returns:
//   - bool: The new state (true = routing, false = silencing)
func (e *Engine) Toggle() bool {
	e.mu.Lock()
	e.active = !e.active
	active := e.active
	e.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "Engine.Toggle",
		"active":   active,
	}).Info("Engine state toggled")

	return active
}

// SetActive forces the engine into the given state.
func (e *Engine) SetActive(active bool) {
	e.mu.Lock()
	e.active = active
	e.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "Engine.SetActive",
		"active":   active,
	}).Debug("Engine state set")
}

// IsActive reports whether the engine is currently routing.
func (e *Engine) IsActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}
