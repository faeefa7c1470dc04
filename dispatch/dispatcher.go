package dispatch

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/unmute/audio"
)

// DeviceCallback is implemented by components that want to observe the audio
// stream. The device goroutine invokes ProcessBlock once per buffer; the
// channel views it passes are borrowed and must not be retained past the
// call.
type DeviceCallback interface {
	// DeviceAboutToStart is called once when the stream becomes active.
	DeviceAboutToStart(info audio.StreamInfo)

	// DeviceStopped is called once when the stream halts.
	DeviceStopped()

	// ProcessBlock is called on the device goroutine for every buffer.
	ProcessBlock(inputs, outputs [][]float32, numSamples int)
}

// Dispatcher fans device callbacks out to registered components.
//
// Callbacks run in registration order, all seeing the same buffers, so a
// later callback observes the writes of an earlier one. Registration and
// removal are safe to call concurrently with block delivery; a callback
// added while the stream is already running receives DeviceAboutToStart
// immediately, and one removed while running receives DeviceStopped.
type Dispatcher struct {
	mu        sync.RWMutex
	callbacks []DeviceCallback
	streaming bool
	info      audio.StreamInfo
}

// NewDispatcher creates an empty dispatcher with no active stream.
func NewDispatcher() *Dispatcher {
	logrus.WithFields(logrus.Fields{
		"function": "NewDispatcher",
	}).Info("Creating new callback dispatcher")

	return &Dispatcher{}
}

// Add registers a callback for stream events and blocks.
//
// If a stream is already active the callback is started immediately so it
// never processes a block without having seen DeviceAboutToStart.
//
// Parameters:
//   - cb: The callback to register; nil is ignored
func (d *Dispatcher) Add(cb DeviceCallback) {
	if cb == nil {
		logrus.WithFields(logrus.Fields{
			"function": "Dispatcher.Add",
		}).Warn("Ignoring nil callback registration")
		return
	}

	d.mu.Lock()
	d.callbacks = append(d.callbacks, cb)
	streaming := d.streaming
	info := d.info
	count := len(d.callbacks)
	d.mu.Unlock()

	if streaming {
		cb.DeviceAboutToStart(info)
	}

	logrus.WithFields(logrus.Fields{
		"function":       "Dispatcher.Add",
		"callback_count": count,
		"streaming":      streaming,
	}).Info("Callback registered")
}

// Remove unregisters a previously added callback.
//
// If a stream is active the callback receives DeviceStopped before removal
// completes. Removing a callback that was never added is a no-op.
func (d *Dispatcher) Remove(cb DeviceCallback) {
	d.mu.Lock()
	removed := false
	for i, existing := range d.callbacks {
		if existing == cb {
			d.callbacks = append(d.callbacks[:i], d.callbacks[i+1:]...)
			removed = true
			break
		}
	}
	streaming := d.streaming
	count := len(d.callbacks)
	d.mu.Unlock()

	if removed && streaming {
		cb.DeviceStopped()
	}

	logrus.WithFields(logrus.Fields{
		"function":       "Dispatcher.Remove",
		"removed":        removed,
		"callback_count": count,
	}).Info("Callback removal processed")
}

// StartStream marks the stream active and notifies all callbacks.
//
// Starting an already active stream is a no-op.
func (d *Dispatcher) StartStream(info audio.StreamInfo) {
	d.mu.Lock()
	if d.streaming {
		d.mu.Unlock()
		return
	}
	d.streaming = true
	d.info = info
	cbs := make([]DeviceCallback, len(d.callbacks))
	copy(cbs, d.callbacks)
	d.mu.Unlock()

	for _, cb := range cbs {
		cb.DeviceAboutToStart(info)
	}

	logrus.WithFields(logrus.Fields{
		"function":       "Dispatcher.StartStream",
		"sample_rate":    info.SampleRate,
		"block_size":     info.BlockSize,
		"callback_count": len(cbs),
	}).Info("Stream started")
}

// StopStream marks the stream halted and notifies all callbacks.
//
// Stopping an inactive stream is a no-op.
func (d *Dispatcher) StopStream() {
	d.mu.Lock()
	if !d.streaming {
		d.mu.Unlock()
		return
	}
	d.streaming = false
	cbs := make([]DeviceCallback, len(d.callbacks))
	copy(cbs, d.callbacks)
	d.mu.Unlock()

	for _, cb := range cbs {
		cb.DeviceStopped()
	}

	logrus.WithFields(logrus.Fields{
		"function":       "Dispatcher.StopStream",
		"callback_count": len(cbs),
	}).Info("Stream stopped")
}

// IsStreaming reports whether a stream is currently active.
func (d *Dispatcher) IsStreaming() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.streaming
}

// Deliver hands one block to every registered callback in order.
//
// Called on the device goroutine. The read lock is held across the fan-out;
// registration churn is rare and brief, so the device goroutine's blocking
// window stays bounded. Deliver performs no allocation and no logging.
func (d *Dispatcher) Deliver(inputs, outputs [][]float32, numSamples int) {
	d.mu.RLock()
	for _, cb := range d.callbacks {
		cb.ProcessBlock(inputs, outputs, numSamples)
	}
	d.mu.RUnlock()
}
