package unmute

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/unmute/audio"
	"github.com/opd-ai/unmute/dispatch"
)

// Unmute is the top-level facade wiring the engine, dispatcher, stream
// driver, and controller together.
//
// Typical use: create an instance, Start the stream, and call Toggle from
// the UI thread whenever the user flips routing. The returned label is
// ready for display.
type Unmute struct {
	engine     *audio.Engine
	dispatcher *dispatch.Dispatcher
	driver     *dispatch.Driver
	controller *Controller
}

// New creates a fully wired Unmute instance.
//
// Parameters:
//   - options: Stream configuration; nil uses NewOptions defaults
//
// Returns:
//   - *Unmute: The new instance, stream not yet started
//   - error: Configuration error from the driver
func New(options *Options) (*Unmute, error) {
	if options == nil {
		options = NewOptions()
	}

	logrus.WithFields(logrus.Fields{
		"function":    "New",
		"sample_rate": options.SampleRate,
		"block_size":  options.BlockSize,
		"inputs":      options.InputChannels,
		"outputs":     options.OutputChannels,
	}).Info("Creating new unmute instance")

	engine := audio.NewEngine()
	dispatcher := dispatch.NewDispatcher()

	driver, err := dispatch.NewDriver(dispatch.DriverConfig{
		SampleRate:     options.SampleRate,
		BlockSize:      options.BlockSize,
		InputChannels:  options.InputChannels,
		OutputChannels: options.OutputChannels,
		Source:         options.Source,
		Sink:           options.Sink,
	}, dispatcher)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream driver: %w", err)
	}

	controller, err := NewController(engine, dispatcher)
	if err != nil {
		return nil, fmt.Errorf("failed to create controller: %w", err)
	}

	return &Unmute{
		engine:     engine,
		dispatcher: dispatcher,
		driver:     driver,
		controller: controller,
	}, nil
}

// Start begins the audio stream.
func (u *Unmute) Start() error {
	return u.driver.Start()
}

// Stop halts the audio stream. Registered callbacks are notified and no
// block is in flight when Stop returns.
func (u *Unmute) Stop() {
	u.driver.Stop()
}

// Toggle flips routing and returns the status label for display:
// LabelRouting or LabelSilenced.
func (u *Unmute) Toggle() string {
	return labelFor(u.controller.Toggle())
}

// StatusLabel returns the label for the current state without toggling.
func (u *Unmute) StatusLabel() string {
	return u.controller.StatusLabel()
}

// Engine exposes the passthrough engine, for callers that drive their own
// device callbacks instead of the built-in driver.
func (u *Unmute) Engine() *audio.Engine {
	return u.engine
}

// Dispatcher exposes the callback dispatcher for additional observers.
func (u *Unmute) Dispatcher() *dispatch.Dispatcher {
	return u.dispatcher
}

// Kill stops the stream and tears the instance down. The instance must not
// be used afterwards.
func (u *Unmute) Kill() {
	u.driver.Stop()

	logrus.WithFields(logrus.Fields{
		"function": "Unmute.Kill",
	}).Info("Unmute instance terminated")
}
