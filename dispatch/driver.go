package dispatch

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/unmute/audio"
)

// BlockSource produces input audio one block at a time.
//
// ReadBlock fills the first numSamples entries of each non-nil channel in
// inputs. It may return an error (including io.EOF when the source is
// exhausted); the driver treats a failed read as silence.
type BlockSource interface {
	ReadBlock(inputs [][]float32, numSamples int) error
}

// BlockSink consumes output audio one block at a time.
type BlockSink interface {
	WriteBlock(outputs [][]float32, numSamples int)
}

// DriverConfig configures a Driver.
type DriverConfig struct {
	SampleRate     int
	BlockSize      int
	InputChannels  int
	OutputChannels int
	Source         BlockSource
	Sink           BlockSink
}

// Driver emulates a duplex audio device on its own goroutine.
//
// At every block interval it pulls a block from the source, delivers it
// through the dispatcher, and pushes the outputs to the sink. All channel
// slabs are allocated once at construction; the block loop allocates
// nothing. Output buffers are deliberately not cleared between blocks, the
// same way real device buffers arrive carrying stale contents: silencing
// them is the registered callbacks' job.
type Driver struct {
	config     DriverConfig
	dispatcher *Dispatcher

	inputs  [][]float32
	outputs [][]float32

	mu      sync.Mutex
	running bool
	done    chan struct{}
	wg      sync.WaitGroup

	srcFailed bool
}

// NewDriver creates a driver for the given dispatcher.
//
// Parameters:
//   - config: Stream geometry plus the source and sink to bridge
//   - dispatcher: The dispatcher blocks are delivered through
//
// Returns:
//   - *Driver: The new driver, not yet running
//   - error: Validation error for malformed configuration
func NewDriver(config DriverConfig, dispatcher *Dispatcher) (*Driver, error) {
	logrus.WithFields(logrus.Fields{
		"function":    "NewDriver",
		"sample_rate": config.SampleRate,
		"block_size":  config.BlockSize,
		"inputs":      config.InputChannels,
		"outputs":     config.OutputChannels,
	}).Info("Creating new stream driver")

	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher cannot be nil")
	}
	if config.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", config.SampleRate)
	}
	if config.BlockSize <= 0 {
		return nil, fmt.Errorf("invalid block size: %d", config.BlockSize)
	}
	if config.InputChannels < 0 || config.OutputChannels < 0 {
		return nil, fmt.Errorf("negative channel count: %d in, %d out",
			config.InputChannels, config.OutputChannels)
	}

	inputs := make([][]float32, config.InputChannels)
	for i := range inputs {
		inputs[i] = make([]float32, config.BlockSize)
	}
	outputs := make([][]float32, config.OutputChannels)
	for i := range outputs {
		outputs[i] = make([]float32, config.BlockSize)
	}

	return &Driver{
		config:     config,
		dispatcher: dispatcher,
		inputs:     inputs,
		outputs:    outputs,
	}, nil
}

// BlockInterval returns the wall-clock duration of one block.
func (dr *Driver) BlockInterval() time.Duration {
	return time.Duration(dr.config.BlockSize) * time.Second / time.Duration(dr.config.SampleRate)
}

// Start begins delivering blocks.
//
// The dispatcher's stream is started first so every registered callback sees
// DeviceAboutToStart before its first block. Starting a running driver is an
// error.
func (dr *Driver) Start() error {
	dr.mu.Lock()
	defer dr.mu.Unlock()

	if dr.running {
		return fmt.Errorf("driver already running")
	}

	dr.dispatcher.StartStream(audio.StreamInfo{
		SampleRate: dr.config.SampleRate,
		BlockSize:  dr.config.BlockSize,
		Inputs:     dr.config.InputChannels,
		Outputs:    dr.config.OutputChannels,
	})

	dr.running = true
	dr.done = make(chan struct{})
	dr.wg.Add(1)
	go dr.run(dr.done)

	logrus.WithFields(logrus.Fields{
		"function":       "Driver.Start",
		"block_interval": dr.BlockInterval(),
	}).Info("Stream driver started")

	return nil
}

// Stop halts block delivery and notifies callbacks the stream stopped.
//
// Stop blocks until the device goroutine has exited, so no callback is in
// flight when it returns. Stopping a stopped driver is a no-op.
func (dr *Driver) Stop() {
	dr.mu.Lock()
	if !dr.running {
		dr.mu.Unlock()
		return
	}
	dr.running = false
	close(dr.done)
	dr.mu.Unlock()

	dr.wg.Wait()
	dr.dispatcher.StopStream()

	logrus.WithFields(logrus.Fields{
		"function": "Driver.Stop",
	}).Info("Stream driver stopped")
}

// IsRunning reports whether the device goroutine is active.
func (dr *Driver) IsRunning() bool {
	dr.mu.Lock()
	defer dr.mu.Unlock()
	return dr.running
}

// run is the device goroutine: one block per tick until stopped.
func (dr *Driver) run(done chan struct{}) {
	defer dr.wg.Done()

	ticker := time.NewTicker(dr.BlockInterval())
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			dr.step()
		}
	}
}

// step produces and delivers exactly one block.
func (dr *Driver) step() {
	n := dr.config.BlockSize

	if dr.config.Source != nil {
		if err := dr.config.Source.ReadBlock(dr.inputs, n); err != nil {
			// An exhausted or failing source degrades to silence; a real
			// microphone going quiet looks the same to the callbacks.
			if !dr.srcFailed {
				dr.srcFailed = true
				logrus.WithFields(logrus.Fields{
					"function": "Driver.step",
					"error":    err.Error(),
				}).Warn("Source read failed, substituting silence")
			}
			for _, in := range dr.inputs {
				for i := 0; i < n && i < len(in); i++ {
					in[i] = 0
				}
			}
		} else {
			dr.srcFailed = false
		}
	}

	dr.dispatcher.Deliver(dr.inputs, dr.outputs, n)

	if dr.config.Sink != nil {
		dr.config.Sink.WriteBlock(dr.outputs, n)
	}
}
