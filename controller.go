package unmute

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/unmute/audio"
	"github.com/opd-ai/unmute/dispatch"
)

// Status labels reported to the UI after each toggle.
const (
	LabelRouting  = "routing active"
	LabelSilenced = "silenced"
)

// Controller is the control-thread face of the engine: a single toggle
// operation that flips routing on and off and reports the resulting mode.
//
// The engine is not registered with the dispatcher until the first toggle,
// so an untouched engine never sits in the callback chain. Registration
// happens at most once per controller lifetime; the one-shot flag shares
// the controller mutex so concurrent first toggles cannot double-register.
type Controller struct {
	mu         sync.Mutex
	engine     *audio.Engine
	dispatcher *dispatch.Dispatcher
	attached   bool
}

// NewController creates a controller for the given engine and dispatcher.
//
// Parameters:
//   - engine: The passthrough engine to control
//   - dispatcher: The dispatcher the engine is lazily registered with
//
// Returns:
//   - *Controller: The new controller
//   - error: Validation error if either collaborator is nil
func NewController(engine *audio.Engine, dispatcher *dispatch.Dispatcher) (*Controller, error) {
	logrus.WithFields(logrus.Fields{
		"function": "NewController",
	}).Info("Creating new test controller")

	if engine == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher cannot be nil")
	}

	return &Controller{
		engine:     engine,
		dispatcher: dispatcher,
	}, nil
}

// Toggle flips the engine between routing and silencing and returns the new
// state.
//
// On the first call the engine is registered with the dispatcher before the
// flip, so the engine's first observed state transition is the one the user
// requested. Safe to call repeatedly and concurrently with block
// processing; it never fails.
//
// Returns:
//   - bool: true if the engine is now routing, false if silencing
func (c *Controller) Toggle() bool {
	c.mu.Lock()
	if !c.attached {
		c.dispatcher.Add(c.engine)
		c.attached = true
		logrus.WithFields(logrus.Fields{
			"function": "Controller.Toggle",
		}).Info("Engine registered with dispatcher on first toggle")
	}
	c.mu.Unlock()

	active := c.engine.Toggle()

	logrus.WithFields(logrus.Fields{
		"function": "Controller.Toggle",
		"active":   active,
		"label":    labelFor(active),
	}).Info("Toggle completed")

	return active
}

// StatusLabel returns the human-readable label for the engine's current
// state.
func (c *Controller) StatusLabel() string {
	return labelFor(c.engine.IsActive())
}

// Attached reports whether the engine has been registered with the
// dispatcher yet.
func (c *Controller) Attached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attached
}

func labelFor(active bool) string {
	if active {
		return LabelRouting
	}
	return LabelSilenced
}
