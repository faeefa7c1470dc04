// Package dispatch connects audio device callbacks to block producers and
// consumers.
//
// The package provides two pieces:
//
//   - Dispatcher: a registry of DeviceCallback implementations, notified of
//     stream lifecycle events and handed every audio block in registration
//     order. It plays the role an audio device manager plays in a full audio
//     stack: components register once and the device goroutine fans blocks
//     out to all of them.
//
//   - Driver: a goroutine that emulates a duplex audio device, pulling input
//     blocks from a BlockSource at the stream's block cadence, delivering
//     them through a Dispatcher, and pushing the resulting output blocks to
//     a BlockSink.
//
// The interfaces are defined here rather than imported so the dispatcher
// works with any source or sink implementation without tight coupling to
// specific packages.
package dispatch
