// Package unmute implements a toggleable real-time audio passthrough.
//
// The library routes every input channel of an audio stream into every
// output channel when active, and forces the outputs silent when inactive,
// with the flip driven from a non-real-time control thread. The hot path is
// glitch-safe: no allocation, no logging, and a lock held only long enough
// to copy one boolean.
//
// # Getting Started
//
// Create an instance, start the stream, and toggle from the UI thread:
//
//	tone, err := source.NewTone(440, 48000, 0.5)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	options := unmute.NewOptions()
//	options.Source = tone
//
//	um, err := unmute.New(options)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer um.Kill()
//
//	if err := um.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
//	// On each user action:
//	label := um.Toggle() // "routing active" or "silenced"
//	fmt.Println(label)
//
// # Core Types
//
//   - [Unmute]: Facade wiring the engine, dispatcher, driver, and controller
//   - [Controller]: The control-thread toggle operation
//   - [Options]: Stream geometry plus optional source and sink
//
// The audio/ package holds the real-time engine, dispatch/ the callback
// registry and stream driver, source/ input producers (tone, silence, Ogg
// Opus files), and sink/ output consumers (system playback via oto, or a
// discarding null sink).
//
// # Concurrency Model
//
// Exactly two goroutines matter: the device goroutine delivering blocks and
// the control goroutine toggling. The engine's active flag is the only
// shared state; a toggle completed before a block begins is observed by
// that block, and a toggle landing mid-block applies from the next block.
package unmute
