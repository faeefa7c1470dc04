// Package source provides input-block producers for the stream driver.
//
// A source stands in for the capture side of an audio device: the driver
// asks it to fill the input channel buffers once per block. Tone generates a
// test sine, Silence generates digital zero, and OpusFile decodes an Ogg
// Opus stream so real program material can be routed through the engine.
package source
