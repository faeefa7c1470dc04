// Package sink provides output-block consumers for the stream driver.
//
// A sink stands in for the playback side of an audio device: the driver
// hands it the routed (or silenced) output channels once per block. Null
// discards everything for headless operation and tests; Oto plays the
// output through the system audio device via ebitengine/oto, bridged by a
// fixed-capacity sample ring so the driver goroutine and the platform audio
// callback never share buffers directly.
package sink
