// Package audio implements the real-time passthrough engine for unmute.
//
// The engine is the hot-path component of the library: it is invoked on the
// audio device's callback goroutine once per buffer and either routes every
// input channel into every output channel or forces the outputs silent,
// depending on a flag owned by the control thread.
//
// The processing path:
//
//	Device callback → ProcessBlock → copy-through (active) or zero-fill (inactive)
//
// Real-time constraints shape the whole package: ProcessBlock performs no
// allocation, no logging, and no I/O, and the only synchronization it uses
// is a mutex held just long enough to copy one boolean. All state changes
// (Toggle, SetActive, DeviceAboutToStart) happen on the control thread
// through the same mutex, so a toggle completed before a callback begins is
// always observed by that callback.
package audio
