package sink

// Null discards every block it is handed. It serves headless operation and
// tests, where routing correctness matters but nothing should reach a
// speaker.
type Null struct{}

// NewNull creates a discarding sink.
func NewNull() *Null {
	return &Null{}
}

// Start implements the sink lifecycle; a Null sink has nothing to open.
func (n *Null) Start() error { return nil }

// WriteBlock discards the block.
func (n *Null) WriteBlock(outputs [][]float32, numSamples int) {}

// Close implements the sink lifecycle; a Null sink has nothing to release.
func (n *Null) Close() error { return nil }
