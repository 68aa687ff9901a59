package recording

import "sync"

// SampleBuffer accumulates sample blocks while recording is on and drops
// them otherwise. Deliver is called from the audio callback goroutine, so
// the critical section is limited to a slice append.
type SampleBuffer struct {
	mu        sync.Mutex
	recording bool
	blocks    [][]float32
	total     int
}

func NewSampleBuffer() *SampleBuffer {
	return &SampleBuffer{}
}

func (b *SampleBuffer) Begin() {
	b.mu.Lock()
	b.recording = true
	b.mu.Unlock()
}

func (b *SampleBuffer) End() {
	b.mu.Lock()
	b.recording = false
	b.mu.Unlock()
}

func (b *SampleBuffer) IsRecording() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.recording
}

// Deliver stores a copy of block if recording is on. Callers may reuse
// block after Deliver returns.
func (b *SampleBuffer) Deliver(block []float32) {
	if len(block) == 0 {
		return
	}
	cp := make([]float32, len(block))
	copy(cp, block)

	b.mu.Lock()
	if b.recording {
		b.blocks = append(b.blocks, cp)
		b.total += len(cp)
	}
	b.mu.Unlock()
}

// Flatten concatenates every buffered block in arrival order.
func (b *SampleBuffer) Flatten() []float32 {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]float32, 0, b.total)
	for _, blk := range b.blocks {
		out = append(out, blk...)
	}
	return out
}

// Len is the total number of buffered samples.
func (b *SampleBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total
}

func (b *SampleBuffer) Blocks() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.blocks)
}

// Reset drops all blocks and turns recording off.
func (b *SampleBuffer) Reset() {
	b.mu.Lock()
	b.recording = false
	b.blocks = nil
	b.total = 0
	b.mu.Unlock()
}
