package recording

import (
	"reflect"
	"sync"
	"testing"
)

func TestSampleBuffer_OrderPreserved(t *testing.T) {
	b := NewSampleBuffer()
	b.Begin()
	b.Deliver([]float32{1, 2})
	b.Deliver([]float32{3})
	b.Deliver([]float32{4, 5, 6})
	b.End()

	want := []float32{1, 2, 3, 4, 5, 6}
	if got := b.Flatten(); !reflect.DeepEqual(got, want) {
		t.Errorf("Flatten() = %v, want %v", got, want)
	}
	if b.Len() != 6 {
		t.Errorf("Len() = %d, want 6", b.Len())
	}
	if b.Blocks() != 3 {
		t.Errorf("Blocks() = %d, want 3", b.Blocks())
	}
}

func TestSampleBuffer_IdleDiscard(t *testing.T) {
	b := NewSampleBuffer()

	t.Run("before begin", func(t *testing.T) {
		b.Deliver([]float32{9, 9, 9})
		if b.Len() != 0 {
			t.Errorf("deliver before Begin should be ignored, Len() = %d", b.Len())
		}
	})

	t.Run("after end", func(t *testing.T) {
		b.Begin()
		b.Deliver([]float32{1})
		b.End()
		b.Deliver([]float32{2, 3})

		if got := b.Flatten(); !reflect.DeepEqual(got, []float32{1}) {
			t.Errorf("Flatten() = %v, want [1]", got)
		}
	})

	t.Run("begin again resumes", func(t *testing.T) {
		b.Begin()
		b.Deliver([]float32{4})
		b.End()

		if got := b.Flatten(); !reflect.DeepEqual(got, []float32{1, 4}) {
			t.Errorf("Flatten() = %v, want [1 4]", got)
		}
	})
}

func TestSampleBuffer_EmptyCapture(t *testing.T) {
	b := NewSampleBuffer()
	b.Begin()
	b.End()

	got := b.Flatten()
	if got == nil || len(got) != 0 {
		t.Errorf("Flatten() = %#v, want empty non-nil slice", got)
	}
}

func TestSampleBuffer_CopiesBlocks(t *testing.T) {
	b := NewSampleBuffer()
	b.Begin()

	block := []float32{0.1, 0.2}
	b.Deliver(block)
	block[0] = 0.9 // callbacks reuse their buffers

	if got := b.Flatten(); got[0] != 0.1 {
		t.Errorf("buffered sample changed with caller's slice: %v", got)
	}
}

func TestSampleBuffer_Reset(t *testing.T) {
	b := NewSampleBuffer()
	b.Begin()
	b.Deliver([]float32{1, 2, 3})
	b.Reset()

	if b.IsRecording() {
		t.Error("Reset should turn recording off")
	}
	if b.Len() != 0 || b.Blocks() != 0 {
		t.Errorf("Reset should drop blocks, Len=%d Blocks=%d", b.Len(), b.Blocks())
	}
}

func TestSampleBuffer_ConcurrentDeliver(t *testing.T) {
	b := NewSampleBuffer()
	b.Begin()

	const writers = 8
	const perWriter = 100

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			block := make([]float32, 16)
			for j := 0; j < perWriter; j++ {
				b.Deliver(block)
			}
		}()
	}
	wg.Wait()
	b.End()

	if got, want := b.Len(), writers*perWriter*16; got != want {
		t.Errorf("Len() = %d, want %d", got, want)
	}
	if got := len(b.Flatten()); got != b.Len() {
		t.Errorf("len(Flatten()) = %d, want %d", got, b.Len())
	}
}
