package recording

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/leonardotrapani/aslbridge/internal/wav"
)

// fakeSource hands its deliver callback to the test and never ends unless
// endCh is closed.
type fakeSource struct {
	mu       sync.Mutex
	deliver  func([]float32)
	startErr error
	stops    int
	endCh    chan struct{}
	// onStart runs inside Start after the callback is registered.
	onStart func()
}

func (f *fakeSource) Start(deliver func([]float32)) error {
	f.mu.Lock()
	if f.startErr != nil {
		f.mu.Unlock()
		return f.startErr
	}
	f.deliver = deliver
	hook := f.onStart
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return nil
}

func (f *fakeSource) Stop() error {
	f.mu.Lock()
	f.stops++
	f.mu.Unlock()
	return nil
}

func (f *fakeSource) SampleRate() uint32     { return 8000 }
func (f *fakeSource) Ended() <-chan struct{} { return f.endCh }

func (f *fakeSource) push(block []float32) {
	f.mu.Lock()
	d := f.deliver
	f.mu.Unlock()
	d(block)
}

func (f *fakeSource) stopCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

func waitDone(t *testing.T, s *Session) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session did not stop in time")
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.SampleRate != 44100 {
		t.Errorf("default sample rate should be 44100, got %d", config.SampleRate)
	}
	if config.BlockSize != 4096 {
		t.Errorf("default block size should be 4096, got %d", config.BlockSize)
	}
	if config.MediaWindow != 10*time.Second {
		t.Errorf("default media window should be 10s, got %v", config.MediaWindow)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero sample rate", func(c *Config) { c.SampleRate = 0 }},
		{"negative block size", func(c *Config) { c.BlockSize = -1 }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"zero media window", func(c *Config) { c.MediaWindow = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSession_ManualStop(t *testing.T) {
	src := &fakeSource{}
	s := NewSession(src, time.Minute)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	src.push([]float32{0.1, 0.2})
	src.push([]float32{0.3})

	if !s.Stop(StopManual) {
		t.Fatal("first Stop should report true")
	}
	src.push([]float32{0.9}) // late callback after stop

	waitDone(t, s)
	if s.Reason() != StopManual {
		t.Errorf("Reason() = %q, want %q", s.Reason(), StopManual)
	}
	if got := s.Samples(); !reflect.DeepEqual(got, []float32{0.1, 0.2, 0.3}) {
		t.Errorf("Samples() = %v", got)
	}
	if len(s.WAV()) != wav.HeaderSize+6 {
		t.Errorf("WAV() length = %d, want %d", len(s.WAV()), wav.HeaderSize+6)
	}
}

func TestSession_StopIsIdempotent(t *testing.T) {
	src := &fakeSource{}
	s := NewSession(src, time.Minute)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if !s.Stop(StopMediaEnded) {
		t.Fatal("first Stop should report true")
	}
	if s.Stop(StopTimeout) {
		t.Error("second Stop should be a no-op")
	}
	if s.Reason() != StopMediaEnded {
		t.Errorf("Reason() = %q, want first trigger %q", s.Reason(), StopMediaEnded)
	}
	if n := src.stopCount(); n != 1 {
		t.Errorf("source stopped %d times, want 1", n)
	}
}

func TestSession_TimerTrigger(t *testing.T) {
	src := &fakeSource{}
	s := NewSession(src, 20*time.Millisecond)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	waitDone(t, s)
	if s.Reason() != StopTimeout {
		t.Errorf("Reason() = %q, want %q", s.Reason(), StopTimeout)
	}
}

func TestSession_MediaEndDisarmsTimer(t *testing.T) {
	src := &fakeSource{endCh: make(chan struct{})}
	s := NewSession(src, 50*time.Millisecond)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	close(src.endCh)
	waitDone(t, s)

	// give the disarmed timer a chance to fire if it were still armed
	time.Sleep(100 * time.Millisecond)

	if s.Reason() != StopMediaEnded {
		t.Errorf("Reason() = %q, want %q", s.Reason(), StopMediaEnded)
	}
	if n := src.stopCount(); n != 1 {
		t.Errorf("source stopped %d times, want 1", n)
	}
}

func TestSession_ContextCancel(t *testing.T) {
	src := &fakeSource{}
	s := NewSession(src, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	cancel()

	waitDone(t, s)
	if s.Reason() != StopCancelled {
		t.Errorf("Reason() = %q, want %q", s.Reason(), StopCancelled)
	}
}

func TestSession_StopDuringSourceStart(t *testing.T) {
	src := &fakeSource{}
	s := NewSession(src, 20*time.Millisecond)
	src.onStart = func() { s.Stop(StopManual) }

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitDone(t, s)

	s.mu.Lock()
	timer, cancel := s.timer, s.cancel
	s.mu.Unlock()
	if timer != nil || cancel != nil {
		t.Error("no trigger should be armed on a session stopped during Start")
	}

	// would flip the reason if the timer had been armed
	time.Sleep(60 * time.Millisecond)
	if s.Reason() != StopManual {
		t.Errorf("Reason() = %q, want %q", s.Reason(), StopManual)
	}
	// once by Stop, once more to release the source that finished starting
	if n := src.stopCount(); n != 2 {
		t.Errorf("source stopped %d times, want 2", n)
	}
}

func TestSession_StartErrors(t *testing.T) {
	t.Run("source fails", func(t *testing.T) {
		boom := errors.New("no device")
		s := NewSession(&fakeSource{startErr: boom}, time.Minute)

		err := s.Start(context.Background())
		if !errors.Is(err, boom) {
			t.Fatalf("Start error = %v, want %v", err, boom)
		}
		waitDone(t, s)
		if s.Reason() != StopSourceError {
			t.Errorf("Reason() = %q, want %q", s.Reason(), StopSourceError)
		}
	})

	t.Run("double start", func(t *testing.T) {
		s := NewSession(&fakeSource{}, time.Minute)
		if err := s.Start(context.Background()); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		defer s.Stop(StopManual)
		if err := s.Start(context.Background()); err == nil {
			t.Error("second Start should fail")
		}
	})
}

func TestSession_EmptyCapture(t *testing.T) {
	s := NewSession(&fakeSource{}, time.Minute)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	s.Stop(StopManual)

	if got := s.Samples(); len(got) != 0 {
		t.Errorf("Samples() = %v, want empty", got)
	}
	if got := len(s.WAV()); got != wav.HeaderSize {
		t.Errorf("WAV() length = %d, want %d", got, wav.HeaderSize)
	}
	if s.Duration() != 0 {
		t.Errorf("Duration() = %v, want 0", s.Duration())
	}
}

func TestMediaSource_PlaysToEnd(t *testing.T) {
	samples := make([]float32, 10000)
	for i := range samples {
		samples[i] = float32(i%100) / 100
	}
	cfg := DefaultConfig()
	cfg.BlockSize = 4096
	cfg.MediaRealtime = false

	src := NewMediaSource(&wav.Audio{Samples: samples, SampleRate: 8000}, cfg)
	s := NewSession(src, time.Minute)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	waitDone(t, s)
	if s.Reason() != StopMediaEnded {
		t.Errorf("Reason() = %q, want %q", s.Reason(), StopMediaEnded)
	}
	if got := s.Samples(); !reflect.DeepEqual(got, samples) {
		t.Errorf("captured %d samples, want all %d in order", len(got), len(samples))
	}
}

func TestMediaSource_WindowCutsPlayback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BlockSize = 800 // 100ms at 8kHz
	cfg.MediaRealtime = true

	src := NewMediaSource(&wav.Audio{Samples: make([]float32, 8000*5), SampleRate: 8000}, cfg)
	s := NewSession(src, 250*time.Millisecond)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	waitDone(t, s)
	if s.Reason() != StopTimeout {
		t.Errorf("Reason() = %q, want %q", s.Reason(), StopTimeout)
	}
	if got := len(s.Samples()); got == 0 || got >= 8000*5 {
		t.Errorf("captured %d samples, want a partial capture", got)
	}
}

func TestMediaSource_ExtremeSampleRate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BlockSize = 1
	cfg.MediaRealtime = true

	// one sample lasts less than a nanosecond at this rate
	src := NewMediaSource(&wav.Audio{Samples: make([]float32, 16), SampleRate: 4_000_000_000}, cfg)
	s := NewSession(src, time.Minute)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	waitDone(t, s)
	if s.Reason() != StopMediaEnded {
		t.Errorf("Reason() = %q, want %q", s.Reason(), StopMediaEnded)
	}
	if got := len(s.Samples()); got != 16 {
		t.Errorf("captured %d samples, want 16", got)
	}
}

func TestOpenMedia(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := OpenMedia(filepath.Join(dir, "nope.wav"), DefaultConfig())
		if !errors.Is(err, ErrNoMedia) {
			t.Errorf("error = %v, want ErrNoMedia", err)
		}
	})

	t.Run("not a wav", func(t *testing.T) {
		path := filepath.Join(dir, "bad.wav")
		if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := OpenMedia(path, DefaultConfig())
		if !errors.Is(err, ErrNoMedia) {
			t.Errorf("error = %v, want ErrNoMedia", err)
		}
	})

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(dir, "clip.wav")
		if err := os.WriteFile(path, wav.Encode(make([]float32, 1600), 16000), 0o644); err != nil {
			t.Fatal(err)
		}
		src, err := OpenMedia(path, DefaultConfig())
		if err != nil {
			t.Fatalf("OpenMedia failed: %v", err)
		}
		if src.SampleRate() != 16000 {
			t.Errorf("SampleRate() = %d, want 16000", src.SampleRate())
		}
		if src.Duration() != 100*time.Millisecond {
			t.Errorf("Duration() = %v, want 100ms", src.Duration())
		}
	})
}

func TestMediaSource_EmptyAudio(t *testing.T) {
	src := NewMediaSource(&wav.Audio{SampleRate: 8000}, DefaultConfig())
	if err := src.Start(func([]float32) {}); !errors.Is(err, ErrNoMedia) {
		t.Errorf("Start error = %v, want ErrNoMedia", err)
	}
}

func TestMicSource_Idle(t *testing.T) {
	m := NewMicSource(DefaultConfig())
	if m.SampleRate() != 44100 {
		t.Errorf("SampleRate() = %d, want 44100", m.SampleRate())
	}
	if m.Ended() != nil {
		t.Error("live source should never end")
	}
	if err := m.Stop(); err != nil {
		t.Errorf("Stop on idle mic should be a no-op: %v", err)
	}
}
