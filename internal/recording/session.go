package recording

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/leonardotrapani/aslbridge/internal/wav"
)

// Session is one capture from one Source into one SampleBuffer. It ends on
// the first of: Stop, the duration timer, the source's end of media, or
// cancellation of the context passed to Start.
type Session struct {
	ID string

	source  Source
	buffer  *SampleBuffer
	maxTime time.Duration

	mu      sync.Mutex
	started bool
	stopped bool
	timer   *time.Timer
	cancel  context.CancelFunc
	reason  StopReason
	stopErr error

	once sync.Once
	done chan struct{}
}

func NewSession(source Source, maxTime time.Duration) *Session {
	return &Session{
		ID:      uuid.NewString(),
		source:  source,
		buffer:  NewSampleBuffer(),
		maxTime: maxTime,
		done:    make(chan struct{}),
	}
}

// Start begins buffering and starts the source.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("session %s already started", s.ID)
	}
	s.started = true
	s.mu.Unlock()

	s.buffer.Begin()
	if err := s.source.Start(s.buffer.Deliver); err != nil {
		s.buffer.End()
		s.finish(StopSourceError, err)
		return fmt.Errorf("start source: %w", err)
	}

	s.mu.Lock()
	if s.stopped {
		// Stopped while the source was starting: release it and arm nothing.
		s.mu.Unlock()
		if err := s.source.Stop(); err != nil {
			log.Printf("Recording: session %s: stop source: %v", s.ID, err)
		}
		return nil
	}
	watchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	if s.maxTime > 0 {
		s.timer = time.AfterFunc(s.maxTime, func() { s.Stop(StopTimeout) })
	}
	s.mu.Unlock()

	go s.watch(watchCtx, ctx)

	log.Printf("Recording: session %s started (rate=%d, max=%v)", s.ID, s.source.SampleRate(), s.maxTime)
	return nil
}

func (s *Session) watch(watchCtx, parent context.Context) {
	select {
	case <-s.source.Ended():
		s.Stop(StopMediaEnded)
	case <-watchCtx.Done():
		// Either Stop disarmed us or the caller went away.
		if parent.Err() != nil {
			s.Stop(StopCancelled)
		}
	}
}

// Stop ends the session. Only the first call has any effect; it returns
// true for that call and disarms the remaining triggers.
func (s *Session) Stop(reason StopReason) bool {
	stopped := false
	s.once.Do(func() {
		stopped = true
		s.buffer.End()

		s.mu.Lock()
		s.stopped = true
		if s.timer != nil {
			s.timer.Stop()
		}
		cancel := s.cancel
		s.mu.Unlock()
		if cancel != nil {
			cancel()
		}

		err := s.source.Stop()
		if err != nil {
			log.Printf("Recording: session %s: stop source: %v", s.ID, err)
		}
		s.setResult(reason, err)
		log.Printf("Recording: session %s stopped (%s), %d samples in %d blocks",
			s.ID, reason, s.buffer.Len(), s.buffer.Blocks())
		close(s.done)
	})
	return stopped
}

func (s *Session) finish(reason StopReason, err error) {
	s.once.Do(func() {
		s.setResult(reason, err)
		close(s.done)
	})
}

func (s *Session) setResult(reason StopReason, err error) {
	s.mu.Lock()
	s.reason = reason
	s.stopErr = err
	s.mu.Unlock()
}

// Done is closed once the session has stopped.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) Reason() StopReason {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

// Err reports a failure of the source while stopping, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopErr
}

func (s *Session) SampleRate() uint32 {
	return s.source.SampleRate()
}

// Samples returns the captured audio. Call after Done is closed.
func (s *Session) Samples() []float32 {
	return s.buffer.Flatten()
}

// Duration is the length of the captured audio.
func (s *Session) Duration() time.Duration {
	rate := s.source.SampleRate()
	if rate == 0 {
		return 0
	}
	return time.Duration(s.buffer.Len()) * time.Second / time.Duration(rate)
}

// WAV encodes the captured audio.
func (s *Session) WAV() []byte {
	return wav.Encode(s.Samples(), s.source.SampleRate())
}
