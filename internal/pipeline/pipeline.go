package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/leonardotrapani/aslbridge/internal/llm"
	"github.com/leonardotrapani/aslbridge/internal/metrics"
	"github.com/leonardotrapani/aslbridge/internal/notify"
	"github.com/leonardotrapani/aslbridge/internal/recording"
	"github.com/leonardotrapani/aslbridge/internal/signvideo"
	"github.com/leonardotrapani/aslbridge/internal/transcriber"
)

type Status string
type Action string

const (
	Idle         Status = "idle"
	Recording    Status = "recording"
	Transcribing Status = "transcribing"
	Translating  Status = "translating"
	Ready        Status = "ready"
	Error        Status = "error"
)

const (
	// Finish stops capture and continues with transcription.
	Finish Action = "finish"
	// Cancel stops capture and discards the audio.
	Cancel Action = "cancel"
)

var ErrCancelled = errors.New("cancelled")

const DefaultProcessTimeout = 5 * time.Minute

// Result is what a completed run produced.
type Result struct {
	SessionID  string
	Source     string
	StopReason recording.StopReason
	Captured   time.Duration
	Transcript string
	VideoPath  string
}

// Translator turns text into a sign-language video.
type Translator interface {
	Translate(ctx context.Context, text string) (*signvideo.Video, error)
}

// VideoStore persists a video and returns where it was written.
type VideoStore interface {
	Save(sessionID string, video *signvideo.Video) (string, error)
}

// VideoPlayer presents a saved video.
type VideoPlayer interface {
	Open(path string) error
}

// Deps are the collaborators of one run. Cleanup, Player, Notifier and
// Metrics are optional.
type Deps struct {
	Source      recording.Source
	SourceName  string
	MaxDuration time.Duration

	Transcriber transcriber.Adapter
	Cleanup     llm.Adapter
	Translator  Translator
	Store       VideoStore
	Player      VideoPlayer

	Notifier notify.Notifier
	Metrics  *metrics.Metrics

	// EmptyText replaces a blank transcript; translation is skipped then.
	EmptyText string
	// ProcessTimeout bounds everything after capture.
	ProcessTimeout time.Duration
}

type Pipeline interface {
	Run(ctx context.Context)
	Stop()
	Status() Status
	Actions() chan<- Action
	Result() *Result
	Err() error
	Done() <-chan struct{}
}

type pipeline struct {
	deps Deps

	mu     sync.RWMutex
	status Status
	result *Result
	err    error

	actionCh chan Action
	done     chan struct{}
	wg       sync.WaitGroup
	cancel   context.CancelFunc
}

func New(deps Deps) Pipeline {
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}
	if deps.SourceName == "" {
		deps.SourceName = "audio"
	}
	if deps.ProcessTimeout <= 0 {
		deps.ProcessTimeout = DefaultProcessTimeout
	}
	return &pipeline{
		deps:     deps,
		status:   Idle,
		actionCh: make(chan Action, 1),
		done:     make(chan struct{}),
	}
}

func (p *pipeline) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

func (p *pipeline) setStatus(s Status) {
	p.mu.Lock()
	p.status = s
	p.mu.Unlock()
	log.Printf("Pipeline: status %s", s)
}

func (p *pipeline) Actions() chan<- Action {
	return p.actionCh
}

// Result returns the outcome of a finished run, or nil.
func (p *pipeline) Result() *Result {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.result
}

func (p *pipeline) Err() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.err
}

// Done is closed when the run has finished.
func (p *pipeline) Done() <-chan struct{} {
	return p.done
}

// Stop cancels the run and waits for it to return.
func (p *pipeline) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

func (p *pipeline) Run(ctx context.Context) {
	var runCtx context.Context
	var cancel context.CancelFunc
	if p.deps.MaxDuration > 0 {
		runCtx, cancel = context.WithTimeout(ctx, p.deps.MaxDuration+p.deps.ProcessTimeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	p.cancel = cancel
	p.setStatus(Recording)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer close(p.done)
		defer cancel()
		p.run(runCtx)
	}()
}

func (p *pipeline) run(ctx context.Context) {
	d := p.deps
	d.Metrics.RecordSessionStarted()
	defer d.Metrics.RecordSessionDone()

	session := recording.NewSession(d.Source, d.MaxDuration)
	result := &Result{SessionID: session.ID, Source: d.SourceName}

	captureStart := time.Now()
	if err := session.Start(ctx); err != nil {
		d.Metrics.RecordStage(metrics.StageCapture, time.Since(captureStart), err)
		p.fail(result, fmt.Errorf("capture: %w", err))
		return
	}
	d.Notifier.CaptureStarted(d.SourceName)

	p.awaitCapture(session)

	result.StopReason = session.Reason()
	result.Captured = session.Duration()
	d.Metrics.RecordCapture(string(result.StopReason), result.Captured)
	d.Metrics.RecordStage(metrics.StageCapture, time.Since(captureStart), session.Err())

	if result.StopReason == recording.StopCancelled {
		log.Printf("Pipeline: capture cancelled, discarding %v of audio", result.Captured)
		p.cancelled(result)
		return
	}
	d.Notifier.CaptureEnded(string(result.StopReason))

	wavData := session.WAV()
	log.Printf("Pipeline: encoded %v of audio into %d bytes", result.Captured, len(wavData))

	p.setStatus(Transcribing)
	d.Notifier.Transcribing()
	text, err := p.stage(ctx, metrics.StageTranscribe, func() (string, error) {
		return d.Transcriber.Transcribe(ctx, wavData)
	})
	if err != nil {
		p.stageFailed(ctx, result, fmt.Errorf("transcribe: %w", err))
		return
	}

	if d.Cleanup != nil && strings.TrimSpace(text) != "" {
		cleaned, err := p.stage(ctx, metrics.StageCleanup, func() (string, error) {
			return d.Cleanup.Process(ctx, text)
		})
		switch {
		case errors.Is(ctx.Err(), context.Canceled):
			p.cancelled(result)
			return
		case err != nil:
			log.Printf("Pipeline: cleanup failed, using raw transcript: %v", err)
		case cleaned != "":
			text = cleaned
		}
	}

	if strings.TrimSpace(text) == "" {
		log.Printf("Pipeline: no speech detected")
		result.Transcript = d.EmptyText
		p.succeed(result)
		return
	}
	result.Transcript = text

	p.setStatus(Translating)
	d.Notifier.Translating(text)
	var video *signvideo.Video
	_, err = p.stage(ctx, metrics.StageTranslate, func() (string, error) {
		v, err := d.Translator.Translate(ctx, text)
		video = v
		return "", err
	})
	if err != nil {
		p.stageFailed(ctx, result, fmt.Errorf("translate: %w", err))
		return
	}

	path, err := p.stage(ctx, metrics.StageSave, func() (string, error) {
		return d.Store.Save(result.SessionID, video)
	})
	if err != nil {
		p.fail(result, fmt.Errorf("save video: %w", err))
		return
	}
	result.VideoPath = path

	if d.Player != nil {
		if err := d.Player.Open(path); err != nil {
			log.Printf("Pipeline: failed to open video: %v", err)
		}
	}
	d.Notifier.VideoReady(path)
	p.succeed(result)
}

// awaitCapture relays actions to the session until it stops.
func (p *pipeline) awaitCapture(session *recording.Session) {
	for {
		select {
		case <-session.Done():
			return
		case action := <-p.actionCh:
			log.Printf("Pipeline: received action: %v", action)
			switch action {
			case Finish:
				session.Stop(recording.StopManual)
			case Cancel:
				session.Stop(recording.StopCancelled)
			}
		}
	}
}

func (p *pipeline) stage(ctx context.Context, name string, fn func() (string, error)) (string, error) {
	start := time.Now()
	out, err := fn()
	duration := time.Since(start)
	p.deps.Metrics.RecordStage(name, duration, err)
	if err != nil {
		log.Printf("Pipeline: %s failed after %v: %v", name, duration, err)
	} else {
		log.Printf("Pipeline: %s finished in %v", name, duration)
	}
	return out, err
}

// stageFailed reports err, or a cancellation if the run context is done.
func (p *pipeline) stageFailed(ctx context.Context, result *Result, err error) {
	if errors.Is(ctx.Err(), context.Canceled) {
		p.cancelled(result)
		return
	}
	p.fail(result, err)
}

func (p *pipeline) succeed(result *Result) {
	p.mu.Lock()
	p.result = result
	p.status = Ready
	p.mu.Unlock()
	log.Printf("Pipeline: session %s ready: %q", result.SessionID, result.Transcript)
}

func (p *pipeline) cancelled(result *Result) {
	p.mu.Lock()
	p.result = result
	p.err = ErrCancelled
	p.status = Idle
	p.mu.Unlock()
	p.deps.Notifier.Cancelled()
	log.Printf("Pipeline: session %s cancelled", result.SessionID)
}

func (p *pipeline) fail(result *Result, err error) {
	p.mu.Lock()
	p.result = result
	p.err = err
	p.status = Error
	p.mu.Unlock()
	p.deps.Notifier.Error(err.Error())
	log.Printf("Pipeline: session %s failed: %v", result.SessionID, err)
}
