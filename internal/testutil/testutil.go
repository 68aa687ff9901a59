package testutil

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/leonardotrapani/aslbridge/internal/config"
	"github.com/leonardotrapani/aslbridge/internal/signvideo"
)

// TestConfig returns a valid configuration pointing at local endpoints
func TestConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Recording.Timeout = 5 * time.Second
	cfg.Media.Window = 5 * time.Second
	cfg.Media.Realtime = false
	cfg.Transcription.URL = "http://127.0.0.1:1/transcribe"
	cfg.Transcription.Timeout = 5 * time.Second
	cfg.Sign.URL = "http://127.0.0.1:1/translate"
	cfg.Sign.Timeout = 5 * time.Second
	cfg.Sign.Player = ""
	cfg.Notifications.Type = "none"
	return cfg
}

// CreateTempConfigFile creates a temporary config file for testing
func CreateTempConfigFile(t *testing.T, configContent string) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}
	return configPath
}

// SineBlock returns n samples of a sine wave at freq Hz.
func SineBlock(n int, freq float64, sampleRate uint32, amplitude float32) []float32 {
	block := make([]float32, n)
	for i := range block {
		block[i] = amplitude * float32(math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return block
}

// TestContext returns a context with timeout for testing
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// WaitForCondition waits for a condition to be true or times out
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			t.Fatalf("Condition not met within %v", timeout)
		default:
			if condition() {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// MockSource implements recording.Source. Blocks are delivered during Start.
type MockSource struct {
	Rate       uint32
	Blocks     [][]float32
	StartError error
	// EndAfterBlocks signals end of media once Blocks are delivered.
	EndAfterBlocks bool

	mu      sync.Mutex
	stops   int
	ended   chan struct{}
	endOnce sync.Once
}

func NewMockSource(rate uint32, blocks ...[]float32) *MockSource {
	return &MockSource{
		Rate:   rate,
		Blocks: blocks,
		ended:  make(chan struct{}),
	}
}

func (m *MockSource) Start(deliver func([]float32)) error {
	if m.StartError != nil {
		return m.StartError
	}
	for _, block := range m.Blocks {
		deliver(block)
	}
	if m.EndAfterBlocks {
		m.End()
	}
	return nil
}

// End signals end of media.
func (m *MockSource) End() {
	m.endOnce.Do(func() { close(m.ended) })
}

func (m *MockSource) Stop() error {
	m.mu.Lock()
	m.stops++
	m.mu.Unlock()
	return nil
}

// Stops returns how many times Stop was called.
func (m *MockSource) Stops() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

func (m *MockSource) SampleRate() uint32 {
	return m.Rate
}

func (m *MockSource) Ended() <-chan struct{} {
	return m.ended
}

// MockTranscriberAdapter implements transcriber.Adapter for testing
type MockTranscriberAdapter struct {
	TranscribeFunc func(ctx context.Context, wavData []byte) (string, error)

	mu    sync.Mutex
	calls int
	last  []byte
}

func (m *MockTranscriberAdapter) Transcribe(ctx context.Context, wavData []byte) (string, error) {
	m.mu.Lock()
	m.calls++
	m.last = wavData
	m.mu.Unlock()

	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, wavData)
	}
	return "mock transcription", nil
}

// NewMockTranscriberAdapter returns an adapter that always answers text.
func NewMockTranscriberAdapter(text string) *MockTranscriberAdapter {
	return &MockTranscriberAdapter{
		TranscribeFunc: func(context.Context, []byte) (string, error) { return text, nil },
	}
}

func (m *MockTranscriberAdapter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastAudio returns the WAV bytes of the most recent call.
func (m *MockTranscriberAdapter) LastAudio() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// MockLLMAdapter implements llm.Adapter for testing
type MockLLMAdapter struct {
	ProcessedText string
	ProcessError  error

	mu            sync.Mutex
	ProcessCalled bool
	InputText     string
}

func NewMockLLMAdapter(processedText string) *MockLLMAdapter {
	return &MockLLMAdapter{ProcessedText: processedText}
}

func (m *MockLLMAdapter) Process(ctx context.Context, text string) (string, error) {
	m.mu.Lock()
	m.ProcessCalled = true
	m.InputText = text
	m.mu.Unlock()

	if m.ProcessError != nil {
		return "", m.ProcessError
	}
	return m.ProcessedText, nil
}

// MockTranslator implements a sign-language translator for testing
type MockTranslator struct {
	Video *signvideo.Video
	Err   error
	// Block makes Translate wait for the context to be done.
	Block bool

	mu    sync.Mutex
	texts []string
}

func NewMockTranslator() *MockTranslator {
	return &MockTranslator{
		Video: &signvideo.Video{Data: []byte("fake-video"), ContentType: "video/mp4"},
	}
}

func (m *MockTranslator) Translate(ctx context.Context, text string) (*signvideo.Video, error) {
	m.mu.Lock()
	m.texts = append(m.texts, text)
	m.mu.Unlock()

	if m.Block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Video, nil
}

// Texts returns every text passed to Translate.
func (m *MockTranslator) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

// MockPlayer records opened paths
type MockPlayer struct {
	mu     sync.Mutex
	opened []string
}

func (m *MockPlayer) Open(path string) error {
	m.mu.Lock()
	m.opened = append(m.opened, path)
	m.mu.Unlock()
	return nil
}

func (m *MockPlayer) Opened() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.opened...)
}
