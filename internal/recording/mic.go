package recording

import (
	"fmt"
	"log"
	"sync"

	"github.com/jfreymuth/pulse"
)

// MicSource captures the default (or configured) PulseAudio source.
type MicSource struct {
	config Config

	mu     sync.Mutex
	client *pulse.Client
	stream *pulse.RecordStream
}

func NewMicSource(config Config) *MicSource {
	return &MicSource{config: config}
}

func (m *MicSource) SampleRate() uint32 {
	return uint32(m.config.SampleRate)
}

func (m *MicSource) Ended() <-chan struct{} {
	return nil
}

func (m *MicSource) Start(deliver func([]float32)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stream != nil {
		return fmt.Errorf("microphone already started")
	}

	client, err := pulse.NewClient(pulse.ClientApplicationName("aslbridge"))
	if err != nil {
		return fmt.Errorf("connect to pulseaudio: %w", err)
	}

	opts := []pulse.RecordOption{
		pulse.RecordMono,
		pulse.RecordSampleRate(m.config.SampleRate),
		// float32 samples, one fragment per block
		pulse.RecordBufferFragmentSize(uint32(m.config.BlockSize * 4)),
		pulse.RecordMediaName("aslbridge capture"),
	}
	if m.config.Device != "" {
		src, err := client.SourceByID(m.config.Device)
		if err != nil {
			client.Close()
			return fmt.Errorf("find source %q: %w", m.config.Device, err)
		}
		opts = append(opts, pulse.RecordSource(src))
	}

	writer := pulse.Float32Writer(func(p []float32) (int, error) {
		deliver(p)
		return len(p), nil
	})

	stream, err := client.NewRecord(writer, opts...)
	if err != nil {
		client.Close()
		return fmt.Errorf("create record stream: %w", err)
	}

	stream.Start()
	m.client = client
	m.stream = stream

	log.Printf("Recording: microphone started (rate=%d, device=%q)", stream.SampleRate(), m.config.Device)
	return nil
}

func (m *MicSource) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stream == nil {
		return nil
	}

	m.stream.Stop()
	err := m.stream.Error()
	m.stream.Close()
	m.client.Close()
	m.stream = nil
	m.client = nil

	if err != nil {
		return fmt.Errorf("record stream: %w", err)
	}
	return nil
}
