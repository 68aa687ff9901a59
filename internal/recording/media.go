package recording

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/leonardotrapani/aslbridge/internal/wav"
)

// MediaSource replays a decoded WAV file in fixed-size blocks, standing in
// for the audio track of a playing media element.
type MediaSource struct {
	path      string
	audio     *wav.Audio
	blockSize int
	realtime  bool

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	ended   chan struct{}
	endOnce sync.Once
}

// OpenMedia loads path as a media source.
func OpenMedia(path string, config Config) (*MediaSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoMedia, path)
		}
		return nil, fmt.Errorf("read media: %w", err)
	}

	audio, err := wav.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNoMedia, path, err)
	}

	src := NewMediaSource(audio, config)
	src.path = path
	return src, nil
}

func NewMediaSource(audio *wav.Audio, config Config) *MediaSource {
	blockSize := config.BlockSize
	if blockSize <= 0 {
		blockSize = DefaultConfig().BlockSize
	}
	return &MediaSource{
		audio:     audio,
		blockSize: blockSize,
		realtime:  config.MediaRealtime,
		ended:     make(chan struct{}),
	}
}

func (m *MediaSource) SampleRate() uint32 {
	return m.audio.SampleRate
}

func (m *MediaSource) Ended() <-chan struct{} {
	return m.ended
}

// Duration of the underlying media.
func (m *MediaSource) Duration() time.Duration {
	return m.audio.Duration()
}

func (m *MediaSource) Start(deliver func([]float32)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		return fmt.Errorf("media already playing")
	}
	if len(m.audio.Samples) == 0 {
		return fmt.Errorf("%w: empty audio", ErrNoMedia)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	m.wg.Add(1)
	go m.play(ctx, deliver)

	log.Printf("Recording: media started (%s, rate=%d, duration=%v)", m.path, m.audio.SampleRate, m.audio.Duration())
	return nil
}

func (m *MediaSource) play(ctx context.Context, deliver func([]float32)) {
	defer m.wg.Done()

	var tick <-chan time.Time
	if m.realtime && m.audio.SampleRate > 0 {
		period := max(time.Duration(m.blockSize)*time.Second/time.Duration(m.audio.SampleRate), time.Nanosecond)
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		tick = ticker.C
	}

	samples := m.audio.Samples
	for off := 0; off < len(samples); off += m.blockSize {
		if tick != nil {
			select {
			case <-tick:
			case <-ctx.Done():
				return
			}
		} else if ctx.Err() != nil {
			return
		}

		end := min(off+m.blockSize, len(samples))
		deliver(samples[off:end])
	}

	m.endOnce.Do(func() { close(m.ended) })
}

func (m *MediaSource) Stop() error {
	m.mu.Lock()
	cancel := m.cancel
	m.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	m.wg.Wait()
	return nil
}
