package recording

import (
	"errors"
	"fmt"
	"log"
	"time"
)

// ErrNoMedia is returned when a media source has nothing to play.
var ErrNoMedia = errors.New("no media found")

// Source produces mono float32 sample blocks. Start registers the callback
// that receives every block; the callback must not be retained past Stop.
type Source interface {
	Start(deliver func(block []float32)) error
	Stop() error
	SampleRate() uint32
	// Ended is closed when the source runs out of audio. Live sources
	// return nil, which blocks forever in a select.
	Ended() <-chan struct{}
}

type StopReason string

const (
	StopNone        StopReason = ""
	StopManual      StopReason = "manual"
	StopTimeout     StopReason = "timeout"
	StopMediaEnded  StopReason = "media-ended"
	StopCancelled   StopReason = "cancelled"
	StopSourceError StopReason = "source-error"
)

type Config struct {
	SampleRate    int
	BlockSize     int
	Device        string
	Timeout       time.Duration // mic capture cap
	MediaWindow   time.Duration // media capture cap
	MediaRealtime bool
}

func DefaultConfig() Config {
	return Config{
		SampleRate:    44100,
		BlockSize:     4096,
		Device:        "",
		Timeout:       time.Minute,
		MediaWindow:   10 * time.Second,
		MediaRealtime: true,
	}
}

func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("invalid SampleRate: %d", c.SampleRate)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("invalid BlockSize: %d", c.BlockSize)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid Timeout: %v", c.Timeout)
	}
	if c.MediaWindow <= 0 {
		return fmt.Errorf("invalid MediaWindow: %v", c.MediaWindow)
	}
	if c.BlockSize&(c.BlockSize-1) != 0 {
		log.Printf("Recording: BlockSize %d is not a power of two; callback sizes may vary", c.BlockSize)
	}
	return nil
}
