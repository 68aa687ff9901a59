package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
)

const (
	HeaderSize     = 44
	channels       = 1
	bitsPerSample  = 16
	bytesPerSample = bitsPerSample / 8
)

var ErrInvalidWAV = errors.New("invalid wav data")

// Encode converts mono float32 samples to a canonical 16-bit PCM WAV file.
func Encode(samples []float32, sampleRate uint32) []byte {
	dataSize := uint32(len(samples) * bytesPerSample)
	out := make([]byte, HeaderSize+int(dataSize))

	// RIFF chunk
	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], 36+dataSize)
	copy(out[8:12], "WAVE")

	// fmt chunk
	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16)                                 // fmt chunk size
	binary.LittleEndian.PutUint16(out[20:22], 1)                                  // PCM format
	binary.LittleEndian.PutUint16(out[22:24], channels)                           // number of channels
	binary.LittleEndian.PutUint32(out[24:28], sampleRate)                         // sample rate
	binary.LittleEndian.PutUint32(out[28:32], sampleRate*channels*bytesPerSample) // byte rate
	binary.LittleEndian.PutUint16(out[32:34], channels*bytesPerSample)            // block align
	binary.LittleEndian.PutUint16(out[34:36], bitsPerSample)                      // bits per sample

	// data chunk
	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], dataSize)

	off := HeaderSize
	for _, s := range samples {
		binary.LittleEndian.PutUint16(out[off:off+2], uint16(Quantize(s)))
		off += bytesPerSample
	}
	return out
}

// Quantize clamps s to [-1, 1] and scales it to int16. Negative values use
// the full 32768 range so -1 maps to math.MinInt16.
func Quantize(s float32) int16 {
	v := float64(s)
	switch {
	case math.IsNaN(v):
		return 0
	case v > 1:
		v = 1
	case v < -1:
		v = -1
	}
	if v < 0 {
		return int16(math.Round(v * 32768))
	}
	return int16(math.Round(v * 32767))
}

// Audio is a decoded mono signal.
type Audio struct {
	Samples    []float32
	SampleRate uint32
}

// Duration of the decoded signal.
func (a *Audio) Duration() time.Duration {
	if a.SampleRate == 0 {
		return 0
	}
	return time.Duration(len(a.Samples)) * time.Second / time.Duration(a.SampleRate)
}

// Info describes a WAV file without its samples.
type Info struct {
	SampleRate    uint32
	Channels      uint16
	BitsPerSample uint16
	Format        uint16
	Duration      time.Duration
	DataSize      int64
}

// Inspect reads the header of a WAV file. Duration is derived from the
// size of the data chunk.
func Inspect(data []byte) (Info, error) {
	dec := gowav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return Info{}, ErrInvalidWAV
	}
	if err := dec.FwdToPCM(); err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
	}

	info := Info{
		SampleRate:    dec.SampleRate,
		Channels:      dec.NumChans,
		BitsPerSample: dec.BitDepth,
		Format:        dec.WavAudioFormat,
		DataSize:      dec.PCMLen(),
	}
	frameSize := int64(dec.NumChans) * int64(dec.BitDepth) / 8
	if byteRate := int64(dec.SampleRate) * frameSize; byteRate > 0 {
		info.Duration = time.Duration(info.DataSize) * time.Second / time.Duration(byteRate)
	}
	return info, nil
}

// Decode parses a PCM WAV file and returns its first channel as float32
// samples in [-1, 1].
func Decode(data []byte) (*Audio, error) {
	dec := gowav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, ErrInvalidWAV
	}
	if dec.WavAudioFormat != 1 {
		return nil, fmt.Errorf("%w: unsupported audio format %d (only PCM)", ErrInvalidWAV, dec.WavAudioFormat)
	}
	if dec.NumChans == 0 {
		return nil, fmt.Errorf("%w: no channels", ErrInvalidWAV)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode pcm: %w", err)
	}

	return &Audio{
		Samples:    firstChannel(buf, int(dec.NumChans), int(dec.BitDepth)),
		SampleRate: dec.SampleRate,
	}, nil
}

func firstChannel(buf *goaudio.IntBuffer, numChans, bitDepth int) []float32 {
	if bitDepth <= 0 {
		bitDepth = bitsPerSample
	}
	// 8-bit WAV is unsigned; everything wider is signed.
	scale := float32(int64(1) << (bitDepth - 1))
	var offset float32
	if bitDepth == 8 {
		offset = scale
	}

	out := make([]float32, 0, len(buf.Data)/numChans)
	for i := 0; i < len(buf.Data); i += numChans {
		out = append(out, (float32(buf.Data[i])-offset)/scale)
	}
	return out
}
