package mixer

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Frame is a chunk of interleaved signed 16 bit PCM.
type Frame struct {
	Samples           []int16
	SampleRate        int
	Channels          int
	SamplesPerChannel int
}

// NewSilence creates an all-zero frame of the given shape.
func NewSilence(sampleRate, channels, samplesPerChannel int) Frame {
	return Frame{
		Samples:           make([]int16, samplesPerChannel*channels),
		SampleRate:        sampleRate,
		Channels:          channels,
		SamplesPerChannel: samplesPerChannel,
	}
}

// FrameFromPCM decodes little endian s16 PCM.
func FrameFromPCM(pcm []byte, sampleRate, channels int) (Frame, error) {
	if channels <= 0 {
		return Frame{}, fmt.Errorf("illegal number of channels: %d", channels)
	}
	if len(pcm)%(2*channels) != 0 {
		return Frame{}, fmt.Errorf("pcm payload of %d bytes is not a multiple of %d channel(s) of 16 bit samples", len(pcm), channels)
	}
	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return Frame{
		Samples:           samples,
		SampleRate:        sampleRate,
		Channels:          channels,
		SamplesPerChannel: len(samples) / channels,
	}, nil
}

// PCM encodes the samples as little endian s16.
func (this Frame) PCM() []byte {
	result := make([]byte, len(this.Samples)*2)
	for i, v := range this.Samples {
		binary.LittleEndian.PutUint16(result[i*2:], uint16(v))
	}
	return result
}

func (this Frame) Duration() float64 {
	if this.SampleRate <= 0 {
		return 0
	}
	return float64(this.SamplesPerChannel) / float64(this.SampleRate)
}

func (this Frame) IsSilent() bool {
	for _, v := range this.Samples {
		if v != 0 {
			return false
		}
	}
	return true
}

func (this Frame) String() string {
	return fmt.Sprintf("%d samples/channel, %d channel(s) @ %d Hz", this.SamplesPerChannel, this.Channels, this.SampleRate)
}

// mix sums all frames sample by sample into a frame of the given shape and
// saturates at the int16 range. Shorter frames count as silence for the
// missing part, longer ones are truncated.
func mix(sampleRate, channels, samplesPerChannel int, frames ...Frame) Frame {
	result := NewSilence(sampleRate, channels, samplesPerChannel)
	sums := make([]int32, len(result.Samples))
	for _, f := range frames {
		n := min(len(f.Samples), len(sums))
		for i := 0; i < n; i++ {
			sums[i] += int32(f.Samples[i])
		}
	}
	for i, v := range sums {
		result.Samples[i] = saturate(v)
	}
	return result
}

func saturate(v int32) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
