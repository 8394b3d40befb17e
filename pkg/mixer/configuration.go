package mixer

import (
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/common"
	"time"
)

func NewConfiguration() Configuration {
	return Configuration{
		24000,
		1,
		50 * time.Millisecond,
		60,
		common.Regexp{},
		common.Regexp{},
	}
}

type Configuration struct {
	SampleRate    int           `yaml:"sampleRate,omitempty"`
	Channels      int           `yaml:"channels,omitempty"`
	FrameDuration time.Duration `yaml:"frameDuration,omitempty"`
	QueueDepth    uint32        `yaml:"queueDepth,omitempty"`

	IncludedSources common.Regexp `yaml:"includedSources,omitempty"`
	ExcludedSources common.Regexp `yaml:"excludedSources,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("mixer.sampleRate", "Sample rate in Hz of the mixed audio stream.").
		Envar("BYM_MIXER_SAMPLE_RATE").
		IntVar(&this.SampleRate)
	using.Flag("mixer.channels", "Number of channels of the mixed audio stream.").
		Envar("BYM_MIXER_CHANNELS").
		IntVar(&this.Channels)
	using.Flag("mixer.frameDuration", "Duration of one mixed frame which is also the interval of the mix tick.").
		Envar("BYM_MIXER_FRAME_DURATION").
		DurationVar(&this.FrameDuration)
	using.Flag("mixer.queueDepth", "How many mixed frames are buffered before the oldest ones are dropped.").
		Envar("BYM_MIXER_QUEUE_DEPTH").
		Uint32Var(&this.QueueDepth)
	using.Flag("mixer.includedSources", "Which source identities should be mixed.").
		Envar("BYM_MIXER_INCLUDED_SOURCES").
		SetValue(&this.IncludedSources)
	using.Flag("mixer.excludedSources", "Which source identities should never be mixed.").
		Envar("BYM_MIXER_EXCLUDED_SOURCES").
		SetValue(&this.ExcludedSources)
}

// SamplesPerChannel of every mixed frame.
func (this Configuration) SamplesPerChannel() int {
	return int(int64(this.SampleRate) * int64(this.FrameDuration) / int64(time.Second))
}

func (this Configuration) isSourceRelevant(identity string) bool {
	if v := this.IncludedSources; v.HasContent() {
		if !v.MatchString(identity) {
			return false
		}
	}
	if v := this.ExcludedSources; v.HasContent() {
		if v.MatchString(identity) {
			return false
		}
	}
	return true
}

func (this Configuration) orDefaults() Configuration {
	d := NewConfiguration()
	if this.SampleRate <= 0 {
		this.SampleRate = d.SampleRate
	}
	if this.Channels <= 0 {
		this.Channels = d.Channels
	}
	if this.FrameDuration <= 0 {
		this.FrameDuration = d.FrameDuration
	}
	if this.QueueDepth == 0 {
		this.QueueDepth = d.QueueDepth
	}
	return this
}
