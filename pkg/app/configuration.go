package app

import (
	"fmt"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/common"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/facilitator"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/gate"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/mixer"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/oracle"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/signal/facade"
	"gopkg.in/yaml.v3"
	"io"
	"os"
	"path/filepath"
	"time"
)

func NewConfiguration() Configuration {
	return Configuration{
		false,
		"",
		"localhost:8080",
		"",
		true,
		5 * time.Minute,

		facilitator.NewConfiguration(),
		gate.NewPolicy(),
		oracle.NewConfiguration(),
		mixer.NewConfiguration(),
		facade.NewConfiguration(),
	}
}

type Configuration struct {
	PreventAutoSave bool `yaml:"preventAutoSave"`

	// Agenda is the file the agenda is loaded from. Supported are yaml, toml
	// and json.
	Agenda string `yaml:"agenda,omitempty"`

	Listen string `yaml:"listen,omitempty"`

	// MixedAudioOutput is the file the mixed audio is written to as raw PCM.
	// "-" is stdout, empty discards it.
	MixedAudioOutput string `yaml:"mixedAudioOutput,omitempty"`

	Console         bool          `yaml:"console"`
	RefreshInterval time.Duration `yaml:"refreshInterval,omitempty"`

	Facilitator facilitator.Configuration `yaml:"facilitator,omitempty"`
	Gate        gate.Policy               `yaml:"gate,omitempty"`
	Oracle      oracle.Configuration      `yaml:"oracle,omitempty"`
	Mixer       mixer.Configuration       `yaml:"mixer,omitempty"`
	Signal      facade.Configuration      `yaml:"signal,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("preventAutoSave", "If provided configuration will NOT automatically be saved upon changes.").
		Envar("BYM_PREVENT_AUTO_SAVE").
		BoolVar(&this.PreventAutoSave)
	using.Flag("agenda", "File the agenda of the meeting is loaded from (yaml, toml or json).").
		Short('a').
		Envar("BYM_AGENDA").
		StringVar(&this.Agenda)
	using.Flag("listen", "Address the HTTP server for audio sources, transcripts and commands listens on.").
		Envar("BYM_LISTEN").
		StringVar(&this.Listen)
	using.Flag("mixedAudioOutput", "File the mixed audio is written to as raw PCM. - is stdout.").
		Envar("BYM_MIXED_AUDIO_OUTPUT").
		StringVar(&this.MixedAudioOutput)
	using.Flag("refreshInterval", "How often the whole setup should be refreshed.").
		Envar("BYM_REFRESH_INTERVAL").
		DurationVar(&this.RefreshInterval)

	this.Facilitator.SetupConfiguration(using)
	this.Gate.SetupConfiguration(using)
	this.Oracle.SetupConfiguration(using)
	this.Mixer.SetupConfiguration(using)
	this.Signal.SetupConfiguration(using)
}

func (this *Configuration) loadFrom(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	return dec.Decode(this)
}

func (this *Configuration) loadFromFile(fn string, ignoreNotFound bool) error {
	f, err := os.Open(fn)
	if os.IsNotExist(err) && ignoreNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot open configuration file %q: %w", fn, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if err := this.loadFrom(f); err != nil {
		return fmt.Errorf("cannot load configuration file %q: %w", fn, err)
	}

	return nil
}

func (this *Configuration) saveTo(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	return enc.Encode(this)
}

func (this *Configuration) saveToFile(fn string) error {
	_ = os.MkdirAll(filepath.Dir(fn), 0700)

	f, err := os.OpenFile(fn, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("cannot open configuration file %q: %w", fn, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if err := this.saveTo(f); err != nil {
		return fmt.Errorf("cannot write file %q: %w", fn, err)
	}

	return nil
}
