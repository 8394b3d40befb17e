package app

import (
	"context"
	"dario.cat/mergo"
	"errors"
	"fmt"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/agenda"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/common"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/console"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/facilitator"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/mixer"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/oracle"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/signal/facade"
	log "github.com/echocat/slf4g"
	"golang.org/x/term"
	"io"
	"net/http"
	"os"
	"reflect"
	"sync"
	"time"
)

var ErrNoAgenda = errors.New("no agenda configured")

func NewApp() *App {
	return &App{
		config: NewConfiguration(),
	}
}

type App struct {
	Signal            facade.Facade
	ConfigurationFile string
	Headless          bool

	// Backlog of the log output, replayed by the console. Optional.
	Backlog *common.LineBuffer

	configFromFlags Configuration
	config          Configuration

	oracleClient *oracle.Client
	facilitator  *facilitator.Facilitator
	mixer        *mixer.Mixer
}

func (this *App) SetupConfiguration(using common.FlagHolder) {
	this.configFromFlags.SetupConfiguration(using)

	using.Flag("configuration", "Defines the file from which the configuration should be loaded and/or stored to.").
		Short('c').
		Envar("BYM_CONFIGURATION").
		StringVar(&this.ConfigurationFile)
	using.Flag("headless", "Do not open the interactive console of the host.").
		Envar("BYM_HEADLESS").
		BoolVar(&this.Headless)
}

func (this *App) configurationFile() string {
	if v := this.ConfigurationFile; v != "" {
		return v
	}
	return defaultConfigurationFile()
}

func (this *App) Initialize() (rErr error) {
	success := false
	defer func() {
		if !success {
			if err := this.Dispose(); err != nil && rErr == nil {
				rErr = err
			}
		}
	}()

	if err := this.config.loadFromFile(this.configurationFile(), true); err != nil {
		return err
	}
	if err := mergeWithOverride(&this.config, this.configFromFlags); err != nil {
		return err
	}

	if this.config.Agenda == "" {
		return ErrNoAgenda
	}
	def, err := agenda.LoadDefinitionFromFile(this.config.Agenda)
	if err != nil {
		return err
	}

	o, err := this.initializeOracle()
	if err != nil {
		return err
	}
	if err := this.Signal.Initialize(&this.config.Signal, this.alwaysSaveConf); err != nil {
		return err
	}

	if this.facilitator, err = facilitator.New(def, this.config.Facilitator,
		facilitator.WithPolicy(this.config.Gate),
		facilitator.WithOracle(o),
		facilitator.WithSpeaker(facilitator.LogSpeaker{}),
		facilitator.WithPublisher(&this.Signal),
	); err != nil {
		return err
	}
	this.mixer = mixer.New(this.config.Mixer)

	if err := this.saveConf(false); err != nil {
		return err
	}

	success = true
	return nil
}

func (this *App) initializeOracle() (oracle.Oracle, error) {
	if !this.config.Oracle.Enabled {
		log.Info("Oracle disabled. The facilitator only acts on timers and explicit commands.")
		return oracle.Disabled{}, nil
	}

	client := oracle.NewClient(&this.config.Oracle)
	if err := client.Initialize(this.alwaysSaveConf); errors.Is(err, oracle.ErrNoApiKey) {
		log.WithError(err).
			Warn("Oracle not available. The facilitator only acts on timers and explicit commands.")
		return oracle.Disabled{}, nil
	} else if err != nil {
		return nil, err
	}
	this.oracleClient = client
	return client, nil
}

func (this *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out, err := this.openMixedAudioOutput()
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	var wg sync.WaitGroup
	defer wg.Wait()

	server := &http.Server{
		Addr:              this.config.Listen,
		Handler:           newServer(this.facilitator, this.mixer),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErr := make(chan error, 1)

	wg.Add(4)
	go func() {
		defer wg.Done()
		_ = this.mixer.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := mixer.Pump(ctx, this.mixer, out); err != nil {
			log.WithError(err).
				Error("Cannot write mixed audio.")
		}
	}()
	go func() {
		defer wg.Done()
		log.With("address", server.Addr).
			Info("Listening for audio sources, transcripts and commands.")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			cancel()
		}
	}()
	go func() {
		defer wg.Done()
		this.refreshLoop(ctx)
	}()

	if this.consoleEnabled() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer cancel()
			host := console.Host{
				Facilitator: this.facilitator,
				Backlog:     this.Backlog,
			}
			if err := host.Run(ctx); err != nil {
				log.WithError(err).
					Warn("Console stopped.")
			}
		}()
	}

	this.facilitator.Start()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).
			Warn("Cannot shutdown server gracefully.")
	}

	select {
	case err := <-serverErr:
		return fmt.Errorf("cannot serve at %s: %w", server.Addr, err)
	default:
		return nil
	}
}

func (this *App) consoleEnabled() bool {
	if this.Headless || !this.config.Console {
		return false
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		log.Info("Stdin is no terminal. Console disabled.")
		return false
	}
	return true
}

func (this *App) refreshLoop(ctx context.Context) {
	for {
		log.With("interval", this.config.RefreshInterval).
			Debug("Wait until the next refresh...")
		select {
		case <-ctx.Done():
			log.Debug("Refresh loop interrupted.")
			return
		case <-time.After(this.config.RefreshInterval):
		}

		if err := this.Signal.Update(); err != nil {
			log.WithError(err).
				Error("Cannot update signal.")
			continue
		}
		this.Signal.Publish(this.facilitator.Snapshot())
	}
}

func (this *App) openMixedAudioOutput() (io.WriteCloser, error) {
	switch fn := this.config.MixedAudioOutput; fn {
	case "":
		return nopWriteCloser{io.Discard}, nil
	case "-":
		return nopWriteCloser{os.Stdout}, nil
	default:
		f, err := os.OpenFile(fn, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return nil, fmt.Errorf("cannot open mixed audio output %q: %w", fn, err)
		}
		return f, nil
	}
}

func (this *App) alwaysSaveConf() error {
	return this.saveConf(true)
}

func (this *App) saveConf(always bool) error {
	if this.config.PreventAutoSave {
		log.Debug("Automatically save of configuration disabled.")
		return nil
	}

	fn := this.configurationFile()
	if !always {
		_, err := os.Stat(fn)
		if os.IsNotExist(err) {
			log.With("file", fn).Info("Configuration absent.")
			// Ok, we should save...
		} else if err != nil {
			return err
		} else {
			// Does exist, skip...
			return nil
		}
	}

	if err := this.config.saveToFile(fn); err != nil {
		return err
	}

	log.With("file", fn).Info("Configuration saved.")

	return nil
}

func (this *App) Dispose() (rErr error) {
	defer func() {
		if v := this.oracleClient; v != nil {
			if err := v.Dispose(); err != nil && rErr == nil {
				rErr = err
			}
			this.oracleClient = nil
		}
	}()

	defer func() {
		if err := this.Signal.Dispose(); err != nil && rErr == nil {
			rErr = err
		}
	}()

	defer func() {
		if v := this.mixer; v != nil {
			if err := v.Close(); err != nil && rErr == nil {
				rErr = err
			}
		}
	}()

	if v := this.facilitator; v != nil {
		return v.Close()
	}
	return nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}

// mergeWithOverride takes every value of src which is set.
func mergeWithOverride[T any](dst *T, src T) error {
	return mergo.Merge(dst, src, mergo.WithOverride, mergo.WithTransformers(regexpTransformer{}))
}

// regexpTransformer prevents that an unset regexp flag wipes out the one of
// the configuration file.
type regexpTransformer struct{}

func (regexpTransformer) Transformer(t reflect.Type) func(dst, src reflect.Value) error {
	if t != reflect.TypeOf(common.Regexp{}) {
		return nil
	}
	return func(dst, src reflect.Value) error {
		if v, ok := src.Interface().(common.Regexp); ok && v.HasContent() && dst.CanSet() {
			dst.Set(src)
		}
		return nil
	}
}
