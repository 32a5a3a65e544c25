package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	influxdb2 "github.com/influxdata/influxdb-client-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samuel/go-hackrf/hackrf"
	"golang.org/x/sync/errgroup"

	"github.com/airbandrx/airband/pkg/airband"
	"github.com/airbandrx/airband/pkg/airband/config"
	"github.com/airbandrx/airband/pkg/airband/controls"
	"github.com/airbandrx/airband/pkg/airband/device"
	fileDevice "github.com/airbandrx/airband/pkg/airband/device/file"
	hackrfDevice "github.com/airbandrx/airband/pkg/airband/device/hackrf"
	"github.com/airbandrx/airband/pkg/airband/device/rtlsdr"
	"github.com/airbandrx/airband/pkg/airband/device/sim"
	"github.com/airbandrx/airband/pkg/airband/display"
	"github.com/airbandrx/airband/pkg/airband/httpapi"
	"github.com/airbandrx/airband/pkg/airband/output"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.InfoLevel)

	configFile := flag.String("config", "airband.yaml", "YAML config file")
	headless := flag.Bool("headless", false, "no audio playback or display, record only")
	verbose := flag.Bool("verbose", false, "debug logging")
	flag.Parse()

	if *verbose {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Warn().Err(err).Msg("config problem, continuing with defaults where needed")
	}

	source, cleanup, err := buildSource(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("device", cfg.SDR.Device).Msg("failed to initialize device")
	}
	if cleanup != nil {
		defer cleanup()
	}

	opts := []airband.Option{airband.WithLogger(log.Logger)}

	if cfg.Metrics.Host != "" {
		writeAPI := influxdb2.NewClient(cfg.Metrics.Host, "").WriteAPI(cfg.Metrics.Organization, cfg.Metrics.Bucket)
		opts = append(opts, airband.WithMetrics(writeAPI))
	}

	var sinks []output.Sink
	if !*headless {
		speaker, err := output.NewSpeaker(cfg.Audio.SampleRate, log.Logger)
		if err != nil {
			log.Warn().Err(err).Msg("no audio device, playback disabled")
		} else {
			sinks = append(sinks, speaker)
		}
		opts = append(opts, airband.WithRenderer(display.NewConsole(os.Stdout)))
	}
	if cfg.Stream.Host != "" {
		dest := fmt.Sprintf("%s:%d", cfg.Stream.Host, cfg.Stream.Port)
		stream, err := output.NewOpusUDPStream([]string{dest}, cfg.Audio.SampleRate, nil, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to start stream output")
		}
		sinks = append(sinks, stream)
	}
	if len(sinks) > 0 {
		opts = append(opts, airband.WithSink(&output.Tee{Sinks: sinks}))
	}

	// The simulated radio gets a simulated front panel so squelch and
	// recording can be driven from a desk.
	if cfg.SDR.Device == "sim" {
		opts = append(opts, airband.WithFrontPanel(controls.NewSimAnalog(), controls.NewSimButtons()))
	}

	receiver, err := airband.New(source, cfg, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create receiver")
	}

	eg, ctx := errgroup.WithContext(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var statusServer *httpapi.Server
	if cfg.Status.Port > 0 {
		statusServer = httpapi.NewServer(cfg.Status.Port, receiver.Bus(), receiver.Recordings(),
			receiver.Activity(), receiver.Memories(), log.Logger)
		eg.Go(func() error {
			return statusServer.Run(ctx)
		})
	}

	eg.Go(func() error {
		select {
		case <-sigChan:
		case <-ctx.Done():
		}
		if statusServer != nil {
			statusServer.Stop(context.TODO())
		}
		return receiver.Stop()
	})

	eg.Go(func() error {
		return receiver.Start(ctx)
	})

	if err := eg.Wait(); err != nil && err != context.Canceled {
		log.Fatal().Err(err).Msg("exited program")
	}
}

// buildSource picks the sample source from config. The returned cleanup,
// when non-nil, must run after the receiver stops.
func buildSource(cfg config.Config) (device.SampleSource, func(), error) {
	if cfg.SDR.PlaybackLocation != "" {
		cfg.SDR.Device = "file"
	}

	switch cfg.SDR.Device {
	case "rtlsdr":
		log.Info().Str("device", "rtlsdr").Msg("initializing device...")
		return rtlsdr.NewSource(cfg.SDR.RTLSDRIndex, cfg.SDR.SampleRate, cfg.SDR.BufferSize), nil, nil
	case "hackrf":
		log.Info().Str("device", "hackrf").Msg("initializing device...")
		if err := hackrf.Init(); err != nil {
			return nil, nil, err
		}
		return hackrfDevice.NewSource(cfg.SDR.SampleRate, cfg.SDR.BufferSize), func() { hackrf.Exit() }, nil
	case "file":
		log.Info().Str("device", "file").Str("path", cfg.SDR.PlaybackLocation).Msg("initializing device...")
		return fileDevice.NewSource(cfg.SDR.PlaybackLocation, cfg.SDR.SampleRate, cfg.SDR.BufferSize), nil, nil
	case "sim":
		log.Info().Str("device", "sim").Msg("initializing device...")
		return sim.NewSource(cfg.SDR.SampleRate, cfg.SDR.BufferSize), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown device %q", cfg.SDR.Device)
	}
}
