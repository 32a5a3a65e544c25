package airband

import (
	"context"
	"fmt"
	"time"

	"github.com/influxdata/influxdb-client-go/api"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/airbandrx/airband/pkg/airband/activity"
	"github.com/airbandrx/airband/pkg/airband/bus"
	"github.com/airbandrx/airband/pkg/airband/config"
	"github.com/airbandrx/airband/pkg/airband/controls"
	"github.com/airbandrx/airband/pkg/airband/device"
	"github.com/airbandrx/airband/pkg/airband/display"
	"github.com/airbandrx/airband/pkg/airband/memory"
	"github.com/airbandrx/airband/pkg/airband/output"
	"github.com/airbandrx/airband/pkg/airband/recording"
	"github.com/airbandrx/airband/pkg/airband/squelch"
	"github.com/airbandrx/airband/pkg/dsp/demod/am"
	"github.com/airbandrx/airband/pkg/radio"
	"github.com/airbandrx/airband/pkg/util"
)

const (
	stopTimeout  = 2 * time.Second
	openRetries  = 3
	retryBackoff = 500 * time.Millisecond
)

// Receiver owns the whole receive chain for one channel: tuner, AM
// demodulation, squelch, recording, front-panel controls, and display.
// Three loops run concurrently and share state only through the bus.
type Receiver struct {
	source device.SampleSource
	cfg    config.Config

	logger   zerolog.Logger
	metrics  api.WriteAPI
	sink     output.Sink
	renderer display.Renderer
	analog   controls.AnalogInput
	buttons  controls.DiscreteIO

	bus       *bus.Bus
	demod     *am.Demodulator
	gate      *squelch.Engine
	recorder  *recording.Manager
	activity  *activity.Logger
	memories  *memory.Manager
	viewHints chan string

	// preRoll holds Opening-state frames until the gate confirms; owned
	// by the signal loop.
	preRoll []*radio.AudioFrame

	cancel context.CancelFunc
	done   chan struct{}
}

func New(source device.SampleSource, cfg config.Config, opts ...Option) (*Receiver, error) {
	r := &Receiver{
		source:    source,
		cfg:       cfg,
		logger:    log.Logger,
		metrics:   &util.MockWriteAPI{}, // overwritten with option
		sink:      output.Discard{},
		renderer:  display.Nop{},
		viewHints: make(chan string, 8),
		done:      make(chan struct{}),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	if cfg.SDR.SampleRate <= 0 || cfg.Audio.SampleRate <= 0 {
		return nil, fmt.Errorf("must specify SDR and audio sample rates")
	}
	if cfg.SDR.SampleRate > source.MaxSampleRate() {
		return nil, fmt.Errorf("sample rate %d > device max %d", cfg.SDR.SampleRate, source.MaxSampleRate())
	}
	if cfg.SDR.BufferSize <= 0 {
		return nil, fmt.Errorf("buffer size must be positive")
	}
	if cfg.SDR.DefaultFrequency < bus.FreqMinHz || cfg.SDR.DefaultFrequency > bus.FreqMaxHz {
		return nil, fmt.Errorf("default frequency %d outside receivable band", cfg.SDR.DefaultFrequency)
	}

	r.bus = bus.New(bus.State{
		FrequencyHz:        cfg.SDR.DefaultFrequency,
		GainDB:             cfg.SDR.DefaultGain,
		VolumePct:          cfg.Audio.DefaultVolume,
		SquelchThresholdDB: cfg.Squelch.ThresholdDB,
		VOXDelay:           cfg.Squelch.VOXDelay(),
		VOXEnabled:         cfg.Squelch.VOXEnabled,
	})
	r.demod = am.New(cfg.SDR.SampleRate, cfg.Audio.SampleRate)
	r.gate = squelch.New(cfg.Squelch.ThresholdDB, cfg.Squelch.VOXDelay(), cfg.Squelch.DebounceBlocks)
	r.recorder = recording.NewManager(cfg.Audio.RecordingsDir, cfg.Audio.SampleRate, r.logger)
	r.activity = activity.NewLogger(cfg.Activity.Dir, r.logger)
	r.memories = memory.NewManager(cfg.Memories, r.logger)

	return r, nil
}

// Accessors for wiring outer surfaces like the status API.
func (r *Receiver) Bus() *bus.Bus                  { return r.bus }
func (r *Receiver) Recordings() *recording.Manager { return r.recorder }
func (r *Receiver) Activity() *activity.Logger     { return r.activity }
func (r *Receiver) Memories() *memory.Manager      { return r.memories }

// Start runs the receive chain until the context is cancelled, Stop is
// called, or the device fails past its retry budget.
func (r *Receiver) Start(ctx context.Context) error {
	ctx, r.cancel = context.WithCancel(ctx)
	defer close(r.done)

	if err := r.openSource(ctx); err != nil {
		return err
	}

	r.logger.Info().
		Str("frequency", util.MHzString(r.cfg.SDR.DefaultFrequency)).
		Int("sample_rate", r.cfg.SDR.SampleRate).
		Int("audio_rate", r.cfg.Audio.SampleRate).
		Msg("receiver starting")

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return r.signalLoop(ctx) })
	eg.Go(func() error { return r.displayLoop(ctx) })
	if r.analog != nil || r.buttons != nil {
		eg.Go(func() error { return r.controlLoop(ctx) })
	}

	err := eg.Wait()

	if serr := r.recorder.Shutdown(); serr != nil {
		r.logger.Warn().Err(serr).Msg("finalizing recording on shutdown")
	}
	r.activity.End(time.Now())
	if cerr := r.source.Close(); cerr != nil {
		r.logger.Warn().Err(cerr).Msg("closing sample source")
	}
	if cerr := r.sink.Close(); cerr != nil {
		r.logger.Warn().Err(cerr).Msg("closing audio sink")
	}
	r.renderer.Close()

	if err == context.Canceled {
		return nil
	}
	return err
}

// Stop cancels the loops and waits up to stopTimeout for them to unwind.
func (r *Receiver) Stop() error {
	if r.cancel == nil {
		return nil
	}
	r.cancel()
	select {
	case <-r.done:
		return nil
	case <-time.After(stopTimeout):
		return fmt.Errorf("receiver did not stop within %s", stopTimeout)
	}
}

// openSource opens the device, applying the initial tune. Used both at
// startup and when reopening after a read failure.
func (r *Receiver) openSource(ctx context.Context) error {
	var err error
	for attempt := 1; attempt <= openRetries; attempt++ {
		if err = ctx.Err(); err != nil {
			return err
		}
		if err = r.source.Open(); err == nil {
			st := r.bus.Snapshot()
			if terr := r.source.SetCenterFreq(st.FrequencyHz); terr != nil {
				return terr
			}
			if terr := r.source.SetGain(st.GainDB); terr != nil {
				return terr
			}
			return nil
		}
		r.logger.Warn().Err(err).Int("attempt", attempt).Msg("opening sample source")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryBackoff * time.Duration(attempt)):
		}
	}
	r.hintView(display.ViewError)
	return fmt.Errorf("opening sample source after %d attempts: %w", openRetries, err)
}

// hintView queues a view change for the display loop, dropping the hint
// if the queue is full.
func (r *Receiver) hintView(view string) {
	select {
	case r.viewHints <- view:
	default:
	}
}
