package airband

import (
	"github.com/influxdata/influxdb-client-go/api"
	"github.com/rs/zerolog"

	"github.com/airbandrx/airband/pkg/airband/controls"
	"github.com/airbandrx/airband/pkg/airband/display"
	"github.com/airbandrx/airband/pkg/airband/output"
)

type Option func(r *Receiver) error

func WithLogger(logger zerolog.Logger) Option {
	return func(r *Receiver) error {
		r.logger = logger
		return nil
	}
}

func WithMetrics(writeAPI api.WriteAPI) Option {
	return func(r *Receiver) error {
		r.metrics = writeAPI
		return nil
	}
}

func WithSink(sink output.Sink) Option {
	return func(r *Receiver) error {
		r.sink = sink
		return nil
	}
}

func WithRenderer(renderer display.Renderer) Option {
	return func(r *Receiver) error {
		r.renderer = renderer
		return nil
	}
}

// WithFrontPanel attaches physical controls: potentiometers through an
// ADC and the record button with its LED.
func WithFrontPanel(analog controls.AnalogInput, buttons controls.DiscreteIO) Option {
	return func(r *Receiver) error {
		r.analog = analog
		r.buttons = buttons
		return nil
	}
}
