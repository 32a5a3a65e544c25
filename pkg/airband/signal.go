package airband

import (
	"context"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go"

	"github.com/airbandrx/airband/pkg/airband/recording"
	"github.com/airbandrx/airband/pkg/airband/squelch"
	"github.com/airbandrx/airband/pkg/radio"
	"github.com/airbandrx/airband/pkg/util"
)

// signalLoop is the hot path: read a block, retune if the bus changed,
// demodulate, gate, record, and emit audio. It is the only goroutine that
// touches the device after startup and the only writer of telemetry.
func (r *Receiver) signalLoop(ctx context.Context) error {
	lastFreq := 0
	lastGain := -1

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		st := r.bus.Snapshot()
		if st.FrequencyHz != lastFreq {
			if err := r.source.SetCenterFreq(st.FrequencyHz); err != nil {
				r.logger.Warn().Err(err).Msg("retuning")
			} else {
				lastFreq = st.FrequencyHz
			}
		}
		if st.GainDB != lastGain {
			if err := r.source.SetGain(st.GainDB); err != nil {
				r.logger.Warn().Err(err).Msg("setting gain")
			} else {
				lastGain = st.GainDB
			}
		}

		block, err := r.source.ReadBlock(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.logger.Warn().Err(err).Msg("sample read failed, reopening device")
			r.source.Close()
			if oerr := r.openSource(ctx); oerr != nil {
				return oerr
			}
			lastFreq, lastGain = 0, -1
			continue
		}

		frame := r.demod.Process(block)
		now := time.Now()

		r.gate.SetThreshold(st.SquelchThresholdDB)
		r.gate.SetVOXDelay(st.VOXDelay)
		decision := r.gate.Update(frame.RSSIdB, now)

		r.trackActivity(decision, st.FrequencyHz, frame.RSSIdB, now)
		r.updateRecording(decision, frame, st.VOXEnabled)

		_, recActive := r.recorder.Active()
		r.bus.SetTelemetry(frame.RSSIdB, decision.State != squelch.Closed, recActive)

		r.emitAudio(frame, decision, st.VolumePct)
		r.writeBlockMetrics(frame, decision, st.FrequencyHz)
	}
}

// preRollMax bounds the held-back Opening frames; the debounce window is
// normally one or two blocks.
const preRollMax = 16

// updateRecording turns gate decisions into session changes and audio
// writes. Frames seen during Opening are held back and flushed into the
// file once the gate confirms the signal, so a VOX session spans the
// pre-roll debounce through the trailing delay; a rejected spike drops
// them. With a session already live (manual recording), frames are
// written straight through.
func (r *Receiver) updateRecording(decision squelch.Decision, frame *radio.AudioFrame, voxEnabled bool) {
	if decision.State == squelch.Opening {
		if _, active := r.recorder.Active(); active {
			if err := r.recorder.Append(frame); err != nil {
				r.logger.Warn().Err(err).Msg("recording audio")
			}
			return
		}
		r.preRoll = append(r.preRoll, frame)
		if len(r.preRoll) > preRollMax {
			r.preRoll = r.preRoll[1:]
		}
		return
	}

	if decision.StartVOX && voxEnabled {
		_, wasActive := r.recorder.Active()
		if err := r.recorder.Start(recording.TriggerVOX); err != nil {
			r.logger.Warn().Err(err).Msg("starting VOX recording")
		} else if !wasActive {
			for _, held := range r.preRoll {
				if err := r.recorder.Append(held); err != nil {
					r.logger.Warn().Err(err).Msg("recording pre-roll audio")
					break
				}
			}
		}
	}
	r.preRoll = r.preRoll[:0]

	if decision.StopVOX {
		if err := r.recorder.StopVOX(); err != nil {
			r.logger.Warn().Err(err).Msg("stopping VOX recording")
		}
	}
	if err := r.recorder.Append(frame); err != nil {
		r.logger.Warn().Err(err).Msg("recording audio")
	}
}

// trackActivity converts squelch transitions into transmission log
// events.
func (r *Receiver) trackActivity(decision squelch.Decision, freqHz int, rssiDB float64, now time.Time) {
	if decision.Transitioned {
		switch decision.State {
		case squelch.Open:
			r.activity.Start(freqHz, rssiDB, now)
		case squelch.Closed:
			r.activity.End(now)
		}
	}
	if decision.State == squelch.Open {
		r.activity.Update(rssiDB)
	}
}

// emitAudio applies the gate and volume and hands the frame to the sink.
// Closed blocks are sent as silence so the sink's clock keeps running.
// The frame gets its own backing array: sinks may queue it and read it
// from another goroutine after this loop has moved on.
func (r *Receiver) emitAudio(frame *radio.AudioFrame, decision squelch.Decision, volumePct int) {
	buf := make([]float32, len(frame.Data))

	gain := float32(volumePct) / 100.0
	if !decision.AudioOpen {
		gain = 0
	}
	for i, s := range frame.Data {
		buf[i] = s * gain
	}

	out := &radio.AudioFrame{Data: buf, SampleRate: frame.SampleRate, RSSIdB: frame.RSSIdB}
	if err := r.sink.Write(out); err != nil {
		r.logger.Warn().Err(err).Msg("writing audio")
	}
}

func (r *Receiver) writeBlockMetrics(frame *radio.AudioFrame, decision squelch.Decision, freqHz int) {
	boolInt := func(b bool) int {
		if b {
			return 1
		}
		return 0
	}
	r.metrics.WritePoint(influxdb2.NewPoint("receiver.block",
		map[string]string{
			"frequency": util.MHzString(freqHz),
		},
		map[string]interface{}{
			"rssi_db":      frame.RSSIdB,
			"squelch_open": boolInt(decision.AudioOpen),
			"recording":    boolInt(decision.RecordAudio),
			"samples":      len(frame.Data),
		}, time.Now()))
}
