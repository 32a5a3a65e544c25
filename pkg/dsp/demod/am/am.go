package am

import (
	"math"

	"github.com/racerxdl/segdsp/dsp"

	"github.com/airbandrx/airband/pkg/dsp/agc/rmsagc"
	"github.com/airbandrx/airband/pkg/dsp/fir"
	"github.com/airbandrx/airband/pkg/radio"
)

const (
	// Half of a 25 kHz aviation voice channel, with some margin for the
	// 8.33 kHz raster.
	channelCutoff = 10e3

	transitionWidth = 10e3

	agcAlpha = 0.001
	agcLevel = 0.5

	resamplerTaps = 127
)

// ffWorker is the float-in/float-out block contract shared by the segdsp
// filters and the local AGC.
type ffWorker interface {
	WorkBuffer([]float32, []float32) int
	PredictOutputSize(int) int
}

// Demodulator converts complex baseband blocks into audio-rate envelope
// audio. It is not safe for concurrent use; the filter delay lines are
// owned by the demodulator and carry over between blocks.
type Demodulator struct {
	sampleRate int
	audioRate  int

	lpf       ffWorker
	resampler ffWorker
	agc       ffWorker

	magBuf  []float32
	filtBuf []float32
	resBuf  []float32
}

// New builds an envelope demodulator for the given input and output rates.
func New(sampleRate, audioRate int) *Demodulator {
	taps := fir.MakeLowPass(1.0, float64(sampleRate), channelCutoff, transitionWidth, fir.Hamming)

	return &Demodulator{
		sampleRate: sampleRate,
		audioRate:  audioRate,
		lpf:        dsp.MakeFloatFirFilter(taps),
		resampler:  dsp.MakeFloatResampler(resamplerTaps, float32(audioRate)/float32(sampleRate)),
		agc:        rmsagc.New(agcAlpha, agcLevel),
	}
}

// Process demodulates one block. Malformed input (empty, NaN or Inf
// samples) yields a silent frame at the RSSI floor; Process never fails,
// it sits on the real-time path.
func (d *Demodulator) Process(block *radio.SampleBlock) *radio.AudioFrame {
	if block == nil || len(block.Data) == 0 || !finite(block.Data) {
		return d.silentFrame(block)
	}

	n := len(block.Data)
	d.magBuf = sized(d.magBuf, n)
	for i, s := range block.Data {
		re := float64(real(s))
		im := float64(imag(s))
		d.magBuf[i] = float32(math.Sqrt(re*re + im*im))
	}

	// Channel filter on the envelope; RSSI comes from the filtered signal
	// so out-of-band noise does not inflate it.
	d.filtBuf = sized(d.filtBuf, d.lpf.PredictOutputSize(n)*2)
	filtered := d.filtBuf[:d.lpf.WorkBuffer(d.magBuf, d.filtBuf)]

	mean := float64(0)
	for _, v := range filtered {
		mean += float64(v)
	}
	mean /= float64(len(filtered))

	rssi := radio.RSSIFloorDB
	if mean > 0 {
		rssi = 20 * math.Log10(mean)
		if rssi < radio.RSSIFloorDB {
			rssi = radio.RSSIFloorDB
		}
	}

	// The carrier shows up as a DC term after envelope detection.
	for i := range filtered {
		filtered[i] -= float32(mean)
	}

	d.resBuf = sized(d.resBuf, d.resampler.PredictOutputSize(len(filtered))*2)
	audio := d.resBuf[:d.resampler.WorkBuffer(filtered, d.resBuf)]

	out := make([]float32, len(audio))
	d.agc.WorkBuffer(audio, out)

	return &radio.AudioFrame{
		Data:       out,
		SampleRate: d.audioRate,
		RSSIdB:     rssi,
	}
}

// AudioRate returns the output sample rate.
func (d *Demodulator) AudioRate() int {
	return d.audioRate
}

func (d *Demodulator) silentFrame(block *radio.SampleBlock) *radio.AudioFrame {
	n := 0
	if block != nil {
		n = len(block.Data) * d.audioRate / d.sampleRate
	}
	return &radio.AudioFrame{
		Data:       make([]float32, n),
		SampleRate: d.audioRate,
		RSSIdB:     radio.RSSIFloorDB,
	}
}

func finite(data []complex64) bool {
	for _, s := range data {
		re := float64(real(s))
		im := float64(imag(s))
		if math.IsNaN(re) || math.IsNaN(im) || math.IsInf(re, 0) || math.IsInf(im, 0) {
			return false
		}
	}
	return true
}

func sized(buf []float32, n int) []float32 {
	if cap(buf) < n {
		return make([]float32, n)
	}
	return buf[:n]
}
