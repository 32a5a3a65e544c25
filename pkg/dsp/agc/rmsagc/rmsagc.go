package rmsagc

import (
	"math"
)

// Normalization gain is capped so quiet noise between transmissions is not
// boosted into the audible range.
const maxBoost = 10.0

// RMSAGC is a root-mean-squared automatic gain controller. The running
// average survives across buffers so gain tracks the signal, not the block.
type RMSAGC struct {
	alpha   float64
	beta    float64
	level   float64
	average float64
}

// New returns a controller that converges the output RMS towards level.
// alpha sets how quickly the running average follows the input power.
func New(alpha, level float64) *RMSAGC {
	return &RMSAGC{
		alpha:   alpha,
		beta:    1 - alpha,
		average: 1.0,
		level:   level,
	}
}

func (r *RMSAGC) PredictOutputSize(inputSize int) int {
	return inputSize
}

func (r *RMSAGC) WorkBuffer(input, output []float32) int {
	for i := 0; i < len(input); i++ {
		cur := float64(input[i])
		r.average = r.beta*r.average + r.alpha*cur*cur

		gain := r.level
		if r.average > 0 {
			gain /= math.Sqrt(r.average)
		}
		if gain > maxBoost {
			gain = maxBoost
		}

		out := gain * cur
		if out > 1.0 {
			out = 1.0
		} else if out < -1.0 {
			out = -1.0
		}
		output[i] = float32(out)
	}

	return len(input)
}

func (r *RMSAGC) Work(data []float32) []float32 {
	ret := make([]float32, len(data))
	r.WorkBuffer(data, ret)
	return ret
}
