package fir

import (
	"math"
)

type WindowFunc func(int) []float32

type WindowType int

const (
	Hamming WindowType = 0
	Hann    WindowType = 1
)

var (
	windowMaxAttenuation = map[WindowType]int{
		Hamming: 53,
		Hann:    44,
	}
	windowFuncs = map[WindowType]WindowFunc{
		Hamming: HammingWindow,
		Hann:    HannWindow,
	}
)

func HammingWindow(ntaps int) []float32 {
	ret := make([]float32, ntaps)
	M := float64(ntaps - 1)

	for i := 0; i < ntaps; i++ {
		ret[i] = float32(0.54 - 0.46*math.Cos((2.0*math.Pi*float64(i))/M))
	}

	return ret
}

func HannWindow(ntaps int) []float32 {
	ret := make([]float32, ntaps)
	M := float64(ntaps - 1)
	for i := 0; i < ntaps; i++ {
		ret[i] = float32(0.5 - 0.5*math.Cos((2*math.Pi*float64(i))/M))
	}
	return ret
}
