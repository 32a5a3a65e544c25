package radio

// RSSIFloorDB is reported when a block carries no measurable signal.
const RSSIFloorDB = -100.0

// SampleBlock is a fixed-size run of complex baseband samples tagged with
// the tuner settings that were active when it was captured. Blocks are not
// modified after construction.
type SampleBlock struct {
	Data       []complex64
	CenterFreq int
	GainDB     int
	SampleRate int
}

// AudioFrame is the demodulated counterpart of a SampleBlock: audio-rate
// float32 samples plus the signal strength estimate for the source block.
type AudioFrame struct {
	Data       []float32
	SampleRate int
	RSSIdB     float64
}

// u8Lut maps RTL-SDR offset-binary bytes to the -1..1 float range.
var u8Lut [256]float32

func init() {
	for i := 0; i < 256; i++ {
		u8Lut[i] = (float32(i) - 127.5) / 127.5
	}
}

// BlockFromU8 converts interleaved unsigned 8-bit IQ (the RTL-SDR wire
// format) into a SampleBlock. len(raw) must be even; a trailing odd byte
// is dropped.
func BlockFromU8(raw []byte, centerFreq, gainDB, sampleRate int) *SampleBlock {
	n := len(raw) / 2
	data := make([]complex64, n)
	for i := 0; i < n; i++ {
		data[i] = complex(u8Lut[raw[2*i]], u8Lut[raw[2*i+1]])
	}
	return &SampleBlock{
		Data:       data,
		CenterFreq: centerFreq,
		GainDB:     gainDB,
		SampleRate: sampleRate,
	}
}

// BlockFromI8 converts interleaved signed 8-bit IQ (the HackRF wire format).
func BlockFromI8(raw []byte, centerFreq, gainDB, sampleRate int) *SampleBlock {
	n := len(raw) / 2
	data := make([]complex64, n)
	for i := 0; i < n; i++ {
		data[i] = complex(float32(int8(raw[2*i]))/128.0, float32(int8(raw[2*i+1]))/128.0)
	}
	return &SampleBlock{
		Data:       data,
		CenterFreq: centerFreq,
		GainDB:     gainDB,
		SampleRate: sampleRate,
	}
}
