package output

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/hraban/opus"
	influxdb2 "github.com/influxdata/influxdb-client-go"
	"github.com/influxdata/influxdb-client-go/api"
	"github.com/rs/zerolog"

	"github.com/airbandrx/airband/pkg/radio"
)

const frameDuration = 20 * time.Millisecond

// OpusUDPStream encodes audio into Opus frames and sends them to one or
// more UDP destinations. Each datagram carries a little-endian uint32
// sequence number and uint16 payload length ahead of the Opus payload,
// so receivers can detect loss without a session protocol.
type OpusUDPStream struct {
	sampleRate int
	destAddrs  []*net.UDPAddr
	logger     zerolog.Logger
	metrics    api.WriteAPI

	mu      sync.Mutex
	conn    *net.UDPConn
	encoder *opus.Encoder
	inBuf   []float32
	encBuf  []byte
	seq     uint32
	closed  bool
}

// NewOpusUDPStream resolves each "host:port" destination and opens the
// send socket.
func NewOpusUDPStream(dests []string, sampleRate int, metrics api.WriteAPI, logger zerolog.Logger) (*OpusUDPStream, error) {
	enc, err := opus.NewEncoder(sampleRate, 1, opus.AppVoIP)
	if err != nil {
		return nil, fmt.Errorf("creating opus encoder: %w", err)
	}
	if err := enc.SetPacketLossPerc(20); err != nil {
		return nil, err
	}
	enc.SetBitrateToAuto()

	addrs := make([]*net.UDPAddr, 0, len(dests))
	for _, dest := range dests {
		addr, err := net.ResolveUDPAddr("udp", dest)
		if err != nil {
			return nil, fmt.Errorf("resolving stream destination %q: %w", dest, err)
		}
		addrs = append(addrs, addr)
	}

	conn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return nil, err
	}

	log := logger.With().Str("component", "stream").Logger()
	for _, addr := range addrs {
		log.Info().Str("dest", addr.String()).Msg("stream output starting")
	}

	return &OpusUDPStream{
		sampleRate: sampleRate,
		destAddrs:  addrs,
		logger:     log,
		metrics:    metrics,
		conn:       conn,
		encoder:    enc,
		encBuf:     make([]byte, 4096),
	}, nil
}

func (o *OpusUDPStream) Write(frame *radio.AudioFrame) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return fmt.Errorf("stream closed")
	}

	o.inBuf = append(o.inBuf, frame.Data...)
	samplesPerFrame := o.sampleRate * int(frameDuration/time.Millisecond) / 1000
	for len(o.inBuf) >= samplesPerFrame {
		n, err := o.encoder.EncodeFloat32(o.inBuf[:samplesPerFrame], o.encBuf)
		if err != nil {
			return fmt.Errorf("encoding opus frame: %w", err)
		}
		o.inBuf = o.inBuf[samplesPerFrame:]
		o.send(o.encBuf[:n])
	}
	return nil
}

func (o *OpusUDPStream) send(payload []byte) {
	var msg bytes.Buffer
	binary.Write(&msg, binary.LittleEndian, o.seq)
	binary.Write(&msg, binary.LittleEndian, uint16(len(payload)))
	msg.Write(payload)
	o.seq++

	success := true
	var bytesWritten int
	for _, addr := range o.destAddrs {
		n, err := o.conn.WriteToUDP(msg.Bytes(), addr)
		if err != nil {
			o.logger.Warn().Err(err).Str("dest", addr.String()).Msg("sending opus frame")
			success = false
			continue
		}
		bytesWritten = n
	}

	if o.metrics != nil {
		sent, dropped := 1, 0
		if !success {
			sent, dropped = 0, 1
		}
		o.metrics.WritePoint(influxdb2.NewPoint("stream.sent_frame",
			map[string]string{},
			map[string]interface{}{
				"bytes_written":  bytesWritten,
				"encoded_length": len(payload),
				"sent":           sent,
				"dropped":        dropped,
			}, time.Now()))
	}
}

func (o *OpusUDPStream) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil
	}
	o.closed = true
	return o.conn.Close()
}
