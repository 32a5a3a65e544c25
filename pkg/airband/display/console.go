package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/airbandrx/airband/pkg/airband/bus"
	"github.com/airbandrx/airband/pkg/util"
)

// Console renders the receiver state as a single status line, standing in
// for the OLED when running on a desk instead of the radio hardware.
type Console struct {
	w    io.Writer
	last string
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Render(view string, st bus.State) error {
	var line string
	switch view {
	case "volume":
		line = fmt.Sprintf("VOLUME %3d%% %s", st.VolumePct, barGraph(st.VolumePct, 100, 20))
	case "gain":
		line = fmt.Sprintf("GAIN %2d dB %s", st.GainDB, barGraph(st.GainDB, 50, 20))
	case "squelch":
		line = fmt.Sprintf("SQUELCH %5.1f dB  rssi %5.1f dB", st.SquelchThresholdDB, st.RSSIdB)
	case "vox":
		line = fmt.Sprintf("VOX delay %.1fs", st.VOXDelay.Seconds())
	case ViewError:
		line = "DEVICE ERROR - check antenna/SDR"
	default:
		gate := "closed"
		if st.SquelchOpen {
			gate = "OPEN"
		}
		rec := ""
		if st.Recording {
			rec = "  REC"
		}
		line = fmt.Sprintf("%s  rssi %5.1f dB  sq %s%s", util.MHzString(st.FrequencyHz), st.RSSIdB, gate, rec)
	}

	if line == c.last {
		return nil
	}
	c.last = line
	_, err := fmt.Fprintf(c.w, "\r%-70s", line)
	return err
}

func (c *Console) Close() error {
	_, err := fmt.Fprintln(c.w)
	return err
}

func barGraph(val, max, width int) string {
	if max <= 0 {
		return ""
	}
	n := val * width / max
	if n < 0 {
		n = 0
	} else if n > width {
		n = width
	}
	return "[" + strings.Repeat("#", n) + strings.Repeat("-", width-n) + "]"
}
