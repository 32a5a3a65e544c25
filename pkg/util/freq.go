package util

import "fmt"

// MHzString formats a frequency in Hz for logs and the display.
func MHzString(hz int) string {
	return fmt.Sprintf("%0.4f MHz", float64(hz)/1e6)
}

// ScaleADC maps a raw 10-bit ADC reading onto [min, max], used to turn
// potentiometer positions into receiver parameters.
func ScaleADC(raw, min, max int) int {
	if raw < 0 {
		raw = 0
	} else if raw > 1023 {
		raw = 1023
	}
	return min + raw*(max-min)/1023
}
