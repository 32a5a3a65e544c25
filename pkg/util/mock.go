package util

import "github.com/influxdata/influxdb-client-go/api/write"

// MockWriteAPI satisfies the InfluxDB WriteAPI and discards everything.
// It is the default metrics target so the receiver runs unchanged when
// no metrics backend is configured.
type MockWriteAPI struct{}

func (m *MockWriteAPI) WriteRecord(line string)       {}
func (m *MockWriteAPI) WritePoint(point *write.Point) {}
func (m *MockWriteAPI) Flush()                        {}
func (m *MockWriteAPI) Close()                        {}

// Errors returns a nil channel; no writes means no errors to drain.
func (m *MockWriteAPI) Errors() <-chan error { return nil }
