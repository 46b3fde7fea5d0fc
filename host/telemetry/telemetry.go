package telemetry

import (
	"encoding/json"
	"fmt"
	"time"
)

// Record is one telemetry line as emitted by the controller: firmware
// uptime in milliseconds, the last temperature reading, and the two CAN
// status texts.
type Record struct {
	TS     uint32 `json:"ts"`
	I2C    int32  `json:"i2c"`
	CAN101 string `json:"can101"`
	CAN120 string `json:"can120"`
}

// Parse decodes one newline-terminated JSON telemetry line.
func Parse(line []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(line, &r); err != nil {
		return Record{}, fmt.Errorf("telemetry parse: %w", err)
	}
	return r, nil
}

// Source identifies which channel delivered a record.
type Source int

const (
	SourceUDP Source = iota
	SourceTCP
)

func (s Source) String() string {
	if s == SourceTCP {
		return "tcp"
	}
	return "udp"
}

// Stats accumulates receive-side counters for the status display.
type Stats struct {
	UDPRecords uint64
	TCPRecords uint64
	ParseErrs  uint64

	Last       Record
	LastSource Source
	LastAt     time.Time
}

// Observe folds one received record into the counters.
func (s *Stats) Observe(src Source, r Record) {
	switch src {
	case SourceTCP:
		s.TCPRecords++
	default:
		s.UDPRecords++
	}
	s.Last = r
	s.LastSource = src
	s.LastAt = time.Now()
}

// Total returns the number of successfully parsed records.
func (s *Stats) Total() uint64 {
	return s.UDPRecords + s.TCPRecords
}
