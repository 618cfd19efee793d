package leiden

import (
	"encoding/json"
	"io"
	"os"
	"time"
)

// MoveEvent is one applied local move.
type MoveEvent struct {
	MoveNumber int     `json:"move"`
	Level      int     `json:"level"`
	Quality    string  `json:"quality"`
	Node       int     `json:"node"`
	FromComm   int     `json:"from_comm"`
	ToComm     int     `json:"to_comm"`
	Gain       float64 `json:"gain"`
	Value      float64 `json:"value"`
	Timestamp  int64   `json:"timestamp"`
}

// MoveTracker writes MoveEvents as JSON lines. A nil tracker is a no-op.
type MoveTracker struct {
	closer  io.Closer
	encoder *json.Encoder
	events  []MoveEvent
	keep    bool
	level   int
	moves   int
}

// NewMoveTracker creates a tracker writing to filename.
func NewMoveTracker(filename string) (*MoveTracker, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	return &MoveTracker{closer: file, encoder: json.NewEncoder(file)}, nil
}

// NewMemoryTracker creates a tracker that keeps events in memory, optionally
// also writing them to w.
func NewMemoryTracker(w io.Writer) *MoveTracker {
	mt := &MoveTracker{keep: true}
	if w != nil {
		mt.encoder = json.NewEncoder(w)
	}
	return mt
}

// SetLevel tags subsequent events with an aggregation level.
func (mt *MoveTracker) SetLevel(level int) {
	if mt != nil {
		mt.level = level
	}
}

// LogMove records one move.
func (mt *MoveTracker) LogMove(quality QualityKind, node, fromComm, toComm int, gain, value float64) {
	if mt == nil {
		return
	}
	mt.moves++
	event := MoveEvent{
		MoveNumber: mt.moves,
		Level:      mt.level,
		Quality:    quality.String(),
		Node:       node,
		FromComm:   fromComm,
		ToComm:     toComm,
		Gain:       gain,
		Value:      value,
		Timestamp:  time.Now().Unix(),
	}
	if mt.keep {
		mt.events = append(mt.events, event)
	}
	if mt.encoder != nil {
		_ = mt.encoder.Encode(event)
	}
}

// Events returns the events kept by a memory tracker.
func (mt *MoveTracker) Events() []MoveEvent {
	if mt == nil {
		return nil
	}
	return mt.events
}

// Close releases the underlying file, if any.
func (mt *MoveTracker) Close() error {
	if mt != nil && mt.closer != nil {
		return mt.closer.Close()
	}
	return nil
}
