package proto

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/vovakirdan/pulse-server/internal/presence"
)

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	ProtocolVersion = 1

	TypeHello       = "hello"
	TypeJoined      = "joined"
	TypeStateUpdate = "stateUpdate"
	TypeLeft        = "left"
	TypeError       = "error"
)

// StateUpdateIn is the client's own intensity report. The value is untrusted
// and kept raw until ParseIntensity validates it.
type StateUpdateIn struct {
	Intensity json.RawMessage `json:"intensity"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Color mirrors presence.Color on the wire.
type Color struct {
	Hue        float64 `json:"hue"`
	Saturation float64 `json:"saturation"`
	Lightness  float64 `json:"lightness"`
	Hex        string  `json:"hex"`
}

// Position mirrors presence.Position on the wire.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Record is the public view of a presence record. Connection ids never leave the server.
type Record struct {
	UserID    string   `json:"userId"`
	Color     Color    `json:"color"`
	Position  Position `json:"position"`
	Intensity float64  `json:"intensity"`
}

// Hello is sent once to a newly connected client.
type Hello struct {
	Protocol int      `json:"protocol"`
	Self     Record   `json:"self"`
	Peers    []Record `json:"peers"`
}

// StateUpdateOut carries another participant's validated intensity.
type StateUpdateOut struct {
	UserID    string  `json:"userId"`
	Intensity float64 `json:"intensity"`
}

// Left announces that a participant disconnected.
type Left struct {
	UserID string `json:"userId"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

// Snapshot is the read-only presence listing served over HTTP.
type Snapshot struct {
	Count   int      `json:"count"`
	Records []Record `json:"records"`
}

// RecordFrom converts a registry record to its wire form.
func RecordFrom(r presence.Record) Record {
	return Record{
		UserID: r.UserID,
		Color: Color{
			Hue:        r.Color.Hue,
			Saturation: r.Color.Saturation,
			Lightness:  r.Color.Lightness,
			Hex:        r.Color.Hex,
		},
		Position:  Position{X: r.Position.X, Y: r.Position.Y},
		Intensity: presence.Clamp(r.Intensity),
	}
}

// RecordsFrom converts a slice of registry records.
func RecordsFrom(records []presence.Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		out = append(out, RecordFrom(r))
	}
	return out
}

// ParseIntensity turns an untrusted JSON value into a value in [0,1].
// Anything other than a finite JSON number becomes 0.
func ParseIntensity(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	// JSON numbers start with a digit or minus sign; strings, bools, null,
	// objects and arrays are rejected here.
	if c := raw[0]; c != '-' && (c < '0' || c > '9') {
		return 0
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(num.String(), 64)
	if err != nil {
		return 0
	}
	return presence.Clamp(v)
}
