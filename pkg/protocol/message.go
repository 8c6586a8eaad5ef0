// Package protocol defines the telemetry websocket message types exchanged
// between the AOCS daemon and ground-station clients.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of telemetry message
type MessageType string

const (
	// Daemon → client messages
	TypeStatus MessageType = "status" // Periodic loop state
	TypeResult MessageType = "result" // Terminal outcome of an accepted command
	TypeVision MessageType = "vision" // Latest vision observation
	TypeHost   MessageType = "host"   // Flight-computer host status

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all telemetry messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// =============================================================================
// Daemon → Client Message Types
// =============================================================================

// StatusData mirrors the control-loop status snapshot
type StatusData struct {
	CurrentAngle float64 `json:"current_angle"`
	TargetAngle  float64 `json:"target_angle"`
	Rate         float64 `json:"rate"` // filtered deg/s
	GyroBias     float64 `json:"gyro_bias"`
	Moving       bool    `json:"moving"`
	Docking      bool    `json:"docking"`
	System       int     `json:"status"` // -1 failed, 0 ready, 1 initialised

	Vision *VisionData `json:"vision,omitempty"`
}

// VisionData carries a vision observation with its age at send time
type VisionData struct {
	AngleError float64 `json:"angle_error"`
	Distance   float64 `json:"distance"`
	Detected   bool    `json:"detected"`
	AgeMs      int64   `json:"age_ms"`
}

// ResultData reports the terminal outcome of an accepted command
type ResultData struct {
	ID         string  `json:"id"` // uuid assigned at accept time
	Command    string  `json:"command"`
	Reached    bool    `json:"reached_target"`
	Success    bool    `json:"success"`
	FinalAngle float64 `json:"final_angle"`
	Aborted    bool    `json:"aborted,omitempty"`
	Reason     string  `json:"reason,omitempty"`
}

// HostData is the flight-computer host status
type HostData struct {
	CPUTempC   float64 `json:"cpu_temp_c"`
	Load1      float64 `json:"load_1m"`
	MemTotalKB uint64  `json:"mem_total_kb"`
	MemFreeKB  uint64  `json:"mem_free_kb"`
	DiskTotal  uint64  `json:"disk_total_bytes"`
	DiskFree   uint64  `json:"disk_free_bytes"`
}

// =============================================================================
// Bidirectional Message Types
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response information
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
