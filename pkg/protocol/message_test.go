package protocol

import (
	"testing"
)

func TestNewMessage(t *testing.T) {
	tests := []struct {
		name    string
		msgType MessageType
		data    interface{}
		wantErr bool
	}{
		{
			name:    "status message",
			msgType: TypeStatus,
			data:    StatusData{CurrentAngle: 45.2, TargetAngle: 45, Moving: true},
			wantErr: false,
		},
		{
			name:    "vision message",
			msgType: TypeVision,
			data:    VisionData{AngleError: 2.5, Distance: 12, Detected: true, AgeMs: 40},
			wantErr: false,
		},
		{
			name:    "nil data",
			msgType: TypePing,
			data:    nil,
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NewMessage(tt.msgType, tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewMessage() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if msg == nil && !tt.wantErr {
				t.Error("NewMessage() returned nil message")
				return
			}
			if msg.Type != tt.msgType {
				t.Errorf("NewMessage() type = %v, want %v", msg.Type, tt.msgType)
			}
			if msg.Timestamp == 0 {
				t.Error("NewMessage() timestamp should be set")
			}
		})
	}
}

func TestStatusMessageRoundTrip(t *testing.T) {
	original := StatusData{
		CurrentAngle: 12.3,
		TargetAngle:  45,
		Rate:         -3.2,
		GyroBias:     0.07,
		Moving:       true,
		Docking:      false,
		System:       1,
		Vision:       &VisionData{AngleError: 1.5, Distance: 8, Detected: true, AgeMs: 120},
	}

	msg, err := NewStatusMessage(original)
	if err != nil {
		t.Fatalf("NewStatusMessage() error = %v", err)
	}

	raw, err := msg.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}

	parsed, err := ParseMessage(raw)
	if err != nil {
		t.Fatalf("ParseMessage() error = %v", err)
	}
	if parsed.Type != TypeStatus {
		t.Errorf("type = %v, want %v", parsed.Type, TypeStatus)
	}

	got, err := parsed.GetStatusData()
	if err != nil {
		t.Fatalf("GetStatusData() error = %v", err)
	}
	if got.CurrentAngle != original.CurrentAngle || got.System != original.System {
		t.Errorf("status data = %+v, want %+v", got, original)
	}
	if got.Vision == nil || got.Vision.AngleError != 1.5 {
		t.Errorf("nested vision data lost: %+v", got.Vision)
	}
}

func TestResultMessageRoundTrip(t *testing.T) {
	original := ResultData{
		ID:         "8e6a2c1f",
		Command:    "move",
		Reached:    false,
		FinalAngle: 31.7,
		Aborted:    true,
		Reason:     "cancelled",
	}

	msg, err := NewResultMessage(original)
	if err != nil {
		t.Fatalf("NewResultMessage() error = %v", err)
	}
	raw, _ := msg.Bytes()

	parsed, err := ParseMessage(raw)
	if err != nil {
		t.Fatalf("ParseMessage() error = %v", err)
	}
	got, err := parsed.GetResultData()
	if err != nil {
		t.Fatalf("GetResultData() error = %v", err)
	}
	if *got != original {
		t.Errorf("result data = %+v, want %+v", got, original)
	}
}

func TestNewPongMessage_ComputesLatency(t *testing.T) {
	msg, err := NewPongMessage("abc", 1000, 1042)
	if err != nil {
		t.Fatalf("NewPongMessage() error = %v", err)
	}

	var data PongData
	if err := msg.ParseData(&data); err != nil {
		t.Fatalf("ParseData() error = %v", err)
	}
	if data.LatencyMs != 42 {
		t.Errorf("latency = %d, want 42", data.LatencyMs)
	}
	if data.ID != "abc" {
		t.Errorf("id = %q, want abc", data.ID)
	}
}

func TestParseMessage_InvalidJSON(t *testing.T) {
	if _, err := ParseMessage([]byte("{not json")); err == nil {
		t.Error("ParseMessage() should fail on invalid JSON")
	}
}

func TestParseData_NilDataIsNoOp(t *testing.T) {
	msg := &Message{Type: TypePing}
	var data PingData
	if err := msg.ParseData(&data); err != nil {
		t.Errorf("ParseData() on nil data: %v", err)
	}
}
