package protocol

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewStatusMessage creates a status message
func NewStatusMessage(s StatusData) (*Message, error) {
	return NewMessage(TypeStatus, s)
}

// NewResultMessage creates a command result message
func NewResultMessage(r ResultData) (*Message, error) {
	return NewMessage(TypeResult, r)
}

// NewVisionMessage creates a vision observation message
func NewVisionMessage(angleError, distance float64, detected bool, ageMs int64) (*Message, error) {
	return NewMessage(TypeVision, VisionData{
		AngleError: angleError,
		Distance:   distance,
		Detected:   detected,
		AgeMs:      ageMs,
	})
}

// NewHostMessage creates a host status message
func NewHostMessage(h HostData) (*Message, error) {
	return NewMessage(TypeHost, h)
}

// NewPingMessage creates a ping message
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{
		ID:        id,
		Timestamp: 0, // Will be set by NewMessage
	})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

// GetStatusData extracts status data from a message
func (m *Message) GetStatusData() (*StatusData, error) {
	var data StatusData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetResultData extracts result data from a message
func (m *Message) GetResultData() (*ResultData, error) {
	var data ResultData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetVisionData extracts vision data from a message
func (m *Message) GetVisionData() (*VisionData, error) {
	var data VisionData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetHostData extracts host status data from a message
func (m *Message) GetHostData() (*HostData, error) {
	var data HostData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
