// Package ipc is the control socket of a hosted layout session. Requests
// and responses are single JSON lines over a unix socket.
package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandStatus    CommandType = "STATUS"
	CommandReload    CommandType = "RELOAD"
	CommandSave      CommandType = "SAVE"
	CommandPositions CommandType = "PUBLISH_POSITIONS"
	CommandReadouts  CommandType = "READOUTS"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by STATUS
type StatusData struct {
	Path          string `json:"path"`
	Dirty         bool   `json:"dirty"`
	Screens       int    `json:"screens"`
	Widgets       int    `json:"widgets"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// ReloadData represents the data returned by RELOAD
type ReloadData struct {
	Warnings []string `json:"warnings,omitempty"`
}

// SaveData represents the data returned by SAVE
type SaveData struct {
	Saved bool `json:"saved"`
}

// SavePayload represents the payload for SAVE
type SavePayload struct {
	OnlyIfDirty bool `json:"only_if_dirty,omitempty"`
}

// PositionsPayload represents the payload for PUBLISH_POSITIONS. Values are
// indexed in "xyzabcuvw" order; missing trailing axes are zero.
type PositionsPayload struct {
	Abs []float64 `json:"abs,omitempty"`
	Rel []float64 `json:"rel,omitempty"`
	DTG []float64 `json:"dtg,omitempty"`
}

// Readout is the text shown by one DRO widget.
type Readout struct {
	ID      string            `json:"id"`
	Screen  string            `json:"screen"`
	Package string            `json:"package"`
	Type    string            `json:"type"`
	Axes    string            `json:"axes"`
	Text    map[string]string `json:"text"`
}

// ReadoutsData represents the data returned by READOUTS
type ReadoutsData struct {
	Readouts []Readout `json:"readouts"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data any) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
