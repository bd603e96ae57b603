package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/kcjengr/hazzy/internal/xdgpath"
)

// Client handles IPC communication with a running session
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for socketPath. An empty path uses the
// per-user runtime directory.
func NewClient(socketPath string) *Client {
	if socketPath == "" {
		p, err := xdgpath.SocketPath()
		if err == nil {
			socketPath = p
		}
		// Keep constructor non-failing; sendRequest surfaces connection errors.
	}

	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session: %w (is 'hazzy run' running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("session error: %s", resp.Error)
	}

	return &resp, nil
}

// call sends command with an optional payload and decodes the response data
// into out when out is non-nil.
func (c *Client) call(command CommandType, payload any, out any) error {
	req := &Request{Command: command}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", command, err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", command, err)
	}
	return nil
}

// Status retrieves session status
func (c *Client) Status() (*StatusData, error) {
	var data StatusData
	if err := c.call(CommandStatus, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Reload asks the session to reload the layout file. It fails when the
// session has unsaved changes.
func (c *Client) Reload() (*ReloadData, error) {
	var data ReloadData
	if err := c.call(CommandReload, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Save asks the session to write the layout file.
func (c *Client) Save(onlyIfDirty bool) (bool, error) {
	var data SaveData
	if err := c.call(CommandSave, SavePayload{OnlyIfDirty: onlyIfDirty}, &data); err != nil {
		return false, err
	}
	return data.Saved, nil
}

// PublishPositions feeds axis positions to the session's widgets.
func (c *Client) PublishPositions(p PositionsPayload) error {
	return c.call(CommandPositions, p, nil)
}

// Readouts returns what every DRO widget currently shows.
func (c *Client) Readouts() ([]Readout, error) {
	var data ReadoutsData
	if err := c.call(CommandReadouts, nil, &data); err != nil {
		return nil, err
	}
	return data.Readouts, nil
}

// Ping checks if a session is responding
func (c *Client) Ping() error {
	_, err := c.Status()
	return err
}
