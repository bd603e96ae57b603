package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kcjengr/hazzy/internal/session"
	"github.com/kcjengr/hazzy/internal/status"
	"github.com/kcjengr/hazzy/internal/widgets"
	"github.com/kcjengr/hazzy/internal/xdgpath"
)

// ErrAlreadyRunning is returned by Start when another session answers on
// the socket.
var ErrAlreadyRunning = errors.New("a hazzy session is already running")

const maxAxes = 9

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	sess         *session.Session
	status       *status.Service
	logger       *slog.Logger
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a control server for sess. An empty socketPath uses the
// per-user runtime directory.
func NewServer(socketPath string, sess *session.Session, svc *status.Service, logger *slog.Logger) (*Server, error) {
	if sess == nil {
		return nil, fmt.Errorf("ipc: session is required")
	}
	if svc == nil {
		return nil, fmt.Errorf("ipc: status service is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if socketPath == "" {
		p, err := xdgpath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
		socketPath = p
	}

	return &Server{
		socketPath: socketPath,
		sess:       sess,
		status:     svc,
		logger:     logger,
		startTime:  time.Now(),
	}, nil
}

// SocketPath returns the socket the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	if _, err := os.Stat(s.socketPath); err == nil {
		if NewClient(s.socketPath).Ping() == nil {
			return fmt.Errorf("%w (%s)", ErrAlreadyRunning, s.socketPath)
		}
		// Stale socket from a session that did not shut down.
		os.Remove(s.socketPath)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("control socket listening", "path", s.socketPath)

	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn("IPC accept error", "error", err)
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// One JSON request per line.
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal IPC response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send IPC response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	s.logger.Debug("IPC request", "command", req.Command)
	switch req.Command {
	case CommandStatus:
		return s.handleStatus()
	case CommandReload:
		return s.handleReload()
	case CommandSave:
		return s.handleSave(req.Payload)
	case CommandPositions:
		return s.handlePositions(req.Payload)
	case CommandReadouts:
		return s.handleReadouts()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleStatus() *Response {
	snap := s.sess.Snapshot()
	data := StatusData{
		Path:          s.sess.Path(),
		Dirty:         s.sess.Dirty(),
		Screens:       len(snap.Screens),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
	}
	for _, scr := range snap.Screens {
		data.Widgets += len(scr.Widgets)
	}

	resp, _ := NewOKResponse(data)
	return resp
}

func (s *Server) handleReload() *Response {
	if s.sess.Dirty() {
		return NewErrorResponse("layout has unsaved changes; save first")
	}
	warnings, err := s.sess.Reload()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload layout: %v", err))
	}
	data := ReloadData{}
	for _, w := range warnings {
		data.Warnings = append(data.Warnings, w.String())
	}
	s.logger.Info("layout reloaded over IPC", "warnings", len(warnings))

	resp, _ := NewOKResponse(data)
	return resp
}

func (s *Server) handleSave(payload json.RawMessage) *Response {
	var req SavePayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid save payload: %v", err))
		}
	}

	data := SaveData{}
	if req.OnlyIfDirty {
		saved, err := s.sess.SaveIfDirty()
		if err != nil {
			return NewErrorResponse(err.Error())
		}
		data.Saved = saved
	} else {
		if err := s.sess.Save(); err != nil {
			return NewErrorResponse(err.Error())
		}
		data.Saved = true
	}

	resp, _ := NewOKResponse(data)
	return resp
}

func (s *Server) handlePositions(payload json.RawMessage) *Response {
	var req PositionsPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid positions payload: %v", err))
	}

	var pos status.AxisPositions
	for _, set := range []struct {
		name string
		in   []float64
		out  *[maxAxes]float64
	}{
		{"abs", req.Abs, &pos.Abs},
		{"rel", req.Rel, &pos.Rel},
		{"dtg", req.DTG, &pos.DTG},
	} {
		if len(set.in) > maxAxes {
			return NewErrorResponse(fmt.Sprintf("%s has %d values, at most %d axes", set.name, len(set.in), maxAxes))
		}
		copy(set.out[:], set.in)
	}

	s.status.Publish(status.KeyAxisPositions, pos)

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleReadouts() *Response {
	data := ReadoutsData{Readouts: []Readout{}}
	for _, scr := range s.sess.Snapshot().Screens {
		for _, ws := range scr.Widgets {
			id, err := uuid.Parse(ws.ID)
			if err != nil {
				continue
			}
			w, ok := s.sess.Widget(id)
			if !ok {
				continue
			}
			dro, ok := w.(*widgets.Dro)
			if !ok {
				continue
			}
			r := Readout{
				ID:      ws.ID,
				Screen:  scr.Name,
				Package: ws.Package,
				Type:    dro.Type().String(),
				Axes:    dro.Axes(),
				Text:    map[string]string{},
			}
			for _, axis := range r.Axes {
				text, err := dro.Text(string(axis))
				if err != nil {
					continue
				}
				r.Text[string(axis)] = text
			}
			data.Readouts = append(data.Readouts, r)
		}
	}

	resp, _ := NewOKResponse(data)
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
