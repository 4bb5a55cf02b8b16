package api

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/docker/docker/pkg/stdcopy"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/shuttle-hq/shuttle-sub002/internal/backend"
)

// ProjectLogsRequest represents the request parameters for fetching logs
type ProjectLogsRequest struct {
	Follow     bool   `query:"follow"`     // Stream logs (default: false)
	Timestamps bool   `query:"timestamps"` // Include timestamps (default: false)
	Tail       string `query:"tail"`       // Number of lines from end (default: "100")
}

var logsUpgrader = websocket.Upgrader{
	// The API is already protected by auth middleware.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// projectLogs handles GET /api/v1/projects/:name/logs
//
// Plain requests stream chunked text. A WebSocket upgrade streams one
// text message per log line instead, which browser clients use for live
// tails.
func (s *Server) projectLogs(c echo.Context) error {
	name := c.Param("name")

	var req ProjectLogsRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestError("invalid query parameters", err.Error())
	}
	if req.Tail == "" {
		req.Tail = "100"
	}

	containerID, err := s.projects.ContainerID(name)
	if err != nil {
		return NotFoundError("project", name)
	}

	ctx := c.Request().Context()
	if !req.Follow {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}

	logs, err := s.backend.ContainerLogs(ctx, containerID, backend.LogsOptions{
		Follow:     req.Follow,
		Tail:       req.Tail,
		Timestamps: req.Timestamps,
	})
	if err != nil {
		return InternalError("failed to fetch logs", err.Error())
	}
	defer logs.Close()

	if websocket.IsWebSocketUpgrade(c.Request()) {
		return s.streamLogsWebSocket(c, logs)
	}

	return s.streamLogsPlain(c, logs)
}

func (s *Server) streamLogsPlain(c echo.Context, logs io.Reader) error {
	c.Response().Header().Set(echo.HeaderContentType, "text/plain; charset=utf-8")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)

	// Demultiplex the raw stream; stdout and stderr are interleaved in
	// arrival order.
	_, err := stdcopy.StdCopy(flushWriter{c.Response()}, flushWriter{c.Response()}, logs)
	if err != nil && err != io.EOF {
		s.debugLog("log stream ended: %v", err)
	}
	return nil
}

func (s *Server) streamLogsWebSocket(c echo.Context, logs io.Reader) error {
	conn, err := logsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	pr, pw := io.Pipe()
	go func() {
		_, err := stdcopy.StdCopy(pw, pw, logs)
		pw.CloseWithError(err)
	}()

	scanner := bufio.NewScanner(pr)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := conn.WriteMessage(websocket.TextMessage, scanner.Bytes()); err != nil {
			return nil
		}
	}

	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return nil
}

// flushWriter flushes after every write so followed logs arrive live.
type flushWriter struct {
	rw *echo.Response
}

func (w flushWriter) Write(p []byte) (int, error) {
	n, err := w.rw.Write(p)
	w.rw.Flush()
	return n, err
}
