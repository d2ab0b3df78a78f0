// Package server exposes the recitation engine over a WebSocket session
// protocol plus the HTTP operational endpoints (/metrics, /healthz,
// /readyz).
//
// One WebSocket connection carries one recitation session. The client opens
// the connection, sends a "start" message with the reference passage, then
// streams "hypothesis" messages as its ASR produces words; the server
// answers each with the feedback records and position snapshot produced by
// the alignment tracker, shaped for verbatim forwarding to a UI. Control
// messages (pause/resume/reset/set_mode/set_tajweed/progress) may be
// interleaved at any point. Messages on one connection are processed
// strictly in arrival order, which provides the per-session serialization
// the tracker requires.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/quranlabs/murattil/internal/config"
	"github.com/quranlabs/murattil/internal/progress"
	"github.com/quranlabs/murattil/internal/quran"
	"github.com/quranlabs/murattil/internal/session"
	"github.com/quranlabs/murattil/internal/tracker"
)

// clientMessage is the inbound envelope. Type discriminates which other
// fields are meaningful.
type clientMessage struct {
	Type string `json:"type"`

	// start
	Passage         []quran.WordInput   `json:"passage,omitempty"`
	Mode            tracker.LatencyMode `json:"mode,omitempty"`
	Tajweed         *bool               `json:"tajweed,omitempty"`
	AcceptThreshold float64             `json:"accept_threshold,omitempty"`

	// hypothesis
	Text       string  `json:"text,omitempty"`
	StartMS    int64   `json:"start_ms,omitempty"`
	EndMS      int64   `json:"end_ms,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`

	// set_tajweed
	Enabled *bool `json:"enabled,omitempty"`
}

// serverMessage is the outbound envelope.
type serverMessage struct {
	Type      string            `json:"type"`
	SessionID string            `json:"session_id,omitempty"`
	Result    *tracker.Result   `json:"result,omitempty"`
	Snapshot  *tracker.Snapshot `json:"snapshot,omitempty"`
	Progress  *progress.Summary `json:"progress,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// Gateway is the WebSocket front door of the engine. Safe for concurrent
// use; each connection is handled independently.
type Gateway struct {
	registry *session.Registry
	engine   config.EngineConfig
}

// NewGateway creates a [Gateway] that registers sessions in registry and
// applies the engine defaults from cfg to sessions that do not set their
// own.
func NewGateway(registry *session.Registry, cfg config.EngineConfig) *Gateway {
	return &Gateway{registry: registry, engine: cfg}
}

// ServeHTTP upgrades the request to a WebSocket and runs the session
// message loop until the client disconnects.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "session aborted")

	ctx := r.Context()
	if err := g.serve(ctx, conn); err != nil {
		status := websocket.CloseStatus(err)
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
			conn.Close(websocket.StatusNormalClosure, "")
			return
		}
		slog.Warn("session loop ended", "remote", r.RemoteAddr, "err", err)
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

// serve runs the per-connection message loop. The session is created on
// the first "start" message and removed from the registry when the loop
// exits for any reason.
func (g *Gateway) serve(ctx context.Context, conn *websocket.Conn) error {
	var sess *session.Session
	defer func() {
		if sess != nil {
			g.registry.Remove(sess.ID())
		}
	}()

	for {
		var msg clientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return err
		}

		if msg.Type == "start" {
			if sess != nil {
				if err := g.writeError(ctx, conn, "session already started"); err != nil {
					return err
				}
				continue
			}
			created, err := g.startSession(msg)
			if err != nil {
				if werr := g.writeError(ctx, conn, err.Error()); werr != nil {
					return werr
				}
				continue
			}
			sess = created
			snap := sess.Snapshot()
			if err := wsjson.Write(ctx, conn, serverMessage{
				Type:      "started",
				SessionID: sess.ID(),
				Snapshot:  &snap,
			}); err != nil {
				return err
			}
			slog.Info("session started",
				"session_id", sess.ID(),
				"words", snap.TotalWords,
				"mode", snap.Mode,
			)
			continue
		}

		if sess == nil {
			if err := g.writeError(ctx, conn, "no session; send start first"); err != nil {
				return err
			}
			continue
		}

		reply, stop, err := g.dispatch(ctx, sess, msg)
		if err != nil {
			return err
		}
		if reply != nil {
			if err := wsjson.Write(ctx, conn, *reply); err != nil {
				return err
			}
		}
		if stop {
			return nil
		}
	}
}

// startSession builds the session config from the start message, filling
// unset values from the server-wide engine defaults.
func (g *Gateway) startSession(msg clientMessage) (*session.Session, error) {
	cfg := session.Config{
		Words:           msg.Passage,
		Mode:            msg.Mode,
		Tajweed:         msg.Tajweed,
		AcceptThreshold: msg.AcceptThreshold,
		ClassCost:       g.engine.ClassCost,
	}
	if cfg.Mode == "" {
		cfg.Mode = g.engine.DefaultMode
	}
	if cfg.Tajweed == nil {
		cfg.Tajweed = g.engine.Tajweed
	}
	if cfg.AcceptThreshold == 0 {
		cfg.AcceptThreshold = g.engine.AcceptThreshold
	}

	sess, err := g.registry.Create(cfg)
	if err != nil {
		return nil, err
	}
	if err := sess.Start(); err != nil {
		g.registry.Remove(sess.ID())
		return nil, err
	}
	return sess, nil
}

// dispatch handles one post-start message and returns the reply to send,
// whether the loop should stop, and any fatal connection error.
func (g *Gateway) dispatch(ctx context.Context, sess *session.Session, msg clientMessage) (*serverMessage, bool, error) {
	switch msg.Type {
	case "hypothesis":
		res, err := sess.Submit(ctx, tracker.Hypothesis{
			Text:       msg.Text,
			Start:      time.Duration(msg.StartMS) * time.Millisecond,
			End:        time.Duration(msg.EndMS) * time.Millisecond,
			Confidence: msg.Confidence,
		})
		if err != nil {
			return errorMessage(err), false, nil
		}
		return &serverMessage{Type: "feedback", SessionID: sess.ID(), Result: &res}, false, nil

	case "pause":
		if err := sess.Pause(); err != nil {
			return errorMessage(err), false, nil
		}
		return snapshotMessage(sess), false, nil

	case "resume":
		if err := sess.Resume(); err != nil {
			return errorMessage(err), false, nil
		}
		return snapshotMessage(sess), false, nil

	case "reset":
		sess.Reset()
		if err := sess.Start(); err != nil {
			return errorMessage(err), false, nil
		}
		return snapshotMessage(sess), false, nil

	case "set_mode":
		if err := sess.SetMode(msg.Mode); err != nil {
			return errorMessage(err), false, nil
		}
		return snapshotMessage(sess), false, nil

	case "set_tajweed":
		if msg.Enabled == nil {
			return &serverMessage{Type: "error", Error: "set_tajweed requires enabled"}, false, nil
		}
		sess.SetTajweedEnabled(*msg.Enabled)
		return snapshotMessage(sess), false, nil

	case "progress":
		summary := sess.Progress()
		return &serverMessage{Type: "progress", SessionID: sess.ID(), Progress: &summary}, false, nil

	case "stop":
		summary := sess.Progress()
		return &serverMessage{Type: "progress", SessionID: sess.ID(), Progress: &summary}, true, nil

	default:
		return &serverMessage{Type: "error", Error: "unknown message type " + msg.Type}, false, nil
	}
}

func (g *Gateway) writeError(ctx context.Context, conn *websocket.Conn, text string) error {
	return wsjson.Write(ctx, conn, serverMessage{Type: "error", Error: text})
}

func errorMessage(err error) *serverMessage {
	return &serverMessage{Type: "error", Error: err.Error()}
}

func snapshotMessage(sess *session.Session) *serverMessage {
	snap := sess.Snapshot()
	return &serverMessage{Type: "snapshot", SessionID: sess.ID(), Snapshot: &snap}
}
