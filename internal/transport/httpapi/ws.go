package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/survey_navigator/internal/mapview"
	"github.com/relabs-tech/survey_navigator/internal/orientation"
	"github.com/relabs-tech/survey_navigator/internal/survey"
)

const writeWait = 5 * time.Second

// errEncode marks a reply that could not be encoded; the connection is
// still usable.
var errEncode = errors.New("websocket encode")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins; tablets on the survey LAN
	},
}

// WSMessage is sent by the browser.
type WSMessage struct {
	Action string `json:"action"` // orientation, viewport, follow, orientation_mode

	Alpha          *float64          `json:"alpha,omitempty"`
	CompassHeading *float64          `json:"compass_heading,omitempty"`
	Viewport       *mapview.Viewport `json:"viewport,omitempty"`
	Enabled        *bool             `json:"enabled,omitempty"`
	Mode           string            `json:"mode,omitempty"`
}

// WSResponse is pushed to the browser.
type WSResponse struct {
	Type    string       `json:"type"` // view, error
	View    *survey.View `json:"view,omitempty"`
	Message string       `json:"message,omitempty"`
}

// wsSession serialises writes to one connection.
type wsSession struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *wsSession) send(resp WSResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("%w: %v", errEncode, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *wsSession) sendError(msg string) {
	if err := s.send(WSResponse{Type: "error", Message: msg}); err != nil {
		log.Debug().Err(err).Msg("websocket error reply failed")
	}
}

// handleWS pushes every published view and feeds browser orientation and
// viewport reports into the engine.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade error")
		return
	}
	defer conn.Close()

	session := &wsSession{conn: conn}
	ctx := r.Context()
	views, unsub := s.nav.Subscribe(ctx)
	defer unsub()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for v := range views {
			err := session.send(WSResponse{Type: "view", View: &v})
			if errors.Is(err, errEncode) {
				log.Warn().Err(err).Msg("view dropped")
				continue
			}
			if err != nil {
				log.Debug().Err(err).Msg("websocket write error")
				return
			}
		}
	}()

	log.Info().Str("ip", r.RemoteAddr).Msg("websocket client connected")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("websocket read error")
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			session.sendError("invalid message")
			continue
		}
		if ev, errMsg := wsEvent(msg); errMsg != "" {
			session.sendError(errMsg)
		} else {
			s.nav.Submit(ev)
		}
	}

	unsub()
	select {
	case <-done:
	case <-time.After(writeWait):
	}
	log.Info().Str("ip", r.RemoteAddr).Msg("websocket client disconnected")
}

func wsEvent(msg WSMessage) (survey.Event, string) {
	switch msg.Action {
	case "orientation":
		return survey.HeadingEvent{Sample: orientation.Sample{
			Alpha:          msg.Alpha,
			CompassHeading: msg.CompassHeading,
			TimestampMs:    time.Now().UnixMilli(),
		}}, ""
	case "viewport":
		if msg.Viewport == nil {
			return nil, "viewport required"
		}
		if !msg.Viewport.Valid() {
			return nil, "invalid viewport"
		}
		return survey.ViewportEvent{Viewport: *msg.Viewport}, ""
	case "follow":
		if msg.Enabled == nil {
			return survey.ToggleFollowEvent{}, ""
		}
		return survey.SetFollowEvent{Follow: *msg.Enabled}, ""
	case "orientation_mode":
		m, err := mapview.ParseOrientationMode(msg.Mode)
		if err != nil {
			return nil, err.Error()
		}
		return survey.SetOrientationModeEvent{Mode: m}, ""
	default:
		return nil, "unknown action " + msg.Action
	}
}
