package httpserver

import (
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog/log"
)

// timerTick is one frame of the /game/timer stream.
type timerTick struct {
	Active         bool   `json:"active"`
	RoundID        string `json:"roundId,omitempty"`
	ElapsedSeconds int    `json:"elapsedSeconds"` // whole seconds, for display
}

// handleTimer streams the elapsed time of the active round once per
// TimerInterval. The stream ends with an inactive tick once the round is over.
// It only reads the engine, so it cannot affect scoring.
func (s *Server) handleTimer(w http.ResponseWriter, r *http.Request) {
	var patterns []string
	if u, err := url.Parse(s.opts.ClientOrigin); err == nil && u.Host != "" {
		patterns = append(patterns, u.Host)
	}
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: patterns})
	if err != nil {
		log.Warn().Err(err).Msg("timer accept")
		return
	}
	defer c.CloseNow()

	// We never expect client messages; CloseRead cancels ctx when the peer goes away.
	ctx := c.CloseRead(r.Context())
	sess := sessionFrom(r)

	ticker := time.NewTicker(s.opts.TimerInterval)
	defer ticker.Stop()

	for {
		snap := snapshot(sess)
		tick := timerTick{
			Active:         snap.Active,
			RoundID:        snap.RoundID,
			ElapsedSeconds: int(math.Floor(snap.ElapsedSeconds)),
		}
		if err := wsjson.Write(ctx, c, tick); err != nil {
			return
		}
		if !tick.Active {
			c.Close(websocket.StatusNormalClosure, "round over")
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
