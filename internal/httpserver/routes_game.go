// internal/httpserver/routes_game.go
//
// Game routes. All of them run behind withSession:
//   - POST /game/new     → start a round (raw level or named difficulty, optional daily target)
//   - POST /game/guess   → submit a guess for the active round
//   - POST /game/giveup  → abandon the active round (penalty score = level)
//   - GET  /game/state   → active round snapshot + elapsed time
//   - GET  /stats        → session statistics
//   - GET  /games/mine   → journal of this session's finished rounds
//
// The engine is only touched inside Session.Do; journal writes happen after the
// session lock is released and are best effort.

package httpserver

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/numberguess/internal/daily"
	"github.com/robalobadob/numberguess/internal/game"
	"github.com/robalobadob/numberguess/internal/journal"
	"github.com/robalobadob/numberguess/internal/levels"
	"github.com/robalobadob/numberguess/internal/store"
)

// engineError maps engine sentinel errors to HTTP responses.
func engineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrInvalidLevel):
		writeError(w, http.StatusBadRequest, "invalid_level")
	case errors.Is(err, game.ErrNoActiveRound):
		writeError(w, http.StatusConflict, "no_active_round")
	default:
		log.Error().Err(err).Msg("engine")
		writeError(w, http.StatusInternalServerError, "server_error")
	}
}

// -----------------------------------------------------------------------------
// /levels

func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"levels": levels.Presets(), "count": levels.Count()})
}

// -----------------------------------------------------------------------------
// /game/new

// newGameReq is the request payload for /game/new.
// Difficulty wins over Level when both are set. Name is kept for later rounds
// when omitted.
type newGameReq struct {
	Level      int     `json:"level"`
	Difficulty string  `json:"difficulty"`
	Name       *string `json:"name"`
	Daily      bool    `json:"daily"`
}

type newGameRes struct {
	Round   game.Round `json:"round"`
	Daily   bool       `json:"daily"`
	Date    string     `json:"date,omitempty"`
	Name    string     `json:"name,omitempty"`
	Message string     `json:"message"`
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	level := req.Level
	if req.Difficulty != "" {
		p, ok := levels.Lookup(req.Difficulty)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown_difficulty")
			return
		}
		level = p.Level
	}

	var src game.RandomSource
	var date string
	if req.Daily {
		now := s.opts.Now()
		src = daily.NewSource(now, s.opts.DailySalt)
		date = daily.DateKey(now)
	}

	sess := sessionFrom(r)
	var res newGameRes
	err := sess.Do(func(st *store.State) error {
		if req.Name != nil {
			st.Name = properName(*req.Name)
		}
		round, err := st.Engine.StartRoundFrom(src, level)
		if err != nil {
			return err
		}
		st.Daily = req.Daily
		res = newGameRes{
			Round:   round,
			Daily:   req.Daily,
			Date:    date,
			Name:    st.Name,
			Message: startMessage(st.Name, level),
		}
		return nil
	})
	if err != nil {
		engineError(w, err)
		return
	}
	log.Info().Str("session", sess.ID).Str("round", res.Round.ID).Int("level", level).Bool("daily", req.Daily).Msg("round started")
	writeJSON(w, http.StatusOK, res)
}

// -----------------------------------------------------------------------------
// /game/guess

// guessReq accepts the guess as a JSON number or as the raw text the player typed.
type guessReq struct {
	Guess json.RawMessage `json:"guess"`
}

type guessRes struct {
	Outcome game.Outcome `json:"outcome"`
	Level   int          `json:"level"`
	Message string       `json:"message"`
	Stats   *game.Stats  `json:"stats,omitempty"` // set once the round is won
}

// guessText turns the raw JSON value into the text handed to the engine.
// Strings are unquoted. Numbers with no fractional part (7, 7.0, 7e0) become
// their integer text; anything else is passed through verbatim and ends up
// Invalid.
func guessText(raw json.RawMessage) string {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		if i, err := num.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		if f, err := num.Float64(); err == nil && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return strconv.FormatInt(int64(f), 10)
		}
		return num.String()
	}
	return string(raw)
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}

	sess := sessionFrom(r)
	var (
		res   guessRes
		entry *journal.Entry
	)
	err := sess.Do(func(st *store.State) error {
		round, ok := st.Engine.Current()
		if !ok {
			return game.ErrNoActiveRound
		}
		out, err := st.Engine.SubmitInput(guessText(req.Guess))
		if err != nil {
			return err
		}
		res = guessRes{Outcome: out, Level: round.Level, Message: outcomeMessage(st.Name, round.Level, out)}
		if out.Kind == game.OutcomeCorrect {
			stats := st.Engine.Statistics(s.opts.LeaderboardSlots)
			res.Stats = &stats
			entry = &journal.Entry{
				RoundID:    round.ID,
				SessionID:  sess.ID,
				PlayerName: st.Name,
				Level:      round.Level,
				Target:     out.Target,
				Attempts:   out.Attempts,
				Score:      out.Attempts,
				Outcome:    journal.OutcomeWon,
				ElapsedMs:  int(out.ElapsedSeconds * 1000),
				Daily:      st.Daily,
				FinishedAt: time.Now(),
			}
			st.Daily = false
		}
		return nil
	})
	if err != nil {
		engineError(w, err)
		return
	}
	if entry != nil {
		log.Info().Str("session", sess.ID).Str("round", entry.RoundID).Int("attempts", entry.Attempts).Msg("round won")
		s.record(r, *entry)
	}
	writeJSON(w, http.StatusOK, res)
}

// -----------------------------------------------------------------------------
// /game/giveup

type giveUpRes struct {
	Result  game.AbandonResult `json:"result"`
	Message string             `json:"message"`
	Stats   game.Stats         `json:"stats"`
}

func (s *Server) handleGiveUp(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	var (
		res   giveUpRes
		entry journal.Entry
	)
	err := sess.Do(func(st *store.State) error {
		result, err := st.Engine.Abandon()
		if err != nil {
			return err
		}
		res = giveUpRes{
			Result:  result,
			Message: abandonMessage(result),
			Stats:   st.Engine.Statistics(s.opts.LeaderboardSlots),
		}
		entry = journal.Entry{
			RoundID:    result.RoundID,
			SessionID:  sess.ID,
			PlayerName: st.Name,
			Level:      result.Level,
			Target:     result.Target,
			Attempts:   result.Attempts,
			Score:      result.Score,
			Outcome:    journal.OutcomeGaveUp,
			ElapsedMs:  int(result.ElapsedSeconds * 1000),
			Daily:      st.Daily,
			FinishedAt: time.Now(),
		}
		st.Daily = false
		return nil
	})
	if err != nil {
		engineError(w, err)
		return
	}
	log.Info().Str("session", sess.ID).Str("round", entry.RoundID).Msg("round abandoned")
	s.record(r, entry)
	writeJSON(w, http.StatusOK, res)
}

// record writes a journal entry; failures are logged, never returned.
func (s *Server) record(r *http.Request, e journal.Entry) {
	if err := s.journal.Record(r.Context(), e); err != nil {
		log.Warn().Err(err).Str("round", e.RoundID).Msg("journal round")
	}
}

// -----------------------------------------------------------------------------
// /game/state

type stateRes struct {
	Active         bool    `json:"active"`
	RoundID        string  `json:"roundId,omitempty"`
	Level          int     `json:"level,omitempty"`
	Attempts       int     `json:"attempts"`
	ElapsedSeconds float64 `json:"elapsedSeconds"`
	Daily          bool    `json:"daily"`
	Name           string  `json:"name,omitempty"`
}

// snapshot reads the active round without changing anything.
func snapshot(sess *store.Session) stateRes {
	var res stateRes
	_ = sess.Do(func(st *store.State) error {
		res.Name = st.Name
		round, ok := st.Engine.Current()
		if !ok {
			return nil
		}
		elapsed, _ := st.Engine.Elapsed()
		res.Active = true
		res.RoundID = round.ID
		res.Level = round.Level
		res.Attempts = round.Attempts
		res.ElapsedSeconds = elapsed
		res.Daily = st.Daily
		return nil
	})
	return res
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, snapshot(sessionFrom(r)))
}

// -----------------------------------------------------------------------------
// /stats

// handleStats returns session statistics. ?slots=n overrides the configured
// leaderboard size; 0 returns every score.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	slots := s.opts.LeaderboardSlots
	if v := r.URL.Query().Get("slots"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid_slots")
			return
		}
		slots = n
	}
	var stats game.Stats
	_ = sessionFrom(r).Do(func(st *store.State) error {
		stats = st.Engine.Statistics(slots)
		return nil
	})
	writeJSON(w, http.StatusOK, stats)
}

// -----------------------------------------------------------------------------
// /games/mine

func (s *Server) handleMine(w http.ResponseWriter, r *http.Request) {
	rows, err := s.journal.Recent(r.Context(), sessionFrom(r).ID, 50)
	if err != nil {
		log.Error().Err(err).Msg("journal recent")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
