// internal/game/engine.go
//
// Core game engine for a single player session.
// Responsibilities:
//   - Start rounds with a target drawn uniformly from [1, level].
//   - Validate and evaluate guesses (too low / too high / correct).
//   - Finalize rounds on a win or on give-up (penalty score = level).
//   - Aggregate session statistics on demand.
//
// Notes:
//   - The engine is not safe for concurrent use; callers serialize access.
//   - Random source and clock are injected so tests can pin the target and time.
//   - Round IDs are UUIDs, used as opaque handles by the HTTP layer.
package game

import (
	"crypto/rand"
	"math/big"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Engine owns the active round and the session's score/duration history.
type Engine struct {
	rnd   RandomSource
	clock Clock

	round     *Round    // nil when idle
	scores    []int     // sorted ascending
	durations []float64 // insertion order, seconds
}

// Option configures an Engine.
type Option func(*Engine)

// WithRandom replaces the default crypto-backed random source.
func WithRandom(r RandomSource) Option {
	return func(e *Engine) {
		if r != nil {
			e.rnd = r
		}
	}
}

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// New constructs an idle engine with an empty session.
func New(opts ...Option) *Engine {
	e := &Engine{rnd: cryptoSource{}, clock: systemClock{}}
	for _, o := range opts {
		o(e)
	}
	return e
}

// StartRound begins a new round over [1, level] using the engine's random source.
// Any active round is discarded without being scored.
func (e *Engine) StartRound(level int) (Round, error) {
	return e.StartRoundFrom(e.rnd, level)
}

// StartRoundFrom is StartRound with a per-round random source.
func (e *Engine) StartRoundFrom(src RandomSource, level int) (Round, error) {
	if level < 1 {
		return Round{}, ErrInvalidLevel
	}
	if src == nil {
		src = e.rnd
	}
	e.round = &Round{
		ID:        uuid.NewString(),
		Level:     level,
		StartedAt: e.clock.Now(),
		target:    src.Intn(level) + 1,
	}
	return *e.round, nil
}

// SubmitGuess evaluates a guess against the active round.
//
// Out-of-range guesses yield OutcomeInvalid and leave the round untouched.
// A correct guess finalizes the round and records its score and duration.
func (e *Engine) SubmitGuess(guess int) (Outcome, error) {
	r := e.round
	if r == nil {
		return Outcome{}, ErrNoActiveRound
	}
	if guess < 1 || guess > r.Level {
		return Outcome{Kind: OutcomeInvalid}, nil
	}
	r.Attempts++

	switch {
	case guess < r.target:
		return Outcome{Kind: OutcomeTooLow, Hint: TemperatureHint(r.target-guess, r.Level), Attempts: r.Attempts}, nil
	case guess > r.target:
		return Outcome{Kind: OutcomeTooHigh, Hint: TemperatureHint(guess-r.target, r.Level), Attempts: r.Attempts}, nil
	}

	elapsed := e.since(r.StartedAt)
	e.finish(r.Attempts, elapsed)
	return Outcome{
		Kind:           OutcomeCorrect,
		Attempts:       r.Attempts,
		Rating:         ScoreRating(r.Attempts, r.Level),
		ElapsedSeconds: elapsed,
		Target:         r.target,
	}, nil
}

// SubmitInput parses raw player input and submits it.
// Anything that is not a base-10 integer is OutcomeInvalid.
func (e *Engine) SubmitInput(raw string) (Outcome, error) {
	if e.round == nil {
		return Outcome{}, ErrNoActiveRound
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return Outcome{Kind: OutcomeInvalid}, nil
	}
	return e.SubmitGuess(n)
}

// Abandon gives up the active round. The recorded score is the level itself,
// regardless of how many guesses were made.
func (e *Engine) Abandon() (AbandonResult, error) {
	r := e.round
	if r == nil {
		return AbandonResult{}, ErrNoActiveRound
	}
	elapsed := e.since(r.StartedAt)
	e.finish(r.Level, elapsed)
	return AbandonResult{
		RoundID:        r.ID,
		Level:          r.Level,
		Target:         r.target,
		Attempts:       r.Attempts,
		Score:          r.Level,
		ElapsedSeconds: elapsed,
	}, nil
}

// Current returns a copy of the active round, if any.
func (e *Engine) Current() (Round, bool) {
	if e.round == nil {
		return Round{}, false
	}
	return *e.round, true
}

// Elapsed reports seconds since the active round started.
func (e *Engine) Elapsed() (float64, error) {
	if e.round == nil {
		return 0, ErrNoActiveRound
	}
	return e.since(e.round.StartedAt), nil
}

// Statistics computes the session statistics. slots > 0 truncates the
// leaderboard to that many entries.
func (e *Engine) Statistics(slots int) Stats {
	n := len(e.scores)
	lb := slices.Clone(e.scores)
	if lb == nil {
		lb = []int{}
	}
	if slots > 0 && len(lb) > slots {
		lb = lb[:slots]
	}
	st := Stats{TotalWins: n, Leaderboard: lb}
	if n == 0 {
		return st
	}

	sum := 0
	for _, s := range e.scores {
		sum += s
	}
	avgScore := float64(sum) / float64(n)

	fastest, total := e.durations[0], 0.0
	for _, d := range e.durations {
		fastest = min(fastest, d)
		total += d
	}
	avgTime := total / float64(len(e.durations))

	st.AverageScore = &avgScore
	st.FastestTime = &fastest
	st.AverageTime = &avgTime
	return st
}

// finish records a score and duration and ends the active round.
func (e *Engine) finish(score int, elapsed float64) {
	i := sort.SearchInts(e.scores, score)
	e.scores = slices.Insert(e.scores, i, score)
	e.durations = append(e.durations, elapsed)
	e.round = nil
}

func (e *Engine) since(t time.Time) float64 {
	return e.clock.Now().Sub(t).Seconds()
}

// cryptoSource draws from crypto/rand.
type cryptoSource struct{}

func (cryptoSource) Intn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
