// internal/game/types.go
//
// Core type definitions for the number guessing engine.
// Defines:
//   - Hint: proximity signal for a wrong guess (hot/warm/cold).
//   - Rating: performance label for a won round.
//   - Outcome: tagged result of a guess.
//   - Round: state for the single in-progress round.
//   - Stats: aggregated session statistics.

package game

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrInvalidLevel is returned when a round is started with level < 1.
	ErrInvalidLevel = errors.New("invalid level")
	// ErrNoActiveRound is returned by guess/abandon calls when no round is in progress.
	ErrNoActiveRound = errors.New("no active round")
)

// Hint classifies how close a wrong guess was to the target.
type Hint string

const (
	HintHot  Hint = "hot"
	HintWarm Hint = "warm"
	HintCold Hint = "cold"
)

// Rating labels how well a round was won relative to its level.
type Rating string

const (
	RatingExcellent      Rating = "excellent"
	RatingGood           Rating = "good"
	RatingKeepPracticing Rating = "keep_practicing"
)

// OutcomeKind tags the variant carried by an Outcome.
type OutcomeKind string

const (
	OutcomeInvalid OutcomeKind = "invalid"
	OutcomeTooLow  OutcomeKind = "too_low"
	OutcomeTooHigh OutcomeKind = "too_high"
	OutcomeCorrect OutcomeKind = "correct"
)

// Outcome is the result of a single guess.
//
//   - Invalid:          no other fields set.
//   - TooLow / TooHigh: Hint and Attempts set.
//   - Correct:          Attempts, Rating, ElapsedSeconds and Target set.
//
// In JSON the variant-specific fields are omitted for the variants that do
// not carry them; a Correct outcome always includes elapsedSeconds, even 0.
type Outcome struct {
	Kind           OutcomeKind `json:"kind"`
	Hint           Hint        `json:"hint,omitempty"`
	Attempts       int         `json:"attempts,omitempty"`
	Rating         Rating      `json:"rating,omitempty"`
	ElapsedSeconds float64     `json:"elapsedSeconds,omitempty"`
	Target         int         `json:"target,omitempty"`
}

// MarshalJSON keeps elapsedSeconds on Correct outcomes when it is zero.
func (o Outcome) MarshalJSON() ([]byte, error) {
	type plain Outcome
	if o.Kind != OutcomeCorrect {
		return json.Marshal(plain(o))
	}
	return json.Marshal(struct {
		plain
		ElapsedSeconds float64 `json:"elapsedSeconds"`
	}{plain(o), o.ElapsedSeconds})
}

// Round is the state of one round. The target stays unexported so that a
// Round handed to a caller never leaks it.
type Round struct {
	ID        string    `json:"id"`        // Opaque round handle (UUID).
	Level     int       `json:"level"`     // Inclusive upper bound of [1, Level].
	Attempts  int       `json:"attempts"`  // Valid guesses so far.
	StartedAt time.Time `json:"startedAt"` // Taken from the engine clock.

	target int
}

// AbandonResult is returned when the player gives up.
type AbandonResult struct {
	RoundID        string  `json:"roundId"`
	Level          int     `json:"level"`
	Target         int     `json:"target"`
	Attempts       int     `json:"attempts"` // Actual guesses made before giving up.
	Score          int     `json:"score"`    // Recorded penalty, always Level.
	ElapsedSeconds float64 `json:"elapsedSeconds"`
}

// Stats is a snapshot of the session statistics. The pointer fields are nil
// until at least one round has finished.
type Stats struct {
	TotalWins    int      `json:"totalWins"`
	AverageScore *float64 `json:"averageScore,omitempty"`
	FastestTime  *float64 `json:"fastestTime,omitempty"`
	AverageTime  *float64 `json:"averageTime,omitempty"`
	Leaderboard  []int    `json:"leaderboard"`
}

// RandomSource yields uniform integers in [0, n). *math/rand.Rand satisfies it.
type RandomSource interface {
	Intn(n int) int
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}
