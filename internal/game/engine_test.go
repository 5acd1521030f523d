package game

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"
)

// fixedSource always picks the same target.
type fixedSource struct{ target int }

func (f fixedSource) Intn(n int) int { return f.target - 1 }

// fakeClock advances only when told to.
type fakeClock struct{ now time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestEngine(target int) (*Engine, *fakeClock) {
	clk := newFakeClock()
	return New(WithRandom(fixedSource{target: target}), WithClock(clk)), clk
}

func TestStartRoundTargetInRange(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	e := New(WithRandom(r))
	for level := 1; level <= 200; level++ {
		for i := 0; i < 20; i++ {
			if _, err := e.StartRound(level); err != nil {
				t.Fatalf("StartRound(%d) error: %v", level, err)
			}
			if e.round.target < 1 || e.round.target > level {
				t.Fatalf("target %d out of [1,%d]", e.round.target, level)
			}
		}
	}
}

func TestStartRoundDefaultSourceInRange(t *testing.T) {
	e := New()
	for i := 0; i < 100; i++ {
		if _, err := e.StartRound(3); err != nil {
			t.Fatal(err)
		}
		if e.round.target < 1 || e.round.target > 3 {
			t.Fatalf("target %d out of [1,3]", e.round.target)
		}
	}
}

func TestStartRoundInvalidLevel(t *testing.T) {
	e := New()
	for _, level := range []int{0, -1, -100} {
		if _, err := e.StartRound(level); !errors.Is(err, ErrInvalidLevel) {
			t.Errorf("StartRound(%d) err = %v, want ErrInvalidLevel", level, err)
		}
	}
	if _, ok := e.Current(); ok {
		t.Error("no round should be active after invalid level")
	}
}

func TestStartRoundResetsState(t *testing.T) {
	e, clk := newTestEngine(5)
	first, _ := e.StartRound(10)
	_, _ = e.SubmitGuess(1)

	clk.Advance(3 * time.Second)
	second, err := e.StartRound(10)
	if err != nil {
		t.Fatal(err)
	}
	if second.ID == first.ID {
		t.Error("new round should get a new id")
	}
	if second.Attempts != 0 {
		t.Errorf("Attempts = %d, want 0", second.Attempts)
	}
	if !second.StartedAt.Equal(clk.now) {
		t.Errorf("StartedAt = %v, want %v", second.StartedAt, clk.now)
	}
	// The discarded round is not scored.
	if st := e.Statistics(0); st.TotalWins != 0 {
		t.Errorf("TotalWins = %d, want 0", st.TotalWins)
	}
}

func TestSubmitGuessWithoutRound(t *testing.T) {
	e := New()
	if _, err := e.SubmitGuess(1); !errors.Is(err, ErrNoActiveRound) {
		t.Errorf("SubmitGuess err = %v, want ErrNoActiveRound", err)
	}
	if _, err := e.SubmitInput("1"); !errors.Is(err, ErrNoActiveRound) {
		t.Errorf("SubmitInput err = %v, want ErrNoActiveRound", err)
	}
	if _, err := e.Abandon(); !errors.Is(err, ErrNoActiveRound) {
		t.Errorf("Abandon err = %v, want ErrNoActiveRound", err)
	}
	if _, err := e.Elapsed(); !errors.Is(err, ErrNoActiveRound) {
		t.Errorf("Elapsed err = %v, want ErrNoActiveRound", err)
	}
}

func TestSubmitGuessInvalidDoesNotCount(t *testing.T) {
	e, _ := newTestEngine(4)
	_, _ = e.StartRound(10)

	for _, g := range []int{0, -3, 11, 1000} {
		out, err := e.SubmitGuess(g)
		if err != nil {
			t.Fatal(err)
		}
		if out.Kind != OutcomeInvalid {
			t.Errorf("SubmitGuess(%d) kind = %s, want invalid", g, out.Kind)
		}
	}
	for _, raw := range []string{"", "abc", "4.5", "12abc"} {
		out, err := e.SubmitInput(raw)
		if err != nil {
			t.Fatal(err)
		}
		if out.Kind != OutcomeInvalid {
			t.Errorf("SubmitInput(%q) kind = %s, want invalid", raw, out.Kind)
		}
	}
	cur, ok := e.Current()
	if !ok {
		t.Fatal("round should still be active")
	}
	if cur.Attempts != 0 {
		t.Errorf("Attempts = %d, want 0", cur.Attempts)
	}

	out, _ := e.SubmitInput(" 4 ")
	if out.Kind != OutcomeCorrect || out.Attempts != 1 {
		t.Errorf("outcome = %+v, want correct in 1", out)
	}
}

func TestScenarioLevel10(t *testing.T) {
	e, clk := newTestEngine(7)
	if _, err := e.StartRound(10); err != nil {
		t.Fatal(err)
	}

	out, err := e.SubmitGuess(3)
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != OutcomeTooLow || out.Hint != HintCold {
		t.Fatalf("guess 3 = %+v, want too_low/cold", out)
	}

	clk.Advance(2500 * time.Millisecond)
	out, err = e.SubmitGuess(7)
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != OutcomeCorrect {
		t.Fatalf("guess 7 kind = %s, want correct", out.Kind)
	}
	if out.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", out.Attempts)
	}
	if out.Rating != RatingGood {
		t.Errorf("Rating = %s, want good", out.Rating)
	}
	if out.Target != 7 {
		t.Errorf("Target = %d, want 7", out.Target)
	}
	if out.ElapsedSeconds != 2.5 {
		t.Errorf("ElapsedSeconds = %v, want 2.5", out.ElapsedSeconds)
	}
	if _, ok := e.Current(); ok {
		t.Error("round should be finished after a correct guess")
	}
	if _, err := e.SubmitGuess(7); !errors.Is(err, ErrNoActiveRound) {
		t.Errorf("guess after win err = %v, want ErrNoActiveRound", err)
	}
}

func TestScenarioLevel100Hot(t *testing.T) {
	e, _ := newTestEngine(50)
	_, _ = e.StartRound(100)
	out, _ := e.SubmitGuess(48)
	if out.Kind != OutcomeTooLow || out.Hint != HintHot {
		t.Errorf("guess 48 = %+v, want too_low/hot", out)
	}
	out, _ = e.SubmitGuess(53)
	if out.Kind != OutcomeTooHigh || out.Hint != HintHot {
		t.Errorf("guess 53 = %+v, want too_high/hot", out)
	}
}

func TestFirstGuessWinAtMaxLevel(t *testing.T) {
	e, _ := newTestEngine(1)
	if _, err := e.StartRound(math.MaxInt); err != nil {
		t.Fatal(err)
	}
	out, err := e.SubmitGuess(1)
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != OutcomeCorrect || out.Rating != RatingExcellent {
		t.Errorf("outcome = %+v, want correct/excellent", out)
	}
}

func TestAttemptsCountValidGuessesOnly(t *testing.T) {
	e, _ := newTestEngine(60)
	_, _ = e.StartRound(100)
	guesses := []int{50, 0, 75, 101, 62, 56, 60}
	var out Outcome
	for _, g := range guesses {
		out, _ = e.SubmitGuess(g)
	}
	if out.Kind != OutcomeCorrect {
		t.Fatalf("last outcome = %s, want correct", out.Kind)
	}
	if out.Attempts != 5 {
		t.Errorf("Attempts = %d, want 5", out.Attempts)
	}
}

func TestAbandonRecordsLevel(t *testing.T) {
	tests := []struct {
		name    string
		level   int
		guesses []int
	}{
		{name: "no guesses", level: 10, guesses: nil},
		{name: "some guesses", level: 10, guesses: []int{1, 2, 3}},
		{name: "more guesses than level", level: 3, guesses: []int{1, 1, 1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, clk := newTestEngine(tt.level)
			_, _ = e.StartRound(tt.level)
			for _, g := range tt.guesses {
				_, _ = e.SubmitGuess(g)
			}
			clk.Advance(4 * time.Second)

			res, err := e.Abandon()
			if err != nil {
				t.Fatal(err)
			}
			if res.Score != tt.level {
				t.Errorf("Score = %d, want %d", res.Score, tt.level)
			}
			if res.Target != tt.level {
				t.Errorf("Target = %d, want %d", res.Target, tt.level)
			}
			if res.Attempts != len(tt.guesses) {
				t.Errorf("Attempts = %d, want %d", res.Attempts, len(tt.guesses))
			}
			if res.ElapsedSeconds != 4 {
				t.Errorf("ElapsedSeconds = %v, want 4", res.ElapsedSeconds)
			}
			st := e.Statistics(0)
			if len(st.Leaderboard) != 1 || st.Leaderboard[0] != tt.level {
				t.Errorf("Leaderboard = %v, want [%d]", st.Leaderboard, tt.level)
			}
			if _, ok := e.Current(); ok {
				t.Error("round should be finished after abandon")
			}
		})
	}
}

func TestStatisticsEmpty(t *testing.T) {
	st := New().Statistics(5)
	if st.TotalWins != 0 {
		t.Errorf("TotalWins = %d, want 0", st.TotalWins)
	}
	if st.AverageScore != nil || st.FastestTime != nil || st.AverageTime != nil {
		t.Errorf("averages should be nil on empty session: %+v", st)
	}
	if st.Leaderboard == nil || len(st.Leaderboard) != 0 {
		t.Errorf("Leaderboard = %v, want empty", st.Leaderboard)
	}
}

func TestStatisticsAggregates(t *testing.T) {
	clk := newFakeClock()
	src := &sequenceSource{targets: []int{4, 2}}
	e := New(WithRandom(src), WithClock(clk))

	// Round 1: target 4 found in 4 guesses over 10s.
	_, _ = e.StartRound(10)
	for _, g := range []int{1, 2, 3} {
		_, _ = e.SubmitGuess(g)
	}
	clk.Advance(10 * time.Second)
	_, _ = e.SubmitGuess(4)

	// Round 2: target 2 found in 2 guesses over 4s.
	_, _ = e.StartRound(10)
	_, _ = e.SubmitGuess(1)
	clk.Advance(4 * time.Second)
	_, _ = e.SubmitGuess(2)

	st := e.Statistics(0)
	if st.TotalWins != 2 {
		t.Errorf("TotalWins = %d, want 2", st.TotalWins)
	}
	if len(st.Leaderboard) != 2 || st.Leaderboard[0] != 2 || st.Leaderboard[1] != 4 {
		t.Errorf("Leaderboard = %v, want [2 4]", st.Leaderboard)
	}
	if st.AverageScore == nil || *st.AverageScore != 3 {
		t.Errorf("AverageScore = %v, want 3", st.AverageScore)
	}
	if st.FastestTime == nil || *st.FastestTime != 4 {
		t.Errorf("FastestTime = %v, want 4", st.FastestTime)
	}
	if st.AverageTime == nil || *st.AverageTime != 7 {
		t.Errorf("AverageTime = %v, want 7", st.AverageTime)
	}

	top := e.Statistics(1)
	if len(top.Leaderboard) != 1 || top.Leaderboard[0] != 2 {
		t.Errorf("truncated Leaderboard = %v, want [2]", top.Leaderboard)
	}
	if top.TotalWins != 2 {
		t.Errorf("truncation must not change TotalWins, got %d", top.TotalWins)
	}

	// The snapshot is a copy.
	st.Leaderboard[0] = 99
	if again := e.Statistics(0); again.Leaderboard[0] != 2 {
		t.Error("Statistics leaked internal slice")
	}
}

func TestScoresAndDurationsStayAligned(t *testing.T) {
	e, _ := newTestEngine(1)
	for i := 0; i < 5; i++ {
		_, _ = e.StartRound(1)
		if i%2 == 0 {
			_, _ = e.SubmitGuess(1)
		} else {
			_, _ = e.Abandon()
		}
		if len(e.scores) != len(e.durations) {
			t.Fatalf("after round %d: %d scores vs %d durations", i, len(e.scores), len(e.durations))
		}
	}
}

func TestStartRoundFrom(t *testing.T) {
	e := New(WithRandom(fixedSource{target: 1}))
	_, _ = e.StartRoundFrom(fixedSource{target: 9}, 10)
	if e.round.target != 9 {
		t.Errorf("target = %d, want 9", e.round.target)
	}
	_, _ = e.StartRoundFrom(nil, 10)
	if e.round.target != 1 {
		t.Errorf("nil source should fall back to engine source, target = %d", e.round.target)
	}
}

func TestElapsed(t *testing.T) {
	e, clk := newTestEngine(3)
	_, _ = e.StartRound(3)
	clk.Advance(1500 * time.Millisecond)
	got, err := e.Elapsed()
	if err != nil {
		t.Fatal(err)
	}
	if got != 1.5 {
		t.Errorf("Elapsed = %v, want 1.5", got)
	}
}

type sequenceSource struct {
	targets []int
	i       int
}

func (s *sequenceSource) Intn(n int) int {
	t := s.targets[s.i%len(s.targets)]
	s.i++
	return t - 1
}
