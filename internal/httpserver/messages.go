package httpserver

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/robalobadob/numberguess/internal/game"
)

// properName title-cases each word of a player name ("jOHN smith" → "John Smith").
func properName(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	// Casers keep state; one per call.
	return cases.Title(language.English).String(s)
}

func startMessage(name string, level int) string {
	if name != "" {
		return fmt.Sprintf("%s, guess a number from 1-%d", name, level)
	}
	return fmt.Sprintf("Guess a number from 1-%d", level)
}

func hintText(h game.Hint) string {
	switch h {
	case game.HintHot:
		return "🔥 Hot!"
	case game.HintWarm:
		return "Warm."
	default:
		return "Cold."
	}
}

func ratingText(r game.Rating) string {
	switch r {
	case game.RatingExcellent:
		return "Excellent job"
	case game.RatingGood:
		return "Good job"
	default:
		return "Keep practicing"
	}
}

func outcomeMessage(name string, level int, out game.Outcome) string {
	switch out.Kind {
	case game.OutcomeTooLow:
		return "Too low! " + hintText(out.Hint)
	case game.OutcomeTooHigh:
		return "Too high! " + hintText(out.Hint)
	case game.OutcomeCorrect:
		if name == "" {
			name = "Player"
		}
		return fmt.Sprintf("You got it %s! It took you %d tries. %s. Press play to play again.",
			name, out.Attempts, ratingText(out.Rating))
	default:
		return fmt.Sprintf("Enter a VALID number 1-%d", level)
	}
}

func abandonMessage(res game.AbandonResult) string {
	return fmt.Sprintf("You gave up! The number was %d. Press play to try again.", res.Target)
}
