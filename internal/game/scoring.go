package game

// Threshold fractions of the level are computed in integer tenths and
// twentieths so that e.g. ceil(30*0.1) is 3 and not 4. None of the
// intermediate values exceed level, so any level up to math.MaxInt is safe.

// TemperatureHint classifies a wrong guess by its distance to the target.
//
//	diff <= max(1, floor(level*0.05)) → hot
//	diff <= max(2, floor(level*0.2))  → warm
//	otherwise                         → cold
func TemperatureHint(diff, level int) Hint {
	if diff < 0 {
		diff = -diff
	}
	if diff <= max(1, level/20) {
		return HintHot
	}
	if diff <= max(2, level/5) {
		return HintWarm
	}
	return HintCold
}

// ScoreRating labels a win by how many attempts it took.
//
//	attempts <= ceil(level*0.1) → excellent
//	attempts <= ceil(level*0.3) → good
//	otherwise                   → keep practicing
func ScoreRating(attempts, level int) Rating {
	if attempts <= ceilDiv(level, 10) {
		return RatingExcellent
	}
	if attempts <= 3*(level/10)+ceilDiv(3*(level%10), 10) {
		return RatingGood
	}
	return RatingKeepPracticing
}

// ceilDiv returns ceil(a/b) for a >= 0, b > 0 without overflowing.
func ceilDiv(a, b int) int {
	q := a / b
	if a%b != 0 {
		q++
	}
	return q
}
