package roster

// sequencePoints maps a sequence level (S0..S6) to its weighted point value.
// Recomputed server-side on every submission; the client's own tally is never
// trusted.
var sequencePoints = map[int]int{
	0: 2,
	1: 4,
	2: 8,
	3: 10,
	4: 11,
	5: 12,
	6: 16,
}

// MaxSequenceLevel is the highest valid sequence level.
const MaxSequenceLevel = 6

// ScoreSequences recomputes a weighted box score from a submitted roster.
// Entries with unknown resonator names or out-of-range levels are dropped
// from both the score and the returned sanitized map rather than failing the
// whole submission.
func ScoreSequences(sequences map[string]int) (map[string]int, int) {
	clean := make(map[string]int, len(sequences))
	score := 0
	for name, level := range sequences {
		if !Known(name) {
			continue
		}
		pts, ok := sequencePoints[level]
		if !ok {
			continue
		}
		clean[name] = level
		score += pts
	}
	return clean, score
}
