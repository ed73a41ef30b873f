package pattern

// heuristicConfidence scores a pattern extraction by how many of the recognizers matched.
// Text length adds a little, since very short documents rarely carry every field.
func heuristicConfidence(text string, fields map[string]any) float64 {
	score := 0.2 // base
	for _, weight := range []struct {
		field string
		w     float64
	}{
		{"company_name", 0.15},
		{"document_date", 0.15},
		{"total_amount", 0.2},
		{"currency", 0.1},
		{"category", 0.1},
	} {
		if _, ok := fields[weight.field]; ok {
			score += weight.w
		}
	}
	if len(text) > 120 {
		score += 0.1
	} // enough content
	if score > 1.0 {
		score = 1.0
	}
	return score
}
