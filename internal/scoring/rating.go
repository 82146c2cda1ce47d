package scoring

// ratingBand maps a minimum percent to its praise string. Bands are checked
// top-down, so the table is a total, tie-free function of percent.
type ratingBand struct {
	min   int
	label string
}

var ratingBands = []ratingBand{
	{100, "Perfect! You're a genius!"},
	{95, "Outstanding!"},
	{90, "Excellent work!"},
	{85, "Very impressive!"},
	{80, "Great job!"},
	{75, "Well done!"},
	{70, "Good effort!"},
	{65, "You're getting there!"},
	{60, "Fair try!"},
	{55, "Needs improvement!"},
	{50, "Just made it!"},
}

// Rating returns the qualitative label for a percent score.
func Rating(percent int) string {
	for _, band := range ratingBands {
		if percent >= band.min {
			return band.label
		}
	}
	return "Keep practicing!"
}
