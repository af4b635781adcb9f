package ranking

// Score maps a video's like and dislike counts to a value in (0, 1].
// Likes are floored at 1 so zero-like videos still rank by dislikes and the
// ratio is always defined. Negative dislikes count as 0.
func Score(likes, dislikes int64) float64 {
	effective := max(likes, 1)
	dislikes = max(dislikes, 0)
	return float64(effective) / float64(effective+dislikes)
}
