package similarity

// LevenshteinDistance calculates the minimum number of single-character edits
// (insertions, deletions, or substitutions) required to change one string into another.
// Distances are counted in runes.
func LevenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	runesA := []rune(a)
	runesB := []rune(b)
	lenA := len(runesA)
	lenB := len(runesB)
	if lenA == 0 {
		return lenB
	}
	if lenB == 0 {
		return lenA
	}

	// Two rows of the matrix are enough.
	prev := make([]int, lenB+1)
	curr := make([]int, lenB+1)
	for j := 0; j <= lenB; j++ {
		prev[j] = j
	}

	for i := 1; i <= lenA; i++ {
		curr[0] = i
		for j := 1; j <= lenB; j++ {
			cost := 0
			if runesA[i-1] != runesB[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[lenB]
}

// EditSimilarity returns 1 - distance/longest for a and b compared
// case-insensitively. Two empty strings are identical and score 1.
func EditSimilarity(a, b string) float64 {
	a = lower(a)
	b = lower(b)
	longest := max(utf8Len(a), utf8Len(b))
	if longest == 0 {
		return 1.0
	}
	return float64(longest-LevenshteinDistance(a, b)) / float64(longest)
}

func utf8Len(s string) int {
	return len([]rune(s))
}
