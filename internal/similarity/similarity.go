package similarity

// Similarity returns the token overlap score of a and b in [0, 1].
//
// The shared stems are counted once each, however often they repeat in
// either input, while the denominator counts every token of both inputs.
// So Similarity(x, x) is 1 only when x has no repeated stem: "cat cat"
// against itself scores 1/3. Two inputs that normalize to nothing score 0.
func Similarity(a, b string) (float64, error) {
	ta, err := Normalize(a)
	if err != nil {
		return 0, err
	}
	tb, err := Normalize(b)
	if err != nil {
		return 0, err
	}
	return TokenSimilarity(ta, tb), nil
}

// TokenSimilarity is Similarity over already normalized token sequences.
func TokenSimilarity(a, b []string) float64 {
	shared := len(Intersection(a, b))
	denom := len(a) + len(b) - shared
	if denom <= 0 {
		return 0
	}
	return float64(shared) / float64(denom)
}

// Intersection returns the distinct tokens of a that also occur in b, in the
// order they first appear in a.
func Intersection(a, b []string) []string {
	var shared []string
	for _, x := range a {
		for _, y := range b {
			if x == y && !contains(shared, x) {
				shared = append(shared, x)
			}
		}
	}
	return shared
}

func contains(list []string, word string) bool {
	for _, w := range list {
		if w == word {
			return true
		}
	}
	return false
}
