// SPDX-License-Identifier: Apache-2.0

package classify

import "github.com/lithammer/fuzzysearch/fuzzy"

// similarityRatio computes a Ratcliff/Obershelp-style similarity ratio
// between a and b: 2*M / (len(a)+len(b)), where M is the length of the
// longest common subsequence of a and b. This mirrors the
// get_highest_table_similarity_score resolver described by the original
// schemas/tables.py (its implementation was not present in the retrieved
// source, only its call site; the ratio formula and 0.7 threshold below
// are taken from the behavior documented alongside that call site).
//
// No corpus dependency implements Ratcliff/Obershelp specifically:
// lithammer/fuzzysearch scores Levenshtein-style edit distance, which
// ranks candidates differently for this resolver's purpose (a stem that
// is a clean substring of a much longer table name scores high under
// LCS-ratio but low under edit distance), so it is used only as a cheap
// pre-filter in highestSimilarityTable (fuzzy.MatchFold rules out
// candidates that don't even contain stem's runes as an ordered
// subsequence), not as the ranking itself.
func similarityRatio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	m := longestCommonSubsequence(a, b)
	return 2 * float64(m) / float64(len(a)+len(b))
}

// longestCommonSubsequence returns the length of the longest common
// subsequence of a and b via the standard O(len(a)*len(b)) DP table.
func longestCommonSubsequence(a, b string) int {
	rows, cols := len(a)+1, len(b)+1
	dp := make([][]int, rows)
	for i := range dp {
		dp[i] = make([]int, cols)
	}
	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			if a[i-1] == b[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else if dp[i-1][j] >= dp[i][j-1] {
				dp[i][j] = dp[i-1][j]
			} else {
				dp[i][j] = dp[i][j-1]
			}
		}
	}
	return dp[rows-1][cols-1]
}

// similarityThreshold is the minimum ratio at which a candidate table
// name is considered a match for a foreign key stem.
const similarityThreshold = 0.7

// highestSimilarityTable returns the name of the candidate table in
// candidates whose name has the highest similarity ratio against stem,
// excluding self, and only if that ratio is >= similarityThreshold. Ties
// are left unresolved (returns ok == false), matching the original's
// behavior of never disambiguating between equally-likely candidates.
func highestSimilarityTable(stem string, candidates []string, self string) (string, bool) {
	best := ""
	bestRatio := -1.0
	tied := false

	for _, candidate := range candidates {
		if candidate == self {
			continue
		}
		if !fuzzy.MatchFold(stem, candidate) {
			continue
		}
		ratio := similarityRatio(stem, candidate)
		if ratio < similarityThreshold {
			continue
		}
		switch {
		case ratio > bestRatio:
			best = candidate
			bestRatio = ratio
			tied = false
		case ratio == bestRatio:
			tied = true
		}
	}

	if best == "" || tied {
		return "", false
	}
	return best, true
}
