package pipeline

import (
	"strings"

	"github.com/devicerevive/secondlife/internal/candidate"
)

// dedupeThreshold is the similarity ratio above which a later title is
// considered a duplicate of an earlier one.
const dedupeThreshold = 0.75

// Deduplicate drops candidates whose title is near-identical to one already
// seen. Input order is preserved and the first occurrence wins, so upstream
// ordering decides which duplicate survives. Titleless candidates are dropped.
func Deduplicate(cands []candidate.Candidate) []candidate.Candidate {
	var out []candidate.Candidate
	var seen []string
	for _, c := range cands {
		if c.Title == "" {
			continue
		}
		dupe := false
		for _, t := range seen {
			if similarity(c.Title, t) > dedupeThreshold {
				dupe = true
				break
			}
		}
		if !dupe {
			seen = append(seen, c.Title)
			out = append(out, c)
		}
	}
	return out
}

// similarity is a case-insensitive sequence-match ratio in [0,1]: twice the
// total length of the matching blocks over the combined length.
func similarity(a, b string) float64 {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	b2j := make(map[rune][]int, len(rb))
	for j, r := range rb {
		b2j[r] = append(b2j[r], j)
	}
	matched := matchTotal(ra, rb, 0, len(ra), 0, len(rb), b2j)
	return 2 * float64(matched) / float64(total)
}

// matchTotal sums the lengths of the matching blocks between a[alo:ahi] and
// b[blo:bhi]: find the longest common block, then recurse on both sides.
func matchTotal(a, b []rune, alo, ahi, blo, bhi int, b2j map[rune][]int) int {
	besti, bestj, bestsize := longestMatch(a, alo, ahi, blo, bhi, b2j)
	if bestsize == 0 {
		return 0
	}
	return bestsize +
		matchTotal(a, b, alo, besti, blo, bestj, b2j) +
		matchTotal(a, b, besti+bestsize, ahi, bestj+bestsize, bhi, b2j)
}

// longestMatch finds the longest block common to a[alo:ahi] and b[blo:bhi].
// Ties go to the earliest position in a, then in b.
func longestMatch(a []rune, alo, ahi, blo, bhi int, b2j map[rune][]int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newj2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}
	return besti, bestj, bestsize
}
