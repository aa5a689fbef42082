package semantic

import (
	"fmt"
	"math"
	"sort"
)

// Relation classifies how a candidate relates to the query.
type Relation int

const (
	RelationNone Relation = iota
	RelationEquivalent
	RelationNarrower
	RelationBroader
	RelationSibling
	RelationLexical
)

func (r Relation) String() string {
	switch r {
	case RelationEquivalent:
		return "equivalent"
	case RelationNarrower:
		return "narrower"
	case RelationBroader:
		return "broader"
	case RelationSibling:
		return "sibling"
	case RelationLexical:
		return "lexical"
	default:
		return "none"
	}
}

// Relation scores.
const (
	scoreEquivalent   = 1.0
	scoreNarrower     = 0.9
	scoreNarrowerMin  = 0.6
	scoreBroader      = 0.6
	scoreBroaderMin   = 0.4
	scoreSibling      = 0.3
	scoreDepthPenalty = 0.1
	lexicalWeight     = 0.85
)

// Candidate is one scored vocabulary entry.
type Candidate struct {
	Name       string
	Score      float64
	Relation   Relation
	Depth      int     // hierarchy distance for narrower/broader
	Similarity float64 // normalized Levenshtein similarity of the keys
}

// String renders the candidate for --explain style output.
func (c Candidate) String() string {
	if c.Depth > 0 {
		return fmt.Sprintf("%s %.2f %s/%d", c.Name, c.Score, c.Relation, c.Depth)
	}
	return fmt.Sprintf("%s %.2f %s", c.Name, c.Score, c.Relation)
}

// CandidateList is a ranked list of candidates.
type CandidateList []Candidate

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less sorts by score descending, then by name for determinism.
func (c CandidateList) Less(i, j int) bool {
	if c[i].Score != c[j].Score {
		return c[i].Score > c[j].Score
	}
	return c[i].Name < c[j].Name
}

// Best returns the best candidate, or nil if there are none.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}
	return &c[0]
}

// Top returns the top n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n >= len(c) {
		return c
	}
	return c[:n]
}

// AboveThreshold returns the candidates scoring at least threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var result CandidateList
	for _, cand := range c {
		if cand.Score >= threshold {
			result = append(result, cand)
		}
	}
	return result
}

// IsAmbiguous returns true if the top two candidates are within gap.
func (c CandidateList) IsAmbiguous(gap float64) bool {
	if len(c) < 2 {
		return false
	}
	return c[0].Score-c[1].Score < gap
}

// Tied returns the names of the candidates within gap of the best one.
func (c CandidateList) Tied(gap float64) []string {
	if len(c) == 0 {
		return nil
	}
	var names []string
	for _, cand := range c {
		if c[0].Score-cand.Score < gap {
			names = append(names, cand.Name)
		}
	}
	return names
}

// score computes a candidate's score relative to the query.
func score(q, c term, lexicalFloor float64) Candidate {
	rel, depth := relate(q, c)
	cand := Candidate{
		Name:       c.name,
		Relation:   rel,
		Depth:      depth,
		Score:      relationScore(rel, depth),
		Similarity: Similarity(q.key, c.key),
	}

	if cand.Similarity >= lexicalFloor {
		if lex := cand.Similarity * lexicalWeight; lex > cand.Score {
			cand.Score = lex
			cand.Relation = RelationLexical
			cand.Depth = 0
		}
	}
	return cand
}

func relationScore(rel Relation, depth int) float64 {
	switch rel {
	case RelationEquivalent:
		return scoreEquivalent
	case RelationNarrower:
		return max(round2(scoreNarrower-scoreDepthPenalty*float64(depth-1)), scoreNarrowerMin)
	case RelationBroader:
		return max(round2(scoreBroader-scoreDepthPenalty*float64(depth-1)), scoreBroaderMin)
	case RelationSibling:
		return scoreSibling
	default:
		return 0
	}
}

// round2 drops float noise from the depth penalty so thresholds compare
// exactly.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// rank scores every candidate and sorts the result.
func rank(q term, vocab []term, lexicalFloor float64) CandidateList {
	list := make(CandidateList, 0, len(vocab))
	for _, c := range vocab {
		list = append(list, score(q, c, lexicalFloor))
	}
	sort.Sort(list)
	return list
}
