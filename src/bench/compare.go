package bench

import (
	"sort"

	"github.com/aymanbagabas/go-udiff"

	"github.com/elee1766/chatledger/src/storage"
)

// ProbeDelta pairs the same probe across two runs
type ProbeDelta struct {
	ProbeID string   `json:"probe_id"`
	ScoreA  *float64 `json:"score_a"`
	ScoreB  *float64 `json:"score_b"`
	Delta   float64  `json:"delta"`
	// Diff is a unified diff of the two responses, empty when they match
	Diff string `json:"diff,omitempty"`
}

// Comparison is the difference between two bench runs
type Comparison struct {
	RunA   string             `json:"run_a"`
	RunB   string             `json:"run_b"`
	Scores map[string]float64 `json:"score_deltas"`
	Probes []ProbeDelta       `json:"probes"`
}

// Compare pairs probes of two runs by probe id. Deltas are B minus A; a probe
// missing from one run has a nil score there and no delta.
func Compare(a, b *storage.BenchRunDetail) *Comparison {
	cmp := &Comparison{
		RunA:   a.ID,
		RunB:   b.ID,
		Scores: map[string]float64{},
		Probes: []ProbeDelta{},
	}

	for metric, vb := range b.Scores {
		if va, ok := a.Scores[metric]; ok {
			cmp.Scores[metric] = vb - va
		}
	}

	byID := map[string]*ProbeDelta{}
	responses := map[string][2]string{}
	for _, p := range a.Probes {
		score := p.Score
		byID[p.ProbeID] = &ProbeDelta{ProbeID: p.ProbeID, ScoreA: &score}
		responses[p.ProbeID] = [2]string{p.Response, ""}
	}
	for _, p := range b.Probes {
		score := p.Score
		d, ok := byID[p.ProbeID]
		if !ok {
			d = &ProbeDelta{ProbeID: p.ProbeID}
			byID[p.ProbeID] = d
		}
		d.ScoreB = &score
		r := responses[p.ProbeID]
		r[1] = p.Response
		responses[p.ProbeID] = r
	}

	for id, d := range byID {
		if d.ScoreA != nil && d.ScoreB != nil {
			d.Delta = *d.ScoreB - *d.ScoreA
			r := responses[id]
			if r[0] != r[1] {
				d.Diff = udiff.Unified(a.ID+"/"+id, b.ID+"/"+id, withNewline(r[0]), withNewline(r[1]))
			}
		}
		cmp.Probes = append(cmp.Probes, *d)
	}
	sort.Slice(cmp.Probes, func(i, j int) bool {
		return cmp.Probes[i].ProbeID < cmp.Probes[j].ProbeID
	})
	return cmp
}

func withNewline(s string) string {
	if s == "" || s[len(s)-1] == '\n' {
		return s
	}
	return s + "\n"
}
