package bench

import "strings"

// Metrics records which expected phrases a response contained
type Metrics struct {
	MustInclude []string `json:"must_include"`
	MustHits    []string `json:"must_hits"`
	ExpectedAny []string `json:"expected_any"`
	AnyHits     []string `json:"any_hits"`
}

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Score grades a response against a probe. With must_include every phrase
// must appear; otherwise with expected_any one phrase is enough. A probe with
// neither scores 0.
func Score(response string, probe Probe) (float64, Metrics) {
	norm := normalize(response)
	m := Metrics{
		MustInclude: normalizeAll(probe.MustInclude),
		MustHits:    []string{},
		ExpectedAny: normalizeAll(probe.ExpectedAny),
		AnyHits:     []string{},
	}

	for _, phrase := range m.MustInclude {
		if strings.Contains(norm, phrase) {
			m.MustHits = append(m.MustHits, phrase)
		}
	}
	for _, phrase := range m.ExpectedAny {
		if strings.Contains(norm, phrase) {
			m.AnyHits = append(m.AnyHits, phrase)
		}
	}

	switch {
	case len(m.MustInclude) > 0:
		if len(m.MustHits) == len(m.MustInclude) {
			return 1, m
		}
		return 0, m
	case len(m.ExpectedAny) > 0:
		if len(m.AnyHits) > 0 {
			return 1, m
		}
		return 0, m
	default:
		return 0, m
	}
}

func normalizeAll(phrases []string) []string {
	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		out = append(out, normalize(p))
	}
	return out
}

// Aggregate computes score_<type> means per probe type and score_overall
func Aggregate(probes []ProbeResult) map[string]float64 {
	totals := map[string]float64{}
	counts := map[string]int{}
	var sum float64
	for _, p := range probes {
		totals[p.Type] += p.Score
		counts[p.Type]++
		sum += p.Score
	}

	scores := make(map[string]float64, len(totals)+1)
	for t, total := range totals {
		scores["score_"+t] = total / float64(counts[t])
	}
	scores["score_overall"] = 0
	if len(probes) > 0 {
		scores["score_overall"] = sum / float64(len(probes))
	}
	return scores
}
