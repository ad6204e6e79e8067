package funds

import (
	"sort"

	"policyfund-workers/internal/models"
)

// ConditionResult is one evaluated condition.
type ConditionResult struct {
	Label    string `json:"label"`
	Required string `json:"required"`
	Actual   string `json:"actual"`
	Passed   bool   `json:"passed"`
}

// Result is the evaluation of one fund against one profile.
type Result struct {
	Name         string            `json:"name"`
	Category     Category          `json:"category"`
	MaxAmount    int64             `json:"max_amount"`
	InterestRate string            `json:"interest_rate"`
	Requirements string            `json:"requirements"`
	Conditions   []ConditionResult `json:"conditions"`
	Eligible     bool              `json:"eligible"`
	PassCount    int               `json:"pass_count"`
	TotalCount   int               `json:"total_count"`
}

// PassRatio is PassCount over TotalCount, 0 for a fund with no conditions.
func (r Result) PassRatio() float64 {
	if r.TotalCount == 0 {
		return 0
	}
	return float64(r.PassCount) / float64(r.TotalCount)
}

// Evaluate runs every fund of c against p and returns one result per fund:
// eligible funds first, then by pass ratio descending. Ties keep catalogue order.
func Evaluate(c *Catalogue, p models.Profile) []Result {
	results := make([]Result, 0, len(c.funds))
	for _, def := range c.funds {
		results = append(results, evaluateOne(def, p))
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Eligible != results[j].Eligible {
			return results[i].Eligible
		}
		return results[i].PassRatio() > results[j].PassRatio()
	})
	return results
}

func evaluateOne(def Definition, p models.Profile) Result {
	r := Result{
		Name:         def.Name,
		Category:     def.Category,
		MaxAmount:    def.MaxAmount,
		InterestRate: def.InterestRate,
		Requirements: def.Requirements,
		Conditions:   make([]ConditionResult, 0, len(def.Conditions)),
		TotalCount:   len(def.Conditions),
	}
	for _, cond := range def.Conditions {
		passed, actual := cond.Evaluate(p)
		if passed {
			r.PassCount++
		}
		r.Conditions = append(r.Conditions, ConditionResult{
			Label:    cond.Label,
			Required: cond.Required,
			Actual:   actual,
			Passed:   passed,
		})
	}
	r.Eligible = r.TotalCount > 0 && r.PassCount == r.TotalCount
	return r
}

// Eligible filters results down to fully eligible funds, keeping order.
func Eligible(results []Result) []Result {
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if r.Eligible {
			out = append(out, r)
		}
	}
	return out
}

// ClosestMiss returns the best-ranked ineligible fund, if any.
func ClosestMiss(results []Result) (Result, bool) {
	for _, r := range results {
		if !r.Eligible {
			return r, true
		}
	}
	return Result{}, false
}

// Summary counts results for logging.
type Summary struct {
	Total    int `json:"total"`
	Eligible int `json:"eligible"`
	Partial  int `json:"partial"`
	None     int `json:"none"`
}

func Summarise(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch {
		case r.Eligible:
			s.Eligible++
		case r.PassCount > 0:
			s.Partial++
		default:
			s.None++
		}
	}
	return s
}
