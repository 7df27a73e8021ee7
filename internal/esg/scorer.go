// Package esg scores text against fixed environmental, social and
// governance keyword tables.
package esg

import (
	"fmt"
	"slices"
	"strings"

	"syndicateiq/internal/models"
)

const (
	// CategoryCap is the maximum score of a single category.
	CategoryCap = 100
	// MaxTotal is the maximum total score over the three categories.
	MaxTotal = 3 * CategoryCap
)

// Scorer matches text against keyword tables. The zero value uses DefaultTables.
type Scorer struct {
	tables []Table
}

// NewScorer returns a Scorer over tables, or the defaults when none are given.
func NewScorer(tables ...Table) *Scorer {
	return &Scorer{tables: tables}
}

var defaultScorer = NewScorer()

// Score scores text with the default tables.
func Score(text string) models.ESGResult {
	return defaultScorer.Score(text)
}

// Score is a pure function of text. Matching is case-insensitive substring
// search; each keyword counts once no matter how often it appears.
func (s *Scorer) Score(text string) models.ESGResult {
	tables := s.tables
	if len(tables) == 0 {
		tables = DefaultTables()
	}
	lower := strings.ToLower(text)

	res := models.ESGResult{DetectedSignals: map[models.ESGCategory][]string{
		models.CategoryEnvironmental: {},
		models.CategorySocial:        {},
		models.CategoryGovernance:    {},
	}}
	for _, t := range tables {
		score, found := matchTable(lower, t)
		res.DetectedSignals[t.Category] = append(res.DetectedSignals[t.Category], found...)
		switch t.Category {
		case models.CategoryEnvironmental:
			res.Environmental += score
		case models.CategorySocial:
			res.Social += score
		case models.CategoryGovernance:
			res.Governance += score
		}
	}
	res.Environmental = min(res.Environmental, CategoryCap)
	res.Social = min(res.Social, CategoryCap)
	res.Governance = min(res.Governance, CategoryCap)

	res.TotalScore = res.Environmental + res.Social + res.Governance
	res.RiskLevel = RiskLevelFor(res.TotalScore)
	res.Insights = insights(res)
	return res
}

func matchTable(lower string, t Table) (int, []string) {
	score := 0
	found := []string{}
	for _, kw := range t.Keywords {
		phrase := strings.ToLower(kw.Phrase)
		if phrase == "" || slices.Contains(found, phrase) {
			continue
		}
		if strings.Contains(lower, phrase) {
			score += kw.Points
			found = append(found, phrase)
		}
	}
	slices.Sort(found)
	return min(score, CategoryCap), found
}

// RiskLevelFor maps a total score onto a risk label using the share of
// MaxTotal: at least 60% is LOW, at least 30% is MEDIUM, otherwise HIGH.
// A stronger ESG signal yields a lower label; the label names ESG
// deficiency risk.
func RiskLevelFor(total int) models.RiskLevel {
	switch {
	case total*10 >= MaxTotal*6:
		return models.RiskLow
	case total*10 >= MaxTotal*3:
		return models.RiskMedium
	default:
		return models.RiskHigh
	}
}

func insights(r models.ESGResult) []string {
	out := []string{
		categoryInsight("Environmental", r.Environmental, r.DetectedSignals[models.CategoryEnvironmental]),
		categoryInsight("Social", r.Social, r.DetectedSignals[models.CategorySocial]),
		categoryInsight("Governance", r.Governance, r.DetectedSignals[models.CategoryGovernance]),
	}
	switch r.RiskLevel {
	case models.RiskLow:
		out = append(out, fmt.Sprintf("Overall ESG profile is strong (%d/%d).", r.TotalScore, MaxTotal))
	case models.RiskMedium:
		out = append(out, fmt.Sprintf("Overall ESG profile is moderate (%d/%d); targeted diligence recommended.", r.TotalScore, MaxTotal))
	default:
		out = append(out, fmt.Sprintf("Overall ESG profile is weak (%d/%d); request further ESG documentation.", r.TotalScore, MaxTotal))
	}
	return out
}

func categoryInsight(name string, score int, signals []string) string {
	switch {
	case score >= 60:
		return fmt.Sprintf("%s: strong signals detected (%s).", name, strings.Join(signals, ", "))
	case score > 0:
		return fmt.Sprintf("%s: limited signals detected (%s).", name, strings.Join(signals, ", "))
	default:
		return fmt.Sprintf("%s: no signals detected.", name)
	}
}
