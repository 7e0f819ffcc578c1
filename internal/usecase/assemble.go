package usecase

import (
	"sort"
	"strings"

	"InvestingIdeas/internal/domain"
	"InvestingIdeas/internal/ports"
)

// MergeCompanies cleans candidates in order and keeps the first occurrence of
// each name. The seen set is local to one idea.
func MergeCompanies(candidates []domain.Candidate, normalizer ports.Normalizer) []string {
	companies := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		name, ok := normalizer.Clean(c)
		if !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		companies = append(companies, name)
	}
	return companies
}

// SortRecords orders records by title, case-insensitively. Ties keep their
// discovery order.
func SortRecords(records []domain.IdeaRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return strings.ToLower(records[i].Title) < strings.ToLower(records[j].Title)
	})
}
