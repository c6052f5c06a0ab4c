package service

import (
	"sort"

	"listing-matcher/internal/match/model"
)

// SelectBest выбирает лучшего кандидата: совпадение, которое начинается раньше
// всех; при равенстве — более длинное; при полном равенстве — товар, загруженный
// первым. Порядок входного среза не важен.
func SelectBest(cands []model.Candidate) (model.Candidate, bool) {
	if len(cands) == 0 {
		return model.Candidate{}, false
	}
	sorted := make([]model.Candidate, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.Length != b.Length {
			return a.Length > b.Length
		}
		return a.Product.Index < b.Product.Index
	})
	return sorted[0], true
}
