package service

import (
	"sort"
	"unicode/utf8"
)

// Пороги для общего префикса/суффикса моделей производителя (например, "dmc-"
// у Panasonic). Продавцы часто опускают такой префикс, поэтому он становится
// необязательной частью шаблона.
const (
	affixMinProducts = 10 // не меньше 10 товаров
	affixMinLen      = 2  // односимвольный префикс продавцы не опускают
	affixShareDenom  = 3  // не меньше трети товаров производителя
)

// AffixSet — необязательные сегменты моделей одного производителя.
type AffixSet map[string]struct{}

func (s AffixSet) Has(seg string) bool {
	_, ok := s[seg]
	return ok
}

// Sorted returns the affixes in lexical order.
func (s AffixSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for a := range s {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// AffixTable maps a folded manufacturer name to its affix set. It is built in
// the first pass over the catalog and only read afterwards.
type AffixTable map[string]AffixSet

func (t AffixTable) For(manufacturer string) AffixSet {
	return t[manufacturer]
}

// DetectAffixes считает первый и последний сегменты каждой модели (каждый товар
// учитывается один раз) и оставляет те, что проходят все три порога.
// Пустой список моделей даёт пустой набор.
func DetectAffixes(models []string) AffixSet {
	set := AffixSet{}
	if len(models) == 0 {
		return set
	}

	histogram := make(map[string]int)
	for _, m := range models {
		segs := splitSegments(m)
		if len(segs) == 0 {
			continue
		}
		first, last := segs[0], segs[len(segs)-1]
		histogram[first]++
		if last != first {
			histogram[last]++
		}
	}

	for seg, count := range histogram {
		if utf8.RuneCountInString(seg) >= affixMinLen &&
			count >= affixMinProducts &&
			count*affixShareDenom >= len(models) {
			set[seg] = struct{}{}
		}
	}
	return set
}
