package service

import (
	"strings"
	"unicode/utf8"

	"listing-matcher/internal/match/model"
)

// Evaluate сопоставляет один товар с нормализованным заголовком. Сначала
// целиком по шаблону модели; если совпадения нет или оно не прошло проверку,
// то по отдельным токенам. false означает "нет совпадения", а не ошибку.
func Evaluate(p *model.Product, pat *Pattern, title string) (model.Candidate, bool) {
	if sp, ok := pat.find(title); ok {
		text := sp.text(title)
		if n := utf8.RuneCountInString(text); sane(pat, text, n, sp.optionalHit) {
			return model.Candidate{Product: p, Start: sp.start, Length: n, Text: text}, true
		}
	}

	if len(pat.Tokens) == 0 {
		return model.Candidate{}, false
	}

	var (
		start    = len(title)
		amount   int
		parts    []string
		optional bool
	)
	for _, tok := range pat.Tokens {
		sp, ok := tok.pattern.find(title)
		if !ok {
			if tok.Required {
				return model.Candidate{}, false
			}
			continue
		}
		if sp.end == sp.start {
			continue
		}
		part := sp.text(title)
		amount += utf8.RuneCountInString(part)
		start = min(start, sp.start)
		parts = append(parts, part)
		if !tok.Required {
			optional = true
		}
	}

	text := strings.Join(parts, " ")
	if !sane(pat, text, amount, optional) {
		return model.Candidate{}, false
	}
	return model.Candidate{Product: p, Start: start, Length: amount, Text: text}, true
}

// sane отсекает слишком слабые совпадения:
//   - одно короткое число (до трёх цифр) без необязательных частей, если только
//     сама модель не такое число и семейства у товара нет;
//   - меньше двух символов (length — в символах, не в байтах).
func sane(pat *Pattern, text string, length int, optionalHit bool) bool {
	if !optionalHit && isShortNumber(text) && !pat.BareNumber {
		return false
	}
	return length >= 2
}
