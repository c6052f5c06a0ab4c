package service

import (
	"strings"

	"listing-matcher/internal/match/model"
)

// ResolveManufacturers определяет, у каких производителей искать товар для
// объявления. Обычно результат — один производитель, иногда несколько,
// пустой срез — производитель не распознан (это не ошибка).
func ResolveManufacturers(reg *Registry, l *model.Listing) []*model.Manufacturer {
	field := fold(l.Manufacturer)

	// (1) поле manufacturer совпадает с известным именем или начинается с него
	if m, ok := reg.FindByExactOrPrefix(field); ok {
		return []*model.Manufacturer{m}
	}

	// (2) известное имя содержится в поле ("canon" в "digital canon inc."),
	// либо поле — часть известного имени
	if field != "" {
		var (
			inside *model.Manufacturer
			around []*model.Manufacturer
		)
		for _, m := range reg.Manufacturers() {
			if m.Name == "" {
				continue
			}
			if strings.Contains(field, m.Name) {
				if inside == nil || len(m.Name) > len(inside.Name) {
					inside = m
				}
			} else if strings.Contains(m.Name, field) {
				around = append(around, m)
			}
		}
		if inside != nil {
			return []*model.Manufacturer{inside}
		}
		if len(around) > 0 {
			return around
		}
	}

	// (3) имя производителя или семейства где-то в заголовке
	return reg.ContainsSubstring(l.Title)
}
