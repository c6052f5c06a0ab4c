package service

import (
	"fmt"

	"github.com/rs/zerolog"

	"listing-matcher/internal/match/model"
)

// Catalog — товары, реестр производителей и скомпилированные шаблоны.
// Строится один раз и дальше только читается.
type Catalog struct {
	Registry *Registry
	Affixes  AffixTable
	Products []*model.Product
	patterns []*Pattern // по Product.Index
}

// BuildCatalog собирает каталог в два прохода: сначала реестр и таблица
// аффиксов по производителям, затем шаблон каждого товара. Пустая модель —
// ошибка входных данных, сборка прерывается.
func BuildCatalog(products []*model.Product, logger zerolog.Logger) (*Catalog, error) {
	c := &Catalog{
		Registry: NewRegistry(),
		Affixes:  make(AffixTable),
		Products: products,
		patterns: make([]*Pattern, len(products)),
	}

	// 1) реестр производителей и статистика по моделям
	for i, p := range products {
		p.Index = i
		c.Registry.AddProduct(p)
	}
	for _, m := range c.Registry.Manufacturers() {
		models := make([]string, 0, len(m.Products))
		for _, p := range m.Products {
			models = append(models, p.Model)
		}
		set := DetectAffixes(models)
		c.Affixes[m.Name] = set
		for _, a := range set.Sorted() {
			logger.Debug().
				Str("manufacturer", m.Name).
				Str("affix", a).
				Int("products", len(m.Products)).
				Msg("affix marked optional")
		}
	}

	// 2) шаблоны
	for i, p := range products {
		pat, err := CompileModel(p.Model, p.Family, c.Affixes.For(fold(p.Manufacturer)))
		if err != nil {
			return nil, fmt.Errorf("product %d (%q): %w", i+1, p.Name, err)
		}
		c.patterns[i] = pat
	}

	c.Registry.Freeze()

	logger.Info().
		Int("products", len(products)).
		Int("manufacturers", c.Registry.Len()).
		Msg("catalog built")
	return c, nil
}

// Pattern returns the compiled pattern of a catalog product.
func (c *Catalog) Pattern(p *model.Product) *Pattern {
	if p == nil || p.Index < 0 || p.Index >= len(c.patterns) {
		return nil
	}
	return c.patterns[p.Index]
}

// MatchListing прогоняет одно объявление через весь конвейер. Объявление не
// изменяется; если Searchable пуст, заголовок нормализуется на месте вызова.
func (c *Catalog) MatchListing(l *model.Listing) (model.Candidate, model.Outcome) {
	title := l.Searchable
	if title == "" {
		title = NormalizeTitle(l.Title)
	}

	mans := ResolveManufacturers(c.Registry, l)
	if len(mans) == 0 {
		return model.Candidate{}, model.OutcomeUnknownManufacturer
	}

	var cands []model.Candidate
	for _, m := range mans {
		for _, p := range m.Products {
			if cand, ok := Evaluate(p, c.patterns[p.Index], title); ok {
				cands = append(cands, cand)
			}
		}
	}

	best, ok := SelectBest(cands)
	if !ok {
		return model.Candidate{}, model.OutcomeUnknownModel
	}
	return best, model.OutcomeMatched
}
