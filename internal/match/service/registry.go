package service

import (
	"strings"
	"unicode/utf8"

	aho "github.com/petar-dambovaliev/aho-corasick"

	"listing-matcher/internal/match/model"
)

// Registry — реестр производителей каталога. Заполняется при загрузке товаров,
// после Freeze только читается и может использоваться из нескольких горутин.
type Registry struct {
	byName map[string]*model.Manufacturer
	order  []*model.Manufacturer

	// автомат Ахо–Корасик по именам производителей и семейств
	automaton aho.AhoCorasick
	needles   []*model.Manufacturer // индекс шаблона → производитель
	built     bool
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*model.Manufacturer)}
}

// Register добавляет производителя, если его ещё нет (без учёта регистра),
// и возвращает запись реестра.
func (r *Registry) Register(name string) *model.Manufacturer {
	key := fold(name)
	if m, ok := r.byName[key]; ok {
		return m
	}
	m := &model.Manufacturer{Name: key}
	r.byName[key] = m
	r.order = append(r.order, m)
	return m
}

// AddProduct привязывает товар к производителю и запоминает его семейство
// (и вариант без дефиса).
func (r *Registry) AddProduct(p *model.Product) *model.Manufacturer {
	m := r.Register(p.Manufacturer)
	m.Products = append(m.Products, p)
	if fam := fold(p.Family); fam != "" {
		addFamily(m, fam)
		if strings.Contains(fam, "-") {
			addFamily(m, strings.ReplaceAll(fam, "-", ""))
		}
	}
	return m
}

func addFamily(m *model.Manufacturer, fam string) {
	for _, f := range m.Families {
		if f == fam {
			return
		}
	}
	m.Families = append(m.Families, fam)
}

// Freeze строит автомат для поиска подстрок. Повторный вызов перестраивает его.
func (r *Registry) Freeze() {
	var patterns []string
	r.needles = r.needles[:0]
	for _, m := range r.order {
		if m.Name != "" {
			patterns = append(patterns, m.Name)
			r.needles = append(r.needles, m)
		}
		for _, f := range m.Families {
			patterns = append(patterns, f)
			r.needles = append(r.needles, m)
		}
	}
	r.built = len(patterns) > 0
	if !r.built {
		return
	}
	builder := aho.NewAhoCorasickBuilder(aho.Opts{
		DFA: true,
	})
	r.automaton = builder.Build(patterns)
}

// Lookup: точное совпадение имени без учёта регистра.
func (r *Registry) Lookup(name string) (*model.Manufacturer, bool) {
	key := fold(name)
	if key == "" {
		return nil, false
	}
	m, ok := r.byName[key]
	return m, ok
}

// FindByExactOrPrefix возвращает производителя, имя которого совпадает с text
// или стоит в его начале целым словом ("canon" для "canon canada inc.").
// При нескольких подходящих побеждает самое длинное имя.
func (r *Registry) FindByExactOrPrefix(text string) (*model.Manufacturer, bool) {
	key := fold(text)
	if key == "" {
		return nil, false
	}
	if m, ok := r.byName[key]; ok {
		return m, true
	}
	var best *model.Manufacturer
	for _, m := range r.order {
		if m.Name == "" || !strings.HasPrefix(key, m.Name) {
			continue
		}
		next, _ := utf8.DecodeRuneInString(key[len(m.Name):])
		if isWordRune(next) {
			continue
		}
		if best == nil || len(m.Name) > len(best.Name) {
			best = m
		}
	}
	return best, best != nil
}

// ContainsSubstring возвращает всех производителей, чьё имя или известное
// семейство встречается в text, в порядке регистрации.
func (r *Registry) ContainsSubstring(text string) []*model.Manufacturer {
	if !r.built || text == "" {
		return nil
	}
	found := make(map[*model.Manufacturer]bool)
	iter := r.automaton.IterOverlappingByte([]byte(fold(text)))
	for next := iter.Next(); next != nil; next = iter.Next() {
		found[r.needles[next.Pattern()]] = true
	}
	if len(found) == 0 {
		return nil
	}
	out := make([]*model.Manufacturer, 0, len(found))
	for _, m := range r.order {
		if found[m] {
			out = append(out, m)
		}
	}
	return out
}

// Manufacturers returns every registered manufacturer in registration order.
func (r *Registry) Manufacturers() []*model.Manufacturer {
	return r.order
}

func (r *Registry) Len() int { return len(r.order) }
