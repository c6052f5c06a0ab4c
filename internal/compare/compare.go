// Package compare сравнивает два набора результатов сопоставления
// (файлы или сохранённые прогоны) и показывает, какие листинги ушли
// от продукта и какие пришли.
package compare

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"listing-matcher/internal/match/model"
	"listing-matcher/internal/utils"
)

// ProductDiff — расхождения по одному продукту. Removed есть только в A,
// Added только в B; внутри каждого списка порядок по цене.
type ProductDiff struct {
	ProductName string   `json:"product_name"`
	Removed     []string `json:"removed,omitempty"`
	Added       []string `json:"added,omitempty"`
}

// listingKey — листинги равны, если совпали заголовок и производитель
// без учёта регистра, валюта и цена.
type listingKey struct {
	title, manufacturer, currency, price string
}

type entry struct {
	key     listingKey
	title   string
	price   float64
	matched bool
}

type product struct {
	name     string
	listings []*entry
}

// Diff сопоставляет листинги один к одному внутри одноимённых продуктов.
// Продукты идут в порядке A, затем те, что есть только в B.
// Продукты без расхождений в результат не попадают.
func Diff(a, b []model.ProductResult) ([]ProductDiff, error) {
	pa, err := index(a)
	if err != nil {
		return nil, fmt.Errorf("results A: %w", err)
	}
	pb, err := index(b)
	if err != nil {
		return nil, fmt.Errorf("results B: %w", err)
	}
	byName := make(map[string]*product, len(pb))
	for _, p := range pb {
		byName[p.name] = p
	}
	seen := make(map[string]bool, len(pa))

	var out []ProductDiff
	for _, p := range pa {
		seen[p.name] = true
		q := byName[p.name]
		if q != nil {
			pair(p.listings, q.listings)
		}
		d := ProductDiff{ProductName: p.name, Removed: unmatched(p.listings)}
		if q != nil {
			d.Added = unmatched(q.listings)
		}
		if len(d.Removed) > 0 || len(d.Added) > 0 {
			out = append(out, d)
		}
	}
	for _, q := range pb {
		if seen[q.name] {
			continue
		}
		if added := unmatched(q.listings); len(added) > 0 {
			out = append(out, ProductDiff{ProductName: q.name, Added: added})
		}
	}
	return out, nil
}

// WriteDiff пишет diff в текстовом виде:
//
//	name:
//	- title
//	+ title
func WriteDiff(w io.Writer, diffs []ProductDiff) error {
	bw := bufio.NewWriter(w)
	for _, d := range diffs {
		fmt.Fprintf(bw, "%s:\n", d.ProductName)
		for _, t := range d.Removed {
			fmt.Fprintf(bw, "- %s\n", t)
		}
		for _, t := range d.Added {
			fmt.Fprintf(bw, "+ %s\n", t)
		}
	}
	return bw.Flush()
}

func pair(as, bs []*entry) {
	for _, x := range as {
		for _, y := range bs {
			if y.matched {
				continue
			}
			if x.key == y.key {
				x.matched, y.matched = true, true
				break
			}
		}
	}
}

func unmatched(es []*entry) []string {
	var out []string
	for _, e := range es {
		if !e.matched {
			out = append(out, e.title)
		}
	}
	return out
}

// index разбирает листинги. Повтор имени продукта: побеждает последняя строка.
func index(results []model.ProductResult) ([]*product, error) {
	pos := make(map[string]int, len(results))
	var out []*product
	for _, r := range results {
		p := &product{name: r.ProductName}
		for i, raw := range r.Listings {
			e, err := parseEntry(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: listing %d: %w", r.ProductName, i, err)
			}
			p.listings = append(p.listings, e)
		}
		sort.SliceStable(p.listings, func(i, j int) bool {
			return p.listings[i].price < p.listings[j].price
		})
		if i, ok := pos[p.name]; ok {
			out[i] = p
			continue
		}
		pos[p.name] = len(out)
		out = append(out, p)
	}
	return out, nil
}

func parseEntry(raw json.RawMessage) (*entry, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	title := text(m["title"])
	price, ok := utils.ParsePrice(m["price"])
	if !ok {
		price = math.Inf(1) // без цены — в конец
	}
	return &entry{
		key: listingKey{
			title:        strings.ToLower(title),
			manufacturer: strings.ToLower(text(m["manufacturer"])),
			currency:     text(m["currency"]),
			price:        text(m["price"]),
		},
		title: title,
		price: price,
	}, nil
}

func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
