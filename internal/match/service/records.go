package service

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"listing-matcher/internal/match/model"
)

// Имена полей. Альтернативы через "|": JSON-файлы используют ключи как есть,
// у таблиц заголовки бывают любыми ("Наименование", "Product Name").
const (
	keyProductName  = "product_name|name|product|наименование"
	keyManufacturer = "manufacturer|brand|maker|производитель"
	keyFamily       = "family|series|серия"
	keyModel        = "model|модель"
	keyTitle        = "title|наименование|name"
)

var reHeaderJunk = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// ProductsFromRecords переводит записи загрузчика в товары. Запись без модели —
// ошибка с номером строки.
func ProductsFromRecords(recs []map[string]any) ([]*model.Product, error) {
	out := make([]*model.Product, 0, len(recs))
	for i, rec := range recs {
		p := &model.Product{
			Index:        i,
			Name:         strings.TrimSpace(fieldString(rec, keyProductName)),
			Manufacturer: lower(strings.TrimSpace(fieldString(rec, keyManufacturer))),
			Family:       lower(strings.TrimSpace(fieldString(rec, keyFamily))),
			Model:        lower(strings.TrimSpace(fieldString(rec, keyModel))),
		}
		if p.Model == "" {
			return nil, fmt.Errorf("product %d: %w", i+1, model.ErrEmptyModel)
		}
		if p.Name == "" {
			p.Name = strings.TrimSpace(p.Manufacturer + " " + p.Model)
		}
		raw, err := rawRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", i+1, err)
		}
		p.Raw = raw
		out = append(out, p)
	}
	return out, nil
}

// ListingsFromRecords переводит записи загрузчика в объявления.
func ListingsFromRecords(recs []map[string]any) ([]*model.Listing, error) {
	out := make([]*model.Listing, 0, len(recs))
	for i, rec := range recs {
		l := &model.Listing{
			Index:        i,
			Title:        lower(strings.TrimSpace(fieldString(rec, keyTitle))),
			Manufacturer: lower(strings.TrimSpace(fieldString(rec, keyManufacturer))),
		}
		if l.Title == "" {
			return nil, fmt.Errorf("listing %d: %w", i+1, model.ErrEmptyTitle)
		}
		raw, err := rawRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("listing %d: %w", i+1, err)
		}
		l.Raw = raw
		out = append(out, l)
	}
	return out, nil
}

// rawRecord: исходная строка JSON Lines, если загрузчик её сохранил; для
// таблиц запись собирается заново (ключи по алфавиту).
func rawRecord(rec map[string]any) (json.RawMessage, error) {
	if raw, ok := rec[model.RawKey].(json.RawMessage); ok {
		return raw, nil
	}
	return json.Marshal(rec)
}

func fieldString(rec map[string]any, want string) string {
	k := resolveKey(rec, want)
	if k == "" {
		return ""
	}
	return asString(rec[k])
}

func asString(v any) string {
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

// нормализуем имя колонки: нижний регистр, ё→е, служебные символы → пробел
func normHeaderKey(s string) string {
	s = lower(strings.TrimSpace(s))
	s = strings.NewReplacer("\u00A0", " ", "\u202F", " ", "ё", "е").Replace(s) // NBSP/NNBSP
	s = reHeaderJunk.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// resolveKey ищет реальный ключ записи по желаемому имени. Альтернативы
// проверяются по порядку: сначала точное совпадение, затем после нормализации
// ("Product Name" → "product name" == "product_name" → "product name").
func resolveKey(rec map[string]any, want string) string {
	alts := strings.Split(want, "|")
	for i := range alts {
		alts[i] = strings.TrimSpace(alts[i])
	}

	// 1) как есть
	for _, a := range alts {
		if _, ok := rec[a]; ok {
			return a
		}
	}

	// 2) нормализованные имена; альтернатива раньше в списке важнее
	keys := make([]string, 0, len(rec))
	for k := range rec {
		if k != model.RawKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	norm := make(map[string]string, len(rec))
	for _, k := range keys {
		if n := normHeaderKey(k); norm[n] == "" {
			norm[n] = k
		}
	}
	for _, a := range alts {
		if k, ok := norm[normHeaderKey(a)]; ok {
			return k
		}
	}
	return ""
}
