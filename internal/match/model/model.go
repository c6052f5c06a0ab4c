package model

import (
	"encoding/json"
	"time"
)

// Product — запись каталога. Создаётся один раз при загрузке и дальше не меняется.
type Product struct {
	Index        int             // позиция во входных данных (порядок загрузки)
	Name         string          // product_name, идентификатор в выходном файле
	Manufacturer string          // в нижнем регистре
	Family       string          // в нижнем регистре, может быть пустым
	Model        string          // в нижнем регистре, обязательно
	Raw          json.RawMessage // исходная запись целиком
}

// Listing — объявление магазина.
type Listing struct {
	Index        int
	Title        string // в нижнем регистре
	Manufacturer string // в нижнем регистре, может быть пустым или неточным
	Searchable   string // нормализованный заголовок, заполняется перед сопоставлением
	Raw          json.RawMessage
}

// Manufacturer owns the products that declared it and the family names seen
// among them. Read-only once the catalog is built.
type Manufacturer struct {
	Name     string
	Products []*Product
	Families []string
}

// Candidate is one accepted product match inside a listing's searchable title.
type Candidate struct {
	Product *Product
	Start   int    // byte offset into Listing.Searchable
	Length  int    // matched length in runes; for token matches the sum of token lengths
	Text    string // matched text
}

// Outcome of matching a single listing.
type Outcome int

const (
	OutcomeMatched Outcome = iota
	OutcomeUnknownManufacturer
	OutcomeUnknownModel
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMatched:
		return "matched"
	case OutcomeUnknownManufacturer:
		return "unknown_manufacturer"
	case OutcomeUnknownModel:
		return "unknown_model"
	default:
		return "unknown"
	}
}

type Options struct {
	Workers       int  // 0 → runtime.NumCPU()
	SuppressEmpty bool // не выводить товары без объявлений
}

type Stats struct {
	Listings            int           `json:"listings"`
	Matched             int           `json:"matched"`
	UnknownManufacturer int           `json:"unknown_manufacturer"`
	UnknownModel        int           `json:"unknown_model"`
	Elapsed             time.Duration `json:"elapsed_ns"`
}

type ProductResult struct {
	ProductName string            `json:"product_name"`
	Listings    []json.RawMessage `json:"listings"`
}

type Result struct {
	RunID     string          `json:"run_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	Stats     Stats           `json:"stats"`
	Products  []ProductResult `json:"results"`
}
