package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"listing-matcher/internal/match/model"
)

func TestResolveManufacturers(t *testing.T) {
	r := newTestRegistry(
		&model.Product{Manufacturer: "canon", Model: "5d"},
		&model.Product{Manufacturer: "nikon", Family: "coolpix", Model: "s230"},
		&model.Product{Manufacturer: "fujifilm", Model: "x100"},
	)

	cases := []struct {
		name         string
		manufacturer string
		title        string
		want         []string
	}{
		{"exact field", "Canon", "eos 5d", []string{"canon"}},
		{"prefix field", "Canon Canada", "eos 5d", []string{"canon"}},
		{"name inside field", "Digital Canon Inc.", "eos 5d", []string{"canon"}},
		{"field inside name", "Fuji", "x100", []string{"fujifilm"}},
		{"title fallback by name", "", "nikon d90 body", []string{"nikon"}},
		{"title fallback by family", "Unknown", "coolpix s230", []string{"nikon"}},
		{"nothing", "Kodak", "kodak easyshare c180", nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			l := &model.Listing{Manufacturer: c.manufacturer, Title: c.title}
			assert.Equal(t, c.want, names(ResolveManufacturers(r, l)))
		})
	}
}
