package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"listing-matcher/internal/match/model"
)

// MatchRecords — полный прогон по сырым записям загрузчика: товары, каталог,
// объявления, Run. Общий для CLI и HTTP. Логгер берётся из ctx.
func MatchRecords(ctx context.Context, productRecs, listingRecs []map[string]any, opt model.Options) (model.Result, error) {
	products, err := ProductsFromRecords(productRecs)
	if err != nil {
		return model.Result{}, fmt.Errorf("products: %w", err)
	}
	listings, err := ListingsFromRecords(listingRecs)
	if err != nil {
		return model.Result{}, fmt.Errorf("listings: %w", err)
	}
	cat, err := BuildCatalog(products, *zerolog.Ctx(ctx))
	if err != nil {
		return model.Result{}, fmt.Errorf("catalog: %w", err)
	}
	return Run(ctx, cat, listings, opt)
}
