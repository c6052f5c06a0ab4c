package service

import (
	"context"
	"encoding/json"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"listing-matcher/internal/match/model"
)

const progressEvery = 1000

type outcome struct {
	product *model.Product
	kind    model.Outcome
}

// Run — основной прогон. Нормализует заголовки, раскладывает объявления по
// пулу воркеров и собирает результат по товарам в порядке загрузки.
// Каталог и шаблоны общие и только читаются; каждое объявление и его ячейка
// результата принадлежат ровно одному воркеру, поэтому блокировок нет.
func Run(ctx context.Context, cat *Catalog, listings []*model.Listing, opt model.Options) (model.Result, error) {
	start := time.Now()
	log := zerolog.Ctx(ctx)

	workers := opt.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	outcomes := make([]outcome, len(listings))
	jobs := make(chan int)
	var (
		wg   sync.WaitGroup
		done atomic.Int64
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				l := listings[i]
				l.Searchable = NormalizeTitle(l.Title)
				best, kind := cat.MatchListing(l)
				outcomes[i] = outcome{product: best.Product, kind: kind}
				if n := done.Add(1); n%progressEvery == 0 {
					log.Debug().Int64("done", n).Int("total", len(listings)).Msg("matching progress")
				}
			}
		}()
	}

	// 1) раздача заданий; при отмене контекста новые объявления не раздаются
dispatch:
	for i := range listings {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return model.Result{}, err
	}

	// 2) сборка по товарам
	stats := model.Stats{Listings: len(listings)}
	byProduct := make([][]json.RawMessage, len(cat.Products))
	for i, o := range outcomes {
		switch o.kind {
		case model.OutcomeMatched:
			stats.Matched++
			byProduct[o.product.Index] = append(byProduct[o.product.Index], listings[i].Raw)
		case model.OutcomeUnknownManufacturer:
			stats.UnknownManufacturer++
		case model.OutcomeUnknownModel:
			stats.UnknownModel++
		}
	}

	products := make([]model.ProductResult, 0, len(cat.Products))
	for i, p := range cat.Products {
		if opt.SuppressEmpty && len(byProduct[i]) == 0 {
			continue
		}
		ls := byProduct[i]
		if ls == nil {
			ls = []json.RawMessage{}
		}
		products = append(products, model.ProductResult{ProductName: p.Name, Listings: ls})
	}

	stats.Elapsed = time.Since(start)
	log.Info().
		Int("listings", stats.Listings).
		Int("matched", stats.Matched).
		Int("unknown_manufacturer", stats.UnknownManufacturer).
		Int("unknown_model", stats.UnknownModel).
		Int("workers", workers).
		Dur("elapsed", stats.Elapsed).
		Msg("matching done")

	return model.Result{
		CreatedAt: start.UTC(),
		Stats:     stats,
		Products:  products,
	}, nil
}
