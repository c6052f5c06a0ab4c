package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"listing-matcher/internal/compare"
	"listing-matcher/internal/config"
	"listing-matcher/internal/fileio"
	"listing-matcher/internal/match/model"
	"listing-matcher/internal/match/service"
	"listing-matcher/internal/runstore"
)

// память под multipart, остальное уходит во временные файлы
const formMemory = 32 << 20

// Match возвращает http.HandlerFunc для r.Post("/match", ...).
// Форма: файлы products и listings, необязательные suppress_empty,
// products_header_row, listings_header_row. store может быть nil.
func Match(cfg config.Config, store *runstore.Store, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := requestLogger(r, logger)

		if err := r.ParseMultipartForm(formMemory); err != nil {
			formError(w, err)
			return
		}

		productRecs, err := readFormFile(r, "products", atoi(r.FormValue("products_header_row"), 1))
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		listingRecs, err := readFormFile(r, "listings", atoi(r.FormValue("listings_header_row"), 1))
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}

		opt := model.Options{
			Workers:       cfg.MatchWorkers,
			SuppressEmpty: toBool(r.FormValue("suppress_empty"), false),
		}
		res, err := service.MatchRecords(log.WithContext(r.Context()), productRecs, listingRecs, opt)
		if err != nil {
			log.Warn().Err(err).Msg("match failed")
			http.Error(w, err.Error(), statusFor(err))
			return
		}

		if store != nil {
			if _, err := store.Save(&res); err != nil {
				log.Error().Err(err).Msg("save run")
				http.Error(w, "save run: "+err.Error(), http.StatusInternalServerError)
				return
			}
		}

		writeJSON(w, log, http.StatusOK, res)
		log.Info().
			Str("run_id", res.RunID).
			Int("products", len(productRecs)).
			Int("listings", len(listingRecs)).
			Dur("elapsed", time.Since(start)).
			Msg("match done")
	}
}

// Compare сравнивает два набора результатов: файлы resultsA/resultsB
// либо, при наличии хранилища, id прогонов run_a/run_b.
func Compare(store *runstore.Store, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(r, logger)

		if err := r.ParseMultipartForm(formMemory); err != nil {
			formError(w, err)
			return
		}

		a, err := resultSet(r, store, "resultsA", "run_a")
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		b, err := resultSet(r, store, "resultsB", "run_b")
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}

		diffs, err := compare.Diff(a, b)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if diffs == nil {
			diffs = []compare.ProductDiff{}
		}
		writeJSON(w, log, http.StatusOK, map[string]any{"diffs": diffs})
		log.Info().Int("products", len(diffs)).Msg("compare done")
	}
}

// GetRun отдаёт сохранённый прогон: r.Get("/runs/{id}", ...).
func GetRun(store *runstore.Store, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(r, logger)
		if store == nil {
			http.Error(w, "run store disabled", http.StatusNotFound)
			return
		}
		res, err := store.Load(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		writeJSON(w, log, http.StatusOK, res)
	}
}

// ListRuns — краткий список прогонов, старые первыми.
func ListRuns(store *runstore.Store, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(r, logger)
		if store == nil {
			writeJSON(w, log, http.StatusOK, []runstore.Summary{})
			return
		}
		list, err := store.List()
		if err != nil {
			log.Error().Err(err).Msg("list runs")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []runstore.Summary{}
		}
		writeJSON(w, log, http.StatusOK, list)
	}
}

func readFormFile(r *http.Request, field string, headerRow int) ([]map[string]any, error) {
	f, hdr, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("missing %s: %w", field, errMissingField)
	}
	defer f.Close()
	recs, err := fileio.ReadAnyMaps(f, hdr.Filename, headerRow)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", field, errBadInput(err))
	}
	return recs, nil
}

func resultSet(r *http.Request, store *runstore.Store, fileField, runField string) ([]model.ProductResult, error) {
	if id := r.FormValue(runField); id != "" {
		if store == nil {
			return nil, fmt.Errorf("%s given but run store disabled: %w", runField, errMissingField)
		}
		res, err := store.Load(id)
		if err != nil {
			return nil, err
		}
		return res.Products, nil
	}
	f, _, err := r.FormFile(fileField)
	if err != nil {
		return nil, fmt.Errorf("missing %s or %s: %w", fileField, runField, errMissingField)
	}
	defer f.Close()
	out, err := fileio.ReadResults(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fileField, errBadInput(err))
	}
	return out, nil
}

var errMissingField = errors.New("bad request")

type badInput struct{ err error }

func (e badInput) Error() string { return e.err.Error() }
func (e badInput) Unwrap() error { return e.err }

func errBadInput(err error) error { return badInput{err} }

// statusFor: ошибки входных данных — 400, нет прогона — 404, остальное — 500.
func statusFor(err error) int {
	var bi badInput
	switch {
	case errors.Is(err, model.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, errMissingField),
		errors.Is(err, model.ErrEmptyModel),
		errors.Is(err, model.ErrEmptyTitle),
		errors.Is(err, model.ErrUnsupportedFile),
		errors.As(err, &bi):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func formError(w http.ResponseWriter, err error) {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		http.Error(w, "request too large", http.StatusRequestEntityTooLarge)
		return
	}
	http.Error(w, "bad multipart form: "+err.Error(), http.StatusBadRequest)
}
