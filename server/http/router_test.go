package serverhttp

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-matcher/internal/compare"
	"listing-matcher/internal/config"
	"listing-matcher/internal/match/model"
	"listing-matcher/internal/runstore"
)

const productsJSONL = `{"product_name":"Nikon_D90","manufacturer":"Nikon","family":"","model":"D90"}
{"product_name":"Canon_IXUS_100","manufacturer":"Canon","family":"IXUS","model":"100"}
{"product_name":"Canon_EOS_5D","manufacturer":"Canon","family":"EOS","model":"5D"}
`

const listingsJSONL = `{"title":"Nikon D90 12.3MP Digital SLR (Body only)","manufacturer":"Nikon","currency":"USD","price":"699.99"}
{"title":"Canon IXUS 100 IS silver","manufacturer":"Canon Canada","currency":"CAD","price":"199.00"}
{"title":"Lens cap for Nikon D90","manufacturer":"Generic","currency":"USD","price":"5.00"}
`

type part struct {
	field, filename, body string
}

func multipartBody(t *testing.T, parts ...part) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		if p.filename == "" {
			require.NoError(t, mw.WriteField(p.field, p.body))
			continue
		}
		w, err := mw.CreateFormFile(p.field, p.filename)
		require.NoError(t, err)
		_, err = io.WriteString(w, p.body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func testConfig() config.Config {
	return config.Config{
		Host:         "127.0.0.1",
		Port:         8082,
		AllowOrigins: []string{"*"},
		MaxUploadMB:  1,
		MatchWorkers: 2,
	}
}

func newTestServer(t *testing.T, withStore bool) http.Handler {
	t.Helper()
	var store *runstore.Store
	if withStore {
		s, err := runstore.Open(filepath.Join(t.TempDir(), "runs.db"))
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		store = s
	}
	return NewRouter(testConfig(), store, zerolog.Nop())
}

func do(t *testing.T, h http.Handler, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t, false), http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestMatchEndpoint(t *testing.T) {
	h := newTestServer(t, false)
	body, ct := multipartBody(t,
		part{"products", "products.txt", productsJSONL},
		part{"listings", "listings.txt", listingsJSONL},
		part{"suppress_empty", "", "true"},
	)

	rec := do(t, h, http.MethodPost, "/match", body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res model.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Empty(t, res.RunID)
	assert.Equal(t, 3, res.Stats.Listings)
	assert.Equal(t, 2, res.Stats.Matched)
	assert.Equal(t, 1, res.Stats.UnknownModel)

	require.Len(t, res.Products, 2)
	assert.Equal(t, "Nikon_D90", res.Products[0].ProductName)
	assert.Equal(t, "Canon_IXUS_100", res.Products[1].ProductName)
	assert.Contains(t, string(res.Products[1].Listings[0]), `"price":"199.00"`)
}

func TestMatchEndpointBadInput(t *testing.T) {
	h := newTestServer(t, false)

	body, ct := multipartBody(t, part{"products", "products.txt", productsJSONL})
	rec := do(t, h, http.MethodPost, "/match", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "listings")

	body, ct = multipartBody(t,
		part{"products", "products.txt", `{"product_name":"x","manufacturer":"acme"}` + "\n"},
		part{"listings", "listings.txt", listingsJSONL},
	)
	rec = do(t, h, http.MethodPost, "/match", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, ct = multipartBody(t,
		part{"products", "products.pdf", "%PDF"},
		part{"listings", "listings.txt", listingsJSONL},
	)
	rec = do(t, h, http.MethodPost, "/match", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMatchEndpointTooLarge(t *testing.T) {
	h := newTestServer(t, false)
	big := strings.Repeat(`{"title":"x"}`+"\n", 100_000)
	body, ct := multipartBody(t,
		part{"products", "products.txt", productsJSONL},
		part{"listings", "listings.txt", big},
	)
	rec := do(t, h, http.MethodPost, "/match", body, ct)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRunsStoredAndCompared(t *testing.T) {
	h := newTestServer(t, true)

	match := func(listings string) string {
		body, ct := multipartBody(t,
			part{"products", "products.txt", productsJSONL},
			part{"listings", "listings.txt", listings},
		)
		rec := do(t, h, http.MethodPost, "/match", body, ct)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var res model.Result
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		require.NotEmpty(t, res.RunID)
		return res.RunID
	}
	runA := match(listingsJSONL)
	// во втором прогоне D90 пропал
	runB := match(strings.SplitN(listingsJSONL, "\n", 2)[1])

	rec := do(t, h, http.MethodGet, "/runs/"+runA, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stored model.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stored))
	assert.Equal(t, runA, stored.RunID)
	assert.Equal(t, 2, stored.Stats.Matched)

	rec = do(t, h, http.MethodGet, "/runs/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/runs", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []runstore.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	body, ct := multipartBody(t, part{"run_a", "", runA}, part{"run_b", "", runB})
	rec = do(t, h, http.MethodPost, "/compare", body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out struct {
		Diffs []compare.ProductDiff `json:"diffs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Diffs, 1)
	assert.Equal(t, "Nikon_D90", out.Diffs[0].ProductName)
	assert.Equal(t, []string{"Nikon D90 12.3MP Digital SLR (Body only)"}, out.Diffs[0].Removed)
}

func TestCompareFiles(t *testing.T) {
	h := newTestServer(t, false)
	a := `{"product_name":"p","listings":[{"title":"A","manufacturer":"m","currency":"USD","price":"1"}]}` + "\n"
	b := `{"product_name":"p","listings":[{"title":"B","manufacturer":"m","currency":"USD","price":"1"}]}` + "\n"

	body, ct := multipartBody(t, part{"resultsA", "a.txt", a}, part{"resultsB", "b.txt", b})
	rec := do(t, h, http.MethodPost, "/compare", body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"diffs":[{"product_name":"p","removed":["A"],"added":["B"]}]}`, rec.Body.String())

	body, ct = multipartBody(t, part{"run_a", "", "x"}, part{"resultsB", "b.txt", b})
	rec = do(t, h, http.MethodPost, "/compare", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
