package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marqueeapp/marquee-server/internal/dataset"
	"github.com/marqueeapp/marquee-server/internal/logger"
	"github.com/marqueeapp/marquee-server/internal/testutil"
	"github.com/marqueeapp/marquee-server/internal/web"
)

func TestCatalogPage_ScenarioA_DefaultOrder(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.do(http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))

	doc := testutil.ParseHTML(t, w.Body.Bytes())
	assert.Equal(t, []string{"Alpha", "Zeta"}, cardTitles(doc))
	assert.Equal(t, []string{"year-desc"}, activeSorts(doc))
}

func TestCatalogPage_ScenarioB_Alphabetical(t *testing.T) {
	ts := setupTestServer(t)

	doc := testutil.ParseHTML(t, ts.do(http.MethodGet, "/?sort=alphabetical", "").Body.Bytes())

	assert.Equal(t, []string{"Alpha", "Zeta"}, cardTitles(doc))
	assert.Equal(t, []string{"alphabetical"}, activeSorts(doc))
}

func TestCatalogPage_YearAscending(t *testing.T) {
	ts := setupTestServer(t)

	doc := testutil.ParseHTML(t, ts.do(http.MethodGet, "/?sort=year-asc", "").Body.Bytes())

	assert.Equal(t, []string{"Zeta", "Alpha"}, cardTitles(doc))
}

func TestCatalogPage_ScenarioC_QueryNarrows(t *testing.T) {
	ts := setupTestServer(t)

	doc := testutil.ParseHTML(t, ts.do(http.MethodGet, "/?q=zet", "").Body.Bytes())

	assert.Equal(t, []string{"Zeta"}, cardTitles(doc))
	assert.Equal(t, "zet", doc.Find("#search-input").AttrOr("value", ""))
}

func TestCatalogPage_ScenarioD_NoResults(t *testing.T) {
	ts := setupTestServer(t)

	doc := testutil.ParseHTML(t, ts.do(http.MethodGet, "/?q=nothing+matches", "").Body.Bytes())

	assert.Empty(t, cardTitles(doc))
	assert.Equal(t, []string{web.MsgNoResults}, testutil.Texts(doc, "#movie-grid p"))
}

func TestCatalogPage_ScenarioE_LoadError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	ts := setupTestServer(t, withLoader(dataset.NewLoader(upstream.URL, logger.Discard())))

	w := ts.do(http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)

	doc := testutil.ParseHTML(t, w.Body.Bytes())
	assert.Empty(t, cardTitles(doc))
	assert.Equal(t, []string{web.MsgLoadError}, testutil.Texts(doc, "#movie-grid p"))
}

func TestCatalogPage_LoadingRefreshes(t *testing.T) {
	ts := setupTestServer(t, withLoader(blockingLoader{}))

	doc := testutil.ParseHTML(t, ts.do(http.MethodGet, "/", "").Body.Bytes())

	assert.Equal(t, "loading", doc.Find("#movie-grid").AttrOr("data-state", ""))
	assert.Equal(t, 1, doc.Find(`meta[http-equiv="refresh"]`).Length())
}

func TestCatalogPage_UnknownSortFallsBack(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.do(http.MethodGet, "/?sort=random", "")
	require.Equal(t, http.StatusOK, w.Code)

	doc := testutil.ParseHTML(t, w.Body.Bytes())
	assert.Equal(t, []string{"Alpha", "Zeta"}, cardTitles(doc))
	assert.Equal(t, []string{"year-desc"}, activeSorts(doc))
}

func TestSelect_RedirectsToDetails(t *testing.T) {
	ts := setupTestServer(t)
	cookie := ts.newSession(t)

	w := ts.do(http.MethodPost, "/select", formBody("Zeta"), cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/details", w.Header().Get("Location"))

	doc := testutil.ParseHTML(t, ts.do(http.MethodGet, "/details", "", cookie).Body.Bytes())
	assert.Equal(t, "valid", doc.Find("#movie-details").AttrOr("data-state", ""))
	assert.Equal(t, []string{"Zeta (1999)"}, testutil.Texts(doc, "#movie-details h1"))
	assert.Equal(t, "https://www.imdb.com/title/tt1/", doc.Find("a.imdb-button").AttrOr("href", ""))
	assert.Equal(t, 1, doc.Find("#movie-details .synopsis strong").Length())
}

func TestSelect_MissLeavesSelectionUntouched(t *testing.T) {
	ts := setupTestServer(t)
	cookie := ts.newSession(t)

	require.Equal(t, http.StatusSeeOther, ts.do(http.MethodPost, "/select", formBody("Alpha"), cookie).Code)

	w := ts.do(http.MethodPost, "/select", formBody("Nope"), cookie)
	assert.Equal(t, http.StatusNoContent, w.Code)

	doc := testutil.ParseHTML(t, ts.do(http.MethodGet, "/details", "", cookie).Body.Bytes())
	assert.Equal(t, []string{"Alpha (2005)"}, testutil.Texts(doc, "#movie-details h1"))
}

func TestSelect_LastSelectionWins(t *testing.T) {
	ts := setupTestServer(t)
	cookie := ts.newSession(t)

	ts.do(http.MethodPost, "/select", formBody("Alpha"), cookie)
	ts.do(http.MethodPost, "/select", formBody("Zeta"), cookie)

	doc := testutil.ParseHTML(t, ts.do(http.MethodGet, "/details", "", cookie).Body.Bytes())
	assert.Equal(t, []string{"Zeta (1999)"}, testutil.Texts(doc, "#movie-details h1"))
}

func TestSelect_SessionsAreIsolated(t *testing.T) {
	ts := setupTestServer(t)
	first := ts.newSession(t)
	second := ts.newSession(t)

	ts.do(http.MethodPost, "/select", formBody("Zeta"), first)

	doc := testutil.ParseHTML(t, ts.do(http.MethodGet, "/details", "", second).Body.Bytes())
	assert.Equal(t, []string{web.MsgNoSelection}, testutil.Texts(doc, "#movie-details p"))
}

func TestSelect_RateLimited(t *testing.T) {
	ts := setupTestServer(t, withSelectLimit(1))
	cookie := ts.newSession(t)

	require.Equal(t, http.StatusSeeOther, ts.do(http.MethodPost, "/select", formBody("Zeta"), cookie).Code)

	w := ts.do(http.MethodPost, "/select", formBody("Alpha"), cookie)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	env := decodeEnvelope(t, w.Body.Bytes(), nil)
	assert.Equal(t, "RATE_LIMITED", env.Code)
}

func TestDetails_ScenarioF_Missing(t *testing.T) {
	ts := setupTestServer(t)

	doc := testutil.ParseHTML(t, ts.do(http.MethodGet, "/details", "").Body.Bytes())

	assert.Equal(t, []string{web.MsgNoSelection}, testutil.Texts(doc, "#movie-details p"))
	assert.Equal(t, 0, doc.Find("#movie-details h1").Length())
	assert.Equal(t, "/", doc.Find("a.back-link").AttrOr("href", ""))
}

func TestDetails_ScenarioF_Invalid(t *testing.T) {
	ts := setupTestServer(t)
	cookie := ts.newSession(t)

	require.NoError(t, ts.store.PutHandoff(context.Background(), ts.sessionID(t, cookie), []byte("not json"), time.Hour))

	doc := testutil.ParseHTML(t, ts.do(http.MethodGet, "/details", "", cookie).Body.Bytes())
	assert.Equal(t, []string{web.MsgDetailsFailed}, testutil.Texts(doc, "#movie-details p"))
	assert.Equal(t, "invalid", doc.Find("#movie-details").AttrOr("data-state", ""))
}

func TestDetails_ConsumedAfterFirstRead(t *testing.T) {
	ts := setupTestServer(t, withConsume())
	cookie := ts.newSession(t)

	ts.do(http.MethodPost, "/select", formBody("Zeta"), cookie)

	first := testutil.ParseHTML(t, ts.do(http.MethodGet, "/details", "", cookie).Body.Bytes())
	assert.Equal(t, "valid", first.Find("#movie-details").AttrOr("data-state", ""))

	second := testutil.ParseHTML(t, ts.do(http.MethodGet, "/details", "", cookie).Body.Bytes())
	assert.Equal(t, "missing", second.Find("#movie-details").AttrOr("data-state", ""))
}

func activeSorts(doc *goquery.Document) []string {
	var out []string
	doc.Find(".sort-controls button.active").Each(func(_ int, s *goquery.Selection) {
		out = append(out, s.AttrOr("data-sort", ""))
	})
	return out
}
