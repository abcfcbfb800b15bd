package dataset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marqueeapp/marquee-server/internal/domain"
	"github.com/marqueeapp/marquee-server/internal/errors"
	"github.com/marqueeapp/marquee-server/internal/logger"
)

const sample = `[
  {"nome":"Zeta","ano":"1999","sinopse":"<p>The <b>last</b> one.</p>","link":"https://www.imdb.com/title/tt1/","img":"img/zeta.jpg","tags":[" drama ",""]},
  {"nome":"Alpha","ano":2005,"sinopse":"The first one.","link":"https://www.imdb.com/title/tt2/","img":"https://cdn.example.com/alpha.jpg"}
]`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_LocalFile(t *testing.T) {
	l := NewLoader(writeFile(t, sample), logger.Discard())

	movies, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, movies, 2)

	assert.Equal(t, "Zeta", movies[0].Title)
	assert.Equal(t, "The **last** one.", movies[0].Synopsis)
	assert.True(t, movies[0].SynopsisIsMarkdown())
	assert.False(t, movies[1].SynopsisIsMarkdown())
	assert.Equal(t, []string{"drama"}, movies[0].Tags)

	assert.Equal(t, "Alpha", movies[1].Title)
	assert.Equal(t, "2005", movies[1].Year)
	assert.Nil(t, movies[1].Tags)
}

func TestLoad_FileScheme(t *testing.T) {
	l := NewLoader("file://"+writeFile(t, sample), logger.Discard())
	assert.False(t, l.IsRemote())

	movies, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, movies, 2)
}

func TestLoad_HTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sample))
	}))
	defer srv.Close()

	l := NewLoader(srv.URL+"/data.json", logger.Discard(), WithHTTPClient(srv.Client()))
	assert.True(t, l.IsRemote())
	assert.Empty(t, l.Path())

	movies, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, movies, 2)
}

func TestLoad_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewLoader(srv.URL, logger.Discard()).Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnavailable))

	var domainErr *errors.Error
	require.True(t, errors.As(err, &domainErr))
	details, ok := domainErr.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, details["status"])
}

func TestLoad_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewLoader(url, logger.Discard()).Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnavailable))
}

func TestLoad_Failures(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed json", `[{"nome":`},
		{"object instead of array", `{"nome":"Alpha"}`},
		{"missing title", `[{"ano":"1999"}]`},
		{"bad year", `[{"nome":"Alpha","ano":"nineteen"}]`},
		{"script link", `[{"nome":"Alpha","link":"javascript:alert(1)"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(writeFile(t, tt.content), logger.Discard()).Load(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrUnavailable))
		})
	}
}

func TestLoad_SkipsInvalidRecords(t *testing.T) {
	content := `[
  {"nome":"Alpha","ano":"2005"},
  {"nome":"","ano":"1999"},
  {"nome":"Beta","ano":"nineteen"},
  {"nome":"Gamma","link":"javascript:alert(1)"},
  {"nome":"Delta","ano":"1984"}
]`
	movies, err := NewLoader(writeFile(t, content), logger.Discard()).Load(context.Background())
	require.NoError(t, err)

	titles := make([]string, len(movies))
	for i, m := range movies {
		titles[i] = m.Title
	}
	assert.Equal(t, []string{"Alpha", "Delta"}, titles)
}

func TestLoad_PlainSynopsisKeptVerbatim(t *testing.T) {
	content := `[
  {"nome":"Nineteen","sinopse":"1984. Winston rewrites history."},
  {"nome":"Forged","sinopse":"Plain *text*","sinopse_formato":"markdown"}
]`
	movies, err := NewLoader(writeFile(t, content), logger.Discard()).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, movies, 2)

	assert.Equal(t, "1984. Winston rewrites history.", movies[0].Synopsis)
	assert.Equal(t, domain.TextPlain, movies[0].SynopsisFormat)
	assert.Equal(t, domain.TextPlain, movies[1].SynopsisFormat, "format is decided by the loader, not the file")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "nope.json"), logger.Discard()).Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnavailable))
}

func TestLoad_EmptyArray(t *testing.T) {
	movies, err := NewLoader(writeFile(t, `[]`), logger.Discard()).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, movies)
}
