package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><article>Breaking news content</article></body></html>"))
	}))
	defer srv.Close()

	result, err := URL(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Contains(t, result.HTML, "Breaking news content")
}

func TestURL_InvalidURL(t *testing.T) {
	_, err := URL(context.Background(), "not-a-url", nil)
	require.Error(t, err)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.False(t, fetchErr.Retryable)
}

func TestURL_ServerErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := URL(context.Background(), srv.URL, nil)
	require.Error(t, err)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.True(t, fetchErr.Retryable)
}

func TestURL_NotFoundIsNotRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := URL(context.Background(), srv.URL, nil)
	require.Error(t, err)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.False(t, fetchErr.Retryable)
}

func TestExtractMainText_PrefersArticle(t *testing.T) {
	html := `<html><body>
		<nav>Site navigation</nav>
		<article>The city council voted on Tuesday.</article>
		<footer>Copyright</footer>
	</body></html>`

	text, err := ExtractMainText(html, ArticleSelectors())
	require.NoError(t, err)
	assert.Contains(t, text, "city council voted")
	assert.NotContains(t, text, "Site navigation")
	assert.NotContains(t, text, "Copyright")
}

func TestExtractMainText_FallsBackToBody(t *testing.T) {
	html := `<html><body><div>Plain page text</div></body></html>`
	text, err := ExtractMainText(html, ArticleSelectors())
	require.NoError(t, err)
	assert.Contains(t, text, "Plain page text")
}

func TestShouldUseBrowser(t *testing.T) {
	assert.True(t, ShouldUseBrowser("short"))
	long := make([]byte, MinContentLength+1)
	for i := range long {
		long[i] = 'a'
	}
	assert.False(t, ShouldUseBrowser(string(long)))
}
