package render_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"octavo/application/ports"
	"octavo/infrastructure/config"
	"octavo/infrastructure/render"
	apperrors "octavo/pkg/errors"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		PandocAPIURL:      baseURL,
		RenderTimeout:     2 * time.Second,
		RenderTimeoutMobi: 4 * time.Second,
	}
}

func TestConvertPostsDocumentAndReturnsBytes(t *testing.T) {
	var (
		gotPath        string
		gotContentType string
		gotBody        map[string]string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		w.Write([]byte("epub-bytes"))
	}))
	defer server.Close()

	client := render.NewClient(testConfig(server.URL), zap.NewNop())
	data, err := client.Convert(context.Background(), render.FormatEPUB, ports.RenderRequest{
		Content: "= Title\n\nbody",
		Title:   "Title",
		Author:  "Author",
	})

	require.NoError(t, err)
	assert.Equal(t, []byte("epub-bytes"), data)
	assert.Equal(t, "/convert/epub", gotPath)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "= Title\n\nbody", gotBody["content"])
	assert.Equal(t, "Title", gotBody["title"])
	assert.Equal(t, "Author", gotBody["author"])
	assert.NotContains(t, gotBody, "image")
}

func TestConvertIncludesCoverImageWhenSet(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		w.Write([]byte("pdf-bytes"))
	}))
	defer server.Close()

	client := render.NewClient(testConfig(server.URL), zap.NewNop())
	_, err := client.Convert(context.Background(), render.FormatPDF, ports.RenderRequest{
		Content: "body",
		Title:   "Title",
		Author:  "Author",
		Image:   "data:image/png;base64,AAAA",
	})

	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AAAA", gotBody["image"])
}

func TestConvertRejectsUnknownFormat(t *testing.T) {
	client := render.NewClient(testConfig("http://localhost:0"), zap.NewNop())

	_, err := client.Convert(context.Background(), "docx", ports.RenderRequest{})

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestConvertErrorStatusIsRenderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "conversion blew up", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := render.NewClient(testConfig(server.URL), zap.NewNop())
	_, err := client.Convert(context.Background(), render.FormatEPUB, ports.RenderRequest{})

	require.Error(t, err)
	assert.True(t, apperrors.IsRenderFailed(err))
}

func TestConvertEmptyDocumentIsRenderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := render.NewClient(testConfig(server.URL), zap.NewNop())
	_, err := client.Convert(context.Background(), render.FormatEPUB, ports.RenderRequest{})

	require.Error(t, err)
	assert.True(t, apperrors.IsRenderFailed(err))
}

func TestConvertTimeoutIsUpstreamTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(400 * time.Millisecond)
		w.Write([]byte("late"))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.RenderTimeout = 50 * time.Millisecond
	client := render.NewClient(cfg, zap.NewNop())

	_, err := client.Convert(context.Background(), render.FormatEPUB, ports.RenderRequest{})

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUpstreamTimeout))
}

func TestConvertMobileFormatsGetLongerBudget(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(150 * time.Millisecond)
		w.Write([]byte("azw3-bytes"))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.RenderTimeout = 50 * time.Millisecond
	cfg.RenderTimeoutMobi = 2 * time.Second
	client := render.NewClient(cfg, zap.NewNop())

	data, err := client.Convert(context.Background(), render.FormatAZW3, ports.RenderRequest{})

	require.NoError(t, err)
	assert.Equal(t, []byte("azw3-bytes"), data)
}

func TestConvertTripsBreakerAfterRepeatedFailures(t *testing.T) {
	var (
		mu   sync.Mutex
		hits int
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := render.NewClient(testConfig(server.URL), zap.NewNop())
	assert.Equal(t, "closed", client.BreakerState())
	for i := 0; i < 5; i++ {
		_, err := client.Convert(context.Background(), render.FormatEPUB, ports.RenderRequest{})
		require.Error(t, err)
	}

	_, err := client.Convert(context.Background(), render.FormatEPUB, ports.RenderRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.IsRenderFailed(err))
	assert.Equal(t, "open", client.BreakerState())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 5, hits, "an open breaker must not reach the converter")
}
