package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edward-yakop/go-apkwatch/internal/cache"
	"github.com/edward-yakop/go-apkwatch/internal/config"
	"github.com/edward-yakop/go-apkwatch/internal/core"
	"github.com/edward-yakop/go-apkwatch/internal/download"
	"github.com/edward-yakop/go-apkwatch/internal/extract"
)

const pageTmpl = `<html><body data-dt-version="%s" data-dt-filesize="10485760"></body></html>`

type site struct {
	version      string
	pageStatus   int
	payload      []byte
	pageHits     atomic.Int32
	downloadHits atomic.Int32
}

func newSite(t *testing.T, version string) (*site, *httptest.Server) {
	s := &site{version: version, pageStatus: http.StatusOK, payload: make([]byte, 3*download.ChunkSize)}
	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		s.pageHits.Add(1)
		w.WriteHeader(s.pageStatus)
		_, _ = fmt.Fprintf(w, pageTmpl, s.version)
	})
	mux.HandleFunc("/pkg", func(w http.ResponseWriter, r *http.Request) {
		s.downloadHits.Add(1)
		w.Header().Set("Content-Length", strconv.Itoa(len(s.payload)))
		_, _ = w.Write(s.payload)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return s, srv
}

func newConfig(t *testing.T, srv *httptest.Server) *config.Config {
	dir := t.TempDir()
	cfg, err := config.Load(
		config.WithOverride(config.KeyPageURL, srv.URL+"/page"),
		config.WithOverride(config.KeyDownloadURL, srv.URL+"/pkg"),
		config.WithOverride(config.KeyCachePath, filepath.Join(dir, "cache.json")),
		config.WithOverride(config.KeyLatestPath, filepath.Join(dir, "latest")),
		config.WithOverride(config.KeyOutputPath, filepath.Join(dir, "hoyolab.xapk")),
	)
	require.NoError(t, err)
	return cfg
}

func readFile(t *testing.T, path string) string {
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestApkWatchApp_Execute_downloadsOnce(t *testing.T) {
	s, srv := newSite(t, "1.2.3")
	cfg := newConfig(t, srv)

	result, err := NewApp(cfg, io.Discard).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateDownloaded, result.State)
	assert.Equal(t, extract.Record{Version: "1.2.3", SizeMB: 10}, result.Record)
	assert.Equal(t, int64(len(s.payload)), result.BytesWritten)

	result, err = NewApp(cfg, io.Discard).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateCacheHit, result.State)

	assert.Equal(t, int32(2), s.pageHits.Load())
	assert.Equal(t, int32(1), s.downloadHits.Load())
	assert.Equal(t, "1.2.3", readFile(t, cfg.LatestPath))
	assert.Equal(t, "{\n  \"1.2.3\": 10\n}\n", readFile(t, cfg.CachePath))
	assert.Len(t, readFile(t, cfg.OutputPath), len(s.payload))
}

func TestApkWatchApp_Execute_newVersionWithExistingFileSkips(t *testing.T) {
	s, srv := newSite(t, "2.0.0")
	cfg := newConfig(t, srv)
	require.NoError(t, os.WriteFile(cfg.OutputPath, []byte("previous"), 0644))

	result, err := NewApp(cfg, io.Discard).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateSkipped, result.State)
	assert.Zero(t, s.downloadHits.Load())
	assert.Equal(t, "previous", readFile(t, cfg.OutputPath))

	versions, err := cache.NewStore(cfg.CachePath).Load()
	require.NoError(t, err)
	assert.True(t, versions.Contains("2.0.0"))
}

func TestApkWatchApp_Execute_pageError(t *testing.T) {
	s, srv := newSite(t, "1.0.0")
	s.pageStatus = http.StatusServiceUnavailable
	cfg := newConfig(t, srv)

	_, err := NewApp(cfg, io.Discard).Execute(context.Background())

	var fetchErr *core.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusServiceUnavailable, fetchErr.StatusCode)
	assert.Equal(t, int32(1), s.pageHits.Load(), "no retry")
	assert.NoFileExists(t, cfg.CachePath)
	assert.NoFileExists(t, cfg.LatestPath)
}

func TestApkWatchApp_Execute_corruptCache(t *testing.T) {
	s, srv := newSite(t, "1.0.0")
	cfg := newConfig(t, srv)
	require.NoError(t, os.WriteFile(cfg.CachePath, []byte("{oops"), 0644))

	_, err := NewApp(cfg, io.Discard).Execute(context.Background())

	var corrupt *cache.CorruptError
	require.True(t, errors.As(err, &corrupt))
	assert.Zero(t, s.downloadHits.Load())
	assert.Equal(t, "1.0.0", readFile(t, cfg.LatestPath), "marker precedes the cache check")
	assert.Equal(t, "{oops", readFile(t, cfg.CachePath))
}

type stubFetcher struct {
	page string
}

func (f stubFetcher) Page(context.Context, string) (string, error) {
	return f.page, nil
}

type stubDownloader struct {
	outcome download.Outcome
	calls   int
}

func (d *stubDownloader) Download(context.Context, string, float64) download.Outcome {
	d.calls++
	return d.outcome
}

type memoryMarker struct {
	writes []string
}

func (m *memoryMarker) Write(version string) error {
	m.writes = append(m.writes, version)
	return nil
}

func TestApkWatchApp_Execute_parseError(t *testing.T) {
	marker := &memoryMarker{}
	downloader := &stubDownloader{}
	store := cache.NewStore(filepath.Join(t.TempDir(), "cache.json"))

	_, err := NewAppWith("page", stubFetcher{page: "<html></html>"}, extract.New(), store, marker, downloader, nil).
		Execute(context.Background())

	var parseErr *extract.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Empty(t, marker.writes)
	assert.Zero(t, downloader.calls)
	assert.NoFileExists(t, store.Path())
}

func TestApkWatchApp_Execute_downloadFailureKeepsCacheEntry(t *testing.T) {
	marker := &memoryMarker{}
	dlErr := &download.DownloadError{URL: "pkg", Err: errors.New("reset by peer")}
	downloader := &stubDownloader{outcome: download.Failed(dlErr)}
	store := cache.NewStore(filepath.Join(t.TempDir(), "cache.json"))
	page := fmt.Sprintf(pageTmpl, "3.0.0")

	result, err := NewAppWith("page", stubFetcher{page: page}, extract.New(), store, marker, downloader, nil).
		Execute(context.Background())

	assert.ErrorIs(t, err, dlErr)
	assert.Equal(t, "3.0.0", result.Record.Version)
	assert.Equal(t, 1, downloader.calls)
	assert.Equal(t, []string{"3.0.0"}, marker.writes)

	versions, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, cache.Versions{"3.0.0": 10}, versions)
}

func TestParseOption(t *testing.T) {
	cfg, err := ParseOption(ArgsList{Output: "out.xapk", Cache: "state.json"})
	require.NoError(t, err)
	assert.Equal(t, "out.xapk", cfg.OutputPath)
	assert.Equal(t, "state.json", cfg.CachePath)
	assert.Equal(t, config.DefaultPageURL, cfg.PageURL)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "cache hit", StateCacheHit.String())
	assert.Equal(t, "downloaded", StateDownloaded.String())
	assert.Equal(t, "skipped", StateSkipped.String())
}
