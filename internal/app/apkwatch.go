package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/edward-yakop/go-apkwatch/internal/cache"
	"github.com/edward-yakop/go-apkwatch/internal/config"
	"github.com/edward-yakop/go-apkwatch/internal/core"
	"github.com/edward-yakop/go-apkwatch/internal/download"
	"github.com/edward-yakop/go-apkwatch/internal/extract"
	"github.com/edward-yakop/go-apkwatch/internal/misc"
)

var log = misc.NewLogger("App")

type PageFetcher interface {
	Page(ctx context.Context, URL string) (string, error)
}

type Extractor interface {
	Extract(content string) (extract.Record, error)
}

type VersionStore interface {
	Load() (cache.Versions, error)
	Save(cache.Versions) error
}

type PackageDownloader interface {
	Download(ctx context.Context, version string, sizeMB float64) download.Outcome
}

// State is where a run stopped.
type State int

const (
	StateCacheHit State = iota
	StateDownloaded
	StateSkipped
)

func (s State) String() string {
	switch s {
	case StateCacheHit:
		return "cache hit"
	case StateDownloaded:
		return "downloaded"
	case StateSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type Result struct {
	Record       extract.Record
	State        State
	BytesWritten int64
}

// ApkWatchApp runs one fetch, compare, download pass.
type ApkWatchApp struct {
	pageURL    string
	fetcher    PageFetcher
	extractor  Extractor
	store      VersionStore
	marker     download.MarkerWriter
	downloader PackageDownloader
	out        io.Writer
}

// NewApp wires the production components described by cfg. Status lines and
// download progress go to out.
func NewApp(cfg *config.Config, out io.Writer) *ApkWatchApp {
	client := core.NewClient(cfg)
	marker := cache.NewMarker(cfg.LatestPath)
	return &ApkWatchApp{
		pageURL:    cfg.PageURL,
		fetcher:    client,
		extractor:  extract.New(),
		store:      cache.NewStore(cfg.CachePath),
		marker:     marker,
		downloader: download.NewDownloader(client, marker, cfg.DownloadURL, cfg.OutputPath, download.NewConsoleProgress(out)),
		out:        out,
	}
}

// NewAppWith builds an app from explicit components.
func NewAppWith(pageURL string, fetcher PageFetcher, extractor Extractor, store VersionStore,
	marker download.MarkerWriter, downloader PackageDownloader, out io.Writer) *ApkWatchApp {
	if out == nil {
		out = io.Discard
	}
	return &ApkWatchApp{
		pageURL:    pageURL,
		fetcher:    fetcher,
		extractor:  extractor,
		store:      store,
		marker:     marker,
		downloader: downloader,
		out:        out,
	}
}

// Execute fetches the page, records the version it finds, and downloads the
// package when the version is not in the cache yet. Nothing is retried.
func (app *ApkWatchApp) Execute(ctx context.Context) (Result, error) {
	page, err := app.fetcher.Page(ctx, app.pageURL)
	if err != nil {
		return Result{}, errors.Wrap(err, "Failed to fetch download page")
	}

	record, err := app.extractor.Extract(page)
	if err != nil {
		return Result{}, errors.Wrap(err, "Failed to extract latest version")
	}
	app.printf("[i] latest version: %s  |  size: %.1f MB\n", record.Version, record.SizeMB)

	if err = app.marker.Write(record.Version); err != nil {
		return Result{Record: record}, err
	}

	versions, err := app.store.Load()
	if err != nil {
		return Result{Record: record}, errors.Wrap(err, "Failed to load cache")
	}
	if versions.Contains(record.Version) {
		app.printf("[✓] version %s already recorded, nothing to download.\n", record.Version)
		return Result{Record: record, State: StateCacheHit}, nil
	}

	versions.Insert(record.Version, record.SizeMB)
	if err = app.store.Save(versions); err != nil {
		return Result{Record: record}, errors.Wrap(err, "Failed to save cache")
	}
	app.printf("[+] recorded version %s in cache.\n", record.Version)

	outcome := app.downloader.Download(ctx, record.Version, record.SizeMB)
	switch outcome.Status {
	case download.StatusSkipped:
		app.printf("[!] package for %s %s, skipping download.\n", record.Version, outcome.Reason)
		return Result{Record: record, State: StateSkipped}, nil
	case download.StatusCompleted:
		app.printf("\n[√] download complete: %d bytes.\n", outcome.BytesWritten)
		log.Infof("Downloaded %s: %d bytes.", record, outcome.BytesWritten)
		return Result{Record: record, State: StateDownloaded, BytesWritten: outcome.BytesWritten}, nil
	default:
		return Result{Record: record}, errors.Wrap(outcome.Err, "Failed to download ["+record.Version+"]")
	}
}

func (app *ApkWatchApp) printf(format string, v ...interface{}) {
	_, _ = fmt.Fprintf(app.out, format, v...)
}

// Main runs the app once and reports any error as a single line. It returns
// the process exit code.
func Main(ctx context.Context, cfg *config.Config) int {
	if _, err := NewApp(cfg, os.Stdout).Execute(ctx); err != nil {
		fmt.Printf("[×] error: %v\n", err)
		return 1
	}
	return 0
}
