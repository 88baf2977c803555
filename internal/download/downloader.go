package download

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/edward-yakop/go-apkwatch/internal/misc"
)

// ChunkSize is the read size of the transfer loop; the listener fires once per chunk.
const ChunkSize = 8 * 1024

const partialExt = ".part"

var log = misc.NewLogger("Download")

// Streamer opens a streamed GET. length is -1 or 0 when unknown.
type Streamer interface {
	Stream(ctx context.Context, URL string) (body io.ReadCloser, length int64, err error)
}

// MarkerWriter records the version a download is attempted for.
type MarkerWriter interface {
	Write(version string) error
}

type Downloader struct {
	streamer   Streamer
	marker     MarkerWriter
	url        string
	targetPath string
	listener   Listener
}

// NewDownloader fetches URL into targetPath. A nil listener disables progress.
func NewDownloader(streamer Streamer, marker MarkerWriter, URL, targetPath string, listener Listener) *Downloader {
	if listener == nil {
		listener = doNothingListener
	}
	return &Downloader{
		streamer:   streamer,
		marker:     marker,
		url:        URL,
		targetPath: targetPath,
		listener:   listener,
	}
}

func (d Downloader) TargetPath() string {
	return d.targetPath
}

// Download fetches the package unless the target file already exists. The
// existence of the file alone decides; its content is not checked.
// Bytes are written to a ".part" sibling and renamed only once the stream
// has been fully copied, so an interrupted run never leaves a file at the
// target path.
func (d Downloader) Download(ctx context.Context, version string, sizeMB float64) Outcome {
	exists, err := misc.IsFileExists(d.targetPath)
	if err != nil {
		return Failed(err)
	}
	if exists {
		log.Infof("%s exists, skipping download of %s.", d.targetPath, version)
		return Skipped(ReasonAlreadyExists)
	}

	if err = d.marker.Write(version); err != nil {
		return Failed(err)
	}

	body, length, err := d.streamer.Stream(ctx, d.url)
	if err != nil {
		return Failed(&DownloadError{URL: d.url, Err: err})
	}
	defer func() {
		_ = body.Close()
	}()

	total := length
	if total <= 0 {
		total = int64(sizeMB * 1024 * 1024)
	}
	log.Infof("Downloading %s to %s (%d bytes expected).", version, d.targetPath, total)

	written, err := d.saveBodyToDisk(body, total)
	if err != nil {
		return Failed(&DownloadError{URL: d.url, Written: written, Err: err})
	}
	return Completed(written)
}

func (d Downloader) saveBodyToDisk(body io.Reader, total int64) (written int64, err error) {
	dir := filepath.Dir(d.targetPath)
	if err = os.MkdirAll(dir, 0755); err != nil {
		return 0, errors.Wrap(err, "Create folder ["+dir+"] failed")
	}

	partPath := d.targetPath + partialExt
	f, err := os.OpenFile(partPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return 0, errors.Wrap(err, "Create file ["+partPath+"] failed")
	}

	written, err = Transfer(f, body, total, d.listener)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = errors.Wrap(closeErr, "Close file ["+partPath+"] failed")
	}
	if err != nil {
		return written, err
	}

	if err = os.Rename(partPath, d.targetPath); err != nil {
		return written, errors.Wrap(err, "Rename ["+partPath+"] failed")
	}
	return written, nil
}

// Transfer copies src to dst in ChunkSize reads, notifying listener with the
// running byte count after each chunk written.
func Transfer(dst io.Writer, src io.Reader, total int64, listener Listener) (int64, error) {
	if listener == nil {
		listener = doNothingListener
	}

	buf := make([]byte, ChunkSize)
	var written int64
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			w, werr := dst.Write(buf[:n])
			written += int64(w)
			if werr != nil {
				return written, errors.Wrap(werr, "Write chunk failed")
			}
			if w != n {
				return written, errors.Wrap(io.ErrShortWrite, "Write chunk failed")
			}
			listener(Progress{Downloaded: written, Total: total})
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, errors.Wrap(rerr, "Read stream failed")
		}
	}
}
