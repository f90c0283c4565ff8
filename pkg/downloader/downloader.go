// Package downloader fetches the remote sources of a composition.
package downloader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cavaliercoder/grab"
	"github.com/giongto35/vexport/pkg/logger"
	"github.com/gofrs/uuid"
)

type Downloader struct {
	client      *grab.Client
	concurrency int
	log         *logger.Logger
}

func New(concurrency int, log *logger.Logger) *Downloader {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Downloader{client: grab.NewClient(), concurrency: concurrency, log: log}
}

// Download fetches the files into the destination folder and returns
// their local paths by URL. Each URL gets its own stable subfolder so
// the files with the same name don't clash and already downloaded files
// are reused. The error contains all the failed downloads.
func (d *Downloader) Download(dest string, urls ...string) (map[string]string, error) {
	files := make(map[string]string, len(urls))
	reqs := make([]*grab.Request, 0, len(urls))

	var err error
	for _, url := range urls {
		if _, ok := files[url]; ok {
			continue
		}
		files[url] = ""
		dir := Dir(dest, url)
		if er := os.MkdirAll(dir, 0755); er != nil {
			err = errors.Join(err, er)
			continue
		}
		// the trailing separator makes grab name the file
		req, er := grab.NewRequest(dir+string(filepath.Separator), url)
		if er != nil {
			err = errors.Join(err, fmt.Errorf("couldn't make request URL: %v, %w", url, er))
			continue
		}
		// grab copies the request, the tag keeps the source URL
		req.Tag = url
		reqs = append(reqs, req)
	}

	// check each response
	for resp := range d.client.DoBatch(d.concurrency, reqs...) {
		url, _ := resp.Request.Tag.(string)
		if er := resp.Err(); er != nil {
			err = errors.Join(err, fmt.Errorf("download failed: %v, %w", url, er))
			delete(files, url)
			continue
		}
		d.log.Info().Msgf("Downloaded %v -> %v", url, resp.Filename)
		files[url] = resp.Filename
	}
	for url, path := range files {
		if path == "" {
			delete(files, url)
		}
	}
	return files, err
}

// Dir returns the cache folder of the URL.
func Dir(dest, url string) string {
	return filepath.Join(dest, uuid.NewV5(uuid.NamespaceURL, url).String())
}
