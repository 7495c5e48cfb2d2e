package datadrop

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/covid19trackerph/tracker/internal/contracts"
	"github.com/covid19trackerph/tracker/pkg/filewriter"
	"github.com/covid19trackerph/tracker/pkg/logger"
	"github.com/covid19trackerph/tracker/pkg/redis"
)

// Downloader fetches the latest data drop into a local directory.
type Downloader struct {
	drive          Drive
	cache          *redis.Cache
	dataDir        string
	readmeFolderID string
	logger         *logger.Logger
}

// NewDownloader creates a Downloader. cache may be nil.
func NewDownloader(drive Drive, cache *redis.Cache, dataDir, readmeFolderID string, log *logger.Logger) *Downloader {
	return &Downloader{
		drive:          drive,
		cache:          cache,
		dataDir:        dataDir,
		readmeFolderID: readmeFolderID,
		logger:         log,
	}
}

// Download writes every file of the data-drop folder into the data directory
// and returns the written paths. An empty folderID is resolved from the readme.
func (d *Downloader) Download(ctx context.Context, folderID string) ([]string, error) {
	start := time.Now()

	if folderID == "" {
		var err error
		folderID, err = d.ResolveFolder(ctx)
		if err != nil {
			return nil, err
		}
	}

	files, err := d.drive.List(ctx, folderQuery(folderID))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("folder %s is empty: %w", folderID, contracts.ErrRemoteNotFound)
	}

	var paths []string
	for _, f := range files {
		path := filepath.Join(d.dataDir, TrimFileName(f.Name))
		d.logger.WithField("file", f.Name).Info("Downloading")

		if err := d.downloadTo(ctx, f.ID, path); err != nil {
			if strings.Contains(f.Name, "Changelog") {
				d.logger.WithError(err).WithField("file", f.Name).Warn("Failed to download changelog")
				continue
			}
			return paths, fmt.Errorf("download %s: %w", f.Name, err)
		}
		paths = append(paths, path)
	}

	d.logger.WithFields(map[string]interface{}{
		"folder_id": folderID,
		"files":     len(paths),
	}).Timed("Data drop downloaded", start)
	return paths, nil
}

// ResolveFolder finds the current data-drop folder through the published readme.
func (d *Downloader) ResolveFolder(ctx context.Context) (string, error) {
	readmes, err := d.drive.List(ctx, readmeQuery(d.readmeFolderID))
	if err != nil {
		return "", err
	}
	if len(readmes) == 0 {
		return "", fmt.Errorf("readme in folder %s: %w", d.readmeFolderID, contracts.ErrRemoteNotFound)
	}
	if len(readmes) > 1 {
		d.logger.WithField("count", len(readmes)).Warn("The READ ME contents have changed")
	}
	readme := readmes[0]
	d.logger.WithField("file", readme.Name).Info("Found readme")

	key := redis.ResolvedFolderKey(readme.ID)
	if d.cache != nil {
		var cached string
		hit, err := d.cache.Get(ctx, key, &cached)
		if err != nil {
			d.logger.WithError(err).Warn("Resolved folder cache unavailable")
		}
		if hit && cached != "" {
			d.logger.WithField("folder_id", cached).Debug("Using cached data-drop folder")
			return cached, nil
		}
	}

	var buf bytes.Buffer
	if err := d.drive.Download(ctx, readme.ID, &buf); err != nil {
		return "", fmt.Errorf("download readme: %w", err)
	}

	link, err := ExtractLink(buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("%s: %w", readme.Name, err)
	}
	d.logger.WithField("link", link).Debug("Extracted data-drop link")

	full, err := d.drive.ResolveRedirect(ctx, link)
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", link, err)
	}

	folderID := FolderID(full)
	if folderID == "" {
		return "", fmt.Errorf("%w: no folder id in %s", contracts.ErrLinkExtraction, full)
	}

	if d.cache != nil {
		if err := d.cache.Set(ctx, key, folderID, redis.TTLResolvedLink); err != nil {
			d.logger.WithError(err).Warn("Failed to cache data-drop folder")
		}
	}
	return folderID, nil
}

func (d *Downloader) downloadTo(ctx context.Context, fileID, path string) error {
	fw, err := filewriter.New(path)
	if err != nil {
		return err
	}
	if err := d.drive.Download(ctx, fileID, fw); err != nil {
		fw.Abort()
		return err
	}
	return fw.Close()
}
