package feeds

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// Downloader pulls feed CSVs out of the shared Drive folder into the local
// data directory the engine reads from.
type Downloader struct {
	drive       *DriveService
	downloadDir string
}

func NewDownloader(drive *DriveService, downloadDir string) *Downloader {
	return &Downloader{drive: drive, downloadDir: downloadDir}
}

// DownloadFolderCSV fetches every CSV in the folder. Non-CSV files are
// skipped; the extractors occasionally leave scratch sheets behind.
func (d *Downloader) DownloadFolderCSV(folderID string) (int, error) {
	files, err := d.drive.ListFiles(folderID)
	if err != nil {
		return 0, fmt.Errorf("failed to list feed folder: %w", err)
	}

	if err := os.MkdirAll(d.downloadDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create download dir: %w", err)
	}

	downloaded := 0
	for _, f := range files {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".csv") {
			log.Debug().Str("file", f.Name).Msg("Skipping non-CSV file")
			continue
		}

		if err := d.downloadOne(f); err != nil {
			log.Error().Err(err).Str("file", f.Name).Msg("Feed download failed")
			continue
		}
		downloaded++
	}

	log.Info().
		Int("downloaded", downloaded).
		Int("listed", len(files)).
		Str("dir", d.downloadDir).
		Msg("Feed folder sync complete")
	return downloaded, nil
}

func (d *Downloader) downloadOne(f *DriveFile) error {
	target := filepath.Join(d.downloadDir, filepath.Base(f.Name))

	tmp, err := os.CreateTemp(d.downloadDir, ".download-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := d.drive.DownloadFile(f.ID, tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	// Rename so the engine never reads a half-written feed.
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move feed into place: %w", err)
	}

	log.Info().Str("file", f.Name).Str("target", target).Msg("Feed downloaded")
	return nil
}
