package downloader

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrDataFileMissing is returned when a fetch completed but the expected data
// file still does not exist in the download directory.
var ErrDataFileMissing = errors.New("data file missing after download")

// Fetcher downloads a dataset archive and extracts its contents into destDir.
type Fetcher interface {
	Fetch(ctx context.Context, dataset, destDir string) error
}

// HTTPFetcher fetches a dataset archive over HTTP from a hosted source and
// unpacks the zip into the destination directory. A single attempt, no
// retries.
type HTTPFetcher struct {
	Client  *http.Client
	BaseURL string
}

func NewHTTPFetcher(baseURL string) *HTTPFetcher {
	return &HTTPFetcher{
		Client:  &http.Client{Timeout: 30 * time.Minute},
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, dataset, destDir string) error {
	url := fmt.Sprintf("%s/%s", f.BaseURL, dataset)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", url, err)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s fetching %s", resp.Status, url)
	}

	archive, err := os.CreateTemp(destDir, "dataset-*.zip")
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer os.Remove(archive.Name())

	if _, err := io.Copy(archive, resp.Body); err != nil {
		archive.Close()
		return fmt.Errorf("failed to write archive: %w", err)
	}
	if err := archive.Close(); err != nil {
		return fmt.Errorf("failed to close archive: %w", err)
	}

	return extractZip(archive.Name(), destDir)
}

// extractZip unpacks every file in the archive into destDir, flattening any
// directory structure inside the archive.
func extractZip(archivePath, destDir string) error {
	zipReader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", archivePath, err)
	}
	defer zipReader.Close()

	for _, entry := range zipReader.File {
		if entry.FileInfo().IsDir() {
			continue
		}

		if err := extractEntry(entry, destDir); err != nil {
			return err
		}
	}

	return nil
}

func extractEntry(entry *zip.File, destDir string) error {
	src, err := entry.Open()
	if err != nil {
		return fmt.Errorf("failed to open archive entry %s: %w", entry.Name, err)
	}
	defer src.Close()

	destPath := filepath.Join(destDir, filepath.Base(entry.Name))
	dest, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", destPath, err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, src); err != nil {
		return fmt.Errorf("failed to extract %s: %w", entry.Name, err)
	}

	return nil
}

// Downloader ensures the dataset file is present locally, fetching and
// extracting it when it is not.
type Downloader struct {
	fetcher      Fetcher
	dataset      string
	downloadPath string
	dataFileName string
}

func New(fetcher Fetcher, dataset, downloadPath, dataFileName string) *Downloader {
	return &Downloader{
		fetcher:      fetcher,
		dataset:      dataset,
		downloadPath: downloadPath,
		dataFileName: dataFileName,
	}
}

// Ensure returns the path of the dataset file, downloading it first when
// absent. A download that finishes without materializing the expected file
// fails with ErrDataFileMissing.
func (d *Downloader) Ensure(ctx context.Context) (string, error) {
	if err := os.MkdirAll(d.downloadPath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create download directory %s: %w", d.downloadPath, err)
	}

	dataPath := filepath.Join(d.downloadPath, d.dataFileName)
	if _, err := os.Stat(dataPath); err == nil {
		log.Printf("Dataset already exists at %s. Skipping download.", dataPath)
		return dataPath, nil
	}

	log.Println("Downloading dataset...")
	if err := d.fetcher.Fetch(ctx, d.dataset, d.downloadPath); err != nil {
		return "", fmt.Errorf("failed to download dataset %s: %w", d.dataset, err)
	}

	if _, err := os.Stat(dataPath); err != nil {
		return "", fmt.Errorf("dataset %s: %w", d.dataset, ErrDataFileMissing)
	}

	log.Println("Dataset downloaded and extracted successfully.")
	return dataPath, nil
}
