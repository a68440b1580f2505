package roboflow

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the Roboflow API endpoint
const DefaultBaseURL = "https://api.roboflow.com"

// DefaultFormat is the dataset export format requested on download
const DefaultFormat = "yolov8"

const requestTimeout = 5 * time.Minute

// exportResponse is the API reply to a version export request
type exportResponse struct {
	Export struct {
		Link string `json:"link"`
	} `json:"export"`
	Progress float64 `json:"progress"`
}

// Client downloads dataset exports from the Roboflow API
type Client struct {
	apiKey  string
	baseURL string
	rest    *resty.Client
}

// NewClient creates a Client using the given API key
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		rest:    resty.New().SetTimeout(requestTimeout),
	}
}

// SetBaseURL overrides the API endpoint, used for testing
func (c *Client) SetBaseURL(url string) {
	c.baseURL = strings.TrimSuffix(url, "/")
}

// Download fetches a dataset version export and extracts it into
// destDir.  The workspace, project and version identify the dataset on
// Roboflow and format selects the export layout, the yolov8 format
// when empty.
func (c *Client) Download(ctx context.Context, workspace, project string,
	version int, format, destDir string) error {

	if format == "" {
		format = DefaultFormat
	}

	url := fmt.Sprintf("%s/%s/%s/%d/%s", c.baseURL, workspace, project,
		version, format)

	var export exportResponse

	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParam("api_key", c.apiKey).
		SetResult(&export).
		Get(url)

	if err != nil {
		return fmt.Errorf("error requesting dataset export: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("dataset export request failed: %s, body: %s",
			resp.Status(), resp.String())
	}

	if export.Export.Link == "" {
		return fmt.Errorf("dataset export has no download link")
	}

	zipFile, err := c.fetchArchive(ctx, export.Export.Link)

	if err != nil {
		return err
	}

	defer os.Remove(zipFile)

	if err := extractArchive(zipFile, destDir); err != nil {
		return err
	}

	return nil
}

// fetchArchive downloads the export archive to a temporary file and
// returns its path
func (c *Client) fetchArchive(ctx context.Context, link string) (string, error) {

	tmp, err := os.CreateTemp("", "dataset-*.zip")

	if err != nil {
		return "", fmt.Errorf("error creating temporary file: %w", err)
	}

	tmpName := tmp.Name()
	tmp.Close()

	resp, err := c.rest.R().
		SetContext(ctx).
		SetOutput(tmpName).
		Get(link)

	if err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("error downloading dataset archive: %w", err)
	}

	if resp.IsError() {
		os.Remove(tmpName)
		return "", fmt.Errorf("dataset archive download failed: %s", resp.Status())
	}

	return tmpName, nil
}

// extractArchive unpacks a zip archive into destDir rejecting entries
// that escape the destination
func extractArchive(zipFile, destDir string) error {

	r, err := zip.OpenReader(zipFile)

	if err != nil {
		return fmt.Errorf("error opening dataset archive: %w", err)
	}

	defer r.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("error creating dataset directory: %w", err)
	}

	for _, f := range r.File {
		if err := extractEntry(f, destDir); err != nil {
			return err
		}
	}

	return nil
}

func extractEntry(f *zip.File, destDir string) error {

	dest := filepath.Join(destDir, filepath.Clean(f.Name))

	if !strings.HasPrefix(dest, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return fmt.Errorf("archive entry %q escapes destination", f.Name)
	}

	if f.FileInfo().IsDir() {
		if err := os.MkdirAll(dest, 0755); err != nil {
			return fmt.Errorf("error creating directory: %w", err)
		}

		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	src, err := f.Open()

	if err != nil {
		return fmt.Errorf("error reading archive entry: %w", err)
	}

	defer src.Close()

	out, err := os.Create(dest)

	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}

	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("error extracting archive entry: %w", err)
	}

	return nil
}
