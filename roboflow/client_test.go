package roboflow

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// makeArchive builds a zip archive in memory with the given files
func makeArchive(t *testing.T, files map[string]string) []byte {

	t.Helper()

	var buf bytes.Buffer

	w := zip.NewWriter(&buf)

	for name, content := range files {
		f, err := w.Create(name)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return buf.Bytes()
}

func TestClientDownload(t *testing.T) {

	archive := makeArchive(t, map[string]string{
		"data.yaml":               "nc: 22\n",
		"train/images/frame1.jpg": "jpg",
		"train/labels/frame1.txt": "4 0.5 0.5 0.02 0.03\n",
	})

	var srv *httptest.Server

	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/workspace/project/3/yolov8":
			if r.URL.Query().Get("api_key") != "test-key" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"export":{"link":"%s/archive.zip"},"progress":1.0}`, srv.URL)

		case "/archive.zip":
			w.Write(archive)

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	defer srv.Close()

	client := NewClient("test-key")
	client.SetBaseURL(srv.URL)

	destDir := t.TempDir()

	err := client.Download(context.Background(), "workspace", "project", 3,
		"", destDir)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, name := range []string{"data.yaml", "train/images/frame1.jpg",
		"train/labels/frame1.txt"} {
		if _, err := os.Stat(filepath.Join(destDir, name)); err != nil {
			t.Errorf("expected extracted file %s: %v", name, err)
		}
	}
}

func TestClientDownloadBadKey(t *testing.T) {

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	defer srv.Close()

	client := NewClient("wrong-key")
	client.SetBaseURL(srv.URL)

	err := client.Download(context.Background(), "workspace", "project", 3,
		"", t.TempDir())

	if err == nil {
		t.Error("expected error for rejected api key")
	}
}

func TestExtractArchiveRejectsEscape(t *testing.T) {

	archive := makeArchive(t, map[string]string{
		"../outside.txt": "bad",
	})

	zipFile := filepath.Join(t.TempDir(), "bad.zip")

	if err := os.WriteFile(zipFile, archive, 0644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := extractArchive(zipFile, t.TempDir()); err == nil {
		t.Error("expected error for archive entry escaping destination")
	}
}
