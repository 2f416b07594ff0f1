package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/docuflow/docuflow/pkg/logger"
)

var ErrInvalidFileName = errors.New("invalid document file name")

// DownloadService streams document PDFs into a local downloads
// directory and hands the path back for the viewer to open.
type DownloadService struct {
	files FileAPI
	dir   string
	log   *logger.Logger
}

func NewDownloadService(files FileAPI, downloadDir string, log *logger.Logger) *DownloadService {
	return &DownloadService{files: files, dir: downloadDir, log: log}
}

// DownloadPDF fetches the document by its unique file name and writes
// it under the downloads directory, returning the local path. A failed
// download leaves no partial file behind.
func (s *DownloadService) DownloadPDF(ctx context.Context, fileUniqueName string) (string, error) {
	if fileUniqueName == "" || strings.ContainsAny(fileUniqueName, `/\`) {
		return "", ErrInvalidFileName
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	path := filepath.Join(s.dir, fileUniqueName)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if err := s.files.DownloadPDF(ctx, fileUniqueName, f); err != nil {
		f.Close()
		os.Remove(path)
		s.log.Error("download failed", "file", fileUniqueName, "error", err)
		return "", fmt.Errorf("download failed: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	s.log.Info("document downloaded", "file", fileUniqueName, "path", path)
	return path, nil
}
