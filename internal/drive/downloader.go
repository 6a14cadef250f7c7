package drive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Downloader pulls single Drive files into a local directory.
type Downloader struct {
	service *Service
	dir     string
}

// NewDownloader creates a Downloader writing into dir.
func NewDownloader(s *Service, dir string) *Downloader {
	return &Downloader{service: s, dir: dir}
}

// Fetch downloads the file named by ref and returns its local path.
// ref is a file ID, or a "folder/name.ext" path when it contains a slash.
// Google Sheets are saved with an .xlsx extension.
func (d *Downloader) Fetch(ctx context.Context, ref string) (string, error) {
	if d.dir == "" {
		return "", fmt.Errorf("download dir is required")
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create download dir: %w", err)
	}

	var (
		f   *File
		err error
	)
	if strings.Contains(strings.Trim(ref, "/"), "/") {
		f, err = d.service.FindFile(ctx, ref)
	} else {
		f, err = d.service.GetFile(ctx, strings.Trim(ref, "/"))
	}
	if err != nil {
		return "", err
	}

	name := filepath.Base(f.Name)
	if name == "" || name == "." || name == "/" {
		name = f.ID
	}
	if f.IsSpreadsheet() && !strings.EqualFold(filepath.Ext(name), ".xlsx") {
		name += ".xlsx"
	}
	localPath := filepath.Join(d.dir, f.ID+"_"+name)

	out, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to create local file %s: %w", localPath, err)
	}
	if err := d.service.DownloadFile(ctx, f, out); err != nil {
		out.Close()
		_ = os.Remove(localPath)
		return "", fmt.Errorf("failed to download %s: %w", f.Name, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", localPath, err)
	}
	return localPath, nil
}
