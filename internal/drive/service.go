package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	folderMimeType      = "application/vnd.google-apps.folder"
	spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"
	xlsxMimeType        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ErrNotFound is returned when a folder or file path does not resolve.
var ErrNotFound = errors.New("drive: not found")

type Service struct {
	srv *drive.Service
}

// NewService authenticates with a service-account key and read-only scope.
func NewService(ctx context.Context, credentialsJSON string) (*Service, error) {
	config, err := google.JWTConfigFromJSON(
		[]byte(credentialsJSON),
		drive.DriveReadonlyScope,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to parse drive credentials: %w", err)
	}

	return NewServiceWithOptions(ctx, option.WithHTTPClient(config.Client(ctx)))
}

// NewServiceWithOptions builds a Service from raw client options.
func NewServiceWithOptions(ctx context.Context, opts ...option.ClientOption) (*Service, error) {
	srv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Drive client: %w", err)
	}
	return &Service{srv: srv}, nil
}

type File struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
	Size         int64  `json:"size,string,omitempty"`
}

// IsSpreadsheet reports whether the file is a native Google Sheet that has to be exported.
func (f *File) IsSpreadsheet() bool {
	return f.MimeType == spreadsheetMimeType
}

func toFile(f *drive.File) *File {
	return &File{
		ID:           f.Id,
		Name:         f.Name,
		MimeType:     f.MimeType,
		ModifiedTime: f.ModifiedTime,
		Size:         f.Size,
	}
}

// GetFile returns the metadata of one file.
func (s *Service) GetFile(ctx context.Context, fileID string) (*File, error) {
	f, err := s.srv.Files.Get(fileID).
		Fields("id, name, mimeType, modifiedTime, size").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to get file %s: %w", fileID, err)
	}
	return toFile(f), nil
}

func (s *Service) list(ctx context.Context, q string) ([]*File, error) {
	result, err := s.srv.Files.List().
		Q(q).
		Fields("files(id, name, mimeType, modifiedTime, size)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve files: %w", err)
	}

	files := make([]*File, 0, len(result.Files))
	for _, f := range result.Files {
		files = append(files, toFile(f))
	}
	return files, nil
}

// FindFolderByPath walks "a/b/c" from the root folder and returns the last folder's ID.
func (s *Service) FindFolderByPath(ctx context.Context, path string) (string, error) {
	currentID := "root"
	for _, folder := range strings.Split(path, "/") {
		if folder == "" {
			continue
		}

		files, err := s.list(ctx, fmt.Sprintf("'%s' in parents and name='%s' and mimeType='%s' and trashed=false",
			escapeQuery(currentID), escapeQuery(folder), folderMimeType))
		if err != nil {
			return "", fmt.Errorf("error finding folder %s: %w", folder, err)
		}
		if len(files) == 0 {
			return "", fmt.Errorf("%w: folder %s", ErrNotFound, folder)
		}
		currentID = files[0].ID
	}
	return currentID, nil
}

// FindFile resolves "folder/sub/name.xlsx" to the file's metadata.
func (s *Service) FindFile(ctx context.Context, path string) (*File, error) {
	path = strings.Trim(path, "/")
	dir, name := "", path
	if i := strings.LastIndex(path, "/"); i >= 0 {
		dir, name = path[:i], path[i+1:]
	}
	if name == "" {
		return nil, fmt.Errorf("%w: empty file name", ErrNotFound)
	}

	folderID, err := s.FindFolderByPath(ctx, dir)
	if err != nil {
		return nil, err
	}
	files, err := s.list(ctx, fmt.Sprintf("'%s' in parents and name='%s' and trashed=false",
		escapeQuery(folderID), escapeQuery(name)))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: file %s", ErrNotFound, path)
	}
	return files[0], nil
}

// DownloadFile copies the content of f to w. Google Sheets are exported as XLSX.
func (s *Service) DownloadFile(ctx context.Context, f *File, w io.Writer) error {
	var (
		resp *http.Response
		err  error
	)
	if f.IsSpreadsheet() {
		resp, err = s.srv.Files.Export(f.ID, xlsxMimeType).Context(ctx).Download()
	} else {
		resp, err = s.srv.Files.Get(f.ID).Context(ctx).Download()
	}
	if err != nil {
		return fmt.Errorf("unable to download file %s: %w", f.ID, err)
	}
	defer resp.Body.Close()

	_, err = io.Copy(w, resp.Body)
	return err
}

func escapeQuery(v string) string {
	return strings.ReplaceAll(v, "'", `\'`)
}
