package drive

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestService(t *testing.T) *Service {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/files/csv1", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("alt") == "media" {
			_, _ = w.Write([]byte("sku,qty\nA,1\n"))
			return
		}
		writeJSON(w, map[string]string{"id": "csv1", "name": "stock.csv", "mimeType": "text/csv"})
	})
	mux.HandleFunc("/files/sheet1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"id": "sheet1", "name": "Rules", "mimeType": spreadsheetMimeType})
	})
	mux.HandleFunc("/files/sheet1/export", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, xlsxMimeType, r.URL.Query().Get("mimeType"))
		_, _ = w.Write([]byte("xlsx-bytes"))
	})
	mux.HandleFunc("/files", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		switch {
		case strings.Contains(q, "'root' in parents and name='Reports'"):
			writeJSON(w, map[string]interface{}{"files": []map[string]string{{"id": "folder1", "name": "Reports", "mimeType": folderMimeType}}})
		case strings.Contains(q, "'folder1' in parents and name='stock.csv'"):
			writeJSON(w, map[string]interface{}{"files": []map[string]string{{"id": "csv1", "name": "stock.csv", "mimeType": "text/csv"}}})
		default:
			writeJSON(w, map[string]interface{}{"files": []interface{}{}})
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	s, err := NewServiceWithOptions(context.Background(), option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return s
}

func TestDownloader_FetchByID(t *testing.T) {
	dir := t.TempDir()
	d := NewDownloader(newTestService(t), dir)

	path, err := d.Fetch(context.Background(), "csv1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "csv1_stock.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sku,qty\nA,1\n", string(data))
}

func TestDownloader_FetchByPath(t *testing.T) {
	d := NewDownloader(newTestService(t), t.TempDir())

	path, err := d.Fetch(context.Background(), "/Reports/stock.csv")
	require.NoError(t, err)
	assert.Equal(t, "csv1_stock.csv", filepath.Base(path))
}

func TestDownloader_ExportsSpreadsheets(t *testing.T) {
	d := NewDownloader(newTestService(t), t.TempDir())

	path, err := d.Fetch(context.Background(), "sheet1")
	require.NoError(t, err)
	assert.Equal(t, "sheet1_Rules.xlsx", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "xlsx-bytes", string(data))
}

func TestService_FindFileNotFound(t *testing.T) {
	s := newTestService(t)

	_, err := s.FindFile(context.Background(), "Missing/file.csv")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.FindFile(context.Background(), "Reports/other.csv")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewService_BadCredentials(t *testing.T) {
	_, err := NewService(context.Background(), "{not json")
	assert.Error(t, err)
}

func TestDownloader_RequiresDir(t *testing.T) {
	_, err := NewDownloader(newTestService(t), "").Fetch(context.Background(), "csv1")
	assert.Error(t, err)
}
