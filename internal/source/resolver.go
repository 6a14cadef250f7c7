package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andresuchdata/restock-engine/internal/storage"
	"golang.org/x/sync/errgroup"
)

const (
	schemeS3    = "s3"
	schemeDrive = "drive"
	schemeFile  = "file"
)

var (
	// ErrNotConfigured is returned for a remote scheme whose backend was not set up.
	ErrNotConfigured = errors.New("source backend not configured")
	// ErrReadOnly is returned when publishing to a scheme that cannot be written.
	ErrReadOnly = errors.New("source is read-only")
	// ErrInvalidURI is returned for a remote URI without bucket, key or file reference.
	ErrInvalidURI = errors.New("invalid source uri")
)

// DriveFetcher downloads a Drive file reference into a local path.
type DriveFetcher interface {
	Fetch(ctx context.Context, ref string) (string, error)
}

// Resolver turns input and output locations into local files.
// Supported forms are plain paths, file://path, s3://bucket/key and drive://<file id or folder/path>.
type Resolver struct {
	workDir string
	buckets storage.Buckets
	drive   DriveFetcher
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithBuckets enables s3:// locations.
func WithBuckets(b storage.Buckets) Option {
	return func(r *Resolver) { r.buckets = b }
}

// WithDrive enables drive:// locations.
func WithDrive(d DriveFetcher) Option {
	return func(r *Resolver) { r.drive = d }
}

// NewResolver downloads remote inputs below workDir.
func NewResolver(workDir string, opts ...Option) *Resolver {
	r := &Resolver{workDir: workDir}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Location is a parsed source URI.
type Location struct {
	Scheme string
	Bucket string
	Path   string
}

// IsRemote reports whether the location lives outside the local filesystem.
func (l Location) IsRemote() bool {
	return l.Scheme == schemeS3 || l.Scheme == schemeDrive
}

// Parse splits uri into its scheme, bucket and path.
func Parse(uri string) (Location, error) {
	uri = strings.TrimSpace(uri)
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return Location{Scheme: schemeFile, Path: uri}, nil
	}

	switch strings.ToLower(scheme) {
	case schemeFile:
		return Location{Scheme: schemeFile, Path: rest}, nil
	case schemeS3:
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" || key == "" {
			return Location{}, fmt.Errorf("%w: %s", ErrInvalidURI, uri)
		}
		return Location{Scheme: schemeS3, Bucket: bucket, Path: key}, nil
	case schemeDrive:
		if strings.Trim(rest, "/") == "" {
			return Location{}, fmt.Errorf("%w: %s", ErrInvalidURI, uri)
		}
		return Location{Scheme: schemeDrive, Path: rest}, nil
	default:
		return Location{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURI, scheme)
	}
}

// Fetch returns a local path holding the content of uri, downloading it when remote.
func (r *Resolver) Fetch(ctx context.Context, uri string) (string, error) {
	loc, err := Parse(uri)
	if err != nil {
		return "", err
	}

	switch loc.Scheme {
	case schemeS3:
		if r.buckets == nil {
			return "", fmt.Errorf("%w: s3", ErrNotConfigured)
		}
		dest, err := r.downloadPath(loc)
		if err != nil {
			return "", err
		}
		if err := r.buckets.Bucket(loc.Bucket).DownloadObject(ctx, loc.Path, dest); err != nil {
			return "", err
		}
		return dest, nil
	case schemeDrive:
		if r.drive == nil {
			return "", fmt.Errorf("%w: drive", ErrNotConfigured)
		}
		return r.drive.Fetch(ctx, loc.Path)
	default:
		if _, err := os.Stat(loc.Path); err != nil {
			return "", fmt.Errorf("input %s: %w", loc.Path, err)
		}
		return loc.Path, nil
	}
}

// downloadPath maps an object to a file below workDir. Keys that would
// escape it are rejected.
func (r *Resolver) downloadPath(loc Location) (string, error) {
	root := filepath.Clean(r.workDir)
	dest := filepath.Join(root, loc.Bucket, filepath.FromSlash(loc.Path))
	rel, err := filepath.Rel(root, dest)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: object %s/%s escapes work dir", ErrInvalidURI, loc.Bucket, loc.Path)
	}
	return dest, nil
}

// FetchAll fetches every uri concurrently and returns the local paths in the same order.
func (r *Resolver) FetchAll(ctx context.Context, uris ...string) ([]string, error) {
	paths := make([]string, len(uris))
	g, gctx := errgroup.WithContext(ctx)
	for i, uri := range uris {
		i, uri := i, uri
		g.Go(func() error {
			path, err := r.Fetch(gctx, uri)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", uri, err)
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// Publish moves a locally written file to uri: uploading it for s3:// and
// copying it for local paths. Drive locations are read-only.
func (r *Resolver) Publish(ctx context.Context, localPath, uri string) error {
	loc, err := Parse(uri)
	if err != nil {
		return err
	}

	switch loc.Scheme {
	case schemeS3:
		if r.buckets == nil {
			return fmt.Errorf("%w: s3", ErrNotConfigured)
		}
		data, err := os.ReadFile(localPath)
		if err != nil {
			return fmt.Errorf("failed reading %s: %w", localPath, err)
		}
		return r.buckets.Bucket(loc.Bucket).UploadObject(ctx, loc.Path, data)
	case schemeDrive:
		return fmt.Errorf("%w: drive", ErrReadOnly)
	default:
		return copyFile(localPath, loc.Path)
	}
}

func copyFile(src, dst string) error {
	if filepath.Clean(src) == filepath.Clean(dst) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed creating directory for %s: %w", dst, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
