package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// DiskUploader writes objects under a local directory. It is meant for
// development; Handler serves the directory back.
type DiskUploader struct {
	dir     string
	baseURL string
}

func NewDiskUploader(dir, baseURL string) (*DiskUploader, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("upload: create %s: %w", dir, err)
	}
	return &DiskUploader{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (u *DiskUploader) Upload(ctx context.Context, folder string, f File) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if f.Size == 0 {
		return Result{}, ErrEmptyFile
	}

	key := ObjectKey(folder, f.Name)
	dst := filepath.Join(u.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return Result{}, fmt.Errorf("upload: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return Result{}, fmt.Errorf("upload: %w", err)
	}

	n, err := io.Copy(out, f.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err == nil && n == 0 {
		err = ErrEmptyFile
	}
	if err != nil {
		_ = os.Remove(dst)
		if errors.Is(err, ErrEmptyFile) {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("upload: write %s: %w", key, err)
	}

	return Result{Key: key, URL: u.baseURL + "/" + key}, nil
}

func (u *DiskUploader) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !filepath.IsLocal(filepath.FromSlash(key)) {
		return fmt.Errorf("upload: invalid key %q", key)
	}

	err := os.Remove(filepath.Join(u.dir, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("upload: delete %s: %w", key, err)
	}
	return nil
}

// Handler serves stored objects; mount it with http.StripPrefix.
func (u *DiskUploader) Handler() http.Handler {
	return http.FileServer(http.Dir(u.dir))
}
