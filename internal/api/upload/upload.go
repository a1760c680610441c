// Package upload stores user media (avatars, cover images, videos,
// thumbnails) and hands back a public URL for it.
package upload

import (
	"context"
	"errors"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/aussiebroadwan/vidhub/pkg/idx"
)

// Folders objects are grouped under.
const (
	FolderAvatars    = "avatars"
	FolderCovers     = "covers"
	FolderVideos     = "videos"
	FolderThumbnails = "thumbnails"
)

// ErrEmptyFile is returned for zero-length uploads.
var ErrEmptyFile = errors.New("upload: empty file")

// File is one incoming file. Size may be -1 when unknown.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Result struct {
	Key string
	URL string
}

// Uploader persists a file under folder. Implementations must not leave a
// partial object behind when they return an error.
//
// Delete removes an object by the key Upload returned. Deleting a missing
// object is not an error.
type Uploader interface {
	Upload(ctx context.Context, folder string, f File) (Result, error)
	Delete(ctx context.Context, key string) error
}

// ObjectKey builds "<folder>/<ulid><ext>". The client supplied name only
// contributes its (lowercased) extension.
func ObjectKey(folder, name string) string {
	ext := strings.ToLower(filepath.Ext(path.Base(strings.ReplaceAll(name, `\`, "/"))))
	if len(ext) > 10 || strings.ContainsAny(ext, " /?#%") {
		ext = ""
	}
	return folder + "/" + idx.New().String() + ext
}

func contentTypeOrDefault(ct string) string {
	if ct == "" {
		return "application/octet-stream"
	}
	return ct
}
