package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/projexhq/projex-api/internal/apperr"
	"github.com/projexhq/projex-api/internal/config"
)

// ErrNoFile reports that the multipart form carried no file part.
var ErrNoFile = errors.New("no file in request")

// allowedExtensions mirrors the upload policy: images and common office
// documents only.
var allowedExtensions = map[string]struct{}{
	".jpeg": {}, ".jpg": {}, ".png": {}, ".gif": {}, ".pdf": {},
	".doc": {}, ".docx": {}, ".xls": {}, ".xlsx": {}, ".ppt": {}, ".pptx": {},
}

// SavedFile describes a stored upload.
type SavedFile struct {
	Filename string
	Path     string
	Mimetype string
	Size     int64
}

// UploadSaver writes multipart uploads to the configured directory
// under random names, keeping the original name as metadata only.
type UploadSaver struct {
	cfg config.UploadsConfig
}

// NewUploadSaver constructs an UploadSaver.
func NewUploadSaver(cfg config.UploadsConfig) *UploadSaver {
	return &UploadSaver{cfg: cfg}
}

// Save extracts the named file part, validates it, and writes it to
// disk. Returns ErrNoFile when the part is absent.
func (u *UploadSaver) Save(r *http.Request, field string) (*SavedFile, error) {
	if err := r.ParseMultipartForm(u.cfg.MaxSizeBytes); err != nil {
		return nil, apperr.Validation("invalid multipart payload")
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, ErrNoFile
	}
	defer file.Close() //nolint:errcheck

	if header.Size > u.cfg.MaxSizeBytes {
		return nil, apperr.Validation("file exceeds the %d byte limit", u.cfg.MaxSizeBytes)
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return nil, apperr.Validation("files of this type are not allowed")
	}

	if err := os.MkdirAll(u.cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}

	storedName := uuid.NewString() + ext
	path := filepath.Join(u.cfg.Dir, storedName)
	out, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}
	defer out.Close() //nolint:errcheck

	size, err := io.Copy(out, io.LimitReader(file, u.cfg.MaxSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("write upload file: %w", err)
	}

	return &SavedFile{
		Filename: header.Filename,
		Path:     path,
		Mimetype: header.Header.Get("Content-Type"),
		Size:     size,
	}, nil
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}
