package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/procare-io/srportal/internal/config"
)

// DefaultMaxSize is the per-file upload limit (25 MB).
const DefaultMaxSize int64 = 25 * 1024 * 1024

var DefaultAllowedExtensions = []string{
	".jpg", ".jpeg", ".png", ".pdf", ".doc", ".docx",
	".xls", ".xlsx", ".zip", ".mov", ".mp4", ".avi", ".3gp",
}

var (
	ErrExtensionNotAllowed = errors.New("file type not allowed")
	ErrTooLarge            = errors.New("file exceeds maximum size")
	ErrEmptyFile           = errors.New("file is empty")
)

// Policy decides which uploads are accepted.
type Policy struct {
	MaxSize           int64
	AllowedExtensions []string
}

func NewPolicy(cfg config.StorageConfig) Policy {
	p := Policy{MaxSize: cfg.Attachments.MaxSize, AllowedExtensions: cfg.Attachments.AllowedExtensions}
	if p.MaxSize <= 0 {
		p.MaxSize = DefaultMaxSize
	}
	if len(p.AllowedExtensions) == 0 {
		p.AllowedExtensions = DefaultAllowedExtensions
	}
	return p
}

// Check validates a file name and size against the policy.
func (p Policy) Check(fileName string, size int64) error {
	ext := strings.ToLower(filepath.Ext(fileName))
	allowed := false
	for _, a := range p.AllowedExtensions {
		if strings.EqualFold(a, ext) {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %s", ErrExtensionNotAllowed, fileName)
	}
	if size <= 0 {
		return fmt.Errorf("%w: %s", ErrEmptyFile, fileName)
	}
	if size > p.MaxSize {
		return fmt.Errorf("%w: %s (%d MB)", ErrTooLarge, fileName, p.MaxSize/(1024*1024))
	}
	return nil
}

// BlobName builds "<request_id>/<uuid>_<filename>".
func BlobName(requestID int64, fileName string) string {
	return strconv.FormatInt(requestID, 10) + "/" + uuid.NewString() + "_" + SanitizeFileName(fileName)
}

// SanitizeFileName keeps the base name and replaces characters that are
// unsafe in paths and URLs.
func SanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "file"
	}
	return out
}
