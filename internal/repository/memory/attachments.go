package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/procare-io/srportal/internal/models"
	"github.com/procare-io/srportal/internal/repository"
)

var (
	errDuplicateCode = fmt.Errorf("request code: %w", repository.ErrDuplicate)
	errDuplicateBlob = fmt.Errorf("blob path: %w", repository.ErrDuplicate)
)

type AttachmentRepository struct {
	mu     sync.RWMutex
	items  []models.Attachment
	nextID int64
}

func NewAttachmentRepository() *AttachmentRepository {
	return &AttachmentRepository{nextID: 1}
}

func (r *AttachmentRepository) Add(_ context.Context, a *models.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.BlobPath == a.BlobPath {
			return errDuplicateBlob
		}
	}
	a.ID = r.nextID
	r.nextID++
	r.items = append(r.items, *a)
	return nil
}

func (r *AttachmentRepository) ListByRequest(_ context.Context, requestID int64) ([]models.Attachment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Attachment{}
	for _, a := range r.items {
		if a.RequestID == requestID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].UploadedDate.Equal(out[j].UploadedDate) {
			return out[i].UploadedDate.After(out[j].UploadedDate)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *AttachmentRepository) GetByBlobPath(_ context.Context, blobPath string) (*models.Attachment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.items {
		if a.BlobPath == blobPath {
			out := a
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}
