package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/procare-io/srportal/internal/database"
	"github.com/procare-io/srportal/internal/models"
)

type SQLAttachmentRepository struct {
	qb *database.QueryBuilder
}

func NewSQLAttachmentRepository(qb *database.QueryBuilder) *SQLAttachmentRepository {
	return &SQLAttachmentRepository{qb: qb}
}

const attachmentColumns = "id, request_id, file_name, blob_path, file_size, content_type, uploaded_by, uploaded_date"

func (r *SQLAttachmentRepository) Add(ctx context.Context, a *models.Attachment) error {
	id, err := r.qb.InsertID(ctx, `INSERT INTO attachments
		(request_id, file_name, blob_path, file_size, content_type, uploaded_by, uploaded_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.RequestID, a.FileName, a.BlobPath, a.FileSize, a.ContentType, a.UploadedBy, a.UploadedDate)
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("blob %s: %w", a.BlobPath, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("insert attachment: %w", err)
	}
	a.ID = id
	return nil
}

func (r *SQLAttachmentRepository) ListByRequest(ctx context.Context, requestID int64) ([]models.Attachment, error) {
	out := []models.Attachment{}
	if err := r.qb.SelectContext(ctx, &out,
		"SELECT "+attachmentColumns+" FROM attachments WHERE request_id = ? ORDER BY uploaded_date DESC, id DESC",
		requestID); err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return out, nil
}

func (r *SQLAttachmentRepository) GetByBlobPath(ctx context.Context, blobPath string) (*models.Attachment, error) {
	var a models.Attachment
	err := r.qb.GetContext(ctx, &a, "SELECT "+attachmentColumns+" FROM attachments WHERE blob_path = ?", blobPath)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get attachment: %w", err)
	}
	return &a, nil
}
