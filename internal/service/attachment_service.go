package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/procare-io/srportal/internal/auth"
	"github.com/procare-io/srportal/internal/events"
	"github.com/procare-io/srportal/internal/models"
	"github.com/procare-io/srportal/internal/repository"
	"github.com/procare-io/srportal/internal/storage"
)

// DownloadLinkTTL is how long a signed download link stays valid.
const DownloadLinkTTL = time.Hour

// UploadFile is one file of a multipart upload.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// AttachmentService stores request attachments and hands out signed
// download links for them.
type AttachmentService struct {
	requests    repository.RequestRepository
	attachments repository.AttachmentRepository
	backend     storage.Backend
	policy      storage.Policy
	jwt         *auth.JWTManager
	rbac        *auth.RBAC
	baseURL     string
	publisher   events.Publisher
	metrics     *Metrics
	logger      *zap.Logger
	now         func() time.Time
}

type AttachmentOptions struct {
	Policy    storage.Policy
	BaseURL   string
	Publisher events.Publisher
	Metrics   *Metrics
	Logger    *zap.Logger
}

func NewAttachmentService(store *repository.Store, backend storage.Backend, jwt *auth.JWTManager, rbac *auth.RBAC, opts AttachmentOptions) *AttachmentService {
	s := &AttachmentService{
		requests:    store.Requests,
		attachments: store.Attachments,
		backend:     backend,
		policy:      opts.Policy,
		jwt:         jwt,
		rbac:        rbac,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		publisher:   opts.Publisher,
		metrics:     opts.Metrics,
		logger:      opts.Logger,
		now:         time.Now,
	}
	if s.policy.MaxSize <= 0 {
		s.policy.MaxSize = storage.DefaultMaxSize
	}
	if len(s.policy.AllowedExtensions) == 0 {
		s.policy.AllowedExtensions = storage.DefaultAllowedExtensions
	}
	if s.rbac == nil {
		s.rbac = auth.NewRBAC()
	}
	if s.publisher == nil {
		s.publisher = events.Nop{}
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Upload checks every file against the policy before storing any of them,
// then writes each blob and its attachment row.
func (s *AttachmentService) Upload(ctx context.Context, claims *auth.Claims, requestID int64, files []UploadFile) (*models.UploadResult, error) {
	req, err := s.loadRequest(ctx, claims, requestID)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, Invalid("No files provided")
	}
	for _, f := range files {
		if err := s.policy.Check(f.Name, f.Size); err != nil {
			return nil, policyError(f.Name, s.policy, err)
		}
	}

	stored := make([]models.Attachment, 0, len(files))
	for _, f := range files {
		a, err := s.store(ctx, claims, req, f)
		if err != nil {
			return nil, err
		}
		stored = append(stored, *a)
	}

	return &models.UploadResult{
		Success: true,
		Files:   stored,
		Message: fmt.Sprintf("Uploaded %d files", len(stored)),
	}, nil
}

func (s *AttachmentService) store(ctx context.Context, claims *auth.Claims, req *models.ServiceRequest, f UploadFile) (*models.Attachment, error) {
	blobName := storage.BlobName(req.ID, f.Name)
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	obj, err := s.backend.Put(ctx, blobName, io.LimitReader(f.Body, s.policy.MaxSize+1), contentType)
	if err != nil {
		return nil, &Error{Kind: KindUnavailable, Message: "Upload failed", Err: err}
	}
	if obj.Size > s.policy.MaxSize {
		s.removeBlob(ctx, blobName)
		return nil, Invalid("File %s exceeds %s limit", f.Name, sizeLabel(s.policy.MaxSize))
	}

	now := s.now().UTC()
	a := &models.Attachment{
		RequestID:    req.ID,
		FileName:     filepath.Base(strings.ReplaceAll(f.Name, "\\", "/")),
		BlobPath:     blobName,
		FileSize:     obj.Size,
		ContentType:  contentType,
		UploadedBy:   claims.Email,
		UploadedDate: now,
	}
	if err := s.attachments.Add(ctx, a); err != nil {
		s.removeBlob(ctx, blobName)
		return nil, fmt.Errorf("record attachment: %w", err)
	}

	if err := s.requests.AddActivity(ctx, &models.ActivityLog{
		RequestID:           req.ID,
		ActivityType:        models.ActivityAttachment,
		ActivityDescription: "Attachment added: " + a.FileName,
		PerformedBy:         claims.Email,
		PerformedDate:       now,
	}); err != nil {
		s.logger.Warn("failed to log attachment activity", zap.Int64("request_id", req.ID), zap.Error(err))
	}

	s.metrics.uploads.Inc()
	s.logger.Info("attachment stored",
		zap.String("request_code", req.RequestCode),
		zap.String("blob", blobName),
		zap.Int64("size", obj.Size),
	)
	if err := s.publisher.Publish(ctx, events.Event{
		Type:           events.TypeAttachmentAdded,
		RequestID:      req.ID,
		RequestCode:    req.RequestCode,
		CustomerNumber: req.CustomerNumber,
		Territory:      req.Territory,
		CountryCode:    req.CountryCode,
		Status:         string(req.Status),
		FileName:       a.FileName,
		Actor:          claims.Email,
		OccurredAt:     now,
	}); err != nil {
		s.logger.Warn("failed to publish event", zap.String("request_code", req.RequestCode), zap.Error(err))
	}
	return a, nil
}

func (s *AttachmentService) removeBlob(ctx context.Context, name string) {
	if err := s.backend.Delete(ctx, name); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Warn("failed to remove blob", zap.String("blob", name), zap.Error(err))
	}
}

// DownloadLink returns a signed URL for "<requestID>/<blobFilename>" that
// stays valid for DownloadLinkTTL.
func (s *AttachmentService) DownloadLink(ctx context.Context, claims *auth.Claims, requestID int64, blobFilename string) (*models.DownloadLink, error) {
	if blobFilename == "" || strings.ContainsAny(blobFilename, "/\\") || blobFilename == "." || blobFilename == ".." {
		return nil, Invalid("Invalid file name")
	}
	if _, err := s.loadRequest(ctx, claims, requestID); err != nil {
		return nil, err
	}

	blobPath := fmt.Sprintf("%d/%s", requestID, blobFilename)
	if _, err := s.attachments.GetByBlobPath(ctx, blobPath); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("Attachment not found")
		}
		return nil, err
	}

	token, expires, err := s.jwt.GenerateDownloadToken(blobPath, DownloadLinkTTL)
	if err != nil {
		return nil, fmt.Errorf("sign download link: %w", err)
	}
	return &models.DownloadLink{
		DownloadURL: s.baseURL + "/api/files/" + token,
		ExpiresAt:   expires,
	}, nil
}

// Open resolves a signed download token to the attachment and its content.
// Callers close the reader.
func (s *AttachmentService) Open(ctx context.Context, token string) (io.ReadCloser, *models.Attachment, error) {
	blobPath, err := s.jwt.ValidateDownloadToken(token)
	if err != nil {
		return nil, nil, Forbidden("Invalid or expired download link")
	}
	a, err := s.attachments.GetByBlobPath(ctx, blobPath)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, NotFound("Attachment not found")
	}
	if err != nil {
		return nil, nil, err
	}
	rc, _, err := s.backend.Open(ctx, blobPath)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, NotFound("Attachment not found")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open blob: %w", err)
	}
	return rc, a, nil
}

func (s *AttachmentService) loadRequest(ctx context.Context, claims *auth.Claims, id int64) (*models.ServiceRequest, error) {
	if claims == nil || !s.rbac.HasPermission(claims.Role, auth.PermissionAttachmentUpload) {
		return nil, Forbidden("Insufficient permissions")
	}
	req, err := s.requests.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound("Request not found")
	}
	if err != nil {
		return nil, err
	}
	if !s.rbac.CanAccessRequest(claims, req) {
		return nil, Forbidden("Access denied")
	}
	return req, nil
}

func policyError(name string, p storage.Policy, err error) error {
	switch {
	case errors.Is(err, storage.ErrExtensionNotAllowed):
		return Invalid("File type %s not allowed", strings.ToLower(filepath.Ext(name)))
	case errors.Is(err, storage.ErrTooLarge):
		return Invalid("File %s exceeds %s limit", name, sizeLabel(p.MaxSize))
	case errors.Is(err, storage.ErrEmptyFile):
		return Invalid("File %s is empty", name)
	}
	return Invalid("%s", err.Error())
}

func sizeLabel(n int64) string {
	const mb = 1024 * 1024
	if n >= mb && n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}
