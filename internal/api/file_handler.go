package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/procare-io/srportal/internal/middleware"
	"github.com/procare-io/srportal/internal/service"
)

// FileHandler uploads attachments and serves signed downloads.
type FileHandler struct {
	attachments *service.AttachmentService
	logger      *zap.Logger
}

func NewFileHandler(attachments *service.AttachmentService, logger *zap.Logger) *FileHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileHandler{attachments: attachments, logger: logger}
}

// Upload takes multipart form fields request_id and files.
func (h *FileHandler) Upload(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		middleware.AbortWithError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "Expected multipart form data")
		return
	}
	defer form.RemoveAll()

	requestID, err := strconv.ParseInt(firstValue(form.Value["request_id"]), 10, 64)
	if err != nil || requestID <= 0 {
		middleware.AbortWithError(c, http.StatusBadRequest, "request_id is required")
		return
	}

	headers := form.File["files"]
	files := make([]service.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			respondError(c, h.logger, fmt.Errorf("open upload %s: %w", fh.Filename, err))
			return
		}
		defer f.Close()
		files = append(files, service.UploadFile{
			Name:        fh.Filename,
			ContentType: contentType(fh),
			Size:        fh.Size,
			Body:        f,
		})
	}

	result, err := h.attachments.Upload(c.Request.Context(), claims, requestID, files)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DownloadLink returns a signed link for /api/download/:id/:file.
func (h *FileHandler) DownloadLink(c *gin.Context) {
	claims, id, ok := requestParams(c)
	if !ok {
		return
	}
	link, err := h.attachments.DownloadLink(c.Request.Context(), claims, id, c.Param("file"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

// Serve streams the attachment behind a signed token. The token is the
// credential, so this route sits outside bearer auth.
func (h *FileHandler) Serve(c *gin.Context) {
	rc, a, err := h.attachments.Open(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer rc.Close()

	ct := a.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	disposition := "inline"
	if c.Query("download") == "true" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, a.FileName))
	c.Header("Content-Type", ct)
	c.Header("Cache-Control", "private, max-age=3600")
	if a.FileSize > 0 {
		c.Header("Content-Length", strconv.FormatInt(a.FileSize, 10))
	}

	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		// headers are already out
		h.logger.Warn("download interrupted", zap.String("file", a.FileName), zap.Error(err))
		c.Abort()
	}
}

func firstValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func contentType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
