package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/procare-io/srportal/sdk/go/types"
)

// RequestsService handles the request dashboard operations
type RequestsService struct {
	client *Client
}

func filterQuery(filter *types.RequestFilter) map[string]string {
	query := map[string]string{}
	if filter == nil {
		return query
	}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}
	if filter.FromDate != nil {
		query["from_date"] = filter.FromDate.Format("2006-01-02")
	}
	if filter.ToDate != nil {
		query["to_date"] = filter.ToDate.Format("2006-01-02")
	}
	if filter.ItemNumber != "" {
		query["item_number"] = filter.ItemNumber
	}
	if filter.SerialNumber != "" {
		query["serial_number"] = filter.SerialNumber
	}
	return query
}

// List returns the requests visible to the caller, newest first.
func (s *RequestsService) List(ctx context.Context, filter *types.RequestFilter) ([]types.ServiceRequest, error) {
	var result []types.ServiceRequest
	err := s.client.Get(ctx, "/api/requests", filterQuery(filter), &result)
	return result, err
}

// Get retrieves a specific request by ID, attachments included
func (s *RequestsService) Get(ctx context.Context, id int64) (*types.ServiceRequest, error) {
	var result types.ServiceRequest
	if err := s.client.Get(ctx, fmt.Sprintf("/api/requests/%d", id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Activity returns the request's history, oldest first.
func (s *RequestsService) Activity(ctx context.Context, id int64) ([]types.ActivityLog, error) {
	var result []types.ActivityLog
	err := s.client.Get(ctx, fmt.Sprintf("/api/requests/%d/activity", id), nil, &result)
	return result, err
}

// UpdateStatus moves a request to a new status. Only staff may do this.
func (s *RequestsService) UpdateStatus(ctx context.Context, id int64, status types.RequestStatus) (*types.StatusUpdateResponse, error) {
	var result types.StatusUpdateResponse
	body := map[string]types.RequestStatus{"status": status}
	if err := s.client.Patch(ctx, fmt.Sprintf("/api/requests/%d/status", id), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Export streams the filtered request list as an .xlsx workbook to w.
func (s *RequestsService) Export(ctx context.Context, filter *types.RequestFilter, w io.Writer) error {
	req := s.client.httpClient.R().
		SetContext(ctx).
		SetQueryParams(filterQuery(filter)).
		SetDoNotParseResponse(true)
	resp, err := s.client.execute(req, http.MethodGet, "/api/requests/export.xlsx")
	if err != nil {
		closeRaw(resp)
		return err
	}
	body := resp.RawBody()
	defer body.Close()
	if _, err := io.Copy(w, body); err != nil {
		return fmt.Errorf("failed to read export: %w", err)
	}
	return nil
}

func closeRaw(resp *resty.Response) {
	if resp != nil && resp.RawBody() != nil {
		resp.RawBody().Close()
	}
}

// FilesService handles request attachments
type FilesService struct {
	client *Client
}

// Upload attaches local files to an existing request.
func (s *FilesService) Upload(ctx context.Context, requestID int64, paths ...string) (*types.UploadResult, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files to upload")
	}

	req := s.client.httpClient.R().
		SetContext(ctx).
		SetFormData(map[string]string{"request_id": strconv.FormatInt(requestID, 10)})

	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", p, err)
		}
		defer f.Close()
		req.SetFileReader("files", filepath.Base(p), f)
	}

	var result types.UploadResult
	req.SetResult(&result)
	if _, err := s.client.execute(req, http.MethodPost, "/api/upload"); err != nil {
		return nil, err
	}
	return &result, nil
}

// DownloadLink returns a short-lived link for one attachment.
func (s *FilesService) DownloadLink(ctx context.Context, requestID int64, fileName string) (*types.DownloadLink, error) {
	var result types.DownloadLink
	path := fmt.Sprintf("/api/download/%d/%s", requestID, fileName)
	if err := s.client.Get(ctx, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Download copies the file behind link to w.
func (s *FilesService) Download(ctx context.Context, link *types.DownloadLink, w io.Writer) error {
	req := s.client.httpClient.R().SetContext(ctx).SetDoNotParseResponse(true)
	resp, err := s.client.execute(req, http.MethodGet, link.DownloadURL)
	if err != nil {
		closeRaw(resp)
		return err
	}
	body := resp.RawBody()
	defer body.Close()
	_, err = io.Copy(w, body)
	return err
}
