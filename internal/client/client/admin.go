package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/taiglo/internal/client/models"
)

func (c *Client) AdminUpdateExperience(ctx context.Context, id string, in models.ExperienceInput) (*models.Experience, error) {
	var out struct {
		Experience models.Experience `json:"experience"`
	}
	if err := c.Do(ctx, http.MethodPut, "/admin/experiences/"+url.PathEscape(id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out.Experience, nil
}

func (c *Client) AdminDeleteExperience(ctx context.Context, id string) error {
	return c.Do(ctx, http.MethodDelete, "/admin/experiences/"+url.PathEscape(id), nil, nil, nil)
}

// BulkUpload posts a spreadsheet of experiences as multipart form data with
// the fields "file" and "created_by".
func (c *Client) BulkUpload(ctx context.Context, filename string, r io.Reader, createdBy string) (*models.BulkUploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := mw.WriteField("created_by", createdBy); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}

	var out models.BulkUploadResult
	err = c.send(ctx, http.MethodPost, c.baseURL+"/admin/experiences/bulk-upload", nil,
		mw.FormDataContentType(), &buf, c.currentToken(), false, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadTemplate returns the backend's description of the bulk-upload
// spreadsheet as raw JSON.
func (c *Client) UploadTemplate(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodGet, "/admin/experiences/template", nil, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
