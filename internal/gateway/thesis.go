package gateway

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/SAP-F-2025/thesis-review-portal/internal/models"
	"github.com/SAP-F-2025/thesis-review-portal/internal/session"
)

const (
	listFailed      = "Failed to load the thesis list"
	listUnreachable = "Failed to load the thesis list, please check your network connection"
)

// ThesisUpload is the multipart payload of a new thesis.
type ThesisUpload struct {
	Title   string
	Content string
	File    *FileUpload
}

// FileUpload is an optional document attached to a thesis. Type and size are
// not checked here.
type FileUpload struct {
	Filename string
	Content  io.Reader
}

// GetThesisList fetches theses matching search and status. Filtering is done
// by the backend. The result is empty, never nil, on failure.
func (c *Client) GetThesisList(ctx context.Context, sess *session.Session, n Notifier, search string, status models.StatusFilter) []models.Thesis {
	const op = "list_thesis"

	if status == "" {
		status = models.StatusFilterAll
	}
	query := url.Values{}
	query.Set("search", search)
	query.Set("status", string(status))

	var theses []models.Thesis
	err := c.do(ctx, op, request{method: http.MethodGet, path: "/thesis", query: query, sess: sess}, &theses)
	if err != nil {
		c.fail(ctx, n, op, err, listFailed, listUnreachable)
		return []models.Thesis{}
	}
	if theses == nil {
		theses = []models.Thesis{}
	}
	return theses
}

// GetThesis fetches one thesis with its full review list.
func (c *Client) GetThesis(ctx context.Context, sess *session.Session, n Notifier, id uint) *models.Thesis {
	const op = "get_thesis"

	var thesis models.Thesis
	err := c.do(ctx, op, request{method: http.MethodGet, path: fmt.Sprintf("/thesis/%d", id), sess: sess}, &thesis)
	if err != nil {
		c.fail(ctx, n, op, err, "Failed to load the thesis", "Failed to load the thesis, please check your network connection")
		return nil
	}
	return &thesis
}

// SubmitThesis uploads a new thesis as multipart/form-data.
func (c *Client) SubmitThesis(ctx context.Context, sess *session.Session, n Notifier, upload ThesisUpload) bool {
	const op = "submit_thesis"

	body, contentType := streamThesisUpload(upload)
	req := request{method: http.MethodPost, path: "/thesis", body: body, contentType: contentType, sess: sess}
	if err := c.do(ctx, op, req, nil); err != nil {
		c.fail(ctx, n, op, err, "Failed to submit the thesis", "Failed to submit the thesis")
		return false
	}
	return true
}

// streamThesisUpload returns a reader producing the multipart body while it is
// read, so the file is never held in memory. A write failure surfaces as a
// read error on the returned body.
func streamThesisUpload(upload ThesisUpload) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeThesisUpload(mw, upload))
	}()
	return pr, mw.FormDataContentType()
}

func writeThesisUpload(mw *multipart.Writer, upload ThesisUpload) error {
	if err := mw.WriteField("title", upload.Title); err != nil {
		return fmt.Errorf("write title field: %w", err)
	}
	if err := mw.WriteField("content", upload.Content); err != nil {
		return fmt.Errorf("write content field: %w", err)
	}
	if upload.File != nil && upload.File.Content != nil {
		part, err := mw.CreateFormFile("file", upload.File.Filename)
		if err != nil {
			return fmt.Errorf("create file part: %w", err)
		}
		if _, err := io.Copy(part, upload.File.Content); err != nil {
			return fmt.Errorf("copy file part: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}
	return nil
}

// SubmitReview posts a review. The score is sent exactly as given; the range
// is enforced by the backend.
func (c *Client) SubmitReview(ctx context.Context, sess *session.Session, n Notifier, thesisID uint, review models.ReviewRequest) bool {
	const op = "submit_review"

	req, err := jsonRequest(http.MethodPost, fmt.Sprintf("/thesis/%d/review", thesisID), review, sess)
	if err == nil {
		err = c.do(ctx, op, req, nil)
	}
	if err != nil {
		c.fail(ctx, n, op, err, "Failed to submit the review", "Failed to submit the review")
		return false
	}
	return true
}

// AssignTheses asks the backend to distribute pending theses among experts.
func (c *Client) AssignTheses(ctx context.Context, sess *session.Session, n Notifier) bool {
	const op = "assign_thesis"

	req, err := jsonRequest(http.MethodPost, "/assign-thesis", struct{}{}, sess)
	if err == nil {
		err = c.do(ctx, op, req, nil)
	}
	if err != nil {
		c.fail(ctx, n, op, err, "Failed to assign theses", "Failed to assign theses, please check your network connection")
		return false
	}
	return true
}
