package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowad-platform/merit-api/internal/models"
)

type fakeImportService struct {
	summary *models.ImportSummary
	err     error
}

func (s *fakeImportService) Import(context.Context, io.Reader) (*models.ImportSummary, error) {
	return s.summary, s.err
}

func multipartUpload(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestImportHandlerUpload(t *testing.T) {
	svc := &fakeImportService{summary: &models.ImportSummary{Added: 2, Skipped: 1, Errors: []string{"line 3: bad class"}}}
	router := gin.New()
	router.POST("/students/import", NewImportHandler(svc, 0).Import)

	body, contentType := multipartUpload(t, "file", "roster.csv", "name,class\nSara,1/A\n")
	req := httptest.NewRequest(http.MethodPost, "/students/import", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"added":2`)
	assert.Contains(t, w.Body.String(), "bad class")
}

func TestImportHandlerMissingFile(t *testing.T) {
	router := gin.New()
	router.POST("/students/import", NewImportHandler(&fakeImportService{}, 0).Import)

	body, contentType := multipartUpload(t, "other", "roster.csv", "x")
	req := httptest.NewRequest(http.MethodPost, "/students/import", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportHandlerFileTooLarge(t *testing.T) {
	router := gin.New()
	router.POST("/students/import", NewImportHandler(&fakeImportService{}, 8).Import)

	body, contentType := multipartUpload(t, "file", "roster.csv", "name,class\nSara,1/A\n")
	req := httptest.NewRequest(http.MethodPost, "/students/import", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "too large")
}
