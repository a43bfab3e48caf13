package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/store-portal-bfa-go/internal/domain"
)

const uploadFailedMessage = "Upload failed."

type uploadResponse struct {
	Success  bool   `json:"success"`
	FileName string `json:"fileName"`
	Error    string `json:"error"`
}

// UploadDocument sends one identity-document image as multipart form data
// (fields "file" and "uploadtype"). It runs inside the upload bulkhead, is
// never retried, and every failure comes back as *domain.ErrUpload.
func (c *BackendClient) UploadDocument(ctx context.Context, kind domain.DocumentKind, fileName, contentType string, data []byte) (*domain.UploadResult, error) {
	ctx, span := tracer.Start(ctx, "BackendClient.UploadDocument")
	defer span.End()
	span.SetAttributes(
		attribute.String("document.kind", string(kind)),
		attribute.Int("document.size", len(data)),
	)

	var result *domain.UploadResult
	err := c.bulkhead.Do(ctx, func() error {
		_, cbErr := c.cb.Execute(func() (any, error) {
			r, err := c.upload(ctx, kind, fileName, contentType, data)
			result = r
			return nil, err
		})
		return cbErr
	})
	if err == nil {
		return result, nil
	}

	if c.metrics != nil {
		c.metrics.IncrBackendError(EndpointUpload)
	}
	var uploadErr *domain.ErrUpload
	if errors.As(err, &uploadErr) {
		return nil, uploadErr
	}
	c.logger.Warn("document upload failed",
		zap.String("kind", string(kind)),
		zap.Error(err),
	)
	return nil, &domain.ErrUpload{Kind: kind, Message: uploadFailedMessage}
}

func (c *BackendClient) upload(ctx context.Context, kind domain.DocumentKind, fileName, contentType string, data []byte) (*domain.UploadResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := mw.WriteField("uploadtype", string(kind)); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpointURL(EndpointUpload), &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.ErrNetwork{Service: EndpointUpload, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &domain.ErrNetwork{Service: EndpointUpload, Err: err}
	}

	if resp.StatusCode >= 500 {
		return nil, &domain.ErrServer{Service: EndpointUpload, Status: resp.StatusCode}
	}

	var decoded uploadResponse
	_ = json.Unmarshal(raw, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !decoded.Success || decoded.FileName == "" {
		msg := decoded.Error
		if msg == "" {
			msg = uploadFailedMessage
		}
		return nil, &domain.ErrUpload{Kind: kind, Message: msg}
	}

	return &domain.UploadResult{Kind: kind, RemoteFileName: decoded.FileName}, nil
}
