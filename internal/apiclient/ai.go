package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"github.com/nutriscan/nutriscan-go/internal/model"
)

// Image is a file selected for upload.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// UploadFoodImage submits an image for analysis. Empty notes are omitted.
// A FAILED analysis comes back as an *Error whose Message is the server's.
func (c *Client) UploadFoodImage(ctx context.Context, img Image, userID int64, notes string) (model.UploadResponse, error) {
	fields := map[string]string{"userId": strconv.FormatInt(userID, 10)}
	if notes != "" {
		fields["notes"] = notes
	}

	req, err := multipartRequest("/ai/agent/upload", "file", []Image{img}, fields)
	if err != nil {
		return model.UploadResponse{}, err
	}

	var resp model.UploadResponse
	_, err = c.do(ctx, req, &resp)
	return resp, err
}

// TestChat sends a prompt to the chat endpoint and returns the reply text.
func (c *Client) TestChat(ctx context.Context, prompt, chatID string) (string, error) {
	q := url.Values{}
	q.Set("prompt", prompt)
	q.Set("chatId", chatID)

	var reply string
	_, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/ai/chat?" + q.Encode(),
		accept: "text/html",
	}, &reply)
	return reply, err
}

// UploadS3 stores a file in object storage and returns its URL.
func (c *Client) UploadS3(ctx context.Context, img Image) (string, error) {
	req, err := multipartRequest("/s3/upload", "file", []Image{img}, nil)
	if err != nil {
		return "", err
	}

	var objectURL string
	_, err = c.do(ctx, req, &objectURL)
	return objectURL, err
}

func multipartRequest(path, field string, images []Image, fields map[string]string) (request, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for _, img := range images {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(field), escapeQuotes(img.Filename)))
		contentType := img.ContentType
		if contentType == "" {
			contentType = http.DetectContentType(img.Data)
		}
		hdr.Set("Content-Type", contentType)

		part, err := mw.CreatePart(hdr)
		if err != nil {
			return request{}, fmt.Errorf("create file part: %w", err)
		}
		if _, err := part.Write(img.Data); err != nil {
			return request{}, fmt.Errorf("write file part: %w", err)
		}
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return request{}, fmt.Errorf("write field %s: %w", name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return request{}, fmt.Errorf("close multipart body: %w", err)
	}

	return request{
		method:      http.MethodPost,
		path:        path,
		body:        &buf,
		contentType: mw.FormDataContentType(),
		accept:      "application/json",
	}, nil
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
