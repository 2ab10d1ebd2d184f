package apiclient

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriscan/nutriscan-go/internal/model"
)

func TestUploadFoodImage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ai/agent/upload", r.URL.Path)
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		data, _ := io.ReadAll(file)
		assert.Equal(t, "lunch.jpg", header.Filename)
		assert.Equal(t, "image/jpeg", header.Header.Get("Content-Type"))
		assert.Equal(t, "jpeg-bytes", string(data))
		assert.Equal(t, "7", r.FormValue("userId"))
		_, hasNotes := r.MultipartForm.Value["notes"]
		assert.False(t, hasNotes)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"status":"SUCCESS","logId":31,"count":4,"confidence":90}`)
	})

	resp, err := c.UploadFoodImage(context.Background(), Image{Filename: "lunch.jpg", ContentType: "image/jpeg", Data: []byte("jpeg-bytes")}, 7, "")
	require.NoError(t, err)
	assert.Equal(t, model.StatusSuccess, resp.Status)
	assert.Equal(t, int64(31), resp.LogID)
	require.NotNil(t, resp.Count)
	assert.Equal(t, 4, *resp.Count)
}

func TestUploadFoodImage_Failed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "less salt", r.FormValue("notes"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"status":"FAILED","message":"An error occurred during AI analysis: timeout","logId":5}`)
	})

	_, err := c.UploadFoodImage(context.Background(), Image{Filename: "a.png", Data: []byte("\x89PNG\r\n\x1a\n")}, 1, "less salt")
	require.Error(t, err)
	assert.Equal(t, "An error occurred during AI analysis: timeout", Message(err))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
}

func TestTestChat(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/html", r.Header.Get("Accept"))
		assert.Equal(t, "what is kcal?", r.URL.Query().Get("prompt"))
		assert.Equal(t, "c-1", r.URL.Query().Get("chatId"))
		w.Header().Set("Content-Type", "text/html;charset=UTF-8")
		io.WriteString(w, "A unit of energy.")
	})

	reply, err := c.TestChat(context.Background(), "what is kcal?", "c-1")
	require.NoError(t, err)
	assert.Equal(t, "A unit of energy.", reply)
}

func TestTestChat_ToleratesJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `"quoted"`)
	})

	reply, err := c.TestChat(context.Background(), "hi", "")
	require.NoError(t, err)
	assert.Equal(t, `"quoted"`, reply)
}

func TestUploadS3(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/s3/upload", r.URL.Path)
		w.Header().Set("Content-Type", "text/plain;charset=UTF-8")
		io.WriteString(w, "https://bucket.example.com/uploads/x.png")
	})

	url, err := c.UploadS3(context.Background(), Image{Filename: "x.png", ContentType: "image/png", Data: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.example.com/uploads/x.png", url)
}
