package objectstore

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/config"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{filename: "photo.JPG", want: "deals/u1/id.jpg"},
		{filename: "../../etc/passwd", want: "deals/u1/id"},
		{filename: "image.png", want: "deals/u1/id.png"},
		{filename: "noext", want: "deals/u1/id"},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, ObjectKey("u1", "id", tt.filename))
		})
	}
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(context.Background(), config.S3{Region: "af-south-1"})
	assert.Error(t, err)
}

func TestUploadImage_PutsObject(t *testing.T) {
	var (
		mu          sync.Mutex
		gotPath     string
		gotBody     string
		gotType     string
		requestSeen bool
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		requestSeen = true
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store, err := New(context.Background(), config.S3{
		Region:    "af-south-1",
		Bucket:    "deal-images",
		Endpoint:  srv.URL,
		AccessKey: "key",
		SecretKey: "secret",
	})
	require.NoError(t, err)

	url, err := store.UploadImage(context.Background(), "supplier-1", "chair.png", "image/png", []byte("png-bytes"))
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.True(t, requestSeen)
	assert.True(t, strings.HasPrefix(gotPath, "/deal-images/deals/supplier-1/"))
	assert.True(t, strings.HasSuffix(gotPath, ".png"))
	assert.Equal(t, "image/png", gotType)
	assert.Contains(t, gotBody, "png-bytes")
	assert.True(t, strings.HasPrefix(url, srv.URL+"/deal-images/deals/supplier-1/"))
}
