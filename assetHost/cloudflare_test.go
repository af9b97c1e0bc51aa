package assetHost

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/cloudflare/cloudflare-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bitmark-inc/image-host/log"
)

func TestMain(m *testing.M) {
	log.UseLogger(zap.NewNop())
	os.Exit(m.Run())
}

func newTestCloudflareHost(t *testing.T, handler http.HandlerFunc) *CloudflareHost {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	host, err := NewCloudflareHost("account-hash", "account-id", "api-token", false,
		cloudflare.BaseURL(server.URL),
		cloudflare.UsingRateLimit(1000))
	require.NoError(t, err)

	return host
}

func writeCloudflareError(w http.ResponseWriter, status, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success":  false,
		"errors":   []map[string]interface{}{{"code": code, "message": message}},
		"messages": []string{},
		"result":   nil,
	})
}

func TestCloudflareHostUpload(t *testing.T) {
	var (
		requests int
		metadata map[string]interface{}
		content  []byte
	)

	host := newTestCloudflareHost(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/accounts/account-id/images/v1", r.URL.Path)
		assert.Equal(t, "Bearer api-token", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("metadata")), &metadata))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "cat.png", header.Filename)
		content, _ = io.ReadAll(file)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"errors":[],"messages":[],"result":{` +
			`"id":"abc123","filename":"cat.png","requireSignedURLs":false,` +
			`"variants":["https://cdn/x.png"]}}`))
	})

	result, err := host.Upload(context.Background(), Asset{
		Name:     "cat.png",
		Title:    "cat",
		MimeType: "image/png",
		Data:     []byte{0, 0, 0},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, requests)
	assert.Equal(t, "https://cdn/x.png", result.URL)
	assert.Equal(t, "abc123", result.AssetID)
	assert.Equal(t, "cat", metadata["title"])
	assert.Equal(t, "image/png", metadata["mime_type"])
	assert.Equal(t, []byte{0, 0, 0}, content)
}

func TestCloudflareHostUploadWithoutVariants(t *testing.T) {
	host := newTestCloudflareHost(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"errors":[],"messages":[],"result":{"id":"abc123","variants":[]}}`))
	})

	result, err := host.Upload(context.Background(), Asset{Name: "cat.png", Data: []byte{1}})
	require.NoError(t, err)
	assert.Equal(t, "https://imagedelivery.net/account-hash/abc123/public", result.URL)
}

func TestCloudflareHostUploadRejected(t *testing.T) {
	host := newTestCloudflareHost(t, func(w http.ResponseWriter, r *http.Request) {
		writeCloudflareError(w, http.StatusBadRequest, 5455, "Unsupported content type")
	})

	_, err := host.Upload(context.Background(), Asset{Name: "cat.png", Data: []byte{1}})
	assert.ErrorIs(t, err, ErrHostRejected)
}

func TestCloudflareHostUploadUnauthorized(t *testing.T) {
	host := newTestCloudflareHost(t, func(w http.ResponseWriter, r *http.Request) {
		writeCloudflareError(w, http.StatusForbidden, 10000, "Authentication error")
	})

	_, err := host.Upload(context.Background(), Asset{Name: "cat.png", Data: []byte{1}})
	assert.ErrorIs(t, err, ErrHostRejected)
}

func TestCloudflareHostUploadUnavailable(t *testing.T) {
	requests := 0
	host := newTestCloudflareHost(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		writeCloudflareError(w, http.StatusServiceUnavailable, 5000, "Service unavailable")
	})

	_, err := host.Upload(context.Background(), Asset{Name: "cat.png", Data: []byte{1}})
	assert.ErrorIs(t, err, ErrHostUnavailable)
	assert.Equal(t, 1, requests, "requests must not be retried")
}

func TestCloudflareHostUploadUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	host, err := NewCloudflareHost("account-hash", "account-id", "api-token", false,
		cloudflare.BaseURL(server.URL))
	require.NoError(t, err)

	_, err = host.Upload(context.Background(), Asset{Name: "cat.png", Data: []byte{1}})
	assert.ErrorIs(t, err, ErrHostUnavailable)
}

func TestCloudflareHostDelete(t *testing.T) {
	var path string
	host := newTestCloudflareHost(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		path = r.URL.Path

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"errors":[],"messages":[],"result":{}}`))
	})

	assert.NoError(t, host.Delete(context.Background(), "abc123"))
	assert.Equal(t, "/accounts/account-id/images/v1/abc123", path)
}

func TestCloudflareHostDeleteNotFound(t *testing.T) {
	host := newTestCloudflareHost(t, func(w http.ResponseWriter, r *http.Request) {
		writeCloudflareError(w, http.StatusNotFound, 5404, "Image not found")
	})

	err := host.Delete(context.Background(), "abc123")
	assert.ErrorIs(t, err, ErrAssetNotFound)
}
