package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiesman99/watermark/internal/watermark"
)

// Test server setup
func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	apiServer := NewServer("1.0.0-test", watermark.NewWatermarker(watermark.Options{}))
	srv := httptest.NewServer(NewRouter(apiServer, 30*time.Second, zerolog.Nop()))
	t.Cleanup(srv.Close)
	return srv
}

func encoded(t *testing.T, w, h int, c color.NRGBA, format imaging.Format) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, format))
	return buf.Bytes()
}

func multipartBody(t *testing.T, files map[string][]byte) (io.Reader, string) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for field, data := range files {
		fw, err := mw.CreateFormFile(field, field+".png")
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestHealthEndpoint(t *testing.T) {
	server := setupTestServer(t)

	resp, err := http.Get(server.URL + "/api/v1/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var healthResp HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&healthResp))

	assert.Equal(t, Healthy, healthResp.Status)
	require.NotNil(t, healthResp.Version)
	assert.Equal(t, "1.0.0-test", *healthResp.Version)
	require.NotNil(t, healthResp.Uptime)
	assert.GreaterOrEqual(t, *healthResp.Uptime, 0)
	assert.WithinDuration(t, time.Now(), healthResp.Timestamp, time.Minute)
}

func TestLegacyHealthRedirect(t *testing.T) {
	server := setupTestServer(t)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/api/v1/health", resp.Request.URL.Path)
}

func TestWatermarkEndpoint_Success(t *testing.T) {
	server := setupTestServer(t)

	base := encoded(t, 4, 4, color.NRGBA{A: 255}, imaging.PNG)
	wm := encoded(t, 2, 2, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, imaging.PNG)

	tests := []struct {
		name        string
		query       string
		contentType string
		check       func(t *testing.T, img image.Image)
	}{
		{
			name:        "single placement png",
			query:       "?weight=50&placement=single&x=1&y=1",
			contentType: "image/png",
			check: func(t *testing.T, img image.Image) {
				assert.Equal(t, color.NRGBA{R: 127, G: 127, B: 127, A: 255}, color.NRGBAModel.Convert(img.At(1, 1)))
				assert.Equal(t, color.NRGBA{A: 255}, color.NRGBAModel.Convert(img.At(0, 0)))
				assert.Equal(t, color.NRGBA{A: 255}, color.NRGBAModel.Convert(img.At(3, 3)))
			},
		},
		{
			name:        "grid placement png",
			query:       "?weight=100",
			contentType: "image/png",
			check: func(t *testing.T, img image.Image) {
				assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, color.NRGBAModel.Convert(img.At(3, 3)))
			},
		},
		{
			name:        "color key keeps base",
			query:       "?weight=100&key=255,255,255",
			contentType: "image/png",
			check: func(t *testing.T, img image.Image) {
				assert.Equal(t, color.NRGBA{A: 255}, color.NRGBAModel.Convert(img.At(2, 2)))
			},
		},
		{
			name:        "jpeg output",
			query:       "?weight=20&format=jpg",
			contentType: "image/jpeg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := multipartBody(t, map[string][]byte{"base": base, "watermark": wm})

			resp, err := http.Post(server.URL+"/api/v1/watermark"+tt.query, ct, body)
			require.NoError(t, err)
			defer resp.Body.Close()

			data, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", data)

			assert.Equal(t, tt.contentType, resp.Header.Get("Content-Type"))
			assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

			img, err := imaging.Decode(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, 4, img.Bounds().Dx())
			assert.Equal(t, 4, img.Bounds().Dy())
			if tt.check != nil {
				tt.check(t, img)
			}
		})
	}
}

func TestWatermarkEndpoint_Errors(t *testing.T) {
	server := setupTestServer(t)

	base := encoded(t, 4, 4, color.NRGBA{A: 255}, imaging.PNG)
	wm := encoded(t, 2, 2, color.NRGBA{R: 255, A: 255}, imaging.PNG)
	large := encoded(t, 5, 2, color.NRGBA{R: 255, A: 255}, imaging.PNG)
	translucent := encoded(t, 4, 4, color.NRGBA{R: 255, A: 10}, imaging.PNG)

	tests := []struct {
		name     string
		query    string
		files    map[string][]byte
		wantCode string
	}{
		{"missing weight", "", map[string][]byte{"base": base, "watermark": wm}, CodeInvalidParameter},
		{"weight not an integer", "?weight=abc", map[string][]byte{"base": base, "watermark": wm}, CodeInvalidParameter},
		{"weight out of range", "?weight=150", map[string][]byte{"base": base, "watermark": wm}, CodeInvalidParameter},
		{"missing watermark", "?weight=50", map[string][]byte{"base": base}, CodeMissingFile},
		{"broken base", "?weight=50", map[string][]byte{"base": []byte("broken"), "watermark": wm}, CodeInvalidImageFormat},
		{"translucent base", "?weight=50", map[string][]byte{"base": translucent, "watermark": wm}, CodeInvalidImageFormat},
		{"watermark too large", "?weight=50", map[string][]byte{"base": base, "watermark": large}, CodeWatermarkTooLarge},
		{"bad key", "?weight=50&key=1,2", map[string][]byte{"base": base, "watermark": wm}, CodeInvalidParameter},
		{"alpha without alpha channel", "?weight=50&alpha=true", map[string][]byte{"base": base, "watermark": wm}, CodeInvalidParameter},
		{"bad placement", "?weight=50&placement=center", map[string][]byte{"base": base, "watermark": wm}, CodeInvalidParameter},
		{"single without position", "?weight=50&placement=single", map[string][]byte{"base": base, "watermark": wm}, CodeInvalidParameter},
		{"position out of range", "?weight=50&placement=single&x=3&y=0", map[string][]byte{"base": base, "watermark": wm}, CodeInvalidParameter},
		{"bad format", "?weight=50&format=gif", map[string][]byte{"base": base, "watermark": wm}, CodeInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := multipartBody(t, tt.files)

			resp, err := http.Post(server.URL+"/api/v1/watermark"+tt.query, ct, body)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

			var errResp ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
			assert.Equal(t, tt.wantCode, errResp.Error)
			assert.NotEmpty(t, errResp.Message)
			require.NotNil(t, errResp.RequestId)
			assert.NotEmpty(t, *errResp.RequestId)
		})
	}
}

func TestWatermarkEndpoint_NotMultipart(t *testing.T) {
	server := setupTestServer(t)

	resp, err := http.Post(server.URL+"/api/v1/watermark?weight=10", "application/json", bytes.NewBufferString("{}"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Equal(t, CodeInvalidRequest, errResp.Error)
}
