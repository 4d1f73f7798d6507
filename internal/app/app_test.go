package app

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"event-album/internal/config"
	"event-album/internal/handlers"
	"event-album/internal/models"
	"event-album/internal/storage/memory"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "admin@example.com"
	testPassword = "secret"
	testBaseURL  = "http://album.test"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:           config.EnvLocal,
		RecordStore:   config.RecordStoreMemory,
		ObjectStore:   config.ObjectStoreMemory,
		PublicBaseURL: testBaseURL,
		Admin: config.Admin{
			Email:      testEmail,
			Password:   testPassword,
			JWTSecret:  "test-secret",
			SessionTTL: time.Hour,
		},
		EventCacheSize:    16,
		EventCacheTTL:     time.Minute,
		ExportConcurrency: 4,
		FetchTimeout:      time.Second,
		MaxPhotoBytes:     1 << 20,
		MaxBodyBytes:      4 << 20,
		PhotoListLimit:    100,
	}
}

func newTestServer(t *testing.T) *fiber.App {
	t.Helper()
	stores := &Stores{
		Records: memory.NewRecordStore(),
		Objects: memory.NewObjectStore(testBaseURL + "/objects"),
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(testConfig(), log, stores)
}

func testJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func do(t *testing.T, app *fiber.App, method, target, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func login(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp := do(t, app, http.MethodPost, "/api/auth/login", "", models.LoginRequest{Email: testEmail, Password: testPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[models.AuthResponse](t, resp).Token
}

func TestEndToEnd(t *testing.T) {
	app := newTestServer(t)
	token := login(t, app)

	resp := do(t, app, http.MethodPost, "/api/events", token, models.CreateEventRequest{Name: "Wedding"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	event := decode[models.Event](t, resp)
	require.NotEmpty(t, event.ID)

	photo := testJPEG(t)
	resp = do(t, app, http.MethodPost, "/api/upload-photo", "", models.UploadPhotoRequest{
		EventID:   event.ID,
		PhotoData: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(photo),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	uploaded := decode[models.Photo](t, resp)
	assert.Equal(t, event.ID, uploaded.EventID)
	assert.True(t, strings.HasPrefix(uploaded.PhotoURL, testBaseURL+"/objects/"+event.ID+"/"))

	resp = do(t, app, http.MethodGet, "/api/events/"+event.ID+"/photos", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	photos := decode[[]models.Photo](t, resp)
	require.Len(t, photos, 1)
	assert.Equal(t, uploaded.ID, photos[0].ID)

	u, err := url.Parse(uploaded.PhotoURL)
	require.NoError(t, err)
	resp = do(t, app, http.MethodGet, u.Path, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, "max-age=3600", resp.Header.Get(fiber.HeaderCacheControl))
	stored, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, photo, stored)

	resp = do(t, app, http.MethodGet, "/api/events/"+event.ID+"/archive", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/zip", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "fotos-Wedding.zip")
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, "fotos-evento/foto-1.jpg", zr.File[0].Name)

	resp = do(t, app, http.MethodGet, "/api/events/"+event.ID+"/qrcode", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "qrcode-event-"+event.ID+".png")
}

func TestAdminRoutesRequireToken(t *testing.T) {
	app := newTestServer(t)
	token := login(t, app)

	resp := do(t, app, http.MethodPost, "/api/events", token, models.CreateEventRequest{Name: "Party"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	event := decode[models.Event](t, resp)

	for _, target := range []string{
		"/api/events/" + event.ID + "/archive",
		"/api/events/" + event.ID + "/qrcode",
	} {
		resp := do(t, app, http.MethodGet, target, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, target)

		resp = do(t, app, http.MethodGet, target, "not-a-token", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, target)
	}

	resp = do(t, app, http.MethodPost, "/api/events", "", models.CreateEventRequest{Name: "Anonymous"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogin_WrongPassword(t *testing.T) {
	app := newTestServer(t)

	resp := do(t, app, http.MethodPost, "/api/auth/login", "", models.LoginRequest{Email: testEmail, Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogin_SetsSessionCookie(t *testing.T) {
	app := newTestServer(t)

	resp := do(t, app, http.MethodPost, "/api/auth/login", "", models.LoginRequest{Email: testEmail, Password: testPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == handlers.SessionCookie {
			session = c
		}
	}
	require.NotNil(t, session)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: session.Name, Value: session.Value})
	page, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, page.StatusCode)
}

func TestUnknownEvent(t *testing.T) {
	app := newTestServer(t)
	token := login(t, app)
	missing := "00000000-0000-0000-0000-000000000000"

	resp := do(t, app, http.MethodGet, "/api/events/"+missing, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, app, http.MethodGet, "/api/events/"+missing+"/photos", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, app, http.MethodGet, "/api/events/"+missing+"/archive", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, app, http.MethodPost, "/api/upload-photo", "", models.UploadPhotoRequest{
		EventID:   missing,
		PhotoData: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(testJPEG(t)),
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, "not_found", body["code"])

	resp = do(t, app, http.MethodGet, "/event/"+missing, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpload_BadPayload(t *testing.T) {
	app := newTestServer(t)
	token := login(t, app)

	resp := do(t, app, http.MethodPost, "/api/events", token, models.CreateEventRequest{Name: "Gala"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	event := decode[models.Event](t, resp)

	cases := map[string]models.UploadPhotoRequest{
		"missing data":  {EventID: event.ID},
		"missing event": {PhotoData: "data:image/jpeg;base64,AAAA"},
		"not base64":    {EventID: event.ID, PhotoData: "data:image/jpeg;base64,@@@"},
		"not an image":  {EventID: event.ID, PhotoData: "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("hello"))},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			resp := do(t, app, http.MethodPost, "/api/upload-photo", "", req)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	resp = do(t, app, http.MethodGet, "/api/events/"+event.ID+"/photos", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]models.Photo](t, resp))
}

func TestPages(t *testing.T) {
	app := newTestServer(t)
	token := login(t, app)

	resp := do(t, app, http.MethodPost, "/api/events", token, models.CreateEventRequest{Name: "Birthday"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	event := decode[models.Event](t, resp)

	resp = do(t, app, http.MethodGet, "/event/"+event.ID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Birthday")
	assert.Contains(t, string(body), `data-event-id="`+event.ID+`"`)

	resp = do(t, app, http.MethodGet, "/admin", "", nil)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin/login", resp.Header.Get(fiber.HeaderLocation))

	resp = do(t, app, http.MethodGet, "/admin/login", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, app, http.MethodGet, "/admin/event/"+event.ID, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, app, http.MethodGet, "/static/capture.js", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListPhotos_EmptyAlbum(t *testing.T) {
	app := newTestServer(t)
	token := login(t, app)

	resp := do(t, app, http.MethodPost, "/api/events", token, models.CreateEventRequest{Name: "Empty"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	event := decode[models.Event](t, resp)

	resp = do(t, app, http.MethodGet, "/api/events/"+event.ID+"/photos", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(body))
}
