package handlers_test

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"outfit-studio-backend/internal/config"
	"outfit-studio-backend/internal/creem"
	"outfit-studio-backend/internal/database"
	"outfit-studio-backend/internal/handlers"
	"outfit-studio-backend/internal/middleware"
	"outfit-studio-backend/internal/models"
	"outfit-studio-backend/internal/storage"
)

func testConfig() *config.Config {
	return &config.Config{
		AuthJWTSecret:        "test-secret",
		OutfitGenerationCost: 5,
		MockGeneration:       true,
	}
}

func mockDB(t *testing.T) (*database.Client, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return database.NewClientFromDB(db), mock
}

// asUser sets the resolved identity the way the Identity middleware would.
func asUser(userUUID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userUUID != "" {
			c.Set(middleware.UserUUIDKey, userUUID)
		}
		c.Next()
	}
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req, _ := http.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) models.Envelope {
	t.Helper()
	var envelope models.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", handlers.HealthHandler)

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestGenOutfit_InvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewGenOutfitHandler(testConfig(), nil, nil, nil)

	router := gin.New()
	router.POST("/api/gen-outfit", handler.GenOutfit)

	req, _ := http.NewRequest("POST", "/api/gen-outfit", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Errors travel inside the envelope, never as HTTP statuses.
	assert.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, -1, envelope.Code)
	assert.Equal(t, "invalid request body", envelope.Message)
}

func TestGenOutfit_MissingSourceImage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewGenOutfitHandler(testConfig(), nil, nil, nil)

	router := gin.New()
	router.POST("/api/gen-outfit", handler.GenOutfit)

	w := postJSON(t, router, "/api/gen-outfit", models.GenOutfitRequest{Description: "a dress"})

	assert.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, -1, envelope.Code)
	assert.Equal(t, "invalid base_image_url", envelope.Message)
}

func TestGenOutfit_Unauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewGenOutfitHandler(testConfig(), nil, nil, nil)

	router := gin.New()
	router.POST("/api/gen-outfit", handler.GenOutfit)

	w := postJSON(t, router, "/api/gen-outfit", models.GenOutfitRequest{
		BaseImageURL: "https://example.com/base.png",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, -1, envelope.Code)
	assert.Equal(t, "User not authenticated", envelope.Message)
}

func TestGenOutfit_InsufficientCredits(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dbClient, mock := mockDB(t)
	handler := handlers.NewGenOutfitHandler(testConfig(), nil, dbClient, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT left_credits FROM users")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"left_credits"}).AddRow(2))

	router := gin.New()
	router.Use(asUser("user-1"))
	router.POST("/api/gen-outfit", handler.GenOutfit)

	w := postJSON(t, router, "/api/gen-outfit", models.GenOutfitRequest{
		BaseImageURL: "https://example.com/base.png",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, -1, envelope.Code)
	assert.Equal(t, "Not enough credits", envelope.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenOutfit_MockLayeredReturnsFourActiveRecords(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dbClient, mock := mockDB(t)
	handler := handlers.NewGenOutfitHandler(testConfig(), nil, dbClient, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT left_credits FROM users")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"left_credits"}).AddRow(10))
	mock.ExpectBegin()
	for i := 0; i < 4; i++ {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outfits")).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET left_credits = left_credits - $1")).
		WithArgs(5, "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO credits")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.Use(asUser("user-1"))
	router.POST("/api/gen-outfit", handler.GenOutfit)

	numLayers := 4
	w := postJSON(t, router, "/api/gen-outfit", models.GenOutfitRequest{
		Image:     "https://example.com/source.png",
		NumLayers: &numLayers,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Code int                      `json:"code"`
		Data models.GenOutfitResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Code)
	require.Len(t, resp.Data.Outfits, 4)

	// user_uuid must land on the wire as a plain string, not a struct.
	assert.Contains(t, w.Body.String(), `"user_uuid":"user-1"`)

	seen := map[string]bool{}
	for _, outfit := range resp.Data.Outfits {
		assert.False(t, seen[outfit.UUID], "uuid %s reused", outfit.UUID)
		seen[outfit.UUID] = true
		assert.Equal(t, models.StatusActive, outfit.Status)
		assert.True(t, outfit.UserUUID.Valid)
		assert.Equal(t, "user-1", outfit.UserUUID.String)
		assert.NotEmpty(t, outfit.ImgURL)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenOutfit_MockLayeredHonorsNumLayers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dbClient, mock := mockDB(t)
	handler := handlers.NewGenOutfitHandler(testConfig(), nil, dbClient, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT left_credits FROM users")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"left_credits"}).AddRow(10))
	mock.ExpectBegin()
	for i := 0; i < 2; i++ {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outfits")).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET left_credits = left_credits - $1")).
		WithArgs(5, "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO credits")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.Use(asUser("user-1"))
	router.POST("/api/gen-outfit", handler.GenOutfit)

	numLayers := 2
	w := postJSON(t, router, "/api/gen-outfit", models.GenOutfitRequest{
		Image:     "https://example.com/source.png",
		NumLayers: &numLayers,
	})

	var resp struct {
		Code int                      `json:"code"`
		Data models.GenOutfitResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Code)
	assert.Len(t, resp.Data.Outfits, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenLayered_MissingImage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewGenOutfitHandler(testConfig(), nil, nil, nil)

	router := gin.New()
	router.POST("/api/gen-qwen-image-layered", handler.GenLayered)

	w := postJSON(t, router, "/api/gen-qwen-image-layered", models.GenLayeredRequest{Description: "split this"})

	envelope := decodeEnvelope(t, w)
	assert.Equal(t, -1, envelope.Code)
	assert.Equal(t, "invalid image", envelope.Message)
}

func TestImageText_Unauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewImageTextHandler(testConfig(), nil, nil)

	router := gin.New()
	router.POST("/api/image-text", handler.ImageText)

	w := postJSON(t, router, "/api/image-text", models.ImageTextRequest{
		BaseImageURL: "https://example.com/base.png",
	})

	envelope := decodeEnvelope(t, w)
	assert.Equal(t, -1, envelope.Code)
	assert.Equal(t, "User not authenticated", envelope.Message)
}

func TestFlipImage_InvalidFlipType(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewFlipImageHandler(nil, nil)

	router := gin.New()
	router.POST("/api/flip-image", handler.FlipImage)

	w := postJSON(t, router, "/api/flip-image", models.FlipImageRequest{
		BaseImageURL: "https://example.com/base.png",
		FlipType:     "diagonal",
	})

	envelope := decodeEnvelope(t, w)
	assert.Equal(t, -1, envelope.Code)
	assert.Contains(t, envelope.Message, "invalid flip_type")
}

func TestRecognizeText_MissingImage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewRecognizeHandler(testConfig(), nil, nil, nil)

	router := gin.New()
	router.POST("/api/recognize-text", handler.RecognizeText)

	w := postJSON(t, router, "/api/recognize-text", models.RecognizeRequest{})

	// recognize-text is the documented exception: it mirrors its codes
	// in the HTTP status.
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecognizeText_Unauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewRecognizeHandler(testConfig(), nil, nil, nil)

	router := gin.New()
	router.POST("/api/recognize-text", handler.RecognizeText)

	w := postJSON(t, router, "/api/recognize-text", models.RecognizeRequest{Image: "aGVsbG8="})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecognizeText_InsufficientCredits(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dbClient, mock := mockDB(t)
	handler := handlers.NewRecognizeHandler(testConfig(), nil, nil, dbClient)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT left_credits FROM users")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"left_credits"}).AddRow(0))

	router := gin.New()
	router.Use(asUser("user-1"))
	router.POST("/api/recognize-text", handler.RecognizeText)

	w := postJSON(t, router, "/api/recognize-text", models.RecognizeRequest{Image: "aGVsbG8="})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserCredits(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dbClient, mock := mockDB(t)
	handler := handlers.NewCreationsHandler(dbClient)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT left_credits FROM users")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"left_credits"}).AddRow(17))

	router := gin.New()
	router.Use(asUser("user-1"))
	router.GET("/api/get-user-credits", handler.GetUserCredits)

	req, _ := http.NewRequest("GET", "/api/get-user-credits", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, 0, envelope.Code)
	assert.Contains(t, w.Body.String(), `"left_credits":17`)
}

func TestMyCreations_Unauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewCreationsHandler(nil)

	router := gin.New()
	router.GET("/api/my-creations", handler.MyCreations)

	req, _ := http.NewRequest("GET", "/api/my-creations", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	envelope := decodeEnvelope(t, w)
	assert.Equal(t, -1, envelope.Code)
	assert.Equal(t, "User not authenticated", envelope.Message)
}

func TestSyncUser_MissingEmail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewCreationsHandler(nil)

	router := gin.New()
	router.Use(asUser("user-1"))
	router.POST("/api/sync-user", handler.SyncUser)

	w := postJSON(t, router, "/api/sync-user", models.SyncUserRequest{Nickname: "jo"})

	envelope := decodeEnvelope(t, w)
	assert.Equal(t, -1, envelope.Code)
	assert.Equal(t, "email is required", envelope.Message)
}

func TestCreateCheckout_Unauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewPaymentHandler(testConfig(), nil, nil)

	router := gin.New()
	router.POST("/api/checkout/creem", handler.CreateCheckout)

	w := postJSON(t, router, "/api/checkout/creem", gin.H{})

	envelope := decodeEnvelope(t, w)
	assert.Equal(t, -1, envelope.Code)
	assert.Equal(t, "User not authenticated", envelope.Message)
}

func TestCreemCallback_SettlesOrderAndRedirects(t *testing.T) {
	gin.SetMode(gin.TestMode)

	creemServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ch_1", r.URL.Query().Get("checkout_id"))
		w.Write([]byte(`{
			"id": "ch_1",
			"request_id": "order-1",
			"order": {"status": "paid"},
			"customer": {"email": "buyer@example.com"}
		}`))
	}))
	defer creemServer.Close()

	dbClient, mock := mockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM orders")).
		WithArgs("order-1").
		WillReturnRows(sqlmock.NewRows([]string{"order_no", "user_uuid", "credits", "status", "paid_email", "paid_detail", "created_at"}).
			AddRow("order-1", "user-1", 100, models.OrderStatusCreated, nil, nil, time.Now()))
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE orders SET status = $1")).
		WillReturnRows(sqlmock.NewRows([]string{"user_uuid", "credits"}).AddRow("user-1", 100))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET left_credits = left_credits + $1")).
		WithArgs(100, "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO credits")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	cfg := testConfig()
	cfg.PaySuccessURL = "https://app.example.com/pay-success"
	cfg.PayFailURL = "https://app.example.com/pay-fail"
	handler := handlers.NewPaymentHandler(cfg, creem.NewClient(creemServer.URL, "key"), dbClient)

	router := gin.New()
	router.GET("/api/pay/callback/creem", handler.CreemCallback)

	req, _ := http.NewRequest("GET", "/api/pay/callback/creem?checkout_id=ch_1&request_id=order-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://app.example.com/pay-success", w.Header().Get("Location"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreemCallback_RequestIDMismatch(t *testing.T) {
	gin.SetMode(gin.TestMode)

	creemServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "ch_1", "request_id": "some-other-order", "order": {"status": "paid"}}`))
	}))
	defer creemServer.Close()

	cfg := testConfig()
	cfg.PayFailURL = "https://app.example.com/pay-fail"
	handler := handlers.NewPaymentHandler(cfg, creem.NewClient(creemServer.URL, "key"), nil)

	router := gin.New()
	router.GET("/api/pay/callback/creem", handler.CreemCallback)

	req, _ := http.NewRequest("GET", "/api/pay/callback/creem?checkout_id=ch_1&request_id=order-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://app.example.com/pay-fail", w.Header().Get("Location"))
}

func testStorageClient(t *testing.T) *storage.Client {
	t.Helper()
	client, err := storage.NewClient(&config.Config{
		StorageEndpoint:  "https://account-id.r2.cloudflarestorage.com",
		StorageBucket:    "outfit-studio",
		StorageRegion:    "auto",
		StorageAccessKey: "test-access-key",
		StorageSecretKey: "test-secret-key",
	})
	require.NoError(t, err)
	return client
}

func TestDownloadZip_SkipsBadEntries(t *testing.T) {
	gin.SetMode(gin.TestMode)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a.png":
			w.Write([]byte("alpha"))
		case "/b.png":
			w.Write([]byte("beta"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer upstream.Close()

	handler := handlers.NewDownloadHandler(testStorageClient(t))
	router := gin.New()
	router.POST("/api/qwen-image-layered/download-zip", handler.DownloadZip)

	w := postJSON(t, router, "/api/qwen-image-layered/download-zip", models.DownloadZipRequest{
		BaseName: "layers",
		Images: []models.ZipImage{
			{URL: upstream.URL + "/a.png", Name: "a.png"},
			{URL: "ftp://nope/file.png", Name: "bad-scheme.png"},
			{URL: upstream.URL + "/missing.png", Name: "gone.png"},
			{URL: upstream.URL + "/b.png", Name: "b.png"},
		},
	})

	assert.Equal(t, http.StatusOK, w.Code)

	// Unfetchable entries are dropped; the rest still make the archive.
	reader, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	require.NoError(t, err)
	require.Len(t, reader.File, 2)
	assert.Equal(t, "a.png", reader.File[0].Name)
	assert.Equal(t, "b.png", reader.File[1].Name)
}

func TestDownloadZip_NoImages(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewDownloadHandler(nil)

	router := gin.New()
	router.POST("/api/qwen-image-layered/download-zip", handler.DownloadZip)

	w := postJSON(t, router, "/api/qwen-image-layered/download-zip", models.DownloadZipRequest{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownloadWallpaper_ProxiesWithAttachmentHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	}))
	defer upstream.Close()

	handler := handlers.NewDownloadHandler(nil)
	router := gin.New()
	router.GET("/api/wallpaper/download", handler.DownloadWallpaper)

	req, _ := http.NewRequest("GET", "/api/wallpaper/download?url="+url.QueryEscape(upstream.URL+"/w.png")+"&name=sunset.png", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="sunset.png"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "png-bytes", w.Body.String())
}

func TestDownloadWallpaper_NonASCIIFilename(t *testing.T) {
	gin.SetMode(gin.TestMode)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("png-bytes"))
	}))
	defer upstream.Close()

	handler := handlers.NewDownloadHandler(nil)
	router := gin.New()
	router.GET("/api/wallpaper/download", handler.DownloadWallpaper)

	req, _ := http.NewRequest("GET", "/api/wallpaper/download?url="+url.QueryEscape(upstream.URL+"/w.png")+"&name="+url.QueryEscape("晚霞.png"), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	disposition := w.Header().Get("Content-Disposition")
	// ASCII fallback plus RFC 5987 encoded real name.
	assert.Contains(t, disposition, `filename="__.png"`)
	assert.Contains(t, disposition, "filename*=UTF-8''")
}

func TestDownloadWallpaper_MissingURL(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewDownloadHandler(nil)

	router := gin.New()
	router.GET("/api/wallpaper/download", handler.DownloadWallpaper)

	req, _ := http.NewRequest("GET", "/api/wallpaper/download", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
