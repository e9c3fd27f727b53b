package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"MediChain/filestore"
	"MediChain/ledger"
	"MediChain/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func fileRouter(t *testing.T, maxSize int64, claims *models.Claims) *gin.Engine {
	t.Helper()
	store, err := filestore.New(t.TempDir(), maxSize)
	require.NoError(t, err)

	h := NewFileHandler(store)
	router := gin.New()
	router.Use(asCaller(claims))
	router.POST("/upload-file", h.UploadFile)
	router.GET("/file/:hash", h.GetFile)
	return router
}

func upload(router http.Handler, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/upload-file", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUploadThenDownload(t *testing.T) {
	caller := &models.Claims{UserID: "p1", Role: models.RolePatient, WalletAddress: "0xAAA"}
	router := fileRouter(t, 1<<20, caller)

	body, contentType := multipartBody(t, "file", "x ray.png", pngHeader)
	w := upload(router, body, contentType)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	file := decode(t, w)["file"].(map[string]interface{})
	assert.Equal(t, "x ray.png", file["fileName"])
	hash := file["fileHash"].(string)
	assert.Contains(t, hash, "x_ray.png")

	req := httptest.NewRequest(http.MethodGet, "/file/"+hash, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, pngHeader, rec.Body.Bytes())
}

func TestUploadRejections(t *testing.T) {
	caller := &models.Claims{UserID: "p1", Role: models.RolePatient}
	router := fileRouter(t, 64, caller)

	body, contentType := multipartBody(t, "file", "tool.exe", []byte("MZ\x90\x00\x03\x00\x00\x00\x04\x00\x00\x00\xff\xff"))
	w := upload(router, body, contentType)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, filestore.ErrUnsupportedType.Error(), decode(t, w)["error"])

	body, contentType = multipartBody(t, "file", "big.txt", bytes.Repeat([]byte("a"), 128))
	w = upload(router, body, contentType)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body, contentType = multipartBody(t, "other", "notes.txt", []byte("hello"))
	w = upload(router, body, contentType)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No file uploaded", decode(t, w)["error"])

	w = upload(fileRouter(t, 64, nil), body, contentType)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetFileLegacyAndMissing(t *testing.T) {
	router := fileRouter(t, 1<<20, &models.Claims{UserID: "d1", Role: models.RoleDoctor})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/file/QmMockHash123_scan.png", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/file/QmMockHash456", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "QmMockHash456")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/file/1700000000000_deadbeef_missing.pdf", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/file/..", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLedgerHandler(t *testing.T) {
	chain, err := ledger.OpenStorage(storage.NewMemStorage())
	require.NoError(t, err)
	t.Cleanup(func() { chain.Close() })

	_, err = chain.Append(ledger.Event{Kind: ledger.EventAddPatient, WalletAddress: "0xAAA", Name: "Alice"})
	require.NoError(t, err)

	h := NewLedgerHandler(chain)
	router := gin.New()
	router.GET("/ledger/verify", h.Verify)
	router.GET("/ledger/records/:wallet", h.WalletEvents)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ledger/verify", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode(t, rec)
	assert.Equal(t, true, report["valid"])
	assert.Equal(t, float64(1), report["height"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ledger/records/0xAAA", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["events"], 1)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ledger/records/0xNONE", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["events"], 0)
}

func TestLedgerHandlerDisabled(t *testing.T) {
	h := NewLedgerHandler(nil)
	router := gin.New()
	router.GET("/ledger/verify", h.Verify)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ledger/verify", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
