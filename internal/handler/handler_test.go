package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"trustvest-backend/internal/hashing"
	"trustvest-backend/internal/models"
	"trustvest-backend/internal/repository/mongodb"
	"trustvest-backend/internal/service"
)

type memoryRepo struct {
	users map[string]*models.User
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[string]*models.User)}
}

func (r *memoryRepo) CreateUser(ctx context.Context, user *models.User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return mongodb.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	r.users[user.ID.Hex()] = user
	return nil
}

func (r *memoryRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, mongodb.ErrNotFound
}

func (r *memoryRepo) FindByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email || u.Username == username {
			return u, nil
		}
	}
	return nil, mongodb.ErrNotFound
}

func (r *memoryRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, mongodb.ErrInvalidID
	}
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, mongodb.ErrNotFound
}

func (r *memoryRepo) UpdateLastLogin(ctx context.Context, id string, t time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return mongodb.ErrNotFound
	}
	u.LastLogin = &t
	return nil
}

func (r *memoryRepo) ApplyKYC(ctx context.Context, id string, update mongodb.KYCUpdate) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return mongodb.ErrInvalidID
	}
	u, ok := r.users[id]
	if !ok {
		return mongodb.ErrNotFound
	}
	u.Name = update.FullName
	u.KYCVerified = true
	return nil
}

func (r *memoryRepo) HealthCheck(ctx context.Context) error { return nil }

type memoryBlob struct {
	objects map[string][]byte
}

func (b *memoryBlob) Upload(ctx context.Context, key string, body []byte, contentType string) error {
	b.objects[key] = body
	return nil
}

func (b *memoryBlob) URL(key string) string {
	return fmt.Sprintf("https://photos.test/%s", key)
}

func newTestServer(repo mongodb.UserRepository, blob service.BlobStore) http.Handler {
	logger := zap.NewNop()
	hasher := hashing.NewHasher(4)

	accounts := service.NewAccountService(repo, hasher, nil, nil, nil, logger)
	kyc := service.NewKYCService(repo, blob, nil, nil, logger)
	advisor := service.NewAdvisorService(nil, "test-model", logger)
	status := service.NewStatusService(nil, nil, nil, nil, nil, logger)

	return NewRouter(
		NewAccountHandler(accounts, logger),
		NewKYCHandler(kyc, logger),
		NewAdvisorHandler(advisor, logger),
		NewStatusHandler(status, logger),
		logger,
	)
}

func postJSON(t *testing.T, srv http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
	return out
}

func TestRegisterEndpoint(t *testing.T) {
	srv := newTestServer(newMemoryRepo(), nil)

	rr := postJSON(t, srv, "/register", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "pw123456",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d want %d, body %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	body := decodeBody(t, rr)
	if body["message"] != "User registered successfully" {
		t.Errorf("message: got %v", body["message"])
	}
	user, ok := body["user"].(map[string]interface{})
	if !ok {
		t.Fatalf("user object missing: %v", body)
	}
	if user["username"] != "alice" {
		t.Errorf("username: got %v", user["username"])
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Error("response leaks the password hash")
	}
	if strings.Contains(strings.ToLower(rr.Body.String()), "password") {
		t.Errorf("response mentions credential material: %s", rr.Body.String())
	}
}

func TestRegisterDuplicateReturnsBadRequest(t *testing.T) {
	srv := newTestServer(newMemoryRepo(), nil)

	payload := map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "pw123456",
	}
	if rr := postJSON(t, srv, "/register", payload); rr.Code != http.StatusOK {
		t.Fatalf("first register: got %d, body %s", rr.Code, rr.Body.String())
	}

	rr := postJSON(t, srv, "/register", payload)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register: got %d want %d", rr.Code, http.StatusBadRequest)
	}
	body := decodeBody(t, rr)
	if _, ok := body["detail"]; !ok {
		t.Errorf("error body missing detail: %v", body)
	}
}

func TestLoginEndpoint(t *testing.T) {
	srv := newTestServer(newMemoryRepo(), nil)

	postJSON(t, srv, "/register", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "pw123456",
	})

	rr := postJSON(t, srv, "/login", map[string]string{
		"email": "alice@example.com", "password": "pw123456",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("login: got %d, body %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	if body["message"] != "Login successful" {
		t.Errorf("message: got %v", body["message"])
	}
}

func TestLoginFailureShapesMatch(t *testing.T) {
	srv := newTestServer(newMemoryRepo(), nil)

	postJSON(t, srv, "/register", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "pw123456",
	})

	wrongPassword := postJSON(t, srv, "/login", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	})
	unknownEmail := postJSON(t, srv, "/login", map[string]string{
		"email": "nobody@example.com", "password": "pw123456",
	})

	if wrongPassword.Code != http.StatusUnauthorized || unknownEmail.Code != http.StatusUnauthorized {
		t.Fatalf("codes: %d and %d, want both 401", wrongPassword.Code, unknownEmail.Code)
	}
	if wrongPassword.Body.String() != unknownEmail.Body.String() {
		t.Errorf("failure bodies must be identical: %q vs %q",
			wrongPassword.Body.String(), unknownEmail.Body.String())
	}
}

func TestGetUserEndpoint(t *testing.T) {
	repo := newMemoryRepo()
	srv := newTestServer(repo, nil)

	rr := postJSON(t, srv, "/register", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "pw123456",
	})
	user := decodeBody(t, rr)["user"].(map[string]interface{})
	id := user["id"].(string)

	req := httptest.NewRequest("GET", "/user/"+id, nil)
	got := httptest.NewRecorder()
	srv.ServeHTTP(got, req)

	if got.Code != http.StatusOK {
		t.Fatalf("get user: got %d, body %s", got.Code, got.Body.String())
	}
	profile := decodeBody(t, got)
	// The body is the bare profile, not an envelope.
	if _, enveloped := profile["user"]; enveloped {
		t.Errorf("profile must not be wrapped: %v", profile)
	}
	if profile["id"] != id {
		t.Errorf("id: got %v want %v", profile["id"], id)
	}
}

func TestGetUserErrors(t *testing.T) {
	srv := newTestServer(newMemoryRepo(), nil)

	malformed := httptest.NewRecorder()
	srv.ServeHTTP(malformed, httptest.NewRequest("GET", "/user/not-a-hex-id", nil))
	if malformed.Code != http.StatusBadRequest {
		t.Errorf("malformed id: got %d want %d", malformed.Code, http.StatusBadRequest)
	}

	missing := httptest.NewRecorder()
	srv.ServeHTTP(missing, httptest.NewRequest("GET", "/user/"+primitive.NewObjectID().Hex(), nil))
	if missing.Code != http.StatusNotFound {
		t.Errorf("missing user: got %d want %d", missing.Code, http.StatusNotFound)
	}
}

func TestUploadPhotoEndpoint(t *testing.T) {
	blob := &memoryBlob{objects: make(map[string][]byte)}
	srv := newTestServer(newMemoryRepo(), blob)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	writer.WriteField("user_id", "user-1")
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="selfie.png"`)
	header.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte{0x89, 0x50, 0x4e, 0x47})
	writer.Close()

	req := httptest.NewRequest("POST", "/kyc/upload-photo", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("upload: got %d, body %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	key, _ := body["key"].(string)
	if !strings.HasPrefix(key, "kyc/user-1/") || !strings.HasSuffix(key, ".png") {
		t.Errorf("key: got %q", key)
	}
	if url, _ := body["url"].(string); !strings.HasSuffix(url, key) {
		t.Errorf("url %q does not reference key %q", body["url"], key)
	}
	if _, stored := blob.objects[key]; !stored {
		t.Error("photo body not stored")
	}
}

func TestUploadPhotoWithoutBlobStore(t *testing.T) {
	srv := newTestServer(newMemoryRepo(), nil)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	writer.WriteField("user_id", "user-1")
	part, _ := writer.CreateFormFile("file", "selfie.png")
	part.Write([]byte{0x1})
	writer.Close()

	req := httptest.NewRequest("POST", "/kyc/upload-photo", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("upload without store: got %d want %d", rr.Code, http.StatusServiceUnavailable)
	}
}

func TestSubmitKYCEndpoint(t *testing.T) {
	repo := newMemoryRepo()
	srv := newTestServer(repo, nil)

	rr := postJSON(t, srv, "/register", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "pw123456",
	})
	user := decodeBody(t, rr)["user"].(map[string]interface{})
	id := user["id"].(string)

	got := postJSON(t, srv, "/kyc/submit", map[string]interface{}{
		"user_id": id, "fullName": "Alice Smith", "dob": "1990-01-02",
		"pan": "ABCDE1234F", "consent": true,
	})
	if got.Code != http.StatusOK {
		t.Fatalf("submit: got %d, body %s", got.Code, got.Body.String())
	}
	body := decodeBody(t, got)
	if body["message"] != "KYC submitted successfully" {
		t.Errorf("message: got %v", body["message"])
	}
	if body["kycVerified"] != true {
		t.Errorf("kycVerified: got %v", body["kycVerified"])
	}
	if !repo.users[id].KYCVerified {
		t.Error("user record not marked verified")
	}
}

func TestChatWithoutProviderReturnsServerError(t *testing.T) {
	srv := newTestServer(newMemoryRepo(), nil)

	rr := postJSON(t, srv, "/chat", map[string]interface{}{
		"history":   []map[string]string{{"role": "user", "text": "hi"}},
		"user_name": "Alice",
	})
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("chat without key: got %d want %d", rr.Code, http.StatusInternalServerError)
	}
	body := decodeBody(t, rr)
	if body["detail"] != "API key not configured" {
		t.Errorf("detail: got %v", body["detail"])
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(newMemoryRepo(), nil)

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("health: got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["status"] != "ok" {
		t.Errorf("status: got %v", body["status"])
	}
	// No store wired into the status service in this test server.
	if body["database"] != "disconnected" {
		t.Errorf("database: got %v", body["database"])
	}
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(newMemoryRepo(), nil)

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest("GET", "/no-such-route", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown route: got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if _, ok := body["detail"]; !ok {
		t.Errorf("404 body missing detail: %v", body)
	}
}
