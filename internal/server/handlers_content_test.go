package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"casevault/internal/blobstore"
	"casevault/internal/content"
	"casevault/internal/ledger"
	"casevault/internal/shortid"
)

type serverFixture struct {
	server *Server
	store  *blobstore.MemoryStore
	ledger *ledger.Store
	codec  *shortid.Codec
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()
	st, err := ledger.Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	codec, err := shortid.New(shortid.DefaultAlphabet, shortid.DefaultMinLength)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	store := blobstore.NewMemoryStore("evidence")
	svc := content.NewService(store, st, st)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &serverFixture{
		server: New("127.0.0.1:0", svc, codec, logger),
		store:  store,
		ledger: st,
		codec:  codec,
	}
}

func (f *serverFixture) token(t *testing.T, id int64) string {
	t.Helper()
	token, err := f.codec.Encode(id)
	if err != nil {
		t.Fatalf("encode %d: %v", id, err)
	}
	return token
}

func (f *serverFixture) do(t *testing.T, method, path string, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.server.routes().ServeHTTP(rec, req)
	return rec
}

func actorHeaders() map[string]string {
	return map[string]string{
		"X-Actor-Id":    "42",
		"X-Actor-Email": "examiner@example.com",
		"X-Org-Id":      "9",
	}
}

func TestHealthEndpoint(t *testing.T) {
	f := newServerFixture(t)
	rec := f.do(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestTabUploadDownloadRoundTrip(t *testing.T) {
	f := newServerFixture(t)
	path := fmt.Sprintf("/v1/cases/%s/tabs/%s", f.token(t, 3), f.token(t, 11))

	rec := f.do(t, http.MethodPut, path, "hello", actorHeaders())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var result content.UploadResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode upload result: %v", err)
	}
	if result.Key != "cases/3/shared/tabs/11/content.txt" {
		t.Fatalf("unexpected key: %s", result.Key)
	}
	if result.MD5 != "5d41402abc4b2a76b9719d911017c592" {
		t.Fatalf("unexpected md5: %s", result.MD5)
	}

	get := f.do(t, http.MethodGet, path, "", actorHeaders())
	if get.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", get.Code, get.Body.String())
	}
	if got := get.Body.String(); got != "hello" {
		t.Fatalf("unexpected body: %q", got)
	}
	if got := get.Header().Get("X-Version-Id"); got != result.VersionID {
		t.Fatalf("unexpected version header: %q", got)
	}
	if got := get.Header().Get("X-Content-Sha256"); got != result.SHA256 {
		t.Fatalf("unexpected sha header: %q", got)
	}
}

func TestNoteIsScopedToActor(t *testing.T) {
	f := newServerFixture(t)
	path := fmt.Sprintf("/v1/cases/%s/contemporaneous-notes/%s", f.token(t, 3), f.token(t, 7))

	rec := f.do(t, http.MethodPut, path, "my private note", actorHeaders())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// The author reads their own note back.
	get := f.do(t, http.MethodGet, path, "", actorHeaders())
	if get.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", get.Code)
	}

	// Another examiner sees nothing at the same public path.
	other := map[string]string{"X-Actor-Id": "43"}
	if got := f.do(t, http.MethodGet, path, "", other); got.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for other actor, got %d", got.Code)
	}
}

func TestWriteWithoutActorIsRejected(t *testing.T) {
	f := newServerFixture(t)
	path := fmt.Sprintf("/v1/cases/%s/tabs/%s", f.token(t, 3), f.token(t, 11))

	rec := f.do(t, http.MethodPut, path, "hello", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestMalformedTokenLooksLikeMissingContent(t *testing.T) {
	f := newServerFixture(t)

	for _, token := range []string{"1", "bogus!!", "AAAAAAAA"} {
		path := fmt.Sprintf("/v1/cases/%s/tabs/%s", f.token(t, 3), token)
		rec := f.do(t, http.MethodGet, path, "", actorHeaders())
		if rec.Code != http.StatusNotFound {
			t.Fatalf("token %q: expected 404, got %d", token, rec.Code)
		}

		var resp ErrorResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode error response: %v", err)
		}
		if resp.Code != "not_found" {
			t.Fatalf("token %q: expected uniform not_found, got %q", token, resp.Code)
		}
	}
}

func TestImageUploadAndPresign(t *testing.T) {
	f := newServerFixture(t)
	base := fmt.Sprintf("/v1/cases/%s/tabs/%s/images/scan.png", f.token(t, 3), f.token(t, 11))

	rec := f.do(t, http.MethodPut, base, "fake image bytes", actorHeaders())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	urlRec := f.do(t, http.MethodGet, base+"/url", "", actorHeaders())
	if urlRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", urlRec.Code, urlRec.Body.String())
	}

	var resp struct {
		URL       string `json:"url"`
		ExpiresIn int    `json:"expires_in"`
	}
	if err := json.NewDecoder(urlRec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode presign response: %v", err)
	}
	if resp.URL == "" {
		t.Fatal("expected a presigned url")
	}
	if resp.ExpiresIn != 3600 {
		t.Fatalf("unexpected expiry: %d", resp.ExpiresIn)
	}
}

func TestInvalidResourceTypeIsRejected(t *testing.T) {
	f := newServerFixture(t)
	path := fmt.Sprintf("/v1/cases/%s/bogus/%s/images/scan.png", f.token(t, 3), f.token(t, 11))

	rec := f.do(t, http.MethodPut, path, "x", actorHeaders())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMissingBucketSurfacesAsInternal(t *testing.T) {
	f := newServerFixture(t)
	f.store.SetBucketMissing(true)
	path := fmt.Sprintf("/v1/cases/%s/tabs/%s", f.token(t, 3), f.token(t, 11))

	rec := f.do(t, http.MethodPut, path, "hello", actorHeaders())
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Code != "storage_misconfigured" {
		t.Fatalf("expected storage_misconfigured, got %q", resp.Code)
	}
	if resp.Error != "internal error" {
		t.Fatalf("internal detail must not leak, got %q", resp.Error)
	}
}

func TestBearerTokenEnforcement(t *testing.T) {
	t.Setenv("CASEVAULT_API_TOKEN", "s3cret-token-value")
	f := newServerFixture(t)
	path := fmt.Sprintf("/v1/cases/%s/tabs/%s", f.token(t, 3), f.token(t, 11))

	if rec := f.do(t, http.MethodPut, path, "hello", actorHeaders()); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	headers := actorHeaders()
	headers["Authorization"] = "Bearer s3cret-token-value"
	if rec := f.do(t, http.MethodPut, path, "hello", headers); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 with token, got %d", rec.Code)
	}

	// Health stays open for probes.
	if rec := f.do(t, http.MethodGet, "/health", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected open health endpoint, got %d", rec.Code)
	}
}
