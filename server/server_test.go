package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/salesvision/salesvision/config"
	"github.com/salesvision/salesvision/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	cfg := &config.Config{
		Server: config.ServerConfig{Addr: ":0"},
		Store:  config.StoreConfig{Path: filepath.Join(dir, "test.db")},
		Upload: config.UploadConfig{
			Dir:          filepath.Join(dir, "uploads"),
			ResultDir:    filepath.Join(dir, "results"),
			MaxSizeBytes: 1 << 20,
		},
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return New(cfg, st, log)
}

func multipartCSV(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()
	return &body, mw.FormDataContentType()
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v\n%s", err, w.Body.String())
	}
	return out
}

// sessionCookieOf extracts the session cookie set by a response, if any.
func sessionCookieOf(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookie {
			return c
		}
	}
	return nil
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if resp := decodeJSON(t, w); resp["status"] != "ok" {
		t.Errorf("body = %v", resp)
	}
}

func TestUploadSuccess(t *testing.T) {
	s := newTestServer(t)
	body, ctype := multipartCSV(t, "sales.csv", "product,price,quantity,date,region\nHammer,10,2,2023-05-15,North\nNails,\"3,5\",10,2023-05-16,South\n")

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	resp := decodeJSON(t, w)
	if resp["status"] != "success" {
		t.Errorf("status field = %v", resp["status"])
	}
	if resp["upload_id"] == "" || resp["upload_id"] == nil {
		t.Error("missing upload_id")
	}
	if resp["total_rows"] != float64(2) {
		t.Errorf("total_rows = %v, want 2", resp["total_rows"])
	}
	if resp["dropped"] != float64(0) {
		t.Errorf("dropped = %v, want 0", resp["dropped"])
	}
	saved, _ := resp["saved_as"].(string)
	if !strings.Contains(saved, "standardized_sales.csv") {
		t.Errorf("saved_as = %q", saved)
	}
	if sessionCookieOf(w) == nil {
		t.Error("no session cookie issued")
	}
}

func TestUploadMissingRequiredColumn(t *testing.T) {
	s := newTestServer(t)
	body, ctype := multipartCSV(t, "sales.csv", "color,size\nred,L\n")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestUploadUnsupportedFileType(t *testing.T) {
	s := newTestServer(t)
	body, ctype := multipartCSV(t, "sales.txt", "product,price\nA,1\n")

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestUploadNoFile(t *testing.T) {
	s := newTestServer(t)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestReportWithoutDataset(t *testing.T) {
	s := newTestServer(t)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/report", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestUploadThenReport(t *testing.T) {
	s := newTestServer(t)
	body, ctype := multipartCSV(t, "sales.csv", "product,price,quantity,date,region\nHammer,10,2,2023-05-15,North\nSaw,25,1,2023-06-01,South\n")

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ctype)
	uploadW := httptest.NewRecorder()
	s.Router().ServeHTTP(uploadW, req)
	if uploadW.Code != http.StatusOK {
		t.Fatalf("upload status = %d, body = %s", uploadW.Code, uploadW.Body.String())
	}
	cookie := sessionCookieOf(uploadW)
	if cookie == nil {
		t.Fatal("no session cookie from upload")
	}

	reportReq := httptest.NewRequest(http.MethodGet, "/report", nil)
	reportReq.AddCookie(cookie)
	reportW := httptest.NewRecorder()
	s.Router().ServeHTTP(reportW, reportReq)

	if reportW.Code != http.StatusOK {
		t.Fatalf("report status = %d, body = %s", reportW.Code, reportW.Body.String())
	}
	resp := decodeJSON(t, reportW)

	metrics, ok := resp["metrics"].([]any)
	if !ok || len(metrics) == 0 {
		t.Fatalf("metrics = %v", resp["metrics"])
	}
	charts, ok := resp["charts"].([]any)
	if !ok || len(charts) == 0 {
		t.Fatalf("charts = %v", resp["charts"])
	}
	reportFile, _ := resp["report_file"].(string)
	if !strings.HasSuffix(reportFile, ".xlsx") {
		t.Fatalf("report_file = %q", reportFile)
	}

	// The generated workbook is downloadable right away.
	dlReq := httptest.NewRequest(http.MethodGet, "/download_report?filename="+reportFile, nil)
	dlW := httptest.NewRecorder()
	s.Router().ServeHTTP(dlW, dlReq)
	if dlW.Code != http.StatusOK {
		t.Fatalf("download status = %d", dlW.Code)
	}
}

func TestDownloadStandardizedFile(t *testing.T) {
	s := newTestServer(t)
	body, ctype := multipartCSV(t, "sales.csv", "product,price\nHammer,10\n")

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("upload status = %d", w.Code)
	}
	saved, _ := decodeJSON(t, w)["saved_as"].(string)

	dlW := httptest.NewRecorder()
	s.Router().ServeHTTP(dlW, httptest.NewRequest(http.MethodGet, "/download/"+saved, nil))
	if dlW.Code != http.StatusOK {
		t.Fatalf("download status = %d", dlW.Code)
	}
	if !strings.Contains(dlW.Body.String(), "Hammer") {
		t.Error("standardized file content missing")
	}
}

func TestDownloadMissingFile(t *testing.T) {
	s := newTestServer(t)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download/nope.csv", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestDownloadReportRequiresFilename(t *testing.T) {
	s := newTestServer(t)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download_report", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestProgressStream(t *testing.T) {
	s := newTestServer(t)

	// An id nobody is processing: the stream still ramps and ends at 100.
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/progress/some-id", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("content type = %q", ct)
	}
	events := w.Body.String()
	if !strings.Contains(events, "data: 100\n\n") {
		t.Errorf("stream did not end at 100:\n%s", events)
	}
	if !strings.HasSuffix(strings.TrimSpace(events), "data: 100") {
		t.Errorf("100 is not the final event:\n%s", events)
	}
}

func TestRegisterLoginAccount(t *testing.T) {
	s := newTestServer(t)

	register := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		s.Router().ServeHTTP(w, req)
		return w
	}

	if w := register(`{"username":"alice","email":"alice@example.com","password":"secret-pw-1"}`); w.Code != http.StatusOK {
		t.Fatalf("register status = %d, body = %s", w.Code, w.Body.String())
	}
	if w := register(`{"username":"alice2","email":"alice@example.com","password":"secret-pw-2"}`); w.Code != http.StatusConflict {
		t.Fatalf("duplicate register status = %d", w.Code)
	}
	if w := register(`{"username":"bob","email":"bob@example.com","password":"short"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("weak password register status = %d", w.Code)
	}

	loginReq := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"email":"alice@example.com","password":"secret-pw-1"}`))
	loginReq.Header.Set("Content-Type", "application/json")
	loginW := httptest.NewRecorder()
	s.Router().ServeHTTP(loginW, loginReq)
	if loginW.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", loginW.Code, loginW.Body.String())
	}
	cookie := sessionCookieOf(loginW)
	if cookie == nil {
		t.Fatal("no session cookie from login")
	}

	acctReq := httptest.NewRequest(http.MethodGet, "/account", nil)
	acctReq.AddCookie(cookie)
	acctW := httptest.NewRecorder()
	s.Router().ServeHTTP(acctW, acctReq)
	if acctW.Code != http.StatusOK {
		t.Fatalf("account status = %d", acctW.Code)
	}

	badReq := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"email":"alice@example.com","password":"wrong-password"}`))
	badReq.Header.Set("Content-Type", "application/json")
	badW := httptest.NewRecorder()
	s.Router().ServeHTTP(badW, badReq)
	if badW.Code != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d", badW.Code)
	}
}

func TestAccountWithoutLogin(t *testing.T) {
	s := newTestServer(t)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/account", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
}
