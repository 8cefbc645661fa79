package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MrSnakeDoc/addressbook/internal/contacts"
	"github.com/MrSnakeDoc/addressbook/internal/domain"
	"github.com/MrSnakeDoc/addressbook/internal/httpserver/deps"
	"github.com/MrSnakeDoc/addressbook/internal/logger"
	"github.com/MrSnakeDoc/addressbook/internal/store/memory"
)

type downKV struct{ *memory.Store }

func (downKV) Ping(context.Context) error { return io.ErrUnexpectedEOF }

func newTestRouter(t *testing.T, mutate func(*deps.Deps)) (http.Handler, *contacts.Store) {
	t.Helper()
	log := logger.NewNop()
	st, err := contacts.Open(context.Background(), memory.New(), log, contacts.Options{})
	if err != nil {
		t.Fatalf("contacts.Open() error = %v", err)
	}
	d := deps.Deps{
		Logger:         log,
		StartTime:      time.Now(),
		Contacts:       st,
		StorageBackend: "memory",
		MaxImportBytes: 1 << 20,
		ImportLimit:    deps.ImportRateLimit{Burst: 100, PerMinute: 100},
	}
	if mutate != nil {
		mutate(&d)
	}
	return NewRouter(log, d), d.Contacts
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	req.RemoteAddr = "192.0.2.1:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestContactLifecycle(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	rec := do(t, h, http.MethodPost, "/api/contacts",
		`{"name":"Ann","phones":[{"number":"555-1234","type":"mobile"}],"tags":["friend"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, body = %s", rec.Code, rec.Body)
	}
	ann := decode[domain.Contact](t, rec)
	if ann.ID == "" || rec.Header().Get("Location") != "/api/contacts/"+ann.ID {
		t.Errorf("created = %+v, Location = %q", ann, rec.Header().Get("Location"))
	}

	if rec := do(t, h, http.MethodPost, "/api/contacts", `{"name":"Bob"}`); rec.Code != http.StatusCreated {
		t.Fatalf("POST Bob status = %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/api/contacts?search=555", "")
	list := decode[listResponseBody](t, rec)
	if list.Count != 1 || list.Total != 2 || list.Contacts[0].Name != "Ann" {
		t.Errorf("search = %+v", list)
	}

	rec = do(t, h, http.MethodPatch, "/api/contacts/"+ann.ID+"/bookmark", "")
	if rec.Code != http.StatusOK || !decode[domain.Contact](t, rec).IsBookmarked {
		t.Errorf("PATCH bookmark status = %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/api/contacts?bookmarked=true", "")
	if list := decode[listResponseBody](t, rec); list.Count != 1 || list.Contacts[0].ID != ann.ID {
		t.Errorf("bookmarked only = %+v", list)
	}

	rec = do(t, h, http.MethodPut, "/api/contacts/"+ann.ID, `{"name":"Ann B"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, body = %s", rec.Code, rec.Body)
	}
	if got := decode[domain.Contact](t, rec); got.ID != ann.ID || got.CreatedAt != ann.CreatedAt {
		t.Errorf("PUT changed identity: %+v", got)
	}

	rec = do(t, h, http.MethodDelete, "/api/contacts/"+ann.ID, "")
	if got := decode[map[string]bool](t, rec); !got["deleted"] {
		t.Errorf("DELETE = %v", got)
	}
	rec = do(t, h, http.MethodDelete, "/api/contacts/"+ann.ID, "")
	if rec.Code != http.StatusOK || decode[map[string]bool](t, rec)["deleted"] {
		t.Errorf("second DELETE should report deleted=false")
	}

	if rec := do(t, h, http.MethodGet, "/api/contacts/"+ann.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("GET deleted status = %d", rec.Code)
	}
}

type listResponseBody struct {
	Contacts []domain.Contact `json:"contacts"`
	Count    int              `json:"count"`
	Total    int              `json:"total"`
}

func TestErrorMapping(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	tests := []struct {
		name      string
		method    string
		target    string
		body      string
		wantCode  int
		wantField string
	}{
		{"blank name", http.MethodPost, "/api/contacts", `{"name":"  "}`, http.StatusBadRequest, "name"},
		{"bad phone type", http.MethodPost, "/api/contacts", `{"name":"A","phones":[{"number":"1","type":"fax"}]}`, http.StatusBadRequest, "phones.type"},
		{"malformed body", http.MethodPost, "/api/contacts", `{`, http.StatusBadRequest, ""},
		{"bad filter", http.MethodGet, "/api/contacts?bookmarked=maybe", "", http.StatusBadRequest, "bookmarked"},
		{"unknown bookmark", http.MethodPatch, "/api/contacts/nope/bookmark", "", http.StatusNotFound, ""},
		{"import object", http.MethodPost, "/api/contacts/import", `{"id":"1"}`, http.StatusBadRequest, ""},
		{"unknown format", http.MethodGet, "/api/contacts/export?format=pdf", "", http.StatusBadRequest, "format"},
		{"path and body id differ", http.MethodPut, "/api/contacts/carol", `{"id":"dave","name":"Carol"}`, http.StatusBadRequest, "id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.target, tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body)
			}
			body := decode[map[string]string](t, rec)
			if body["error"] == "" {
				t.Error("error message missing")
			}
			if body["field"] != tt.wantField {
				t.Errorf("field = %q, want %q", body["field"], tt.wantField)
			}
		})
	}
}

func TestPutUsesPathID(t *testing.T) {
	h, st := newTestRouter(t, nil)

	rec := do(t, h, http.MethodPut, "/api/contacts/carol", `{"id":"dave","name":"Carol"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("mismatched PUT status = %d, want 400", rec.Code)
	}
	if st.Count() != 0 {
		t.Fatalf("mismatched PUT stored %d contacts", st.Count())
	}

	rec = do(t, h, http.MethodPut, "/api/contacts/carol", `{"id":"carol","name":"Carol"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("PUT status = %d, body = %s", rec.Code, rec.Body)
	}
	if _, err := st.Get("carol"); err != nil {
		t.Errorf("contact not stored under the path id: %v", err)
	}
}

func TestImportEndpoint(t *testing.T) {
	h, st := newTestRouter(t, nil)

	if _, _, err := st.CreateOrUpdate(context.Background(), domain.ContactInput{ID: "1", Name: "Existing"}, ""); err != nil {
		t.Fatalf("seed create error = %v", err)
	}

	rec := do(t, h, http.MethodPost, "/api/contacts/import", `[{"id":"1","name":"Dup"},{"id":"2","name":"New"}]`)
	if rec.Code != http.StatusOK {
		t.Fatalf("import status = %d, body = %s", rec.Code, rec.Body)
	}
	res := decode[contacts.ImportResult](t, rec)
	if res.Imported != 1 || res.Skipped != 1 {
		t.Errorf("import = %+v", res)
	}
}

func TestImportTooLarge(t *testing.T) {
	h, st := newTestRouter(t, func(d *deps.Deps) { d.MaxImportBytes = 16 })

	rec := do(t, h, http.MethodPost, "/api/contacts/import", `[{"name":"a very long name that does not fit"}]`)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
	if st.Count() != 0 {
		t.Error("oversized import touched the collection")
	}
}

func TestExportAndTemplate(t *testing.T) {
	h, st := newTestRouter(t, nil)
	if _, _, err := st.CreateOrUpdate(context.Background(), domain.ContactInput{Name: "Ann"}, ""); err != nil {
		t.Fatalf("create error = %v", err)
	}

	tests := []struct {
		target      string
		contentType string
		fileName    string
	}{
		{"/api/contacts/export", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "contacts.xlsx"},
		{"/api/contacts/export?format=csv", "text/csv; charset=utf-8", "contacts.csv"},
		{"/api/contacts/export?format=json", "application/json", "contacts.json"},
		{"/api/contacts/template", "application/json", "contacts_template.json"},
	}
	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			if got := rec.Header().Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q", got)
			}
			if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, tt.fileName) {
				t.Errorf("Content-Disposition = %q", got)
			}
			if rec.Body.Len() == 0 {
				t.Error("empty body")
			}
		})
	}
}

func TestHealthEndpoints(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	for _, path := range []string{"/api/health", "/healthz", "/readyz", "/infra", "/metrics"} {
		if rec := do(t, h, http.MethodGet, path, ""); rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d", path, rec.Code)
		}
	}

	infra := decode[map[string]any](t, do(t, h, http.MethodGet, "/infra", ""))
	if infra["status"] != "operational" {
		t.Errorf("infra = %v", infra)
	}
}

func TestReadyzStorageDown(t *testing.T) {
	h, _ := newTestRouter(t, func(d *deps.Deps) {
		st, err := contacts.Open(context.Background(), downKV{memory.New()}, d.Logger, contacts.Options{})
		if err != nil {
			t.Fatalf("contacts.Open() error = %v", err)
		}
		d.Contacts = st
	})

	if rec := do(t, h, http.MethodGet, "/readyz", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz status = %d, want 503", rec.Code)
	}
	infra := decode[map[string]any](t, do(t, h, http.MethodGet, "/infra", ""))
	if infra["status"] != "critical" {
		t.Errorf("infra status = %v, want critical", infra["status"])
	}
}

func TestReloadEndpoint(t *testing.T) {
	trigger := make(chan struct{}, 1)
	h, _ := newTestRouter(t, func(d *deps.Deps) { d.ReloadTrigger = trigger })

	if rec := do(t, h, http.MethodPost, "/api/reload", ""); rec.Code != http.StatusAccepted {
		t.Errorf("first reload status = %d, want 202", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/api/reload", ""); rec.Code != http.StatusTooManyRequests {
		t.Errorf("second reload status = %d, want 429", rec.Code)
	}

	disabled, _ := newTestRouter(t, nil)
	if rec := do(t, disabled, http.MethodPost, "/api/reload", ""); rec.Code != http.StatusNotFound {
		t.Errorf("reload without seed status = %d, want 404", rec.Code)
	}
}

func TestAccessRestrictions(t *testing.T) {
	h, _ := newTestRouter(t, func(d *deps.Deps) {
		d.AllowedCIDRS = []string{"10.0.0.0/8"}
		d.AllowedHosts = []string{"book.example.com"}
		d.AllowedOrigins = []string{"https://app.example.com"}
	})

	if rec := do(t, h, http.MethodGet, "/infra", ""); rec.Code != http.StatusForbidden {
		t.Errorf("infra from outside CIDR status = %d, want 403", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/contacts", ""); rec.Code != http.StatusForbidden {
		t.Errorf("wrong host status = %d, want 403", rec.Code)
	}

	req := httptest.NewRequest(http.MethodOptions, "http://book.example.com/api/contacts", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code/100 != 2 || rec.Header().Get("Access-Control-Allow-Origin") != "https://app.example.com" {
		t.Errorf("preflight = %d %v", rec.Code, rec.Header())
	}
}
