package contacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/MrSnakeDoc/addressbook/internal/domain"
	"github.com/MrSnakeDoc/addressbook/internal/store"
	"github.com/MrSnakeDoc/addressbook/internal/store/file"
	"github.com/MrSnakeDoc/addressbook/internal/store/memory"
)

var fixedNow = time.Date(2024, 3, 9, 10, 30, 0, 0, time.UTC)

func sequentialIDs() domain.IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestStore(t *testing.T, kv store.KV) *Store {
	t.Helper()
	s, err := Open(context.Background(), kv, nil, Options{
		Now:   func() time.Time { return fixedNow },
		NewID: sequentialIDs(),
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return s
}

type failingKV struct {
	getErr error
	setErr error
	data   []byte
}

func (f *failingKV) Get(context.Context, string) ([]byte, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	return f.data, f.data != nil, nil
}

func (f *failingKV) Set(context.Context, string, []byte) error { return f.setErr }

func TestOpenEmptyAndCorrupt(t *testing.T) {
	ctx := context.Background()

	s := newTestStore(t, memory.New())
	if s.Count() != 0 {
		t.Errorf("Count() = %d, want 0", s.Count())
	}

	tests := []struct {
		name string
		kv   *failingKV
	}{
		{"not an array", &failingKV{data: []byte(`{"id":"1"}`)}},
		{"garbage", &failingKV{data: []byte(`not json`)}},
		{"backend error", &failingKV{getErr: errors.New("boom")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(ctx, tt.kv, nil, Options{})
			var se *domain.StorageError
			if !errors.As(err, &se) || se.Op != "load" {
				t.Errorf("Open() error = %v, want load StorageError", err)
			}
		})
	}
}

func TestOpenDropsDuplicateIDs(t *testing.T) {
	kv := memory.New()
	_ = kv.Set(context.Background(), store.DefaultKey,
		[]byte(`[{"id":"1","name":"A"},{"id":"1","name":"B"},{"id":"2","name":"C"}]`))

	s := newTestStore(t, kv)
	all := s.All()
	if len(all) != 2 || all[0].Name != "A" || all[1].Name != "C" {
		t.Errorf("All() = %+v, want A and C", all)
	}
}

func TestCreateOrUpdate(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	s := newTestStore(t, kv)

	c, created, err := s.CreateOrUpdate(ctx, domain.ContactInput{
		Name:   "  Ann  ",
		Phones: []domain.PhoneInput{{Number: "555-1234"}, {Number: "  "}},
		Tags:   []string{"friend", " friend ", ""},
	}, "")
	if err != nil {
		t.Fatalf("create error = %v", err)
	}
	if !created {
		t.Error("created = false, want true")
	}
	if c.ID != "id-1" || c.Name != "Ann" {
		t.Errorf("created contact = %+v", c)
	}
	if len(c.Phones) != 1 || c.Phones[0].Type != domain.PhoneMobile {
		t.Errorf("phones = %+v, want one mobile", c.Phones)
	}
	if len(c.Tags) != 1 || c.Tags[0] != "friend" {
		t.Errorf("tags = %v, want [friend]", c.Tags)
	}
	wantTS := domain.FormatTimestamp(fixedNow)
	if c.CreatedAt != wantTS || c.UpdatedAt != wantTS {
		t.Errorf("timestamps = %q/%q, want %q", c.CreatedAt, c.UpdatedAt, wantTS)
	}
	if kv.Writes() != 1 {
		t.Errorf("writes = %d, want 1", kv.Writes())
	}

	// edit keeps id and createdAt
	s.now = func() time.Time { return fixedNow.Add(time.Hour) }
	edited, created, err := s.CreateOrUpdate(ctx, domain.ContactInput{
		ID:   "ignored",
		Name: "Ann B",
	}, c.ID)
	if err != nil {
		t.Fatalf("edit error = %v", err)
	}
	if created {
		t.Error("created = true on edit")
	}
	if edited.ID != c.ID || edited.CreatedAt != c.CreatedAt {
		t.Errorf("edit changed identity: %+v", edited)
	}
	if edited.UpdatedAt == c.UpdatedAt {
		t.Error("edit should refresh updatedAt")
	}
	if s.Count() != 1 {
		t.Errorf("Count() = %d, want 1", s.Count())
	}

	// unknown editing id falls through to create
	_, created, err = s.CreateOrUpdate(ctx, domain.ContactInput{Name: "Bob"}, "missing")
	if err != nil || !created {
		t.Errorf("create via unknown editing id = %v, %v", created, err)
	}
}

func TestCreateOrUpdateValidation(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	s := newTestStore(t, kv)

	if _, _, err := s.CreateOrUpdate(ctx, domain.ContactInput{ID: "x", Name: "X"}, ""); err != nil {
		t.Fatalf("seed create error = %v", err)
	}
	writes := kv.Writes()

	tests := []struct {
		name  string
		in    domain.ContactInput
		field string
	}{
		{"blank name", domain.ContactInput{Name: "   "}, "name"},
		{"bad phone type", domain.ContactInput{Name: "A", Phones: []domain.PhoneInput{{Number: "1", Type: "fax"}}}, "phones.type"},
		{"bad email type", domain.ContactInput{Name: "A", Emails: []domain.EmailInput{{Email: "a@b", Type: "spam"}}}, "emails.type"},
		{"taken id", domain.ContactInput{ID: "x", Name: "Y"}, "id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := s.CreateOrUpdate(ctx, tt.in, "")
			var ve *domain.ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Errorf("error = %v, want ValidationError on %q", err, tt.field)
			}
		})
	}

	if kv.Writes() != writes {
		t.Errorf("rejected input caused %d writes", kv.Writes()-writes)
	}
	if s.Count() != 1 {
		t.Errorf("Count() = %d, want 1", s.Count())
	}
}

func TestSearchAndBookmark(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, memory.New())

	ann, _, err := s.CreateOrUpdate(ctx, domain.ContactInput{
		Name:   "Ann",
		Phones: []domain.PhoneInput{{Number: "555-1234", Type: "mobile"}},
	}, "")
	if err != nil {
		t.Fatalf("create error = %v", err)
	}
	if _, _, err := s.CreateOrUpdate(ctx, domain.ContactInput{Name: "Bob"}, ""); err != nil {
		t.Fatalf("create error = %v", err)
	}

	got := s.Search("555", domain.FilterAll)
	if len(got) != 1 || got[0].ID != ann.ID {
		t.Fatalf("Search(555) = %+v, want Ann", got)
	}

	toggled, err := s.ToggleBookmark(ctx, ann.ID)
	if err != nil {
		t.Fatalf("ToggleBookmark() error = %v", err)
	}
	if !toggled.IsBookmarked {
		t.Error("bookmark should be on")
	}

	got = s.Search("", domain.FilterBookmarkedOnly)
	if len(got) != 1 || got[0].Name != "Ann" {
		t.Errorf("bookmarked only = %+v, want [Ann]", got)
	}

	if got := s.Search("", domain.FilterAll); len(got) != 2 || got[0].Name != "Ann" || got[1].Name != "Bob" {
		t.Errorf("Search(all) should keep insertion order, got %+v", got)
	}

	if _, err := s.ToggleBookmark(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("ToggleBookmark(unknown) error = %v, want ErrNotFound", err)
	}

	// results are copies
	got = s.Search("Ann", domain.FilterAll)
	got[0].Name = "Mutated"
	if c, _ := s.Get(ann.ID); c.Name != "Ann" {
		t.Error("Search() leaked internal state")
	}
}

func TestDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	s := newTestStore(t, kv)

	c, _, err := s.CreateOrUpdate(ctx, domain.ContactInput{Name: "Ann"}, "")
	if err != nil {
		t.Fatalf("create error = %v", err)
	}

	removed, err := s.Delete(ctx, c.ID)
	if err != nil || !removed {
		t.Fatalf("Delete() = %v, %v", removed, err)
	}
	writes := kv.Writes()

	removed, err = s.Delete(ctx, c.ID)
	if err != nil || removed {
		t.Errorf("second Delete() = %v, %v, want false, nil", removed, err)
	}
	if kv.Writes() != writes {
		t.Error("deleting a missing id should not write")
	}
	if _, err := s.Get(c.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get() after delete error = %v", err)
	}
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	s := newTestStore(t, kv)

	if _, _, err := s.CreateOrUpdate(ctx, domain.ContactInput{ID: "1", Name: "Existing"}, ""); err != nil {
		t.Fatalf("create error = %v", err)
	}

	res, err := s.ImportJSON(ctx, strings.NewReader(`[{"id":"1","name":"Dup"},{"id":"2","name":"New"}]`))
	if err != nil {
		t.Fatalf("ImportJSON() error = %v", err)
	}
	if res.Imported != 1 || res.Skipped != 1 {
		t.Errorf("result = %+v, want imported 1 skipped 1", res)
	}
	if len(res.Conflicts) != 1 || res.Conflicts[0] != "1" {
		t.Errorf("conflicts = %v, want [1]", res.Conflicts)
	}
	if c, _ := s.Get("1"); c.Name != "Existing" {
		t.Errorf("existing record overwritten: %+v", c)
	}
	got, err := s.Get("2")
	if err != nil {
		t.Fatalf("Get(2) error = %v", err)
	}
	if got.CreatedAt != domain.FormatTimestamp(fixedNow) || got.Phones == nil || got.Tags == nil {
		t.Errorf("imported record not prepared: %+v", got)
	}
}

func TestImportEdgeCases(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		payload      string
		wantErr      bool
		wantImported int
		wantSkipped  int
		wantInvalid  int
		wantCount    int
	}{
		{name: "object payload", payload: `{"id":"1"}`, wantErr: true},
		{name: "broken json", payload: `[{"id":`, wantErr: true},
		{name: "empty array", payload: `[]`},
		{name: "no ids", payload: `[{"name":"A"},{"name":"B"}]`, wantImported: 2, wantCount: 2},
		{name: "nameless accepted", payload: `[{"id":"x"}]`, wantImported: 1, wantCount: 1},
		{name: "duplicate in batch", payload: `[{"id":"x","name":"A"},{"id":"x","name":"B"}]`, wantImported: 1, wantSkipped: 1, wantCount: 1},
		{name: "invalid elements", payload: `[1,"a",{"name":"ok"},{"phones":"bad"}]`, wantImported: 1, wantSkipped: 3, wantInvalid: 3, wantCount: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := memory.New()
			s := newTestStore(t, kv)

			res, err := s.ImportJSON(ctx, strings.NewReader(tt.payload))
			if tt.wantErr {
				var fe *domain.ImportFormatError
				if !errors.As(err, &fe) {
					t.Fatalf("error = %v, want ImportFormatError", err)
				}
				if kv.Writes() != 0 {
					t.Error("rejected payload should not write")
				}
				return
			}
			if err != nil {
				t.Fatalf("ImportJSON() error = %v", err)
			}
			if res.Imported != tt.wantImported || res.Skipped != tt.wantSkipped || res.Invalid != tt.wantInvalid {
				t.Errorf("result = %+v", res)
			}
			if s.Count() != tt.wantCount {
				t.Errorf("Count() = %d, want %d", s.Count(), tt.wantCount)
			}
			if res.Imported == 0 && kv.Writes() != 0 {
				t.Error("nothing imported but a write happened")
			}
		})
	}
}

func TestStorageFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{}
	s := newTestStore(t, kv)

	kv.setErr = errors.New("disk full")

	_, _, err := s.CreateOrUpdate(ctx, domain.ContactInput{Name: "Ann"}, "")
	var se *domain.StorageError
	if !errors.As(err, &se) || se.Op != "save" {
		t.Fatalf("error = %v, want save StorageError", err)
	}
	if s.Count() != 0 {
		t.Errorf("failed write changed the collection: Count() = %d", s.Count())
	}

	if _, err := s.Import(ctx, []domain.Contact{{ID: "a", Name: "A"}}); !errors.As(err, &se) {
		t.Errorf("Import() error = %v, want StorageError", err)
	}
	if s.Count() != 0 {
		t.Errorf("failed import changed the collection: Count() = %d", s.Count())
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	fs, err := file.New(t.TempDir())
	if err != nil {
		t.Fatalf("file.New() error = %v", err)
	}

	s := newTestStore(t, fs)
	for _, in := range []domain.ContactInput{
		{Name: "Ann", Phones: []domain.PhoneInput{{Number: "1", Type: "work"}}, Tags: []string{"a"}},
		{Name: "Bob", Emails: []domain.EmailInput{{Email: "bob@example.com"}}, Notes: "<b>hi</b>"},
	} {
		if _, _, err := s.CreateOrUpdate(ctx, in, ""); err != nil {
			t.Fatalf("create error = %v", err)
		}
	}
	if _, err := s.ToggleBookmark(ctx, "id-2"); err != nil {
		t.Fatalf("ToggleBookmark() error = %v", err)
	}

	reopened := newTestStore(t, fs)

	want, _ := json.Marshal(s.All())
	got, _ := json.Marshal(reopened.All())
	if string(got) != string(want) {
		t.Errorf("reloaded collection differs\n got: %s\nwant: %s", got, want)
	}

	snap, err := reopened.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	candidates, invalid, err := domain.ParseImport(snap)
	if err != nil || invalid != 0 || len(candidates) != 2 {
		t.Errorf("Snapshot() should be importable: %d, %d, %v", len(candidates), invalid, err)
	}
}

func TestExportView(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, memory.New())

	if _, _, err := s.CreateOrUpdate(ctx, domain.ContactInput{
		Name:         "Ann",
		Phones:       []domain.PhoneInput{{Number: "1", Type: "home"}, {Number: "2"}},
		Tags:         []string{"a", "b"},
		IsBookmarked: true,
	}, ""); err != nil {
		t.Fatalf("create error = %v", err)
	}

	rows := s.ExportView()
	if len(rows) != 1 {
		t.Fatalf("ExportView() len = %d", len(rows))
	}
	r := rows[0]
	if r.Phones != "1 (home)\n2 (mobile)" || r.Tags != "a, b" || r.Bookmarked != "Yes" || r.CreatedDate != "2024-03-09" {
		t.Errorf("row = %+v", r)
	}
}
