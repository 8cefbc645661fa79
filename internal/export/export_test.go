package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/MrSnakeDoc/addressbook/internal/domain"
)

type fakeSource []domain.Contact

func (f fakeSource) All() []domain.Contact { return f }

func (f fakeSource) ExportView() []domain.Row {
	rows := make([]domain.Row, 0, len(f))
	for i := range f {
		rows = append(rows, domain.Flatten(&f[i]))
	}
	return rows
}

var sample = fakeSource{
	{
		ID:           "1",
		Name:         "Ann",
		Phones:       []domain.Phone{{Number: "555-1234", Type: domain.PhoneMobile}, {Number: "555-0000", Type: domain.PhoneWork}},
		Emails:       []domain.Email{{Email: "ann@example.com", Type: domain.EmailPersonal}},
		Tags:         []string{"friend", "work"},
		IsBookmarked: true,
		Notes:        "<script>x</script>",
		CreatedAt:    "2024-03-09T10:30:00.000Z",
	},
	{ID: "2", Name: "Bob", CreatedAt: "yesterday"},
}

func TestByFormat(t *testing.T) {
	tests := []struct {
		in       string
		wantName string
		wantErr  bool
	}{
		{"", "contacts.xlsx", false},
		{"XLSX", "contacts.xlsx", false},
		{" csv ", "contacts.csv", false},
		{"json", "contacts.json", false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			w, err := ByFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ByFormat(%q) error = %v", tt.in, err)
			}
			if err == nil && w.FileName() != tt.wantName {
				t.Errorf("FileName() = %q, want %q", w.FileName(), tt.wantName)
			}
		})
	}
}

func TestXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := (XLSX{}).Write(&buf, sample); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer func() { _ = f.Close() }()

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != SheetName {
		t.Fatalf("sheets = %v, want [%s]", sheets, SheetName)
	}

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if strings.Join(rows[0], "|") != strings.Join(domain.ExportHeaders, "|") {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][1] != "555-1234 (mobile)\n555-0000 (work)" {
		t.Errorf("phones cell = %q", rows[1][1])
	}
	if rows[1][4] != "Yes" || rows[1][6] != "2024-03-09" {
		t.Errorf("row 1 = %v", rows[1])
	}
	if got := rows[2][len(rows[2])-1]; got != "yesterday" {
		t.Errorf("unparseable date = %q, want raw value", got)
	}

	width, err := f.GetColWidth(SheetName, "F")
	if err != nil || width != 40 {
		t.Errorf("notes width = %v, %v, want 40", width, err)
	}
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := (CSV{}).Write(&buf, sample); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	if records[1][3] != "friend, work" || records[1][5] != "<script>x</script>" {
		t.Errorf("row 1 = %v", records[1])
	}
}

func TestJSONExportIsImportable(t *testing.T) {
	var buf bytes.Buffer
	if err := (JSON{}).Write(&buf, sample); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if strings.Contains(buf.String(), `<`) {
		t.Error("notes should not be HTML escaped")
	}

	got, invalid, err := domain.ParseImport(buf.Bytes())
	if err != nil || invalid != 0 {
		t.Fatalf("ParseImport() = %d invalid, %v", invalid, err)
	}
	if len(got) != 2 || got[0].Notes != sample[0].Notes {
		t.Errorf("round trip = %+v", got)
	}
}

func TestTemplate(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	var buf bytes.Buffer
	if err := WriteTemplate(&buf, now); err != nil {
		t.Fatalf("WriteTemplate() error = %v", err)
	}

	got, invalid, err := domain.ParseImport(buf.Bytes())
	if err != nil || invalid != 0 {
		t.Fatalf("template not importable: %d, %v", invalid, err)
	}
	if len(got) != 2 || got[0].Name != "John Doe" || got[1].Name != "Jane Smith" {
		t.Errorf("template = %+v", got)
	}
	if !got[0].IsBookmarked || got[1].IsBookmarked {
		t.Error("only John Doe is bookmarked in the template")
	}
	if got[0].CreatedAt != "2024-01-02T03:04:05.000Z" {
		t.Errorf("createdAt = %q", got[0].CreatedAt)
	}
}
