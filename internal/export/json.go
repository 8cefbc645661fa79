package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/MrSnakeDoc/addressbook/internal/domain"
)

// JSON writes the full contact records, in the import format.
type JSON struct{}

func (JSON) ContentType() string { return "application/json" }

func (JSON) FileName() string { return "contacts.json" }

func (JSON) Write(w io.Writer, src Source) error {
	return writeIndented(w, src.All())
}

// TemplateFileName is the download name of Template.
const TemplateFileName = "contacts_template.json"

// Template returns two sample contacts showing the import format.
func Template(now time.Time) []domain.Contact {
	ts := domain.FormatTimestamp(now)
	return []domain.Contact{
		{
			ID:   "1",
			Name: "John Doe",
			Phones: []domain.Phone{
				{Number: "123-456-7890", Type: domain.PhoneMobile},
				{Number: "098-765-4321", Type: domain.PhoneWork},
			},
			Emails: []domain.Email{
				{Email: "john@example.com", Type: domain.EmailPersonal},
				{Email: "john.doe@company.com", Type: domain.EmailWork},
			},
			Tags:         []string{"friend", "colleague"},
			IsBookmarked: true,
			Notes:        "Met at conference last year",
			CreatedAt:    ts,
		},
		{
			ID:   "2",
			Name: "Jane Smith",
			Phones: []domain.Phone{
				{Number: "555-123-4567", Type: domain.PhoneHome},
			},
			Emails: []domain.Email{
				{Email: "jane.smith@gmail.com", Type: domain.EmailPersonal},
			},
			Tags:      []string{"family"},
			Notes:     "Cousin",
			CreatedAt: ts,
		},
	}
}

// WriteTemplate writes Template as indented JSON.
func WriteTemplate(w io.Writer, now time.Time) error {
	return writeIndented(w, Template(now))
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
