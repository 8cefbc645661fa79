package domain

import (
	"fmt"
	"strings"
)

// ExportHeaders are the column titles of a flattened row, in order.
var ExportHeaders = []string{
	"Name",
	"Phone Numbers",
	"Email Addresses",
	"Tags",
	"Bookmarked",
	"Notes",
	"Created Date",
}

// Row is the display-oriented projection of a Contact.
type Row struct {
	Name        string `json:"name"`
	Phones      string `json:"phones"`
	Emails      string `json:"emails"`
	Tags        string `json:"tags"`
	Bookmarked  string `json:"bookmarked"`
	Notes       string `json:"notes"`
	CreatedDate string `json:"createdDate"`
}

// Values returns the row cells in ExportHeaders order.
func (r Row) Values() []string {
	return []string{r.Name, r.Phones, r.Emails, r.Tags, r.Bookmarked, r.Notes, r.CreatedDate}
}

// Flatten maps a contact to a Row. Pure projection, no mutation.
func Flatten(c *Contact) Row {
	phones := make([]string, 0, len(c.Phones))
	for _, p := range c.Phones {
		phones = append(phones, fmt.Sprintf("%s (%s)", p.Number, p.Type))
	}
	emails := make([]string, 0, len(c.Emails))
	for _, e := range c.Emails {
		emails = append(emails, fmt.Sprintf("%s (%s)", e.Email, e.Type))
	}

	bookmarked := "No"
	if c.IsBookmarked {
		bookmarked = "Yes"
	}

	return Row{
		Name:        c.Name,
		Phones:      strings.Join(phones, "\n"),
		Emails:      strings.Join(emails, "\n"),
		Tags:        strings.Join(c.Tags, ", "),
		Bookmarked:  bookmarked,
		Notes:       c.Notes,
		CreatedDate: formatCreatedDate(c.CreatedAt),
	}
}

// formatCreatedDate renders YYYY-MM-DD, or the raw value when it does not
// parse (imported data is not validated).
func formatCreatedDate(s string) string {
	if s == "" {
		return ""
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		return s
	}
	return t.Format("2006-01-02")
}
