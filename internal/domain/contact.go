package domain

import (
	"time"
)

// TimestampLayout is the ISO-8601 layout used for createdAt/updatedAt.
// UTC with millisecond precision, e.g. 2024-03-01T09:30:00.000Z
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// PhoneType classifies a phone number.
type PhoneType string

const (
	PhoneMobile PhoneType = "mobile"
	PhoneHome   PhoneType = "home"
	PhoneWork   PhoneType = "work"
)

// EmailType classifies an email address.
type EmailType string

const (
	EmailPersonal EmailType = "personal"
	EmailWork     EmailType = "work"
)

// Phone is a single phone entry of a contact.
type Phone struct {
	Number string    `json:"number"`
	Type   PhoneType `json:"type"`
}

// Email is a single email entry of a contact.
type Email struct {
	Email string    `json:"email"`
	Type  EmailType `json:"type"`
}

// Contact represents one address-book entry.
//
// All text fields hold plain user text. Nothing here is escaped for display;
// that is the job of whatever renders the contact.
type Contact struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is unique within the collection and never reassigned.
	ID string `json:"id"`

	// ─────────────────────────────
	// Card content
	// ─────────────────────────────

	// Name is required on create/update. Imported records may lack it.
	Name string `json:"name"`

	Phones []Phone `json:"phones"`
	Emails []Email `json:"emails"`

	// Tags is an ordered set: insertion order is kept, duplicates are removed.
	Tags []string `json:"tags"`

	IsBookmarked bool   `json:"isBookmarked"`
	Notes        string `json:"notes,omitempty"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	// CreatedAt is set once at creation and preserved across edits.
	CreatedAt string `json:"createdAt,omitempty"`

	// UpdatedAt is refreshed on every mutation of the record.
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// Clone returns a deep copy so callers never share slices with the store.
func (c Contact) Clone() Contact {
	out := c
	out.Phones = append([]Phone(nil), c.Phones...)
	out.Emails = append([]Email(nil), c.Emails...)
	out.Tags = append([]string(nil), c.Tags...)
	if out.Phones == nil {
		out.Phones = []Phone{}
	}
	if out.Emails == nil {
		out.Emails = []Email{}
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return out
}

// FormatTimestamp renders t with TimestampLayout in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp accepts TimestampLayout as well as any RFC3339 variant.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(TimestampLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
