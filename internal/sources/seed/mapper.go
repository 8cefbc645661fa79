package seed

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/MrSnakeDoc/addressbook/internal/domain"
)

// Skipped describes a seed entry that was left out.
type Skipped struct {
	Index  int
	Name   string
	Reason string
}

// Mapper converts seed entries into import candidates
type Mapper struct{}

// NewMapper creates a new seed mapper
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapContacts validates every entry the way a create does and returns the
// valid ones as contacts. Entries without an id get one derived from their
// content, so reloading an unchanged file imports nothing new.
func (m *Mapper) MapContacts(config Config) ([]domain.Contact, []Skipped) {
	contacts := make([]domain.Contact, 0, len(config))
	var skipped []Skipped

	for i, entry := range config {
		c, err := domain.Normalize(toInput(entry))
		if err != nil {
			skipped = append(skipped, Skipped{Index: i, Name: entry.Name, Reason: err.Error()})
			continue
		}
		if c.ID == "" {
			c.ID = generateContactID(c)
		}
		contacts = append(contacts, c)
	}
	return contacts, skipped
}

func toInput(e ContactEntry) domain.ContactInput {
	in := domain.ContactInput{
		ID:           e.ID,
		Name:         e.Name,
		Tags:         e.Tags,
		IsBookmarked: e.Bookmarked,
		Notes:        e.Notes,
	}
	for _, p := range e.Phones {
		in.Phones = append(in.Phones, domain.PhoneInput{Number: p.Number, Type: p.Type})
	}
	for _, em := range e.Emails {
		in.Emails = append(in.Emails, domain.EmailInput{Email: em.Email, Type: em.Type})
	}
	return in
}

// generateContactID derives a stable id from the name and the first phone
// and email, so the same entry always maps to the same id.
func generateContactID(c domain.Contact) string {
	parts := []string{strings.ToLower(c.Name)}
	if len(c.Phones) > 0 {
		parts = append(parts, c.Phones[0].Number)
	}
	if len(c.Emails) > 0 {
		parts = append(parts, strings.ToLower(c.Emails[0].Email))
	}
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "seed-" + hex.EncodeToString(hash[:])[:16]
}
