package domain

import (
	"fmt"
	"strings"
)

// PhoneInput is a raw phone row as typed by the user.
type PhoneInput struct {
	Number string `json:"number"`
	Type   string `json:"type"`
}

// EmailInput is a raw email row as typed by the user.
type EmailInput struct {
	Email string `json:"email"`
	Type  string `json:"type"`
}

// ContactInput is the payload of a create/update.
type ContactInput struct {
	ID           string       `json:"id,omitempty"`
	Name         string       `json:"name"`
	Phones       []PhoneInput `json:"phones"`
	Emails       []EmailInput `json:"emails"`
	Tags         []string     `json:"tags"`
	IsBookmarked bool         `json:"isBookmarked"`
	Notes        string       `json:"notes"`
}

// Normalize validates in and builds the card content of a Contact.
// Identity and timestamps are left to the caller.
//
// Rows with a blank number/address are dropped; blank types fall back to
// mobile/personal; tags are trimmed and deduplicated.
func Normalize(in ContactInput) (Contact, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Contact{}, &ValidationError{Field: "name", Message: "name is required"}
	}

	phones := make([]Phone, 0, len(in.Phones))
	for _, p := range in.Phones {
		number := strings.TrimSpace(p.Number)
		if number == "" {
			continue
		}
		typ, err := ParsePhoneType(p.Type)
		if err != nil {
			return Contact{}, err
		}
		phones = append(phones, Phone{Number: number, Type: typ})
	}

	emails := make([]Email, 0, len(in.Emails))
	for _, e := range in.Emails {
		addr := strings.TrimSpace(e.Email)
		if addr == "" {
			continue
		}
		typ, err := ParseEmailType(e.Type)
		if err != nil {
			return Contact{}, err
		}
		emails = append(emails, Email{Email: addr, Type: typ})
	}

	return Contact{
		ID:           strings.TrimSpace(in.ID),
		Name:         name,
		Phones:       phones,
		Emails:       emails,
		Tags:         NormalizeTags(in.Tags),
		IsBookmarked: in.IsBookmarked,
		Notes:        strings.TrimSpace(in.Notes),
	}, nil
}

// ParsePhoneType maps user input to a PhoneType. Blank means mobile.
func ParsePhoneType(s string) (PhoneType, error) {
	switch PhoneType(strings.ToLower(strings.TrimSpace(s))) {
	case "", PhoneMobile:
		return PhoneMobile, nil
	case PhoneHome:
		return PhoneHome, nil
	case PhoneWork:
		return PhoneWork, nil
	}
	return "", &ValidationError{
		Field:   "phones.type",
		Message: fmt.Sprintf("unknown phone type %q (want mobile, home or work)", s),
	}
}

// ParseEmailType maps user input to an EmailType. Blank means personal.
func ParseEmailType(s string) (EmailType, error) {
	switch EmailType(strings.ToLower(strings.TrimSpace(s))) {
	case "", EmailPersonal:
		return EmailPersonal, nil
	case EmailWork:
		return EmailWork, nil
	}
	return "", &ValidationError{
		Field:   "emails.type",
		Message: fmt.Sprintf("unknown email type %q (want personal or work)", s),
	}
}

// NormalizeTags trims every tag, drops blanks and keeps the first
// occurrence of each duplicate. Never returns nil.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// InputFromContact is the inverse of Normalize, used to edit an existing
// record partially (CLI edit, PUT with a stored record as base).
func InputFromContact(c Contact) ContactInput {
	in := ContactInput{
		ID:           c.ID,
		Name:         c.Name,
		Tags:         append([]string(nil), c.Tags...),
		IsBookmarked: c.IsBookmarked,
		Notes:        c.Notes,
	}
	for _, p := range c.Phones {
		in.Phones = append(in.Phones, PhoneInput{Number: p.Number, Type: string(p.Type)})
	}
	for _, e := range c.Emails {
		in.Emails = append(in.Emails, EmailInput{Email: e.Email, Type: string(e.Type)})
	}
	return in
}
