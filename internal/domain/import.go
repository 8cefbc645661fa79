package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// ParseImport decodes an import payload.
//
// The payload must be a JSON array; anything else is an *ImportFormatError
// and nothing is returned. Array elements that cannot be decoded into a
// Contact are dropped and counted in invalid.
func ParseImport(data []byte) (candidates []Contact, invalid int, err error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, 0, &ImportFormatError{Err: errors.New("expected a JSON array of contacts")}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, 0, &ImportFormatError{Err: err}
	}

	candidates = make([]Contact, 0, len(raw))
	for _, item := range raw {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			invalid++
			continue
		}
		var c Contact
		if err := json.Unmarshal(item, &c); err != nil {
			invalid++
			continue
		}
		candidates = append(candidates, c)
	}
	return candidates, invalid, nil
}

// PrepareImported fills the gaps of an accepted import candidate without
// touching user text: nil slices become empty, tags are deduplicated and a
// missing createdAt is set to now. Name is intentionally not validated.
func PrepareImported(c Contact, now string) Contact {
	c.ID = strings.TrimSpace(c.ID)
	if c.Phones == nil {
		c.Phones = []Phone{}
	}
	if c.Emails == nil {
		c.Emails = []Email{}
	}
	c.Tags = NormalizeTags(c.Tags)
	if c.CreatedAt == "" {
		c.CreatedAt = now
	}
	return c
}
