package seed

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// PhoneEntry is a phone in the seed file. It is either a mapping
// ({number, type}) or a bare scalar holding the number.
type PhoneEntry struct {
	Number string `yaml:"number"`
	Type   string `yaml:"type"`
}

// UnmarshalYAML accepts both the scalar and the mapping form.
func (p *PhoneEntry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		p.Number = node.Value
		return nil
	}
	type plain PhoneEntry
	if err := node.Decode((*plain)(p)); err != nil {
		return fmt.Errorf("line %d: invalid phone: %w", node.Line, err)
	}
	return nil
}

// EmailEntry is an email in the seed file, scalar or mapping.
type EmailEntry struct {
	Email string `yaml:"email"`
	Type  string `yaml:"type"`
}

// UnmarshalYAML accepts both the scalar and the mapping form.
func (e *EmailEntry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		e.Email = node.Value
		return nil
	}
	type plain EmailEntry
	if err := node.Decode((*plain)(e)); err != nil {
		return fmt.Errorf("line %d: invalid email: %w", node.Line, err)
	}
	return nil
}

// ContactEntry is one contact in the seed file.
type ContactEntry struct {
	ID         string       `yaml:"id"`
	Name       string       `yaml:"name"`
	Phones     []PhoneEntry `yaml:"phones"`
	Emails     []EmailEntry `yaml:"emails"`
	Tags       []string     `yaml:"tags"`
	Bookmarked bool         `yaml:"bookmarked"`
	Notes      string       `yaml:"notes"`
}

// Config is the root of the seed file: a plain list of contacts.
type Config []ContactEntry
