// Package export renders the contact collection as downloadable files.
package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/MrSnakeDoc/addressbook/internal/domain"
)

// Source is what a Writer reads from. *contacts.Store satisfies it.
type Source interface {
	ExportView() []domain.Row
	All() []domain.Contact
}

// Writer renders a Source in one file format.
type Writer interface {
	ContentType() string
	FileName() string
	Write(w io.Writer, src Source) error
}

var writers = map[string]Writer{
	"xlsx": XLSX{},
	"csv":  CSV{},
	"json": JSON{},
}

// DefaultFormat is used when no format is asked for.
const DefaultFormat = "xlsx"

// ByFormat returns the writer registered for format (case-insensitive).
// An empty format selects DefaultFormat.
func ByFormat(format string) (Writer, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = DefaultFormat
	}
	w, ok := writers[format]
	if !ok {
		return nil, fmt.Errorf("unsupported export format %q (want one of %s)", format, strings.Join(Formats(), ", "))
	}
	return w, nil
}

// Formats lists the supported format names, sorted.
func Formats() []string {
	out := make([]string, 0, len(writers))
	for name := range writers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
