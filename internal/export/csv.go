package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/MrSnakeDoc/addressbook/internal/domain"
)

// CSV writes the same columns as XLSX as comma separated values.
type CSV struct{}

func (CSV) ContentType() string { return "text/csv; charset=utf-8" }

func (CSV) FileName() string { return "contacts.csv" }

func (CSV) Write(w io.Writer, src Source) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.ExportHeaders); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range src.ExportView() {
		if err := cw.Write(r.Values()); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
