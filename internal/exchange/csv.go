// Package exchange converts contacts to and from interchange formats:
// CSV, vCard and an iCalendar call log, plus a fetcher for remote
// address books.
package exchange

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/tartampluch/go-dialer/internal/config"
	"github.com/tartampluch/go-dialer/internal/engine"
)

// CSV column order: Name, PhoneNumber, Group, IsFavorite.
const (
	csvColName = iota
	csvColPhone
	csvColGroup
	csvColFavorite
)

// csvHeader is written on export and skipped on import.
var csvHeader = []string{config.CSVHeaderName, config.CSVHeaderPhone, config.CSVHeaderGroup, config.CSVHeaderFavorite}

// WriteCSV exports contacts with a header row. Favorites are written as 1/0.
func WriteCSV(w io.Writer, contacts []engine.Contact) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("%s: %w", config.ErrCSVWrite, err)
	}
	for _, c := range contacts {
		fav := config.CSVFalse
		if c.IsFavorite {
			fav = config.CSVTrue
		}
		if err := cw.Write([]string{c.Name, c.PhoneNumber, c.Group, fav}); err != nil {
			return fmt.Errorf("%s: %w", config.ErrCSVWrite, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("%s: %w", config.ErrCSVWrite, err)
	}
	return nil
}

// ReadCSV imports contacts, skipping the header row. Rows with fewer than
// two fields are ignored; Group and IsFavorite are optional.
func ReadCSV(r io.Reader) ([]engine.Contact, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", config.ErrCSVRead, err)
	}

	var contacts []engine.Contact
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return contacts, fmt.Errorf("%s: %w", config.ErrCSVRead, err)
		}
		if len(rec) <= csvColPhone {
			slog.Debug(config.MsgSkippedRow,
				config.LogKeyComponent, config.CompExchange,
				config.LogKeyCount, len(rec))
			continue
		}

		c := engine.Contact{
			Name:        rec[csvColName],
			PhoneNumber: rec[csvColPhone],
		}
		if len(rec) > csvColGroup {
			c.Group = rec[csvColGroup]
		}
		if len(rec) > csvColFavorite {
			c.IsFavorite = rec[csvColFavorite] == config.CSVTrue
		}
		contacts = append(contacts, c)
	}
	return contacts, nil
}
