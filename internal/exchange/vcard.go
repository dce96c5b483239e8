package exchange

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-dialer/internal/config"
	"github.com/tartampluch/go-dialer/internal/engine"
)

// WriteVCards exports contacts as vCard 3.0 with FN, a cell TEL and the
// group as CATEGORIES.
func WriteVCards(w io.Writer, contacts []engine.Contact) error {
	enc := vcard.NewEncoder(w)
	for _, c := range contacts {
		card := make(vcard.Card)
		card.SetValue(vcard.FieldVersion, config.VCardVersion)
		card.SetValue(vcard.FieldFormattedName, c.Name)
		card.Add(vcard.FieldTelephone, &vcard.Field{
			Value:  c.PhoneNumber,
			Params: vcard.Params{vcard.ParamType: {config.VCardTypeCell}},
		})
		if c.Group != "" {
			card.SetValue(vcard.FieldCategories, c.Group)
		}
		if err := enc.Encode(card); err != nil {
			return fmt.Errorf("%s: %w", config.ErrVCardEncode, err)
		}
	}
	return nil
}

// ReadVCards imports every card carrying both a name and a phone number.
// Malformed cards are logged and skipped.
func ReadVCards(r io.Reader) ([]engine.Contact, error) {
	dec := vcard.NewDecoder(r)
	var contacts []engine.Contact
	stats := struct{ processed, skipped int }{}

	for {
		card, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A broken stream cannot be resynchronized, keep what we have.
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompExchange,
				config.LogKeyError, err)
			if len(contacts) == 0 {
				return nil, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
			}
			break
		}
		stats.processed++

		name := strings.TrimSpace(card.Value(vcard.FieldFormattedName))
		if name == "" {
			name = nameFromN(card)
		}
		phone := strings.TrimSpace(card.PreferredValue(vcard.FieldTelephone))
		if name == "" || phone == "" {
			stats.skipped++
			continue
		}

		c := engine.Contact{Name: name, PhoneNumber: phone, Group: group(card)}
		contacts = append(contacts, c)
	}

	slog.Info(config.MsgVCardsRead,
		config.LogKeyComponent, config.CompExchange,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, stats.processed),
			slog.Int(config.LogKeySkipped, stats.skipped),
		),
	)
	return contacts, nil
}

// nameFromN builds "Given Family" from the structured N property.
func nameFromN(card vcard.Card) string {
	n := card.Name()
	if n == nil {
		return ""
	}
	parts := make([]string, 0, 2)
	for _, p := range []string{n.GivenName, n.FamilyName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// group keeps the whole CATEGORIES list as one label, so "Work,Friends"
// survives an import and export unchanged.
func group(card vcard.Card) string {
	cats := card.Categories()
	for i, cat := range cats {
		cats[i] = strings.TrimSpace(cat)
	}
	return strings.Join(cats, ",")
}
