package exchange

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-dialer/internal/config"
	"github.com/tartampluch/go-dialer/internal/engine"
)

// WriteCallLog renders the last call of every called contact as a
// zero-length VEVENT, so calendar clients can show call history.
// Contacts never called are skipped. now stamps DTSTAMP.
func WriteCallLog(w io.Writer, contacts []engine.Contact, now time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	dtStamp := ical.NewProp(config.PropDTStamp)
	dtStamp.SetDateTime(now.UTC())

	for _, c := range contacts {
		if c.LastCalledAt == nil {
			continue
		}
		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatCallUID, c.ID, c.LastCalledAt.Unix(), config.ICalDomain))
		event.Props.SetText(config.PropSummary, fmt.Sprintf(config.FormatCallSummary, c.Name))
		event.Props.SetText(config.PropDescription, c.PhoneNumber)

		start := ical.NewProp(config.PropDTStart)
		start.SetDateTime(c.LastCalledAt.UTC())
		event.Props.Set(start)
		event.Props.Set(dtStamp)

		cal.Children = append(cal.Children, event.Component)
	}

	// The encoder rejects a calendar without components.
	if len(cal.Children) == 0 {
		_, err := io.WriteString(w, config.StubVCalendar)
		return err
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return nil
}
