package server

import (
	"bytes"
	"log/slog"
	"time"

	"github.com/tartampluch/go-dialer/internal/config"
	"github.com/tartampluch/go-dialer/internal/engine"
	"github.com/tartampluch/go-dialer/internal/exchange"
)

// Publish renders the full contact list into both served documents.
// It is meant to be registered as a listener of engine.Engine.Directory.
func (s *FeedServer) Publish(contacts []engine.Contact) {
	var vcf bytes.Buffer
	if err := exchange.WriteVCards(&vcf, contacts); err != nil {
		s.logPublishError(config.RouteContacts, err)
	} else if err := s.Update(config.RouteContacts, vcf.Bytes()); err != nil {
		s.logPublishError(config.RouteContacts, err)
	}

	var ics bytes.Buffer
	if err := exchange.WriteCallLog(&ics, contacts, time.Now()); err != nil {
		s.logPublishError(config.RouteCalls, err)
	} else if err := s.Update(config.RouteCalls, ics.Bytes()); err != nil {
		s.logPublishError(config.RouteCalls, err)
	}
}

func (s *FeedServer) logPublishError(route string, err error) {
	slog.Error(config.ErrPublish,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyRoute, route,
		config.LogKeyError, err,
	)
}
