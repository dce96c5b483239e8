package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tartampluch/go-dialer/internal/config"
	"golang.org/x/time/rate"
)

// cacheItem stores one rendered document and its HTTP caching metadata.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123, as required by HTTP headers
}

// document is one served route. The cache is swapped atomically on every
// store change while clients read it lock-free.
type document struct {
	contentType string
	cache       atomic.Pointer[cacheItem]
}

// FeedServer serves the address book (/contacts.vcf) and the call log
// (/calls.ics) to local clients.
type FeedServer struct {
	docs    map[string]*document // fixed at construction, read-only afterwards
	limiter *rate.Limiter
	Port    string
}

// NewFeedServer creates a server for the contacts and call-log routes.
func NewFeedServer(port string) *FeedServer {
	return &FeedServer{
		Port:    port,
		limiter: rate.NewLimiter(rate.Limit(config.ServerRateLimit), config.ServerRateBurst),
		docs: map[string]*document{
			config.RouteContacts: {contentType: config.MimeVCard},
			config.RouteCalls:    {contentType: config.MimeTextCalendar},
		},
	}
}

// Handler returns the HTTP routes of the server.
func (s *FeedServer) Handler() http.Handler {
	mux := http.NewServeMux()
	for route, doc := range s.docs {
		mux.HandleFunc(route, s.serve(doc))
	}
	return mux
}

// Start listens on localhost and blocks until ctx is cancelled.
func (s *FeedServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)
	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Update atomically replaces the document served at route.
func (s *FeedServer) Update(route string, data []byte) error {
	doc, ok := s.docs[route]
	if !ok {
		return fmt.Errorf("%s: %q", config.ErrUnknownRoute, route)
	}

	hash := sha256.Sum256(data)
	item := &cacheItem{
		data:         data,
		etag:         fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:])),
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	}
	doc.cache.Store(item)

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyRoute, route,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, item.etag,
	)
	return nil
}

// serve returns the handler of one document, with conditional GET support.
func (s *FeedServer) serve(doc *document) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set(config.HeaderAllow, config.AllowedMethods)
			http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
			return
		}

		// All polling clients share one budget.
		if !s.limiter.Allow() {
			w.Header().Set(config.HeaderRetryAfter, config.RetryAfterThrottled)
			http.Error(w, config.HTTPMsgTooMany, http.StatusTooManyRequests)
			return
		}

		item := doc.cache.Load()
		if item == nil {
			w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
			http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
			return
		}

		w.Header().Set(config.HeaderContentType, doc.contentType)
		w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
		w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
		w.Header().Set(config.HeaderETag, item.etag)
		w.Header().Set(config.HeaderLastModified, item.lastModified)

		if notModified(r.Header, item) {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		if r.Method == http.MethodGet {
			if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
				slog.Error(config.ErrWriteResp,
					config.LogKeyComponent, config.CompServer,
					config.LogKeyError, err,
				)
			}
		}
	}
}

// notModified evaluates the conditional headers. If-Modified-Since is only
// consulted when If-None-Match is absent (RFC 9110 section 13.2.2): two
// publishes within one second share a Last-Modified but not an ETag.
func notModified(h http.Header, item *cacheItem) bool {
	if match := h.Get(config.HeaderIfNoneMatch); match != "" {
		return match == item.etag
	}
	return notModifiedSince(h.Get(config.HeaderIfModifiedSince), item.lastModified)
}

// notModifiedSince reports whether the client copy dated since is at least
// as recent as lastModified.
func notModifiedSince(since, lastModified string) bool {
	if since == "" {
		return false
	}
	clientTime, err := time.Parse(http.TimeFormat, since)
	if err != nil {
		return false
	}
	serverTime, err := time.Parse(http.TimeFormat, lastModified)
	if err != nil {
		return false
	}
	return !serverTime.After(clientTime)
}
