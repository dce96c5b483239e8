package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/tartampluch/go-dialer/internal/config"
	"github.com/tartampluch/go-dialer/internal/engine"
	"github.com/tartampluch/go-dialer/internal/exchange"
	"github.com/tartampluch/go-dialer/internal/server"
	"github.com/tartampluch/go-dialer/internal/store"
	"github.com/tartampluch/go-dialer/internal/ui"
)

type options struct {
	version bool
	debug   bool
	dbPath  string
}

func main() {
	// Deferred cleanups live in runMain; os.Exit would skip them here.
	os.Exit(runMain())
}

func runMain() int {
	var opts options
	flag.BoolVar(&opts.version, config.FlagVersion, false, config.FlagDescVersion)
	flag.BoolVar(&opts.debug, config.FlagDebug, false, config.FlagDescDebug)
	flag.StringVar(&opts.dbPath, config.FlagDB, "", config.FlagDescDB)
	flag.Parse()

	if opts.version {
		fmt.Printf(config.MsgVersionOutput, config.AppName, config.Version,
			config.Commit, config.Date, runtime.GOOS, runtime.GOARCH)
		return config.ExitCodeSuccess
	}

	closeLog := initLogger(opts.debug)
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := slog.With(config.LogKeyComponent, config.CompMain)
	log.Info(config.MsgAppStarting,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)

	if err := run(ctx, opts.dbPath); err != nil {
		log.Error(config.ErrAppFailed, config.LogKeyError, err)
		return config.ExitCodeError
	}
	log.Info(config.MsgAppStop)
	return config.ExitCodeSuccess
}

// run wires store, engine, feed server and UI, then blocks until the main
// window closes.
func run(ctx context.Context, dbPath string) error {
	a := app.NewWithID(config.AppID)
	prefs := a.Preferences()
	prefs.SetString(config.PrefLastRun, config.Version)

	if dbPath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("%s: %w", config.ErrConfigDir, err)
		}
		dbPath = filepath.Join(dir, config.AppID, config.DBFileName)
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	eng := engine.New(ctx, db, engine.Options{
		RecentLimit: prefs.IntWithFallback(config.PrefRecentLimit, config.DefaultRecentLimit),
	})
	// Pending writes drain in Close, before the store goes away.
	defer eng.Close()

	srv := server.NewFeedServer(prefs.StringWithFallback(config.PrefServerPort, config.DefaultPort))
	gui := ui.NewDialerApp(a, ctx, eng, srv, exchange.NewHTTPFetcher())

	go func() {
		<-ctx.Done()
		slog.Info(config.MsgCtxCancel, config.LogKeyComponent, config.CompMain)
		fyne.Do(a.Quit)
	}()

	gui.Run()
	return nil
}
