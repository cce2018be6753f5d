// Package app wires configuration, storage, the ledger and a transport into a
// runnable process.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dmitrijs2005/debtkeeper/internal/backup"
	"github.com/dmitrijs2005/debtkeeper/internal/common"
	"github.com/dmitrijs2005/debtkeeper/internal/config"
	"github.com/dmitrijs2005/debtkeeper/internal/console"
	"github.com/dmitrijs2005/debtkeeper/internal/health"
	"github.com/dmitrijs2005/debtkeeper/internal/ledger"
	"github.com/dmitrijs2005/debtkeeper/internal/logging"
	"github.com/dmitrijs2005/debtkeeper/internal/router"
	"github.com/dmitrijs2005/debtkeeper/internal/storage"
	"github.com/dmitrijs2005/debtkeeper/internal/telegram"
)

// newBotAPI is a seam for tgbotapi.NewBotAPI.
var newBotAPI = func(token string) (telegram.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return api, nil
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	backend storage.Backend
	ledger  *ledger.Ledger
	router  *router.Router
}

// NewApp opens storage and loads the ledger. A store that cannot be read is
// reported as a ledger.KindStartupCorruption error.
func NewApp(ctx context.Context, c *config.Config, logOut io.Writer) (*App, error) {
	logger := logging.New(logOut, c.LogLevel)

	backend, err := storage.Open(ctx, c, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	if c.BackupEnabled() {
		up, err := backup.NewS3Uploader(ctx, c)
		if err != nil {
			backend.Close()
			return nil, fmt.Errorf("backup init error: %w", err)
		}
		backend = backup.Wrap(backend, up, c.S3Key, logger.With("module", "backup"))
		logger.Info(ctx, "snapshots enabled", "bucket", c.S3Bucket, "key", c.S3Key)
	}

	l, err := ledger.Open(ctx, backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &App{
		config:  c,
		logger:  logger,
		backend: backend,
		ledger:  l,
		router:  router.New(l, c.Locale, logger),
	}, nil
}

func (app *App) Close() error {
	return app.backend.Close()
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// RunBot polls Telegram until a termination signal arrives or ctx is done.
func (app *App) RunBot(ctx context.Context) error {
	if app.config.BotToken == "" {
		return common.ErrorMissingToken
	}

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting bot...")
	app.initSignalHandler(cancelFunc)

	var hs *health.Server
	if app.config.HealthAddr != "" {
		hs = health.NewServer(app.config.HealthAddr, app.logger)
	}

	connect := func() (telegram.BotAPI, error) {
		return newBotAPI(app.config.BotToken)
	}
	opts := telegram.Options{
		PollTimeout:  app.config.PollTimeout,
		RestartDelay: app.config.RestartDelay,
	}
	if hs != nil {
		opts.OnServing = hs.SetServing
	}
	bot := telegram.New(connect, app.router, app.logger, opts)

	var wg sync.WaitGroup
	var botErr error

	if hs != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := hs.Run(ctx); err != nil {
				app.logger.Error(ctx, err.Error())
				cancelFunc()
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		botErr = bot.Run(ctx)
		cancelFunc()
	}()

	wg.Wait()
	app.logger.Info(ctx, "Bot stopped")
	return botErr
}

// RunConsole serves the same commands on in/out. identity may be empty, in
// which case the console asks for it.
func (app *App) RunConsole(ctx context.Context, in io.Reader, out io.Writer, identity string) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	app.initSignalHandler(cancelFunc)

	c := console.New(app.router, app.logger, in, out)
	if identity != "" {
		c.SetIdentity(identity)
	}
	return c.Run(ctx)
}
