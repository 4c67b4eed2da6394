package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/google/subcommands"
	"golang.org/x/sync/errgroup"

	"expensetracker/internal/amqp"
	"expensetracker/internal/config"
	apphttp "expensetracker/internal/http"
	"expensetracker/internal/log"
	"expensetracker/internal/services"
	"expensetracker/internal/store"
	"expensetracker/internal/worker"
)

// Commands lists every subcommand of the expenses binary.
var Commands = []subcommands.Command{
	&menuCmd{in: os.Stdin, out: os.Stdout},
	&serveCmd{},
	&exportSheetsCmd{},
	&syncWorkerCmd{},
}

// setup loads configuration and the logger shared by every subcommand.
func setup(logOut io.Writer) (*config.Config, *log.Logger, error) {
	cfg, err := LoadAndValidateConfig()
	if err != nil {
		return nil, nil, err
	}
	return cfg, SetupLogger(cfg, logOut), nil
}

// openService opens the store and wraps it with the event publisher when
// events are enabled. The returned func releases both.
func openService(ctx context.Context, cfg *config.Config, logger *log.Logger) (*services.ExpenseService, func(), error) {
	st, closeStore, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	client, err := NewPublisher(cfg, logger)
	if err != nil {
		// The tracker works without the broker; events are simply lost.
		logger.Warn("AMQP unavailable, change events disabled", log.FieldError, err)
	}

	var publisher services.EventPublisher
	if client != nil {
		publisher = client
	}
	release := func() {
		if client != nil {
			_ = client.Close()
		}
		if err := closeStore(); err != nil {
			logger.Error("Failed to close store", log.FieldError, err)
		}
	}
	return services.NewExpenseService(st, publisher, logger), release, nil
}

type menuCmd struct {
	in  io.Reader
	out io.Writer
}

func (*menuCmd) Name() string     { return "menu" }
func (*menuCmd) Synopsis() string { return "interactive expense tracker menu (default)" }
func (*menuCmd) Usage() string {
	return `expenses [menu]

  Runs the numbered menu: add, list, filter, delete, statistics and
  categories. Logs go to stderr.
`
}
func (*menuCmd) SetFlags(*flag.FlagSet) {}

func (c *menuCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, logger, err := setup(os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	logger = logger.WithComponent(log.ComponentCLI)

	svc, release, err := openService(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open expense store", log.FieldError, err)
		return subcommands.ExitFailure
	}
	defer release()

	// Interrupts keep their default behaviour so Ctrl-C works while the
	// menu is blocked reading input.
	if err := NewMenu(svc, c.in, c.out, cfg.Currency).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Menu stopped", log.FieldError, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type serveCmd struct {
	port string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the web interface and JSON API" }
func (*serveCmd) Usage() string {
	return `expenses serve [-port <port>]

  Serves the expense tracker page and /api endpoints. When the port is
  busy the next free one is used.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.port, "port", "", "Port to try first (overrides PORT).")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, logger, err := setup(os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if c.port != "" {
		cfg.Port = c.port
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}

	svc, release, err := openService(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open expense store", log.FieldError, err)
		return subcommands.ExitFailure
	}
	defer release()

	requested, _ := strconv.Atoi(cfg.Port)
	port := apphttp.FindFreePort(requested, cfg.PortAttempts)
	if port != requested {
		fmt.Printf("Port %d is in use, using port %d instead\n", requested, port)
	}
	fmt.Printf("Expense Tracker running at http://localhost:%d\n", port)

	srv := apphttp.NewServer(":"+strconv.Itoa(port), svc, apphttp.Options{
		Currency:          cfg.Currency,
		RequestsPerMinute: cfg.RateLimit,
		Logger:            logger,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting server", log.FieldOperation, log.OpStartup, "port", port, log.FieldBackend, cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server", log.FieldOperation, log.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err)
		return subcommands.ExitFailure
	}
	logger.Info("Server stopped gracefully")
	return subcommands.ExitSuccess
}

type exportSheetsCmd struct{}

func (*exportSheetsCmd) Name() string     { return "export-sheets" }
func (*exportSheetsCmd) Synopsis() string { return "write every expense to the configured Google Sheet" }
func (*exportSheetsCmd) Usage() string {
	return `expenses export-sheets

  Replaces the contents of GOOGLE_SHEET_NAME in GOOGLE_SPREADSHEET_ID with
  the current expenses.
`
}
func (*exportSheetsCmd) SetFlags(*flag.FlagSet) {}

func (*exportSheetsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, logger, err := setup(os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := cfg.ValidateSheets(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	st, closeStore, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open expense store", log.FieldError, err)
		return subcommands.ExitFailure
	}
	defer closeStore()

	exporter, err := NewExporter(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		return subcommands.ExitFailure
	}

	expenses := st.All()
	if err := exporter.Export(ctx, expenses); err != nil {
		logger.Error("Export failed", log.FieldError, err, log.FieldOperation, log.OpExport)
		return subcommands.ExitFailure
	}
	fmt.Printf("Exported %d expenses to Google Sheets\n", len(expenses))
	return subcommands.ExitSuccess
}

type syncWorkerCmd struct{}

func (*syncWorkerCmd) Name() string { return "sync-worker" }
func (*syncWorkerCmd) Synopsis() string {
	return "mirror expenses to Google Sheets on every change event"
}
func (*syncWorkerCmd) Usage() string {
	return `expenses sync-worker

  Consumes expense events from AMQP_QUEUE and re-exports the backing store
  after each one, plus every SYNC_INTERVAL.
`
}
func (*syncWorkerCmd) SetFlags(*flag.FlagSet) {}

func (*syncWorkerCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, logger, err := setup(os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if !cfg.EventsEnabled() {
		fmt.Fprintln(os.Stderr, "sync-worker requires AMQP_URL")
		return subcommands.ExitFailure
	}
	logger = logger.WithComponent(log.ComponentWorker)

	p, closeStore, err := OpenPersister(cfg)
	if err != nil {
		logger.Error("Failed to open expense store", log.FieldError, err)
		return subcommands.ExitFailure
	}
	defer closeStore()
	source := store.New(p, logger)

	exporter, err := NewExporter(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		return subcommands.ExitFailure
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		return subcommands.ExitFailure
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting sync worker", log.FieldOperation, log.OpStartup)
	if err := worker.NewSyncWorker(source, exporter, logger).Run(ctx, client, cfg.SyncInterval); err != nil {
		logger.Error("Sync worker stopped", log.FieldError, err)
		return subcommands.ExitFailure
	}
	logger.Info("Sync worker stopped gracefully")
	return subcommands.ExitSuccess
}
