package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"bazaar/internal/broadcast"
	"bazaar/internal/config"
	"bazaar/internal/contact"
	"bazaar/internal/host"
	"bazaar/internal/listing"
	"bazaar/internal/messagelog"
	"bazaar/internal/securelog"
	"bazaar/internal/securestore"
	"bazaar/internal/storage"
	"bazaar/internal/transport"
)

type services struct {
	identity host.Identity
	listings *listing.Service
	share    *broadcast.ShareService
	log      *messagelog.Log
	notifier *messagelog.Notifier
	contacts contact.Resolver
}

type programRunner interface {
	Run() (tea.Model, error)
}

type programFactory func(tea.Model, ...tea.ProgramOption) programRunner

func run(args []string, stdin io.Reader, stdout, stderr io.Writer, newProgram programFactory) error {
	fs := flag.NewFlagSet("bazaar", flag.ContinueOnError)
	fs.SetOutput(stderr)
	nodeURL := fs.String("node", "", "node command API address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	if *nodeURL != "" {
		cfg.NodeURL = *nodeURL
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config invalid: %w", err)
	}

	logCrypto, err := securestore.DeriveFieldCrypto(cfg.MasterKey, "messagelog")
	if err != nil {
		return fmt.Errorf("derive log key: %w", err)
	}

	storeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store, err := storage.NewPostgresStore(storeCtx, cfg.DBURL, logCrypto)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	migrateCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Migrate(migrateCtx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = store.Close(ctx)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := transport.NewCommandClient(cfg.NodeURL, cfg.NodeToken)
	resolver := host.NewResolver(client)
	identityCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	identity, err := resolver.Resolve(identityCtx)
	if err != nil {
		return fmt.Errorf("resolve host identity: %w", err)
	}

	notifier := messagelog.NewNotifier()
	msgLog := messagelog.New(store.Messages(), notifier)
	listingSvc := listing.NewService(store.Listings())
	contactResolver := transport.NewContactResolver(client)
	shareSvc := broadcast.NewShareService(
		listingSvc,
		broadcast.NewDispatcher(client),
		broadcast.NewReconciler(msgLog),
		contactResolver,
	)

	svc := services{
		identity: identity,
		listings: listingSvc,
		share:    shareSvc,
		log:      msgLog,
		notifier: notifier,
		contacts: contactResolver,
	}

	// The event feed is best-effort: without it outbound sharing still
	// works, only inbound messages stop arriving live.
	if feed, err := transport.ConnectFeed(ctx, cfg.NodeURL, cfg.NodeToken); err != nil {
		securelog.Error("feed.connect", err)
	} else {
		defer feed.Close()
		events := make(chan transport.Event, 64)
		go feed.ReadLoop(events)
		go consumeInbound(ctx, events, msgLog)
		securelog.Event("feed.connected")
	}

	if newProgram == nil {
		newProgram = func(model tea.Model, options ...tea.ProgramOption) programRunner {
			return tea.NewProgram(model, options...)
		}
	}

	p := newProgram(newRootModel(svc), tea.WithAltScreen(), tea.WithInput(stdin), tea.WithOutput(stdout))
	_, err = p.Run()
	return err
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, nil); err != nil {
		securelog.Error("bazaar.run", err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
