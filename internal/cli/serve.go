package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fluidnet/internal/handler"
	"fluidnet/internal/hub"
	"fluidnet/internal/repository"
	"fluidnet/internal/repository/sqlite"
	"fluidnet/internal/service"
)

func serveCmd(a *app) *cobra.Command {
	var (
		addr      string
		solverURL string
		journal   string
		noJournal bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and event stream",
		Long: `Serve one diagram session over HTTP.

  fluidnet serve                              # listen on server.addr
  fluidnet serve --addr :8080 --solver http://solver:5000/solve
  fluidnet serve --no-journal                 # do not record solves`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("solver") {
				cfg.Solver.URL = solverURL
			}
			if cmd.Flags().Changed("journal") {
				cfg.Journal.Path = journal
			}
			if noJournal {
				cfg.Journal.Disabled = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log.Println("Starting fluidnet server...")
			if a.cfgSource != "" {
				log.Printf("Config loaded: %s", a.cfgSource)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, a)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides server.addr)")
	cmd.Flags().StringVar(&solverURL, "solver", "", "Solver endpoint URL (overrides solver.url)")
	cmd.Flags().StringVar(&journal, "journal", "", "SQLite solve journal path (overrides journal.path)")
	cmd.Flags().BoolVar(&noJournal, "no-journal", false, "Do not record solve attempts")
	return cmd
}

// openJournal opens the configured solve journal, or returns nil when disabled
func openJournal(a *app) (repository.SolveJournal, error) {
	if a.cfg.Journal.Disabled {
		return nil, nil
	}
	repo, err := sqlite.New(a.cfg.Journal.Path)
	if err != nil {
		return nil, err
	}
	log.Printf("Journal opened: %s", a.cfg.Journal.Path)
	return repo, nil
}

func runServer(ctx context.Context, a *app) error {
	cfg := a.cfg

	journal, err := openJournal(a)
	if err != nil {
		return err
	}
	if journal != nil {
		defer journal.Close()
	}

	client, err := cfg.NewSolverClient()
	if err != nil {
		return err
	}

	// Initialize event bus
	eventBus := service.NewEventBus()

	// Initialize SSE hub
	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	sseHub := hub.New()
	go sseHub.Run(hubCtx)

	// Connect event bus to SSE hub
	eventChan := make(chan service.Event, 100)
	eventBus.Subscribe(eventChan)
	go sseHub.Forward(eventChan)
	defer func() {
		eventBus.Unsubscribe(eventChan)
		close(eventChan)
	}()

	session := service.NewSession(service.Options{
		Solver:         client,
		Journal:        journal,
		Bus:            eventBus,
		NotifyDuration: cfg.Notification.Duration.Duration(),
	})
	defer session.Close()

	// Setup routes
	mux := http.NewServeMux()
	handler.NewDiagramHandler(session, journal).Register(mux)
	mux.Handle("GET /events", sseHub)

	// Apply middleware
	finalHandler := handler.Chain(mux,
		handler.Recover,
		handler.CORS,
		handler.Logger,
	)

	server := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     finalHandler,
		ReadTimeout: 10 * time.Second,
		// solves may take up to the solver timeout
		WriteTimeout: cfg.Solver.Timeout.Duration() + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s (solver %s)", cfg.Server.Addr, client.Endpoint())
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")

	// SSE streams never finish on their own
	hubCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	if n := eventBus.Dropped(); n > 0 {
		log.Printf("Event deliveries dropped by slow subscribers: %d", n)
	}
	log.Println("Server stopped")
	return nil
}
