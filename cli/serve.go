package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sljivkov/feedoracle/chains"
	"github.com/sljivkov/feedoracle/handler"
	"github.com/sljivkov/feedoracle/oracle"
	"github.com/sljivkov/feedoracle/storage"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the oracle HTTP server",
	Long: `Start the oracle server, which provides:
- GET /prices/{asset} normalized prices
- read accessors for the registry, owner, time gaps and remappings
- signed admin endpoints for the owner
- Prometheus metrics on /metrics

Configuration tables are persisted in DB_PATH. A registry or owner stored by
a previous run takes precedence over REGISTRY and OWNER.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "address to listen on (overrides LISTEN_ADDR)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateServer(); err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := chains.Dial(ctx, cfg.RPCURL)
	if err != nil {
		return err
	}
	defer client.Close()

	store, err := storage.NewLevelDBStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	registry, owner, err := restoreState(store, cfg.RegistryAddress(), cfg.OwnerAddress(), log)
	if err != nil {
		return err
	}

	adapter, err := oracle.New(registry, owner, chains.NewBinder(client),
		oracle.WithStore(store),
		oracle.WithLogger(log.Named("oracle")),
	)
	if err != nil {
		return fmt.Errorf("failed to create oracle: %w", err)
	}

	go logEvents(ctx, adapter, log.Named("events"))

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler.New(adapter, log.Named("http")).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", cfg.ListenAddr), zap.Stringer("registry", registry), zap.Stringer("owner", owner))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// restoreState returns the registry and owner to start with: values stored
// by a previous run win over the configured ones
func restoreState(store storage.Store, registry, owner common.Address, log *zap.Logger) (common.Address, common.Address, error) {
	stored, err := store.Registry()
	switch {
	case err == nil:
		if stored != registry {
			log.Info("using stored registry", zap.Stringer("stored", stored), zap.Stringer("configured", registry))
		}
		registry = stored
	case !errors.Is(err, storage.ErrNotFound):
		return common.Address{}, common.Address{}, err
	}

	storedOwner, err := store.Owner()
	switch {
	case err == nil:
		if storedOwner != owner {
			log.Info("using stored owner", zap.Stringer("stored", storedOwner), zap.Stringer("configured", owner))
		}
		owner = storedOwner
	case !errors.Is(err, storage.ErrNotFound):
		return common.Address{}, common.Address{}, err
	}

	return registry, owner, nil
}

// logEvents logs every adapter event until ctx is done
func logEvents(ctx context.Context, adapter *oracle.Adapter, log *zap.Logger) {
	events := make(chan oracle.Event, 16)
	sub := adapter.SubscribeEvents(events)
	defer sub.Unsubscribe()

	for {
		select {
		case ev := <-events:
			log.Info(string(ev.Kind), eventFields(ev)...)
		case err := <-sub.Err():
			if err != nil {
				log.Warn("event subscription failed", zap.Error(err))
			}
			return
		case <-ctx.Done():
			return
		}
	}
}

func eventFields(ev oracle.Event) []zap.Field {
	switch ev.Kind {
	case oracle.EventRegistryChanged:
		return []zap.Field{zap.Stringer("registry", ev.Registry)}
	case oracle.EventTimeGapSet:
		return []zap.Field{zap.Stringers("assets", ev.Assets), zap.Durations("gaps", ev.Gaps)}
	case oracle.EventTokenRemapSet:
		return []zap.Field{zap.Stringers("assets", ev.Assets), zap.Stringers("remaps", ev.Remaps)}
	case oracle.EventOwnershipTransferred:
		return []zap.Field{zap.Stringer("from", ev.PreviousOwner), zap.Stringer("to", ev.NewOwner)}
	default:
		return nil
	}
}
