// internal/engine/engine.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/holiman/uint256"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tokenlaunch/launchpool/internal/config"
	"github.com/tokenlaunch/launchpool/internal/events"
	"github.com/tokenlaunch/launchpool/internal/ledger"
	"github.com/tokenlaunch/launchpool/internal/logger"
	"github.com/tokenlaunch/launchpool/internal/metrics"
	"github.com/tokenlaunch/launchpool/internal/oracle"
	"github.com/tokenlaunch/launchpool/internal/rewardpool"
	"github.com/tokenlaunch/launchpool/internal/salepool"
	"github.com/tokenlaunch/launchpool/internal/storage"
	"github.com/tokenlaunch/launchpool/internal/types"
)

// Custody account identities on the ledgers. The token custody is exempt so
// claim-time releases do not re-enter the reward basis.
const (
	FundingCustodyAccount = "sale.funding"
	TokenCustodyAccount   = "sale.tokens"
	RewardTreasuryAccount = "reward.treasury"
)

const persistInterval = 10 * time.Second

// Engine wires the full system: books, reward pool, sale pool, oracle,
// metrics, audit bus, and durable snapshots.
type Engine struct {
	cfg *config.Config
	log *logger.Logger

	Bus     *events.Bus
	Metrics *metrics.Collector
	Oracle  oracle.Oracle

	FundingBook *ledger.Ledger
	TokenBook   *ledger.Ledger
	RewardPool  *rewardpool.Pool
	SalePool    *salepool.Pool

	store storage.Store
}

// New builds the engine from configuration and restores any persisted state.
func New(cfg *config.Config, log *logger.Logger, store storage.Store) (*Engine, error) {
	zl := log.Logger

	e := &Engine{
		cfg:     cfg,
		log:     log,
		Bus:     events.NewBus(zl, 256),
		Metrics: metrics.NewCollector(),
		store:   store,
	}

	if cfg.OracleURL != "" {
		e.Oracle = oracle.NewClient(cfg.OracleURL, cfg.OracleRetries, zl)
	} else {
		e.Oracle = oracle.NewStatic()
		zl.Warn("No oracle URL configured, using static in-memory oracle")
	}

	e.RewardPool = rewardpool.New(cfg.Admin, zl,
		rewardpool.WithEventBus(e.Bus),
		rewardpool.WithMetrics(e.Metrics))

	e.FundingBook = ledger.New("funding", cfg.Owner, zl)
	e.TokenBook = ledger.New("token", cfg.Owner, zl,
		ledger.WithAllowlist(),
		ledger.WithTracker(e.RewardPool))
	if err := e.TokenBook.SetExempt(cfg.Owner, TokenCustodyAccount, true); err != nil {
		return nil, fmt.Errorf("engine: exempt token custody: %w", err)
	}

	if err := e.RewardPool.Enable(ledger.PayoutAccount{
		Book:    e.FundingBook,
		Account: RewardTreasuryAccount,
	}); err != nil {
		return nil, fmt.Errorf("engine: enable reward pool: %w", err)
	}

	params, err := saleParams(cfg)
	if err != nil {
		return nil, err
	}
	e.SalePool = salepool.New(salepool.Deps{
		Roles: types.Roles{
			Owner:         cfg.Owner,
			Admin:         cfg.Admin,
			BusinessAdmin: cfg.BusinessAdmin,
		},
		Params:         params,
		FundingBook:    e.FundingBook,
		TokenBook:      e.TokenBook,
		FundingCustody: FundingCustodyAccount,
		TokenCustody:   TokenCustodyAccount,
		RewardTreasury: RewardTreasuryAccount,
		Oracle:         e.Oracle,
		Tracker:        e.RewardPool,
		Logger:         zl,
		Bus:            e.Bus,
		Metrics:        e.Metrics,
	})

	if cfg.BreakerEnabled {
		err := e.SalePool.ConfigureBreaker(cfg.Admin, true,
			cfg.StalenessThreshold(), uint64(cfg.MaxDeviationBps))
		if err != nil {
			return nil, fmt.Errorf("engine: configure breaker: %w", err)
		}
	}
	if cfg.MinTokenPrice != "" || cfg.MaxTokenPrice != "" {
		min, max, err := priceBounds(cfg)
		if err != nil {
			return nil, err
		}
		if err := e.SalePool.SetPriceBounds(cfg.Owner, min, max); err != nil {
			return nil, fmt.Errorf("engine: set price bounds: %w", err)
		}
	}

	if err := e.restore(); err != nil {
		return nil, err
	}
	return e, nil
}

// Run serves metrics and persists snapshots until the context is cancelled
// or a termination signal arrives, then shuts everything down.
func (e *Engine) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sh := NewShutdownHandler(e.log.Logger, 30*time.Second)
	sh.AddFunc("logger", e.log.Sync)
	sh.AddFunc("storage", e.store.Close)
	sh.AddFunc("snapshots", e.persist)
	sh.AddFunc("event_bus", func() error {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return e.Bus.Shutdown(shutdownCtx)
	})

	g, gctx := errgroup.WithContext(ctx)

	if e.cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", e.Metrics.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		srv := &http.Server{Addr: e.cfg.MetricsAddr, Handler: mux}

		g.Go(func() error {
			e.log.Info("Metrics endpoint listening", zap.String("addr", e.cfg.MetricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(closeCtx)
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(persistInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := e.persist(); err != nil {
					e.log.Error("Snapshot persistence failed", zap.Error(err))
				}
			}
		}
	})

	e.log.Info("Engine running")
	runErr := g.Wait()
	if shutdownErr := sh.Shutdown(); runErr == nil {
		runErr = shutdownErr
	}
	return runErr
}

// persist writes both pool snapshots to durable storage.
func (e *Engine) persist() error {
	if err := e.store.SaveRewardPool(e.RewardPool.Snapshot()); err != nil {
		return fmt.Errorf("engine: persist reward pool: %w", err)
	}
	if err := e.store.SaveSalePool(e.SalePool.Snapshot()); err != nil {
		return fmt.Errorf("engine: persist sale pool: %w", err)
	}
	return nil
}

// restore loads the last persisted snapshots, tolerating a fresh store.
func (e *Engine) restore() error {
	rp, err := e.store.LoadRewardPool()
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return fmt.Errorf("engine: load reward pool: %w", err)
	default:
		if err := e.RewardPool.Restore(rp); err != nil {
			return err
		}
		e.log.Info("Reward pool state restored",
			zap.Uint64("marker", rp.LastUpdateMarker),
			zap.Int("holders", len(rp.Holders)))
	}

	sp, err := e.store.LoadSalePool()
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return fmt.Errorf("engine: load sale pool: %w", err)
	default:
		if err := e.SalePool.Restore(sp); err != nil {
			return err
		}
		e.log.Info("Sale pool state restored",
			zap.Int("investors", len(sp.Investors)))
	}
	return nil
}

func saleParams(cfg *config.Config) (salepool.Params, error) {
	min, err := config.ParseAmount(cfg.MinInvestment)
	if err != nil {
		return salepool.Params{}, fmt.Errorf("engine: min investment: %w", err)
	}
	max, err := config.ParseAmount(cfg.MaxInvestment)
	if err != nil {
		return salepool.Params{}, fmt.Errorf("engine: max investment: %w", err)
	}
	return salepool.Params{
		MinInvestment:   min,
		MaxInvestment:   max,
		ClaimDelay:      cfg.ClaimDelay(),
		RefundPeriod:    cfg.RefundPeriod(),
		WithdrawalDelay: cfg.WithdrawalDelay(),
		ReleaseDelay:    cfg.ReleaseDelay(),
		OracleAsset:     cfg.OracleAsset,
	}, nil
}

func priceBounds(cfg *config.Config) (min, max *uint256.Int, err error) {
	if cfg.MinTokenPrice != "" {
		min, err = config.ParseAmount(cfg.MinTokenPrice)
		if err != nil {
			return nil, nil, fmt.Errorf("engine: min token price: %w", err)
		}
	}
	if cfg.MaxTokenPrice != "" {
		max, err = config.ParseAmount(cfg.MaxTokenPrice)
		if err != nil {
			return nil, nil, fmt.Errorf("engine: max token price: %w", err)
		}
	}
	return min, max, nil
}
