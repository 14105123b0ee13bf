package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"golang.org/x/text/language"

	authapp "github.com/dwikikusuma/collegemart/internal/auth/app"
	authhttp "github.com/dwikikusuma/collegemart/internal/auth/infra/httpclient"
	"github.com/dwikikusuma/collegemart/internal/auth/infra/slotsession"
	"github.com/dwikikusuma/collegemart/internal/backend"
	"github.com/dwikikusuma/collegemart/internal/bridge"
	cartapp "github.com/dwikikusuma/collegemart/internal/cart/app"
	catalogapp "github.com/dwikikusuma/collegemart/internal/catalog/app"
	cataloghttp "github.com/dwikikusuma/collegemart/internal/catalog/infra/httpclient"
	checkoutapp "github.com/dwikikusuma/collegemart/internal/checkout/app"
	"github.com/dwikikusuma/collegemart/internal/checkout/infra/adapter"
	"github.com/dwikikusuma/collegemart/internal/storage"
	"github.com/dwikikusuma/collegemart/internal/storage/bolt"
	"github.com/dwikikusuma/collegemart/internal/storage/file"
	"github.com/dwikikusuma/collegemart/internal/storage/memory"
	"github.com/dwikikusuma/collegemart/internal/storage/sqlite"
	"github.com/dwikikusuma/collegemart/pkg/config"
	"github.com/dwikikusuma/collegemart/pkg/money"
)

// app is one storage context with every service wired on top of it.
type app struct {
	slots storage.Store
	// feed is nil for backends that cannot observe other processes.
	feed storage.ChangeFeed

	cart     *cartapp.Store
	auth     *authapp.Service
	catalog  *catalogapp.Service
	bridge   *bridge.Bridge
	checkout *checkoutapp.Service
	money    money.Formatter
}

func (c *cli) open(ctx context.Context) (*app, error) {
	slots, feed, err := openSlots(ctx, c.cfg, c.log)
	if err != nil {
		return nil, err
	}

	client := backend.New(c.cfg.BackendURL, c.cfg.BackendTimeout)
	auth := authapp.NewService(authhttp.NewAuthClient(client), slotsession.New(slots), c.log)
	catalog := catalogapp.NewService(cataloghttp.NewProductRepo(client, auth))
	cart := cartapp.NewStore(slots, c.cfg.CartKey, c.log)

	return &app{
		slots:    slots,
		feed:     feed,
		cart:     cart,
		auth:     auth,
		catalog:  catalog,
		bridge:   bridge.New(cart, catalog, c.cfg.PlaceholderImage, c.log),
		checkout: checkoutapp.NewService(adapter.NewCartStoreReader(cart), adapter.NewAuthIdentityReader(auth), c.cfg.ShippingFee, c.log),
		money:    money.NewFormatter(c.cfg.CurrencySymbol, language.English),
	}, nil
}

func (a *app) Close() error {
	return a.slots.Close()
}

// openSlots opens the configured backend under cfg.StorageDir.
func openSlots(ctx context.Context, cfg config.Config, log *slog.Logger) (storage.Store, storage.ChangeFeed, error) {
	switch cfg.StorageDriver {
	case "file":
		s, err := file.Open(cfg.StorageDir, log)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case "sqlite":
		if err := os.MkdirAll(cfg.StorageDir, 0o700); err != nil {
			return nil, nil, errors.Wrap(err, "create storage dir")
		}
		s, err := sqlite.Open(ctx, filepath.Join(cfg.StorageDir, "mart.db"), sqlite.Options{
			PollInterval: cfg.WatchInterval,
			Logger:       log,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case "bolt":
		if err := os.MkdirAll(cfg.StorageDir, 0o700); err != nil {
			return nil, nil, errors.Wrap(err, "create storage dir")
		}
		s, err := bolt.Open(filepath.Join(cfg.StorageDir, "mart.bolt"))
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	case "memory":
		h := memory.NewSpace().Handle()
		return h, h, nil
	}
	return nil, nil, errors.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
