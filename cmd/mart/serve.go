package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dwikikusuma/collegemart/internal/badge"
	"github.com/dwikikusuma/collegemart/internal/web"
	"github.com/dwikikusuma/collegemart/pkg/shutdown"
)

func (c *cli) serveCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the marketplace web UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port == 0 {
				port = c.cfg.HTTPPort
			}
			return c.serve(cmd.Context(), fmt.Sprintf(":%d", port))
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default from HTTP_PORT)")
	return cmd
}

func (c *cli) serve(parent context.Context, addr string) error {
	ctx, cancel := shutdown.WithSignals(parent, c.log)
	defer cancel()

	a, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	projection := badge.New(a.cart, a.feed, c.cfg.CartKey, c.log)
	srv := web.NewServer(web.Deps{
		Cart:        a.cart,
		Badge:       projection,
		Bridge:      a.bridge,
		Catalog:     a.catalog,
		Checkout:    a.checkout,
		Identity:    a.auth,
		Shipping:    c.cfg.ShippingFee,
		Placeholder: c.cfg.PlaceholderImage,
		Money:       a.money,
		Logger:      c.log,
	})

	g, gctx := errgroup.WithContext(ctx)
	server := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		// badge streams end when the server stops
		BaseContext: func(net.Listener) context.Context { return gctx },
	}

	g.Go(func() error {
		return projection.Run(gctx)
	})
	g.Go(func() error {
		c.log.Info("http server starting",
			slog.String("addr", addr),
			slog.String("storage", c.cfg.StorageDriver),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		c.log.Info("shutdown requested")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "http shutdown")
		}
		return nil
	})

	err = g.Wait()
	c.log.Info("bye")
	return err
}
