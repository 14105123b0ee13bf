package main

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dwikikusuma/collegemart/internal/badge"
	"github.com/dwikikusuma/collegemart/pkg/shutdown"
)

func (c *cli) badgeCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "badge",
		Short: "Print the cart badge count",
		Long: `Print the number of units in the cart.

With --watch the count is printed again whenever another mart process
changes the cart, until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if watch {
				return c.watchBadge(cmd.Context())
			}
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			fmt.Fprintln(c.out, a.cart.Count(cmd.Context()))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep printing the count as other processes change the cart")
	return cmd
}

func (c *cli) watchBadge(parent context.Context) error {
	ctx, cancel := shutdown.WithSignals(parent, c.log)
	defer cancel()

	a, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	if a.feed == nil {
		return errors.Errorf("storage driver %q cannot watch other processes", c.cfg.StorageDriver)
	}

	p := badge.New(a.cart, a.feed, c.cfg.CartKey, c.log)
	updates, unsubscribe := p.Subscribe()
	defer unsubscribe()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.Run(gctx) })
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case n := <-updates:
				fmt.Fprintln(c.out, n)
			}
		}
	})
	return g.Wait()
}
