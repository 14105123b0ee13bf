package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/dwikikusuma/collegemart/internal/cartview"
	checkoutapp "github.com/dwikikusuma/collegemart/internal/checkout/app"
)

func (c *cli) cartCmd() *cobra.Command {
	show := func(cmd *cobra.Command, _ []string) error {
		return c.withView(cmd.Context(), func(ctx context.Context, v *cartview.View, m cartview.Model) (cartview.Model, error) {
			return m, nil
		})
	}

	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show or change the cart",
		Args:  cobra.NoArgs,
		RunE:  show,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the cart with its order summary",
			Args:  cobra.NoArgs,
			RunE:  show,
		},
		&cobra.Command{
			Use:   "add <product-id>",
			Short: "Add one unit of a catalog product",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.addToCart(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "set <product-id> <quantity>",
			Short: "Set the quantity of a line item",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				q, err := strconv.Atoi(args[1])
				if err != nil {
					return errors.Errorf("quantity must be a whole number, got %q", args[1])
				}
				return c.withView(cmd.Context(), func(ctx context.Context, v *cartview.View, _ cartview.Model) (cartview.Model, error) {
					return v.SetQuantity(ctx, args[0], q), nil
				})
			},
		},
		&cobra.Command{
			Use:   "inc <product-id>",
			Short: "Increase a line item by one",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withView(cmd.Context(), func(ctx context.Context, v *cartview.View, _ cartview.Model) (cartview.Model, error) {
					return v.Increment(ctx, args[0]), nil
				})
			},
		},
		&cobra.Command{
			Use:   "dec <product-id>",
			Short: "Decrease a line item by one, stopping at one",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withView(cmd.Context(), func(ctx context.Context, v *cartview.View, _ cartview.Model) (cartview.Model, error) {
					return v.Decrement(ctx, args[0]), nil
				})
			},
		},
		&cobra.Command{
			Use:   "remove <product-id>",
			Short: "Remove a line item",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withView(cmd.Context(), func(ctx context.Context, v *cartview.View, _ cartview.Model) (cartview.Model, error) {
					return v.Remove(ctx, args[0]), nil
				})
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Empty the cart",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.withView(cmd.Context(), func(ctx context.Context, v *cartview.View, _ cartview.Model) (cartview.Model, error) {
					return v.Clear(ctx), nil
				})
			},
		},
		&cobra.Command{
			Use:   "checkout",
			Short: "Check out the cart",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.withView(cmd.Context(), func(ctx context.Context, v *cartview.View, _ cartview.Model) (cartview.Model, error) {
					m, err := v.Checkout(ctx)
					switch {
					case errors.Is(err, checkoutapp.ErrCheckoutUnavailable), errors.Is(err, checkoutapp.ErrEmptyCart):
						// reported through the model
						return m, nil
					}
					return m, err
				})
			},
		},
	)
	return cmd
}

// withView mounts a cart view for this invocation, applies fn and prints
// the resulting cart.
func (c *cli) withView(ctx context.Context, fn func(context.Context, *cartview.View, cartview.Model) (cartview.Model, error)) error {
	a, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	v := cartview.New(a.cart, a.checkout, c.cfg.ShippingFee, c.log)
	m, err := fn(ctx, v, v.Mount(ctx))
	renderCart(c.out, m, a.money)
	return err
}

func (c *cli) addToCart(ctx context.Context, id string) error {
	a, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	fb := a.bridge.AddByID(ctx, id)
	if !fb.OK {
		return errors.New(fb.Message)
	}
	renderFlash(c.out, fb.Message, fb.Warning)
	fmt.Fprintf(c.out, "Cart: %d items\n", fb.Count)
	return nil
}
