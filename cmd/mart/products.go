package main

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	catalogapp "github.com/dwikikusuma/collegemart/internal/catalog/app"
)

func (c *cli) productsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product"},
		Short:   "Browse and list marketplace products",
	}

	var (
		query  string
		limit  int
		cursor string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List products, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			products, next, err := a.catalog.ListProducts(cmd.Context(), query, limit, cursor)
			if err != nil {
				return err
			}
			renderProducts(c.out, products, next, a.money)
			return nil
		},
	}
	list.Flags().StringVarP(&query, "query", "q", "", "search text")
	list.Flags().IntVar(&limit, "limit", 0, "page size (default 20, max 100)")
	list.Flags().StringVar(&cursor, "cursor", "", "cursor from a previous page")

	show := &cobra.Command{
		Use:   "show <product-id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.catalog.GetProduct(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderProduct(c.out, p, a.money)
			return nil
		},
	}

	var (
		in     catalogapp.CreateProductInput
		price  string
		images []string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "List a product for sale (requires login)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := decimal.NewFromString(price)
			if err != nil {
				return errors.Errorf("price must be a number, got %q", price)
			}
			in.Price = p
			in.ImageURLs = images

			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if _, ok := a.auth.CurrentUser(cmd.Context()); !ok {
				return errors.New("please login first: mart login")
			}
			created, err := a.catalog.CreateProduct(cmd.Context(), in)
			if err != nil {
				return err
			}
			renderFlash(c.out, "Product listed", "")
			renderProduct(c.out, created, a.money)
			return nil
		},
	}
	f := create.Flags()
	f.StringVar(&in.Name, "name", "", "product name")
	f.StringVar(&price, "price", "", "price")
	f.StringVar(&in.Description, "description", "", "description")
	f.StringVar(&in.Currency, "currency", "INR", "currency code")
	f.StringVar(&in.Tag, "tag", "", "category tag")
	f.StringSliceVar(&images, "image", nil, "image URL (repeatable)")
	_ = create.MarkFlagRequired("name")
	_ = create.MarkFlagRequired("price")

	cmd.AddCommand(list, show, create)
	return cmd
}
