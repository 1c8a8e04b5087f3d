package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"storefront/internal/client"
	"storefront/internal/pricing"
)

var productCategory, productSearch string

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List products",
	RunE: func(cmd *cobra.Command, args []string) error {
		products, err := app.client.Products(cmd.Context(), client.ProductQuery{
			Category: productCategory,
			Search:   productSearch,
		})
		if err != nil {
			return errors.New(client.Message(err, "Failed to load products"))
		}
		renderProducts(cmd.OutOrStdout(), products)
		return nil
	},
}

var productCmd = &cobra.Command{
	Use:   "product <id>",
	Short: "Show one product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := app.client.Product(cmd.Context(), args[0])
		if err != nil {
			return errors.New(client.Message(err, "Failed to load product"))
		}
		renderProduct(cmd.OutOrStdout(), *p)
		return nil
	},
}

var bannersCmd = &cobra.Command{
	Use:   "banners",
	Short: "List active banners",
	RunE: func(cmd *cobra.Command, args []string) error {
		banners, err := app.client.ActiveBanners(cmd.Context())
		if err != nil {
			return errors.New(client.Message(err, "Failed to load banners"))
		}
		renderBanners(cmd.OutOrStdout(), banners)
		return nil
	},
}

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show and change your cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showCart(cmd)
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id> [quantity]",
	Short: "Add a product",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		qty := 1
		if len(args) == 2 {
			qty = pricing.ParseQuantity(args[1])
		}
		msg, err := app.cart.Add(cmd.Context(), args[0], qty)
		if err != nil {
			return err
		}
		printOK(cmd.OutOrStdout(), msg)
		return showCart(cmd)
	},
}

var cartUpdateCmd = &cobra.Command{
	Use:   "update <product-id> <quantity>",
	Short: "Set a line's quantity (1 to 5)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.cart.Fetch(cmd.Context()); err != nil {
			return err
		}
		if err := app.cart.SetQuantityInput(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		return showCart(cmd)
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "Remove a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := app.cart.RemoveItem(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printOK(cmd.OutOrStdout(), msg)
		return showCart(cmd)
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := app.cart.Clear(cmd.Context())
		if err != nil {
			return err
		}
		printOK(cmd.OutOrStdout(), msg)
		return nil
	},
}

var couponCmd = &cobra.Command{
	Use:   "coupon",
	Short: "Apply or remove a coupon",
}

var couponApplyCmd = &cobra.Command{
	Use:   "apply <code>",
	Short: "Apply a coupon code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCart(cmd, func() (string, error) { return app.cart.ApplyCoupon(cmd.Context(), args[0]) })
	},
}

var couponRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove the applied coupon",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCart(cmd, func() (string, error) { return app.cart.RemoveCoupon(cmd.Context()) })
	},
}

var referralCmd = &cobra.Command{
	Use:   "referral",
	Short: "Apply or remove a referral code",
}

var referralApplyCmd = &cobra.Command{
	Use:   "apply <code>",
	Short: "Apply a referral code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCart(cmd, func() (string, error) { return app.cart.ApplyReferral(cmd.Context(), args[0]) })
	},
}

var referralRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove the applied referral",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCart(cmd, func() (string, error) { return app.cart.RemoveReferral(cmd.Context()) })
	},
}

var offerCmd = &cobra.Command{
	Use:   "offer",
	Short: "Show the running flash offer",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.cart.RefreshOffer(cmd.Context()); err != nil {
			return err
		}
		renderOffer(cmd.OutOrStdout(), app.cart.Offer(), time.Now())
		return nil
	},
}

var offerWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow flash offers live until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		w := cmd.OutOrStdout()

		errc := make(chan error, 1)
		go func() { errc <- app.cart.WatchOffer(ctx) }()

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		last := "-"
		for {
			select {
			case err := <-errc:
				return err
			case <-ticker.C:
				offer := app.cart.Offer()
				state := ""
				if offer.Active(time.Now()) {
					state = offer.ID
				}
				if state != last {
					renderOffer(w, offer, time.Now())
					last = state
				}
			}
		}
	},
}

// withCart runs a cart-changing action (which needs the current cart for
// local precedence checks) and prints the outcome.
func withCart(cmd *cobra.Command, action func() (string, error)) error {
	if err := app.cart.Fetch(cmd.Context()); err != nil {
		return err
	}
	if err := app.cart.RefreshOffer(cmd.Context()); err != nil {
		return err
	}
	msg, err := action()
	if err != nil {
		return err
	}
	printOK(cmd.OutOrStdout(), msg)
	return showCart(cmd)
}

func showCart(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if err := app.cart.Fetch(ctx); err != nil {
		return err
	}
	if err := app.cart.RefreshOffer(ctx); err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if offer := app.cart.Offer(); offer.Active(time.Now()) {
		renderOffer(w, offer, time.Now())
	}
	renderCart(w, app.cart.Cart(), app.cart.Summary())
	fmt.Fprintln(w)
	return nil
}

func init() {
	productsCmd.Flags().StringVar(&productCategory, "category", "", "Filter by category")
	productsCmd.Flags().StringVar(&productSearch, "search", "", "Search titles")

	cartCmd.AddCommand(cartAddCmd, cartUpdateCmd, cartRemoveCmd, cartClearCmd)
	couponCmd.AddCommand(couponApplyCmd, couponRemoveCmd)
	referralCmd.AddCommand(referralApplyCmd, referralRemoveCmd)
	offerCmd.AddCommand(offerWatchCmd)
}
