package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"storefront/internal/client"
	"storefront/internal/pricing"
	"storefront/internal/storefront"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage marketing content (admin accounts only)",
}

var adminSectionCmd = &cobra.Command{
	Use:   "section [name]",
	Short: "Show or switch the remembered dashboard section",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		if len(args) == 1 {
			if err := app.dashboard.Select(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("%w: choose one of %s", err, strings.Join(storefront.Sections(), ", "))
			}
		}
		active := app.dashboard.Active()
		for _, s := range storefront.Sections() {
			if s == active {
				fmt.Fprintln(w, titleStyle.Render("> "+s))
				continue
			}
			fmt.Fprintln(w, mutedStyle.Render("  "+s))
		}
		return nil
	},
}

var (
	couponType     string
	couponValue    string
	couponMinOrder string
	couponExpires  time.Duration
	couponInactive bool
)

var adminCouponsCmd = &cobra.Command{
	Use:   "coupons",
	Short: "List coupons",
	RunE: func(cmd *cobra.Command, args []string) error {
		coupons, err := app.client.Admin().Coupons(cmd.Context())
		if err != nil {
			return adminErr(err, "Failed to load coupons")
		}
		w := cmd.OutOrStdout()
		for _, c := range coupons {
			fmt.Fprintf(w, "%-4d %-14s %-8s %-8s min %s%s\n",
				c.ID, c.Code, c.DiscountType, c.Value.String(), pricing.Rupees(c.MinOrderValue), inactiveTag(c.Active))
		}
		return nil
	},
}

var adminCouponCreateCmd = &cobra.Command{
	Use:   "create <code>",
	Short: "Create a coupon",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := decimal.NewFromString(couponValue)
		if err != nil {
			return fmt.Errorf("invalid --value %q", couponValue)
		}
		minOrder := decimal.Zero
		if couponMinOrder != "" {
			if minOrder, err = decimal.NewFromString(couponMinOrder); err != nil {
				return fmt.Errorf("invalid --min-order %q", couponMinOrder)
			}
		}
		in := client.Coupon{
			Code:          args[0],
			DiscountType:  client.DiscountType(couponType),
			Value:         value,
			MinOrderValue: minOrder,
			Active:        !couponInactive,
		}
		if couponExpires > 0 {
			at := time.Now().Add(couponExpires).UTC()
			in.ExpiresAt = &at
		}
		created, err := app.client.Admin().CreateCoupon(cmd.Context(), in)
		if err != nil {
			return adminErr(err, "Failed to create coupon")
		}
		printOK(cmd.OutOrStdout(), fmt.Sprintf("Coupon %s created (id %d)", created.Code, created.ID))
		return nil
	},
}

var adminCouponDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a coupon",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := app.client.Admin().DeleteCoupon(cmd.Context(), id); err != nil {
			return adminErr(err, "Failed to delete coupon")
		}
		printOK(cmd.OutOrStdout(), "Coupon deleted")
		return nil
	},
}

var (
	referralOwner string
	referralType  string
	referralValue string
)

var adminReferralsCmd = &cobra.Command{
	Use:   "referrals",
	Short: "List referral codes",
	RunE: func(cmd *cobra.Command, args []string) error {
		refs, err := app.client.Admin().Referrals(cmd.Context())
		if err != nil {
			return adminErr(err, "Failed to load referrals")
		}
		w := cmd.OutOrStdout()
		for _, r := range refs {
			fmt.Fprintf(w, "%-4d %-14s %-16s %-8s %s%s\n",
				r.ID, r.Code, r.ReferrerName, r.DiscountType, r.Value.String(), inactiveTag(r.Active))
		}
		return nil
	},
}

var adminReferralCreateCmd = &cobra.Command{
	Use:   "create <code>",
	Short: "Create a referral code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := decimal.NewFromString(referralValue)
		if err != nil {
			return fmt.Errorf("invalid --value %q", referralValue)
		}
		created, err := app.client.Admin().CreateReferral(cmd.Context(), client.Referral{
			Code:         args[0],
			ReferrerName: referralOwner,
			DiscountType: client.DiscountType(referralType),
			Value:        value,
			Active:       true,
		})
		if err != nil {
			return adminErr(err, "Failed to create referral")
		}
		printOK(cmd.OutOrStdout(), fmt.Sprintf("Referral %s created (id %d)", created.Code, created.ID))
		return nil
	},
}

var adminReferralDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a referral code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := app.client.Admin().DeleteReferral(cmd.Context(), id); err != nil {
			return adminErr(err, "Failed to delete referral")
		}
		printOK(cmd.OutOrStdout(), "Referral deleted")
		return nil
	},
}

var (
	offerTitle    string
	offerRate     string
	offerDuration time.Duration
)

var adminOffersCmd = &cobra.Command{
	Use:   "offers",
	Short: "List flash offers",
	RunE: func(cmd *cobra.Command, args []string) error {
		offers, err := app.client.Admin().Offers(cmd.Context())
		if err != nil {
			return adminErr(err, "Failed to load offers")
		}
		w := cmd.OutOrStdout()
		now := time.Now()
		for _, o := range offers {
			state := mutedStyle.Render("ended")
			if o.Active(now) {
				state = okStyle.Render("live " + o.Countdown(now))
			}
			fmt.Fprintf(w, "%-4s %-24s %5s%%  %s\n", o.ID, o.Title, o.Rate.String(), state)
		}
		return nil
	},
}

var adminOfferStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a flash offer now",
	RunE: func(cmd *cobra.Command, args []string) error {
		rate, err := decimal.NewFromString(offerRate)
		if err != nil {
			return fmt.Errorf("invalid --rate %q", offerRate)
		}
		now := time.Now().UTC()
		created, err := app.client.Admin().CreateOffer(cmd.Context(), pricing.FlashOffer{
			Title:    offerTitle,
			Rate:     rate,
			StartsAt: now,
			EndsAt:   now.Add(offerDuration),
		})
		if err != nil {
			return adminErr(err, "Failed to start offer")
		}
		if created == nil {
			printOK(cmd.OutOrStdout(), "Offer started")
			return nil
		}
		printOK(cmd.OutOrStdout(), fmt.Sprintf("Offer %s is live for %s", created.ID, offerDuration))
		return nil
	},
}

var adminOfferEndCmd = &cobra.Command{
	Use:   "end <id>",
	Short: "End a flash offer early",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.client.Admin().EndOffer(cmd.Context(), args[0]); err != nil {
			return adminErr(err, "Failed to end offer")
		}
		printOK(cmd.OutOrStdout(), "Offer ended")
		return nil
	},
}

var (
	bannerImage    string
	bannerLink     string
	bannerPosition int
)

var adminBannersCmd = &cobra.Command{
	Use:   "banners",
	Short: "List banners",
	RunE: func(cmd *cobra.Command, args []string) error {
		banners, err := app.client.Admin().Banners(cmd.Context())
		if err != nil {
			return adminErr(err, "Failed to load banners")
		}
		w := cmd.OutOrStdout()
		for _, b := range banners {
			fmt.Fprintf(w, "%-4d %-24s %-3d %s%s\n", b.ID, b.Title, b.Position, b.ImageURL, inactiveTag(b.Active))
		}
		return nil
	},
}

var adminBannerCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a banner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		created, err := app.client.Admin().CreateBanner(cmd.Context(), client.Banner{
			Title:    args[0],
			ImageURL: bannerImage,
			Link:     bannerLink,
			Position: bannerPosition,
			Active:   true,
		})
		if err != nil {
			return adminErr(err, "Failed to create banner")
		}
		printOK(cmd.OutOrStdout(), fmt.Sprintf("Banner created (id %d)", created.ID))
		return nil
	},
}

var adminBannerDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a banner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := app.client.Admin().DeleteBanner(cmd.Context(), id); err != nil {
			return adminErr(err, "Failed to delete banner")
		}
		printOK(cmd.OutOrStdout(), "Banner deleted")
		return nil
	},
}

func adminErr(err error, fallback string) error {
	if errors.Is(err, client.ErrNotAdmin) {
		return errors.New("this command needs an admin account")
	}
	return errors.New(client.Message(err, fallback))
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func inactiveTag(active bool) string {
	if active {
		return ""
	}
	return "  " + mutedStyle.Render("(inactive)")
}

func init() {
	cf := adminCouponCreateCmd.Flags()
	cf.StringVar(&couponType, "type", string(client.DiscountFlat), "flat or percent")
	cf.StringVar(&couponValue, "value", "", "Discount value (required)")
	cf.StringVar(&couponMinOrder, "min-order", "", "Minimum subtotal")
	cf.DurationVar(&couponExpires, "expires-in", 0, "Expiry from now, e.g. 720h")
	cf.BoolVar(&couponInactive, "inactive", false, "Create the coupon switched off")
	_ = adminCouponCreateCmd.MarkFlagRequired("value")
	adminCouponsCmd.AddCommand(adminCouponCreateCmd, adminCouponDeleteCmd)

	rf := adminReferralCreateCmd.Flags()
	rf.StringVar(&referralOwner, "referrer", "", "Name of the referrer")
	rf.StringVar(&referralType, "type", string(client.DiscountFlat), "flat or percent")
	rf.StringVar(&referralValue, "value", "", "Discount value (required)")
	_ = adminReferralCreateCmd.MarkFlagRequired("value")
	adminReferralsCmd.AddCommand(adminReferralCreateCmd, adminReferralDeleteCmd)

	of := adminOfferStartCmd.Flags()
	of.StringVar(&offerTitle, "title", "", "Offer title (required)")
	of.StringVar(&offerRate, "rate", "", "Percent off, e.g. 20 (required)")
	of.DurationVar(&offerDuration, "for", 30*time.Minute, "How long the offer runs")
	_ = adminOfferStartCmd.MarkFlagRequired("title")
	_ = adminOfferStartCmd.MarkFlagRequired("rate")
	adminOffersCmd.AddCommand(adminOfferStartCmd, adminOfferEndCmd)

	bf := adminBannerCreateCmd.Flags()
	bf.StringVar(&bannerImage, "image", "", "Image URL (required)")
	bf.StringVar(&bannerLink, "link", "", "Click-through link")
	bf.IntVar(&bannerPosition, "position", 0, "Sort position")
	_ = adminBannerCreateCmd.MarkFlagRequired("image")
	adminBannersCmd.AddCommand(adminBannerCreateCmd, adminBannerDeleteCmd)

	adminCmd.AddCommand(adminSectionCmd, adminCouponsCmd, adminReferralsCmd, adminOffersCmd, adminBannersCmd)
}
