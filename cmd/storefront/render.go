package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"storefront/internal/client"
	"storefront/internal/pricing"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87")).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	strikeText = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("#888888"))
	offerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#E8590C")).
			Padding(0, 1)
)

func printOK(w io.Writer, msg string) {
	fmt.Fprintln(w, okStyle.Render(msg))
}

func priceLabel(p pricing.Product) string {
	if p.OnSale() {
		return pricing.Rupees(p.UnitPrice()) + " " + strikeText.Render(pricing.Rupees(p.Price))
	}
	return pricing.Rupees(p.UnitPrice())
}

func renderProducts(w io.Writer, products []pricing.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No products found."))
		return
	}
	for _, p := range products {
		line := fmt.Sprintf("%-20s %-32s %s", p.ID, p.Title, priceLabel(p))
		if note := p.StockNote(); note != "" {
			line += "  " + errStyle.Render(note)
		}
		fmt.Fprintln(w, line)
	}
}

func renderProduct(w io.Writer, p pricing.Product) {
	fmt.Fprintln(w, titleStyle.Render(p.Title))
	fmt.Fprintln(w, priceLabel(p))
	if note := p.StockNote(); note != "" {
		fmt.Fprintln(w, errStyle.Render(note))
	}
	if p.Description != "" {
		fmt.Fprintln(w, p.Description)
	}
	if p.Category != "" {
		fmt.Fprintln(w, mutedStyle.Render("Category: "+p.Category))
	}
}

func renderBanners(w io.Writer, banners []client.Banner) {
	if len(banners) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No active banners."))
		return
	}
	for _, b := range banners {
		fmt.Fprintf(w, "%s  %s\n", titleStyle.Render(b.Title), mutedStyle.Render(b.ImageURL))
	}
}

func renderOffer(w io.Writer, offer pricing.FlashOffer, now time.Time) {
	if !offer.Active(now) {
		fmt.Fprintln(w, mutedStyle.Render("No flash offer running."))
		return
	}
	title := offer.Title
	if title == "" {
		title = "Flash Offer"
	}
	fmt.Fprintf(w, "%s %s%% off, ends in %s\n",
		offerStyle.Render(title), offer.Rate.String(), offer.Countdown(now))
}

func renderCart(w io.Writer, cart pricing.Cart, s pricing.Summary) {
	fmt.Fprintln(w, titleStyle.Render("Your cart"))
	if cart.IsEmpty() {
		fmt.Fprintln(w, mutedStyle.Render("Your cart is empty."))
		return
	}
	for _, li := range cart.Items {
		title := li.ProductID
		if li.Product != nil {
			title = li.Product.Title
		}
		fmt.Fprintf(w, "  %-32s x%d  %s\n", title, li.Quantity, pricing.Rupees(li.Total()))
	}
	fmt.Fprintln(w, strings.Repeat("-", 48))
	fmt.Fprintf(w, "  %-36s %s\n", "Subtotal", pricing.Rupees(s.Subtotal))
	if s.Discount.Amount.IsPositive() {
		fmt.Fprintf(w, "  %-36s -%s\n", s.Discount.Label, pricing.Rupees(s.Discount.Amount))
	}
	shipping := pricing.Rupees(s.Shipping)
	if s.FreeShipping {
		shipping = "FREE"
	}
	fmt.Fprintf(w, "  %-36s %s\n", "Shipping", shipping)
	if note := s.ShippingNote(); note != "" {
		fmt.Fprintln(w, "  "+mutedStyle.Render(note))
	}
	fmt.Fprintf(w, "  %-36s %s\n", "Total", titleStyle.Render(pricing.Rupees(s.Total)))
}
