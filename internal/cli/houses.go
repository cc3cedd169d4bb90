package cli

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/listings"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/validation"
)

func (a *App) listings() *listings.Service {
	return listings.NewService(a.store.Client(), listings.Config{
		Logger:    a.logger,
		Notifier:  a.toasts,
		Validator: a.validator,
	})
}

func (a *App) housesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "houses",
		Short: "Browse listings",
	}
	cmd.AddCommand(a.housesListCmd(), a.housesShowCmd())
	return cmd
}

func (a *App) housesListCmd() *cobra.Command {
	var filter models.HouseFilter
	var minRent, maxRent string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List approved houses",
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			verrs := validation.Errors{}
			filter.MinRent = parseAmount(verrs, "min-rent", minRent)
			filter.MaxRent = parseAmount(verrs, "max-rent", maxRent)
			if filter.Beds < 0 {
				verrs.Add("beds", "Enter a valid number of bedrooms")
			}
			if err := verrs.Err(); err != nil {
				return err
			}

			houses, err := a.listings().Browse(ctx, filter)
			if err != nil {
				return err
			}
			a.printHouses(houses)
			return nil
		}),
	}
	cmd.Flags().StringVar(&filter.City, "city", "", "city")
	cmd.Flags().StringVar(&filter.Type, "type", "", "house type")
	cmd.Flags().StringVar(&filter.Furnished, "furnished", "", "furnished, semi-furnished or unfurnished")
	cmd.Flags().StringVar(&minRent, "min-rent", "", "minimum monthly rent")
	cmd.Flags().StringVar(&maxRent, "max-rent", "", "maximum monthly rent")
	cmd.Flags().IntVar(&filter.Beds, "beds", 0, "bedrooms")
	cmd.Flags().StringVarP(&filter.Search, "query", "q", "", "free-text search")
	return cmd
}

func (a *App) housesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [houseId]",
		Short: "Show one listing",
		Args:  cobra.ExactArgs(1),
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			h, err := a.listings().Get(ctx, args[0])
			if err != nil {
				return err
			}

			a.printf("%s\n", h.Title)
			a.printf("%s, %s, %s %s\n", h.Address, h.City, h.State, h.Pincode)
			a.printf("Rent:     ₹%s / month\n", h.Rent.StringFixed(2))
			a.printf("Deposit:  ₹%s\n", h.Deposit.StringFixed(2))
			a.printf("Booking:  ₹%s\n", h.BookingAmount.StringFixed(2))
			a.printf("Layout:   %d bed, %d bath, %d sq ft, %s, %s\n", h.Beds, h.Baths, h.Area, h.Type, h.Furnished)
			if h.Landlord != nil {
				a.printf("Landlord: %s\n", h.Landlord.Name)
			}
			if h.Description != "" {
				a.printf("\n%s\n", h.Description)
			}
			if h.Bookable() {
				a.printf("\nBook it: homerent book %s\n", h.ID)
			}
			return nil
		}),
	}
}

func (a *App) printHouses(houses []models.House) {
	if len(houses) == 0 {
		a.printf("No houses found.\n")
		return
	}
	a.printf("%-26s  %-32s  %-14s  %12s  %4s  %-10s\n", "ID", "Title", "City", "Rent", "Beds", "Status")
	for _, h := range houses {
		a.printf("%-26s  %-32s  %-14s  %12s  %4d  %-10s\n", h.ID, truncate(h.Title, 32), truncate(h.City, 14), h.Rent.StringFixed(2), h.Beds, h.Status)
	}
}

func parseAmount(verrs validation.Errors, field, raw string) *decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		verrs.Add(field, "Enter a valid amount")
		return nil
	}
	return &d
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
