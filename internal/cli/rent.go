package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/api"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/booking"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/rent"
	pkgvalidator "github.com/Kiran6976/Houserent-Frontend-sub000/pkg/validator"
)

func (a *App) rentFlow() *rent.Flow {
	return rent.NewFlow(a.store.Client(), rent.Config{Logger: a.logger, Notifier: a.toasts})
}

func (a *App) rentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rent",
		Short: "Pay monthly rent and see past payments",
	}
	cmd.AddCommand(a.rentHistoryCmd(), a.rentPayCmd())
	return cmd
}

func (a *App) rentHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "history",
		Short:   "Show your rent payments by month",
		PreRunE: a.require(tenantOnly),
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			flow := a.rentFlow()
			defer flow.Close()

			groups, err := flow.RefreshHistory(ctx)
			if err != nil {
				return err
			}
			a.printRentGroups(groups)
			return nil
		}),
	}
}

func (a *App) rentPayCmd() *cobra.Command {
	var houseID, period, utr, proof string
	var noQR bool

	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Start a month's rent payment, then submit its UTR",
		Long: "Starts the rent payment for a house and month and shows the UPI link.\n" +
			"Run it again with --utr (and optionally --proof) once you have paid.",
		PreRunE: a.require(tenantOnly),
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			if period == "" {
				period = pkgvalidator.CurrentPeriod(time.Now())
			}

			flow := a.rentFlow()
			defer flow.Close()

			snap, err := flow.Initiate(ctx, houseID, period)
			if err != nil {
				return err
			}

			a.printf("Payment:  %s (%s)\n", snap.PaymentID, snap.Period)
			if snap.Amount.IsPositive() {
				a.printf("Amount:   ₹%s\n", snap.Amount.StringFixed(2))
			}
			if snap.Status != "" {
				a.printf("Status:   %s\n", rent.PillFor(snap.Status).Label)
			}

			if utr == "" {
				if snap.UPILink != "" {
					if snap.Payee != nil {
						a.printf("Pay to:   %s (%s)\n", snap.Payee.Name, snap.Payee.UPIID)
					}
					a.printf("UPI link: %s\n", snap.UPILink)
					if !noQR {
						qr, err := booking.TextQR(snap.UPILink)
						if err != nil {
							return err
						}
						a.printf("%s\n", qr)
					}
				}
				a.printf("After paying: homerent rent pay --house %s --period %s --utr <reference>\n", houseID, snap.Period)
				return nil
			}

			proofURL := ""
			if proof != "" {
				file, err := readUpload(proof)
				if err != nil {
					return err
				}
				if proofURL, err = flow.UploadProof(ctx, file); err != nil {
					return err
				}
			}

			snap, err = flow.SubmitProof(ctx, utr, proofURL)
			if err != nil {
				return err
			}
			a.printRentGroups(snap.History)
			return nil
		}),
	}
	cmd.Flags().StringVar(&houseID, "house", "", "house id")
	cmd.Flags().StringVar(&period, "period", "", "month as YYYY-MM (default: this month)")
	cmd.Flags().StringVar(&utr, "utr", "", "bank reference of the payment")
	cmd.Flags().StringVar(&proof, "proof", "", "path to a screenshot of the payment")
	cmd.Flags().BoolVar(&noQR, "no-qr", false, "do not draw the UPI QR code")
	_ = cmd.MarkFlagRequired("house")
	return cmd
}

func (a *App) printRentGroups(groups []rent.PeriodGroup) {
	if len(groups) == 0 {
		a.printf("No rent payments yet.\n")
		return
	}
	for _, g := range groups {
		a.printf("%s\n", g.Label)
		for _, p := range g.Payments {
			house := p.HouseTitle
			if house == "" {
				house = p.HouseID
			}
			a.printf("  %-26s  %-28s  %12s  %-16s  %s\n", p.ID, truncate(house, 28), p.Amount.StringFixed(2), p.Pill.Label, p.UTR)
			if p.RejectionNote != "" {
				a.printf("  %-26s  note: %s\n", "", p.RejectionNote)
			}
		}
	}
}

// readUpload loads a local file for one of the upload endpoints, sniffing
// its content type
func readUpload(path string) (api.UploadFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return api.UploadFile{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return api.UploadFile{
		Name:        filepath.Base(path),
		ContentType: mimetype.Detect(data).String(),
		Content:     bytes.NewReader(data),
	}, nil
}
