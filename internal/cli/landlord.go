package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/payout"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/rent"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/validation"
)

// ErrPayoutAccountExists is returned when the landlord already linked one
var ErrPayoutAccountExists = errors.New("a payout account is already linked")

func (a *App) landlordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "landlord",
		Short: "Manage listings, rent and visits as a verified landlord",
	}

	rentCmd := &cobra.Command{
		Use:   "rent",
		Short: "Review tenants' rent payments",
	}
	rentCmd.AddCommand(a.landlordFoldersCmd(), a.landlordTenantCmd(), a.landlordDecideCmd(true), a.landlordDecideCmd(false))

	visitsCmd := &cobra.Command{
		Use:   "visits",
		Short: "Answer visit requests on your houses",
	}
	visitsCmd.AddCommand(a.landlordVisitsListCmd(), a.landlordVisitAcceptCmd(), a.landlordVisitRejectCmd())

	cmd.AddCommand(a.landlordHousesCmd(), rentCmd, visitsCmd, a.landlordPayoutCmd())
	return cmd
}

func (a *App) landlordHousesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "houses",
		Short:   "List your houses",
		PreRunE: a.require(verifiedLandlord),
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			houses, err := a.listings().Mine(ctx)
			if err != nil {
				return err
			}
			a.printHouses(houses)
			return nil
		}),
	}
}

func (a *App) approvals() *rent.Approvals {
	return rent.NewApprovals(a.store.Client(), rent.Config{Logger: a.logger, Notifier: a.toasts})
}

func (a *App) landlordFoldersCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "tenants",
		Short:   "List tenants with rent payments",
		PreRunE: a.require(verifiedLandlord),
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			folders, err := a.approvals().LoadFolders(ctx)
			if err != nil {
				return err
			}
			if len(folders) == 0 {
				a.printf("No rent payments yet.\n")
				return nil
			}
			a.printf("%-26s  %-24s  %-28s  %7s  %5s\n", "Tenant", "Name", "House", "Pending", "Total")
			for _, f := range folders {
				a.printf("%-26s  %-24s  %-28s  %7d  %5d\n", f.TenantID, truncate(f.TenantName, 24), truncate(f.HouseTitle, 28), f.PendingCount, f.TotalCount)
			}
			return nil
		}),
	}
}

func (a *App) landlordTenantCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "history [tenantId]",
		Short:   "Show one tenant's rent payments",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.require(verifiedLandlord),
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			history, err := a.approvals().SelectFolder(ctx, args[0])
			if err != nil {
				return err
			}
			a.printRentGroups(rent.GroupByPeriod(history))
			return nil
		}),
	}
}

// landlordDecideCmd builds approve or reject. The tenant's history is loaded
// first so decided payments are refused locally.
func (a *App) landlordDecideCmd(approve bool) *cobra.Command {
	var tenantID, note string

	use, short := "reject [paymentId]", "Reject a submitted payment"
	if approve {
		use, short = "approve [paymentId]", "Approve a submitted payment"
	}

	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		Args:    cobra.ExactArgs(1),
		PreRunE: a.require(verifiedLandlord),
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			ap := a.approvals()
			if _, err := ap.LoadFolders(ctx); err != nil {
				return err
			}
			if _, err := ap.SelectFolder(ctx, tenantID); err != nil {
				return err
			}

			if approve {
				return ap.Approve(ctx, args[0])
			}
			return ap.Reject(ctx, args[0], note)
		}),
	}
	cmd.Flags().StringVar(&tenantID, "tenant", "", "tenant id the payment belongs to")
	_ = cmd.MarkFlagRequired("tenant")
	if !approve {
		cmd.Flags().StringVar(&note, "note", "", "reason shown to the tenant")
	}
	return cmd
}

func (a *App) landlordVisitsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List visit requests on your houses",
		PreRunE: a.require(verifiedLandlord),
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			list, err := a.visitBoard().ForLandlord(ctx)
			if err != nil {
				return err
			}
			a.printVisits(list)
			return nil
		}),
	}
}

func (a *App) landlordVisitAcceptCmd() *cobra.Command {
	var start, note string
	var length time.Duration

	cmd := &cobra.Command{
		Use:     "accept [visitId]",
		Short:   "Confirm a visit, optionally at another time",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.require(verifiedLandlord),
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			var slot *models.Slot
			if start != "" {
				from, err := time.ParseInLocation(slotLayout, start, time.Local)
				if err != nil {
					return validation.Errors{"start": "Use the format " + slotLayout}
				}
				slot = &models.Slot{Start: from, End: from.Add(length)}
			}

			board := a.visitBoard()
			if _, err := board.ForLandlord(ctx); err != nil {
				return err
			}
			_, err := board.Accept(ctx, args[0], slot, note)
			return err
		}),
	}
	cmd.Flags().StringVar(&start, "start", "", "propose another start as \""+slotLayout+"\"")
	cmd.Flags().DurationVar(&length, "length", time.Hour, "length of the proposed slot")
	cmd.Flags().StringVar(&note, "note", "", "message for the tenant")
	return cmd
}

func (a *App) landlordVisitRejectCmd() *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:     "reject [visitId]",
		Short:   "Decline a visit request",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.require(verifiedLandlord),
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			board := a.visitBoard()
			if _, err := board.ForLandlord(ctx); err != nil {
				return err
			}
			_, err := board.Reject(ctx, args[0], note)
			return err
		}),
	}
	cmd.Flags().StringVar(&note, "note", "", "message for the tenant")
	return cmd
}

func (a *App) landlordPayoutCmd() *cobra.Command {
	var in models.PayoutAccountInput

	cmd := &cobra.Command{
		Use:     "payout-account",
		Short:   "Link the bank account booking payouts are sent to",
		PreRunE: a.require(verifiedLandlord),
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			if a.user().HasPayoutAccount() {
				return ErrPayoutAccountExists
			}
			acct, err := payout.NewSetup(a.store, a.toasts, a.logger).CreateAccount(ctx, in)
			if err != nil {
				return err
			}
			a.printf("Payout account %s is %s.\n", acct.PayoutAccountID, acct.Status)
			return nil
		}),
	}
	cmd.Flags().StringVar(&in.AccountHolderName, "holder", "", "account holder name")
	cmd.Flags().StringVar(&in.AccountNumber, "account", "", "bank account number")
	cmd.Flags().StringVar(&in.IFSC, "ifsc", "", "branch IFSC code")
	cmd.Flags().StringVar(&in.UPIID, "upi", "", "UPI id (optional)")
	return cmd
}
