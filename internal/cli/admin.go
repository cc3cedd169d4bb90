package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/admin"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/booking"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
)

func (a *App) adminDeps() admin.Deps {
	return admin.Deps{Client: a.store.Client(), Notifier: a.toasts, Logger: a.logger}
}

func (a *App) adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Moderate users, listings, payments and support",
	}

	users := &cobra.Command{Use: "users", Short: "Manage accounts"}
	users.AddCommand(a.adminUsersListCmd(), a.adminUserActionCmd("verify"), a.adminUserActionCmd("unverify"), a.adminUserActionCmd("delete"))

	houses := &cobra.Command{Use: "houses", Short: "Moderate listings"}
	houses.AddCommand(a.adminHousesListCmd(), a.adminHouseApproveCmd(), a.adminHouseRejectCmd())

	payments := &cobra.Command{Use: "payments", Short: "Review booking payments and payouts"}
	payments.AddCommand(a.adminPaymentsListCmd(), a.adminPaymentDecideCmd(true), a.adminPaymentDecideCmd(false),
		a.adminPayoutLinkCmd(), a.adminTransferredCmd())

	tickets := &cobra.Command{Use: "tickets", Short: "Answer support tickets"}
	tickets.AddCommand(a.adminTicketsListCmd(), a.adminTicketReplyCmd(), a.adminTicketStatusCmd())

	cmd.AddCommand(a.adminOverviewCmd(), users, houses, payments, tickets)
	return cmd
}

func (a *App) adminOverviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "overview",
		Short:   "Landlord and tenant counts",
		PreRunE: a.require(adminOnly),
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			o, err := admin.LoadOverview(ctx, a.adminDeps())
			if err != nil {
				return err
			}
			a.printf("Landlords:             %d\n", len(o.Landlords))
			a.printf("Tenants:               %d\n", len(o.Tenants))
			a.printf("Awaiting verification: %d\n", o.AwaitingVerification)
			a.printf("With payout account:   %d\n", o.WithPayoutAccount)
			return nil
		}),
	}
}

func (a *App) adminUsersListCmd() *cobra.Command {
	var role, verified, search string

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List users",
		PreRunE: a.require(adminOnly),
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			view := admin.NewUsersView(a.adminDeps())
			if err := view.Load(ctx); err != nil {
				return err
			}

			filter := admin.UserFilter{Role: models.Role(role), Search: search}
			if verified != "" {
				v, err := strconv.ParseBool(verified)
				if err != nil {
					return err
				}
				filter.Verified = &v
			}

			a.printf("%-26s  %-24s  %-30s  %-8s  %-8s\n", "ID", "Name", "Email", "Role", "Verified")
			for _, u := range view.Visible(filter) {
				status := "-"
				if u.Role == models.RoleLandlord {
					status = strconv.FormatBool(u.Verified())
				}
				a.printf("%-26s  %-24s  %-30s  %-8s  %-8s\n", u.ID, truncate(u.Name, 24), truncate(u.Email, 30), u.Role, status)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&role, "role", "", "tenant, landlord or admin")
	cmd.Flags().StringVar(&verified, "verified", "", "true or false")
	cmd.Flags().StringVarP(&search, "query", "q", "", "name or email")
	return cmd
}

func (a *App) adminUserActionCmd(action string) *cobra.Command {
	return &cobra.Command{
		Use:     action + " [userId]",
		Short:   "Run " + action + " on a user",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.require(adminOnly),
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			view := admin.NewUsersView(a.adminDeps())
			switch action {
			case "verify":
				return view.Verify(ctx, args[0])
			case "unverify":
				return view.Unverify(ctx, args[0])
			default:
				return view.Delete(ctx, args[0])
			}
		}),
	}
}

func (a *App) adminHousesListCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List listings",
		PreRunE: a.require(adminOnly),
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			view := admin.NewHousesView(a.adminDeps())
			if err := view.Load(ctx); err != nil {
				return err
			}
			a.printHouses(view.Visible(models.HouseStatus(status)))
			return nil
		}),
	}
	cmd.Flags().StringVar(&status, "status", "", "pending, approved or rejected")
	return cmd
}

func (a *App) adminHouseApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "approve [houseId]",
		Short:   "Publish a listing",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.require(adminOnly),
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return admin.NewHousesView(a.adminDeps()).Approve(ctx, args[0])
		}),
	}
}

func (a *App) adminHouseRejectCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:     "reject [houseId]",
		Short:   "Reject a listing",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.require(adminOnly),
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return admin.NewHousesView(a.adminDeps()).Reject(ctx, args[0], reason)
		}),
	}
	cmd.Flags().StringVar(&reason, "reason", "", "reason shown to the landlord")
	return cmd
}

func (a *App) adminPaymentsListCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List booking payments",
		PreRunE: a.require(adminOnly),
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			view := admin.NewPaymentsView(a.adminDeps())
			if err := view.Load(ctx); err != nil {
				return err
			}

			list := view.Visible(models.BookingStatus(status))
			if len(list) == 0 {
				a.printf("No payments.\n")
				return nil
			}
			a.printf("%-26s  %-24s  %12s  %-12s  %-22s\n", "ID", "Tenant", "Amount", "Status", "UTR")
			for _, b := range list {
				tenant := b.TenantID
				if b.Tenant != nil {
					tenant = b.Tenant.Name
				}
				a.printf("%-26s  %-24s  %12s  %-12s  %-22s\n", b.ID, truncate(tenant, 24), b.Amount.StringFixed(2), b.Status, b.UTR)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by booking status")
	return cmd
}

func (a *App) adminPaymentDecideCmd(approve bool) *cobra.Command {
	var reason string

	use, short := "reject [bookingId]", "Reject a booking payment"
	if approve {
		use, short = "approve [bookingId]", "Approve a booking payment"
	}

	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		Args:    cobra.ExactArgs(1),
		PreRunE: a.require(adminOnly),
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			view := admin.NewPaymentsView(a.adminDeps())
			if approve {
				return view.Approve(ctx, args[0])
			}
			return view.Reject(ctx, args[0], reason)
		}),
	}
	if !approve {
		cmd.Flags().StringVar(&reason, "reason", "", "note kept on the booking")
	}
	return cmd
}

func (a *App) adminPayoutLinkCmd() *cobra.Command {
	var noQR bool

	cmd := &cobra.Command{
		Use:     "payout [bookingId]",
		Short:   "Show the UPI link that pays the landlord an approved booking",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.require(adminOnly),
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			view := admin.NewPaymentsView(a.adminDeps())
			if err := view.Load(ctx); err != nil {
				return err
			}

			link, err := view.PayViaUPI(args[0])
			if err != nil {
				return err
			}
			a.printf("%s\n", link)
			if !noQR {
				qr, err := booking.TextQR(link)
				if err != nil {
					return err
				}
				a.printf("%s\n", qr)
			}
			a.printf("After paying: homerent admin payments transferred %s --utr <reference>\n", args[0])
			return nil
		}),
	}
	cmd.Flags().BoolVar(&noQR, "no-qr", false, "do not draw the QR code")
	return cmd
}

func (a *App) adminTransferredCmd() *cobra.Command {
	var utr string

	cmd := &cobra.Command{
		Use:     "transferred [bookingId]",
		Short:   "Record the payout's bank reference",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.require(adminOnly),
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return admin.NewPaymentsView(a.adminDeps()).MarkTransferred(ctx, args[0], utr)
		}),
	}
	cmd.Flags().StringVar(&utr, "utr", "", "bank reference of the payout")
	_ = cmd.MarkFlagRequired("utr")
	return cmd
}

func (a *App) adminTicketsListCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List support tickets",
		PreRunE: a.require(adminOnly),
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			view := admin.NewSupportView(a.adminDeps())
			if err := view.Load(ctx); err != nil {
				return err
			}
			a.printf("%-26s  %-24s  %-36s  %-14s\n", "ID", "User", "Subject", "Status")
			for _, t := range view.Visible(models.TicketStatus(status)) {
				user := t.UserID
				if t.User != nil {
					user = t.User.Name
				}
				a.printf("%-26s  %-24s  %-36s  %-14s\n", t.ID, truncate(user, 24), truncate(t.Subject, 36), t.Status)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by ticket status")
	return cmd
}

func (a *App) adminTicketReplyCmd() *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:     "reply [ticketId]",
		Short:   "Reply on a ticket",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.require(adminOnly),
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return admin.NewSupportView(a.adminDeps()).Reply(ctx, args[0], text)
		}),
	}
	cmd.Flags().StringVar(&text, "text", "", "reply text")
	return cmd
}

func (a *App) adminTicketStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "status [ticketId] [status]",
		Short:   "Move a ticket to open, in_progress, waiting_user, resolved or closed",
		Args:    cobra.ExactArgs(2),
		PreRunE: a.require(adminOnly),
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return admin.NewSupportView(a.adminDeps()).SetStatus(ctx, args[0], models.TicketStatus(args[1]))
		}),
	}
}
