package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/booking"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
)

// ErrPaymentNotConfirmed is returned when a watched booking ends without the
// payment going through
var ErrPaymentNotConfirmed = errors.New("payment was not confirmed")

func (a *App) bookCmd() *cobra.Command {
	var (
		utr            string
		cancelExisting bool
		noWait         bool
		noQR           bool
		wait           time.Duration
	)

	cmd := &cobra.Command{
		Use:     "book [houseId]",
		Short:   "Pay the booking amount for a house and wait for confirmation",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.require(tenantOnly),
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			houseID := args[0]
			flow := booking.NewFlow(a.store.Client(), houseID, booking.Config{
				PollInterval: a.cfg.Booking.PollInterval,
				Logger:       a.logger,
				Notifier:     a.toasts,
				OnAuthFailure: func(err error) {
					a.store.HandleAuthFailure(context.Background(), err)
				},
			})
			defer flow.Close()

			snap, err := flow.Initiate(ctx)
			if err != nil {
				return err
			}

			if snap.Phase == booking.PhaseConflict {
				if !cancelExisting {
					a.printf("Existing booking: %s\n", snap.ConflictBookingID)
					a.printf("Cancel it with: homerent book %s --cancel-existing\n", houseID)
					return nil
				}
				return flow.Cancel(ctx, true)
			}

			a.printPaymentDetails(snap)
			if !noQR {
				qr, err := flow.QRText()
				if err != nil {
					return err
				}
				a.printf("%s\n", qr)
			}

			if utr != "" {
				if snap, err = flow.MarkAsPaid(ctx, utr); err != nil {
					return err
				}
				if snap.Phase == booking.PhaseSettled {
					return settledResult(snap)
				}
			}

			if noWait {
				a.printf("Booking %s is waiting for payment. Check it later with: homerent bookings\n", snap.BookingID)
				return nil
			}
			return a.waitForSettlement(ctx, flow, wait)
		}),
	}
	cmd.Flags().StringVar(&utr, "utr", "", "bank reference of a payment you already made")
	cmd.Flags().BoolVar(&cancelExisting, "cancel-existing", false, "cancel your active booking for this house instead")
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "return after creating the booking")
	cmd.Flags().BoolVar(&noQR, "no-qr", false, "do not draw the UPI QR code")
	cmd.Flags().DurationVar(&wait, "wait", 15*time.Minute, "how long to wait for the payment to settle")
	return cmd
}

func (a *App) printPaymentDetails(snap booking.Snapshot) {
	a.printf("Booking:  %s\n", snap.BookingID)
	a.printf("Amount:   ₹%s\n", snap.Amount.StringFixed(2))
	if snap.Payee != nil {
		a.printf("Pay to:   %s (%s)\n", snap.Payee.Name, snap.Payee.UPIID)
	}
	a.printf("UPI link: %s\n", snap.UPILink)
}

// waitForSettlement follows the flow's poller until the booking settles, the
// session is rejected, the wait runs out or the user interrupts
func (a *App) waitForSettlement(ctx context.Context, flow *booking.Flow, wait time.Duration) error {
	updates, stop := flow.Watch()
	defer stop()

	var timeout <-chan time.Time
	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		timeout = timer.C
	}

	a.printf("Waiting for payment confirmation (Ctrl+C to stop)...\n")
	lastStatus := models.BookingStatus("")
	for {
		select {
		case <-ctx.Done():
			a.toasts.Info("Stopped watching. The booking stays open on the server.")
			return nil
		case <-timeout:
			return fmt.Errorf("booking %s still %s after %s", flow.Snapshot().BookingID, flow.Snapshot().Status, wait)
		case snap, ok := <-updates:
			if !ok {
				return nil
			}
			if snap.Status != lastStatus {
				lastStatus = snap.Status
				a.printf("Status: %s\n", snap.Status)
			}
			switch {
			case snap.Phase == booking.PhaseSettled:
				return settledResult(snap)
			case snap.Phase == booking.PhasePaying && !snap.Polling:
				// the poller only stops early when the token was rejected
				return ErrSessionExpired
			}
		}
	}
}

func settledResult(snap booking.Snapshot) error {
	if snap.Status == models.BookingStatusTransferred {
		return nil
	}
	return fmt.Errorf("booking %s %s: %w", snap.BookingID, snap.Status, ErrPaymentNotConfirmed)
}

func (a *App) bookingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "bookings",
		Short:   "List your bookings",
		PreRunE: a.require(tenantOnly),
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			bookings, err := a.store.Client().MyBookings(ctx)
			if err != nil {
				return err
			}
			if len(bookings) == 0 {
				a.printf("No bookings yet.\n")
				return nil
			}

			a.printf("%-26s  %-32s  %12s  %-12s  %-22s\n", "ID", "House", "Amount", "Status", "UTR")
			for _, b := range bookings {
				house := b.HouseID
				if b.House != nil && b.House.Title != "" {
					house = b.House.Title
				}
				a.printf("%-26s  %-32s  %12s  %-12s  %-22s\n", b.ID, truncate(house, 32), b.Amount.StringFixed(2), b.Status, b.UTR)
			}
			return nil
		}),
	}
}
