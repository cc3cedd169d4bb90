package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/validation"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/visits"
)

// slotLayout is how visit times are typed, in local time
const slotLayout = "2006-01-02 15:04"

func (a *App) visitBoard() *visits.Board {
	return visits.NewBoard(a.store.Client(), visits.Config{Logger: a.logger, Notifier: a.toasts})
}

func (a *App) visitsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "visits",
		Short: "Request and track house visits",
	}
	cmd.AddCommand(a.visitsListCmd(), a.visitsRequestCmd(), a.visitsCancelCmd())
	return cmd
}

func (a *App) visitsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List your visit requests",
		PreRunE: a.require(tenantOnly),
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			list, err := a.visitBoard().Mine(ctx)
			if err != nil {
				return err
			}
			a.printVisits(list)
			return nil
		}),
	}
}

func (a *App) visitsRequestCmd() *cobra.Command {
	var houseID, start, note string
	var length time.Duration

	cmd := &cobra.Command{
		Use:     "request",
		Short:   "Ask the landlord for a visit slot",
		PreRunE: a.require(tenantOnly),
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			from, err := time.ParseInLocation(slotLayout, start, time.Local)
			if err != nil {
				return validation.Errors{"start": "Use the format " + slotLayout}
			}

			v, err := a.visitBoard().Request(ctx, houseID, from, from.Add(length), note)
			if err != nil {
				return err
			}
			a.printf("Visit request %s is %s.\n", v.ID, v.Status)
			return nil
		}),
	}
	cmd.Flags().StringVar(&houseID, "house", "", "house id")
	cmd.Flags().StringVar(&start, "start", "", "slot start as \""+slotLayout+"\"")
	cmd.Flags().DurationVar(&length, "length", time.Hour, "slot length")
	cmd.Flags().StringVar(&note, "note", "", "message for the landlord")
	_ = cmd.MarkFlagRequired("house")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func (a *App) visitsCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "cancel [visitId]",
		Short:   "Withdraw a pending visit request",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.require(tenantOnly),
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			board := a.visitBoard()
			// the board only acts on requests it has seen
			if _, err := board.Mine(ctx); err != nil {
				return err
			}
			if _, err := board.Cancel(ctx, args[0]); err != nil {
				return err
			}
			return nil
		}),
	}
}

func (a *App) printVisits(list []models.VisitRequest) {
	if len(list) == 0 {
		a.printf("No visit requests.\n")
		return
	}
	a.printf("%-26s  %-28s  %-16s  %-16s  %-10s\n", "ID", "House", "From", "Until", "Status")
	for _, v := range list {
		house := v.HouseID
		if v.House != nil && v.House.Title != "" {
			house = v.House.Title
		}
		start, end := v.RequestedStart, v.RequestedEnd
		if v.FinalSlot != nil {
			start, end = v.FinalSlot.Start, v.FinalSlot.End
		}
		a.printf("%-26s  %-28s  %-16s  %-16s  %-10s\n", v.ID, truncate(house, 28),
			start.Local().Format(slotLayout), end.Local().Format(slotLayout), v.Status)
		if v.LandlordNote != "" {
			a.printf("%-26s  note: %s\n", "", v.LandlordNote)
		}
	}
}
