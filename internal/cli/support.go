package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/support"
)

func (a *App) desk() *support.Desk {
	return support.NewDesk(a.store.Client(), support.Config{
		Logger:    a.logger,
		Notifier:  a.toasts,
		Validator: a.validator,
	})
}

func (a *App) supportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "support",
		Short: "Talk to the HomeRent team",
	}
	cmd.AddCommand(a.supportTicketsCmd(), a.supportShowCmd(), a.supportOpenCmd(), a.supportReplyCmd())
	return cmd
}

func (a *App) supportTicketsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "tickets",
		Short:   "List your tickets",
		PreRunE: a.require(anyUser),
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			view, err := a.desk().Load(ctx)
			if err != nil {
				return err
			}
			if len(view.Tickets) == 0 {
				a.printf("No tickets.\n")
				return nil
			}
			a.printf("%-26s  %-36s  %-10s  %-14s\n", "ID", "Subject", "Category", "Status")
			for _, t := range view.Tickets {
				a.printf("%-26s  %-36s  %-10s  %-14s\n", t.ID, truncate(t.Subject, 36), t.Category, t.Status)
			}
			return nil
		}),
	}
}

func (a *App) supportShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "show [ticketId]",
		Short:   "Show a ticket's conversation",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.require(anyUser),
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			view, err := a.desk().Select(ctx, args[0])
			if err != nil {
				return err
			}
			a.printThread(view.Selected)
			return nil
		}),
	}
}

func (a *App) supportOpenCmd() *cobra.Command {
	var in models.NewTicketInput
	var attach string

	cmd := &cobra.Command{
		Use:     "open",
		Short:   "Open a ticket (one active ticket at a time)",
		PreRunE: a.require(anyUser),
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			desk := a.desk()
			if _, err := desk.Load(ctx); err != nil {
				return err
			}

			if attach != "" {
				att, err := a.uploadAttachment(ctx, desk, attach)
				if err != nil {
					return err
				}
				in.Attachments = append(in.Attachments, att)
			}

			view, err := desk.Create(ctx, in)
			if errors.Is(err, support.ErrActiveTicketExists) {
				a.printThread(view.Selected)
				if view.Selected != nil {
					a.printf("\nReply with: homerent support reply %s --text \"...\"\n", view.Selected.ID)
				}
				return nil
			}
			if err != nil {
				return err
			}
			a.printThread(view.Selected)
			return nil
		}),
	}
	cmd.Flags().StringVar(&in.Subject, "subject", "", "short summary")
	cmd.Flags().StringVar(&in.Category, "category", "other", "booking, payment, listing, account or other")
	cmd.Flags().StringVarP(&in.Message, "message", "m", "", "first message")
	cmd.Flags().StringVar(&attach, "attach", "", "file to attach")
	return cmd
}

func (a *App) supportReplyCmd() *cobra.Command {
	var text, attach string

	cmd := &cobra.Command{
		Use:     "reply [ticketId]",
		Short:   "Add a message to a ticket",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.require(anyUser),
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			desk := a.desk()
			if _, err := desk.Select(ctx, args[0]); err != nil {
				return err
			}

			var attachments []models.Attachment
			if attach != "" {
				att, err := a.uploadAttachment(ctx, desk, attach)
				if err != nil {
					return err
				}
				attachments = append(attachments, att)
			}

			view, err := desk.Send(ctx, text, attachments)
			if err != nil {
				return err
			}
			a.printThread(view.Selected)
			return nil
		}),
	}
	cmd.Flags().StringVar(&text, "text", "", "message")
	cmd.Flags().StringVar(&attach, "attach", "", "file to attach")
	return cmd
}

func (a *App) uploadAttachment(ctx context.Context, desk *support.Desk, path string) (models.Attachment, error) {
	file, err := readUpload(path)
	if err != nil {
		return models.Attachment{}, err
	}
	return desk.UploadAttachment(ctx, file)
}

func (a *App) printThread(t *models.SupportTicket) {
	if t == nil {
		return
	}
	a.printf("%s [%s] %s\n", t.Subject, t.Category, t.Status)

	viewer := models.Role("")
	if u := a.user(); u != nil {
		viewer = u.Role
	}
	for _, m := range t.Messages {
		who := "Support"
		if support.Side(m.SenderRole, viewer) == "right" {
			who = "You"
		}
		a.printf("\n%s · %s\n", who, m.CreatedAt.Local().Format(time.RFC822))
		if m.Text != "" {
			a.printf("%s\n", m.Text)
		}
		for _, att := range m.Attachments {
			a.printf("  [%s] %s %s\n", support.Category(att), att.Name, att.URL)
		}
	}
}
