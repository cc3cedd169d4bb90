// Package payout links a landlord's settlement account.
package payout

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/api"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/notify"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/session"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/validation"
)

// Setup creates the payout account for the signed-in landlord
type Setup struct {
	store     *session.Store
	notifier  notify.Notifier
	validator *validation.Validator
	logger    logrus.FieldLogger
}

// NewSetup wires a setup to the landlord's session
func NewSetup(store *session.Store, notifier notify.Notifier, logger logrus.FieldLogger) *Setup {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Setup{store: store, notifier: notifier, validator: validation.New(), logger: logger}
}

// CreateAccount validates the bank details, creates the account with one
// request and records the account on the session user.
func (s *Setup) CreateAccount(ctx context.Context, in models.PayoutAccountInput) (*models.PayoutAccount, error) {
	in.AccountHolderName = strings.TrimSpace(in.AccountHolderName)
	in.AccountNumber = strings.ReplaceAll(strings.TrimSpace(in.AccountNumber), " ", "")
	in.IFSC = strings.ToUpper(strings.TrimSpace(in.IFSC))
	in.UPIID = strings.TrimSpace(in.UPIID)
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	acct, err := s.store.Client().CreatePayoutAccount(ctx, in)
	if err != nil {
		if s.store.HandleAuthFailure(ctx, err) {
			return nil, fmt.Errorf("failed to create payout account: %w", err)
		}
		s.notifier.Error(api.MessageOf(err, "Could not save your payout details."))
		return nil, fmt.Errorf("failed to create payout account: %w", err)
	}

	if err := s.store.UpdateUser(ctx, func(u *models.User) {
		u.PayoutAccountID = acct.PayoutAccountID
		u.PayoutStatus = acct.Status
	}); err != nil {
		// the account exists remotely; the next FetchMe will pick it up
		s.logger.WithError(err).Warn("Failed to record payout account on session")
	}

	s.logger.WithFields(logrus.Fields{
		"payout_account_id": acct.PayoutAccountID,
		"status":            acct.Status,
	}).Info("Payout account linked")
	s.notifier.Success("Payout account linked.")
	return acct, nil
}
