package admin

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
)

// Overview is the admin dashboard summary
type Overview struct {
	Landlords            []models.User `json:"landlords"`
	Tenants              []models.User `json:"tenants"`
	AwaitingVerification int           `json:"awaitingVerification"`
	WithPayoutAccount    int           `json:"withPayoutAccount"`
}

// LoadOverview fetches landlords and tenants concurrently. Either failure
// fails the whole load.
func LoadOverview(ctx context.Context, deps Deps) (*Overview, error) {
	deps.defaults()

	var landlords, tenants []models.User
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		landlords, err = deps.Client.AdminLandlords(gctx)
		if err != nil {
			return fmt.Errorf("failed to load landlords: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		tenants, err = deps.Client.AdminTenants(gctx)
		if err != nil {
			return fmt.Errorf("failed to load tenants: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, deps.report(err, "load dashboard", "Could not load the dashboard.")
	}

	o := &Overview{Landlords: landlords, Tenants: tenants}
	for _, l := range landlords {
		if !l.Verified() {
			o.AwaitingVerification++
		}
		if l.HasPayoutAccount() {
			o.WithPayoutAccount++
		}
	}
	if o.Landlords == nil {
		o.Landlords = []models.User{}
	}
	if o.Tenants == nil {
		o.Tenants = []models.User{}
	}
	return o, nil
}
