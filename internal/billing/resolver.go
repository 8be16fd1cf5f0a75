package billing

import (
	"context"
	"errors"

	"fitpass/internal/gym"
)

var ErrNoVerifiedAccount = errors.New("no verified merchant account for gym")

// MerchantAccount is the resolved payout destination for a charge.
type MerchantAccount struct {
	AccountRef string
	Currency   string
}

// Resolver decides which connected account receives a gym's payments.
// Order: explicit location, then primary-first active onboarded location,
// then the legacy gym-level account. An explicit location that is not
// chargeable is an error, never a silent fallback — иначе деньги уйдут
// не на ту площадку.
type Resolver struct {
	gyms gym.Store
}

func NewResolver(gyms gym.Store) *Resolver {
	return &Resolver{gyms: gyms}
}

func (r *Resolver) Resolve(ctx context.Context, gymID int, locationID *int) (*MerchantAccount, error) {
	if locationID != nil {
		loc, err := r.gyms.GetLocationByID(ctx, *locationID)
		if err != nil {
			return nil, err
		}
		if loc.GymID != gymID {
			return nil, ErrNoVerifiedAccount
		}
		if !chargeable(loc) {
			return nil, ErrNoVerifiedAccount
		}
		return &MerchantAccount{AccountRef: loc.StripeAccountRef, Currency: loc.Currency}, nil
	}

	locations, err := r.gyms.ListLocations(ctx, gymID)
	if err != nil {
		return nil, err
	}

	// Primary first, then any chargeable one.
	for _, loc := range locations {
		if loc.IsPrimary && chargeable(&loc) {
			return &MerchantAccount{AccountRef: loc.StripeAccountRef, Currency: loc.Currency}, nil
		}
	}
	for _, loc := range locations {
		if chargeable(&loc) {
			return &MerchantAccount{AccountRef: loc.StripeAccountRef, Currency: loc.Currency}, nil
		}
	}

	g, err := r.gyms.GetGymByID(ctx, gymID)
	if err != nil {
		return nil, err
	}
	if g.StripeAccountRef != "" && g.OnboardingComplete {
		return &MerchantAccount{AccountRef: g.StripeAccountRef, Currency: g.Currency}, nil
	}

	return nil, ErrNoVerifiedAccount
}

func chargeable(loc *gym.Location) bool {
	return loc.Active && loc.OnboardingComplete && loc.StripeAccountRef != ""
}
