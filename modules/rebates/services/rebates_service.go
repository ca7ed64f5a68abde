package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/propscale/broker-admin/pkg/apiclient"
	"github.com/propscale/broker-admin/pkg/crud"
	"github.com/propscale/broker-admin/pkg/eventbus"
)

// AccountType is one row of the rebate matrix.
type AccountType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Tier is one column of the rebate matrix.
type Tier struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Rate is one cell. Rates are arbitrary-precision decimals; they are never
// held as floats.
type Rate struct {
	AccountTypeID int64           `json:"account_type_id"`
	TierID        int64           `json:"tier_id"`
	Rate          decimal.Decimal `json:"rate"`
}

// Matrix is the full account-type × tier rebate grid.
type Matrix struct {
	AccountTypes []AccountType `json:"account_types"`
	Tiers        []Tier        `json:"tiers"`
	Rates        []Rate        `json:"rates"`
}

// Rate returns the cell value, zero when the cell has never been set.
func (m *Matrix) Rate(accountTypeID, tierID int64) decimal.Decimal {
	for _, rate := range m.Rates {
		if rate.AccountTypeID == accountTypeID && rate.TierID == tierID {
			return rate.Rate
		}
	}
	return decimal.Zero
}

// RebatesService fronts the rebate-rate matrix endpoints. Edits always submit
// the full matrix; the platform replaces it atomically.
type RebatesService struct {
	api *apiclient.Client
	bus eventbus.EventBus
}

func NewRebatesService(api *apiclient.Client, bus eventbus.EventBus) *RebatesService {
	return &RebatesService{api: api, bus: bus}
}

func matrixPath(brokerID string) string {
	return "/rebates/" + brokerID + "/matrix"
}

func (s *RebatesService) Matrix(ctx context.Context, brokerID string) (*Matrix, error) {
	env := s.api.Get(ctx, matrixPath(brokerID), nil)
	if !env.Success {
		return nil, &crud.Error{Message: env.Message, Unauthorized: env.Unauthorized()}
	}
	matrix := &Matrix{}
	if err := env.DecodeData(matrix); err != nil {
		return nil, &crud.Error{Message: "Invalid response from server"}
	}
	return matrix, nil
}

// Save validates and persists the full rate grid.
func (s *RebatesService) Save(ctx context.Context, brokerID string, rates []Rate) error {
	for _, rate := range rates {
		if rate.Rate.IsNegative() {
			return &crud.Error{
				Message: fmt.Sprintf("Rebate rate for account type %d, tier %d cannot be negative",
					rate.AccountTypeID, rate.TierID),
				Fields: map[string][]string{
					cellKey(rate.AccountTypeID, rate.TierID): {"Rate cannot be negative"},
				},
			}
		}
	}

	env := s.api.Put(ctx, matrixPath(brokerID), map[string]any{"rates": rates})
	if !env.Success {
		return &crud.Error{
			Message:      env.Message,
			Unauthorized: env.Unauthorized(),
			Fields:       env.Errors,
		}
	}
	s.bus.Publish(eventbus.Invalidated{Resource: "rebates"})
	return nil
}

func cellKey(accountTypeID, tierID int64) string {
	return fmt.Sprintf("rate.%d.%d", accountTypeID, tierID)
}

// CellKey is the form field name addressing one grid cell.
func CellKey(accountTypeID, tierID int64) string {
	return cellKey(accountTypeID, tierID)
}
