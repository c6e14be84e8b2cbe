package pricing

import (
	"errors"

	"tourbook/internal/pkg/money"

	"github.com/shopspring/decimal"
)

var (
	ErrNegativePrice   = errors.New("price cannot be negative")
	ErrInvalidDuration = errors.New("duration must be positive")
	ErrInvalidPeople   = errors.New("number of people must be positive")
	ErrUnknownMode     = errors.New("unknown pricing mode")
)

type Mode string

const (
	// ModeDirectHourly bills the guide's hourly rate for the booked duration
	ModeDirectHourly Mode = "direct_hourly"
	// ModeItinerary bills the itinerary base price per person plus the platform fee
	ModeItinerary Mode = "itinerary"
)

type Draft struct {
	Mode           Mode
	HourlyRate     decimal.Decimal
	DurationHours  decimal.Decimal
	BasePrice      decimal.Decimal
	NumberOfPeople int
	// CommissionRate is the guide/itinerary pivot rate in percent; nil falls back to the policy default
	CommissionRate *decimal.Decimal
}

type Policy struct {
	PlatformFeePercent    decimal.Decimal
	DefaultCommissionRate decimal.Decimal
}

func DefaultPolicy() Policy {
	return Policy{
		PlatformFeePercent:    decimal.NewFromInt(5),
		DefaultCommissionRate: decimal.NewFromInt(10),
	}
}

// Quote holds unrounded amounts; call Rounded before persisting or charging
type Quote struct {
	Mode            Mode
	Subtotal        decimal.Decimal
	PlatformFee     decimal.Decimal
	GuideCommission decimal.Decimal
	Total           decimal.Decimal
	CommissionRate  *decimal.Decimal
}

func (q Quote) Rounded() Quote {
	q.Subtotal = money.Round(q.Subtotal)
	q.PlatformFee = money.Round(q.PlatformFee)
	q.GuideCommission = money.Round(q.GuideCommission)
	q.Total = money.Round(q.Total)
	return q
}

type Calculator interface {
	ComputePrice(draft Draft) (Quote, error)
}

type DefaultCalculator struct {
	policy Policy
}

func NewCalculator(policy Policy) *DefaultCalculator {
	return &DefaultCalculator{policy: policy}
}

func (c *DefaultCalculator) Policy() Policy {
	return c.policy
}

func (c *DefaultCalculator) ComputePrice(draft Draft) (Quote, error) {
	switch draft.Mode {
	case ModeDirectHourly:
		return c.direct(draft)
	case ModeItinerary:
		return c.itinerary(draft)
	default:
		return Quote{}, ErrUnknownMode
	}
}

func (c *DefaultCalculator) direct(draft Draft) (Quote, error) {
	if draft.HourlyRate.IsNegative() {
		return Quote{}, ErrNegativePrice
	}
	if !draft.DurationHours.IsPositive() {
		return Quote{}, ErrInvalidDuration
	}

	subtotal := draft.HourlyRate.Mul(draft.DurationHours)
	return Quote{
		Mode:            ModeDirectHourly,
		Subtotal:        subtotal,
		PlatformFee:     decimal.Zero,
		GuideCommission: decimal.Zero,
		Total:           subtotal,
	}, nil
}

func (c *DefaultCalculator) itinerary(draft Draft) (Quote, error) {
	if draft.BasePrice.IsNegative() {
		return Quote{}, ErrNegativePrice
	}
	if draft.NumberOfPeople <= 0 {
		return Quote{}, ErrInvalidPeople
	}

	rate := c.policy.DefaultCommissionRate
	if draft.CommissionRate != nil {
		rate = *draft.CommissionRate
	}
	if rate.IsNegative() {
		return Quote{}, ErrNegativePrice
	}

	subtotal := draft.BasePrice.Mul(decimal.NewFromInt(int64(draft.NumberOfPeople)))
	fee := money.Percent(subtotal, c.policy.PlatformFeePercent)
	return Quote{
		Mode:            ModeItinerary,
		Subtotal:        subtotal,
		PlatformFee:     fee,
		GuideCommission: money.Percent(subtotal, rate),
		Total:           subtotal.Add(fee),
		CommissionRate:  &rate,
	}, nil
}
