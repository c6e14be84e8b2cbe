package components

import (
	"time"

	"tourbook/internal/domain/pricing"
	"tourbook/internal/pkg/clock"
	"tourbook/internal/pkg/config"
	"tourbook/internal/usecase"
	"tourbook/internal/usecase/commands"
	"tourbook/internal/usecase/queries"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	NewSettings,
	fx.Annotate(
		NewPricingCalculator,
		fx.As(new(pricing.Calculator)),
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewBookingCommands,
		commands.NewSweepCommands,
		commands.NewPaymentCommands,
		// the lifecycle refunds through the payment service
		func(p commands.PaymentService) commands.PaymentCommands { return p },
		func(p commands.PaymentService) commands.Refunder { return p },
		commands.NewLifecycleCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewBookingQueries,
		queries.NewAvailabilityQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)

func NewPricingCalculator(cfg config.Config) *pricing.DefaultCalculator {
	return pricing.NewCalculator(pricing.Policy{
		PlatformFeePercent:    decimal.NewFromFloat(cfg.Booking.PlatformFeePercent),
		DefaultCommissionRate: decimal.NewFromFloat(cfg.Booking.DefaultCommissionRate),
	})
}

func NewSettings(cfg config.Config) (commands.Settings, error) {
	loc, err := time.LoadLocation(cfg.Booking.TimeZone)
	if err != nil {
		return commands.Settings{}, err
	}
	return commands.Settings{
		MaxDurationHours:   cfg.Booking.MaxDurationHours,
		MinPeople:          cfg.Booking.MinNumberOfPeople,
		MaxPeople:          cfg.Booking.MaxNumberOfPeople,
		CancellationWindow: time.Duration(cfg.Booking.CancellationWindowHours) * time.Hour,
		AutoConfirmAfter:   time.Duration(cfg.Booking.AutoConfirmHours) * time.Hour,
		SweepBatchSize:     cfg.Booking.SweepBatchSize,
		Currency:           cfg.Payment.Currency,
		ReturnURL:          cfg.Payment.ReturnURL,
		CancelURL:          cfg.Payment.CancelURL,
		Location:           loc,
	}, nil
}
