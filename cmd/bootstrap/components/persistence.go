package components

import (
	"tourbook/internal/infra/readstore"
	sqlc "tourbook/internal/infra/sqlc/generated"
	"tourbook/internal/infra/uow"
	"tourbook/internal/usecase/queries"
	"tourbook/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	baseOption,
	readstoreModule,
	uowModule,
)

var baseOption = fx.Provide(
	NewSQLQueries,
	NewDBTX,
)

// repositories are bound per transaction inside the unit of work
var uowModule = fx.Module("persistence/uow",
	fx.Provide(
		uow.NewPostgresUoW,
		func(u *uow.PostgresUoW) shared.UnitOfWork { return u },
		// reads outside a transaction, for the availability endpoint
		func(u *uow.PostgresUoW) queries.AvailabilitySource { return u.CommandReads() },
	),
)

var readstoreModule = fx.Module("persistence/readstore",
	fx.Provide(
		// Booking
		fx.Annotate(
			NewSQLQueries,
			fx.As(new(readstore.BookingReadQueries)),
		),
		fx.Annotate(
			readstore.NewBookingReadStore,
			fx.As(new(queries.BookingReadStore)),
		),
	),
)

func NewSQLQueries(_ *pgxpool.Pool) *sqlc.Queries {
	return sqlc.New()
}

func NewDBTX(pool *pgxpool.Pool) sqlc.DBTX {
	return pool
}
