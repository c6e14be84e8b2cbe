package readstore

import (
	"context"

	"tourbook/internal/domain/availability"
	"tourbook/internal/domain/schedule"
	"tourbook/internal/infra"
	"tourbook/internal/infra/repository/converter"
	sqlc "tourbook/internal/infra/sqlc/generated"
	"tourbook/internal/pkg/pgconv"
	"tourbook/internal/usecase/shared"

	"github.com/google/uuid"
)

type CatalogReadQueries interface {
	GetGuideByID(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (sqlc.GetGuideByIDRow, error)
	GetGuideItinerary(ctx context.Context, db sqlc.DBTX, arg sqlc.GetGuideItineraryParams) (sqlc.GetGuideItineraryRow, error)
	ListGuideAvailabilities(ctx context.Context, db sqlc.DBTX, arg sqlc.ListGuideAvailabilitiesParams) ([]sqlc.ListGuideAvailabilitiesRow, error)
}

// CatalogReadStore reads the guide, itinerary and schedule data owned by the catalog service
type CatalogReadStore struct {
	queries CatalogReadQueries
	db      sqlc.DBTX
}

func NewCatalogReadStore(queries CatalogReadQueries, db sqlc.DBTX) *CatalogReadStore {
	return &CatalogReadStore{
		queries: queries,
		db:      db,
	}
}

func (s *CatalogReadStore) GuideByID(ctx context.Context, id uuid.UUID) (*shared.GuideSnapshot, error) {
	row, err := s.queries.GetGuideByID(ctx, s.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("guide not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find guide", err)
	}

	rate, err := pgconv.DecimalFromNumeric(row.HourlyRate)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid guide hourly rate", err, infra.KindDBFailure)
	}

	return &shared.GuideSnapshot{
		ID:         row.ID,
		HourlyRate: rate,
		IsActive:   row.IsActive,
	}, nil
}

func (s *CatalogReadStore) GuideItinerary(ctx context.Context, guideID, itineraryID uuid.UUID) (*shared.ItinerarySnapshot, error) {
	row, err := s.queries.GetGuideItinerary(ctx, s.db, sqlc.GetGuideItineraryParams{
		GuideID:     guideID,
		ItineraryID: itineraryID,
	})
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("itinerary not offered by guide", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find guide itinerary", err)
	}

	base, err := pgconv.DecimalFromNumeric(row.BasePrice)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid itinerary base price", err, infra.KindDBFailure)
	}
	rate, err := pgconv.DecimalPtrFromNumeric(row.CommissionRate)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid commission rate", err, infra.KindDBFailure)
	}

	return &shared.ItinerarySnapshot{
		ID:             row.ID,
		GuideID:        row.GuideID,
		Title:          row.Title,
		BasePrice:      base,
		CommissionRate: rate,
	}, nil
}

func (s *CatalogReadStore) AvailabilityWindows(ctx context.Context, guideID uuid.UUID, day schedule.DayOfWeek) ([]availability.Window, error) {
	rows, err := s.queries.ListGuideAvailabilities(ctx, s.db, sqlc.ListGuideAvailabilitiesParams{
		GuideID:   guideID,
		DayOfWeek: day.String(),
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list guide availabilities", err)
	}

	windows := make([]availability.Window, 0, len(rows))
	for _, row := range rows {
		r, err := converter.SlotFromPgtime(row.StartTime, row.EndTime)
		if err != nil {
			return nil, infra.WrapRepoErr("invalid availability window", err, infra.KindDBFailure)
		}
		windows = append(windows, availability.Window{
			DayOfWeek:   schedule.DayOfWeek(row.DayOfWeek),
			Range:       r,
			IsAvailable: row.IsAvailable,
		})
	}
	return windows, nil
}
