package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/moontravel/internal/models"
)

// HotelStore implements store.HotelStore using PostgreSQL.
type HotelStore struct {
	pool *pgxpool.Pool
}

// NewHotelStore creates a new PostgreSQL-backed hotel store.
func NewHotelStore(pool *pgxpool.Pool) *HotelStore {
	return &HotelStore{pool: pool}
}

// Create inserts a hotel. A missing manager surfaces as store.ErrIdentityNotFound.
func (s *HotelStore) Create(ctx context.Context, hotel *models.Hotel) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO hotels (
			hotel_id, name, location, price, description, rooms_available, manager_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		hotel.HotelID,
		hotel.Name,
		hotel.Location,
		hotel.Price,
		hotel.Description,
		hotel.RoomsAvailable,
		hotel.ManagerID,
		hotel.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create hotel: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("hotel_id", hotel.HotelID.String()).
		Str("manager_id", hotel.ManagerID.String()).
		Msg("Created hotel")

	return nil
}

// ListByManager returns the hotels owned by a manager.
func (s *HotelStore) ListByManager(ctx context.Context, managerID uuid.UUID) ([]*models.Hotel, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT hotel_id, name, location, price, description, rooms_available, manager_id, created_at
		FROM hotels
		WHERE manager_id = $1
		ORDER BY created_at, hotel_id
	`, managerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list hotels: %w", err)
	}
	defer rows.Close()

	var hotels []*models.Hotel
	for rows.Next() {
		var hotel models.Hotel
		if err := rows.Scan(
			&hotel.HotelID,
			&hotel.Name,
			&hotel.Location,
			&hotel.Price,
			&hotel.Description,
			&hotel.RoomsAvailable,
			&hotel.ManagerID,
			&hotel.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan hotel: %w", err)
		}
		hotels = append(hotels, &hotel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hotels: %w", err)
	}

	return hotels, nil
}
