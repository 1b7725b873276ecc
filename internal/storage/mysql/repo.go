package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"hotelmerge/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// valJSON renders one JSON column.
func valJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}

// normalize stores and returns nil lists as [].
func normalize(h domain.Hotel) domain.Hotel {
	h.Amenities.General = nonNil(h.Amenities.General)
	h.Amenities.Room = nonNil(h.Amenities.Room)
	h.Images.Rooms = nonNil(h.Images.Rooms)
	h.Images.Site = nonNil(h.Images.Site)
	h.Images.Amenities = nonNil(h.Images.Amenities)
	h.BookingConditions = nonNil(h.BookingConditions)
	return h
}

func (r *Repo) UpsertHotel(ctx context.Context, h domain.Hotel, seq int) error {
	h = normalize(h)
	loc, err := valJSON(h.Location)
	if err != nil {
		return fmt.Errorf("upsert %s: location: %w", h.ID, err)
	}
	amen, err := valJSON(h.Amenities)
	if err != nil {
		return fmt.Errorf("upsert %s: amenities: %w", h.ID, err)
	}
	imgs, err := valJSON(h.Images)
	if err != nil {
		return fmt.Errorf("upsert %s: images: %w", h.ID, err)
	}
	conds, err := valJSON(h.BookingConditions)
	if err != nil {
		return fmt.Errorf("upsert %s: booking conditions: %w", h.ID, err)
	}

	_, err = r.db.ExecContext(ctx, upsertHotelSQL,
		h.ID,
		h.DestinationID,
		seq,
		h.Name,
		h.Description,
		loc,
		amen,
		imgs,
		conds,
	)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHotel(s scanner) (domain.Hotel, error) {
	var h domain.Hotel
	var loc, amen, imgs, conds []byte
	if err := s.Scan(&h.ID, &h.DestinationID, &h.Name, &h.Description, &loc, &amen, &imgs, &conds); err != nil {
		return domain.Hotel{}, err
	}
	for _, c := range []struct {
		name string
		raw  []byte
		dst  any
	}{
		{"location", loc, &h.Location},
		{"amenities", amen, &h.Amenities},
		{"images", imgs, &h.Images},
		{"booking_conditions", conds, &h.BookingConditions},
	} {
		if len(c.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(c.raw, c.dst); err != nil {
			return domain.Hotel{}, fmt.Errorf("hotel %s: decode %s: %w", h.ID, c.name, err)
		}
	}
	return normalize(h), nil
}

func (r *Repo) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	h, err := scanHotel(r.db.QueryRowContext(ctx, getHotelSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return h, err
}

// ListHotels returns hotels matching f in first-seen order.
func (r *Repo) ListHotels(ctx context.Context, f domain.Filter) ([]domain.Hotel, error) {
	query, args := listQuery(f)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Hotel{}
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func listQuery(f domain.Filter) (string, []any) {
	var where []string
	var args []any
	if len(f.IDs) > 0 {
		where = append(where, "id IN ("+placeholders(len(f.IDs))+")")
		for _, id := range f.IDs {
			args = append(args, id)
		}
	}
	if len(f.DestinationIDs) > 0 {
		where = append(where, "destination_id IN ("+placeholders(len(f.DestinationIDs))+")")
		for _, d := range f.DestinationIDs {
			args = append(args, d)
		}
	}
	q := selectHotelSQL
	if len(where) > 0 {
		q += "\nWHERE " + strings.Join(where, " AND ")
	}
	return q + listHotelsOrder, args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
