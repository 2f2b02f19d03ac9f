package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dilhara2002/lak-travelers-sub000/internal/auth"
	"github.com/Dilhara2002/lak-travelers-sub000/internal/db"
	"github.com/Dilhara2002/lak-travelers-sub000/internal/listing"
	"github.com/Dilhara2002/lak-travelers-sub000/internal/metrics"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const bookingColumns = `id, user_id, listing_type, listing_id, listing_name, vendor_id, check_in, check_out, people_count, unit_price, total_price, status, notes, created_at, updated_at`

type ListingFinder interface {
	Find(ctx context.Context, kind listing.Kind, id string) (listing.Ref, error)
}

// Publisher delivers an event to one user's live connections.
type Publisher interface {
	Publish(ctx context.Context, userID string, payload []byte)
}

type Service struct {
	db       db.Querier
	listings ListingFinder
	events   Publisher
	logger   *slog.Logger
}

func NewService(db db.Querier, listings ListingFinder, events Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, listings: listings, events: events, logger: logger}
}

func (s *Service) Create(ctx context.Context, userID string, in Input) (Booking, error) {
	if in.ListingType == "" || in.ListingID == "" || in.CheckIn == "" {
		return Booking{}, ErrMissingField
	}
	kind, err := listing.ParseKind(in.ListingType)
	if err != nil {
		return Booking{}, err
	}
	if in.PeopleCount < 0 {
		return Booking{}, ErrPeople
	}

	checkIn, err := parseDate(in.CheckIn)
	if err != nil {
		return Booking{}, err
	}
	checkOut := checkIn
	switch {
	case in.CheckOut != "":
		if checkOut, err = parseDate(in.CheckOut); err != nil {
			return Booking{}, err
		}
	case kind == listing.KindHotel:
		return Booking{}, ErrCheckOut
	}

	ref, err := s.listings.Find(ctx, kind, in.ListingID)
	if err != nil {
		return Booking{}, err
	}

	people := in.PeopleCount
	if people == 0 {
		people = 1
	}

	b := Booking{
		ID:          uuid.NewString(),
		UserID:      userID,
		ListingType: kind,
		ListingID:   ref.ID,
		ListingName: ref.Name,
		VendorID:    ref.OwnerID,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		PeopleCount: people,
		UnitPrice:   ref.Price,
		TotalPrice:  Total(kind, ref.Price, checkIn, checkOut, people),
		Status:      StatusPending,
		Notes:       strings.TrimSpace(in.Notes),
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO bookings (id, user_id, listing_type, listing_id, listing_name, vendor_id, check_in, check_out, people_count, unit_price, total_price, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING created_at, updated_at
	`, b.ID, b.UserID, string(b.ListingType), b.ListingID, b.ListingName, b.VendorID, b.CheckIn, b.CheckOut,
		b.PeopleCount, b.UnitPrice, b.TotalPrice, string(b.Status), b.Notes)
	if err := row.Scan(&b.CreatedAt, &b.UpdatedAt); err != nil {
		return Booking{}, err
	}

	metrics.IncBookingCreated(string(kind))
	s.notify(ctx, "booking.created", b, b.UserID, b.VendorID)
	return b, nil
}

// Get returns a booking visible to the caller: its guest, its vendor or an admin.
func (s *Service) Get(ctx context.Context, id, userID string, role auth.Role) (Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return Booking{}, err
	}
	if role != auth.RoleAdmin && b.UserID != userID && b.VendorID != userID {
		return Booking{}, ErrForbidden
	}
	return b, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Booking, error) {
	return s.list(ctx, `WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (s *Service) ListByVendor(ctx context.Context, vendorID string) ([]Booking, error) {
	return s.list(ctx, `WHERE vendor_id = $1 ORDER BY created_at DESC`, vendorID)
}

func (s *Service) ListAll(ctx context.Context, page listing.Page) ([]Booking, error) {
	return s.list(ctx, `ORDER BY created_at DESC LIMIT $1 OFFSET $2`, page.Limit, page.Offset)
}

// ListCreatedBetween returns bookings created in [from, to), oldest first.
func (s *Service) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]Booking, error) {
	return s.list(ctx, `WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at ASC`, from, to)
}

// UpdateStatus applies a checked transition. The UPDATE is conditional on the
// status read, so two racing decisions cannot both win.
func (s *Service) UpdateStatus(ctx context.Context, id, actorID string, role auth.Role, next Status) (Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return Booking{}, err
	}
	if err := CheckTransition(b, next, actorID, role); err != nil {
		return Booking{}, err
	}

	row := s.db.QueryRow(ctx, `
		UPDATE bookings SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3
		RETURNING updated_at
	`, b.ID, string(next), string(b.Status))
	if err := row.Scan(&b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Booking{}, ErrInvalidTransition
		}
		return Booking{}, err
	}
	b.Status = next

	metrics.IncBookingStatus(string(next))
	s.notify(ctx, "booking.status", b, b.UserID, b.VendorID)
	return b, nil
}

func (s *Service) load(ctx context.Context, id string) (Booking, error) {
	b, err := scanBooking(s.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Booking{}, ErrNotFound
	}
	return b, err
}

func (s *Service) list(ctx context.Context, clause string, args ...any) ([]Booking, error) {
	rows, err := s.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings `+clause, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := []Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (s *Service) notify(ctx context.Context, kind string, b Booking, userIDs ...string) {
	if s.events == nil {
		return
	}
	payload, err := json.Marshal(Event{Type: kind, Booking: b})
	if err != nil {
		s.logger.Error("encode booking event", slog.String("booking", b.ID), slog.Any("err", err))
		return
	}
	seen := map[string]bool{}
	for _, id := range userIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		s.events.Publish(ctx, id, payload)
	}
}

func scanBooking(row pgx.Row) (Booking, error) {
	var b Booking
	var kind, status string
	if err := row.Scan(&b.ID, &b.UserID, &kind, &b.ListingID, &b.ListingName, &b.VendorID, &b.CheckIn, &b.CheckOut,
		&b.PeopleCount, &b.UnitPrice, &b.TotalPrice, &status, &b.Notes, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return Booking{}, err
	}
	b.ListingType = listing.Kind(kind)
	b.Status = Status(status)
	return b, nil
}

var nowFn = time.Now

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, s)
}
