package listing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http/httptest"
	"testing"

	"github.com/Dilhara2002/lak-travelers-sub000/internal/auth"
	"github.com/Dilhara2002/lak-travelers-sub000/internal/db"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
)

var errQuery = errors.New("query error")

func TestAggregateIsMeanOfRatings(t *testing.T) {
	rating, count := Aggregate(nil)
	if rating != 0 || count != 0 {
		t.Fatalf("expected zero aggregate for no reviews")
	}

	reviews := []Review{{UserID: "a", Rating: 5}, {UserID: "b", Rating: 4}, {UserID: "c", Rating: 2}}
	rating, count = Aggregate(reviews)
	if count != 3 {
		t.Fatalf("expected 3 reviews, got %d", count)
	}
	if math.Abs(rating-11.0/3.0) > 1e-9 {
		t.Fatalf("unexpected mean: %v", rating)
	}
}

func TestHasReviewedAndRemove(t *testing.T) {
	reviews := []Review{{UserID: "a", Rating: 5}, {UserID: "b", Rating: 3}}
	if !HasReviewed(reviews, "b") || HasReviewed(reviews, "c") {
		t.Fatalf("unexpected has-reviewed result")
	}

	left, found := RemoveReview(reviews, "a")
	if !found || len(left) != 1 || left[0].UserID != "b" {
		t.Fatalf("unexpected remove result: %+v", left)
	}
	if _, found := RemoveReview(reviews, "z"); found {
		t.Fatalf("expected not found")
	}
}

func TestDecodeEncodeReviews(t *testing.T) {
	got, err := DecodeReviews(nil)
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice")
	}
	got, err = DecodeReviews([]byte(`null`))
	if err != nil || got == nil {
		t.Fatalf("expected null to decode empty")
	}
	if _, err := DecodeReviews([]byte(`{bad`)); err == nil {
		t.Fatalf("expected decode error")
	}

	raw, err := EncodeReviews(nil)
	if err != nil || string(raw) != "[]" {
		t.Fatalf("expected [] for nil reviews, got %s", raw)
	}
	raw, _ = EncodeReviews([]Review{{UserID: "u", Rating: 4, Comment: "nice"}})
	back, err := DecodeReviews(raw)
	if err != nil || len(back) != 1 || back[0].Rating != 4 {
		t.Fatalf("unexpected decoded reviews: %+v", back)
	}
}

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{"hotel": KindHotel, "hotels": KindHotel, "tours": KindTour, "vehicle": KindVehicle}
	for in, want := range cases {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("parse %q: got %q %v", in, got, err)
		}
	}
	if _, err := ParseKind("boats"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected unknown kind")
	}
	if KindHotel.Table() != "hotels" || KindTour.PriceColumn() != "price_per_person" || KindVehicle.PriceColumn() != "price_per_day" {
		t.Fatalf("unexpected kind mapping")
	}
}

func TestCanModify(t *testing.T) {
	if !CanModify("owner", "owner", auth.RoleVendor) {
		t.Fatalf("owner should modify")
	}
	if CanModify("owner", "other", auth.RoleVendor) {
		t.Fatalf("other vendor should not modify")
	}
	if !CanModify("owner", "admin", auth.RoleAdmin) {
		t.Fatalf("admin should modify")
	}
	if CanModify("", "", auth.RoleUser) {
		t.Fatalf("anonymous should not modify")
	}
}

func TestFilterFrom(t *testing.T) {
	app := fiber.New()
	var got Filter
	app.Get("/", func(c *fiber.Ctx) error {
		got = FilterFrom(c)
		return nil
	})

	_, _ = app.Test(httptest.NewRequest("GET", "/?search=Ella&minPrice=100&maxPrice=500&limit=500&offset=20", nil))
	if got.Search != "Ella" || got.MinPrice != 100 || got.MaxPrice != 500 {
		t.Fatalf("unexpected filter: %+v", got)
	}
	if got.Page.Limit != maxLimit || got.Page.Offset != 20 {
		t.Fatalf("unexpected page: %+v", got.Page)
	}

	_, _ = app.Test(httptest.NewRequest("GET", "/?limit=abc&offset=-3&minPrice=x", nil))
	if got.Page.Limit != defaultLimit || got.Page.Offset != 0 || got.MinPrice != 0 {
		t.Fatalf("expected defaults, got %+v", got)
	}
}

func TestLookupFind(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, name, owner_id, price_per_night FROM hotels WHERE id`).
		WithArgs("hotel-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "owner_id", "price_per_night"}).AddRow("hotel-1", "Cinnamon Lodge", "vendor-1", 10000.0))
	mock.ExpectQuery(`SELECT id, name, owner_id, price_per_day FROM vehicles WHERE id`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`FROM tours`).
		WithArgs("tour-1").
		WillReturnError(errQuery)

	lookup := NewLookup(mock)
	ref, err := lookup.Find(context.Background(), KindHotel, "hotel-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if ref.OwnerID != "vendor-1" || ref.Price != 10000 || ref.Kind != KindHotel {
		t.Fatalf("unexpected ref: %+v", ref)
	}

	if _, err := lookup.Find(context.Background(), KindVehicle, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := lookup.Find(context.Background(), KindTour, "tour-1"); !errors.Is(err, errQuery) {
		t.Fatalf("expected query error, got %v", err)
	}
	if _, err := lookup.Find(context.Background(), Kind("boat"), "x"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected unknown kind")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestHTTPError(t *testing.T) {
	cases := map[error]int{
		ErrNotFound:      fiber.StatusNotFound,
		ErrForbidden:     fiber.StatusForbidden,
		ErrInvalid:       fiber.StatusBadRequest,
		ErrUnknownKind:   fiber.StatusBadRequest,
		db.ErrNoDatabase: fiber.StatusServiceUnavailable,
	}
	for in, want := range cases {
		var fe *fiber.Error
		if !errors.As(HTTPError(in), &fe) || fe.Code != want {
			t.Fatalf("%v: expected %d, got %v", in, want, HTTPError(in))
		}
	}

	wrapped := fmt.Errorf("load reviewer: %w", pgx.ErrNoRows)
	got := HTTPError(wrapped)
	var fe *fiber.Error
	if errors.As(got, &fe) || !errors.Is(got, pgx.ErrNoRows) {
		t.Fatalf("expected unmapped error returned unchanged, got %v", got)
	}
}
