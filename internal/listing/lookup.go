package listing

import (
	"context"
	"errors"

	"github.com/Dilhara2002/lak-travelers-sub000/internal/db"

	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("listing not found")

// Lookup resolves a listing of any kind to its owner and unit price.
type Lookup struct {
	db db.Querier
}

func NewLookup(db db.Querier) *Lookup {
	return &Lookup{db: db}
}

func (l *Lookup) Find(ctx context.Context, kind Kind, id string) (Ref, error) {
	if !kind.Valid() {
		return Ref{}, ErrUnknownKind
	}
	row := l.db.QueryRow(ctx, `SELECT id, name, owner_id, `+kind.PriceColumn()+` FROM `+kind.Table()+` WHERE id = $1`, id)

	ref := Ref{Kind: kind}
	if err := row.Scan(&ref.ID, &ref.Name, &ref.OwnerID, &ref.Price); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Ref{}, ErrNotFound
		}
		return Ref{}, err
	}
	return ref, nil
}
