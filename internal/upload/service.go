package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Dilhara2002/lak-travelers-sub000/internal/db"
	"github.com/Dilhara2002/lak-travelers-sub000/internal/metrics"
)

// MaxImageBytes caps a single upload at 5 MiB.
const MaxImageBytes = 5 << 20

var (
	ErrUnavailable = errors.New("image uploads are not configured")
	ErrNotImage    = errors.New("only image files are allowed")
	ErrTooLarge    = errors.New("image must be 5 MiB or smaller")
)

type Object struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// Service validates images, hands the bytes to the object store and records
// who uploaded what in Postgres.
type Service struct {
	db      db.Querier
	store   ObjectStore
	baseURL string
}

func NewService(db db.Querier, store ObjectStore, publicBaseURL string) *Service {
	return &Service{db: db, store: store, baseURL: strings.TrimRight(publicBaseURL, "/")}
}

func (s *Service) Enabled() bool {
	return s.store != nil
}

// Save stores one image. declaredType comes from the multipart header and must
// agree with the sniffed bytes on being an image.
func (s *Service) Save(ctx context.Context, userID, fileName, declaredType string, size int64, r io.Reader) (Object, error) {
	if !s.Enabled() {
		return Object{}, ErrUnavailable
	}
	if size > MaxImageBytes {
		return Object{}, ErrTooLarge
	}
	if !strings.HasPrefix(declaredType, "image/") {
		return Object{}, ErrNotImage
	}

	body, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return Object{}, err
	}
	if len(body) > MaxImageBytes {
		return Object{}, ErrTooLarge
	}
	sniffed := http.DetectContentType(body)
	if !strings.HasPrefix(sniffed, "image/") {
		return Object{}, ErrNotImage
	}

	name := filepath.Base(fileName)
	id, err := s.store.Put(ctx, name, sniffed, bytes.NewReader(body))
	if err != nil {
		return Object{}, err
	}

	obj := Object{
		ID:          id,
		URL:         s.baseURL + "/api/upload/" + id,
		ContentType: sniffed,
		Size:        int64(len(body)),
	}
	if _, err := s.db.Exec(ctx, `
		INSERT INTO uploads (id, user_id, file_name, content_type, size_bytes, url)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, obj.ID, userID, name, obj.ContentType, obj.Size, obj.URL); err != nil {
		return Object{}, err
	}
	metrics.AddUploadBytes(obj.Size)
	return obj, nil
}

func (s *Service) Open(ctx context.Context, id string) (io.ReadCloser, string, error) {
	if !s.Enabled() {
		return nil, "", ErrObjectNotFound
	}
	return s.store.Open(ctx, id)
}
