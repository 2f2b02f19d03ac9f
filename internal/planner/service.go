package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dilhara2002/lak-travelers-sub000/internal/db"
	"github.com/Dilhara2002/lak-travelers-sub000/internal/metrics"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/patrickmn/go-cache"
)

const (
	maxDurationDays = 30
	cacheTTL        = time.Hour
	maxPromptRoutes = 8
)

var (
	ErrUnavailable = errors.New("AI planner is not configured")
	ErrNotFound    = errors.New("plan not found")
	ErrInvalid     = errors.New("location and durationDays (1-30) are required")
	ErrEmptyChat   = errors.New("message is required")
)

const systemPrompt = `You are a Sri Lanka travel planner. Answer with practical, day-by-day advice.
Keep travel times realistic for Sri Lankan roads and mention distances when they matter.`

type Plan struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Location     string    `json:"location"`
	DurationDays int       `json:"durationDays"`
	Preferences  string    `json:"preferences"`
	Itinerary    string    `json:"itinerary"`
	CreatedAt    time.Time `json:"createdAt"`
}

type PlanRequest struct {
	Location     string `json:"location"`
	DurationDays int    `json:"durationDays"`
	Preferences  string `json:"preferences"`
}

type ChatRequest struct {
	Message string    `json:"message"`
	History []Message `json:"history"`
}

type Service struct {
	db     db.Querier
	gen    Generator
	table  *DistanceTable
	cache  *cache.Cache
	logger *slog.Logger
}

// NewService builds the planner. gen may be nil, in which case Plan and Chat
// report ErrUnavailable while the stored plans and distances keep working.
func NewService(db db.Querier, gen Generator, table *DistanceTable, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:     db,
		gen:    gen,
		table:  table,
		cache:  cache.New(cacheTTL, 10*time.Minute),
		logger: logger,
	}
}

func (s *Service) Plan(ctx context.Context, userID string, req PlanRequest) (Plan, error) {
	req.Location = strings.TrimSpace(req.Location)
	req.Preferences = strings.TrimSpace(req.Preferences)
	if req.Location == "" || req.DurationDays < 1 || req.DurationDays > maxDurationDays {
		return Plan{}, ErrInvalid
	}
	if s.gen == nil {
		return Plan{}, ErrUnavailable
	}

	key := cacheKey(req)
	itinerary, ok := s.cachedItinerary(key)
	if ok {
		metrics.IncPlanner("cached")
	} else {
		text, err := s.gen.Generate(ctx, systemPrompt, nil, s.planPrompt(req))
		if err != nil {
			metrics.IncPlanner("error")
			s.logger.ErrorContext(ctx, "plan generation failed",
				slog.String("location", req.Location),
				slog.Any("error", err))
			return Plan{}, fmt.Errorf("generate plan: %w", err)
		}
		metrics.IncPlanner("generated")
		itinerary = text
		s.cache.Set(key, itinerary, cache.DefaultExpiration)
	}

	p := Plan{
		ID:           uuid.NewString(),
		UserID:       userID,
		Location:     req.Location,
		DurationDays: req.DurationDays,
		Preferences:  req.Preferences,
		Itinerary:    itinerary,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO plans (id, user_id, location, duration_days, preferences, itinerary)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, p.ID, p.UserID, p.Location, p.DurationDays, p.Preferences, p.Itinerary)
	if err := row.Scan(&p.CreatedAt); err != nil {
		return Plan{}, err
	}
	return p, nil
}

func (s *Service) Chat(ctx context.Context, req ChatRequest) (string, error) {
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return "", ErrEmptyChat
	}
	if s.gen == nil {
		return "", ErrUnavailable
	}
	reply, err := s.gen.Generate(ctx, systemPrompt, req.History, msg)
	if err != nil {
		s.logger.ErrorContext(ctx, "chat generation failed", slog.Any("error", err))
		return "", fmt.Errorf("chat: %w", err)
	}
	return reply, nil
}

func (s *Service) ListPlans(ctx context.Context, userID string) ([]Plan, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, location, duration_days, preferences, itinerary, created_at
		FROM plans WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := []Plan{}
	for rows.Next() {
		var p Plan
		if err := rows.Scan(&p.ID, &p.UserID, &p.Location, &p.DurationDays, &p.Preferences, &p.Itinerary, &p.CreatedAt); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// GetPlan only returns plans owned by userID; anything else is not found.
func (s *Service) GetPlan(ctx context.Context, id, userID string) (Plan, error) {
	var p Plan
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, location, duration_days, preferences, itinerary, created_at
		FROM plans WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(&p.ID, &p.UserID, &p.Location, &p.DurationDays, &p.Preferences, &p.Itinerary, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Plan{}, ErrNotFound
	}
	return p, err
}

func (s *Service) DeletePlan(ctx context.Context, id, userID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM plans WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) Distance(from, to string) (Route, error) {
	return s.table.Distance(from, to)
}

func (s *Service) cachedItinerary(key string) (string, bool) {
	v, ok := s.cache.Get(key)
	if !ok {
		return "", false
	}
	text, ok := v.(string)
	return text, ok
}

func (s *Service) planPrompt(req PlanRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a %d-day travel itinerary starting in %s, Sri Lanka.\n", req.DurationDays, req.Location)
	if req.Preferences != "" {
		fmt.Fprintf(&b, "Traveller preferences: %s.\n", req.Preferences)
	}

	if s.table != nil {
		if routes := s.table.From(req.Location); len(routes) > 0 {
			if len(routes) > maxPromptRoutes {
				routes = routes[:maxPromptRoutes]
			}
			b.WriteString("Road distances from the starting point:\n")
			for _, r := range routes {
				suffix := ""
				if r.Estimated {
					suffix = " (approx.)"
				}
				fmt.Fprintf(&b, "- %s: %.0f km%s\n", r.To, r.Km, suffix)
			}
		}
	}
	b.WriteString("For each day list the places to visit, travel time between them and a suggested stay.")
	return b.String()
}

func cacheKey(req PlanRequest) string {
	return fmt.Sprintf("%s|%d|%s", cityKey(req.Location), req.DurationDays, strings.ToLower(req.Preferences))
}
