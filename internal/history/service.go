package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200

	// timeLayout is fixed-width so stored timestamps compare correctly as
	// strings in SQL.
	timeLayout = "2006-01-02 15:04:05.000"
)

// Service provides activity log management.
type Service struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewService creates a new history service.
func NewService(db *sql.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("component", "history").Logger(),
	}
}

// Create creates a new history entry.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Entry, error) {
	entry := &Entry{
		ID:        uuid.New().String(),
		EventType: input.EventType,
		Query:     input.Query,
		Results:   input.Results,
		Data:      input.Data,
		CreatedAt: time.Now().UTC(),
	}

	var dataJSON sql.NullString
	if input.Data != nil {
		encoded, err := json.Marshal(input.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to encode entry data: %w", err)
		}
		dataJSON = sql.NullString{String: string(encoded), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history (id, event_type, query, results, data, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, string(entry.EventType), entry.Query, entry.Results, dataJSON,
		entry.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert history entry: %w", err)
	}
	return entry, nil
}

// List returns paginated history entries, newest first.
func (s *Service) List(ctx context.Context, opts ListOptions) (*ListResponse, error) {
	page := opts.Page
	if page < 1 {
		page = 1
	}
	pageSize := opts.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	where := ""
	args := []any{}
	if opts.EventType != "" {
		where = " WHERE event_type = ?"
		args = append(args, opts.EventType)
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM history"+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count history: %w", err)
	}

	query := "SELECT id, event_type, query, results, data, created_at FROM history" +
		where + " ORDER BY created_at DESC, id LIMIT ? OFFSET ?"
	rows, err := s.db.QueryContext(ctx, query, append(args, pageSize, (page-1)*pageSize)...)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	items := make([]*Entry, 0, pageSize)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history rows: %w", err)
	}

	return &ListResponse{
		Items:      items,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// DeleteAll removes every history entry.
func (s *Service) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM history"); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Cleanup deletes entries older than the retention window and returns how
// many were removed. A non-positive retention disables cleanup.
func (s *Service) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Format(timeLayout)
	result, err := s.db.ExecContext(ctx, "DELETE FROM history WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up history: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count removed entries: %w", err)
	}
	if removed > 0 {
		s.logger.Info().Int64("removed", removed).Int("retentionDays", retentionDays).Msg("History cleaned up")
	}
	return removed, nil
}

// RecordRecommendation logs a completed recommendation request. Failures are
// logged and swallowed so the request path never depends on the log.
func (s *Service) RecordRecommendation(ctx context.Context, prompt, mediaType string, results int) {
	_, err := s.Create(ctx, CreateInput{
		EventType: EventTypeRecommendation,
		Query:     prompt,
		Results:   results,
		Data:      map[string]any{"mediaType": mediaType},
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to record recommendation")
	}
}

// RecordCreditSearch logs a completed credit search.
func (s *Service) RecordCreditSearch(ctx context.Context, person string, results int) {
	_, err := s.Create(ctx, CreateInput{
		EventType: EventTypeCredits,
		Query:     person,
		Results:   results,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to record credit search")
	}
}

// RecordAddition logs a completed collection addition.
func (s *Service) RecordAddition(ctx context.Context, title, service string, alreadyExists bool) {
	_, err := s.Create(ctx, CreateInput{
		EventType: EventTypeAddition,
		Query:     title,
		Results:   1,
		Data: map[string]any{
			"service":       service,
			"alreadyExists": alreadyExists,
		},
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to record addition")
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var (
		entry     Entry
		eventType string
		data      sql.NullString
		createdAt string
	)
	if err := row.Scan(&entry.ID, &eventType, &entry.Query, &entry.Results, &data, &createdAt); err != nil {
		return nil, fmt.Errorf("failed to scan history entry: %w", err)
	}
	entry.EventType = EventType(eventType)
	if data.Valid {
		if err := json.Unmarshal([]byte(data.String), &entry.Data); err != nil {
			return nil, fmt.Errorf("failed to decode entry data: %w", err)
		}
	}
	parsed, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse entry timestamp: %w", err)
	}
	entry.CreatedAt = parsed
	return &entry, nil
}
