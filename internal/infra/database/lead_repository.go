package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/xavierca1/voyage-leads/internal/entity"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var leadColumns = []string{
	"id", "external_id", "source", "name", "email", "phone",
	"departure_city", "destination_city", "travel_dates", "passengers",
	"airline_preference", "special_requirements", "summary", "transcript", "language",
	"ai_summary", "lead_score", "score_reasoning", "enriched_at", "created_at",
}

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

// Save appends the lead. created_at is assigned by the database and written
// back onto lead.
func (r *LeadRepository) Save(ctx context.Context, lead *entity.StoredLead) (string, error) {
	var language *string
	if lead.Language != nil {
		s := string(*lead.Language)
		language = &s
	}

	query, args, err := psql.Insert("leads").
		Columns(
			"external_id", "source", "name", "email", "phone",
			"departure_city", "destination_city", "travel_dates", "passengers",
			"airline_preference", "special_requirements", "summary", "transcript", "language",
		).
		Values(
			nullString(lead.ExternalID), string(lead.Source), nullString(lead.Name),
			nullString(lead.Email), nullString(lead.Phone),
			nullString(lead.DepartureCity), nullString(lead.DestinationCity),
			nullString(lead.TravelDates), nullInt(lead.Passengers),
			nullString(lead.AirlinePreference), nullString(lead.SpecialRequirements),
			lead.Summary, lead.Transcript, nullString(language),
		).
		Suffix("ON CONFLICT (external_id) DO NOTHING RETURNING id, created_at").
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build insert: %w", err)
	}

	var id string
	var createdAt time.Time
	err = r.DB.QueryRowContext(ctx, query, args...).Scan(&id, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", entity.ErrLeadAlreadyStored
		}
		return "", classify("save lead", err)
	}

	lead.CreatedAt = createdAt
	return id, nil
}

func (r *LeadRepository) List(ctx context.Context, limit int) ([]entity.LeadRecord, error) {
	query, args, err := psql.Select(leadColumns...).
		From("leads").
		OrderBy("created_at DESC", "seq DESC").
		Limit(uint64(entity.ClampListLimit(limit))).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("list leads", err)
	}
	defer rows.Close()

	leads := make([]entity.LeadRecord, 0)
	for rows.Next() {
		rec, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list leads", err)
	}
	return leads, nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.LeadRecord, error) {
	query, args, err := psql.Select(leadColumns...).
		From("leads").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find: %w", err)
	}

	rec, err := scanLead(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrLeadNotFound
		}
		return nil, classify("find lead", err)
	}
	return rec, nil
}

// UpdateEnrichment writes only the patch columns and stamps enriched_at.
func (r *LeadRepository) UpdateEnrichment(ctx context.Context, id string, patch entity.EnrichmentPatch) error {
	if patch.IsEmpty() {
		return nil
	}

	b := psql.Update("leads").
		Set("enriched_at", sq.Expr("clock_timestamp()")).
		Where(sq.Eq{"id": id})
	if patch.AISummary != nil {
		b = b.Set("ai_summary", *patch.AISummary)
	}
	if patch.LeadScore != nil {
		b = b.Set("lead_score", *patch.LeadScore)
	}
	if patch.ScoreReasoning != nil {
		b = b.Set("score_reasoning", *patch.ScoreReasoning)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return classify("update enrichment", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update enrichment: %w", err)
	}
	if n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

func (r *LeadRepository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

func (r *LeadRepository) Close(context.Context) error {
	return r.DB.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.LeadRecord, error) {
	var (
		rec                                 entity.LeadRecord
		externalID, name, email, phone      sql.NullString
		departure, destination, travelDates sql.NullString
		airline, special, language          sql.NullString
		aiSummary, reasoning                sql.NullString
		passengers                          sql.NullInt64
		score                               sql.NullFloat64
		enrichedAt                          sql.NullTime
		source                              string
	)

	err := row.Scan(
		&rec.ID, &externalID, &source, &name, &email, &phone,
		&departure, &destination, &travelDates, &passengers,
		&airline, &special, &rec.Summary, &rec.Transcript, &language,
		&aiSummary, &score, &reasoning, &enrichedAt, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Source = entity.LeadSource(source)
	rec.ExternalID = stringPtr(externalID)
	rec.Name = stringPtr(name)
	rec.Email = stringPtr(email)
	rec.Phone = stringPtr(phone)
	rec.DepartureCity = stringPtr(departure)
	rec.DestinationCity = stringPtr(destination)
	rec.TravelDates = stringPtr(travelDates)
	rec.AirlinePreference = stringPtr(airline)
	rec.SpecialRequirements = stringPtr(special)
	rec.AISummary = stringPtr(aiSummary)
	rec.ScoreReasoning = stringPtr(reasoning)

	if passengers.Valid {
		n := int(passengers.Int64)
		rec.Passengers = &n
	}
	if language.Valid {
		if lang, ok := entity.ParseLanguage(language.String); ok {
			rec.Language = &lang
		}
	}
	if score.Valid {
		rec.LeadScore = &score.Float64
	}
	if enrichedAt.Valid {
		rec.EnrichedAt = &enrichedAt.Time
	}
	return &rec, nil
}

// classify maps driver errors onto the store sentinels.
func classify(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "22P02" {
		return entity.ErrLeadNotFound
	}

	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w: %w", op, entity.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
