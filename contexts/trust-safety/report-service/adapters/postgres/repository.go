package postgresadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"warden/contexts/trust-safety/report-service/domain/entities"
	domainerrors "warden/contexts/trust-safety/report-service/domain/errors"
	"warden/contexts/trust-safety/report-service/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) CreateReport(ctx context.Context, report entities.Report) error {
	row := reportModelFromEntity(report)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrInvalidRequest
		}
		return err
	}
	return nil
}

func (r *Repository) GetReport(ctx context.Context, reportID string) (*entities.Report, error) {
	var row reportModel
	err := r.db.WithContext(ctx).
		Where("report_id = ?", strings.TrimSpace(reportID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	report := row.toEntity()
	return &report, nil
}

func (r *Repository) UpdateReport(ctx context.Context, report entities.Report) error {
	row := reportModelFromEntity(report)
	result := r.db.WithContext(ctx).
		Model(&reportModel{}).
		Where("report_id = ?", row.ReportID).
		Updates(map[string]any{
			"priority":        row.Priority,
			"status":          row.Status,
			"reason":          row.Reason,
			"report_count":    row.ReportCount,
			"escalated_count": row.EscalatedCount,
			"updated_at":      row.UpdatedAt,
			"reviewed_at":     row.ReviewedAt,
			"reviewed_by":     row.ReviewedBy,
			"resolution":      row.Resolution,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrReportNotFound
	}
	return nil
}

func (r *Repository) ListReports(ctx context.Context, filter ports.ReportFilter) ([]entities.Report, error) {
	tx := r.db.WithContext(ctx).Model(&reportModel{})
	if filter.TargetID != "" {
		tx = tx.Where("target_id = ?", filter.TargetID)
	}
	if filter.ReporterID != "" {
		tx = tx.Where("reporter_id = ?", filter.ReporterID)
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	}
	if filter.Category != "" {
		tx = tx.Where("category = ?", string(filter.Category))
	}
	if filter.Priority != "" {
		tx = tx.Where("priority = ?", string(filter.Priority))
	}
	if !filter.From.IsZero() {
		tx = tx.Where("created_at >= ?", filter.From.UTC())
	}
	if !filter.To.IsZero() {
		tx = tx.Where("created_at <= ?", filter.To.UTC())
	}
	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		tx = tx.Offset(filter.Offset)
	}

	var rows []reportModel
	if err := tx.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]entities.Report, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ListReportsByTarget(ctx context.Context, targetID string) ([]entities.Report, error) {
	return r.ListReports(ctx, ports.ReportFilter{TargetID: strings.TrimSpace(targetID)})
}

func (r *Repository) FindActiveReport(ctx context.Context, targetID string, reporterID string, category entities.Category) (*entities.Report, error) {
	var row reportModel
	err := r.db.WithContext(ctx).
		Where("target_id = ? AND reporter_id = ? AND category = ?",
			strings.TrimSpace(targetID), strings.TrimSpace(reporterID), string(category)).
		Where("status NOT IN ?", []string{string(entities.StatusResolved), string(entities.StatusDismissed)}).
		Order("created_at DESC").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	report := row.toEntity()
	return &report, nil
}

func (r *Repository) ListRecentTargets(ctx context.Context, since time.Time, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 100
	}
	var targets []string
	if err := r.db.WithContext(ctx).
		Model(&reportModel{}).
		Distinct("target_id").
		Where("updated_at >= ?", since.UTC()).
		Limit(limit).
		Pluck("target_id", &targets).
		Error; err != nil {
		return nil, err
	}
	return targets, nil
}

func (r *Repository) GetRecord(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	var row idempotencyModel
	err := r.db.WithContext(ctx).
		Where("key = ?", strings.TrimSpace(key)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, err
	}
	if !row.ExpiresAt.IsZero() && row.ExpiresAt.UTC().Before(now.UTC()) {
		if err := r.db.WithContext(ctx).
			Where("key = ?", row.Key).
			Delete(&idempotencyModel{}).
			Error; err != nil {
			return ports.IdempotencyRecord{}, false, err
		}
		return ports.IdempotencyRecord{}, false, nil
	}

	return ports.IdempotencyRecord{
		Key:             row.Key,
		RequestHash:     row.RequestHash,
		ResponsePayload: append([]byte(nil), row.ResponsePayload...),
		ExpiresAt:       row.ExpiresAt.UTC(),
	}, true, nil
}

func (r *Repository) PutRecord(ctx context.Context, record ports.IdempotencyRecord) error {
	row := idempotencyModel{
		Key:             strings.TrimSpace(record.Key),
		RequestHash:     record.RequestHash,
		ResponsePayload: append([]byte(nil), record.ResponsePayload...),
		ExpiresAt:       record.ExpiresAt.UTC(),
	}
	createResult := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoNothing: true,
		}).
		Create(&row)
	if createResult.Error != nil {
		return createResult.Error
	}
	if createResult.RowsAffected > 0 {
		return nil
	}

	var existing idempotencyModel
	if err := r.db.WithContext(ctx).
		Where("key = ?", row.Key).
		First(&existing).
		Error; err != nil {
		return err
	}
	if existing.RequestHash != row.RequestHash || !bytes.Equal(existing.ResponsePayload, row.ResponsePayload) {
		return domainerrors.ErrIdempotencyConflict
	}
	return nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}

	createResult := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "outbox_id"}},
			DoNothing: true,
		}).
		Create(&row)
	if createResult.Error != nil {
		return createResult.Error
	}
	if createResult.RowsAffected > 0 {
		return nil
	}

	var existing outboxModel
	if err := r.db.WithContext(ctx).
		Select("payload").
		Where("outbox_id = ?", row.OutboxID).
		First(&existing).
		Error; err != nil {
		return err
	}
	if !bytes.Equal(existing.Payload, row.Payload) {
		return domainerrors.ErrInvalidRequest
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrInvalidRequest
	}
	return nil
}

type reportModel struct {
	ReportID         string     `gorm:"column:report_id;primaryKey"`
	TargetType       string     `gorm:"column:target_type"`
	TargetID         string     `gorm:"column:target_id"`
	TargetAuthorID   string     `gorm:"column:target_author_id"`
	ReporterID       string     `gorm:"column:reporter_id"`
	ReporterLevel    string     `gorm:"column:reporter_level"`
	Category         string     `gorm:"column:category"`
	Priority         string     `gorm:"column:priority"`
	Status           string     `gorm:"column:status"`
	Reason           string     `gorm:"column:reason"`
	Evidence         string     `gorm:"column:evidence"`
	ReputationWeight float64    `gorm:"column:reputation_weight"`
	ReportCount      int        `gorm:"column:report_count"`
	EscalatedCount   int        `gorm:"column:escalated_count"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
	ReviewedAt       *time.Time `gorm:"column:reviewed_at"`
	ReviewedBy       string     `gorm:"column:reviewed_by"`
	Resolution       string     `gorm:"column:resolution"`
}

func (reportModel) TableName() string {
	return "reports"
}

func reportModelFromEntity(item entities.Report) reportModel {
	return reportModel{
		ReportID:         strings.TrimSpace(item.ID),
		TargetType:       string(item.TargetType),
		TargetID:         strings.TrimSpace(item.TargetID),
		TargetAuthorID:   strings.TrimSpace(item.TargetAuthorID),
		ReporterID:       strings.TrimSpace(item.ReporterID),
		ReporterLevel:    strings.TrimSpace(item.ReporterLevel),
		Category:         string(item.Category),
		Priority:         string(item.Priority),
		Status:           string(item.Status),
		Reason:           item.Reason,
		Evidence:         item.Evidence,
		ReputationWeight: item.ReputationWeight,
		ReportCount:      item.ReportCount,
		EscalatedCount:   item.EscalatedCount,
		CreatedAt:        item.CreatedAt.UTC(),
		UpdatedAt:        item.UpdatedAt.UTC(),
		ReviewedAt:       normalizeOptionalTime(item.ReviewedAt),
		ReviewedBy:       strings.TrimSpace(item.ReviewedBy),
		Resolution:       item.Resolution,
	}
}

func (m reportModel) toEntity() entities.Report {
	return entities.Report{
		ID:               m.ReportID,
		TargetType:       entities.TargetType(m.TargetType),
		TargetID:         m.TargetID,
		TargetAuthorID:   m.TargetAuthorID,
		ReporterID:       m.ReporterID,
		ReporterLevel:    m.ReporterLevel,
		Category:         entities.Category(m.Category),
		Priority:         entities.Priority(m.Priority),
		Status:           entities.Status(m.Status),
		Reason:           m.Reason,
		Evidence:         m.Evidence,
		ReputationWeight: m.ReputationWeight,
		ReportCount:      m.ReportCount,
		EscalatedCount:   m.EscalatedCount,
		CreatedAt:        m.CreatedAt.UTC(),
		UpdatedAt:        m.UpdatedAt.UTC(),
		ReviewedAt:       normalizeOptionalTime(m.ReviewedAt),
		ReviewedBy:       m.ReviewedBy,
		Resolution:       m.Resolution,
	}
}

type idempotencyModel struct {
	Key             string    `gorm:"column:key;primaryKey"`
	RequestHash     string    `gorm:"column:request_hash"`
	ResponsePayload []byte    `gorm:"column:response_payload"`
	ExpiresAt       time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string {
	return "report_idempotency_keys"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "report_outbox"
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
