package postgresadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"warden/contexts/trust-safety/appeal-service/domain/entities"
	domainerrors "warden/contexts/trust-safety/appeal-service/domain/errors"
	"warden/contexts/trust-safety/appeal-service/ports"

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

func (r *Repository) CreateAppeal(ctx context.Context, appeal entities.Appeal) error {
	row := appealModelFromEntity(appeal)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAppealOutstanding
		}
		return err
	}
	return nil
}

func (r *Repository) GetAppeal(ctx context.Context, appealID string) (*entities.Appeal, error) {
	var row appealModel
	err := r.db.WithContext(ctx).
		Where("appeal_id = ?", strings.TrimSpace(appealID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	appeal := row.toEntity()
	return &appeal, nil
}

func (r *Repository) UpdateAppeal(ctx context.Context, appeal entities.Appeal) error {
	row := appealModelFromEntity(appeal)
	result := r.db.WithContext(ctx).
		Model(&appealModel{}).
		Where("appeal_id = ?", row.AppealID).
		Updates(map[string]any{
			"status":                row.Status,
			"updated_at":            row.UpdatedAt,
			"reviewed_at":           row.ReviewedAt,
			"reviewed_by":           row.ReviewedBy,
			"resolution_action":     row.ResolutionAction,
			"resolution_reason":     row.ResolutionReason,
			"resolution_moderator":  row.ResolutionModerator,
			"resolution_adjustment": row.ResolutionAdjustment,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrAppealNotFound
	}
	return nil
}

func (r *Repository) ListAppeals(ctx context.Context, filter ports.AppealFilter) ([]entities.Appeal, error) {
	tx := r.db.WithContext(ctx).Model(&appealModel{})
	if filter.UserID != "" {
		tx = tx.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	}
	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		tx = tx.Offset(filter.Offset)
	}

	var rows []appealModel
	if err := tx.Order("submitted_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]entities.Appeal, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) FindOutstandingAppeal(ctx context.Context, violationID string) (*entities.Appeal, error) {
	var row appealModel
	err := r.db.WithContext(ctx).
		Where("violation_id = ?", strings.TrimSpace(violationID)).
		Where("status IN ?", []string{string(entities.StatusPending), string(entities.StatusUnderReview)}).
		Order("submitted_at DESC").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	appeal := row.toEntity()
	return &appeal, nil
}

func (r *Repository) ListStaleAppeals(ctx context.Context, cutoff time.Time, limit int) ([]entities.Appeal, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []appealModel
	if err := r.db.WithContext(ctx).
		Where("status IN ?", []string{string(entities.StatusPending), string(entities.StatusUnderReview)}).
		Where("submitted_at <= ?", cutoff.UTC()).
		Order("submitted_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]entities.Appeal, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
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

type appealModel struct {
	AppealID             string     `gorm:"column:appeal_id;primaryKey"`
	UserID               string     `gorm:"column:user_id"`
	WhisperID            string     `gorm:"column:whisper_id"`
	ViolationID          string     `gorm:"column:violation_id"`
	Reason               string     `gorm:"column:reason"`
	Evidence             string     `gorm:"column:evidence"`
	Status               string     `gorm:"column:status"`
	SubmittedAt          time.Time  `gorm:"column:submitted_at"`
	UpdatedAt            time.Time  `gorm:"column:updated_at"`
	ReviewedAt           *time.Time `gorm:"column:reviewed_at"`
	ReviewedBy           string     `gorm:"column:reviewed_by"`
	ResolutionAction     string     `gorm:"column:resolution_action"`
	ResolutionReason     string     `gorm:"column:resolution_reason"`
	ResolutionModerator  string     `gorm:"column:resolution_moderator"`
	ResolutionAdjustment int        `gorm:"column:resolution_adjustment"`
}

func (appealModel) TableName() string {
	return "appeals"
}

func appealModelFromEntity(item entities.Appeal) appealModel {
	row := appealModel{
		AppealID:    strings.TrimSpace(item.ID),
		UserID:      strings.TrimSpace(item.UserID),
		WhisperID:   strings.TrimSpace(item.WhisperID),
		ViolationID: strings.TrimSpace(item.ViolationID),
		Reason:      item.Reason,
		Evidence:    item.Evidence,
		Status:      string(item.Status),
		SubmittedAt: item.SubmittedAt.UTC(),
		UpdatedAt:   item.UpdatedAt.UTC(),
		ReviewedAt:  normalizeOptionalTime(item.ReviewedAt),
		ReviewedBy:  strings.TrimSpace(item.ReviewedBy),
	}
	if item.Resolution != nil {
		row.ResolutionAction = string(item.Resolution.Action)
		row.ResolutionReason = item.Resolution.Reason
		row.ResolutionModerator = item.Resolution.ModeratorID
		row.ResolutionAdjustment = item.Resolution.ReputationAdjustment
	}
	return row
}

func (m appealModel) toEntity() entities.Appeal {
	appeal := entities.Appeal{
		ID:          m.AppealID,
		UserID:      m.UserID,
		WhisperID:   m.WhisperID,
		ViolationID: m.ViolationID,
		Reason:      m.Reason,
		Evidence:    m.Evidence,
		Status:      entities.Status(m.Status),
		SubmittedAt: m.SubmittedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
		ReviewedAt:  normalizeOptionalTime(m.ReviewedAt),
		ReviewedBy:  m.ReviewedBy,
	}
	if m.ResolutionAction != "" {
		appeal.Resolution = &entities.Resolution{
			Action:               entities.ResolutionAction(m.ResolutionAction),
			Reason:               m.ResolutionReason,
			ModeratorID:          m.ResolutionModerator,
			ReputationAdjustment: m.ResolutionAdjustment,
		}
	}
	return appeal
}

type idempotencyModel struct {
	Key             string    `gorm:"column:key;primaryKey"`
	RequestHash     string    `gorm:"column:request_hash"`
	ResponsePayload []byte    `gorm:"column:response_payload"`
	ExpiresAt       time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string {
	return "appeal_idempotency_keys"
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
	return "appeal_outbox"
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
