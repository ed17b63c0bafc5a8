package postgresadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"warden/contexts/trust-safety/reputation-service/domain/entities"
	domainerrors "warden/contexts/trust-safety/reputation-service/domain/errors"
	"warden/contexts/trust-safety/reputation-service/ports"

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

func (r *Repository) GetReputation(ctx context.Context, userID string) (*entities.UserReputation, error) {
	var row reputationModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	reputation := row.toEntity()
	return &reputation, nil
}

func (r *Repository) SaveReputation(ctx context.Context, reputation entities.UserReputation) error {
	row := reputationModelFromEntity(reputation)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(&row).
		Error
}

func (r *Repository) CreateViolation(ctx context.Context, violation entities.UserViolation) error {
	row := violationModelFromEntity(violation)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrInvalidRequest
		}
		return err
	}
	return nil
}

func (r *Repository) GetViolation(ctx context.Context, violationID string) (*entities.UserViolation, error) {
	var row violationModel
	err := r.db.WithContext(ctx).
		Where("violation_id = ?", strings.TrimSpace(violationID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	violation := row.toEntity()
	return &violation, nil
}

func (r *Repository) ListViolations(ctx context.Context, userID string, activeOnly bool, now time.Time) ([]entities.UserViolation, error) {
	tx := r.db.WithContext(ctx).
		Model(&violationModel{}).
		Where("user_id = ?", strings.TrimSpace(userID))
	if activeOnly {
		tx = tx.Where("expired = ?", false).
			Where("expires_at IS NULL OR expires_at > ?", now.UTC())
	}

	var rows []violationModel
	if err := tx.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]entities.UserViolation, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) MarkViolationExpired(ctx context.Context, violationID string) error {
	result := r.db.WithContext(ctx).
		Model(&violationModel{}).
		Where("violation_id = ?", strings.TrimSpace(violationID)).
		Updates(map[string]any{"expired": true})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrViolationNotFound
	}
	return nil
}

func (r *Repository) ListViolationsExpiringBefore(ctx context.Context, cutoff time.Time, limit int) ([]entities.UserViolation, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []violationModel
	if err := r.db.WithContext(ctx).
		Where("expired = ? AND expires_at IS NOT NULL AND expires_at <= ?", false, cutoff.UTC()).
		Order("expires_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]entities.UserViolation, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) CreateSuspension(ctx context.Context, suspension entities.Suspension) error {
	row := suspensionModelFromEntity(suspension)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrInvalidRequest
		}
		return err
	}
	return nil
}

func (r *Repository) GetSuspension(ctx context.Context, suspensionID string) (*entities.Suspension, error) {
	var row suspensionModel
	err := r.db.WithContext(ctx).
		Where("suspension_id = ?", strings.TrimSpace(suspensionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	suspension := row.toEntity()
	return &suspension, nil
}

func (r *Repository) UpdateSuspension(ctx context.Context, suspension entities.Suspension) error {
	row := suspensionModelFromEntity(suspension)
	result := r.db.WithContext(ctx).
		Model(&suspensionModel{}).
		Where("suspension_id = ?", row.SuspensionID).
		Updates(map[string]any{
			"is_active": row.IsActive,
			"end_date":  row.EndDate,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrSuspensionNotFound
	}
	return nil
}

func (r *Repository) ActiveSuspensionForUser(ctx context.Context, userID string, now time.Time) (*entities.Suspension, error) {
	var row suspensionModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", strings.TrimSpace(userID), true).
		Where("end_date IS NULL OR end_date > ?", now.UTC()).
		Order("start_date DESC").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	suspension := row.toEntity()
	return &suspension, nil
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

type reputationModel struct {
	UserID           string    `gorm:"column:user_id;primaryKey"`
	Score            int       `gorm:"column:score"`
	Level            string    `gorm:"column:level"`
	WhisperCount     int       `gorm:"column:whisper_count"`
	ApprovedCount    int       `gorm:"column:approved_count"`
	FlaggedCount     int       `gorm:"column:flagged_count"`
	RejectedCount    int       `gorm:"column:rejected_count"`
	ViolationHistory []byte    `gorm:"column:violation_history"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (reputationModel) TableName() string {
	return "user_reputations"
}

func reputationModelFromEntity(item entities.UserReputation) reputationModel {
	history, err := json.Marshal(item.ViolationHistory)
	if err != nil {
		history = []byte("[]")
	}
	return reputationModel{
		UserID:           strings.TrimSpace(item.UserID),
		Score:            item.Score,
		Level:            string(item.Level),
		WhisperCount:     item.WhisperCount,
		ApprovedCount:    item.ApprovedCount,
		FlaggedCount:     item.FlaggedCount,
		RejectedCount:    item.RejectedCount,
		ViolationHistory: history,
		CreatedAt:        item.CreatedAt.UTC(),
		UpdatedAt:        item.UpdatedAt.UTC(),
	}
}

func (m reputationModel) toEntity() entities.UserReputation {
	history := []string{}
	if len(m.ViolationHistory) > 0 {
		_ = json.Unmarshal(m.ViolationHistory, &history)
	}
	return entities.UserReputation{
		UserID:           m.UserID,
		Score:            m.Score,
		Level:            entities.Level(m.Level),
		WhisperCount:     m.WhisperCount,
		ApprovedCount:    m.ApprovedCount,
		FlaggedCount:     m.FlaggedCount,
		RejectedCount:    m.RejectedCount,
		ViolationHistory: history,
		CreatedAt:        m.CreatedAt.UTC(),
		UpdatedAt:        m.UpdatedAt.UTC(),
	}
}

type violationModel struct {
	ViolationID   string     `gorm:"column:violation_id;primaryKey"`
	UserID        string     `gorm:"column:user_id"`
	WhisperID     string     `gorm:"column:whisper_id"`
	ViolationType string     `gorm:"column:violation_type"`
	Reason        string     `gorm:"column:reason"`
	Severity      string     `gorm:"column:severity"`
	ReportCount   int        `gorm:"column:report_count"`
	ModeratorID   string     `gorm:"column:moderator_id"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	ExpiresAt     *time.Time `gorm:"column:expires_at"`
	Expired       bool       `gorm:"column:expired"`
}

func (violationModel) TableName() string {
	return "user_violations"
}

func violationModelFromEntity(item entities.UserViolation) violationModel {
	return violationModel{
		ViolationID:   strings.TrimSpace(item.ID),
		UserID:        strings.TrimSpace(item.UserID),
		WhisperID:     strings.TrimSpace(item.WhisperID),
		ViolationType: strings.TrimSpace(item.ViolationType),
		Reason:        strings.TrimSpace(item.Reason),
		Severity:      string(item.Severity),
		ReportCount:   item.ReportCount,
		ModeratorID:   strings.TrimSpace(item.ModeratorID),
		CreatedAt:     item.CreatedAt.UTC(),
		ExpiresAt:     normalizeOptionalTime(item.ExpiresAt),
		Expired:       item.Expired,
	}
}

func (m violationModel) toEntity() entities.UserViolation {
	return entities.UserViolation{
		ID:            m.ViolationID,
		UserID:        m.UserID,
		WhisperID:     m.WhisperID,
		ViolationType: m.ViolationType,
		Reason:        m.Reason,
		Severity:      entities.Severity(m.Severity),
		ReportCount:   m.ReportCount,
		ModeratorID:   m.ModeratorID,
		CreatedAt:     m.CreatedAt.UTC(),
		ExpiresAt:     normalizeOptionalTime(m.ExpiresAt),
		Expired:       m.Expired,
	}
}

type suspensionModel struct {
	SuspensionID string     `gorm:"column:suspension_id;primaryKey"`
	UserID       string     `gorm:"column:user_id"`
	Type         string     `gorm:"column:type"`
	BanType      string     `gorm:"column:ban_type"`
	Reason       string     `gorm:"column:reason"`
	ModeratorID  string     `gorm:"column:moderator_id"`
	StartDate    time.Time  `gorm:"column:start_date"`
	EndDate      *time.Time `gorm:"column:end_date"`
	IsActive     bool       `gorm:"column:is_active"`
}

func (suspensionModel) TableName() string {
	return "suspensions"
}

func suspensionModelFromEntity(item entities.Suspension) suspensionModel {
	return suspensionModel{
		SuspensionID: strings.TrimSpace(item.ID),
		UserID:       strings.TrimSpace(item.UserID),
		Type:         string(item.Type),
		BanType:      strings.TrimSpace(item.BanType),
		Reason:       strings.TrimSpace(item.Reason),
		ModeratorID:  strings.TrimSpace(item.ModeratorID),
		StartDate:    item.StartDate.UTC(),
		EndDate:      normalizeOptionalTime(item.EndDate),
		IsActive:     item.IsActive,
	}
}

func (m suspensionModel) toEntity() entities.Suspension {
	return entities.Suspension{
		ID:          m.SuspensionID,
		UserID:      m.UserID,
		Type:        entities.SuspensionType(m.Type),
		BanType:     m.BanType,
		Reason:      m.Reason,
		ModeratorID: m.ModeratorID,
		StartDate:   m.StartDate.UTC(),
		EndDate:     normalizeOptionalTime(m.EndDate),
		IsActive:    m.IsActive,
	}
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
	return "reputation_outbox"
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
