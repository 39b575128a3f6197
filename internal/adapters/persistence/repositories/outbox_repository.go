package repositories

import (
	"context"
	"time"

	"farm-feed/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OutboxRepository handles outbox event data access
type OutboxRepository struct {
	db *gorm.DB
}

// NewOutboxRepository creates a new outbox repository
func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// WithTx returns a copy of the repository bound to a transaction
func (r *OutboxRepository) WithTx(tx *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: tx}
}

// Create creates a new outbox event
func (r *OutboxRepository) Create(ctx context.Context, event *models.OutboxEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// GetDispatchable fetches pending events due for delivery under a row lock,
// skipping rows held by concurrent dispatchers. Must run inside a transaction.
func (r *OutboxRepository) GetDispatchable(ctx context.Context, limit int) ([]*models.OutboxEvent, error) {
	var events []*models.OutboxEvent
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ? AND next_attempt_at <= ?", models.OutboxPending, time.Now()).
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

// MarkSent marks an event as delivered
func (r *OutboxRepository) MarkSent(ctx context.Context, event *models.OutboxEvent) error {
	now := time.Now()
	event.Status = models.OutboxSent
	event.SentAt = &now
	return r.db.WithContext(ctx).Save(event).Error
}

// MarkRetry records a failed delivery attempt and schedules the next one
func (r *OutboxRepository) MarkRetry(ctx context.Context, event *models.OutboxEvent, nextAttempt time.Time, lastError string) error {
	event.Attempts++
	event.NextAttemptAt = nextAttempt
	event.LastError = lastError
	return r.db.WithContext(ctx).Save(event).Error
}

// MarkFailed marks an event as permanently failed
func (r *OutboxRepository) MarkFailed(ctx context.Context, event *models.OutboxEvent, lastError string) error {
	event.Attempts++
	event.Status = models.OutboxFailed
	event.LastError = lastError
	return r.db.WithContext(ctx).Save(event).Error
}

// CountByStatus counts outbox events in a given status
func (r *OutboxRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OutboxEvent{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

// DeleteSentBefore prunes delivered events older than the cutoff
func (r *OutboxRepository) DeleteSentBefore(ctx context.Context, cutoff time.Time) error {
	return r.db.WithContext(ctx).
		Where("status = ? AND sent_at < ?", models.OutboxSent, cutoff).
		Delete(&models.OutboxEvent{}).Error
}
