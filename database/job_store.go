package database

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tradie-match-server/models"
)

type JobStore struct {
	db *gorm.DB
}

func NewJobStore(db *gorm.DB) *JobStore {
	return &JobStore{db: db}
}

func (s *JobStore) Create(ctx context.Context, job *models.Job) error {
	return s.db.WithContext(ctx).Create(job).Error
}

func (s *JobStore) FindByID(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	if err := s.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "job", id)
	}
	return &job, nil
}

// Save writes every column. Concurrent saves of the same job are
// last-write-wins.
func (s *JobStore) Save(ctx context.Context, job *models.Job) error {
	return s.db.WithContext(ctx).Save(job).Error
}

// SaveIfStatus writes job only while the stored row is still in status from.
// It reports whether the row was written.
func (s *JobStore) SaveIfStatus(ctx context.Context, job *models.Job, from models.JobStatus) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(job).
		Where("status = ?", from).
		Select("*").
		Updates(job)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// RecordReview stores review and sets only the reviewer's flag on the job,
// in one transaction. The job is then re-read under a row lock and, if both
// parties have now reviewed it, archive is applied and the archive columns
// written. The stored job is returned.
func (s *JobStore) RecordReview(ctx context.Context, review *models.Review, archive func(*models.Job)) (*models.Job, error) {
	flag := "client_reviewed"
	if review.ReviewerRole == models.ReviewerTradie {
		flag = "tradie_reviewed"
	}

	var job models.Job
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(review).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Job{}).Where("id = ?", review.JobID).Update(flag, true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFound(gorm.ErrRecordNotFound, "job", review.JobID)
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&job, "id = ?", review.JobID).Error; err != nil {
			return err
		}
		if job.Archived || !job.ClientReviewed || !job.TradieReviewed {
			return nil
		}
		archive(&job)
		return tx.Model(&job).
			Select("archived", "awaiting_review", "archived_at", "invoice_id").
			Updates(&job).Error
	})
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// ListForAccount returns every job the account is a party to, newest first.
func (s *JobStore) ListForAccount(ctx context.Context, accountID string) ([]models.Job, error) {
	var jobs []models.Job
	err := s.db.WithContext(ctx).
		Where("client_id = ? OR tradie_id = ?", accountID, accountID).
		Order("updated_at DESC").
		Find(&jobs).Error
	return jobs, err
}

// ListPaidBefore returns PaymentComplete jobs paid at or before cutoff.
func (s *JobStore) ListPaidBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Job, error) {
	var jobs []models.Job
	err := s.db.WithContext(ctx).
		Where("status = ? AND payment_completed_at <= ?", models.JobStatusPaymentComplete, cutoff).
		Order("payment_completed_at ASC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}
