package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emizp/IFCAtom/internal/registry"
	"github.com/emizp/IFCAtom/internal/store/model"
)

type Job interface {
	InitialMigration() error
	List(ctx context.Context) ([]registry.Job, error)
	Get(ctx context.Context, id string) (*registry.Job, error)
	Upsert(ctx context.Context, job registry.Job) error
	UpdateSelection(ctx context.Context, id string, selected bool) error
	UpdateCategory(ctx context.Context, id string, category registry.Category) error
	DeleteAll(ctx context.Context) error
}

type JobStore struct {
	db *gorm.DB
}

// Make sure we conform to Job interface
var _ Job = (*JobStore)(nil)

func NewJob(db *gorm.DB) Job {
	return &JobStore{db: db}
}

func (s *JobStore) InitialMigration() error {
	return s.db.AutoMigrate(&model.Job{})
}

func (s *JobStore) List(ctx context.Context) ([]registry.Job, error) {
	var jobs model.JobList
	result := s.db.WithContext(ctx).Order("position").Find(&jobs)
	if result.Error != nil {
		return nil, result.Error
	}
	return jobs.ToTracked(), nil
}

func (s *JobStore) Get(ctx context.Context, id string) (*registry.Job, error) {
	job := model.Job{ID: id}
	result := s.db.WithContext(ctx).First(&job)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	tracked := job.ToTracked()
	return &tracked, nil
}

// Upsert writes the full job record, replacing any existing row with
// the same id. It is the write side of the registry's change feed, so
// it must accept both brand-new jobs and in-place updates.
func (s *JobStore) Upsert(ctx context.Context, job registry.Job) error {
	record := model.NewJobFromTracked(job)
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"filename", "schema", "software", "status", "error",
			"csv_path", "json_path", "selected", "category", "updated_at",
		}),
	}).Create(&record)
	return result.Error
}

func (s *JobStore) UpdateSelection(ctx context.Context, id string, selected bool) error {
	return s.updateColumn(ctx, id, "selected", selected)
}

func (s *JobStore) UpdateCategory(ctx context.Context, id string, category registry.Category) error {
	return s.updateColumn(ctx, id, "category", string(category))
}

func (s *JobStore) updateColumn(ctx context.Context, id string, column string, value any) error {
	result := s.db.WithContext(ctx).Model(&model.Job{ID: id}).Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *JobStore) DeleteAll(ctx context.Context) error {
	result := s.db.WithContext(ctx).Exec("DELETE FROM jobs")
	return result.Error
}
