package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-activity-export/internal/models"
)

// ErrActivityNotFound indicates no mirrored activity matched the query.
var ErrActivityNotFound = errors.New("activity not found")

// ActivityRepository persists the mirrored activity list.
type ActivityRepository interface {
	ReplaceAll(ctx context.Context, items []models.Activity) (int64, error)
	List(ctx context.Context) ([]models.Activity, error)
	LatestByKeywords(ctx context.Context, keywords ...string) (*models.Activity, error)
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository constructs the activity repository.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

// ReplaceAll swaps the stored list for items in a single transaction, keeping the given order. items is not modified.
func (r *activityRepository) ReplaceAll(ctx context.Context, items []models.Activity) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Activity{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		rows := make([]models.Activity, len(items))
		copy(rows, items)
		for i := range rows {
			rows[i].ID = 0
			rows[i].Position = i
		}
		result := tx.Create(&rows)
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

func (r *activityRepository) List(ctx context.Context) ([]models.Activity, error) {
	var items []models.Activity
	if err := r.db.WithContext(ctx).Order("position ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// LatestByKeywords returns the most recent activity whose name contains every keyword, case-insensitively.
func (r *activityRepository) LatestByKeywords(ctx context.Context, keywords ...string) (*models.Activity, error) {
	query := r.db.WithContext(ctx).Model(&models.Activity{})
	for _, keyword := range keywords {
		trimmed := strings.ToLower(strings.TrimSpace(keyword))
		if trimmed == "" {
			continue
		}
		query = query.Where("LOWER(name) LIKE ?", "%"+trimmed+"%")
	}

	var item models.Activity
	if err := query.Order("date DESC").First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}
	return &item, nil
}
