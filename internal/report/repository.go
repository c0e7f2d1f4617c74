package report

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nippoworks/api-nippo/internal/models"
)

type Repository interface {
	Create(db *gorm.DB, r *models.DailyReport) error
	FindByID(db *gorm.DB, id uint) (*models.DailyReport, error)
	ListByOwner(db *gorm.DB, ownerID uint, page, perPage int) ([]models.DailyReport, int64, error)
	Update(db *gorm.DB, r *models.DailyReport) error
	Delete(db *gorm.DB, id uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (repo *repositoryImpl) Create(db *gorm.DB, r *models.DailyReport) error {
	return db.Create(r).Error
}

func (repo *repositoryImpl) FindByID(db *gorm.DB, id uint) (*models.DailyReport, error) {
	var r models.DailyReport
	err := db.
		Preload("Visits.Customer").
		Preload("Visits", func(db *gorm.DB) *gorm.DB { return db.Order("visit_records.id") }).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("comments.created_at") }).
		First(&r, id).Error
	return &r, err
}

func (repo *repositoryImpl) ListByOwner(db *gorm.DB, ownerID uint, page, perPage int) ([]models.DailyReport, int64, error) {
	base := db.Model(&models.DailyReport{}).Where("sales_person_id = ?", ownerID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []models.DailyReport
	err := base.
		Preload("Visits.Customer").
		Order("report_date DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&reports).Error
	return reports, total, err
}

// Update writes the report row only; preloaded visits and comments are not
// re-saved as a side effect.
func (repo *repositoryImpl) Update(db *gorm.DB, r *models.DailyReport) error {
	return db.Omit(clause.Associations).Save(r).Error
}

func (repo *repositoryImpl) Delete(db *gorm.DB, id uint) error {
	return db.Delete(&models.DailyReport{}, id).Error
}
