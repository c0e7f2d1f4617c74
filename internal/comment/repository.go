package comment

import (
	"gorm.io/gorm"

	"github.com/nippoworks/api-nippo/internal/models"
)

type Repository interface {
	Create(db *gorm.DB, c *models.Comment) error
	FindByID(db *gorm.DB, id uint) (*models.Comment, error)
	ListByReport(db *gorm.DB, reportID uint) ([]models.Comment, error)
	Delete(db *gorm.DB, id uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Create(db *gorm.DB, c *models.Comment) error {
	return db.Create(c).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*models.Comment, error) {
	var c models.Comment
	err := db.First(&c, id).Error
	return &c, err
}

func (r *repositoryImpl) ListByReport(db *gorm.DB, reportID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := db.Where("report_id = ?", reportID).Order("created_at").Find(&comments).Error
	return comments, err
}

func (r *repositoryImpl) Delete(db *gorm.DB, id uint) error {
	return db.Delete(&models.Comment{}, id).Error
}
