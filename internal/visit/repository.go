package visit

import (
	"gorm.io/gorm"

	"github.com/nippoworks/api-nippo/internal/models"
)

type Repository interface {
	Create(db *gorm.DB, v *models.VisitRecord) error
	FindByID(db *gorm.DB, id uint) (*models.VisitRecord, error)
	ListByReport(db *gorm.DB, reportID uint) ([]models.VisitRecord, error)
	Update(db *gorm.DB, v *models.VisitRecord) error
	Delete(db *gorm.DB, id uint) error
	CustomerExists(db *gorm.DB, customerID uint) (bool, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Create(db *gorm.DB, v *models.VisitRecord) error {
	return db.Create(v).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*models.VisitRecord, error) {
	var v models.VisitRecord
	err := db.Preload("Customer").First(&v, id).Error
	return &v, err
}

func (r *repositoryImpl) ListByReport(db *gorm.DB, reportID uint) ([]models.VisitRecord, error) {
	var visits []models.VisitRecord
	err := db.Preload("Customer").Where("report_id = ?", reportID).Order("id").Find(&visits).Error
	return visits, err
}

func (r *repositoryImpl) Update(db *gorm.DB, v *models.VisitRecord) error {
	return db.Save(v).Error
}

func (r *repositoryImpl) Delete(db *gorm.DB, id uint) error {
	return db.Delete(&models.VisitRecord{}, id).Error
}

func (r *repositoryImpl) CustomerExists(db *gorm.DB, customerID uint) (bool, error) {
	var n int64
	err := db.Model(&models.Customer{}).Where("id = ?", customerID).Count(&n).Error
	return n > 0, err
}
