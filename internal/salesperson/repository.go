package salesperson

import (
	"gorm.io/gorm"

	"github.com/nippoworks/api-nippo/internal/models"
)

type Repository interface {
	Create(db *gorm.DB, sp *models.SalesPerson) error
	FindByID(db *gorm.DB, id uint) (*models.SalesPerson, error)
	FindByEmail(db *gorm.DB, email string) (*models.SalesPerson, error)
	List(db *gorm.DB) ([]models.SalesPerson, error)
	Update(db *gorm.DB, sp *models.SalesPerson) error
	Delete(db *gorm.DB, id uint) error
	DirectSubordinates(db *gorm.DB, managerID uint) ([]models.SalesPerson, error)
	ManagerIDOf(db *gorm.DB, salesPersonID uint) (*uint, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Create(db *gorm.DB, sp *models.SalesPerson) error {
	return db.Create(sp).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*models.SalesPerson, error) {
	var sp models.SalesPerson
	err := db.First(&sp, id).Error
	return &sp, err
}

func (r *repositoryImpl) FindByEmail(db *gorm.DB, email string) (*models.SalesPerson, error) {
	var sp models.SalesPerson
	err := db.Where("email = ?", email).First(&sp).Error
	return &sp, err
}

func (r *repositoryImpl) List(db *gorm.DB) ([]models.SalesPerson, error) {
	var sps []models.SalesPerson
	err := db.Order("id").Find(&sps).Error
	return sps, err
}

func (r *repositoryImpl) Update(db *gorm.DB, sp *models.SalesPerson) error {
	return db.Save(sp).Error
}

func (r *repositoryImpl) Delete(db *gorm.DB, id uint) error {
	return db.Delete(&models.SalesPerson{}, id).Error
}

func (r *repositoryImpl) DirectSubordinates(db *gorm.DB, managerID uint) ([]models.SalesPerson, error) {
	var sps []models.SalesPerson
	err := db.Where("manager_id = ?", managerID).Order("id").Find(&sps).Error
	return sps, err
}

// ManagerIDOf returns the manager_id of a sales person, nil when they have
// no manager. gorm.ErrRecordNotFound when the person does not exist.
func (r *repositoryImpl) ManagerIDOf(db *gorm.DB, salesPersonID uint) (*uint, error) {
	var sp models.SalesPerson
	if err := db.Select("id", "manager_id").First(&sp, salesPersonID).Error; err != nil {
		return nil, err
	}
	return sp.ManagerID, nil
}
