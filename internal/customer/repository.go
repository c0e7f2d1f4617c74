package customer

import (
	"gorm.io/gorm"

	"github.com/nippoworks/api-nippo/internal/models"
)

// ListQuery is the validated search condition for the customer list.
type ListQuery struct {
	CustomerName string
	Page         int
	PerPage      int
	Sort         string // customer_name | created_at
	Order        string // asc | desc
}

type Repository interface {
	Create(db *gorm.DB, c *models.Customer) error
	FindByID(db *gorm.DB, id uint) (*models.Customer, error)
	List(db *gorm.DB, q ListQuery) ([]models.Customer, int64, error)
	Update(db *gorm.DB, c *models.Customer) error
	Delete(db *gorm.DB, id uint) error
	NameExists(db *gorm.DB, name string, excludeID uint) (bool, error)
	VisitReferenceCount(db *gorm.DB, customerID uint) (int64, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Create(db *gorm.DB, c *models.Customer) error {
	return db.Create(c).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*models.Customer, error) {
	var c models.Customer
	err := db.First(&c, id).Error
	return &c, err
}

func (r *repositoryImpl) List(db *gorm.DB, q ListQuery) ([]models.Customer, int64, error) {
	base := db.Model(&models.Customer{})
	if q.CustomerName != "" {
		base = base.Where("customer_name ILIKE ?", "%"+q.CustomerName+"%")
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customers []models.Customer
	err := base.
		Order(q.Sort + " " + q.Order).
		Offset((q.Page - 1) * q.PerPage).
		Limit(q.PerPage).
		Find(&customers).Error
	return customers, total, err
}

func (r *repositoryImpl) Update(db *gorm.DB, c *models.Customer) error {
	return db.Save(c).Error
}

func (r *repositoryImpl) Delete(db *gorm.DB, id uint) error {
	return db.Delete(&models.Customer{}, id).Error
}

// NameExists checks the logical uniqueness of customer_name. excludeID skips
// the row being updated; pass 0 on create.
func (r *repositoryImpl) NameExists(db *gorm.DB, name string, excludeID uint) (bool, error) {
	var n int64
	q := db.Model(&models.Customer{}).Where("customer_name = ?", name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&n).Error
	return n > 0, err
}

func (r *repositoryImpl) VisitReferenceCount(db *gorm.DB, customerID uint) (int64, error) {
	var n int64
	err := db.Model(&models.VisitRecord{}).Where("customer_id = ?", customerID).Count(&n).Error
	return n, err
}
