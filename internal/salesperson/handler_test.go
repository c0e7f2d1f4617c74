package salesperson

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nippoworks/api-nippo/internal/models"
)

type fakeRepository struct {
	people map[uint]*models.SalesPerson
	saved  *models.SalesPerson
}

func (f *fakeRepository) Create(db *gorm.DB, sp *models.SalesPerson) error {
	sp.ID = uint(len(f.people) + 1)
	return nil
}

func (f *fakeRepository) FindByID(db *gorm.DB, id uint) (*models.SalesPerson, error) {
	sp, ok := f.people[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *sp
	return &cp, nil
}

func (f *fakeRepository) FindByEmail(db *gorm.DB, email string) (*models.SalesPerson, error) {
	for _, sp := range f.people {
		if sp.Email == email {
			cp := *sp
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) List(db *gorm.DB) ([]models.SalesPerson, error) { return nil, nil }

func (f *fakeRepository) Update(db *gorm.DB, sp *models.SalesPerson) error {
	f.saved = sp
	f.people[sp.ID] = sp
	return nil
}

func (f *fakeRepository) Delete(db *gorm.DB, id uint) error { return nil }

func (f *fakeRepository) DirectSubordinates(db *gorm.DB, managerID uint) ([]models.SalesPerson, error) {
	return nil, nil
}

func (f *fakeRepository) ManagerIDOf(db *gorm.DB, salesPersonID uint) (*uint, error) {
	sp, ok := f.people[salesPersonID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return sp.ManagerID, nil
}

func uintPtr(v uint) *uint { return &v }

func putSalesPerson(h *Handler, id, body string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/sales-persons/{id}", h.Update).Methods(http.MethodPut)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/sales-persons/"+id, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func errCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

// org under test: 3 reports to 2, 2 reports to 1, 1 has no manager
func orgChain() map[uint]*models.SalesPerson {
	return map[uint]*models.SalesPerson{
		1: {ID: 1, Name: "部長", Email: "bucho@example.com", IsManager: true},
		2: {ID: 2, Name: "課長", Email: "kacho@example.com", IsManager: true, ManagerID: uintPtr(1)},
		3: {ID: 3, Name: "担当", Email: "tanto@example.com", ManagerID: uintPtr(2)},
	}
}

func TestUpdateManagerAssignment(t *testing.T) {
	t.Run("self assignment is rejected", func(t *testing.T) {
		repo := &fakeRepository{people: orgChain()}
		h := &Handler{Repository: repo}
		rec := putSalesPerson(h, "3", `{"manager_id":3}`)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "MANAGER_CYCLE", errCode(t, rec))
		assert.Nil(t, repo.saved)
	})

	t.Run("closing a loop through the chain is rejected", func(t *testing.T) {
		// assigning 1's manager to 3 would make 1 report into 3 → 2 → 1
		repo := &fakeRepository{people: orgChain()}
		h := &Handler{Repository: repo}
		rec := putSalesPerson(h, "1", `{"manager_id":3}`)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "MANAGER_CYCLE", errCode(t, rec))
		assert.Nil(t, repo.saved)
	})

	t.Run("legal reassignment is saved", func(t *testing.T) {
		repo := &fakeRepository{people: orgChain()}
		h := &Handler{Repository: repo}
		rec := putSalesPerson(h, "3", `{"manager_id":1}`)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, repo.saved)
		require.NotNil(t, repo.saved.ManagerID)
		assert.Equal(t, uint(1), *repo.saved.ManagerID)
	})

	t.Run("clearing the manager", func(t *testing.T) {
		repo := &fakeRepository{people: orgChain()}
		h := &Handler{Repository: repo}
		rec := putSalesPerson(h, "3", `{"clear_manager":true}`)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, repo.saved)
		assert.Nil(t, repo.saved.ManagerID)
	})

	t.Run("missing manager is 422", func(t *testing.T) {
		repo := &fakeRepository{people: orgChain()}
		h := &Handler{Repository: repo}
		rec := putSalesPerson(h, "3", `{"manager_id":99}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "VALIDATION_ERROR", errCode(t, rec))
	})

	t.Run("walk terminates on a corrupt chain and rejects", func(t *testing.T) {
		// 5 and 6 already point at each other; attaching 7 underneath must
		// not loop the request and must fail closed
		repo := &fakeRepository{people: map[uint]*models.SalesPerson{
			5: {ID: 5, Email: "a@example.com", IsManager: true, ManagerID: uintPtr(6)},
			6: {ID: 6, Email: "b@example.com", IsManager: true, ManagerID: uintPtr(5)},
			7: {ID: 7, Email: "c@example.com"},
		}}
		h := &Handler{Repository: repo}
		rec := putSalesPerson(h, "7", `{"manager_id":5}`)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "MANAGER_CYCLE", errCode(t, rec))
		assert.Nil(t, repo.saved)
	})
}
