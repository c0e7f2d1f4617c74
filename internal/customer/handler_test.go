package customer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nippoworks/api-nippo/internal/models"
)

type fakeRepository struct {
	customers map[uint]*models.Customer
	names     map[string]bool
	inUse     map[uint]int64
	lastQuery ListQuery
	listTotal int64
}

func (f *fakeRepository) Create(db *gorm.DB, c *models.Customer) error {
	c.ID = uint(len(f.customers) + 1)
	return nil
}

func (f *fakeRepository) FindByID(db *gorm.DB, id uint) (*models.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (f *fakeRepository) List(db *gorm.DB, q ListQuery) ([]models.Customer, int64, error) {
	f.lastQuery = q
	return []models.Customer{}, f.listTotal, nil
}

func (f *fakeRepository) Update(db *gorm.DB, c *models.Customer) error { return nil }
func (f *fakeRepository) Delete(db *gorm.DB, id uint) error           { return nil }

func (f *fakeRepository) NameExists(db *gorm.DB, name string, excludeID uint) (bool, error) {
	return f.names[name], nil
}

func (f *fakeRepository) VisitReferenceCount(db *gorm.DB, customerID uint) (int64, error) {
	return f.inUse[customerID], nil
}

func TestParseListQuery(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		q, details := parseListQuery(url.Values{})
		require.Nil(t, details)
		assert.Equal(t, ListQuery{Page: 1, PerPage: 20, Sort: "created_at", Order: "desc"}, q)
	})

	t.Run("explicit values", func(t *testing.T) {
		v := url.Values{}
		v.Set("customer_name", "商事")
		v.Set("page", "3")
		v.Set("per_page", "50")
		v.Set("sort", "customer_name")
		v.Set("order", "asc")
		q, details := parseListQuery(v)
		require.Nil(t, details)
		assert.Equal(t, ListQuery{CustomerName: "商事", Page: 3, PerPage: 50, Sort: "customer_name", Order: "asc"}, q)
	})

	invalid := []struct {
		name  string
		key   string
		value string
		field string
	}{
		{"zero page", "page", "0", "page"},
		{"non-numeric page", "page", "abc", "page"},
		{"per_page too large", "per_page", "101", "per_page"},
		{"per_page zero", "per_page", "0", "per_page"},
		{"unknown sort column", "sort", "phone", "sort"},
		{"unknown order", "order", "upward", "order"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			v := url.Values{}
			v.Set(tt.key, tt.value)
			_, details := parseListQuery(v)
			require.NotNil(t, details)
			assert.Contains(t, details, tt.field)
		})
	}
}

func TestListCustomers(t *testing.T) {
	t.Run("invalid query is 422 with field details", func(t *testing.T) {
		h := &Handler{Repository: &fakeRepository{}}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/customers?per_page=500", nil)
		rec := httptest.NewRecorder()
		h.List(rec, req)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var body struct {
			Error struct {
				Code    string            `json:"code"`
				Details map[string]string `json:"details"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
		assert.Contains(t, body.Error.Details, "per_page")
	})

	t.Run("pagination envelope", func(t *testing.T) {
		repo := &fakeRepository{listTotal: 95}
		h := &Handler{Repository: repo}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/customers?page=5&per_page=20", nil)
		rec := httptest.NewRecorder()
		h.List(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Data struct {
				Pagination struct {
					Total       int64 `json:"total"`
					PerPage     int   `json:"per_page"`
					CurrentPage int   `json:"current_page"`
					LastPage    int   `json:"last_page"`
					From        int64 `json:"from"`
					To          int64 `json:"to"`
				} `json:"pagination"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, int64(95), body.Data.Pagination.Total)
		assert.Equal(t, 5, body.Data.Pagination.LastPage)
		assert.Equal(t, int64(81), body.Data.Pagination.From)
		assert.Equal(t, int64(95), body.Data.Pagination.To)
		assert.Equal(t, 5, repo.lastQuery.Page)
	})
}

func TestCreateCustomer(t *testing.T) {
	t.Run("duplicate name is a 400 conflict", func(t *testing.T) {
		h := &Handler{Repository: &fakeRepository{
			customers: map[uint]*models.Customer{},
			names:     map[string]bool{"株式会社テスト": true},
		}}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/customers",
			strings.NewReader(`{"customer_name":"株式会社テスト"}`))
		rec := httptest.NewRecorder()
		h.Create(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "DUPLICATE_CUSTOMER_NAME", body.Error.Code)
	})

	t.Run("missing name is 422", func(t *testing.T) {
		h := &Handler{Repository: &fakeRepository{customers: map[uint]*models.Customer{}, names: map[string]bool{}}}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/customers", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		h.Create(rec, req)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("created", func(t *testing.T) {
		h := &Handler{Repository: &fakeRepository{customers: map[uint]*models.Customer{}, names: map[string]bool{}}}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/customers",
			strings.NewReader(`{"customer_name":"株式会社テスト","phone":"03-1234-5678"}`))
		rec := httptest.NewRecorder()
		h.Create(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})
}

func TestDeleteCustomer(t *testing.T) {
	router := func(h *Handler) *mux.Router {
		r := mux.NewRouter()
		r.HandleFunc("/api/v1/customers/{id}", h.Delete).Methods(http.MethodDelete)
		return r
	}

	t.Run("referenced customer cannot be deleted", func(t *testing.T) {
		h := &Handler{Repository: &fakeRepository{
			customers: map[uint]*models.Customer{1: {ID: 1, CustomerName: "株式会社テスト"}},
			inUse:     map[uint]int64{1: 3},
		}}
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/customers/1", nil)
		rec := httptest.NewRecorder()
		router(h).ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "CUSTOMER_IN_USE", body.Error.Code)
	})

	t.Run("unreferenced customer is deleted", func(t *testing.T) {
		h := &Handler{Repository: &fakeRepository{
			customers: map[uint]*models.Customer{1: {ID: 1, CustomerName: "株式会社テスト"}},
			inUse:     map[uint]int64{},
		}}
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/customers/1", nil)
		rec := httptest.NewRecorder()
		router(h).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing customer is 404", func(t *testing.T) {
		h := &Handler{Repository: &fakeRepository{customers: map[uint]*models.Customer{}}}
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/customers/9", nil)
		rec := httptest.NewRecorder()
		router(h).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
