package customer

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/nippoworks/api-nippo/internal/httputil"
	"github.com/nippoworks/api-nippo/internal/models"
)

// Handler wraps the DB handle and the repository.
type Handler struct {
	DB         *gorm.DB
	Repository Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db, Repository: NewRepository()}
}

type customerRequest struct {
	CustomerName  string  `json:"customer_name"`
	Address       *string `json:"address"`
	Phone         *string `json:"phone"`
	ContactPerson *string `json:"contact_person"`
}

// parseListQuery validates the customer search parameters. Invalid values
// are collected per field, not first-error-wins.
func parseListQuery(values url.Values) (ListQuery, map[string]string) {
	q := ListQuery{
		CustomerName: values.Get("customer_name"),
		Page:         1,
		PerPage:      20,
		Sort:         "created_at",
		Order:        "desc",
	}
	details := map[string]string{}

	if raw := values.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			details["page"] = "1以上の整数で指定してください"
		} else {
			q.Page = n
		}
	}
	if raw := values.Get("per_page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			details["per_page"] = "1〜100の整数で指定してください"
		} else {
			q.PerPage = n
		}
	}
	if raw := values.Get("sort"); raw != "" {
		switch raw {
		case "customer_name", "created_at":
			q.Sort = raw
		default:
			details["sort"] = "customer_name または created_at を指定してください"
		}
	}
	if raw := values.Get("order"); raw != "" {
		switch raw {
		case "asc", "desc":
			q.Order = raw
		default:
			details["order"] = "asc または desc を指定してください"
		}
	}

	if len(details) > 0 {
		return q, details
	}
	return q, nil
}

// List handles GET /customers with filtering, sorting, and pagination.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q, details := parseListQuery(r.URL.Query())
	if details != nil {
		httputil.ValidationError(w, "検索条件が不正です", details)
		return
	}

	customers, total, err := h.Repository.List(h.DB, q)
	if err != nil {
		httputil.Internal(w, err, "failed to list customers")
		return
	}
	httputil.JSON(w, http.StatusOK, httputil.ListResponse{
		Items:      customers,
		Pagination: httputil.NewPagination(total, q.PerPage, q.Page),
	})
}

// Create handles POST /customers. Duplicate names are a business-rule
// conflict, not a validation failure.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.ValidationError(w, "リクエストの形式が不正です", nil)
		return
	}
	if req.CustomerName == "" {
		httputil.ValidationError(w, "入力内容に誤りがあります", map[string]string{"customer_name": "顧客名は必須です"})
		return
	}

	exists, err := h.Repository.NameExists(h.DB, req.CustomerName, 0)
	if err != nil {
		httputil.Internal(w, err, "failed to check customer name")
		return
	}
	if exists {
		httputil.Error(w, http.StatusBadRequest, httputil.CodeDuplicateCustomerName, "この顧客名は既に登録されています")
		return
	}

	c := models.Customer{
		CustomerName:  req.CustomerName,
		Address:       req.Address,
		Phone:         req.Phone,
		ContactPerson: req.ContactPerson,
	}
	if err := h.Repository.Create(h.DB, &c); err != nil {
		httputil.Internal(w, err, "failed to create customer")
		return
	}
	httputil.JSON(w, http.StatusCreated, c)
}

// Get handles GET /customers/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		httputil.ValidationError(w, "顧客IDが不正です", map[string]string{"id": "数値で指定してください"})
		return
	}
	c, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		httputil.FindError(w, err, "顧客が見つかりません")
		return
	}
	httputil.JSON(w, http.StatusOK, c)
}

// Update handles PUT /customers/{id} with the same duplicate-name check.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		httputil.ValidationError(w, "顧客IDが不正です", map[string]string{"id": "数値で指定してください"})
		return
	}
	c, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		httputil.FindError(w, err, "顧客が見つかりません")
		return
	}

	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.ValidationError(w, "リクエストの形式が不正です", nil)
		return
	}
	if req.CustomerName == "" {
		httputil.ValidationError(w, "入力内容に誤りがあります", map[string]string{"customer_name": "顧客名は必須です"})
		return
	}

	exists, err := h.Repository.NameExists(h.DB, req.CustomerName, c.ID)
	if err != nil {
		httputil.Internal(w, err, "failed to check customer name")
		return
	}
	if exists {
		httputil.Error(w, http.StatusBadRequest, httputil.CodeDuplicateCustomerName, "この顧客名は既に登録されています")
		return
	}

	c.CustomerName = req.CustomerName
	c.Address = req.Address
	c.Phone = req.Phone
	c.ContactPerson = req.ContactPerson
	if err := h.Repository.Update(h.DB, c); err != nil {
		httputil.Internal(w, err, "failed to update customer")
		return
	}
	httputil.JSON(w, http.StatusOK, c)
}

// Delete handles DELETE /customers/{id}. A customer referenced by visit
// records cannot be removed.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		httputil.ValidationError(w, "顧客IDが不正です", map[string]string{"id": "数値で指定してください"})
		return
	}
	if _, err := h.Repository.FindByID(h.DB, uint(id)); err != nil {
		httputil.FindError(w, err, "顧客が見つかりません")
		return
	}

	refs, err := h.Repository.VisitReferenceCount(h.DB, uint(id))
	if err != nil {
		httputil.Internal(w, err, "failed to count visit references")
		return
	}
	if refs > 0 {
		httputil.Error(w, http.StatusBadRequest, httputil.CodeCustomerInUse, "訪問記録で使用されている顧客は削除できません")
		return
	}

	if err := h.Repository.Delete(h.DB, uint(id)); err != nil {
		httputil.Internal(w, err, "failed to delete customer")
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]uint{"customer_id": uint(id)})
}
