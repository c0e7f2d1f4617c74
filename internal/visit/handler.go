package visit

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/nippoworks/api-nippo/internal/auth"
	"github.com/nippoworks/api-nippo/internal/authz"
	"github.com/nippoworks/api-nippo/internal/httputil"
	"github.com/nippoworks/api-nippo/internal/models"
	"github.com/nippoworks/api-nippo/internal/report"
	"github.com/nippoworks/api-nippo/internal/salesperson"
)

// Handler wraps the DB handle and the repositories needed to authorize
// against the owning report.
type Handler struct {
	DB           *gorm.DB
	Repository   Repository
	Reports      report.Repository
	SalesPersons salesperson.Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		DB:           db,
		Repository:   NewRepository(),
		Reports:      report.NewRepository(),
		SalesPersons: salesperson.NewRepository(),
	}
}

type visitRequest struct {
	CustomerID   uint    `json:"customer_id"`
	VisitTime    *string `json:"visit_time"`
	VisitPurpose *string `json:"visit_purpose"`
	VisitContent string  `json:"visit_content"`
	VisitResult  *string `json:"visit_result"`
}

func (req *visitRequest) validate() map[string]string {
	details := map[string]string{}
	if req.CustomerID == 0 {
		details["customer_id"] = "顧客を指定してください"
	}
	if req.VisitContent == "" {
		details["visit_content"] = "訪問内容は必須です"
	}
	if req.VisitTime != nil {
		if _, err := time.Parse("15:04", *req.VisitTime); err != nil {
			details["visit_time"] = "HH:MM形式で指定してください"
		}
	}
	if len(details) > 0 {
		return details
	}
	return nil
}

func (h *Handler) ownerManagerID(ownerID uint) (*uint, error) {
	mgr, err := h.SalesPersons.ManagerIDOf(h.DB, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return mgr, nil
}

// List handles GET /reports/{id}/visits, visible to whoever can view the
// owning report.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "認証が必要です")
		return
	}
	reportID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		httputil.ValidationError(w, "日報IDが不正です", map[string]string{"id": "数値で指定してください"})
		return
	}

	rep, err := h.Reports.FindByID(h.DB, uint(reportID))
	if err != nil {
		httputil.FindError(w, err, "日報が見つかりません")
		return
	}
	mgr, err := h.ownerManagerID(rep.SalesPersonID)
	if err != nil {
		httputil.Internal(w, err, "failed to resolve owner manager")
		return
	}
	if !authz.CanViewReport(p, rep, mgr) {
		httputil.Error(w, http.StatusForbidden, httputil.CodeForbidden, "この日報を閲覧する権限がありません")
		return
	}

	visits, err := h.Repository.ListByReport(h.DB, uint(reportID))
	if err != nil {
		httputil.Internal(w, err, "failed to list visit records")
		return
	}
	httputil.JSON(w, http.StatusOK, visits)
}

// Create handles POST /reports/{id}/visits. Mutating visit records is a
// content edit of the report, so the same edit guard applies.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "認証が必要です")
		return
	}
	reportID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		httputil.ValidationError(w, "日報IDが不正です", map[string]string{"id": "数値で指定してください"})
		return
	}

	rep, err := h.Reports.FindByID(h.DB, uint(reportID))
	if err != nil {
		httputil.FindError(w, err, "日報が見つかりません")
		return
	}
	if err := authz.CanEditReport(p, rep); err != nil {
		httputil.Denial(w, authz.AsDenial(err))
		return
	}

	var req visitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.ValidationError(w, "リクエストの形式が不正です", nil)
		return
	}
	if details := req.validate(); details != nil {
		httputil.ValidationError(w, "入力内容に誤りがあります", details)
		return
	}

	exists, err := h.Repository.CustomerExists(h.DB, req.CustomerID)
	if err != nil {
		httputil.Internal(w, err, "failed to check customer")
		return
	}
	if !exists {
		httputil.ValidationError(w, "入力内容に誤りがあります", map[string]string{"customer_id": "指定された顧客が存在しません"})
		return
	}

	v := models.VisitRecord{
		ReportID:     uint(reportID),
		CustomerID:   req.CustomerID,
		VisitTime:    req.VisitTime,
		VisitPurpose: req.VisitPurpose,
		VisitContent: req.VisitContent,
		VisitResult:  req.VisitResult,
	}
	if err := h.Repository.Create(h.DB, &v); err != nil {
		httputil.Internal(w, err, "failed to create visit record")
		return
	}
	httputil.JSON(w, http.StatusCreated, v)
}

// Update handles PUT /visits/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "認証が必要です")
		return
	}
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		httputil.ValidationError(w, "訪問記録IDが不正です", map[string]string{"id": "数値で指定してください"})
		return
	}

	v, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		httputil.FindError(w, err, "訪問記録が見つかりません")
		return
	}
	rep, err := h.Reports.FindByID(h.DB, v.ReportID)
	if err != nil {
		httputil.FindError(w, err, "日報が見つかりません")
		return
	}
	if err := authz.CanEditReport(p, rep); err != nil {
		httputil.Denial(w, authz.AsDenial(err))
		return
	}

	var req visitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.ValidationError(w, "リクエストの形式が不正です", nil)
		return
	}
	if details := req.validate(); details != nil {
		httputil.ValidationError(w, "入力内容に誤りがあります", details)
		return
	}

	if req.CustomerID != v.CustomerID {
		exists, err := h.Repository.CustomerExists(h.DB, req.CustomerID)
		if err != nil {
			httputil.Internal(w, err, "failed to check customer")
			return
		}
		if !exists {
			httputil.ValidationError(w, "入力内容に誤りがあります", map[string]string{"customer_id": "指定された顧客が存在しません"})
			return
		}
	}

	v.CustomerID = req.CustomerID
	v.Customer = nil
	v.VisitTime = req.VisitTime
	v.VisitPurpose = req.VisitPurpose
	v.VisitContent = req.VisitContent
	v.VisitResult = req.VisitResult
	if err := h.Repository.Update(h.DB, v); err != nil {
		httputil.Internal(w, err, "failed to update visit record")
		return
	}
	httputil.JSON(w, http.StatusOK, v)
}

// Delete handles DELETE /visits/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "認証が必要です")
		return
	}
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		httputil.ValidationError(w, "訪問記録IDが不正です", map[string]string{"id": "数値で指定してください"})
		return
	}

	v, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		httputil.FindError(w, err, "訪問記録が見つかりません")
		return
	}
	rep, err := h.Reports.FindByID(h.DB, v.ReportID)
	if err != nil {
		httputil.FindError(w, err, "日報が見つかりません")
		return
	}
	if err := authz.CanEditReport(p, rep); err != nil {
		httputil.Denial(w, authz.AsDenial(err))
		return
	}

	if err := h.Repository.Delete(h.DB, uint(id)); err != nil {
		httputil.Internal(w, err, "failed to delete visit record")
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]uint{"visit_record_id": uint(id)})
}
