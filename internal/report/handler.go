package report

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
	"github.com/nippoworks/api-nippo/internal/salesperson"
)

// Handler wraps the DB handle, the report repository, and the sales-person
// repository used to resolve the owner's direct manager.
type Handler struct {
	DB           *gorm.DB
	Repository   Repository
	SalesPersons salesperson.Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		DB:           db,
		Repository:   NewRepository(),
		SalesPersons: salesperson.NewRepository(),
	}
}

type createRequest struct {
	ReportDate string  `json:"report_date"`
	Problem    *string `json:"problem"`
	Plan       *string `json:"plan"`
	Status     string  `json:"status"` // draft (default) | submitted
}

type updateRequest struct {
	ReportDate *string `json:"report_date"`
	Problem    *string `json:"problem"`
	Plan       *string `json:"plan"`
	Status     *string `json:"status"`
}

type statusRequest struct {
	Status string `json:"status"`
}

// ownerManagerID resolves the direct manager of a report's owner, nil when
// the owner has none or no longer exists.
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

// Create handles POST /reports. A report always belongs to the principal;
// it may be saved as draft or submitted directly.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "認証が必要です")
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.ValidationError(w, "リクエストの形式が不正です", nil)
		return
	}

	date, err := time.ParseInLocation(dateLayout, req.ReportDate, time.Local)
	if err != nil {
		httputil.ValidationError(w, "入力内容に誤りがあります", map[string]string{"report_date": "YYYY-MM-DD形式で指定してください"})
		return
	}

	status := models.ReportStatus(req.Status)
	if req.Status == "" {
		status = models.StatusDraft
	}
	if status != models.StatusDraft && status != models.StatusSubmitted {
		httputil.ValidationError(w, "入力内容に誤りがあります", map[string]string{"status": "draft または submitted を指定してください"})
		return
	}

	rep := models.DailyReport{
		SalesPersonID: p.ID,
		ReportDate:    date,
		Problem:       req.Problem,
		Plan:          req.Plan,
		Status:        status,
	}
	if err := h.Repository.Create(h.DB, &rep); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			httputil.Error(w, http.StatusConflict, httputil.CodeDuplicateReportDate, "この日付の日報は既に存在します")
			return
		}
		httputil.Internal(w, err, "failed to create report")
		return
	}
	httputil.JSON(w, http.StatusCreated, toDTO(&rep))
}

// List handles GET /reports. The principal sees their own reports; a manager
// may list a direct subordinate's via sales_person_id.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "認証が必要です")
		return
	}

	ownerID := p.ID
	if raw := r.URL.Query().Get("sales_person_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			httputil.ValidationError(w, "検索条件が不正です", map[string]string{"sales_person_id": "数値で指定してください"})
			return
		}
		ownerID = uint(id)
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httputil.ValidationError(w, "検索条件が不正です", map[string]string{"page": "1以上の整数で指定してください"})
			return
		}
		page = n
	}
	perPage := 20
	if raw := r.URL.Query().Get("per_page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			httputil.ValidationError(w, "検索条件が不正です", map[string]string{"per_page": "1〜100の整数で指定してください"})
			return
		}
		perPage = n
	}

	if ownerID != p.ID {
		mgr, err := h.ownerManagerID(ownerID)
		if err != nil {
			httputil.Internal(w, err, "failed to resolve owner manager")
			return
		}
		probe := models.DailyReport{SalesPersonID: ownerID}
		if !authz.CanViewReport(p, &probe, mgr) {
			httputil.Error(w, http.StatusForbidden, string(authz.ReasonNotManagerOfOwner), "直属の部下の日報のみ閲覧できます")
			return
		}
	}

	reports, total, err := h.Repository.ListByOwner(h.DB, ownerID, page, perPage)
	if err != nil {
		httputil.Internal(w, err, "failed to list reports")
		return
	}
	httputil.JSON(w, http.StatusOK, httputil.ListResponse{
		Items:      toDTOs(reports),
		Pagination: httputil.NewPagination(total, perPage, page),
	})
}

// Get handles GET /reports/{id}, visible to the owner and their direct
// manager only.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "認証が必要です")
		return
	}
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		httputil.ValidationError(w, "日報IDが不正です", map[string]string{"id": "数値で指定してください"})
		return
	}

	rep, err := h.Repository.FindByID(h.DB, uint(id))
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
	httputil.JSON(w, http.StatusOK, toDTO(rep))
}

// Update handles PUT /reports/{id}: content edits plus an optional status
// transition in the same save.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "認証が必要です")
		return
	}
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		httputil.ValidationError(w, "日報IDが不正です", map[string]string{"id": "数値で指定してください"})
		return
	}

	rep, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		httputil.FindError(w, err, "日報が見つかりません")
		return
	}
	if err := authz.CanEditReport(p, rep); err != nil {
		httputil.Denial(w, authz.AsDenial(err))
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.ValidationError(w, "リクエストの形式が不正です", nil)
		return
	}

	if req.ReportDate != nil {
		date, err := time.ParseInLocation(dateLayout, *req.ReportDate, time.Local)
		if err != nil {
			httputil.ValidationError(w, "入力内容に誤りがあります", map[string]string{"report_date": "YYYY-MM-DD形式で指定してください"})
			return
		}
		rep.ReportDate = date
	}
	if req.Problem != nil {
		rep.Problem = req.Problem
	}
	if req.Plan != nil {
		rep.Plan = req.Plan
	}
	if req.Status != nil {
		requested := models.ReportStatus(*req.Status)
		if !requested.Valid() {
			httputil.ValidationError(w, "入力内容に誤りがあります", map[string]string{"status": "不明なステータスです"})
			return
		}
		mgr, err := h.ownerManagerID(rep.SalesPersonID)
		if err != nil {
			httputil.Internal(w, err, "failed to resolve owner manager")
			return
		}
		next, terr := authz.Transition(p, rep, mgr, requested)
		if terr != nil {
			httputil.Denial(w, authz.AsDenial(terr))
			return
		}
		rep.Status = next
	}

	if err := h.Repository.Update(h.DB, rep); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			httputil.Error(w, http.StatusConflict, httputil.CodeDuplicateReportDate, "この日付の日報は既に存在します")
			return
		}
		httputil.Internal(w, err, "failed to update report")
		return
	}
	httputil.JSON(w, http.StatusOK, toDTO(rep))
}

// UpdateStatus handles PATCH /reports/{id}/status: submit by the owner,
// confirm by the owner's direct manager.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "認証が必要です")
		return
	}
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		httputil.ValidationError(w, "日報IDが不正です", map[string]string{"id": "数値で指定してください"})
		return
	}

	rep, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		httputil.FindError(w, err, "日報が見つかりません")
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.ValidationError(w, "リクエストの形式が不正です", nil)
		return
	}
	requested := models.ReportStatus(req.Status)
	if !requested.Valid() {
		httputil.ValidationError(w, "入力内容に誤りがあります", map[string]string{"status": "不明なステータスです"})
		return
	}

	mgr, err := h.ownerManagerID(rep.SalesPersonID)
	if err != nil {
		httputil.Internal(w, err, "failed to resolve owner manager")
		return
	}
	next, terr := authz.Transition(p, rep, mgr, requested)
	if terr != nil {
		httputil.Denial(w, authz.AsDenial(terr))
		return
	}

	rep.Status = next
	if err := h.Repository.Update(h.DB, rep); err != nil {
		httputil.Internal(w, err, "failed to update report status")
		return
	}
	httputil.JSON(w, http.StatusOK, toDTO(rep))
}

// Delete handles DELETE /reports/{id}. Owner-only, and a confirmed report
// can no longer be removed.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "認証が必要です")
		return
	}
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		httputil.ValidationError(w, "日報IDが不正です", map[string]string{"id": "数値で指定してください"})
		return
	}

	rep, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		httputil.FindError(w, err, "日報が見つかりません")
		return
	}
	if err := authz.CanEditReport(p, rep); err != nil {
		httputil.Denial(w, authz.AsDenial(err))
		return
	}

	if err := h.Repository.Delete(h.DB, uint(id)); err != nil {
		httputil.Internal(w, err, "failed to delete report")
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]uint{"report_id": uint(id)})
}
