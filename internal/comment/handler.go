package comment

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

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

type createRequest struct {
	CommentText string `json:"comment_text"`
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

// ListByReport handles GET /reports/{id}/comments.
func (h *Handler) ListByReport(w http.ResponseWriter, r *http.Request) {
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

	comments, err := h.Repository.ListByReport(h.DB, uint(reportID))
	if err != nil {
		httputil.Internal(w, err, "failed to list comments")
		return
	}
	httputil.JSON(w, http.StatusOK, comments)
}

// Create handles POST /reports/{id}/comments. Anyone who can view the report
// may comment on it; a confirmed report still accepts comments.
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
	mgr, err := h.ownerManagerID(rep.SalesPersonID)
	if err != nil {
		httputil.Internal(w, err, "failed to resolve owner manager")
		return
	}
	if !authz.CanViewReport(p, rep, mgr) {
		httputil.Error(w, http.StatusForbidden, httputil.CodeForbidden, "この日報にコメントする権限がありません")
		return
	}
	// once confirmed, the owner's comment mutation is closed; the manager may
	// still leave remarks
	if p.ID == rep.SalesPersonID && rep.Status == models.StatusConfirmed {
		httputil.Error(w, http.StatusForbidden, string(authz.ReasonReportLocked), "承認済みの日報にはコメントできません")
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.ValidationError(w, "リクエストの形式が不正です", nil)
		return
	}
	if req.CommentText == "" {
		httputil.ValidationError(w, "入力内容に誤りがあります", map[string]string{"comment_text": "コメントを入力してください"})
		return
	}

	c := models.Comment{
		ReportID:      uint(reportID),
		SalesPersonID: p.ID,
		CommentText:   req.CommentText,
	}
	if err := h.Repository.Create(h.DB, &c); err != nil {
		httputil.Internal(w, err, "failed to create comment")
		return
	}
	httputil.JSON(w, http.StatusCreated, c)
}

// Delete handles DELETE /comments/{id}. Author-only; deleting a missing
// comment is a 404, never a silent success.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "認証が必要です")
		return
	}
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		httputil.ValidationError(w, "コメントIDが不正です", map[string]string{"id": "数値で指定してください"})
		return
	}

	c, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		httputil.FindError(w, err, "コメントが見つかりません")
		return
	}
	if err := authz.CanDeleteComment(p, c); err != nil {
		httputil.Denial(w, authz.AsDenial(err))
		return
	}

	if err := h.Repository.Delete(h.DB, uint(id)); err != nil {
		httputil.Internal(w, err, "failed to delete comment")
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]uint{"comment_id": uint(id)})
}
