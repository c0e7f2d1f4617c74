package salesperson

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/nippoworks/api-nippo/internal/auth"
	"github.com/nippoworks/api-nippo/internal/httputil"
	"github.com/nippoworks/api-nippo/internal/models"
	"github.com/nippoworks/api-nippo/internal/utils"
)

// Handler wraps the DB handle and the repository.
type Handler struct {
	DB         *gorm.DB
	Repository Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db, Repository: NewRepository()}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Department string `json:"department"`
	IsManager  bool   `json:"is_manager"`
	ManagerID  *uint  `json:"manager_id"`
}

type updateRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Password   *string `json:"password"`
	Department *string `json:"department"`
	IsManager  *bool   `json:"is_manager"`
	ManagerID  *uint   `json:"manager_id"`
	// distinguishes "leave manager unchanged" from "clear manager"
	ClearManager bool `json:"clear_manager"`
}

// Login issues a JWT for valid email+password credentials.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.ValidationError(w, "リクエストの形式が不正です", nil)
		return
	}

	sp, err := h.Repository.FindByEmail(h.DB, req.Email)
	if err != nil {
		httputil.Error(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "メールアドレスまたはパスワードが正しくありません")
		return
	}
	if !utils.CheckPassword(sp.Password, req.Password) {
		httputil.Error(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "メールアドレスまたはパスワードが正しくありません")
		return
	}

	token, err := auth.GenerateToken(sp.ID, sp.IsManager)
	if err != nil {
		httputil.Internal(w, err, "failed to generate token")
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"token":        token,
		"sales_person": sp,
	})
}

// Create registers a new sales person (manager-gated route).
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.ValidationError(w, "リクエストの形式が不正です", nil)
		return
	}
	details := map[string]string{}
	if req.Name == "" {
		details["name"] = "氏名は必須です"
	}
	if req.Email == "" {
		details["email"] = "メールアドレスは必須です"
	}
	if req.Password == "" {
		details["password"] = "パスワードは必須です"
	}
	if len(details) > 0 {
		httputil.ValidationError(w, "入力内容に誤りがあります", details)
		return
	}

	if req.ManagerID != nil {
		if _, err := h.Repository.FindByID(h.DB, *req.ManagerID); err != nil {
			httputil.ValidationError(w, "入力内容に誤りがあります", map[string]string{"manager_id": "指定された上司が存在しません"})
			return
		}
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		httputil.Internal(w, err, "failed to hash password")
		return
	}

	sp := models.SalesPerson{
		Name:       req.Name,
		Email:      req.Email,
		Password:   hash,
		Department: req.Department,
		IsManager:  req.IsManager,
		ManagerID:  req.ManagerID,
	}
	if err := h.Repository.Create(h.DB, &sp); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			httputil.Error(w, http.StatusBadRequest, httputil.CodeDuplicateEmail, "このメールアドレスは既に登録されています")
			return
		}
		httputil.Internal(w, err, "failed to create sales person")
		return
	}
	httputil.JSON(w, http.StatusCreated, sp)
}

// List returns all sales persons.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	sps, err := h.Repository.List(h.DB)
	if err != nil {
		httputil.Internal(w, err, "failed to list sales persons")
		return
	}
	httputil.JSON(w, http.StatusOK, sps)
}

// Get returns one sales person by id.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		httputil.ValidationError(w, "IDが不正です", map[string]string{"id": "数値で指定してください"})
		return
	}
	sp, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		httputil.FindError(w, err, "営業担当者が見つかりません")
		return
	}
	httputil.JSON(w, http.StatusOK, sp)
}

// Update modifies master data, including manager reassignment. Assigning a
// manager that would close a loop in the org graph is rejected.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		httputil.ValidationError(w, "IDが不正です", map[string]string{"id": "数値で指定してください"})
		return
	}
	sp, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		httputil.FindError(w, err, "営業担当者が見つかりません")
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.ValidationError(w, "リクエストの形式が不正です", nil)
		return
	}

	if req.Name != nil {
		sp.Name = *req.Name
	}
	if req.Email != nil {
		sp.Email = *req.Email
	}
	if req.Department != nil {
		sp.Department = *req.Department
	}
	if req.IsManager != nil {
		sp.IsManager = *req.IsManager
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := utils.HashPassword(*req.Password)
		if err != nil {
			httputil.Internal(w, err, "failed to hash password")
			return
		}
		sp.Password = hash
	}
	if req.ClearManager {
		sp.ManagerID = nil
	} else if req.ManagerID != nil {
		if *req.ManagerID == sp.ID {
			httputil.Error(w, http.StatusUnprocessableEntity, httputil.CodeManagerCycle, "自分自身を上司に設定することはできません")
			return
		}
		if _, err := h.Repository.FindByID(h.DB, *req.ManagerID); err != nil {
			httputil.ValidationError(w, "入力内容に誤りがあります", map[string]string{"manager_id": "指定された上司が存在しません"})
			return
		}
		cyclic, err := h.createsCycle(sp.ID, *req.ManagerID)
		if err != nil {
			httputil.Internal(w, err, "failed to walk manager chain")
			return
		}
		if cyclic {
			httputil.Error(w, http.StatusUnprocessableEntity, httputil.CodeManagerCycle, "上下関係が循環するため設定できません")
			return
		}
		sp.ManagerID = req.ManagerID
	}

	if err := h.Repository.Update(h.DB, sp); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			httputil.Error(w, http.StatusBadRequest, httputil.CodeDuplicateEmail, "このメールアドレスは既に登録されています")
			return
		}
		httputil.Internal(w, err, "failed to update sales person")
		return
	}
	httputil.JSON(w, http.StatusOK, sp)
}

// createsCycle walks the manager chain upward from the proposed manager. If
// the chain reaches the person being updated, the assignment would loop. A
// chain that revisits a node is already corrupt; the walk stops and the
// assignment is rejected rather than attached to it.
func (h *Handler) createsCycle(personID, proposedManagerID uint) (bool, error) {
	visited := map[uint]bool{}
	current := &proposedManagerID
	for current != nil {
		if *current == personID {
			return true, nil
		}
		if visited[*current] {
			return true, nil
		}
		visited[*current] = true
		next, err := h.Repository.ManagerIDOf(h.DB, *current)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			return false, err
		}
		current = next
	}
	return false, nil
}

// Delete removes a sales person; their reports, visit records, and authored
// comments go with them.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		httputil.ValidationError(w, "IDが不正です", map[string]string{"id": "数値で指定してください"})
		return
	}
	if _, err := h.Repository.FindByID(h.DB, uint(id)); err != nil {
		httputil.FindError(w, err, "営業担当者が見つかりません")
		return
	}
	if err := h.Repository.Delete(h.DB, uint(id)); err != nil {
		httputil.Internal(w, err, "failed to delete sales person")
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]uint{"sales_person_id": uint(id)})
}
