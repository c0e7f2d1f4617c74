package dashboard

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/nippoworks/api-nippo/internal/auth"
	"github.com/nippoworks/api-nippo/internal/httputil"
)

// Handler serves GET /dashboard.
type Handler struct {
	Aggregator *Aggregator
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{Aggregator: NewAggregator(NewStore(db))}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "認証が必要です")
		return
	}

	data, err := h.Aggregator.Snapshot(r.Context(), p)
	if err != nil {
		httputil.Internal(w, err, "failed to build dashboard snapshot")
		return
	}
	httputil.JSON(w, http.StatusOK, data)
}
