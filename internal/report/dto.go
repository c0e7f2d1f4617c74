package report

import (
	"time"

	"github.com/nippoworks/api-nippo/internal/models"
)

const dateLayout = "2006-01-02"

type visitDTO struct {
	ID           uint    `json:"id"`
	CustomerID   uint    `json:"customer_id"`
	CustomerName string  `json:"customer_name,omitempty"`
	VisitTime    *string `json:"visit_time"`
	VisitPurpose *string `json:"visit_purpose"`
	VisitContent string  `json:"visit_content"`
	VisitResult  *string `json:"visit_result"`
}

type commentDTO struct {
	ID            uint      `json:"id"`
	SalesPersonID uint      `json:"sales_person_id"`
	CommentText   string    `json:"comment_text"`
	CreatedAt     time.Time `json:"created_at"`
}

type reportDTO struct {
	ID            uint         `json:"id"`
	SalesPersonID uint         `json:"sales_person_id"`
	ReportDate    string       `json:"report_date"`
	Problem       *string      `json:"problem"`
	Plan          *string      `json:"plan"`
	Status        string       `json:"status"`
	StatusLabel   string       `json:"status_label"`
	Visits        []visitDTO   `json:"visits"`
	Comments      []commentDTO `json:"comments"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func toDTO(r *models.DailyReport) reportDTO {
	out := reportDTO{
		ID:            r.ID,
		SalesPersonID: r.SalesPersonID,
		ReportDate:    r.ReportDate.Format(dateLayout),
		Problem:       r.Problem,
		Plan:          r.Plan,
		Status:        string(r.Status),
		StatusLabel:   r.Status.Label(),
		Visits:        make([]visitDTO, 0, len(r.Visits)),
		Comments:      make([]commentDTO, 0, len(r.Comments)),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	for _, v := range r.Visits {
		d := visitDTO{
			ID:           v.ID,
			CustomerID:   v.CustomerID,
			VisitTime:    v.VisitTime,
			VisitPurpose: v.VisitPurpose,
			VisitContent: v.VisitContent,
			VisitResult:  v.VisitResult,
		}
		if v.Customer != nil {
			d.CustomerName = v.Customer.CustomerName
		}
		out.Visits = append(out.Visits, d)
	}
	for _, c := range r.Comments {
		out.Comments = append(out.Comments, commentDTO{
			ID:            c.ID,
			SalesPersonID: c.SalesPersonID,
			CommentText:   c.CommentText,
			CreatedAt:     c.CreatedAt,
		})
	}
	return out
}

func toDTOs(list []models.DailyReport) []reportDTO {
	out := make([]reportDTO, 0, len(list))
	for i := range list {
		out = append(out, toDTO(&list[i]))
	}
	return out
}
