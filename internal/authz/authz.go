// Package authz holds the capability predicates and the daily-report status
// machine. Every function here is pure: it looks only at the principal and at
// records the caller already loaded, and never touches the store.
package authz

import (
	"github.com/nippoworks/api-nippo/internal/models"
)

// Principal is the authenticated actor, reduced from the session.
type Principal struct {
	ID        uint
	IsManager bool
}

// isDirectManagerOf reports whether p is the direct manager of the sales
// person whose manager id is ownerManagerID. One hop only; a manager never
// sees further down the tree.
func (p Principal) isDirectManagerOf(ownerManagerID *uint) bool {
	return p.IsManager && ownerManagerID != nil && *ownerManagerID == p.ID
}

// CanViewReport: the owner, or the owner's direct manager.
func CanViewReport(p Principal, report *models.DailyReport, ownerManagerID *uint) bool {
	if p.ID == report.SalesPersonID {
		return true
	}
	return p.isDirectManagerOf(ownerManagerID)
}

// CanEditReport guards every content mutation of a report (problem, plan,
// visit records, deletion). A confirmed report is locked for everyone, owner
// included; below that, managers never edit a subordinate's content.
func CanEditReport(p Principal, report *models.DailyReport) error {
	if report.Status == models.StatusConfirmed {
		return deny(ReasonReportLocked, "承認済みの日報は編集できません")
	}
	if p.ID != report.SalesPersonID {
		return deny(ReasonNotOwner, "自分の日報のみ編集できます")
	}
	return nil
}

// CanDeleteComment: only the author, regardless of manager status.
func CanDeleteComment(p Principal, comment *models.Comment) error {
	if p.ID != comment.SalesPersonID {
		return deny(ReasonNotCommentAuthor, "自分が投稿したコメントのみ削除できます")
	}
	return nil
}

// CanConfirmReport: the owner's direct manager, and only while the report is
// sitting in submitted.
func CanConfirmReport(p Principal, report *models.DailyReport, ownerManagerID *uint) error {
	if !p.isDirectManagerOf(ownerManagerID) {
		return deny(ReasonNotManagerOfOwner, "部下の日報のみ承認できます")
	}
	if report.Status != models.StatusSubmitted {
		return deny(ReasonInvalidSourceStatus, "提出済みの日報のみ承認できます")
	}
	return nil
}

// allowedEdges is the full status machine: draft → submitted → confirmed,
// never backward, with same-state re-save allowed while unconfirmed.
var allowedEdges = map[models.ReportStatus]map[models.ReportStatus]bool{
	models.StatusDraft: {
		models.StatusDraft:     true,
		models.StatusSubmitted: true,
	},
	models.StatusSubmitted: {
		models.StatusSubmitted: true,
		models.StatusConfirmed: true,
	},
	models.StatusConfirmed: {},
}

// Transition validates a requested status change and returns the status to
// persist. The caller applies the mutation; a non-nil error means nothing may
// be written.
func Transition(p Principal, report *models.DailyReport, ownerManagerID *uint, requested models.ReportStatus) (models.ReportStatus, error) {
	if report.Status == models.StatusConfirmed {
		return "", deny(ReasonReportLocked, "承認済みの日報は変更できません")
	}
	if !allowedEdges[report.Status][requested] {
		return "", deny(ReasonInvalidSourceStatus, "このステータスには変更できません")
	}
	if requested == models.StatusConfirmed {
		if err := CanConfirmReport(p, report, ownerManagerID); err != nil {
			return "", err
		}
		return requested, nil
	}
	// draft save and submit are owner actions
	if p.ID != report.SalesPersonID {
		return "", deny(ReasonNotOwner, "自分の日報のみ変更できます")
	}
	return requested, nil
}
