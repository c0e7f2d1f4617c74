package authz

// Reason is the machine-readable code carried by every denial. API clients
// branch on these, never on the message text.
type Reason string

const (
	ReasonNotOwner            Reason = "NOT_OWNER"
	ReasonNotManagerOfOwner   Reason = "NOT_MANAGER_OF_OWNER"
	ReasonNotCommentAuthor    Reason = "NOT_COMMENT_AUTHOR"
	ReasonInvalidSourceStatus Reason = "INVALID_SOURCE_STATUS"
	ReasonReportLocked        Reason = "REPORT_LOCKED"
)

// Denial is a deterministic, side-effect-free rejection of a request.
type Denial struct {
	Reason  Reason
	Message string
}

func (d *Denial) Error() string { return string(d.Reason) + ": " + d.Message }

func deny(reason Reason, message string) *Denial {
	return &Denial{Reason: reason, Message: message}
}

// AsDenial unwraps err into a *Denial, or returns nil.
func AsDenial(err error) *Denial {
	if d, ok := err.(*Denial); ok {
		return d
	}
	return nil
}
