package auth

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
)

var ErrForbidden = errors.New("forbidden")

// ABACPolicy decides per-record access: applicants see their own
// applications, approvers see what is waiting on them, viewers and admins
// see everything.
type ABACPolicy struct{}

func (p *ABACPolicy) CanViewApplication(u *User, applicantID int64, currentApproverID *int64) error {
	if u == nil {
		return ErrForbidden
	}
	if u.CanViewAllApplications() {
		return nil
	}
	if u.ID == applicantID {
		return nil
	}
	if currentApproverID != nil && u.ID == *currentApproverID {
		return nil
	}
	return ErrForbidden
}

// RequireABAC wraps a per-request ABAC check around a handler.
func RequireABAC(abac *ABACPolicy, check func(a *ABACPolicy, u *User, r *http.Request) error) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := UserFromContext(r.Context())
			if !ok || u == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if err := check(abac, u, r); err != nil {
				if errors.Is(err, ErrForbidden) {
					http.Error(w, "forbidden", http.StatusForbidden)
					return
				}
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCanViewApplication gates a route on visibility of the application
// named by the {id} URL parameter.
func RequireCanViewApplication(db *sqlx.DB, abac *ABACPolicy) func(next http.Handler) http.Handler {
	return RequireABAC(abac, func(a *ABACPolicy, u *User, r *http.Request) error {
		idStr := chi.URLParam(r, "id")
		if idStr == "" {
			return ErrForbidden
		}
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return err
		}

		var row struct {
			ApplicantID int64         `db:"applicant_id"`
			ApproverID  sql.NullInt64 `db:"approver_id"`
		}
		err = db.GetContext(r.Context(), &row,
			"SELECT applicant_id, approver_id FROM applications WHERE id=$1", id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrForbidden
			}
			return err
		}

		var approverID *int64
		if row.ApproverID.Valid {
			approverID = &row.ApproverID.Int64
		}
		return a.CanViewApplication(u, row.ApplicantID, approverID)
	})
}
