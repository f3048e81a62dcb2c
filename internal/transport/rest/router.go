package rest

import (
	"log/slog"
	"net/http"

	"github.com/bp848/mqdriven-sub004/internal/accounting"
	"github.com/bp848/mqdriven-sub004/internal/application"
	"github.com/bp848/mqdriven-sub004/internal/applicationcode"
	"github.com/bp848/mqdriven-sub004/internal/approvalroute"
	"github.com/bp848/mqdriven-sub004/internal/auth"
	"github.com/bp848/mqdriven-sub004/internal/ocr"
	"github.com/bp848/mqdriven-sub004/internal/transport/middleware"
	"github.com/bp848/mqdriven-sub004/internal/transport/swagger"
	"github.com/bp848/mqdriven-sub004/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/jmoiron/sqlx"
)

// Handlers groups the HTTP handlers mounted by RegisterAllRoutes.
type Handlers struct {
	Auth            *auth.Handler
	User            *user.Handler
	Application     *application.Handler
	ApplicationCode *applicationcode.Handler
	ApprovalRoute   *approvalroute.Handler
	Accounting      *accounting.Handler
	OCR             *ocr.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sqlx.DB, h Handlers, rbac *auth.RBACAuthorization, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db.DB)
	abac := &auth.ABACPolicy{}

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", h.Auth.Login)
				sr.Post("/refresh", h.Auth.RefreshToken)
				sr.Post("/logout", h.Auth.Logout)
			})
		}

		if h.Auth == nil {
			return
		}

		// Everything below requires an authenticated user.
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.User != nil {
				pr.Get("/users/me", h.User.GetCurrentUser)
			}

			if h.ApplicationCode != nil {
				pr.Get("/application-codes", h.ApplicationCode.GetApplicationCodes)
			}

			if h.Application != nil {
				pr.Route("/applications", func(ar chi.Router) {
					ar.Group(func(cr chi.Router) {
						cr.Use(middleware.RequirePermissions(auth.PermissionCreateApplications, auth.PermissionAdmin))
						cr.Post("/", h.Application.CreateApplication)
					})
					ar.Get("/my", h.Application.GetMyApplications)
					ar.Get("/summary", h.Application.GetSummary)

					ar.Group(func(vr chi.Router) {
						vr.Use(rbac.RequireViewAll())
						vr.Get("/", h.Application.GetAllApplications)
					})

					ar.Group(func(apr chi.Router) {
						apr.Use(rbac.RequireApprover())
						apr.Get("/pending", h.Application.GetPendingApprovals)
					})

					ar.Route("/{id}", func(ir chi.Router) {
						ir.Group(func(vr chi.Router) {
							vr.Use(auth.RequireCanViewApplication(db, abac))
							vr.Get("/", h.Application.GetApplication)
							vr.Get("/route-progress", h.Application.GetRouteProgress)
						})

						ir.Put("/", h.Application.UpdateDraft)
						ir.Delete("/", h.Application.DeleteDraft)
						ir.Post("/submit", h.Application.SubmitApplication)
						ir.Post("/cancel", h.Application.CancelApplication)
						ir.Post("/resubmit", h.Application.ResubmitApplication)

						ir.Group(func(mr chi.Router) {
							mr.Use(rbac.RequireApprover())
							mr.Patch("/approve", h.Application.ApproveApplication)
							mr.Patch("/reject", h.Application.RejectApplication)
						})
					})
				})
			}

			if h.ApprovalRoute != nil {
				pr.Route("/approval-routes", func(rr chi.Router) {
					rr.Get("/", h.ApprovalRoute.GetRoutes)
					rr.Get("/{id}", h.ApprovalRoute.GetRoute)

					rr.Group(func(mr chi.Router) {
						mr.Use(rbac.RequireManageRoutes())
						mr.Post("/", h.ApprovalRoute.CreateRoute)
						mr.Put("/{id}", h.ApprovalRoute.UpdateRoute)
						mr.Delete("/{id}", h.ApprovalRoute.DeactivateRoute)
					})
				})
			}

			if h.Accounting != nil {
				pr.Group(func(jr chi.Router) {
					jr.Use(rbac.RequireExportJournals())
					jr.Get("/journals", h.Accounting.ListJournals)
					jr.Get("/journals/applications/{applicationId}", h.Accounting.GetJournalForApplication)
					jr.Post("/journals/applications/{applicationId}/export", h.Accounting.ExportJournal)
				})
			}

			if h.OCR != nil {
				pr.Group(func(or chi.Router) {
					or.Use(middleware.RequirePermissions(auth.PermissionCreateApplications, auth.PermissionAdmin))
					or.Post("/ocr/extract", h.OCR.ExtractDocument)
				})
			}
		})
	})
}
