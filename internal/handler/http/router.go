package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/aura-hris/timesheet-backend-go/internal/handler/http/middleware"
	"github.com/aura-hris/timesheet-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	jwtService jwt.Service,
	timesheetHandler TimesheetHandler,
	proposalHandler ProposalHandler,
	payslipHandler PayslipHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "timesheet-core"),
		slog.String("version", "v1.0.0"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/timesheets", func(r chi.Router) {
				r.Post("/punches", timesheetHandler.RecordPunch)
				r.Post("/prepare/{month}", timesheetHandler.PrepareMonth)
				r.Post("/invalidate/date/{date}", timesheetHandler.InvalidateDate)
				r.Post("/invalidate/employee/{employeeID}", timesheetHandler.InvalidateEmployeeRange)
				r.Get("/needing-refresh", timesheetHandler.ListNeedingRefresh)

				r.Route("/{employeeID}", func(r chi.Router) {
					r.Get("/entries/{date}", timesheetHandler.GetEntry)
					r.Get("/months/{month}/entries", timesheetHandler.ListEntries)
					r.Get("/months/{month}", timesheetHandler.GetMonthly)
					r.Post("/months/{month}/refresh", timesheetHandler.RefreshMonthly)
				})
			})

			r.Route("/proposals", func(r chi.Router) {
				r.Post("/{proposalID}/execute", proposalHandler.Execute)
			})

			r.Route("/salary-periods", func(r chi.Router) {
				r.Get("/", payslipHandler.ListPeriods)
				r.Post("/", payslipHandler.CreatePeriod)

				r.Route("/{periodID}", func(r chi.Router) {
					r.Get("/", payslipHandler.GetPeriod)
					r.Post("/complete", payslipHandler.CompletePeriod)
					r.Post("/uncomplete", payslipHandler.UncompletePeriod)
					r.Post("/recompute", payslipHandler.RecomputePeriod)
					r.Get("/slips", payslipHandler.ListSlips)
					r.Get("/payment-table", payslipHandler.PaymentTable)
					r.Get("/deferred-table", payslipHandler.DeferredTable)
				})
			})

			r.Route("/slips/{slipID}", func(r chi.Router) {
				r.Get("/", payslipHandler.GetSlip)
				r.Post("/recompute", payslipHandler.RecomputeSlip)
				r.Post("/hold", payslipHandler.HoldSlip)
				r.Post("/unhold", payslipHandler.UnholdSlip)
				r.Post("/settle-penalty", payslipHandler.SettlePenalty)
			})
		})
	})
	return r
}
