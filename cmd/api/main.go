package main

import (
	"fmt"
	"net/http"

	"github.com/aura-hris/timesheet-backend-go/internal/config"
	appHTTP "github.com/aura-hris/timesheet-backend-go/internal/handler/http"
	"github.com/aura-hris/timesheet-backend-go/internal/pkg/cron"
	"github.com/aura-hris/timesheet-backend-go/internal/pkg/database"
	"github.com/aura-hris/timesheet-backend-go/internal/pkg/jwt"
	"github.com/aura-hris/timesheet-backend-go/internal/repository/postgresql"
	payslipService "github.com/aura-hris/timesheet-backend-go/internal/service/payslip"
	proposalService "github.com/aura-hris/timesheet-backend-go/internal/service/proposal"
	timesheetService "github.com/aura-hris/timesheet-backend-go/internal/service/timesheet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	entryRepo := postgresql.NewEntryRepository(db)
	monthlyRepo := postgresql.NewMonthlyRepository(db)
	punchRepo := postgresql.NewPunchRepository(db)
	refreshQueueRepo := postgresql.NewRefreshQueueRepository(db)
	workScheduleRepo := postgresql.NewWorkScheduleRepository(db)
	calendarRepo := postgresql.NewCalendarRepository(db)
	contractRepo := postgresql.NewContractRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	proposalRepo := postgresql.NewProposalRepository(db)
	periodRepo := postgresql.NewSalaryPeriodRepository(db)
	slipRepo := postgresql.NewSlipRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret)

	snapshotSvc := timesheetService.NewSnapshotService(
		entryRepo,
		monthlyRepo,
		refreshQueueRepo,
		workScheduleRepo,
		calendarRepo,
		contractRepo,
		proposalRepo,
	)
	entrySvc := timesheetService.NewEntryService(entryRepo, monthlyRepo, punchRepo, employeeRepo, snapshotSvc)
	aggregatorSvc := timesheetService.NewAggregator(entryRepo, monthlyRepo, contractRepo)
	finalizerSvc := timesheetService.NewFinalizer(entryRepo, monthlyRepo)
	proposalSvc := proposalService.NewProposalService(db, proposalRepo, entryRepo, monthlyRepo, punchRepo, employeeRepo, snapshotSvc)
	payslipSvc := payslipService.NewPayslipService(db, periodRepo, slipRepo, monthlyRepo, contractRepo, employeeRepo)

	scheduler := cron.NewScheduler()
	cron.NewTimesheetJobs(
		snapshotSvc,
		aggregatorSvc,
		finalizerSvc,
		cfg.Timesheet.SnapshotInterval,
		cfg.Timesheet.AggregateInterval,
		cfg.Timesheet.FinalizeCutoffHour,
	).RegisterJobs(scheduler)
	cron.NewPayslipJobs(payslipSvc, periodRepo, cfg.Timesheet.SlipSweepInterval).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	timesheetHandler := appHTTP.NewTimesheetHandler(entrySvc, snapshotSvc, aggregatorSvc)
	proposalHandler := appHTTP.NewProposalHandler(proposalSvc)
	payslipHandler := appHTTP.NewPayslipHandler(payslipSvc)

	router := appHTTP.NewRouter(jwtService, timesheetHandler, proposalHandler, payslipHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
