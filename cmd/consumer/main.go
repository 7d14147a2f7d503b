package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aura-hris/timesheet-backend-go/internal/config"
	"github.com/aura-hris/timesheet-backend-go/internal/messaging/kafka/consumer"
	"github.com/aura-hris/timesheet-backend-go/internal/pkg/database"
	"github.com/aura-hris/timesheet-backend-go/internal/repository/postgresql"
	proposalService "github.com/aura-hris/timesheet-backend-go/internal/service/proposal"
	timesheetService "github.com/aura-hris/timesheet-backend-go/internal/service/timesheet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
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
	proposalSvc := proposalService.NewProposalService(db, proposalRepo, entryRepo, monthlyRepo, punchRepo, employeeRepo, snapshotSvc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	punchReader := consumer.NewReader(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.PunchTopic)
	defer punchReader.Close()
	proposalReader := consumer.NewReader(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.ProposalTopic)
	defer proposalReader.Close()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		consumer.ConsumePunchEvents(ctx, punchReader, entrySvc)
	}()
	go func() {
		defer wg.Done()
		consumer.ConsumeProposalApprovals(ctx, proposalReader, proposalSvc)
	}()

	<-ctx.Done()
	wg.Wait()
}
