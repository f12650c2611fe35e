package app

import (
	"database/sql"

	"github.com/haushalt/haushalt/internal/event_bus"
	"github.com/haushalt/haushalt/internal/utils"
	"github.com/haushalt/haushalt/pkg/debt"
	"github.com/haushalt/haushalt/pkg/expense"
	"github.com/haushalt/haushalt/pkg/income"
	"github.com/haushalt/haushalt/pkg/pending"
	"github.com/haushalt/haushalt/pkg/posting"
	"github.com/haushalt/haushalt/pkg/reconciler"
	"github.com/haushalt/haushalt/pkg/recurrence"
	"github.com/haushalt/haushalt/pkg/schedule"
	"github.com/haushalt/haushalt/pkg/user"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus
	Clock    utils.Clock

	UserService user.Service
	UserHandler *user.Handler

	IncomeRepo    income.Repo
	IncomeService income.Service
	IncomeHandler *income.Handler

	ExpenseRepo    expense.Repo
	ExpenseService expense.Service
	ExpenseHandler *expense.Handler

	Poster *posting.Poster

	ScheduleRepo    schedule.Repo
	ScheduleService schedule.Service
	ScheduleHandler *schedule.Handler

	PendingRepo    pending.Repo
	PendingService pending.Service
	PendingHandler *pending.Handler

	DebtService debt.Service
	DebtHandler *debt.Handler

	OccurrenceGenerator *recurrence.Generator
	ReconcilerService   *reconciler.Service
	ReconcilerHandler   *reconciler.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB) *Dependencies {
	deps := &Dependencies{}

	deps.EventBus = event_bus.NewEventBus()
	deps.Clock = &utils.SystemClock{}

	deps.UserService = user.NewUserService(user.NewUserRepo(db))
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.IncomeRepo = income.NewRepo(db)
	deps.IncomeService = income.NewService(deps.IncomeRepo)
	deps.IncomeHandler = income.NewHandler(deps.IncomeService)

	deps.ExpenseRepo = expense.NewRepo(db)
	deps.ExpenseService = expense.NewService(deps.ExpenseRepo, deps.Clock)
	deps.ExpenseHandler = expense.NewHandler(deps.ExpenseService)

	deps.Poster = posting.NewPoster(deps.IncomeService, deps.ExpenseService)

	deps.PendingRepo = pending.NewRepo(db)
	deps.ScheduleRepo = schedule.NewRepo(db)
	deps.ScheduleService = schedule.NewService(deps.ScheduleRepo, deps.PendingRepo, deps.EventBus, deps.Clock)
	deps.ScheduleHandler = schedule.NewHandler(deps.ScheduleService)

	deps.PendingService = pending.NewService(deps.PendingRepo, deps.ScheduleRepo, deps.Poster, deps.EventBus)
	deps.PendingHandler = pending.NewHandler(deps.PendingService)

	deps.DebtService = debt.NewService(deps.ExpenseRepo)
	deps.DebtHandler = debt.NewHandler(deps.DebtService)

	deps.OccurrenceGenerator = recurrence.NewGenerator()
	deps.ReconcilerService = reconciler.NewService(
		deps.ScheduleRepo,
		deps.PendingRepo,
		deps.IncomeRepo,
		deps.ExpenseRepo,
		deps.Poster,
		deps.OccurrenceGenerator,
		deps.Clock,
	)
	deps.ReconcilerHandler = reconciler.NewHandler(deps.ReconcilerService)

	// every schedule mutation triggers a reconciliation pass for the profile
	// that made it
	deps.EventBus.Subscribe(event_bus.ScheduleChanged, func(e event_bus.Event) error {
		if err := deps.ReconcilerService.ProcessSchedules(e.Context()); err != nil {
			log.Errorf("reconciliation after schedule change failed: %v", err)
			return err
		}
		return nil
	})

	// confirmations end up in the audit log with the schedule they settle
	deps.EventBus.Subscribe(event_bus.PendingConfirmed, func(e event_bus.Event) error {
		payload, ok := e.Data.(event_bus.PendingConfirmedEvent)
		if !ok {
			return nil
		}
		log.WithFields(log.Fields{
			"pendingId":  payload.PendingId,
			"scheduleId": payload.ScheduleId,
		}).Info("pending occurrence confirmed")
		return nil
	})

	return deps
}
