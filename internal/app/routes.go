package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Schedules
	r.HandleFunc("/api/schedule", deps.ScheduleHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/schedule", deps.ScheduleHandler.Create).Methods("POST")
	r.HandleFunc("/api/schedule/process", deps.ReconcilerHandler.Process).Methods("POST")
	r.HandleFunc("/api/schedule/{id:[0-9]+}", deps.ScheduleHandler.Update).Methods("PUT")
	r.HandleFunc("/api/schedule/{id:[0-9]+}", deps.ScheduleHandler.Delete).Methods("DELETE")

	// Pending occurrences
	r.HandleFunc("/api/schedule/pending", deps.PendingHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/schedule/pending/{id:[0-9]+}/confirm", deps.PendingHandler.Confirm).Methods("POST")
	r.HandleFunc("/api/schedule/pending/{id:[0-9]+}", deps.PendingHandler.Reject).Methods("DELETE")

	// Income
	r.HandleFunc("/api/income", deps.IncomeHandler.GetAll).Queries("from", "{from}", "to", "{to}").Methods("GET")
	r.HandleFunc("/api/income", deps.IncomeHandler.Create).Methods("POST")
	r.HandleFunc("/api/income/{id:[0-9]+}", deps.IncomeHandler.Delete).Methods("DELETE")

	// Expenses
	r.HandleFunc("/api/expense", deps.ExpenseHandler.GetAll).Queries("from", "{from}", "to", "{to}").Methods("GET")
	r.HandleFunc("/api/expense", deps.ExpenseHandler.Create).Methods("POST")
	r.HandleFunc("/api/expense/payment/{id:[0-9]+}", deps.ExpenseHandler.DeletePayment).Methods("DELETE")
	r.HandleFunc("/api/expense/{id:[0-9]+}", deps.ExpenseHandler.Get).Methods("GET")
	r.HandleFunc("/api/expense/{id:[0-9]+}", deps.ExpenseHandler.Update).Methods("PUT")
	r.HandleFunc("/api/expense/{id:[0-9]+}", deps.ExpenseHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/expense/{id:[0-9]+}/payment/{entityId:[0-9]+}", deps.ExpenseHandler.RecordPayment).Methods("POST")

	// Debts
	r.HandleFunc("/api/debt/receipt/{id:[0-9]+}", deps.DebtHandler.GetReceiptSummary).Methods("GET")
	r.HandleFunc("/api/debt/{entityId:[0-9]+}", deps.DebtHandler.GetSummary).Methods("GET")

	// Profile management
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user/current", deps.UserHandler.UpdateUser).Methods("PUT")
	r.HandleFunc("/api/user", deps.UserHandler.CreateUser).Methods("POST")
	r.HandleFunc("/api/user", deps.UserHandler.GetAvailableUsers).Methods("GET")
	r.HandleFunc("/api/user/{userUid}", deps.UserHandler.DeleteUser).Methods("DELETE")
}
