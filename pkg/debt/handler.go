package debt

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/haushalt/haushalt/internal/rest"
	"github.com/haushalt/haushalt/pkg/expense"
)

const dateLayout = "2006-01-02"

type ReceiptDebtDTO struct {
	ExpenseId int     `json:"expenseId"`
	Date      string  `json:"date"`
	Direction string  `json:"direction"`
	Amount    float64 `json:"amount"`
	Settled   bool    `json:"settled"`
}

type SummaryDTO struct {
	Receipts     []ReceiptDebtDTO `json:"receipts"`
	DebtToEntity float64          `json:"debtToEntity"`
	DebtToMe     float64          `json:"debtToMe"`
	NetBalance   float64          `json:"netBalance"`
}

type DebtorShareDTO struct {
	EntityId int     `json:"entityId"`
	Amount   float64 `json:"amount"`
	Paid     bool    `json:"paid"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetSummary godoc
// @Summary Net debt balance between the user and an entity
// @Tags Debt
// @Produce json
// @Param entityId path int true "Entity id"
// @Success 200 {object} SummaryDTO
// @Router /api/debt/{entityId} [get]
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	entityId, err := strconv.Atoi(mux.Vars(r)["entityId"])
	if err != nil {
		rest.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	summary, err := h.service.CalculateDebts(r.Context(), entityId)
	if err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	receipts := make([]ReceiptDebtDTO, 0, len(summary.Receipts))
	for _, rd := range summary.Receipts {
		amount, _ := rd.Amount.Round(2).Float64()
		receipts = append(receipts, ReceiptDebtDTO{
			ExpenseId: rd.ExpenseId,
			Date:      rd.Date.Format(dateLayout),
			Direction: string(rd.Direction),
			Amount:    amount,
			Settled:   rd.Settled,
		})
	}
	debtToEntity, _ := summary.DebtToEntity.Round(2).Float64()
	debtToMe, _ := summary.DebtToMe.Round(2).Float64()
	netBalance, _ := summary.NetBalance.Round(2).Float64()
	dto := SummaryDTO{
		Receipts:     receipts,
		DebtToEntity: debtToEntity,
		DebtToMe:     debtToMe,
		NetBalance:   netBalance,
	}

	if err := json.NewEncoder(w).Encode(dto); err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetReceiptSummary godoc
// @Summary Per-debtor breakdown of one receipt
// @Tags Debt
// @Produce json
// @Param id path int true "Expense id"
// @Success 200 {array} DebtorShareDTO
// @Router /api/debt/receipt/{id} [get]
func (h *Handler) GetReceiptSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	expenseId, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		rest.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	shares, err := h.service.ReceiptSummary(r.Context(), expenseId)
	if errors.Is(err, expense.ErrExpenseNotFound) {
		rest.WriteError(w, "Expense not found", http.StatusNotFound)
		return
	} else if err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]DebtorShareDTO, 0, len(shares))
	for _, share := range shares {
		amount, _ := share.Amount.Round(2).Float64()
		dtos = append(dtos, DebtorShareDTO{EntityId: share.EntityId, Amount: amount, Paid: share.Paid})
	}

	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
	}
}
