package expense

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/haushalt/haushalt/internal/rest"
	"github.com/shopspring/decimal"
)

const queryDateLayout = "2006-01-02"

type LineItemDTO struct {
	ID                  int     `json:"id"`
	Name                string  `json:"name"`
	Quantity            float64 `json:"quantity"`
	UnitPrice           float64 `json:"unitPrice"`
	ExcludeFromDiscount bool    `json:"excludeFromDiscount,omitempty"`
	DebtorEntityId      *int    `json:"debtorEntityId,omitempty"`
}

type SplitDTO struct {
	ID        int `json:"id"`
	EntityId  int `json:"entityId"`
	SplitPart int `json:"splitPart"`
}

type ExpenseDTO struct {
	ID               int           `json:"id"`
	Date             string        `json:"date"`
	RecipientId      int           `json:"recipientId"`
	CategoryId       *int          `json:"categoryId,omitempty"`
	PaymentMethodId  int           `json:"paymentMethodId"`
	Status           string        `json:"status"`
	IsNonItemised    bool          `json:"isNonItemised"`
	NonItemisedTotal float64       `json:"nonItemisedTotal,omitempty"`
	DiscountPct      float64       `json:"discountPct,omitempty"`
	SplitType        string        `json:"splitType"`
	OwnShares        int           `json:"ownShares,omitempty"`
	TotalShares      int           `json:"totalShares,omitempty"`
	OwedToEntityId   *int          `json:"owedToEntityId,omitempty"`
	Note             string        `json:"note,omitempty"`
	Items            []LineItemDTO `json:"items"`
	Splits           []SplitDTO    `json:"splits"`
	// Total is computed from the items and discount; read only.
	Total float64 `json:"total"`
}

type DebtorPaymentDTO struct {
	ID        int    `json:"id"`
	ExpenseId int    `json:"expenseId"`
	EntityId  int    `json:"entityId"`
	PaidAt    string `json:"paidAt"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetAll godoc
// @Summary List expenses in a date range
// @Tags Expense
// @Produce json
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {array} ExpenseDTO
// @Router /api/expense [get]
func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	from, err := time.Parse(queryDateLayout, r.URL.Query().Get("from"))
	if err != nil {
		rest.WriteError(w, "invalid from date", http.StatusBadRequest)
		return
	}
	to, err := time.Parse(queryDateLayout, r.URL.Query().Get("to"))
	if err != nil {
		rest.WriteError(w, "invalid to date", http.StatusBadRequest)
		return
	}

	expenses, err := h.service.GetAll(r.Context(), from, to)
	if err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]ExpenseDTO, 0, len(expenses))
	for _, expense := range expenses {
		dtos = append(dtos, expenseToDTO(expense))
	}

	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
	}
}

// Get godoc
// @Summary Get a single expense with its items and splits
// @Tags Expense
// @Produce json
// @Param id path int true "Expense id"
// @Success 200 {object} ExpenseDTO
// @Router /api/expense/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		rest.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	expense, err := h.service.Get(r.Context(), id)
	if errors.Is(err, ErrExpenseNotFound) {
		rest.WriteError(w, "Expense not found", http.StatusNotFound)
		return
	} else if err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(expenseToDTO(expense)); err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
	}
}

// Create godoc
// @Summary Record an expense
// @Tags Expense
// @Accept json
// @Produce json
// @Param expense body ExpenseDTO true "Expense"
// @Success 201 {object} ExpenseDTO
// @Router /api/expense [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto ExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}
	expense, err := dtoToExpense(dto)
	if err != nil {
		rest.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), expense)
	if err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(expenseToDTO(created)); err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
	}
}

// Update godoc
// @Summary Update an expense, replacing its items and splits
// @Tags Expense
// @Accept json
// @Produce json
// @Param id path int true "Expense id"
// @Param expense body ExpenseDTO true "Expense"
// @Success 200 {object} ExpenseDTO
// @Router /api/expense/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		rest.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto ExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}
	expense, err := dtoToExpense(dto)
	if err != nil {
		rest.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}
	expense.ID = id

	updated, err := h.service.Update(r.Context(), expense)
	if errors.Is(err, ErrExpenseNotFound) {
		rest.WriteError(w, "Expense not found", http.StatusNotFound)
		return
	} else if err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(expenseToDTO(updated)); err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
	}
}

// Delete godoc
// @Summary Delete an expense
// @Tags Expense
// @Param id path int true "Expense id"
// @Success 204
// @Router /api/expense/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		rest.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ok, err := h.service.Delete(r.Context(), id)
	if err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		rest.WriteError(w, "Expense not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RecordPayment godoc
// @Summary Mark an entity's share of an expense as settled
// @Tags Expense
// @Produce json
// @Param id path int true "Expense id"
// @Param entityId path int true "Debtor entity id"
// @Success 201 {object} DebtorPaymentDTO
// @Router /api/expense/{id}/payment/{entityId} [post]
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	vars := mux.Vars(r)
	expenseId, err := strconv.Atoi(vars["id"])
	if err != nil {
		rest.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}
	entityId, err := strconv.Atoi(vars["entityId"])
	if err != nil {
		rest.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	payment, err := h.service.RecordPayment(r.Context(), expenseId, entityId)
	if errors.Is(err, ErrExpenseNotFound) {
		rest.WriteError(w, "Expense not found", http.StatusNotFound)
		return
	} else if err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	dto := DebtorPaymentDTO{
		ID:        payment.ID,
		ExpenseId: payment.ExpenseId,
		EntityId:  payment.EntityId,
		PaidAt:    payment.PaidAt.Format(queryDateLayout),
	}
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
	}
}

// DeletePayment godoc
// @Summary Remove a settlement marker
// @Tags Expense
// @Param id path int true "Payment id"
// @Success 204
// @Router /api/expense/payment/{id} [delete]
func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		rest.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ok, err := h.service.DeletePayment(r.Context(), id)
	if err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		rest.WriteError(w, "Payment not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func expenseToDTO(expense Expense) ExpenseDTO {
	items := make([]LineItemDTO, 0, len(expense.Items))
	for _, li := range expense.Items {
		quantity, _ := li.Quantity.Float64()
		unitPrice, _ := li.UnitPrice.Float64()
		items = append(items, LineItemDTO{
			ID:                  li.ID,
			Name:                li.Name,
			Quantity:            quantity,
			UnitPrice:           unitPrice,
			ExcludeFromDiscount: li.ExcludeFromDiscount,
			DebtorEntityId:      li.DebtorEntityId,
		})
	}
	splits := make([]SplitDTO, 0, len(expense.Splits))
	for _, s := range expense.Splits {
		splits = append(splits, SplitDTO{ID: s.ID, EntityId: s.EntityId, SplitPart: s.SplitPart})
	}

	nonItemisedTotal, _ := expense.NonItemisedTotal.Float64()
	discountPct, _ := expense.DiscountPct.Float64()
	total, _ := expense.Total().Round(2).Float64()
	return ExpenseDTO{
		ID:               expense.ID,
		Date:             expense.Date.Format(queryDateLayout),
		RecipientId:      expense.RecipientId,
		CategoryId:       expense.CategoryId,
		PaymentMethodId:  expense.PaymentMethodId,
		Status:           string(expense.Status),
		IsNonItemised:    expense.IsNonItemised,
		NonItemisedTotal: nonItemisedTotal,
		DiscountPct:      discountPct,
		SplitType:        string(expense.SplitType),
		OwnShares:        expense.OwnShares,
		TotalShares:      expense.TotalShares,
		OwedToEntityId:   expense.OwedToEntityId,
		Note:             expense.Note,
		Items:            items,
		Splits:           splits,
		Total:            total,
	}
}

func dtoToExpense(dto ExpenseDTO) (Expense, error) {
	date, err := time.Parse(queryDateLayout, dto.Date)
	if err != nil {
		return Expense{}, err
	}
	items := make([]LineItem, 0, len(dto.Items))
	for _, li := range dto.Items {
		items = append(items, LineItem{
			ID:                  li.ID,
			Name:                li.Name,
			Quantity:            decimal.NewFromFloat(li.Quantity),
			UnitPrice:           decimal.NewFromFloat(li.UnitPrice),
			ExcludeFromDiscount: li.ExcludeFromDiscount,
			DebtorEntityId:      li.DebtorEntityId,
		})
	}
	splits := make([]Split, 0, len(dto.Splits))
	for _, s := range dto.Splits {
		splits = append(splits, Split{ID: s.ID, EntityId: s.EntityId, SplitPart: s.SplitPart})
	}
	return Expense{
		ID:               dto.ID,
		Date:             date,
		RecipientId:      dto.RecipientId,
		CategoryId:       dto.CategoryId,
		PaymentMethodId:  dto.PaymentMethodId,
		Status:           Status(dto.Status),
		IsNonItemised:    dto.IsNonItemised,
		NonItemisedTotal: decimal.NewFromFloat(dto.NonItemisedTotal),
		DiscountPct:      decimal.NewFromFloat(dto.DiscountPct),
		SplitType:        SplitType(dto.SplitType),
		OwnShares:        dto.OwnShares,
		TotalShares:      dto.TotalShares,
		OwedToEntityId:   dto.OwedToEntityId,
		Note:             dto.Note,
		Items:            items,
		Splits:           splits,
	}, nil
}
