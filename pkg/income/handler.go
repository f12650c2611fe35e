package income

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/haushalt/haushalt/internal/rest"
	"github.com/shopspring/decimal"
)

const queryDateLayout = "2006-01-02"

type IncomeDTO struct {
	ID              int     `json:"id"`
	Date            string  `json:"date"`
	Amount          float64 `json:"amount"`
	SourceId        int     `json:"sourceId"`
	CategoryId      *int    `json:"categoryId,omitempty"`
	PaymentMethodId int     `json:"paymentMethodId"`
	Note            string  `json:"note,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetAll godoc
// @Summary List incomes in a date range
// @Tags Income
// @Produce json
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {array} IncomeDTO
// @Router /api/income [get]
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

	incomes, err := h.service.GetAll(r.Context(), from, to)
	if err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]IncomeDTO, 0, len(incomes))
	for _, income := range incomes {
		dtos = append(dtos, incomeToDTO(income))
	}

	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
	}
}

// Create godoc
// @Summary Record an income
// @Tags Income
// @Accept json
// @Produce json
// @Param income body IncomeDTO true "Income"
// @Success 201 {object} IncomeDTO
// @Router /api/income [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto IncomeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}
	income, err := dtoToIncome(dto)
	if err != nil {
		rest.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), income)
	if err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(incomeToDTO(created)); err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
	}
}

// Delete godoc
// @Summary Delete an income
// @Tags Income
// @Param id path int true "Income id"
// @Success 204
// @Router /api/income/{id} [delete]
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
		rest.WriteError(w, "Income not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func incomeToDTO(income Income) IncomeDTO {
	amount, _ := income.Amount.Float64()
	return IncomeDTO{
		ID:              income.ID,
		Date:            income.Date.Format(queryDateLayout),
		Amount:          amount,
		SourceId:        income.SourceId,
		CategoryId:      income.CategoryId,
		PaymentMethodId: income.PaymentMethodId,
		Note:            income.Note,
	}
}

func dtoToIncome(dto IncomeDTO) (Income, error) {
	date, err := time.Parse(queryDateLayout, dto.Date)
	if err != nil {
		return Income{}, err
	}
	return Income{
		ID:              dto.ID,
		Date:            date,
		Amount:          decimal.NewFromFloat(dto.Amount),
		SourceId:        dto.SourceId,
		CategoryId:      dto.CategoryId,
		PaymentMethodId: dto.PaymentMethodId,
		Note:            dto.Note,
	}, nil
}
