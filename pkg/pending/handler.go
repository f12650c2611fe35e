package pending

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/haushalt/haushalt/internal/rest"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type PendingOccurrenceDTO struct {
	ID          int      `json:"id"`
	ScheduleId  int      `json:"scheduleId"`
	PlannedDate string   `json:"plannedDate"`
	Amount      *float64 `json:"amount,omitempty"`
}

type ConfirmDTO struct {
	Amount          *float64 `json:"amount,omitempty"`
	Date            string   `json:"date,omitempty"`
	PaymentMethodId int      `json:"paymentMethodId,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetAll godoc
// @Summary List pending occurrences
// @Tags Pending
// @Produce json
// @Success 200 {array} PendingOccurrenceDTO
// @Router /api/schedule/pending [get]
func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	occurrences, err := h.service.GetAll(r.Context())
	if err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]PendingOccurrenceDTO, 0, len(occurrences))
	for _, occurrence := range occurrences {
		dtos = append(dtos, pendingToDTO(occurrence))
	}

	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
	}
}

// Confirm godoc
// @Summary Confirm a pending occurrence
// @Description Posts the occurrence as a transaction, optionally with an adjusted amount, date or payment method, and removes the pending row.
// @Tags Pending
// @Accept json
// @Param id path int true "Pending occurrence id"
// @Param confirmation body ConfirmDTO true "Adjustments"
// @Success 204
// @Failure 404 {object} rest.ErrorResponse "Not found"
// @Router /api/schedule/pending/{id}/confirm [post]
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		rest.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var dto ConfirmDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var amount decimal.Decimal
	if dto.Amount != nil {
		amount = decimal.NewFromFloat(*dto.Amount)
	}
	var date time.Time
	if dto.Date != "" {
		date, err = time.Parse("2006-01-02", dto.Date)
		if err != nil {
			rest.WriteError(w, "invalid date: "+dto.Date, http.StatusBadRequest)
			return
		}
	}

	log.Debugf("Confirming pending occurrence %d", id)
	if err := h.service.Confirm(r.Context(), id, amount, date, dto.PaymentMethodId); err != nil {
		if errors.Is(err, ErrPendingNotFound) {
			rest.WriteError(w, "pending occurrence not found", http.StatusNotFound)
			return
		}
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Reject godoc
// @Summary Reject a pending occurrence
// @Tags Pending
// @Param id path int true "Pending occurrence id"
// @Success 204
// @Failure 404 {object} rest.ErrorResponse "Not found"
// @Router /api/schedule/pending/{id} [delete]
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		rest.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.Reject(r.Context(), id); err != nil {
		if errors.Is(err, ErrPendingNotFound) {
			rest.WriteError(w, "pending occurrence not found", http.StatusNotFound)
			return
		}
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func pendingToDTO(occurrence PendingOccurrence) PendingOccurrenceDTO {
	dto := PendingOccurrenceDTO{
		ID:          occurrence.ID,
		ScheduleId:  occurrence.ScheduleId,
		PlannedDate: occurrence.PlannedDate.Format(dateLayout),
	}
	if occurrence.Amount.Valid {
		amount, _ := occurrence.Amount.Decimal.Float64()
		dto.Amount = &amount
	}
	return dto
}
