package schedule

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/haushalt/haushalt/internal/rest"
	"github.com/haushalt/haushalt/pkg/recurrence"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type ScheduleDTO struct {
	ID                   int      `json:"id"`
	Kind                 Kind     `json:"kind"`
	CounterpartyId       int      `json:"counterpartyId"`
	CategoryId           *int     `json:"categoryId,omitempty"`
	EntityId             *int     `json:"entityId,omitempty"`
	PaymentMethodId      int      `json:"paymentMethodId"`
	ExpectedAmount       *float64 `json:"expectedAmount,omitempty"`
	Rule                 string   `json:"rule"`
	DayOfMonth           int      `json:"dayOfMonth,omitempty"`
	DayOfWeek            int      `json:"dayOfWeek,omitempty"`
	MonthOfYear          int      `json:"monthOfYear,omitempty"`
	RequiresConfirmation bool     `json:"requiresConfirmation"`
	LookaheadDays        int      `json:"lookaheadDays"`
	IsActive             bool     `json:"isActive"`
	Note                 string   `json:"note,omitempty"`
	CreatedAt            string   `json:"createdAt,omitempty"`
	// Description is the human-readable rendering of the rule, e.g.
	// "Monthly on the 3rd". Output only.
	Description string `json:"description,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetAll godoc
// @Summary List schedules
// @Tags Schedule
// @Produce json
// @Param includeInactive query bool false "Include deactivated schedules"
// @Success 200 {array} ScheduleDTO
// @Router /api/schedule [get]
func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	includeInactive := r.URL.Query().Has("includeInactive")

	schedules, err := h.service.GetAll(r.Context(), includeInactive)
	if err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]ScheduleDTO, 0, len(schedules))
	for _, schedule := range schedules {
		dtos = append(dtos, scheduleToDTO(schedule))
	}

	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
	}
}

// Create godoc
// @Summary Create a schedule
// @Tags Schedule
// @Accept json
// @Produce json
// @Param schedule body ScheduleDTO true "Schedule"
// @Success 201 {object} ScheduleDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid schedule"
// @Router /api/schedule [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new schedule")
	w.Header().Set("Content-Type", "application/json")

	var dto ScheduleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), dtoToSchedule(dto))
	if err != nil {
		if errors.Is(err, recurrence.ErrInvalidRule) {
			rest.WriteError(w, err.Error(), http.StatusBadRequest)
			return
		}
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(scheduleToDTO(created)); err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
	}
}

// Update godoc
// @Summary Update a schedule
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path int true "Schedule id"
// @Param schedule body ScheduleDTO true "Schedule"
// @Success 200 {object} ScheduleDTO
// @Router /api/schedule/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		rest.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto ScheduleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.ID == 0 || dto.ID != id {
		rest.WriteError(w, "Invalid schedule id in request body", http.StatusBadRequest)
		return
	}

	ok, err := h.service.Update(r.Context(), dtoToSchedule(dto))
	if err != nil {
		if errors.Is(err, recurrence.ErrInvalidRule) {
			rest.WriteError(w, err.Error(), http.StatusBadRequest)
			return
		}
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		rest.WriteError(w, "Schedule not found", http.StatusNotFound)
		return
	}

	if err := json.NewEncoder(w).Encode(dto); err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
	}
}

// Delete godoc
// @Summary Deactivate a schedule
// @Tags Schedule
// @Param id path int true "Schedule id"
// @Param hardDeletePending query bool false "Also remove the schedule's pending occurrences"
// @Success 204
// @Router /api/schedule/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		rest.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}
	hardDeletePending := r.URL.Query().Has("hardDeletePending")

	ok, err := h.service.Delete(r.Context(), id, hardDeletePending)
	if err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		rest.WriteError(w, "Schedule not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func scheduleToDTO(schedule Schedule) ScheduleDTO {
	dto := ScheduleDTO{
		ID:                   schedule.ID,
		Kind:                 schedule.Kind,
		CounterpartyId:       schedule.CounterpartyId,
		CategoryId:           schedule.CategoryId,
		EntityId:             schedule.EntityId,
		PaymentMethodId:      schedule.PaymentMethodId,
		Rule:                 schedule.Rule,
		DayOfMonth:           schedule.Anchors.DayOfMonth,
		DayOfWeek:            int(schedule.Anchors.DayOfWeek),
		MonthOfYear:          int(schedule.Anchors.MonthOfYear),
		RequiresConfirmation: schedule.RequiresConfirmation,
		LookaheadDays:        schedule.LookaheadDays,
		IsActive:             schedule.IsActive,
		Note:                 schedule.Note,
		Description:          recurrence.Describe(schedule.Rule, schedule.Anchors),
	}
	if schedule.ExpectedAmount.Valid {
		amount, _ := schedule.ExpectedAmount.Decimal.Float64()
		dto.ExpectedAmount = &amount
	}
	if !schedule.CreatedAt.IsZero() {
		dto.CreatedAt = schedule.CreatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func dtoToSchedule(dto ScheduleDTO) Schedule {
	schedule := Schedule{
		ID:                   dto.ID,
		Kind:                 dto.Kind,
		CounterpartyId:       dto.CounterpartyId,
		CategoryId:           dto.CategoryId,
		EntityId:             dto.EntityId,
		PaymentMethodId:      dto.PaymentMethodId,
		Rule:                 dto.Rule,
		RequiresConfirmation: dto.RequiresConfirmation,
		LookaheadDays:        dto.LookaheadDays,
		IsActive:             dto.IsActive,
		Note:                 dto.Note,
	}
	schedule.Anchors.DayOfMonth = dto.DayOfMonth
	schedule.Anchors.DayOfWeek = time.Weekday(dto.DayOfWeek)
	schedule.Anchors.MonthOfYear = time.Month(dto.MonthOfYear)
	if dto.ExpectedAmount != nil {
		schedule.ExpectedAmount = decimal.NewNullDecimal(decimal.NewFromFloat(*dto.ExpectedAmount))
	}
	return schedule
}
