package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/haushalt/haushalt/internal/rest"
	log "github.com/sirupsen/logrus"
)

type UserDTO struct {
	Uid         string      `json:"uid"`
	Username    string      `json:"username"`
	DisplayName string      `json:"displayName"`
	Settings    SettingsDTO `json:"settings"`
}

type SettingsDTO struct {
	Timezone string `json:"timezone"`
	Currency string `json:"currency"`
}

type Handler struct {
	userService Service
}

func NewHandler(userService Service) *Handler {
	return &Handler{userService: userService}
}

// CreateUser godoc
// @Summary Create a new profile
// @Tags User
// @Accept json
// @Produce json
// @Param user body UserDTO true "Profile"
// @Success 201 {object} UserDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/user [post]
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Debug("Creating user profile")

	var dto UserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.Username == "" {
		rest.WriteError(w, "username is required", http.StatusBadRequest)
		return
	}

	created, err := h.userService.CreateUser(r.Context(), dtoToUser(dto))
	if err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(userToDTO(created)); err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
	}
}

// CurrentUser godoc
// @Summary Get the current profile
// @Tags User
// @Produce json
// @Success 200 {object} UserDTO
// @Failure 403 {object} rest.ErrorResponse "No profile in request"
// @Router /api/user/current [get]
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	current, err := h.userService.GetCurrentUser(r.Context())
	if err != nil {
		if errors.Is(err, ErrNoUser) {
			rest.WriteError(w, err.Error(), http.StatusForbidden)
			return
		}
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(userToDTO(current)); err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
	}
}

// UpdateUser godoc
// @Summary Update the current profile
// @Tags User
// @Accept json
// @Produce json
// @Param user body UserDTO true "Profile"
// @Success 200 {object} UserDTO
// @Router /api/user/current [put]
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto UserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.userService.UpdateUser(r.Context(), dtoToUser(dto))
	if err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(userToDTO(updated)); err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetAvailableUsers godoc
// @Summary List all profiles
// @Tags User
// @Produce json
// @Success 200 {array} UserDTO
// @Router /api/user [get]
func (h *Handler) GetAvailableUsers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	users, err := h.userService.GetAllUsers(r.Context())
	if err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, userToDTO(u))
	}

	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
	}
}

// DeleteUser godoc
// @Summary Delete a profile
// @Tags User
// @Param userUid path string true "Profile uid"
// @Success 204
// @Router /api/user/{userUid} [delete]
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["userUid"]

	if err := h.userService.DeleteUserByUid(r.Context(), uid); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			rest.WriteError(w, "profile not found", http.StatusNotFound)
			return
		}
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func userToDTO(user User) UserDTO {
	return UserDTO{
		Uid:         user.Uid,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Settings: SettingsDTO{
			Timezone: user.Settings.Timezone,
			Currency: user.Settings.Currency,
		},
	}
}

func dtoToUser(dto UserDTO) User {
	return User{
		Uid:         dto.Uid,
		Username:    dto.Username,
		DisplayName: dto.DisplayName,
		Settings: Settings{
			Timezone: dto.Settings.Timezone,
			Currency: dto.Settings.Currency,
		},
	}
}
