package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dsoklic/parley/internal/service"
	"github.com/dsoklic/parley/internal/transport/http/middleware"
	"github.com/dsoklic/parley/pkg/validator"
)

type ChannelHandler struct {
	channelService   *service.ChannelService
	discoveryService *service.DiscoveryService
}

func NewChannelHandler(channelService *service.ChannelService, discoveryService *service.DiscoveryService) *ChannelHandler {
	return &ChannelHandler{
		channelService:   channelService,
		discoveryService: discoveryService,
	}
}

func (h *ChannelHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input service.CreateChannelInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateChannel(input.Name, string(input.Type)); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	ch, err := h.channelService.Create(r.Context(), userID, input)
	if err != nil {
		writeServiceError(w, err, "create channel")
		return
	}

	writeJSON(w, http.StatusCreated, ch)
}

func (h *ChannelHandler) Get(w http.ResponseWriter, r *http.Request) {
	channelID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid channel ID")
		return
	}

	ch, err := h.channelService.Get(r.Context(), channelID)
	if err != nil {
		writeServiceError(w, err, "get channel")
		return
	}

	writeJSON(w, http.StatusOK, ch)
}

// Mine lists the requester's channels, most recently active first.
func (h *ChannelHandler) Mine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	channels, err := h.discoveryService.ChannelsForUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "list my channels")
		return
	}

	writeJSON(w, http.StatusOK, channels)
}

// Joinable lists channels the requester could join, name ascending.
func (h *ChannelHandler) Joinable(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	channels, err := h.discoveryService.JoinableChannels(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "list joinable channels")
		return
	}

	writeJSON(w, http.StatusOK, channels)
}

func (h *ChannelHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	channelID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid channel ID")
		return
	}

	var body struct {
		Password string `json:"password"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
			return
		}
	}

	m, err := h.channelService.Join(r.Context(), channelID, userID, body.Password)
	if err != nil {
		writeServiceError(w, err, "join channel")
		return
	}

	writeJSON(w, http.StatusOK, m)
}

func (h *ChannelHandler) Leave(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	channelID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid channel ID")
		return
	}

	if err := h.channelService.Leave(r.Context(), channelID, userID); err != nil {
		writeServiceError(w, err, "leave channel")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ChannelHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	channelID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid channel ID")
		return
	}

	var input service.UpdateChannelInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	ch, err := h.channelService.Update(r.Context(), userID, channelID, input)
	if err != nil {
		writeServiceError(w, err, "update channel")
		return
	}

	writeJSON(w, http.StatusOK, ch)
}

func (h *ChannelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	channelID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid channel ID")
		return
	}

	if err := h.channelService.Delete(r.Context(), userID, channelID); err != nil {
		writeServiceError(w, err, "delete channel")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ChannelHandler) Roster(w http.ResponseWriter, r *http.Request) {
	channelID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid channel ID")
		return
	}

	roster, err := h.discoveryService.RosterOf(r.Context(), channelID)
	if err != nil {
		writeServiceError(w, err, "channel roster")
		return
	}

	writeJSON(w, http.StatusOK, roster)
}

// CreateInvite issues a join token for the channel. Owner or admin only.
// The body may carry a lifetime in minutes; absent, the default applies.
func (h *ChannelHandler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	channelID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid channel ID")
		return
	}

	var body struct {
		Minutes int `json:"minutes"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
			return
		}
		if body.Minutes < 0 {
			writeError(w, http.StatusBadRequest, "INVALID_DURATION", "Invite lifetime must be positive")
			return
		}
	}

	inv, err := h.channelService.CreateInvite(r.Context(), channelID, actorID, time.Duration(body.Minutes)*time.Minute)
	if err != nil {
		writeServiceError(w, err, "create invite")
		return
	}

	writeJSON(w, http.StatusCreated, inv)
}

// JoinWithInvite redeems an invite token and admits the requester.
func (h *ChannelHandler) JoinWithInvite(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	token := r.PathValue("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "INVALID_TOKEN", "Missing invite token")
		return
	}

	m, err := h.channelService.JoinWithInvite(r.Context(), token, userID)
	if err != nil {
		writeServiceError(w, err, "join with invite")
		return
	}

	writeJSON(w, http.StatusOK, m)
}

// Moderation endpoints. The acting user comes from the token, the target
// from the request body.

type targetBody struct {
	UserID uuid.UUID `json:"user_id"`
}

func (h *ChannelHandler) Ban(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, "ban member", h.channelService.Ban)
}

func (h *ChannelHandler) Unban(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, "unban member", h.channelService.Unban)
}

func (h *ChannelHandler) Unmute(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, "unmute member", h.channelService.Unmute)
}

func (h *ChannelHandler) Promote(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, "promote member", h.channelService.Promote)
}

func (h *ChannelHandler) Mute(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	channelID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid channel ID")
		return
	}

	var body struct {
		UserID  uuid.UUID `json:"user_id"`
		Minutes int       `json:"minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if body.Minutes <= 0 {
		writeError(w, http.StatusBadRequest, "INVALID_DURATION", "Mute duration must be positive")
		return
	}

	err = h.channelService.Mute(r.Context(), channelID, actorID, body.UserID, time.Duration(body.Minutes)*time.Minute)
	if err != nil {
		writeServiceError(w, err, "mute member")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ChannelHandler) moderate(w http.ResponseWriter, r *http.Request, op string, fn func(ctx context.Context, channelID, actorID, targetID uuid.UUID) error) {
	actorID := middleware.GetUserID(r.Context())
	channelID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid channel ID")
		return
	}

	var body targetBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := fn(r.Context(), channelID, actorID, body.UserID); err != nil {
		writeServiceError(w, err, op)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError maps the service error taxonomy onto HTTP statuses:
// validation 400, wrong password 401, forbidden/banned 403, not found 404,
// conflicts 409, everything else 500.
func writeServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrInvalidChannelName),
		errors.Is(err, service.ErrInvalidChannelType),
		errors.Is(err, service.ErrInvalidPassword),
		errors.Is(err, service.ErrPasswordRequired),
		errors.Is(err, service.ErrPasswordNotAllowed),
		errors.Is(err, service.ErrCannotDMSelf):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, service.ErrWrongPassword):
		writeError(w, http.StatusUnauthorized, "WRONG_PASSWORD", err.Error())
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrBanned),
		errors.Is(err, service.ErrInviteExpired):
		writeError(w, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, service.ErrChannelNotFound),
		errors.Is(err, service.ErrNotMember),
		errors.Is(err, service.ErrNotBanned),
		errors.Is(err, service.ErrInviteNotFound),
		errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, service.ErrChannelNameTaken), errors.Is(err, service.ErrAlreadyMember):
		writeError(w, http.StatusConflict, "CONFLICT", err.Error())
	default:
		log.Error().Err(err).Str("op", op).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
	}
}
