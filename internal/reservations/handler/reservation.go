package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	reservationserrors "openspace/internal/reservations/errors"
	"openspace/internal/reservations/service"
	"openspace/pkg/auth"
	apperrors "openspace/pkg/errors"
	httputil "openspace/pkg/http"
	"openspace/pkg/logger"
	"openspace/pkg/model"
)

type ReservationHandler struct {
	service service.ReservationService
	auth    *auth.Authenticator
	log     *logger.Logger
}

func NewReservationHandler(service service.ReservationService, authenticator *auth.Authenticator, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		auth:    authenticator,
		log:     log,
	}
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, ok := h.identity(w, r, "Create")
	if !ok {
		return
	}

	var reservation model.Reservation
	if err := json.NewDecoder(r.Body).Decode(&reservation); err != nil {
		h.writeBadBody(w, "Create", err)
		return
	}
	reservation.UserID = identity.UserID

	if err := h.service.Create(r.Context(), &reservation); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, reservation); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.ParseID(ps, "id")
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	reservation, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	h.writeSuccess(w, "GetByID", reservation)
}

func (h *ReservationHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	reservations, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, reservations, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *ReservationHandler) Mine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, ok := h.identity(w, r, "Mine")
	if !ok {
		return
	}

	reservations, err := h.service.ListByUser(r.Context(), identity.UserID)
	if err != nil {
		h.writeError(w, "Mine", err)
		return
	}

	h.writeSuccess(w, "Mine", reservations)
}

func (h *ReservationHandler) ListBySpace(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	spaceID, err := httputil.ParseID(ps, "id")
	if err != nil {
		h.writeError(w, "ListBySpace", err)
		return
	}

	reservations, err := h.service.ListBySpace(r.Context(), spaceID)
	if err != nil {
		h.writeError(w, "ListBySpace", err)
		return
	}

	h.writeSuccess(w, "ListBySpace", model.PublicReservations(reservations))
}

// Search answers 204 No Content when no title is given.
func (h *ReservationHandler) Search(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	spaceID, err := httputil.ParseID(ps, "id")
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	reservations, err := h.service.SearchByTitle(r.Context(), spaceID, r.URL.Query().Get("title"))
	if err != nil {
		if errors.Is(err, reservationserrors.ErrNoSearchTerm) {
			httputil.WriteNoContent(w)
			return
		}
		h.writeError(w, "Search", err)
		return
	}

	h.writeSuccess(w, "Search", model.PublicReservations(reservations))
}

func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.ParseID(ps, "id")
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	var updates model.ReservationUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeBadBody(w, "Update", err)
		return
	}

	reservation, err := h.service.Update(r.Context(), id, &updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	h.writeSuccess(w, "Update", reservation)
}

func (h *ReservationHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.ParseID(ps, "id")
	if err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ReservationHandler) Pay(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, ok := h.identity(w, r, "Pay")
	if !ok {
		return
	}
	id, err := httputil.ParseID(ps, "id")
	if err != nil {
		h.writeError(w, "Pay", err)
		return
	}

	reservation, err := h.service.Pay(r.Context(), id, recipient(identity))
	if err != nil {
		h.writeError(w, "Pay", err)
		return
	}

	h.writeSuccess(w, "Pay", reservation)
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, ok := h.identity(w, r, "Cancel")
	if !ok {
		return
	}
	id, err := httputil.ParseID(ps, "id")
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := h.service.Cancel(r.Context(), id, recipient(identity)); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	httputil.WriteNoContent(w)
}

func recipient(identity auth.Identity) model.Recipient {
	return model.Recipient{Email: identity.Email, Name: identity.Name}
}

func (h *ReservationHandler) identity(w http.ResponseWriter, r *http.Request, handler string) (auth.Identity, bool) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		h.writeError(w, handler, apperrors.Unauthorized("Authentication required"))
		return auth.Identity{}, false
	}
	return identity, true
}

func (h *ReservationHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ReservationHandler) writeBadBody(w http.ResponseWriter, handler string, err error) {
	h.log.Debug("invalid request body", "handler", handler, "error", err)
	if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: "Invalid request body",
	}); writeErr != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "operation", "WriteJSON", "error", writeErr)
	}
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/reservations", h.auth.RequireUser(h.Create))
	router.GET("/api/v1/reservations", h.auth.RequireAdmin(h.GetAll))
	router.GET("/api/v1/reservations/mine", h.auth.RequireUser(h.Mine))
	router.GET("/api/v1/reservations/id/:id", h.auth.RequireUser(h.GetByID))
	router.PATCH("/api/v1/reservations/id/:id", h.auth.RequireUser(h.Update))
	router.DELETE("/api/v1/reservations/id/:id", h.auth.RequireUser(h.Delete))
	router.POST("/api/v1/reservations/id/:id/pay", h.auth.RequireUser(h.Pay))
	router.POST("/api/v1/reservations/id/:id/cancel", h.auth.RequireUser(h.Cancel))

	router.GET("/api/v1/spaces/id/:id/reservations", h.ListBySpace)
	router.GET("/api/v1/spaces/id/:id/reservations/search", h.Search)
}
