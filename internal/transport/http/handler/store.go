package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/bgskoro21/ecommerce-be/internal/domain"
	"github.com/bgskoro21/ecommerce-be/internal/usecase"
	"github.com/gin-gonic/gin"
)

type StoreHandler struct {
	stores *usecase.StoreUsecase
	logger *slog.Logger
}

func NewStoreHandler(stores *usecase.StoreUsecase, logger *slog.Logger) *StoreHandler {
	return &StoreHandler{stores: stores, logger: logger.With("component", "store_handler")}
}

type storeResponse struct {
	ID          string  `json:"id"`
	UserID      string  `json:"userId"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Logo        *string `json:"logo,omitempty"`
}

func toStoreResponse(s *domain.Store) storeResponse {
	return storeResponse{
		ID:          s.ID,
		UserID:      s.UserID,
		Name:        s.Name,
		Description: s.Description,
		Logo:        s.Logo,
	}
}

// GET /api/stores/current
func (h *StoreHandler) GetCurrent(c *gin.Context) {
	store, err := h.stores.GetOwn(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		if errors.Is(err, domain.ErrStoreNotFound) {
			respondError(c, http.StatusNotFound, errStoreNotFound)
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "get store", "error", err)
		respondError(c, http.StatusInternalServerError, errInternalServer)
		return
	}

	respond(c, http.StatusOK, toStoreResponse(store))
}

type updateStoreRequest struct {
	Name        string  `json:"name"        binding:"required,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	Logo        *string `json:"logo"`
}

// PATCH /api/stores/current
func (h *StoreHandler) UpdateCurrent(c *gin.Context) {
	var req updateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	store, err := h.stores.UpdateOwn(c.Request.Context(), c.GetString("userID"), usecase.UpdateStoreInput{
		Name:        req.Name,
		Description: req.Description,
		Logo:        req.Logo,
	})
	if err != nil {
		if errors.Is(err, domain.ErrStoreNotFound) {
			respondError(c, http.StatusNotFound, errStoreNotFound)
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "update store", "error", err)
		respondError(c, http.StatusInternalServerError, errInternalServer)
		return
	}

	respond(c, http.StatusOK, toStoreResponse(store))
}
