package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yhsong/finbell/internal/dto"
	"github.com/yhsong/finbell/internal/service"
)

// FavoriteHandler manages the current user's favorited companies
type FavoriteHandler struct {
	favoriteService *service.FavoriteService
}

// NewFavoriteHandler creates a new favorite handler
func NewFavoriteHandler(favoriteService *service.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favoriteService: favoriteService}
}

// List returns the current user's favorites
func (h *FavoriteHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			ErrorCode: dto.CodeInvalidToken,
			Message:   "authentication required",
		})
		return
	}

	favorites, err := h.favoriteService.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, favorites)
}

// Add favorites a company
func (h *FavoriteHandler) Add(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			ErrorCode: dto.CodeInvalidToken,
			Message:   "authentication required",
		})
		return
	}

	var req dto.AddFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.favoriteService.Add(c.Request.Context(), userID, req.CompanyID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.SuccessResponse{Message: "favorite added"})
}

// Remove deletes the favorite for one company
func (h *FavoriteHandler) Remove(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			ErrorCode: dto.CodeInvalidToken,
			Message:   "authentication required",
		})
		return
	}

	if err := h.favoriteService.Remove(c.Request.Context(), userID, c.Param("companyId")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "favorite removed"})
}
