package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "fitspace-backend/internal/domain/avatar"
	"fitspace-backend/internal/usecase/avatar"
	"fitspace-backend/pkg/logger"
	"fitspace-backend/pkg/optional"
	"fitspace-backend/pkg/response"
)

// AvatarHandler handles HTTP requests for the avatars nested under a user
type AvatarHandler struct {
	uc  avatar.Usecase
	log *zap.Logger
}

// NewAvatarHandler creates a new AvatarHandler instance
func NewAvatarHandler(uc avatar.Usecase, log *zap.Logger) *AvatarHandler {
	return &AvatarHandler{uc: uc, log: log}
}

// AvatarRequest is the body of both create and update. Numeric fields accept
// numbers or numeric strings; blank strings and null clear a field.
type AvatarRequest struct {
	DisplayName             optional.Value[string]  `json:"display_name" swaggertype:"string"`
	Age                     optional.Value[int]     `json:"age" swaggertype:"integer"`
	Gender                  optional.Value[string]  `json:"gender" swaggertype:"string" enums:"male,female,non_binary,other,prefer_not_to_say"`
	HeightCM                optional.Value[float64] `json:"height_cm" swaggertype:"number"`
	WeightKG                optional.Value[float64] `json:"weight_kg" swaggertype:"number"`
	BodyFatPercent          optional.Value[float64] `json:"body_fat_percent" swaggertype:"number"`
	ShoulderCircumferenceCM optional.Value[float64] `json:"shoulder_circumference_cm" swaggertype:"number"`
	WaistCM                 optional.Value[float64] `json:"waist_cm" swaggertype:"number"`
	HipsCM                  optional.Value[float64] `json:"hips_cm" swaggertype:"number"`
	Notes                   optional.Value[string]  `json:"notes" swaggertype:"string"`
}

func (r AvatarRequest) measurements() avatar.Measurements {
	return avatar.Measurements{
		DisplayName:             r.DisplayName.Ptr(),
		Age:                     r.Age.Ptr(),
		Gender:                  r.Gender.Ptr(),
		HeightCM:                r.HeightCM.Ptr(),
		WeightKG:                r.WeightKG.Ptr(),
		BodyFatPercent:          r.BodyFatPercent.Ptr(),
		ShoulderCircumferenceCM: r.ShoulderCircumferenceCM.Ptr(),
		WaistCM:                 r.WaistCM.Ptr(),
		HipsCM:                  r.HipsCM.Ptr(),
		Notes:                   r.Notes.Ptr(),
	}
}

func (r AvatarRequest) patch() domain.Patch {
	return domain.Patch{
		DisplayName:             r.DisplayName,
		Age:                     r.Age,
		Gender:                  r.Gender,
		HeightCM:                r.HeightCM,
		WeightKG:                r.WeightKG,
		BodyFatPercent:          r.BodyFatPercent,
		ShoulderCircumferenceCM: r.ShoulderCircumferenceCM,
		WaistCM:                 r.WaistCM,
		HipsCM:                  r.HipsCM,
		Notes:                   r.Notes,
	}
}

// AvatarResponse represents the HTTP response for avatar data
type AvatarResponse struct {
	ID                      int64     `json:"id"`
	UserID                  int64     `json:"user_id"`
	DisplayName             *string   `json:"display_name"`
	Age                     *int      `json:"age"`
	Gender                  *string   `json:"gender"`
	HeightCM                *float64  `json:"height_cm"`
	WeightKG                *float64  `json:"weight_kg"`
	BodyFatPercent          *float64  `json:"body_fat_percent"`
	ShoulderCircumferenceCM *float64  `json:"shoulder_circumference_cm"`
	WaistCM                 *float64  `json:"waist_cm"`
	HipsCM                  *float64  `json:"hips_cm"`
	Notes                   *string   `json:"notes"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

func toAvatarResponse(a *domain.Avatar) AvatarResponse {
	return AvatarResponse{
		ID:                      a.ID,
		UserID:                  a.UserID,
		DisplayName:             a.DisplayName,
		Age:                     a.Age,
		Gender:                  a.Gender,
		HeightCM:                a.HeightCM,
		WeightKG:                a.WeightKG,
		BodyFatPercent:          a.BodyFatPercent,
		ShoulderCircumferenceCM: a.ShoulderCircumferenceCM,
		WaistCM:                 a.WaistCM,
		HipsCM:                  a.HipsCM,
		Notes:                   a.Notes,
		CreatedAt:               a.CreatedAt,
		UpdatedAt:               a.UpdatedAt,
	}
}

func (h *AvatarHandler) ids(c *gin.Context, withAvatar bool) (userID, avatarID int64, ok bool) {
	if userID, ok = pathID(c, "id", "Invalid user ID format"); !ok {
		return 0, 0, false
	}
	if !withAvatar {
		return userID, 0, true
	}
	if avatarID, ok = pathID(c, "avatar_id", "Invalid avatar ID format"); !ok {
		return 0, 0, false
	}
	return userID, avatarID, true
}

// ListAvatars handles GET /api/v1/users/:id/avatars
//
//	@Summary	List the avatars of a user, newest first
//	@Tags		avatars
//	@Produce	json
//	@Param		id	path		int	true	"User ID"
//	@Success	200	{object}	response.SuccessResponse{data=[]AvatarResponse}
//	@Failure	404	{object}	response.ErrorResponse
//	@Router		/api/v1/users/{id}/avatars [get]
func (h *AvatarHandler) ListAvatars(c *gin.Context) {
	userID, _, ok := h.ids(c, false)
	if !ok {
		return
	}

	avatars, err := h.uc.ListAvatars(c.Request.Context(), userID)
	if err != nil {
		logFailure(logger.WithContext(c.Request.Context(), h.log), "list avatars failed", err, zap.Int64("user_id", userID))
		response.FromError(c, err, "Failed to retrieve avatars")
		return
	}

	out := make([]AvatarResponse, len(avatars))
	for i := range avatars {
		out[i] = toAvatarResponse(&avatars[i])
	}
	response.Success(c, out, fmt.Sprintf("Retrieved %d avatars", len(out)))
}

// GetAvatar handles GET /api/v1/users/:id/avatars/:avatar_id
//
//	@Summary	Get one avatar
//	@Tags		avatars
//	@Produce	json
//	@Param		id			path		int	true	"User ID"
//	@Param		avatar_id	path		int	true	"Avatar ID"
//	@Success	200			{object}	response.SuccessResponse{data=AvatarResponse}
//	@Failure	404			{object}	response.ErrorResponse
//	@Router		/api/v1/users/{id}/avatars/{avatar_id} [get]
func (h *AvatarHandler) GetAvatar(c *gin.Context) {
	userID, avatarID, ok := h.ids(c, true)
	if !ok {
		return
	}

	a, err := h.uc.GetAvatar(c.Request.Context(), userID, avatarID)
	if err != nil {
		logFailure(logger.WithContext(c.Request.Context(), h.log), "get avatar failed", err,
			zap.Int64("user_id", userID), zap.Int64("avatar_id", avatarID))
		response.FromError(c, err, "Failed to retrieve avatar")
		return
	}

	response.Success(c, toAvatarResponse(a), "Avatar retrieved successfully")
}

// CreateAvatar handles POST /api/v1/users/:id/avatars
//
//	@Summary	Create an avatar for a user
//	@Tags		avatars
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int				true	"User ID"
//	@Param		avatar	body		AvatarRequest	true	"Measurements"
//	@Success	200		{object}	response.SuccessResponse{data=AvatarResponse}
//	@Failure	400		{object}	response.ErrorResponse
//	@Failure	404		{object}	response.ErrorResponse
//	@Router		/api/v1/users/{id}/avatars [post]
func (h *AvatarHandler) CreateAvatar(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)

	userID, _, ok := h.ids(c, false)
	if !ok {
		return
	}

	var req AvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Warn("invalid create avatar request", zap.Int64("user_id", userID), zap.Error(err))
		response.Error(c, http.StatusBadRequest, "Invalid JSON in request body", err.Error())
		return
	}

	a, err := h.uc.CreateAvatar(c.Request.Context(), avatar.CreateAvatarRequest{
		UserID:       userID,
		Measurements: req.measurements(),
	})
	if err != nil {
		logFailure(log, "create avatar failed", err, zap.Int64("user_id", userID))
		response.FromError(c, err, "Failed to create avatar")
		return
	}

	response.Success(c, toAvatarResponse(a), "Avatar created successfully")
}

// UpdateAvatar handles PUT and PATCH /api/v1/users/:id/avatars/:avatar_id.
// Both verbs are partial updates.
//
//	@Summary	Partially update an avatar
//	@Tags		avatars
//	@Accept		json
//	@Produce	json
//	@Param		id			path		int				true	"User ID"
//	@Param		avatar_id	path		int				true	"Avatar ID"
//	@Param		avatar		body		AvatarRequest	true	"Fields to change"
//	@Success	200			{object}	response.SuccessResponse{data=AvatarResponse}
//	@Failure	400			{object}	response.ErrorResponse
//	@Failure	404			{object}	response.ErrorResponse
//	@Router		/api/v1/users/{id}/avatars/{avatar_id} [patch]
//	@Router		/api/v1/users/{id}/avatars/{avatar_id} [put]
func (h *AvatarHandler) UpdateAvatar(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)

	userID, avatarID, ok := h.ids(c, true)
	if !ok {
		return
	}

	var req AvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Warn("invalid update avatar request", zap.Int64("avatar_id", avatarID), zap.Error(err))
		response.Error(c, http.StatusBadRequest, "Invalid JSON in request body", err.Error())
		return
	}

	a, err := h.uc.UpdateAvatar(c.Request.Context(), avatar.UpdateAvatarRequest{
		UserID:   userID,
		AvatarID: avatarID,
		Patch:    req.patch(),
	})
	if err != nil {
		logFailure(log, "update avatar failed", err, zap.Int64("avatar_id", avatarID))
		response.FromError(c, err, "Failed to update avatar")
		return
	}

	response.Success(c, toAvatarResponse(a), "Avatar updated successfully")
}

// DeleteAvatar handles DELETE /api/v1/users/:id/avatars/:avatar_id
//
//	@Summary	Delete an avatar
//	@Tags		avatars
//	@Produce	json
//	@Param		id			path		int	true	"User ID"
//	@Param		avatar_id	path		int	true	"Avatar ID"
//	@Success	200			{object}	response.SuccessResponse
//	@Failure	404			{object}	response.ErrorResponse
//	@Router		/api/v1/users/{id}/avatars/{avatar_id} [delete]
func (h *AvatarHandler) DeleteAvatar(c *gin.Context) {
	userID, avatarID, ok := h.ids(c, true)
	if !ok {
		return
	}

	if err := h.uc.DeleteAvatar(c.Request.Context(), userID, avatarID); err != nil {
		logFailure(logger.WithContext(c.Request.Context(), h.log), "delete avatar failed", err,
			zap.Int64("user_id", userID), zap.Int64("avatar_id", avatarID))
		response.FromError(c, err, "Failed to delete avatar")
		return
	}

	response.Success(c, gin.H{"id": avatarID, "user_id": userID}, "Avatar deleted successfully")
}
