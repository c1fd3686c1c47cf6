package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "fitspace-backend/internal/domain/user"
	"fitspace-backend/internal/usecase/user"
	"fitspace-backend/pkg/logger"
	"fitspace-backend/pkg/optional"
	"fitspace-backend/pkg/response"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// CreateUserRequest represents the HTTP request body for creating a user
type CreateUserRequest struct {
	Name  string  `json:"name" example:"Jane Doe"`
	Email string  `json:"email" example:"jane@example.com"`
	Phone *string `json:"phone,omitempty" example:"+1 555 0100"`
	Bio   *string `json:"bio,omitempty"`
}

// UpdateUserRequest represents the HTTP request body for updating a user.
// Absent fields are left unchanged; phone and bio accept null.
type UpdateUserRequest struct {
	Name  optional.Value[string] `json:"name" swaggertype:"string"`
	Email optional.Value[string] `json:"email" swaggertype:"string"`
	Phone optional.Value[string] `json:"phone" swaggertype:"string"`
	Bio   optional.Value[string] `json:"bio" swaggertype:"string"`
}

// UserResponse represents the HTTP response for user data
type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	Bio       *string   `json:"bio"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = toUserResponse(&users[i])
	}
	return out
}

func toPagination(p *domain.Pagination) *response.Pagination {
	if p == nil {
		return nil
	}
	return &response.Pagination{
		Page:        p.Page,
		Limit:       p.Limit,
		Offset:      p.Offset,
		TotalCount:  p.Total,
		TotalPages:  p.TotalPages,
		HasNext:     p.HasNext,
		HasPrevious: p.HasPrevious,
	}
}

// CreateUser handles POST /api/v1/users
//
//	@Summary	Create a user
//	@Tags		users
//	@Accept		json
//	@Produce	json
//	@Param		user	body		CreateUserRequest	true	"User"
//	@Success	200		{object}	response.SuccessResponse{data=UserResponse}
//	@Failure	400		{object}	response.ErrorResponse
//	@Failure	500		{object}	response.ErrorResponse
//	@Router		/api/v1/users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("invalid create user request", zap.Error(err))
		response.Error(c, http.StatusBadRequest, "Invalid JSON in request body", err.Error())
		return
	}

	u, err := h.uc.CreateUser(c.Request.Context(), user.CreateUserRequest{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Bio:   req.Bio,
	})
	if err != nil {
		logFailure(log, "create user failed", err)
		response.FromError(c, err, "Failed to create user")
		return
	}

	response.Success(c, toUserResponse(u), "User created successfully")
}

// GetUser handles GET /api/v1/users/:id
//
//	@Summary	Get a user
//	@Tags		users
//	@Produce	json
//	@Param		id	path		int	true	"User ID"
//	@Success	200	{object}	response.SuccessResponse{data=UserResponse}
//	@Failure	400	{object}	response.ErrorResponse
//	@Failure	404	{object}	response.ErrorResponse
//	@Router		/api/v1/users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id", "Invalid user ID format")
	if !ok {
		return
	}

	u, err := h.uc.GetUser(c.Request.Context(), user.GetUserRequest{ID: id})
	if err != nil {
		logFailure(logger.WithContext(c.Request.Context(), h.log), "get user failed", err, zap.Int64("id", id))
		response.FromError(c, err, "Failed to retrieve user")
		return
	}

	response.Success(c, toUserResponse(u), "User retrieved successfully")
}

// UpdateUser handles PUT /api/v1/users/:id
//
//	@Summary	Partially update a user
//	@Tags		users
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int					true	"User ID"
//	@Param		user	body		UpdateUserRequest	true	"Fields to change"
//	@Success	200		{object}	response.SuccessResponse{data=UserResponse}
//	@Failure	400		{object}	response.ErrorResponse
//	@Failure	404		{object}	response.ErrorResponse
//	@Router		/api/v1/users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)

	id, ok := pathID(c, "id", "Invalid user ID format")
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("invalid update user request", zap.Int64("id", id), zap.Error(err))
		response.Error(c, http.StatusBadRequest, "Invalid JSON in request body", err.Error())
		return
	}

	u, err := h.uc.UpdateUser(c.Request.Context(), user.UpdateUserRequest{
		ID:    id,
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Bio:   req.Bio,
	})
	if err != nil {
		logFailure(log, "update user failed", err, zap.Int64("id", id))
		response.FromError(c, err, "Failed to update user")
		return
	}

	response.Success(c, toUserResponse(u), "User updated successfully")
}

// DeleteUser handles DELETE /api/v1/users/:id
//
//	@Summary	Delete a user and its avatars
//	@Tags		users
//	@Produce	json
//	@Param		id	path		int	true	"User ID"
//	@Success	200	{object}	response.SuccessResponse{data=user.DeleteUserResponse}
//	@Failure	400	{object}	response.ErrorResponse
//	@Failure	404	{object}	response.ErrorResponse
//	@Router		/api/v1/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c, "id", "Invalid user ID format")
	if !ok {
		return
	}

	resp, err := h.uc.DeleteUser(c.Request.Context(), user.DeleteUserRequest{ID: id})
	if err != nil {
		logFailure(logger.WithContext(c.Request.Context(), h.log), "delete user failed", err, zap.Int64("id", id))
		response.FromError(c, err, "Failed to delete user")
		return
	}

	response.Success(c, resp, "User deleted successfully")
}

// ListUsers handles GET /api/v1/users
//
//	@Summary	List users
//	@Tags		users
//	@Produce	json
//	@Param		search	query		string	false	"Case-insensitive match on name or email"
//	@Param		limit	query		int		false	"Page size (default 10, max 100)"
//	@Param		offset	query		int		false	"Rows to skip; wins over page"
//	@Param		page	query		int		false	"1-based page"
//	@Success	200		{object}	response.SuccessResponse{data=[]UserResponse}
//	@Failure	400		{object}	response.ErrorResponse
//	@Failure	500		{object}	response.ErrorResponse
//	@Router		/api/v1/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	w, ok := parseWindow(c)
	if !ok {
		return
	}

	resp, err := h.uc.ListUsers(c.Request.Context(), user.ListUsersRequest{
		Search: c.Query("search"),
		Page:   w.page,
		Offset: w.offset,
		Limit:  w.limit,
	})
	if err != nil {
		logFailure(logger.WithContext(c.Request.Context(), h.log), "list users failed", err)
		response.FromError(c, err, "Failed to retrieve users")
		return
	}

	response.Paginated(c, toUserResponses(resp.Users), toPagination(resp.Pagination),
		fmt.Sprintf("Retrieved %d users", len(resp.Users)))
}

// SearchUsers handles GET /api/v1/users/search
//
//	@Summary	Search users by name or email
//	@Tags		users
//	@Produce	json
//	@Param		q		query		string	true	"Search term, at least 2 characters"
//	@Param		limit	query		int		false	"Page size (default 20, max 100)"
//	@Param		offset	query		int		false	"Rows to skip; wins over page"
//	@Param		page	query		int		false	"1-based page"
//	@Success	200		{object}	response.SuccessResponse{data=[]UserResponse}
//	@Failure	400		{object}	response.ErrorResponse
//	@Failure	500		{object}	response.ErrorResponse
//	@Router		/api/v1/users/search [get]
func (h *UserHandler) SearchUsers(c *gin.Context) {
	w, ok := parseWindow(c)
	if !ok {
		return
	}

	q := c.Query("q")
	resp, err := h.uc.SearchUsers(c.Request.Context(), user.SearchUsersRequest{
		Query:  q,
		Page:   w.page,
		Offset: w.offset,
		Limit:  w.limit,
	})
	if err != nil {
		logFailure(logger.WithContext(c.Request.Context(), h.log), "search users failed", err, zap.String("q", q))
		response.FromError(c, err, "Failed to search users")
		return
	}

	response.Paginated(c, toUserResponses(resp.Users), toPagination(resp.Pagination),
		fmt.Sprintf("Found %d users matching %q", len(resp.Users), q))
}
