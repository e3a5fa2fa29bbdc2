package http

import (
	"net/http"
	"strconv"

	"github.com/femundo/cms/internal/admin/domain"
	"github.com/femundo/cms/internal/admin/service"
	"github.com/femundo/cms/pkg/httpx"
)

type UsersHandler struct {
	UserService *service.UserService
}

type createUserRequest struct {
	Email          string   `json:"email"`
	Username       *string  `json:"username,omitempty"`
	Password       string   `json:"password"`
	FullName       string   `json:"full_name"`
	Role           string   `json:"role,omitempty"`
	AvatarURL      *string  `json:"avatar_url,omitempty"`
	AllowedModules []string `json:"allowed_modules,omitempty"`
}

type updateUserRequest struct {
	Email          *string   `json:"email,omitempty"`
	Username       *string   `json:"username,omitempty"`
	FullName       *string   `json:"full_name,omitempty"`
	Role           *string   `json:"role,omitempty"`
	AvatarURL      *string   `json:"avatar_url,omitempty"`
	AllowedModules *[]string `json:"allowed_modules,omitempty"`
	IsActive       *bool     `json:"is_active,omitempty"`
}

// HandleList handles GET /api/users.
//
//	@Summary		List users
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		UserResponse
//	@Failure		403	{object}	ErrorResponse	"Caller is not an admin"
//	@Router			/api/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet handles GET /api/users/{id}.
//
//	@Summary		Get a user
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		int	true	"User ID"
//	@Success		200	{object}	UserResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/users/{id} [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	u, err := h.UserService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

// HandleCreate handles POST /api/users.
//
//	@Summary		Create a user
//	@Description	Provisions an account. New passwords must be at least 12 characters with mixed case, a digit and a symbol. Creating a super admin requires the caller to be one.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		createUserRequest	true	"Account details"
//	@Success		201		{object}	UserResponse
//	@Failure		400		{object}	ErrorResponse	"Validation failure"
//	@Failure		403		{object}	ErrorResponse	"Role not permitted"
//	@Failure		409		{object}	ErrorResponse	"Email or username taken"
//	@Router			/api/users [post].
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.UserService.Create(r.Context(), actor.User, service.CreateUserInput{
		Email:          req.Email,
		Username:       req.Username,
		Password:       req.Password,
		FullName:       req.FullName,
		Role:           domain.Role(req.Role),
		AvatarURL:      req.AvatarURL,
		AllowedModules: req.AllowedModules,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(u))
}

// HandleUpdate handles PUT /api/users/{id}.
//
//	@Summary		Update a user
//	@Description	Edits profile fields, role, module grant and active flag. Omitted fields are left unchanged; an empty allowed_modules array clears the explicit grant back to the role default.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int					true	"User ID"
//	@Param			request	body		updateUserRequest	true	"Fields to change"
//	@Success		200		{object}	UserResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Router			/api/users/{id} [put].
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := service.UpdateUserInput{
		Email:     req.Email,
		Username:  req.Username,
		FullName:  req.FullName,
		AvatarURL: req.AvatarURL,
		IsActive:  req.IsActive,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		in.Role = &role
	}
	if req.AllowedModules != nil {
		in.AllowedModules = *req.AllowedModules
		in.ModulesSet = true
	}

	u, err := h.UserService.Update(r.Context(), actor.User, id, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

// HandleDelete handles DELETE /api/users/{id}.
//
//	@Summary		Deactivate a user
//	@Description	Soft-deletes the account (super admins only). The row is kept for audit attribution; any outstanding tokens stop working on their next request.
//	@Tags			Users
//	@Security		BearerAuth
//	@Param			id	path	int	true	"User ID"
//	@Success		204
//	@Failure		400	{object}	ErrorResponse	"Attempted self-deletion"
//	@Failure		403	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/users/{id} [delete].
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.UserService.Deactivate(r.Context(), actor.User, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.WriteError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}
