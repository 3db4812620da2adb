package server

import (
	"recipebox/internal/models"
	"recipebox/internal/service"

	"github.com/gofiber/fiber/v2"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type updateUserRequest struct {
	CurrentPassword string  `json:"current_password" validate:"required"`
	Username        *string `json:"username,omitempty" validate:"omitempty,min=3,max=30"`
	Email           *string `json:"email,omitempty" validate:"omitempty,email"`
	Password        *string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
}

func (r updateUserRequest) toInput() service.UpdateUserInput {
	return service.UpdateUserInput{
		CurrentPassword: r.CurrentPassword,
		Username:        r.Username,
		Email:           r.Email,
		Password:        r.Password,
	}
}

// RegisterUser handles POST /api/users
// @Summary Register a user
// @Tags users
// @Accept json
// @Produce json
// @Param request body registerRequest true "New account"
// @Success 201 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users [post]
func (s *Server) RegisterUser(c *fiber.Ctx) error {
	var req registerRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.users.Register(c.UserContext(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// ListUsers handles GET /api/users
// @Summary List users
// @Tags users
// @Produce json
// @Param includeDeleted query bool false "Include soft-deleted accounts"
// @Success 200 {array} models.User
// @Router /users [get]
func (s *Server) ListUsers(c *fiber.Ctx) error {
	includeDeleted, err := queryBool(c, "includeDeleted")
	if err != nil {
		return mapServiceError(c, err)
	}

	users, err := s.users.List(c.UserContext(), includeDeleted != nil && *includeDeleted)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(users)
}

// GetUser handles GET /api/users/:id
// @Summary Get an active user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.users.GetByID(c.UserContext(), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(user)
}

// UpdateUser handles PUT /api/users/:id
// @Summary Update credentials
// @Description Requires the current password; at least one field must change
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body updateUserRequest true "Changes"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/{id} [put]
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	return s.updateUser(c, id)
}

// DeleteUser handles DELETE /api/users/:id
// @Summary Soft-delete a user
// @Tags users
// @Param id path int true "User ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [delete]
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.users.Delete(c.UserContext(), id); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetMe handles GET /api/users/me
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Router /users/me [get]
func (s *Server) GetMe(c *fiber.Ctx) error {
	user, err := s.users.GetByID(c.UserContext(), currentUserID(c))
	if err != nil {
		// A token outliving its account is no longer a valid credential.
		if models.IsNotFound(err) {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewInvalidCredentialsError("Account no longer exists"))
		}
		return mapServiceError(c, err)
	}
	return c.JSON(user)
}

// UpdateMe handles PUT /api/users/me
// @Summary Update the current user's credentials
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body updateUserRequest true "Changes"
// @Success 200 {object} models.User
// @Router /users/me [put]
func (s *Server) UpdateMe(c *fiber.Ctx) error {
	return s.updateUser(c, currentUserID(c))
}

func (s *Server) updateUser(c *fiber.Ctx, id uint) error {
	var req updateUserRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.users.Update(c.UserContext(), id, req.toInput())
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(user)
}
