package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/stay-fcsd/ecommerce-api/internal/api/dto"
	"github.com/stay-fcsd/ecommerce-api/internal/service"
	apperrors "github.com/stay-fcsd/ecommerce-api/pkg/util"
)

// AuthHandler exposes the signUp/signIn endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// SignUp handles POST /api/v1/signUp.
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req dto.RegistrationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if err := validateRegistration(req); err != nil {
		return err
	}

	user, err := h.auth.Register(c.Context(), service.RegisterInput{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Password:       req.Password,
		VerifyPassword: req.VerifyPassword,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.UserResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      string(user.Role),
	})
}

// SignIn handles POST /api/v1/signIn.
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req dto.AuthenticationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if err := validateAuthentication(req); err != nil {
		return err
	}

	token, expiresAt, err := h.auth.Authenticate(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(dto.AuthenticationResponse{Token: token, ExpiresAt: expiresAt})
}

func validateRegistration(req dto.RegistrationRequest) error {
	fields := make([]apperrors.FieldError, 0, 4)
	if strings.TrimSpace(req.FirstName) == "" {
		fields = append(fields, apperrors.FieldError{Field: "firstName", Message: "must not be blank"})
	}
	if strings.TrimSpace(req.LastName) == "" {
		fields = append(fields, apperrors.FieldError{Field: "lastName", Message: "must not be blank"})
	}
	fields = append(fields, validateEmail(req.Email)...)
	if len(req.Password) < 8 {
		fields = append(fields, apperrors.FieldError{Field: "password", Message: "must be at least 8 characters"})
	}
	if req.VerifyPassword == "" {
		fields = append(fields, apperrors.FieldError{Field: "verifyPassword", Message: "must not be blank"})
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError("Validation error. Check 'errors' field for details.", fields...)
	}
	return nil
}

func validateAuthentication(req dto.AuthenticationRequest) error {
	fields := validateEmail(req.Email)
	if req.Password == "" {
		fields = append(fields, apperrors.FieldError{Field: "password", Message: "must not be blank"})
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError("Validation error. Check 'errors' field for details.", fields...)
	}
	return nil
}

func validateEmail(email string) []apperrors.FieldError {
	email = strings.TrimSpace(email)
	if email == "" {
		return []apperrors.FieldError{{Field: "email", Message: "must not be blank"}}
	}
	if !strings.Contains(email, "@") {
		return []apperrors.FieldError{{Field: "email", Message: "must be a valid email address"}}
	}
	return nil
}
