package auth

import (
	"context"
	"errors"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/matchday/matchday-api/internal/api"
)

const bcryptCost = 10

// SignUpRequest is the payload for user registration.
type SignUpRequest struct {
	FirstName string `json:"firstName" validate:"required,min=2,max=30"`
	LastName  string `json:"lastName" validate:"required,min=2,max=30"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=15"`
	Role      string `json:"role" validate:"required,oneof=admin user"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Service implements signup and login against the credential store.
type Service struct {
	users    UserStore
	issuer   *Issuer
	validate *validator.Validate
}

// NewService creates an auth service.
func NewService(users UserStore, issuer *Issuer) *Service {
	return &Service{
		users:    users,
		issuer:   issuer,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// SignUp registers a new user. The password is bcrypt-hashed before
// storage. Duplicate emails are rejected with 409.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return api.Unprocessable(signupValidationMessage(err))
	}

	if msg, ok := passwordPolicyViolation(req.Password); ok {
		return api.Unprocessable(msg)
	}

	existing, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		log.Error().Err(err).Msg("signup: user lookup failed")
		return api.Internal("Registration failed")
	}
	if existing != nil {
		return api.Conflict("User already exists in the database")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		log.Error().Err(err).Msg("signup: password hashing failed")
		return api.Internal("Registration failed")
	}

	_, err = s.users.Insert(ctx, &User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  string(hashed),
		Role:      req.Role,
	})
	if err != nil {
		log.Error().Err(err).Msg("signup: user insert failed")
		return api.Internal("Registration failed")
	}

	return nil
}

// Login verifies the credentials and issues a token. Both an unknown email
// and a wrong password produce the same "Invalid credentials" failure so
// the response doesn't reveal which part was wrong.
func (s *Service) Login(ctx context.Context, req LoginRequest) (string, error) {
	if err := s.validate.Struct(req); err != nil {
		return "", api.Unprocessable(loginValidationMessage(err))
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		log.Error().Err(err).Msg("login: user lookup failed")
		return "", api.Internal("An unknown error has occurred. Please try again later.")
	}

	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return "", api.BadRequest("Invalid credentials")
	}

	token, err := s.issuer.Issue(ctx, user.ID.Hex(), user.Role)
	if err != nil {
		log.Error().Err(err).Msg("login: token issuance failed")
		return "", api.Internal("An unknown error has occurred. Please try again later.")
	}

	return token, nil
}

// passwordPolicyViolation enforces the character-class policy the schema
// validator can't express: at least one uppercase letter, one lowercase
// letter, one digit and one special character.
func passwordPolicyViolation(password string) (string, bool) {
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}

	if upper && lower && digit && special {
		return "", false
	}
	return "Password must contain at least one uppercase letter, one lowercase letter, one number, and one special character", true
}

func signupValidationMessage(err error) string {
	var violations validator.ValidationErrors
	if !errors.As(err, &violations) || len(violations) == 0 {
		return "Invalid request body"
	}

	v := violations[0]
	switch v.Field() {
	case "FirstName":
		switch v.Tag() {
		case "min":
			return "First name must be at least 2 characters long"
		case "max":
			return "First name cannot exceed 30 characters"
		}
		return "First name is required"
	case "LastName":
		switch v.Tag() {
		case "min":
			return "Last name must be at least 2 characters long"
		case "max":
			return "Last name cannot exceed 30 characters"
		}
		return "Last name is required"
	case "Email":
		if v.Tag() == "email" {
			return "Please provide a valid email address"
		}
		return "Email is required"
	case "Password":
		switch v.Tag() {
		case "min":
			return "Password must be at least 8 characters long"
		case "max":
			return "Password cannot exceed 15 characters"
		}
		return "Password is required"
	case "Role":
		if v.Tag() == "oneof" {
			return `Role must be either "admin" or "user"`
		}
		return "Role is required"
	}
	return "Invalid request body"
}

func loginValidationMessage(err error) string {
	var violations validator.ValidationErrors
	if !errors.As(err, &violations) || len(violations) == 0 {
		return "Invalid request body"
	}

	v := violations[0]
	switch v.Field() {
	case "Email":
		if v.Tag() == "email" {
			return "Please provide a valid email address"
		}
		return "Email is required"
	case "Password":
		return "Password is required"
	}
	return "Invalid request body"
}
