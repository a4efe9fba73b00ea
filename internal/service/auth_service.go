package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"tugasku/internal/model"
	"tugasku/internal/repository"
)

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailRe    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// ErrInvalidCredentials is returned on failed login or token checks.
// It carries no detail about which part was wrong.
var ErrInvalidCredentials = fmt.Errorf("invalid credentials")

// AuthService issues and verifies the signed tokens that identify an
// owner. Core services never see tokens, only the resolved owner id.
type AuthService struct {
	userRepo   *repository.UserRepository
	secret     []byte
	expiration time.Duration
}

func NewAuthService(userRepo *repository.UserRepository, secret string, expiration time.Duration) *AuthService {
	return &AuthService{userRepo: userRepo, secret: []byte(secret), expiration: expiration}
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (*model.User, string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if err := validateUserData(username, email, password); err != nil {
		return nil, "", err
	}

	existing, err := s.userRepo.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		if existing.Username == username {
			return nil, "", &model.ConflictError{Reason: "username already exists"}
		}
		return nil, "", &model.ConflictError{Reason: "email already exists"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login accepts a username or email address.
func (s *AuthService) Login(ctx context.Context, login, password string) (*model.User, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, "", &model.ValidationError{Field: "credentials", Reason: "username/email and password are required"}
	}

	user, err := s.userRepo.FindByLogin(ctx, login)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Authenticate resolves a bearer token to an active user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidCredentials
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidCredentials
	}
	rawID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByID(ctx, uint(rawID))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) Profile(ctx context.Context, userID uint) (*model.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

func (s *AuthService) issueToken(user *model.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"jti":      uuid.NewString(),
		"iat":      now.Unix(),
		"exp":      now.Add(s.expiration).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func validateUserData(username, email, password string) error {
	switch {
	case username == "":
		return &model.ValidationError{Field: "username", Reason: "username is required"}
	case utf8.RuneCountInString(username) < 3:
		return &model.ValidationError{Field: "username", Reason: "username must be at least 3 characters"}
	case utf8.RuneCountInString(username) > 50:
		return &model.ValidationError{Field: "username", Reason: "username must be at most 50 characters"}
	case !usernameRe.MatchString(username):
		return &model.ValidationError{Field: "username", Reason: "username can only contain letters, numbers, and underscores"}
	}

	if email == "" {
		return &model.ValidationError{Field: "email", Reason: "email is required"}
	}
	if !emailRe.MatchString(email) {
		return &model.ValidationError{Field: "email", Reason: "invalid email format"}
	}

	if password == "" {
		return &model.ValidationError{Field: "password", Reason: "password is required"}
	}
	if utf8.RuneCountInString(password) < 6 {
		return &model.ValidationError{Field: "password", Reason: "password must be at least 6 characters"}
	}
	return nil
}
