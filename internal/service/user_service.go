package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"taskflow/internal/domain"
	"taskflow/internal/repository"
)

// UserService coordina registro y verificación de credenciales.
type UserService struct {
	logger       *zap.Logger
	users        repository.UserRepository
	loginLimiter LoginRateLimiter
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, loginLimiter LoginRateLimiter) *UserService {
	return &UserService{
		logger:       logger,
		users:        users,
		loginLimiter: loginLimiter,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
	ErrRateLimited        = errors.New("rate limited")
)

// Factor de trabajo fijo del hash de contraseñas.
const bcryptCost = 10

// Register crea la cuenta y devuelve su proyección pública. El chequeo de
// duplicados es previo al insert; si dos registros corren a la vez, la
// constraint UNIQUE del store rechaza al segundo.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (domain.PublicUser, error) {
	if s.users == nil {
		return domain.PublicUser{}, errors.New("user service not configured")
	}

	username := strings.TrimSpace(input.Username)
	emailAddr := normalizeEmail(input.Email)
	password := strings.TrimSpace(input.Password)
	if username == "" || emailAddr == "" || len(password) < 6 {
		return domain.PublicUser{}, ErrInvalidInput
	}

	exists, err := s.users.ExistsByEmailOrUsername(ctx, emailAddr, username)
	if err != nil {
		return domain.PublicUser{}, err
	}
	if exists {
		return domain.PublicUser{}, ErrUserExists
	}

	hash, err := hashPassword(password)
	if err != nil {
		return domain.PublicUser{}, err
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        emailAddr,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.PublicUser{}, err
	}

	return user.Public(), nil
}

// Authenticate verifica email y contraseña. Email inexistente y contraseña
// incorrecta devuelven el mismo ErrInvalidCredentials: la respuesta no debe
// servir para enumerar cuentas. Solo los fallos consumen el limitador; un
// login correcto nunca suma a la ventana y limpia los fallos previos.
func (s *UserService) Authenticate(ctx context.Context, emailAddr, password string) (domain.PublicUser, error) {
	if s.users == nil {
		return domain.PublicUser{}, errors.New("user service not configured")
	}

	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return domain.PublicUser{}, ErrInvalidCredentials
	}

	if s.loginLimiter != nil && !s.loginLimiter.Allow(emailAddr) {
		return domain.PublicUser{}, ErrRateLimited
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.recordLoginFailure(emailAddr)
			return domain.PublicUser{}, ErrInvalidCredentials
		}
		return domain.PublicUser{}, err
	}
	if user.PasswordHash == "" {
		s.recordLoginFailure(emailAddr)
		return domain.PublicUser{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.recordLoginFailure(emailAddr)
		return domain.PublicUser{}, ErrInvalidCredentials
	}

	if s.loginLimiter != nil {
		s.loginLimiter.Reset(emailAddr)
	}
	return user.Public(), nil
}

func (s *UserService) recordLoginFailure(emailAddr string) {
	if s.loginLimiter != nil {
		s.loginLimiter.Fail(emailAddr)
	}
}

// GetByID devuelve la proyección pública de un usuario existente.
func (s *UserService) GetByID(ctx context.Context, id string) (domain.PublicUser, error) {
	if s.users == nil {
		return domain.PublicUser{}, errors.New("user service not configured")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PublicUser{}, ErrUserNotFound
		}
		return domain.PublicUser{}, err
	}
	return user.Public(), nil
}

func hashPassword(password string) (string, error) {
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

func normalizeEmail(emailAddr string) string {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if !strings.Contains(emailAddr, "@") {
		return ""
	}
	return emailAddr
}
