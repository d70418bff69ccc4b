package auth

import (
	"context"
	"os"
	"time"

	autherrors "go-attend/internal/auth/errors"
	"go-attend/internal/employee"
	employeeerrors "go-attend/internal/employee/errors"
	"go-attend/internal/rbac"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, resp AuthResponse, err error)

	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken, newRefreshToken string, resp AuthResponse, err error)

	GetMe(ctx context.Context, userID string) (*AuthResponse, error)

	Register(ctx context.Context, req RegisterRequest) (AuthResponse, error)
}

type service struct {
	repo         Repository
	rbac         rbac.Service
	employeeRepo employee.Repository
}

func NewService(repo Repository, rbac rbac.Service, employeeRepo employee.Repository) Service {
	return &service{repo: repo, rbac: rbac, employeeRepo: employeeRepo}
}

func (s *service) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, resp AuthResponse, err error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	// Warm the casbin policy for this company so the first authorized
	// request does not pay the load cost.
	if err := s.rbac.LoadCompanyPolicy(user.CompanyID.String()); err != nil {
		return "", "", AuthResponse{}, err
	}

	accessToken, err = s.generateToken(user, time.Minute*15)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}
	refreshToken, err = s.generateToken(user, time.Hour*24*7)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}

	return accessToken, refreshToken, mapToAuthResponse(user), nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, string, AuthResponse, error) {
	token, err := jwt.Parse(refreshToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, autherrors.ErrInvalidToken
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})

	if err != nil || !token.Valid {
		return "", "", AuthResponse{}, autherrors.ErrInvalidRefreshToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", AuthResponse{}, autherrors.ErrInvalidToken
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return "", "", AuthResponse{}, autherrors.ErrInvalidToken
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidUserID
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrUserNotFound
	}

	newAccessToken, err := s.generateToken(user, time.Minute*15)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}

	newRefreshToken, err := s.generateToken(user, time.Hour*24*7)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}

	return newAccessToken, newRefreshToken, mapToAuthResponse(user), nil
}

func (s *service) GetMe(ctx context.Context, userID string) (*AuthResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, autherrors.ErrInvalidUserID
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, autherrors.ErrUserNotFound
	}

	resp := mapToAuthResponse(u)
	return &resp, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResponse{}, err
	}

	eID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return AuthResponse{}, employeeerrors.ErrInvalidEmployeeID
	}
	empl, err := s.employeeRepo.FindByIDAndCompany(ctx, req.CompanyID, eID.String())
	if err != nil {
		return AuthResponse{}, employeeerrors.ErrEmployeeNotFound
	}

	user := &User{
		ID:         uuid.New(),
		EmployeeID: &eID,
		CompanyID:  empl.CompanyID,
		Email:      req.Email,
		Name:       req.Name,
		Password:   string(hashed),
		Role:       "EMPLOYEE",
		IsActive:   true,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return AuthResponse{}, autherrors.ErrEmailAlreadyRegistered
	}

	if err := s.rbac.LoadCompanyPolicy(empl.CompanyID.String()); err != nil {
		return AuthResponse{}, err
	}

	return mapToAuthResponse(user), nil
}

func (s *service) generateToken(user *User, expiry time.Duration) (string, error) {
	employeeID := ""
	if user.EmployeeID != nil {
		employeeID = user.EmployeeID.String()
	}

	claims := jwt.MapClaims{
		"user_id":     user.ID.String(),
		"employee_id": employeeID,
		"company_id":  user.CompanyID.String(),
		"exp":         time.Now().Add(expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func mapToAuthResponse(user *User) AuthResponse {
	employeeID := ""
	if user.EmployeeID != nil {
		employeeID = user.EmployeeID.String()
	}
	return AuthResponse{
		ID:         user.ID.String(),
		CompanyID:  user.CompanyID.String(),
		EmployeeID: employeeID,
		Email:      user.Email,
		Name:       user.Name,
		Role:       user.Role,
	}
}
