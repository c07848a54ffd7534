package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tpv/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type CreateUserRequest struct {
	Name     string         `json:"name"`
	Login    string         `json:"login"`
	Password string         `json:"password"`
	Role     model.UserRole `json:"role"`
}

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*model.User, error) {
	req.Login = strings.TrimSpace(req.Login)
	if req.Login == "" || req.Password == "" {
		return nil, invalid("Login y contraseña son obligatorios")
	}
	if req.Role == "" {
		req.Role = model.RoleWaiter
	}
	if !req.Role.Valid() {
		return nil, invalid("Rol no válido")
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&model.User{}).Where("login = ?", req.Login).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if count > 0 {
		return nil, kind(ErrDuplicate, "El usuario ya existe")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := model.User{
		Name:     req.Name,
		Login:    req.Login,
		Role:     req.Role,
		Password: string(hashed),
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// Authenticate checks a login/password pair. Unknown logins and wrong passwords
// give the same error.
func (s *UserService) Authenticate(ctx context.Context, login, password string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("login = ?", login).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}
	return &user, nil
}
