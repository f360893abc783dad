package services

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

// AdminAccount — единственная учётная запись администратора, задаётся
// конфигурацией. Отдельной таблицы пользователей у системы нет.
type AdminAccount struct {
	Email        string
	PasswordHash string
}

type AuthService interface {
	// Login проверяет учётные данные администратора и выдаёт JWT.
	Login(ctx context.Context, email, password string) (string, error)
}

type authService struct {
	admin     AdminAccount
	jwtSecret []byte
}

func NewAuthService(admin AdminAccount, jwtSecret []byte) AuthService {
	return &authService{admin: admin, jwtSecret: jwtSecret}
}

func (s *authService) Login(_ context.Context, email, password string) (string, error) {
	if email != s.admin.Email {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.admin.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  email,
		"role": "admin",
		"iat":  now.Unix(),
		"exp":  now.Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", err
	}
	return signed, nil
}
