package domain

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleAdmin     = "admin"
	RoleAppraiser = "appraiser"
)

// User - пользователь админки
type User struct {
	ID           uuid.UUID
	Email        string
	FullName     string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// Role - роль пользователя
type Role struct {
	ID          int64
	Name        string
	Description string
}

// Claims - данные из JWT токена, выданного сервисом аутентификации.
type Claims struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

// NewUser создает нового пользователя. Хэширование пароля происходит здесь.
func NewUser(email, fullName, password, role string) (*User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	if role == "" {
		role = RoleAppraiser
	}

	return &User{
		ID:           uuid.New(),
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hashedPassword),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// CheckPassword сравнивает предоставленный пароль с хэшем, хранящимся у пользователя.
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}
