package services

import (
	"errors"
	"time"

	"talaam-backend/internal/models"
	"talaam-backend/internal/workflow"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	db        *gorm.DB
	jwtSecret []byte
}

func NewAuthService(db *gorm.DB, jwtSecret string) *AuthService {
	return &AuthService{db: db, jwtSecret: []byte(jwtSecret)}
}

// Register creates an account in one of the self-service roles. Admin
// accounts are seeded, never registered.
func (s *AuthService) Register(name, email, password string, role workflow.Role) (string, error) {
	if !role.IsValid() || role == workflow.RoleAdmin {
		return "", invalidf("role %q is not registrable", role)
	}

	var existing models.User
	if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return "", conflictf("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return "", err
	}

	return s.GenerateToken(user.ID, user.Role)
}

func (s *AuthService) Login(email, password string) (string, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return "", forbiddenf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", forbiddenf("invalid credentials")
	}

	return s.GenerateToken(user.ID, user.Role)
}

func (s *AuthService) GenerateToken(userID uint, role workflow.Role) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    string(role),
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken returns the user id and role encoded in a bearer token.
func (s *AuthService) ValidateToken(tokenString string) (uint, workflow.Role, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return 0, "", forbiddenf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", forbiddenf("invalid claims")
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, "", forbiddenf("invalid user_id in token")
	}
	roleStr, ok := claims["role"].(string)
	if !ok || !workflow.Role(roleStr).IsValid() {
		return 0, "", forbiddenf("invalid role in token")
	}

	return uint(userIDFloat), workflow.Role(roleStr), nil
}
