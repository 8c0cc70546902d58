package services

import (
	"errors"
	"strings"
	"time"

	"game-rooms-system/models"
	"game-rooms-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

// AuthService is the identity boundary: it issues opaque user ids and
// tokens. The settlement core never touches anything in this file.
type AuthService struct {
	DB        *gorm.DB
	JWTSecret []byte
	TokenTTL  time.Duration
}

func NewAuthService(db *gorm.DB, secret string) *AuthService {
	return &AuthService{DB: db, JWTSecret: []byte(secret), TokenTTL: 72 * time.Hour}
}

func (s *AuthService) signToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"exp":   time.Now().Add(s.TokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.JWTSecret)
}

func (s *AuthService) register(email, displayName, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	// display names arrive in mixed Unicode forms; store them NFC-normalized
	displayName = norm.NFC.String(strings.TrimSpace(displayName))

	var existing models.User
	err := s.DB.First(&existing, "email = ?", email).Error
	if err == nil {
		return nil, "", ErrEmailExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		CreditPoints: 5,
	}
	if err := s.DB.Create(&user).Error; err != nil {
		return nil, "", err
	}
	token, err := s.signToken(&user)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

func (s *AuthService) login(email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var user models.User
	if err := s.DB.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.signToken(&user)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// ---- fiber handlers ----

func (s *AuthService) Register(c *fiber.Ctx) error {
	var req struct {
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		Password    string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Password == "" {
		return utils.JSONError(c, fiber.StatusBadRequest, "email and password are required")
	}
	user, token, err := s.register(req.Email, req.DisplayName, req.Password)
	if err != nil {
		return utils.JSONError(c, httpStatus(err), err.Error())
	}
	return utils.JSONSuccess(c, "Registered", fiber.Map{"user": user, "token": token})
}

func (s *AuthService) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid body")
	}
	user, token, err := s.login(req.Email, req.Password)
	if err != nil {
		return utils.JSONError(c, httpStatus(err), err.Error())
	}
	return utils.JSONSuccess(c, "Logged in", fiber.Map{"user": user, "token": token})
}

func (s *AuthService) Me(c *fiber.Ctx) error {
	var user models.User
	if err := s.DB.First(&user, "id = ?", currentUserID(c)).Error; err != nil {
		return utils.JSONError(c, fiber.StatusUnauthorized, ErrUserNotFound.Error())
	}
	return utils.JSONSuccess(c, "Profile", user)
}
