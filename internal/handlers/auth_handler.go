package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/cliniflow/clinic-manager/internal/config"
	"github.com/cliniflow/clinic-manager/internal/middleware"
	"github.com/cliniflow/clinic-manager/internal/models"
	"github.com/cliniflow/clinic-manager/internal/validators"
)

type AuthHandler struct {
	db     *gorm.DB
	rdb    *redis.Client
	config *config.Config
}

func NewAuthHandler(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *AuthHandler {
	return &AuthHandler{db: db, rdb: rdb, config: cfg}
}

// --------- Requests ---------

type SignUpRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// --------- Handlers ---------

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if !validators.IsEmailDomainValid(email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_email_domain"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_hash_password"})
		return
	}

	var profile models.Profile

	err = h.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Profile{}).Count(&count).Error; err != nil {
			return err
		}

		// The very first profile in the system bootstraps administration.
		role := models.RoleUser
		if count == 0 {
			role = models.RoleSuperAdmin
		}

		profile = models.Profile{
			Email:        email,
			FullName:     req.FullName,
			PasswordHash: string(hashed),
			Role:         role,
			IsActive:     true,
		}

		return tx.Create(&profile).Error
	})

	if err != nil {
		if err == gorm.ErrDuplicatedKey {
			c.JSON(http.StatusConflict, gin.H{"error": "email_already_registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_profile"})
		return
	}

	token, err := h.generateToken(&profile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_generate_token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"profile": gin.H{
			"id":        profile.ID,
			"full_name": profile.FullName,
			"email":     profile.Email,
			"role":      profile.Role,
			"is_active": profile.IsActive,
		},
		"token": token,
	})
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var profile models.Profile
	if err := h.db.
		Where("email = ?", email).
		First(&profile).Error; err != nil {

		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
		return
	}

	if !profile.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "profile_inactive"})
		return
	}

	token, err := h.generateToken(&profile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_generate_token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile": gin.H{
			"id":        profile.ID,
			"full_name": profile.FullName,
			"email":     profile.Email,
			"role":      profile.Role,
			"is_active": profile.IsActive,
		},
		"token": token,
	})
}

// SignOut revokes the presented token for the rest of its lifetime.
func (h *AuthHandler) SignOut(c *gin.Context) {
	jti := c.MustGet(middleware.ContextTokenID).(string)
	exp := c.MustGet(middleware.ContextTokenExp).(int64)

	if h.rdb != nil && jti != "" {
		ttl := time.Until(time.Unix(exp, 0))
		if ttl > 0 {
			if err := h.rdb.Set(
				c.Request.Context(),
				middleware.RevocationKey(jti),
				"1",
				ttl,
			).Err(); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_sign_out"})
				return
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "signed_out"})
}

// --------- JWT ---------

func (h *AuthHandler) generateToken(profile *models.Profile) (string, error) {
	ttl := time.Duration(h.config.TokenTTLHours) * time.Hour

	claims := jwt.MapClaims{
		"sub":  profile.ID.String(),
		"role": profile.Role,
		"jti":  uuid.NewString(),
		"exp":  time.Now().Add(ttl).Unix(),
		"iat":  time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.config.JWTSecret))
}
