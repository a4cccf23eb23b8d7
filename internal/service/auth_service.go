package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"imagibox-server/internal/interfaces"
	"imagibox-server/internal/models"
)

// Claims is the JWT payload for access tokens.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

// AuthConfig holds the secrets and lifetimes for authentication.
type AuthConfig struct {
	JWTSecret      string
	PasswordPepper string
	AccessTokenTTL time.Duration
}

// AuthService manages parent and kid accounts and issues access tokens.
type AuthService struct {
	users  interfaces.UserRepository
	cfg    AuthConfig
	logger *zap.Logger
}

// NewAuthService creates the authentication service.
func NewAuthService(users interfaces.UserRepository, cfg AuthConfig, logger *zap.Logger) *AuthService {
	if cfg.AccessTokenTTL == 0 {
		cfg.AccessTokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:  users,
		cfg:    cfg,
		logger: logger.Named("AuthService"),
	}
}

// RegisterParent creates a parent account and logs it in.
func (s *AuthService) RegisterParent(ctx context.Context, req models.RegisterParentRequest) (*models.AuthResponse, error) {
	s.logger.Info("Registering parent", zap.String("username", req.Username))

	exists, err := s.users.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		s.logger.Warn("Registration attempt for existing username", zap.String("username", req.Username))
		return nil, models.ErrUserAlreadyExists
	}

	hash, err := hashPassword(req.Password, s.cfg.PasswordPepper)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleParent,
		DailyQuota:   models.DefaultDailyQuota,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issueToken(user)
}

// Login authenticates a parent or kid account.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			s.logger.Warn("Login failed: user not found", zap.String("username", req.Username))
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}

	if !checkPasswordHash(req.Password, user.PasswordHash, s.cfg.PasswordPepper) {
		s.logger.Warn("Login failed: invalid password", zap.String("username", req.Username))
		return nil, models.ErrInvalidCredentials
	}

	s.logger.Info("User logged in", zap.String("userID", user.ID.String()))
	return s.issueToken(user)
}

// CreateKid creates a kid account owned by the calling parent. Only parent
// accounts may call this.
func (s *AuthService) CreateKid(ctx context.Context, parentID uuid.UUID, req models.CreateKidRequest) (*models.UserResponse, error) {
	parent, err := s.users.GetByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent.Role != models.RoleParent {
		return nil, models.ErrForbidden
	}

	exists, err := s.users.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.ErrUserAlreadyExists
	}

	hash, err := hashPassword(req.Password, s.cfg.PasswordPepper)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	quota := models.DefaultDailyQuota
	if req.DailyQuota != nil && *req.DailyQuota > 0 {
		quota = *req.DailyQuota
	}

	kid := &models.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         models.RoleKid,
		ParentID:     &parentID,
		DailyQuota:   quota,
	}
	if err := s.users.Create(ctx, kid); err != nil {
		return nil, err
	}

	s.logger.Info("Kid account created",
		zap.String("kidID", kid.ID.String()),
		zap.String("parentID", parentID.String()),
	)
	return &models.UserResponse{
		ID:         kid.ID,
		Username:   kid.Username,
		Role:       string(kid.Role),
		DailyQuota: kid.DailyQuota,
	}, nil
}

// ListKids returns the calling parent's kid accounts.
func (s *AuthService) ListKids(ctx context.Context, parentID uuid.UUID) ([]models.UserResponse, error) {
	kids, err := s.users.ListKidsByParent(ctx, parentID)
	if err != nil {
		return nil, err
	}

	responses := make([]models.UserResponse, 0, len(kids))
	for i := range kids {
		responses = append(responses, models.UserResponse{
			ID:         kids[i].ID,
			Username:   kids[i].Username,
			Role:       string(kids[i].Role),
			DailyQuota: kids[i].DailyQuota,
		})
	}
	return responses, nil
}

// Me returns the calling user's own profile.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.UserResponse{
		ID:         user.ID,
		Username:   user.Username,
		Role:       string(user.Role),
		DailyQuota: user.DailyQuota,
	}, nil
}

// ValidateToken parses and verifies an access token.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, models.ErrTokenExpired
		}
		return nil, models.ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, models.ErrTokenInvalid
	}
	return claims, nil
}

func (s *AuthService) issueToken(user *models.User) (*models.AuthResponse, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &models.AuthResponse{
		Token:    signed,
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
	}, nil
}

// applyPepper applies HMAC-SHA256 using the pepper as the key.
func applyPepper(password, pepper string) []byte {
	h := hmac.New(sha256.New, []byte(pepper))
	h.Write([]byte(password))
	return h.Sum(nil)
}

// hashPassword generates a bcrypt hash of the password after applying the
// pepper.
func hashPassword(password, pepper string) (string, error) {
	peppered := applyPepper(password, pepper)
	bytes, err := bcrypt.GenerateFromPassword(peppered, bcrypt.DefaultCost)
	return string(bytes), err
}

// checkPasswordHash compares a plain text password (after applying pepper)
// with a stored hash.
func checkPasswordHash(password, hash, pepper string) bool {
	peppered := applyPepper(password, pepper)
	return bcrypt.CompareHashAndPassword([]byte(hash), peppered) == nil
}
