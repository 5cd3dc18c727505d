package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/Kariqs/amexan-storefront/models"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentMethods lists the payment methods a user may pick at checkout.
var PaymentMethods = []string{"PayPal", "Stripe", "CashOnDelivery"}

const bcryptCost = 10

// Identity is the authenticated principal carried on a request.
type Identity struct {
	UserID uint   `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == models.RoleAdmin
}

type Claims struct {
	UserID uint   `json:"uid"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	db     *gorm.DB
	carts  *CartService
	secret []byte
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

func NewAuthService(db *gorm.DB, carts *CartService, secret string, ttl time.Duration, logger *slog.Logger) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		db:     db,
		carts:  carts,
		secret: []byte(secret),
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, input models.SignupData) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, persistenceError("check user", err)
	}
	if existing > 0 {
		return nil, ErrUserAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Name:     strings.TrimSpace(input.Name),
		Email:    email,
		Password: string(hash),
		Role:     models.RoleUser,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserAlreadyExists
		}
		return nil, persistenceError("create user", err)
	}
	return &user, nil
}

// Authenticate checks an email and password pair. Unknown users, users
// without a password and wrong passwords all fail the same way.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*Identity, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, persistenceError("find user", err)
	}
	if user.Password == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return identityOf(&user), nil
}

// Login authenticates, issues a token and moves the anonymous session cart
// over to the user.
func (s *AuthService) Login(ctx context.Context, input models.LoginData, sessionCartID string) (string, *Identity, error) {
	identity, err := s.Authenticate(ctx, input.Email, input.Password)
	if err != nil {
		return "", nil, err
	}

	token, err := s.IssueToken(identity)
	if err != nil {
		return "", nil, err
	}

	if sessionCartID != "" && s.carts != nil {
		if err := s.carts.MergeOnLogin(ctx, sessionCartID, identity.UserID); err != nil {
			s.logger.Warn("cart merge on login failed", "user_id", identity.UserID, "error", err)
		}
	}
	return token, identity, nil
}

func (s *AuthService) IssueToken(identity *Identity) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: identity.UserID,
		Name:   identity.Name,
		Email:  identity.Email,
		Role:   identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(identity.UserID),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) ParseToken(tokenString string) (*Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}

	return &Identity{
		UserID: claims.UserID,
		Name:   claims.Name,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}

func (s *AuthService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	return findUser(ctx, s.db, userID)
}

func (s *AuthService) UpdateAddress(ctx context.Context, userID uint, address models.ShippingAddress) (*models.User, error) {
	if address.IsZero() {
		return nil, &ValidationError{Field: "address", Message: "Address is required", RedirectTo: "/shipping-address"}
	}
	return s.updateUser(ctx, userID, "address", datatypes.NewJSONType(address))
}

func (s *AuthService) UpdatePaymentMethod(ctx context.Context, userID uint, method string) (*models.User, error) {
	if !slices.Contains(PaymentMethods, method) {
		return nil, &ValidationError{
			Field:      "paymentMethod",
			Message:    fmt.Sprintf("Payment method must be one of %s", strings.Join(PaymentMethods, ", ")),
			RedirectTo: "/payment-method",
		}
	}
	return s.updateUser(ctx, userID, "payment_method", method)
}

func (s *AuthService) updateUser(ctx context.Context, userID uint, column string, value any) (*models.User, error) {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update(column, value)
	if res.Error != nil {
		return nil, persistenceError("update user", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}
	return findUser(ctx, s.db, userID)
}

func identityOf(user *models.User) *Identity {
	return &Identity{UserID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}
}

func findUser(ctx context.Context, db *gorm.DB, userID uint) (*models.User, error) {
	var user models.User
	err := db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, persistenceError("find user", err)
	}
	return &user, nil
}
