// Package authsvc - nghiệp vụ đăng ký/đăng nhập và phát hành JWT.
package authsvc

import (
	"context"
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	authdto "vid_share/internal/api/auth/dto"
	"vid_share/internal/api/auth/models"
	basesvc "vid_share/internal/api/base/service"
	"vid_share/internal/common"
)

// tokenTTL thời gian sống của một phiên đăng nhập
const tokenTTL = 24 * time.Hour

// UserService quản lý người dùng và phiên đăng nhập
type UserService struct {
	*basesvc.BaseServiceMongoImpl[models.User]
	jwtSecret string
}

// NewUserService tạo UserService trên collection được inject
func NewUserService(collection *mongo.Collection, jwtSecret string) *UserService {
	return &UserService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.User](collection),
		jwtSecret:            jwtSecret,
	}
}

// Register tạo tài khoản mới với password đã bcrypt hash
func (s *UserService) Register(ctx context.Context, input *authdto.RegisterInput) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, common.NewError(
			common.ErrCodeInternalServer,
			"Không hash được mật khẩu",
			common.StatusInternalServerError,
			err,
		)
	}

	user := models.User{
		Username: input.Username,
		Password: string(hash),
	}

	created, err := s.InsertOne(ctx, user)
	if err != nil {
		// Unique index trên username trả duplicate khi tên đã được đăng ký
		if errors.Is(err, common.ErrDuplicate) {
			return models.User{}, common.NewError(
				common.ErrCodeValidationInput,
				"Username đã được sử dụng",
				common.StatusConflict,
				nil,
			)
		}
		return models.User{}, err
	}
	return created, nil
}

// Login xác thực username/password và phát hành JWT
func (s *UserService) Login(ctx context.Context, input *authdto.LoginInput) (*authdto.LoginResult, error) {
	user, err := s.FindOne(ctx, bson.M{"username": input.Username}, nil)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}

	now := time.Now()
	claims := models.JwtToken{
		UserID: user.ID.Hex(),
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(tokenTTL).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, common.NewError(
			common.ErrCodeAuthToken,
			"Không ký được token",
			common.StatusInternalServerError,
			err,
		)
	}

	return &authdto.LoginResult{
		UserID: user.ID.Hex(),
		Token:  signed,
	}, nil
}

// ParseToken xác thực chữ ký và trả về claims
func (s *UserService) ParseToken(tokenString string) (*models.JwtToken, error) {
	claims := &models.JwtToken{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrTokenInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, common.ErrTokenInvalid
	}
	return claims, nil
}

// ParseUserID xác thực token và trả về userId trong claims
func (s *UserService) ParseUserID(tokenString string) (string, error) {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}
