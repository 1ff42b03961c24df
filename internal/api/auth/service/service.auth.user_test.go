// Package authsvc - Test xác thực JWT: ký, parse, từ chối token sai và hết hạn.
package authsvc

import (
	"errors"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	"vid_share/internal/api/auth/models"
	"vid_share/internal/common"
)

const testSecret = "test-secret-khong-dung-production"

func signToken(t *testing.T, secret string, claims models.JwtToken) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("không ký được token test: %v", err)
	}
	return signed
}

func validClaims(userID string) models.JwtToken {
	now := time.Now()
	return models.JwtToken{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(time.Hour).Unix(),
		},
	}
}

func TestParseToken_TokenHopLe(t *testing.T) {
	svc := NewUserService(nil, testSecret)
	signed := signToken(t, testSecret, validClaims("user-1"))

	claims, err := svc.ParseToken(signed)
	if err != nil {
		t.Fatalf("token hợp lệ phải parse được, nhận: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("claims phải giữ nguyên userId, nhận: %s", claims.UserID)
	}
}

func TestParseToken_SaiSecret(t *testing.T) {
	svc := NewUserService(nil, testSecret)
	signed := signToken(t, "secret-khac", validClaims("user-1"))

	_, err := svc.ParseToken(signed)
	if !errors.Is(err, common.ErrTokenInvalid) {
		t.Errorf("token ký bằng secret khác phải bị từ chối, nhận: %v", err)
	}
}

func TestParseToken_HetHan(t *testing.T) {
	svc := NewUserService(nil, testSecret)
	expired := models.JwtToken{
		UserID: "user-1",
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  time.Now().Add(-2 * time.Hour).Unix(),
			ExpiresAt: time.Now().Add(-time.Hour).Unix(),
		},
	}
	signed := signToken(t, testSecret, expired)

	_, err := svc.ParseToken(signed)
	if !errors.Is(err, common.ErrTokenInvalid) {
		t.Errorf("token hết hạn phải bị từ chối, nhận: %v", err)
	}
}

func TestParseToken_ChuoiRac(t *testing.T) {
	svc := NewUserService(nil, testSecret)

	for _, garbage := range []string{"", "abc", "a.b.c"} {
		if _, err := svc.ParseToken(garbage); !errors.Is(err, common.ErrTokenInvalid) {
			t.Errorf("chuỗi %q phải bị từ chối với ErrTokenInvalid, nhận: %v", garbage, err)
		}
	}
}

func TestParseUserID(t *testing.T) {
	svc := NewUserService(nil, testSecret)
	signed := signToken(t, testSecret, validClaims("user-42"))

	userID, err := svc.ParseUserID(signed)
	if err != nil {
		t.Fatalf("ParseUserID với token hợp lệ phải thành công, nhận: %v", err)
	}
	if userID != "user-42" {
		t.Errorf("ParseUserID phải trả đúng userId, nhận: %s", userID)
	}

	if _, err := svc.ParseUserID("garbage"); err == nil {
		t.Error("ParseUserID với token rác phải trả lỗi")
	}
}
