package jwt

import (
	"errors"
	"fmt"
	"github.com/golang-jwt/jwt/v5"
	"time"
)

var (
	// ErrInvalidToken 覆盖缺失、格式错误、签名错误、过期等所有情况，调用方不应区分
	ErrInvalidToken = errors.New("token is invalid or has expired")
	ErrSigning      = errors.New("failed to sign token")
)

type JWT struct {
	key    []byte
	expiry time.Duration
	now    func() time.Time
}

// User 是令牌中携带的身份信息，不包含密码等其他字段
type User struct {
	ID       uint    `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Image    *string `json:"image"`
}

type claims struct {
	ID       uint    `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Image    *string `json:"image"`
	jwt.RegisteredClaims
}

func New(key string, expiry time.Duration) (*JWT, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: key is empty", ErrSigning)
	}
	if expiry <= 0 {
		return nil, errors.New("token expiry should be positive")
	}

	return &JWT{key: []byte(key), expiry: expiry, now: time.Now}, nil
}

func (j *JWT) Expiry() time.Duration {
	return j.expiry
}

func (j *JWT) ParseUser(tokenString string) (*User, error) {
	// 检查是否有效
	if len(tokenString) == 0 {
		return nil, ErrInvalidToken
	}

	// 映射字段
	parsed := &claims{}
	token, err := jwt.ParseWithClaims(tokenString, parsed, func(token *jwt.Token) (interface{}, error) {
		return j.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return &User{
		ID:       parsed.ID,
		Username: parsed.Username,
		Email:    parsed.Email,
		Image:    parsed.Image,
	}, nil
}

func (j *JWT) SignToken(user *User) (string, error) {
	if len(j.key) == 0 {
		return "", fmt.Errorf("%w: key is empty", ErrSigning)
	}

	// 创建声明
	now := j.now()
	c := &claims{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Image:    user.Image,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.expiry)),
		},
	}

	// 创建令牌
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)

	// 签名并返回
	signed, err := token.SignedString(j.key)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSigning, err)
	}

	return signed, nil
}
