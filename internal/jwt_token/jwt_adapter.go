package jwttoken

import (
	authmw "willgate/pkg/platform/middleware/auth"
)

// JWTServiceAdapter satisfies authmw.JWTValidator.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	wallet, err := claims.Wallet()
	if err != nil {
		return nil, err
	}
	return &authmw.JWTClaims{Wallet: wallet, JTI: claims.ID}, nil
}
