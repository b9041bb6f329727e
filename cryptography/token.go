/*************************************************************************
 * Copyright 2026 The Orosu Authors
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package cryptography

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenLifetime bounds how long a minted token is valid for; the spec
// caps it at 10 seconds to bound the blast radius of a replayed token in
// the absence of a replay cache.
const TokenLifetime = 10 * time.Second

// ErrTokenExpired is returned by Verify when the claimed expiry is not
// strictly in the future.
var ErrTokenExpired = errors.New("cryptography: token expired")

// Claims is the full set of fields carried by an orosu token.
type Claims struct {
	Subject string
	Expiry  time.Time
}

type tokenClaims struct {
	jwt.RegisteredClaims
}

// Mint signs a short-lived token asserting subject, using the given
// ed25519 private key and the EdDSA signing method already used
// elsewhere in this codebase's session layer.
func Mint(priv ed25519.PrivateKey, subject string) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	signed, err := tok.SignedString(priv)
	if err != nil {
		return "", fmt.Errorf("cryptography: mint token: %w", err)
	}
	return signed, nil
}

// Subject extracts the claimed subject from a token without verifying
// its signature. Per the required check ordering, the subject must be
// read first so the caller can look up the identity's public key before
// any cryptographic verification happens.
func Subject(token string) (string, error) {
	parser := jwt.NewParser()
	claims := tokenClaims{}
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return "", fmt.Errorf("cryptography: parse token: %w", err)
	}
	return claims.Subject, nil
}

// Expiry extracts the claimed expiry from a token without verifying its
// signature, so the server can reject an expired token (step 3 of the
// auth handshake) before it checks the signature against the identity's
// public key.
func Expiry(token string) (time.Time, error) {
	parser := jwt.NewParser()
	claims := tokenClaims{}
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, fmt.Errorf("cryptography: parse token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, errors.New("cryptography: token has no expiry")
	}
	return claims.ExpiresAt.Time, nil
}

// Verify checks the token's signature against the given public key and
// then checks that its expiry is strictly after now. Subject must
// already have been extracted and resolved to this key by the caller.
func Verify(token string, pub ed25519.PublicKey, now time.Time) (Claims, error) {
	claims := tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("cryptography: unexpected signing method %v", t.Header["alg"])
		}
		return pub, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return Claims{}, fmt.Errorf("cryptography: verify token: %w", err)
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.Time.After(now) {
		return Claims{}, ErrTokenExpired
	}
	if !parsed.Valid {
		return Claims{}, errors.New("cryptography: invalid token")
	}
	return Claims{Subject: claims.Subject, Expiry: claims.ExpiresAt.Time}, nil
}
