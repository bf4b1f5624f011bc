package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"municipal-reports-service/models"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "bearer token", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "wrong scheme", header: "Basic abc.def.ghi", want: ""},
		{name: "no scheme", header: "abc.def.ghi", want: ""},
		{name: "empty header", header: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractToken(tt.header); got != tt.want {
				t.Errorf("extractToken(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestValidateToken(t *testing.T) {
	const secret = "test-secret"

	tokenString := signToken(t, secret, jwt.MapClaims{
		"user_id": 9,
		"role":    RoleMunicipality,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	userID, role, err := ValidateToken(tokenString, secret)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if userID != 9 {
		t.Errorf("expected user id 9, got %d", userID)
	}
	if role != RoleMunicipality {
		t.Errorf("expected role %q, got %q", RoleMunicipality, role)
	}
}

func TestValidateTokenRejectsBadSignature(t *testing.T) {
	tokenString := signToken(t, "other-secret", jwt.MapClaims{
		"user_id": 9,
		"role":    RoleMunicipality,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	if _, _, err := ValidateToken(tokenString, "test-secret"); err == nil {
		t.Error("expected an error for a token signed with the wrong secret")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	tokenString := signToken(t, "test-secret", jwt.MapClaims{
		"user_id": 9,
		"role":    RoleMunicipality,
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})

	if _, _, err := ValidateToken(tokenString, "test-secret"); err == nil {
		t.Error("expected an error for an expired token")
	}
}

func TestValidateTokenRejectsMissingClaims(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
	}{
		{name: "no user_id", claims: jwt.MapClaims{"role": RoleMunicipality}},
		{name: "no role", claims: jwt.MapClaims{"user_id": 9}},
		{name: "empty role", claims: jwt.MapClaims{"user_id": 9, "role": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokenString := signToken(t, "test-secret", tt.claims)
			if _, _, err := ValidateToken(tokenString, "test-secret"); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestAuthorType(t *testing.T) {
	if got := AuthorType(RoleMunicipality); got != models.AuthorMunicipality {
		t.Errorf("municipality role maps to %q", got)
	}
	if got := AuthorType(RoleExternalMaintainer); got != models.AuthorExternalMaintainer {
		t.Errorf("external maintainer role maps to %q", got)
	}
	if got := AuthorType(RoleCitizen); got.Valid() {
		t.Errorf("citizen role must not map to a valid author type, got %q", got)
	}
}
