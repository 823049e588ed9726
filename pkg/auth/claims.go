package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/trefleapp/trefle-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	Role     enums.UserRole
	VendorID *uuid.UUID
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to clients. VendorID is
// present only on vendor-role tokens.
type AccessTokenClaims struct {
	UserID   uuid.UUID      `json:"user_id"`
	Role     enums.UserRole `json:"role"`
	VendorID *uuid.UUID     `json:"vendor_id,omitempty"`
	jwt.RegisteredClaims
}
