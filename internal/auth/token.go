package auth

import (
	"fmt"
	"time"

	"civicreport-be/internal/models"

	"github.com/dgrijalva/jwt-go"
)

// tokenTTL is how long issued tokens stay valid.
const tokenTTL = 72 * time.Hour

// Claims is what the core trusts about a caller: identity and role, as
// supplied by the credential layer.
type Claims struct {
	UserID string
	Role   models.Role
}

// GenerateToken mints an HS256 token carrying the user id and role.
func GenerateToken(secret, userID string, role models.Role) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt secret is empty")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    string(role),
		"exp":     time.Now().Add(tokenTTL).Unix(),
	})

	return token.SignedString([]byte(secret))
}

// ParseToken verifies a token and extracts its claims. Tokens minted before
// roles were added carry no role claim and default to USER.
func ParseToken(secret, tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, models.ErrUnauthorized
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.ErrUnauthorized
	}

	userID, ok := mapClaims["user_id"].(string)
	if !ok || userID == "" {
		return nil, models.ErrUnauthorized
	}

	role := models.RoleUser
	if r, ok := mapClaims["role"].(string); ok && models.Role(r).Valid() {
		role = models.Role(r)
	}

	return &Claims{UserID: userID, Role: role}, nil
}
