package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Nama locals yang di-set setelah token valid
const (
	LocUserID    = "user_id"
	LocCompanyID = "company_id"
	LocRole      = "role"
)

type AuthJWTOpts struct {
	Secret              string
	AllowCookieFallback bool // pakai cookie access_token jika tidak ada Bearer
}

func AuthJWT(o AuthJWTOpts) fiber.Handler {
	secret := strings.TrimSpace(o.Secret)
	if secret == "" {
		panic("AuthJWT: Secret wajib diisi")
	}

	return func(c *fiber.Ctx) error {
		// 1) Ambil token: Authorization: Bearer xxx (atau cookie jika diizinkan)
		raw := ""
		if authz := strings.TrimSpace(c.Get(fiber.HeaderAuthorization)); strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			raw = strings.TrimSpace(authz[7:])
		} else if o.AllowCookieFallback {
			raw = strings.TrimSpace(c.Cookies("access_token"))
		}
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}

		// 2) Parse + verifikasi algoritma
		tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !tok.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}

		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
		}
		c.Locals("jwt_claims", claims)

		// === HYDRATE LOCALS ===
		if v, ok := claims["user_id"].(string); ok {
			c.Locals(LocUserID, v)
		}
		if v, ok := claims["company_id"].(string); ok {
			c.Locals(LocCompanyID, v)
		}
		if v, ok := claims["role"].(string); ok {
			c.Locals(LocRole, v)
		}

		return c.Next()
	}
}

// IsAdmin membatasi group admin (dipasang setelah AuthJWT)
func IsAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocRole).(string)
		if role != "admin" && role != "owner" {
			return fiber.NewError(fiber.StatusForbidden, "Akses khusus admin")
		}
		return c.Next()
	}
}

// GetCompanyID ambil tenant id dari locals (hasil AuthJWT)
func GetCompanyID(c *fiber.Ctx) (uuid.UUID, error) {
	raw, _ := c.Locals(LocCompanyID).(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Company scope tidak ditemukan di token")
	}
	return id, nil
}
