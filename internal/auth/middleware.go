package auth

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	tokenContextKey  = "user"
	claimsContextKey = "claims"
)

// Middleware verifies the bearer token and rejects revoked sessions. On
// success the claims are available through ClaimsFrom.
func Middleware(jwtService *JWTService, store TokenStoreInterface) echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		SigningKey:    jwtService.Secret(),
		SigningMethod: jwt.SigningMethodHS256.Alg(),
		ContextKey:    tokenContextKey,
		TokenLookup:   "header:" + echo.HeaderAuthorization + ":Bearer ",
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		},
	})

	checkRevoked := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get(tokenContextKey).(*jwt.Token)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}
			claims, ok := token.Claims.(*Claims)
			if !ok || claims.UserID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}
			if store != nil && claims.ID != "" {
				revoked, _ := store.IsRevoked(c.Request().Context(), claims.ID)
				if revoked {
					return echo.NewHTTPError(http.StatusUnauthorized, "session has been revoked")
				}
			}
			c.Set(claimsContextKey, claims)
			return next(c)
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(checkRevoked(next))
	}
}

// ClaimsFrom returns the verified claims of the current request.
func ClaimsFrom(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(claimsContextKey).(*Claims)
	return claims, ok
}
