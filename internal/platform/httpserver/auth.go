package httpserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type authErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func resolveJWTSecret(secret string, logger *slog.Logger) []byte {
	if strings.TrimSpace(secret) != "" {
		return []byte(secret)
	}
	// Ephemeral secret for local runs. Tokens do not survive restarts.
	logger.Warn("jwt secret not configured, using ephemeral secret",
		"event", "jwt_secret_ephemeral",
		"module", "internal/platform/httpserver",
		"layer", "platform",
	)
	return []byte(uuid.NewString())
}

func writeAuthError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, authErrorResponse{Code: code, Message: message})
}

// requireUser resolves the caller identity from the X-User-Id header.
// End-user surfaces trust the gateway to have authenticated the session.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		writeAuthError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return "", false
	}
	return userID, true
}

// requireModerator validates the bearer token and returns the moderator
// subject. Only moderator and admin roles may reach moderation surfaces.
func (s *Server) requireModerator(w http.ResponseWriter, r *http.Request) (string, bool) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		writeAuthError(w, http.StatusUnauthorized, "unauthorized", "Authorization bearer token is required")
		return "", false
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		writeAuthError(w, http.StatusUnauthorized, "unauthorized", "bearer token is invalid")
		return "", false
	}

	subject, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(subject) == "" {
		writeAuthError(w, http.StatusUnauthorized, "unauthorized", "bearer token carries no subject")
		return "", false
	}

	role, _ := claims["role"].(string)
	switch role {
	case "moderator", "admin":
		return subject, true
	default:
		writeAuthError(w, http.StatusForbidden, "forbidden", "moderator role is required")
		return "", false
	}
}
