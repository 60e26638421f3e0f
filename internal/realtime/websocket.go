package realtime

import (
	"encoding/json"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/oarthurdev/vortex-gestao/internal/auth"
	"github.com/oarthurdev/vortex-gestao/internal/config"
)

const typeJoinCompany = "join_company"

type clientMessage struct {
	Type      string `json:"type"`
	CompanyID string `json:"companyId"`
}

// UpgradeMiddleware authenticates the handshake. Browsers cannot set headers
// on a websocket, so the token may also come from the token query param.
func UpgradeMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		tokenStr := c.Query("token")
		if tokenStr == "" {
			tokenStr, _ = auth.BearerToken(c.Get(fiber.HeaderAuthorization))
		}
		if tokenStr == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Não autenticado")
		}

		claims, err := auth.ParseToken(cfg.JWTSecret, tokenStr)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Token inválido ou expirado")
		}

		c.Locals(auth.CtxCompanyIDKey, claims.CompanyID)
		c.Locals(auth.CtxUserIDKey, claims.UserID)
		return c.Next()
	}
}

// Handler serves /ws. The connection is registered only after a
// join_company message, always under the token's company.
func Handler(hub *Hub, log *zap.Logger) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		companyID, _ := conn.Locals(auth.CtxCompanyIDKey).(string)
		userID, _ := conn.Locals(auth.CtxUserIDKey).(string)
		l := log.With(zap.String("company_id", companyID), zap.String("user_id", userID))

		var unregister func()
		defer func() {
			if unregister != nil {
				unregister()
			}
			conn.Close()
		}()

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					l.Debug("websocket read failed", zap.Error(err))
				}
				return
			}

			var msg clientMessage
			if err := json.Unmarshal(raw, &msg); err != nil {
				l.Debug("websocket message ignored", zap.Error(err))
				continue
			}

			if msg.Type != typeJoinCompany || unregister != nil {
				continue
			}
			if msg.CompanyID != "" && msg.CompanyID != companyID {
				l.Warn("join_company ignored requested company", zap.String("requested", msg.CompanyID))
			}
			unregister = hub.Register(companyID, conn)
		}
	})
}
