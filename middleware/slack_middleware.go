package middleware

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
	"pto-bot-backend/config"
)

// SlackSignatureRequired rejects deliveries whose signature does not
// match the workspace signing secret. The raw body must be used, any
// re-serialization breaks the signature.
func SlackSignatureRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		secret := config.Conf.Slack.SigningSecret
		header := http.Header{}
		header.Set("X-Slack-Signature", c.Get("X-Slack-Signature"))
		header.Set("X-Slack-Request-Timestamp", c.Get("X-Slack-Request-Timestamp"))

		sv, err := slack.NewSecretsVerifier(header, secret)
		if err != nil {
			log.WithError(err).Warn("rejected slack delivery with malformed signature headers")
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		if _, err = sv.Write(c.Body()); err != nil {
			log.WithError(err).Error("failed to hash slack delivery body")
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		if err = sv.Ensure(); err != nil {
			log.WithError(err).Warn("rejected slack delivery with invalid signature")
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.Next()
	}
}
