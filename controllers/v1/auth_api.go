package apiv1

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"pto-bot-backend/config"
	"pto-bot-backend/controllers"
	authutils "pto-bot-backend/lib/utils/auth-utils"
	apimodels "pto-bot-backend/models/api"
	authapimodels "pto-bot-backend/models/api/auth"
)

type authApiController struct {
	controllers.BaseAPIController
}

func InitAuthApiRouters(api fiber.Router) {
	c := authApiController{}
	api.Post("/auth/token", c.issueToken)
}

func (c *authApiController) issueToken(ctx *fiber.Ctx) error {
	body := authapimodels.TokenRequest{}
	if err := c.BodyParser(ctx, &body); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if body.Name == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError("name is required"))
	}
	adminKey := config.Conf.Auth.AdminAPIKey
	if adminKey == "" || subtle.ConstantTimeCompare([]byte(body.Key), []byte(adminKey)) != 1 {
		c.GetLogger(ctx).WithField("name", body.Name).Warn("admin token request with a wrong key")
		return ctx.Status(fiber.StatusUnauthorized).JSON(apimodels.NewError("invalid admin key"))
	}

	token, err := authutils.GetToken(body.Name)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "failed to issue token")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(authapimodels.TokenResponse{Token: token}))
}
