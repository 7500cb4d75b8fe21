package apiv1

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"github.com/slack-go/slack"

	"pto-bot-backend/controllers"
	slacknotify "pto-bot-backend/lib/notify/slack"
	ptohandler "pto-bot-backend/lib/pto"
	"pto-bot-backend/lib/utils/dedup"
	"pto-bot-backend/lib/utils/helpers"
	"pto-bot-backend/middleware"
	"pto-bot-backend/models"
	ptoapimodels "pto-bot-backend/models/api/pto"
)

type slackApiController struct {
	controllers.BaseAPIController
}

func InitSlackApiRouters(api fiber.Router) {
	c := slackApiController{}
	group := api.Group("/slack", middleware.SlackSignatureRequired())
	group.Post("/command", c.command)
	group.Post("/interactions", c.interactions)
	group.Post("/events", c.events)
}

// Slack retries any delivery that is not acknowledged within ~3s, so
// every handler acks first and runs the lifecycle in the background.
// The lifecycle operations themselves are idempotent, a duplicate that
// slips past the dedup filter does no harm.

func (c *slackApiController) command(ctx *fiber.Ctx) error {
	userID := ctx.FormValue("user_id")
	userName := ctx.FormValue("user_name")
	text := ctx.FormValue("text")
	if userID == "" || text == "" {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"response_type": "ephemeral",
			"text":          "Tell me when you want time off, e.g. /pto next Monday to Wednesday, family trip",
		})
	}

	go c.processDraft(userID, userName, text)

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"response_type": "ephemeral",
		"text":          "Got it - checking your dates and balance, I'll message you in a moment.",
	})
}

func (c *slackApiController) processDraft(userID, userName, text string) {
	logger := log.WithField("user_id", userID)
	today := helpers.DateUTC(time.Now())
	draft, err := ptohandler.Instance.Draft(userID, userName, text, today)
	if err != nil {
		c.tell(userID, userFacingError(err), logger)
		return
	}
	check, err := ptohandler.Instance.CheckBalance(userID, draft.BusinessDays)
	if err != nil {
		c.tell(userID, "Something went wrong while checking your balance, please try again.", logger)
		return
	}
	if !check.Allowed {
		c.tell(userID, fmt.Sprintf(
			"That range needs %d business day(s), but you only have %d remaining out of %d.",
			check.Requested, check.Remaining, check.Allowance), logger)
		return
	}

	summary := fmt.Sprintf(
		"Requesting *%d business day(s)* of PTO, %s to %s (%s). You will have %d day(s) left. Submit?",
		draft.BusinessDays,
		helpers.FormatISODate(draft.Start), helpers.FormatISODate(draft.End),
		draft.Reason, check.Remaining-draft.BusinessDays,
	)
	blocks, err := ptohandler.ConfirmBlocks(draft, summary)
	if err != nil {
		logger.WithError(err).Error("failed to build confirmation blocks")
		return
	}
	c.tell(userID, summary, logger, blocks...)
}

func (c *slackApiController) interactions(ctx *fiber.Ctx) error {
	var payload slack.InteractionCallback
	if err := json.Unmarshal([]byte(ctx.FormValue("payload")), &payload); err != nil {
		log.WithError(err).Warn("failed to parse interaction payload")
		return ctx.SendStatus(fiber.StatusBadRequest)
	}
	if len(payload.ActionCallback.BlockActions) == 0 {
		return ctx.SendStatus(fiber.StatusOK)
	}
	action := payload.ActionCallback.BlockActions[0]
	actorID := payload.User.ID
	responseURL := payload.ResponseURL

	switch action.ActionID {
	case ptohandler.ActionConfirm:
		var draft ptoapimodels.DraftRequest
		if err := json.Unmarshal([]byte(action.Value), &draft); err != nil {
			log.WithError(err).WithField("actor_id", actorID).Warn("failed to parse draft from confirm action")
			return ctx.SendStatus(fiber.StatusBadRequest)
		}
		go c.processSubmit(draft, actorID, responseURL)
	case ptohandler.ActionCancel:
		go respondWebhook(responseURL, "Request cancelled.", true)
	case ptohandler.ActionApprove:
		go c.processDecision(action.Value, actorID, models.RequestStatusApproved, responseURL)
	case ptohandler.ActionDeny:
		go c.processDecision(action.Value, actorID, models.RequestStatusDenied, responseURL)
	default:
		log.WithField("action_id", action.ActionID).Warn("unknown interaction action")
	}
	return ctx.SendStatus(fiber.StatusOK)
}

func (c *slackApiController) processSubmit(draft ptoapimodels.DraftRequest, actorID, responseURL string) {
	logger := log.WithField("user_id", draft.UserID).WithField("request_id", draft.RequestID)
	if actorID != draft.UserID {
		logger.WithField("actor_id", actorID).Warn("confirm action by a different user")
		respondWebhook(responseURL, "Only the requester can submit this request.", false)
		return
	}
	requestID, err := ptohandler.Instance.Submit(draft)
	if err != nil {
		logger.WithError(err).Warn("submission failed")
		respondWebhook(responseURL, userFacingError(err), false)
		return
	}
	logger.WithField("request_id", requestID).Info("request submitted")
	respondWebhook(responseURL, "Your request was sent to your manager for approval.", true)
}

func (c *slackApiController) processDecision(requestID, actorID string, decision models.RequestStatus, responseURL string) {
	logger := log.WithField("request_id", requestID).WithField("actor_id", actorID)
	result, err := ptohandler.Instance.Decide(requestID, actorID, decision)
	if err != nil {
		respondWebhook(responseURL, userFacingError(err), false)
		return
	}
	if result.AlreadyDecided {
		respondWebhook(responseURL, fmt.Sprintf("This request was already %s.", result.Status), false)
		return
	}
	logger.WithField("status", result.Status).Info("request decided")
}

func (c *slackApiController) events(ctx *fiber.Ctx) error {
	var envelope struct {
		Type      string `json:"type"`
		Challenge string `json:"challenge"`
		EventID   string `json:"event_id"`
		Event     struct {
			Type        string `json:"type"`
			User        string `json:"user"`
			Text        string `json:"text"`
			BotID       string `json:"bot_id"`
			ChannelType string `json:"channel_type"`
		} `json:"event"`
	}
	if err := json.Unmarshal(ctx.Body(), &envelope); err != nil {
		log.WithError(err).Warn("failed to parse event envelope")
		return ctx.SendStatus(fiber.StatusBadRequest)
	}
	if envelope.Type == "url_verification" {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"challenge": envelope.Challenge})
	}
	// at-least-once delivery: drop retries of an event already seen
	if !dedup.Instance.FirstDelivery(envelope.EventID, 15*time.Minute) {
		return ctx.SendStatus(fiber.StatusOK)
	}
	if envelope.Event.BotID != "" {
		return ctx.SendStatus(fiber.StatusOK)
	}
	if envelope.Event.Type == "message" && envelope.Event.ChannelType == "im" {
		go c.processDraft(envelope.Event.User, "", envelope.Event.Text)
	}
	return ctx.SendStatus(fiber.StatusOK)
}

func (c *slackApiController) tell(userID, text string, logger *log.Entry, blocks ...slack.Block) {
	if _, _, err := slacknotify.Instance.Notify(userID, text, blocks...); err != nil {
		logger.WithError(err).Error("failed to message user")
	}
}

func respondWebhook(responseURL, text string, replaceOriginal bool) {
	if responseURL == "" {
		return
	}
	msg := &slack.WebhookMessage{
		Text:            text,
		ReplaceOriginal: replaceOriginal,
	}
	if !replaceOriginal {
		msg.ResponseType = "ephemeral"
	}
	if err := slack.PostWebhook(responseURL, msg); err != nil {
		log.WithError(err).Error("failed to post interaction response")
	}
}

// userFacingError maps lifecycle errors to safe chat replies; internal
// details never leak to the acting user.
func userFacingError(err error) string {
	var parseErr *models.ParseError
	var validationErr *models.ValidationError
	var balanceErr *models.InsufficientBalanceError
	switch {
	case errors.As(err, &parseErr):
		return fmt.Sprintf("I could not work out the dates: %s. Try something like \"next Monday to Wednesday\".", parseErr.Reason)
	case errors.As(err, &validationErr):
		return fmt.Sprintf("That request will not work: %s.", validationErr.Reason)
	case errors.As(err, &balanceErr):
		return fmt.Sprintf("You requested %d business day(s) but only have %d remaining.", balanceErr.Requested, balanceErr.Remaining)
	case errors.Is(err, models.ErrNotFound):
		return "This request could not be found, it may have been removed."
	case errors.Is(err, models.ErrUnauthorized):
		return "You do not have permission to decide this request."
	case errors.Is(err, models.ErrConflict):
		return "This request was already decided by someone else."
	}
	return "Something went wrong, please try again."
}
