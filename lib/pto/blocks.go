package ptohandler

import (
	"encoding/json"

	"github.com/slack-go/slack"

	ptoapimodels "pto-bot-backend/models/api/pto"
)

// Action IDs routed back by the interactivity endpoint. Approve/Deny
// values carry only the request id; Confirm carries the whole draft so
// the submission does not depend on server-side session state.
const (
	ActionConfirm = "pto_confirm"
	ActionCancel  = "pto_cancel"
	ActionApprove = "pto_approve"
	ActionDeny    = "pto_deny"
)

func DecisionBlocks(requestID, summary string) []slack.Block {
	return []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, summary, false, false),
			nil, nil,
		),
		slack.NewActionBlock(
			"pto_decision",
			slack.NewButtonBlockElement(ActionApprove, requestID,
				slack.NewTextBlockObject(slack.PlainTextType, "Approve", false, false)).
				WithStyle(slack.StylePrimary),
			slack.NewButtonBlockElement(ActionDeny, requestID,
				slack.NewTextBlockObject(slack.PlainTextType, "Deny", false, false)).
				WithStyle(slack.StyleDanger),
		),
	}
}

func ConfirmBlocks(draft ptoapimodels.DraftRequest, summary string) ([]slack.Block, error) {
	payload, err := json.Marshal(draft)
	if err != nil {
		return nil, err
	}
	return []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, summary, false, false),
			nil, nil,
		),
		slack.NewActionBlock(
			"pto_confirm",
			slack.NewButtonBlockElement(ActionConfirm, string(payload),
				slack.NewTextBlockObject(slack.PlainTextType, "Submit request", false, false)).
				WithStyle(slack.StylePrimary),
			slack.NewButtonBlockElement(ActionCancel, draft.RequestID,
				slack.NewTextBlockObject(slack.PlainTextType, "Cancel", false, false)),
		),
	}, nil
}
