package slacknotify

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
)

// Provider is the chat gateway the lifecycle talks to. Failures here
// must never fail a lifecycle operation, callers log and move on.
type Provider interface {
	Notify(targetID, text string, blocks ...slack.Block) (channelID, messageTS string, err error)
	UpdateMessage(channelID, messageTS, text string, blocks ...slack.Block) error
}

var Instance Provider

func NewHandler(botToken string) {
	Instance = impl{
		client: slack.New(botToken),
	}
}

type impl struct {
	client *slack.Client
}

func (i impl) Notify(targetID, text string, blocks ...slack.Block) (channelID, messageTS string, err error) {
	channel, _, _, err := i.client.OpenConversation(&slack.OpenConversationParameters{
		Users: []string{targetID},
	})
	if err != nil {
		return "", "", errors.Wrapf(err, "failed to open conversation with %v", targetID)
	}
	opts := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if len(blocks) != 0 {
		opts = append(opts, slack.MsgOptionBlocks(blocks...))
	}
	channelID, messageTS, err = i.client.PostMessage(channel.ID, opts...)
	if err != nil {
		return "", "", errors.Wrapf(err, "failed to post message to %v", targetID)
	}
	return channelID, messageTS, nil
}

func (i impl) UpdateMessage(channelID, messageTS, text string, blocks ...slack.Block) error {
	opts := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if len(blocks) != 0 {
		opts = append(opts, slack.MsgOptionBlocks(blocks...))
	}
	_, _, _, err := i.client.UpdateMessage(channelID, messageTS, opts...)
	if err != nil {
		log.WithField("channel_id", channelID).WithError(err).Error("failed to update message")
		return err
	}
	return nil
}
