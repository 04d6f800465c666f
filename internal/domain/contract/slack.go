package contract

import "github.com/slack-go/slack"

// SlackAPI defines the interface for Slack operations
// This allows mocking in tests while keeping the real implementation simple
type SlackAPI interface {
	// PostMessage sends a message to a Slack channel
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)

	// GetConversationInfo fetches channel metadata by id
	GetConversationInfo(input *slack.GetConversationInfoInput) (*slack.Channel, error)
}
