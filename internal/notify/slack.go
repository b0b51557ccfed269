// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

package notify

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// severityColors maps severities to Slack attachment colors.
var severityColors = map[Severity]string{
	SeverityInfo:     "#36a64f",
	SeverityWarning:  "#ff9900",
	SeverityError:    "#ff0000",
	SeverityCritical: "#ff0000",
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type slackAttachment struct {
	Color  string       `json:"color"`
	Fields []slackField `json:"fields"`
}

type slackPayload struct {
	Text        string            `json:"text"`
	Attachments []slackAttachment `json:"attachments"`
}

// SlackChannel posts notifications to an incoming webhook.
type SlackChannel struct {
	WebhookURL string
	Client     *http.Client
}

func NewSlackChannel(webhookURL string, timeout time.Duration) *SlackChannel {
	return &SlackChannel{
		WebhookURL: webhookURL,
		Client:     &http.Client{Timeout: timeout},
	}
}

func (c *SlackChannel) Name() string { return "slack" }

// Send posts the notification. An unconfigured webhook is an error so the
// dispatcher can surface the missing configuration.
func (c *SlackChannel) Send(n Notification) error {
	if c.WebhookURL == "" {
		return errors.New("slack webhook URL not configured")
	}

	color, ok := severityColors[n.Severity]
	if !ok {
		color = severityColors[SeverityInfo]
	}

	fields := []slackField{
		{Title: "Type", Value: n.Type, Short: true},
		{Title: "Severity", Value: strings.ToUpper(string(n.Severity)), Short: true},
		{Title: "Message", Value: n.Message, Short: false},
		{Title: "Timestamp", Value: n.Timestamp, Short: true},
	}
	if n.KeyID != "" {
		fields = append(fields, slackField{Title: "Key ID", Value: n.KeyID, Short: true})
	}
	if n.Alias != "" {
		fields = append(fields, slackField{Title: "Alias", Value: n.Alias, Short: true})
	}
	if n.Environment != "" {
		fields = append(fields, slackField{Title: "Environment", Value: n.Environment, Short: true})
	}
	if n.Owner != "" {
		fields = append(fields, slackField{Title: "Owner", Value: n.Owner, Short: true})
	}
	if n.AdditionalInfo != "" {
		fields = append(fields, slackField{Title: "Additional Info", Value: n.AdditionalInfo, Short: false})
	}

	payload := slackPayload{
		Text:        n.Title,
		Attachments: []slackAttachment{{Color: color, Fields: fields}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "encoding slack payload")
	}

	resp, err := c.Client.Post(c.WebhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "posting to slack webhook")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("slack webhook returned status %d", resp.StatusCode)
	}
	return nil
}
