// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

package notify

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlackChannelPostsPayload(t *testing.T) {
	var received slackPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	channel := NewSlackChannel(server.URL, 5*time.Second)
	n := Render(EmergencyReplacement{Key: eventKey(), Phase: PhaseInitiated, IncidentID: "INC-1"}, eventNow)
	require.NoError(t, channel.Send(n))

	assert.Equal(t, n.Title, received.Text)
	require.Len(t, received.Attachments, 1)
	attachment := received.Attachments[0]
	assert.Equal(t, "#ff0000", attachment.Color)

	fields := map[string]string{}
	for _, f := range attachment.Fields {
		fields[f.Title] = f.Value
	}
	assert.Equal(t, "emergency-replacement", fields["Type"])
	assert.Equal(t, "CRITICAL", fields["Severity"])
	assert.Equal(t, "gateway", fields["Alias"])
	assert.Equal(t, "prod", fields["Environment"])
}

func TestSlackChannelRejectsBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	channel := NewSlackChannel(server.URL, 5*time.Second)
	err := channel.Send(Render(KeyCreated{Key: eventKey()}, eventNow))
	assert.ErrorContains(t, err, "status 500")
}

func TestSlackChannelRequiresWebhook(t *testing.T) {
	channel := &SlackChannel{Client: &http.Client{}}
	err := channel.Send(Notification{})
	assert.ErrorContains(t, err, "not configured")
}

func TestDispatcherFanOut(t *testing.T) {
	var slackHits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slackHits++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	email := &recordingChannel{name: "email"}
	pager := &recordingChannel{name: "pagerduty"}
	d := &Dispatcher{
		Slack:     NewSlackChannel(server.URL, 5*time.Second),
		Email:     email,
		PagerDuty: pager,
		Now:       func() time.Time { return eventNow },
	}

	require.NoError(t, d.Dispatch(KeyCreated{Key: eventKey()}))
	assert.Equal(t, 1, slackHits)
	assert.Equal(t, 0, email.sent, "info events must not email")
	assert.Equal(t, 0, pager.sent, "info events must not page")

	require.NoError(t, d.Dispatch(KeyDeleted{Key: eventKey()}))
	assert.Equal(t, 1, email.sent, "warnings reach email")
	assert.Equal(t, 0, pager.sent)

	require.NoError(t, d.Dispatch(EmergencyReplacement{Key: eventKey(), Phase: PhaseInitiated}))
	assert.Equal(t, 2, email.sent)
	assert.Equal(t, 1, pager.sent, "critical events page")
}

type recordingChannel struct {
	name string
	sent int
}

func (c *recordingChannel) Name() string { return c.name }

func (c *recordingChannel) Send(n Notification) error {
	c.sent++
	return nil
}
