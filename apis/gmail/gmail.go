// Package gmail wraps the Gmail REST API for sending and listing mail.
package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"aria/apis/googleauth"
)

// Scopes requested for the Gmail manager.
var Scopes = []string{
	gmailapi.GmailReadonlyScope,
	gmailapi.GmailSendScope,
	gmailapi.GmailModifyScope,
}

// EmailInfo is a reduced view of one message.
type EmailInfo struct {
	ID      string `json:"id"`
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Snippet string `json:"snippet"`
	Date    string `json:"date"`
	Unread  bool   `json:"unread"`
}

// Manager talks to the Gmail API on behalf of the authorized user.
type Manager struct {
	service *gmailapi.Service
}

// NewManager builds a Manager from the cached OAuth token.
func NewManager(ctx context.Context, credentialsFile, tokenFile string) (*Manager, error) {
	client, err := googleauth.Client(ctx, credentialsFile, tokenFile, Scopes...)
	if err != nil {
		return nil, err
	}
	service, err := gmailapi.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}
	return &Manager{service: service}, nil
}

// Send composes and sends a plain-text message.
func (m *Manager) Send(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("no recipient given")
	}

	var raw strings.Builder
	fmt.Fprintf(&raw, "To: %s\r\n", to)
	fmt.Fprintf(&raw, "Subject: %s\r\n", subject)
	raw.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	raw.WriteString(body)

	msg := &gmailapi.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(raw.String())),
	}
	if _, err := m.service.Users.Messages.Send("me", msg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	log.Printf("📧 [GMAIL] Sent email to %s", to)
	return nil
}

// Recent returns the newest messages, optionally filtered by sender.
func (m *Manager) Recent(ctx context.Context, senderFilter string, maxResults int64) ([]EmailInfo, error) {
	query := "in:inbox"
	if senderFilter != "" {
		query += " from:" + senderFilter
	}
	return m.Search(ctx, query, maxResults)
}

// Unread returns unread inbox messages.
func (m *Manager) Unread(ctx context.Context, maxResults int64) ([]EmailInfo, error) {
	return m.Search(ctx, "in:inbox is:unread", maxResults)
}

// Search lists messages matching a Gmail query string.
func (m *Manager) Search(ctx context.Context, query string, maxResults int64) ([]EmailInfo, error) {
	if maxResults <= 0 {
		maxResults = 10
	}
	list, err := m.service.Users.Messages.List("me").Q(query).MaxResults(maxResults).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	emails := make([]EmailInfo, 0, len(list.Messages))
	for _, ref := range list.Messages {
		msg, err := m.service.Users.Messages.Get("me", ref.Id).
			Format("metadata").
			MetadataHeaders("From", "To", "Subject", "Date").
			Context(ctx).Do()
		if err != nil {
			continue
		}
		emails = append(emails, toEmailInfo(msg))
	}
	return emails, nil
}

// MarkRead removes the UNREAD label from a message.
func (m *Manager) MarkRead(ctx context.Context, messageID string) error {
	_, err := m.service.Users.Messages.Modify("me", messageID, &gmailapi.ModifyMessageRequest{
		RemoveLabelIds: []string{"UNREAD"},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to mark message %s as read: %w", messageID, err)
	}
	return nil
}

func toEmailInfo(msg *gmailapi.Message) EmailInfo {
	info := EmailInfo{ID: msg.Id, Snippet: msg.Snippet}
	for _, label := range msg.LabelIds {
		if label == "UNREAD" {
			info.Unread = true
		}
	}
	if msg.Payload == nil {
		return info
	}
	for _, h := range msg.Payload.Headers {
		switch h.Name {
		case "From":
			info.From = h.Value
		case "To":
			info.To = h.Value
		case "Subject":
			info.Subject = h.Value
		case "Date":
			info.Date = h.Value
		}
	}
	return info
}
