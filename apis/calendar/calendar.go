// Package calendar wraps the Google Calendar API for event management.
package calendar

import (
	"context"
	"fmt"
	"log"
	"time"

	calapi "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"aria/apis/googleauth"
)

// Scopes requested for the Calendar manager.
var Scopes = []string{calapi.CalendarScope}

// EventInfo is a reduced view of one calendar event.
type EventInfo struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	AllDay   bool      `json:"all_day"`
	Location string    `json:"location,omitempty"`
	Link     string    `json:"link,omitempty"`
}

// Manager talks to the Calendar API on behalf of the authorized user.
type Manager struct {
	service    *calapi.Service
	calendarID string
}

// NewManager builds a Manager from the cached OAuth token.
func NewManager(ctx context.Context, credentialsFile, tokenFile string) (*Manager, error) {
	client, err := googleauth.Client(ctx, credentialsFile, tokenFile, Scopes...)
	if err != nil {
		return nil, err
	}
	service, err := calapi.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &Manager{service: service, calendarID: "primary"}, nil
}

// CreateEvent inserts an event on the primary calendar. A zero duration
// defaults to one hour.
func (m *Manager) CreateEvent(ctx context.Context, title string, start time.Time, duration time.Duration, location string) (*EventInfo, error) {
	if title == "" {
		return nil, fmt.Errorf("event title is required")
	}
	if duration <= 0 {
		duration = time.Hour
	}
	end := start.Add(duration)

	event := &calapi.Event{
		Summary:  title,
		Location: location,
		Start:    &calapi.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:      &calapi.EventDateTime{DateTime: end.Format(time.RFC3339)},
	}
	created, err := m.service.Events.Insert(m.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event %q: %w", title, err)
	}
	log.Printf("📅 [CALENDAR] Created event %q at %s", title, start.Format("2006-01-02 15:04"))
	info := toEventInfo(created)
	return &info, nil
}

// TodayEvents returns events between local midnight and midnight tomorrow.
func (m *Manager) TodayEvents(ctx context.Context) ([]EventInfo, error) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return m.eventsBetween(ctx, start, start.Add(24*time.Hour), 20)
}

// UpcomingEvents returns events from now over the given number of days.
func (m *Manager) UpcomingEvents(ctx context.Context, days int) ([]EventInfo, error) {
	if days <= 0 {
		days = 7
	}
	now := time.Now()
	return m.eventsBetween(ctx, now, now.AddDate(0, 0, days), 50)
}

// Search returns upcoming events whose text matches the query.
func (m *Manager) Search(ctx context.Context, query string, maxResults int64) ([]EventInfo, error) {
	if maxResults <= 0 {
		maxResults = 20
	}
	call := m.service.Events.List(m.calendarID).
		Q(query).
		TimeMin(time.Now().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(maxResults)
	list, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to search events: %w", err)
	}
	return toEventInfos(list), nil
}

// DeleteEvent removes an event by id.
func (m *Manager) DeleteEvent(ctx context.Context, eventID string) error {
	if err := m.service.Events.Delete(m.calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete event %s: %w", eventID, err)
	}
	return nil
}

func (m *Manager) eventsBetween(ctx context.Context, from, to time.Time, maxResults int64) ([]EventInfo, error) {
	call := m.service.Events.List(m.calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(maxResults)
	list, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return toEventInfos(list), nil
}

func toEventInfos(list *calapi.Events) []EventInfo {
	events := make([]EventInfo, 0, len(list.Items))
	for _, item := range list.Items {
		events = append(events, toEventInfo(item))
	}
	return events
}

func toEventInfo(event *calapi.Event) EventInfo {
	info := EventInfo{
		ID:       event.Id,
		Title:    event.Summary,
		Location: event.Location,
		Link:     event.HtmlLink,
	}
	if event.Start != nil {
		if event.Start.DateTime != "" {
			info.Start, _ = time.Parse(time.RFC3339, event.Start.DateTime)
		} else if event.Start.Date != "" {
			info.Start, _ = time.Parse("2006-01-02", event.Start.Date)
			info.AllDay = true
		}
	}
	if event.End != nil && event.End.DateTime != "" {
		info.End, _ = time.Parse(time.RFC3339, event.End.DateTime)
	}
	return info
}
