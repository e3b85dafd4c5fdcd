package assistant

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"aria/apis/calendar"
	"aria/eventbus"
)

// Reminders periodically polls the calendar and announces events that
// start within the configured window. Each event is announced once.
type Reminders struct {
	assistant *Assistant
	calendar  *calendar.Manager
	window    time.Duration
	cron      *cron.Cron

	mu        sync.Mutex
	announced map[string]time.Time
}

// NewReminders wires a reminder poller. schedule is a cron expression,
// window is how far ahead to look.
func NewReminders(a *Assistant, cal *calendar.Manager, schedule string, window time.Duration) (*Reminders, error) {
	if window <= 0 {
		window = 15 * time.Minute
	}
	r := &Reminders{
		assistant: a,
		calendar:  cal,
		window:    window,
		cron:      cron.New(),
		announced: make(map[string]time.Time),
	}
	if _, err := r.cron.AddFunc(schedule, r.poll); err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", schedule, err)
	}
	return r, nil
}

// Start begins polling in the background.
func (r *Reminders) Start() {
	r.cron.Start()
	log.Printf("⏰ [REMINDERS] Started, window %v", r.window)
}

// Stop halts polling and waits for a running poll to finish.
func (r *Reminders) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

func (r *Reminders) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	events, err := r.calendar.TodayEvents(ctx)
	if err != nil {
		log.Printf("⚠️ [REMINDERS] Calendar poll failed: %v", err)
		return
	}

	now := time.Now()
	for _, event := range events {
		if event.AllDay || event.Start.Before(now) || event.Start.After(now.Add(r.window)) {
			continue
		}
		if r.alreadyAnnounced(event.ID) {
			continue
		}
		r.announce(ctx, event, now)
	}
	r.prune(now)
}

func (r *Reminders) announce(ctx context.Context, event calendar.EventInfo, now time.Time) {
	minutes := int(event.Start.Sub(now).Minutes())
	text := fmt.Sprintf("Rappel : '%s' commence dans %d minute(s).", event.Title, minutes)
	log.Printf("⏰ [REMINDERS] %s", text)

	r.assistant.publish(ctx, eventbus.TypeReminder, "reminders", text, "", map[string]interface{}{
		"event_id":    event.ID,
		"event_title": event.Title,
		"starts_at":   event.Start,
	})
	r.assistant.speak(ctx, text)

	r.mu.Lock()
	r.announced[event.ID] = event.Start
	r.mu.Unlock()
}

func (r *Reminders) alreadyAnnounced(eventID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.announced[eventID]
	return ok
}

// prune drops entries for events already started so the map stays small.
func (r *Reminders) prune(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, start := range r.announced {
		if start.Before(now.Add(-time.Hour)) {
			delete(r.announced, id)
		}
	}
}
