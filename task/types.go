// Package task turns resolved intents into ordered step plans and runs
// them sequentially against a registry of action handlers.
package task

import (
	"context"
	"time"
)

// Step is one executable unit of a task plan. Completed, Result and Error
// are filled in as execution proceeds. Error is set if and only if the
// handler reported failure or returned an error; Completed=true does not
// imply success.
type Step struct {
	Action      string                 `json:"action"`
	Parameters  map[string]interface{} `json:"parameters"`
	Description string                 `json:"description"`
	Completed   bool                   `json:"completed"`
	Result      interface{}            `json:"result,omitempty"`
	Error       string                 `json:"error,omitempty"`
}

// Result is the terminal outcome of one task invocation.
type Result struct {
	ID            string        `json:"id"`
	Success       bool          `json:"success"`
	Message       string        `json:"message"`
	Data          interface{}   `json:"data,omitempty"`
	Steps         []*Step       `json:"steps"`
	ExecutionTime time.Duration `json:"execution_time"`
}

// ActionResult is what a handler reports back for a single step.
type ActionResult struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// HandlerFunc executes one side-effecting action. Handlers own their own
// retry and timeout policy; the executor imposes none.
type HandlerFunc func(ctx context.Context, params map[string]interface{}) (*ActionResult, error)

// Action names used as registry keys.
const (
	ActionOpenApplication  = "open_application"
	ActionCloseApplication = "close_application"
	ActionSystemControl    = "system_control"
	ActionWindowManagement = "window_management"
	ActionWebSearch        = "web_search"
	ActionWebNavigation    = "web_navigation"
	ActionYoutubeSearch    = "youtube_search"
	ActionEmail            = "email_management"
	ActionCalendar         = "calendar_management"
	ActionScreenshot       = "screenshot"
)
