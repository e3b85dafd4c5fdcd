package task

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
)

// stepPause is the fixed delay inserted between steps regardless of
// outcome.
const stepPause = 500 * time.Millisecond

// Executor runs plan steps strictly sequentially, dispatching each to a
// registered handler by exact action-name lookup. A missing handler or a
// failing handler marks the step as failed; execution always continues to
// the next step.
type Executor struct {
	handlers map[string]HandlerFunc
	pause    time.Duration
}

func NewExecutor() *Executor {
	return &Executor{
		handlers: make(map[string]HandlerFunc),
		pause:    stepPause,
	}
}

// Register binds an action name to its handler. Re-registering replaces
// the previous handler.
func (e *Executor) Register(action string, handler HandlerFunc) {
	e.handlers[action] = handler
}

// Registered reports whether a handler exists for the given action.
func (e *Executor) Registered(action string) bool {
	_, ok := e.handlers[action]
	return ok
}

// Actions lists the registered action names, sorted.
func (e *Executor) Actions() []string {
	names := make([]string, 0, len(e.handlers))
	for name := range e.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs the steps in order and aggregates the outcome. Overall
// success is the logical AND of the step outcomes; the message reports
// the count of failed steps.
func (e *Executor) Execute(ctx context.Context, steps []*Step) *Result {
	start := time.Now()
	result := &Result{
		ID:      uuid.New().String(),
		Success: true,
		Message: "Tache executee avec succes",
		Steps:   steps,
	}

	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			step.Error = fmt.Sprintf("execution annulee: %v", err)
			result.Success = false
			continue
		}

		log.Printf("📋 [EXECUTOR] Step %d/%d: %s", i+1, len(steps), step.Description)

		handler, ok := e.handlers[step.Action]
		if !ok {
			step.Error = fmt.Sprintf("Executeur non trouve pour l'action : %s", step.Action)
			result.Success = false
			e.wait(ctx)
			continue
		}

		actionResult, err := handler(ctx, step.Parameters)
		if err != nil {
			step.Error = err.Error()
			result.Success = false
			log.Printf("❌ [EXECUTOR] Step failed: %s: %v", step.Description, err)
			e.wait(ctx)
			continue
		}

		step.Completed = true
		step.Result = actionResult
		if actionResult != nil && !actionResult.Success {
			step.Error = actionResult.Message
			result.Success = false
		}

		// The last data-producing step wins, matching the transcript
		// behavior for searches and email listings.
		switch step.Action {
		case ActionWebSearch, ActionYoutubeSearch, ActionEmail, ActionCalendar:
			if actionResult != nil {
				result.Data = actionResult
			}
		}

		e.wait(ctx)
	}

	if !result.Success {
		failed := 0
		for _, s := range steps {
			if s.Error != "" {
				failed++
			}
		}
		result.Message = fmt.Sprintf("Tache partiellement echouee. %d etape(s) en erreur.", failed)
	}

	result.ExecutionTime = time.Since(start)
	log.Printf("⚙️ [EXECUTOR] Task %s done in %v. Success: %v", result.ID, result.ExecutionTime, result.Success)
	return result
}

func (e *Executor) wait(ctx context.Context) {
	if e.pause <= 0 {
		return
	}
	select {
	case <-time.After(e.pause):
	case <-ctx.Done():
	}
}
