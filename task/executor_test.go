package task

import (
	"context"
	"fmt"
	"testing"
	"time"

	"aria/intent"
)

func testExecutor() *Executor {
	e := NewExecutor()
	e.pause = time.Millisecond
	return e
}

func okHandler(msg string) HandlerFunc {
	return func(ctx context.Context, params map[string]interface{}) (*ActionResult, error) {
		return &ActionResult{Success: true, Message: msg}, nil
	}
}

func TestExecuteAllStepsSucceed(t *testing.T) {
	e := testExecutor()
	e.Register(ActionOpenApplication, okHandler("open ok"))
	e.Register(ActionWebNavigation, okHandler("nav ok"))

	steps := []*Step{
		{Action: ActionOpenApplication, Description: "open"},
		{Action: ActionWebNavigation, Description: "navigate"},
	}
	result := e.Execute(context.Background(), steps)

	if !result.Success {
		t.Fatalf("expected success, got message %q", result.Message)
	}
	if result.ID == "" {
		t.Error("expected a task id")
	}
	for i, step := range steps {
		if !step.Completed || step.Error != "" {
			t.Errorf("step %d not completed cleanly: %+v", i, step)
		}
	}
}

func TestExecuteContinuesAfterFailure(t *testing.T) {
	e := testExecutor()
	calls := 0
	e.Register(ActionOpenApplication, okHandler("ok"))
	e.Register(ActionWebNavigation, func(ctx context.Context, params map[string]interface{}) (*ActionResult, error) {
		return nil, fmt.Errorf("browser crashed")
	})
	e.Register(ActionWebSearch, func(ctx context.Context, params map[string]interface{}) (*ActionResult, error) {
		calls++
		return &ActionResult{Success: true, Message: "search ok"}, nil
	})

	steps := []*Step{
		{Action: ActionOpenApplication, Description: "open"},
		{Action: ActionWebNavigation, Description: "navigate"},
		{Action: ActionWebSearch, Description: "search"},
	}
	result := e.Execute(context.Background(), steps)

	if result.Success {
		t.Fatal("expected overall failure")
	}
	if calls != 1 {
		t.Errorf("third step should still run after the second failed, calls=%d", calls)
	}
	if steps[1].Error == "" {
		t.Error("failed step should carry its error")
	}
	if steps[2].Error != "" || !steps[2].Completed {
		t.Errorf("trailing step should succeed: %+v", steps[2])
	}
	want := "Tache partiellement echouee. 1 etape(s) en erreur."
	if result.Message != want {
		t.Errorf("expected message %q, got %q", want, result.Message)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	e := testExecutor()
	steps := []*Step{{Action: ActionEmail, Description: "send"}}
	result := e.Execute(context.Background(), steps)

	if result.Success {
		t.Fatal("expected failure for unregistered action")
	}
	want := "Executeur non trouve pour l'action : " + ActionEmail
	if steps[0].Error != want {
		t.Errorf("expected %q, got %q", want, steps[0].Error)
	}
	if steps[0].Completed {
		t.Error("step with no handler must not be marked completed")
	}
}

func TestExecuteUnsuccessfulActionResult(t *testing.T) {
	e := testExecutor()
	e.Register(ActionEmail, func(ctx context.Context, params map[string]interface{}) (*ActionResult, error) {
		return &ActionResult{Success: false, Message: "Adresse email invalide"}, nil
	})
	result := e.Execute(context.Background(), []*Step{{Action: ActionEmail}})

	if result.Success {
		t.Fatal("expected failure when handler reports Success=false")
	}
	if result.Steps[0].Error != "Adresse email invalide" {
		t.Errorf("expected handler message as step error, got %q", result.Steps[0].Error)
	}
	if !result.Steps[0].Completed {
		t.Error("step still ran, should be marked completed")
	}
}

func TestExecuteKeepsLastDataResult(t *testing.T) {
	e := testExecutor()
	e.Register(ActionWebSearch, func(ctx context.Context, params map[string]interface{}) (*ActionResult, error) {
		return &ActionResult{Success: true, Data: map[string]interface{}{"url": "https://example.com"}}, nil
	})
	result := e.Execute(context.Background(), []*Step{{Action: ActionWebSearch}})

	ar, ok := result.Data.(*ActionResult)
	if !ok || ar == nil {
		t.Fatalf("expected search data on the result, got %T", result.Data)
	}
}

func TestExecuteCancelledContext(t *testing.T) {
	e := testExecutor()
	e.Register(ActionOpenApplication, okHandler("ok"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := e.Execute(ctx, []*Step{{Action: ActionOpenApplication}})

	if result.Success {
		t.Fatal("expected failure on cancelled context")
	}
	if result.Steps[0].Completed {
		t.Error("no step should run after cancellation")
	}
}

func TestPlanStepsFirefoxGoogleDemo(t *testing.T) {
	res := &intent.Result{
		Intent:       intent.GeneralQuestion,
		Entities:     map[string]string{},
		OriginalText: "firefox puis google et cherche cat video",
	}
	steps := PlanSteps(res)
	if len(steps) != 3 {
		t.Fatalf("expected the 3-step demo plan, got %d steps", len(steps))
	}
	if steps[0].Action != ActionOpenApplication ||
		steps[1].Action != ActionWebNavigation ||
		steps[2].Action != ActionWebSearch {
		t.Errorf("unexpected actions: %s %s %s", steps[0].Action, steps[1].Action, steps[2].Action)
	}
	if n, _ := steps[2].Parameters["result_number"].(int); n != 2 {
		t.Errorf("demo search should target result 2, got %v", steps[2].Parameters["result_number"])
	}
}

func TestPlanStepsDemoDoesNotHijackRecognizedIntents(t *testing.T) {
	res := &intent.Result{
		Intent:       intent.Close,
		Entities:     map[string]string{"app_name": "firefox"},
		OriginalText: "ferme firefox et google chrome",
	}
	steps := PlanSteps(res)
	if len(steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(steps))
	}
	if steps[0].Action != ActionCloseApplication {
		t.Errorf("expected %s, got %s", ActionCloseApplication, steps[0].Action)
	}
}

func TestPlanStepsSingleIntent(t *testing.T) {
	res := &intent.Result{
		Intent:       intent.Open,
		Entities:     map[string]string{"app_name": "chrome"},
		OriginalText: "ouvre chrome",
	}
	steps := PlanSteps(res)
	if len(steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(steps))
	}
	if steps[0].Parameters["app_name"] != "chrome" {
		t.Errorf("app_name not carried into the plan: %v", steps[0].Parameters)
	}
}

func TestPlanStepsWindowManagement(t *testing.T) {
	res := &intent.Result{
		Intent:       intent.ManageWindows,
		Entities:     map[string]string{"operation": "maximize", "window_title": "firefox"},
		OriginalText: "mets firefox en plein ecran",
	}
	steps := PlanSteps(res)
	if len(steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(steps))
	}
	if steps[0].Action != ActionWindowManagement {
		t.Errorf("expected %s, got %s", ActionWindowManagement, steps[0].Action)
	}
	if steps[0].Parameters["operation"] != "maximize" || steps[0].Parameters["title"] != "firefox" {
		t.Errorf("parameters not carried into the plan: %v", steps[0].Parameters)
	}
}

func TestPlanStepsUnplannable(t *testing.T) {
	cases := []*intent.Result{
		{Intent: intent.ScheduleEvent, Entities: map[string]string{}, OriginalText: "planifie"},
		{Intent: intent.SystemCommand, Entities: map[string]string{}, OriginalText: "systeme"},
		{Intent: intent.ManageWindows, Entities: map[string]string{}, OriginalText: "fenetres"},
		{Intent: intent.GeneralQuestion, Entities: map[string]string{}, OriginalText: "pourquoi le ciel est bleu"},
		nil,
	}
	for i, res := range cases {
		if steps := PlanSteps(res); len(steps) != 0 {
			t.Errorf("case %d: expected empty plan, got %d steps", i, len(steps))
		}
	}
}

func TestPlanStepsWebSearchResultNumber(t *testing.T) {
	res := &intent.Result{
		Intent:       intent.WebSearch,
		Entities:     map[string]string{"query": "cat video", "result_number": "3"},
		OriginalText: "recherche cat video",
	}
	steps := PlanSteps(res)
	if len(steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(steps))
	}
	if n, _ := steps[0].Parameters["result_number"].(int); n != 3 {
		t.Errorf("expected result_number 3, got %v", steps[0].Parameters["result_number"])
	}
}
