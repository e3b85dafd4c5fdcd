// Package system controls local applications and processes: discovery,
// launch, termination and host-level commands.
package system

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	"gopkg.in/yaml.v3"
)

// AppInfo describes one launchable application.
type AppInfo struct {
	Name        string   `yaml:"name"`
	Command     string   `yaml:"command"`
	Args        []string `yaml:"args"`
	ProcessName string   `yaml:"process_name"`
}

// Catalog is the optional YAML file merged over the built-in alias map.
type Catalog struct {
	Applications []AppInfo `yaml:"applications"`
}

// Controller opens and closes applications and runs host commands.
type Controller struct {
	mu   sync.Mutex
	apps map[string]AppInfo

	commandTimeout time.Duration
	allowShutdown  bool
}

// Option configures a Controller.
type Option func(*Controller)

func WithCommandTimeout(d time.Duration) Option {
	return func(c *Controller) { c.commandTimeout = d }
}

func WithShutdownAllowed(allowed bool) Option {
	return func(c *Controller) { c.allowShutdown = allowed }
}

func NewController(opts ...Option) *Controller {
	c := &Controller{
		apps:           builtinApps(),
		commandTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.discoverFromPath()
	return c
}

// builtinApps is the cross-platform alias table. The process name is what
// Close matches against.
func builtinApps() map[string]AppInfo {
	apps := map[string]AppInfo{
		"chrome":  {Name: "chrome", Command: chromeCommand(), ProcessName: "chrome"},
		"firefox": {Name: "firefox", Command: "firefox", ProcessName: "firefox"},
		"vlc":     {Name: "vlc", Command: "vlc", ProcessName: "vlc"},
		"spotify": {Name: "spotify", Command: "spotify", ProcessName: "spotify"},
		"vscode":  {Name: "vscode", Command: "code", ProcessName: "code"},
		"discord": {Name: "discord", Command: "discord", ProcessName: "discord"},
	}
	if runtime.GOOS == "windows" {
		apps["notepad"] = AppInfo{Name: "notepad", Command: "notepad.exe", ProcessName: "notepad.exe"}
		apps["calculator"] = AppInfo{Name: "calculator", Command: "calc.exe", ProcessName: "calculator.exe"}
		apps["explorateur"] = AppInfo{Name: "explorateur", Command: "explorer.exe", ProcessName: "explorer.exe"}
		apps["file explorer"] = apps["explorateur"]
	}
	return apps
}

func chromeCommand() string {
	switch runtime.GOOS {
	case "windows":
		return "chrome.exe"
	case "darwin":
		return "open -a 'Google Chrome'"
	default:
		return "google-chrome"
	}
}

// discoverFromPath registers executables found on PATH for the known app
// names that are not already cataloged.
func (c *Controller) discoverFromPath() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, name := range []string{"firefox", "code", "vlc", "gimp", "thunderbird", "libreoffice"} {
		if _, ok := c.apps[name]; ok {
			continue
		}
		if path, err := exec.LookPath(name); err == nil {
			c.apps[name] = AppInfo{Name: name, Command: path, ProcessName: name}
		}
	}
}

// LoadCatalog merges extra application aliases from a YAML file.
func (c *Controller) LoadCatalog(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read app catalog: %w", err)
	}
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return fmt.Errorf("failed to parse app catalog: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, app := range catalog.Applications {
		key := strings.ToLower(app.Name)
		if app.ProcessName == "" {
			app.ProcessName = filepath.Base(app.Command)
		}
		c.apps[key] = app
	}
	log.Printf("🗂️ [SYSTEM] Loaded %d application(s) from catalog %s", len(catalog.Applications), path)
	return nil
}

// AvailableApplications lists the catalogued application names.
func (c *Controller) AvailableApplications() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.apps))
	for name := range c.apps {
		names = append(names, name)
	}
	return names
}

// OpenApplication launches the named application. Unknown names are
// attempted directly as commands so "ouvre gedit" still works.
func (c *Controller) OpenApplication(ctx context.Context, appName string) error {
	appName = strings.ToLower(strings.TrimSpace(appName))
	if appName == "" {
		return fmt.Errorf("no application name given")
	}

	c.mu.Lock()
	app, ok := c.apps[appName]
	c.mu.Unlock()

	command := app.Command
	args := app.Args
	if !ok {
		command = appName
	}

	parts := strings.Fields(command)
	if len(parts) == 0 {
		return fmt.Errorf("empty launch command for %s", appName)
	}
	cmd := exec.Command(parts[0], append(parts[1:], args...)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch %s: %w", appName, err)
	}
	// Detach; the assistant must not block on the app's lifetime.
	go func() { _ = cmd.Wait() }()

	log.Printf("✅ [SYSTEM] Launched %s (pid %d)", appName, cmd.Process.Pid)
	return nil
}

// CloseApplication terminates processes matching the application name,
// escalating to kill when graceful termination is refused.
func (c *Controller) CloseApplication(ctx context.Context, appName string, force bool) error {
	appName = strings.ToLower(strings.TrimSpace(appName))
	if appName == "" {
		return fmt.Errorf("no application name given")
	}

	c.mu.Lock()
	app, ok := c.apps[appName]
	c.mu.Unlock()
	target := appName
	if ok && app.ProcessName != "" {
		target = strings.ToLower(app.ProcessName)
	}

	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to list processes: %w", err)
	}

	closed := 0
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		if !strings.Contains(strings.ToLower(name), target) {
			continue
		}
		if force {
			if err := p.KillWithContext(ctx); err == nil {
				closed++
			}
			continue
		}
		if err := p.TerminateWithContext(ctx); err != nil {
			if err := p.KillWithContext(ctx); err == nil {
				closed++
			}
			continue
		}
		closed++
	}

	if closed == 0 {
		return fmt.Errorf("no running process matches %s", appName)
	}
	log.Printf("✅ [SYSTEM] Closed %d process(es) for %s", closed, appName)
	return nil
}

// IsRunning reports whether any process matches the given name.
func (c *Controller) IsRunning(ctx context.Context, name string) bool {
	name = strings.ToLower(name)
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return false
	}
	for _, p := range procs {
		if pn, err := p.NameWithContext(ctx); err == nil && strings.Contains(strings.ToLower(pn), name) {
			return true
		}
	}
	return false
}

// RunningApplication is a reduced view of one process.
type RunningApplication struct {
	PID    int32   `json:"pid"`
	Name   string  `json:"name"`
	CPU    float64 `json:"cpu_percent"`
	Memory float32 `json:"memory_percent"`
}

// RunningApplications lists user-visible processes sorted by the OS.
func (c *Controller) RunningApplications(ctx context.Context) ([]RunningApplication, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}
	out := make([]RunningApplication, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil || name == "" {
			continue
		}
		cpu, _ := p.CPUPercentWithContext(ctx)
		memp, _ := p.MemoryPercentWithContext(ctx)
		out = append(out, RunningApplication{PID: p.Pid, Name: name, CPU: cpu, Memory: memp})
	}
	return out, nil
}

// ExecuteCommand runs a shell command with the configured timeout and
// returns its combined output.
func (c *Controller) ExecuteCommand(ctx context.Context, command string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.commandTimeout)
	defer cancel()

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/C", command)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", command)
	}
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return buf.String(), fmt.Errorf("command timed out after %v", c.commandTimeout)
	}
	if err != nil {
		return buf.String(), fmt.Errorf("command failed: %w", err)
	}
	return buf.String(), nil
}

// SystemInfo summarizes host, memory and uptime.
func (c *Controller) SystemInfo(ctx context.Context) (map[string]interface{}, error) {
	info := make(map[string]interface{})
	if hi, err := host.InfoWithContext(ctx); err == nil {
		info["hostname"] = hi.Hostname
		info["os"] = hi.OS
		info["platform"] = hi.Platform
		info["uptime_seconds"] = hi.Uptime
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		info["memory_used_percent"] = vm.UsedPercent
		info["memory_total"] = vm.Total
	}
	info["num_cpu"] = runtime.NumCPU()
	return info, nil
}

// Shutdown, Restart, Lock and Sleep issue the platform power commands.
// All of them refuse to run unless shutdown control was enabled.
func (c *Controller) Shutdown(ctx context.Context, delay time.Duration) error {
	return c.powerCommand(ctx, "shutdown", delay)
}

func (c *Controller) Restart(ctx context.Context, delay time.Duration) error {
	return c.powerCommand(ctx, "restart", delay)
}

func (c *Controller) Lock(ctx context.Context) error {
	return c.powerCommand(ctx, "lock", 0)
}

func (c *Controller) Sleep(ctx context.Context) error {
	return c.powerCommand(ctx, "sleep", 0)
}

func (c *Controller) powerCommand(ctx context.Context, kind string, delay time.Duration) error {
	if !c.allowShutdown {
		return fmt.Errorf("system power commands are disabled by configuration")
	}
	cmdline, ok := powerCommands[runtime.GOOS][kind]
	if !ok {
		return fmt.Errorf("power command %q not supported on %s", kind, runtime.GOOS)
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	log.Printf("⚠️ [SYSTEM] Power command: %s", kind)
	_, err := c.ExecuteCommand(ctx, cmdline)
	return err
}

var powerCommands = map[string]map[string]string{
	"windows": {
		"shutdown": "shutdown /s /t 0",
		"restart":  "shutdown /r /t 0",
		"lock":     "rundll32.exe user32.dll,LockWorkStation",
	},
	"linux": {
		"shutdown": "systemctl poweroff",
		"restart":  "systemctl reboot",
		"lock":     "loginctl lock-session",
		"sleep":    "systemctl suspend",
	},
	"darwin": {
		"shutdown": "osascript -e 'tell app \"System Events\" to shut down'",
		"restart":  "osascript -e 'tell app \"System Events\" to restart'",
		"sleep":    "pmset sleepnow",
	},
}
