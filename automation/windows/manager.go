// Package windows enumerates and manipulates desktop windows through a
// pluggable backend, with a short-lived enumeration cache.
package windows

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
)

// Info describes one desktop window.
type Info struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Process string `json:"process"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Visible bool   `json:"visible"`
}

// Backend is the OS-facing surface. Implementations wrap the platform
// window utility; tests substitute a fake.
type Backend interface {
	List() ([]Info, error)
	Activate(id string) error
	Minimize(id string) error
	Maximize(id string) error
	Close(id string) error
	MoveResize(id string, x, y, width, height int) error
	ScreenSize() (width, height int, err error)
}

// cacheTTL bounds how stale the enumeration cache may get before the next
// read triggers a refresh.
const cacheTTL = 2 * time.Second

// Manager caches window enumeration and exposes search and layout
// operations on top of a Backend.
type Manager struct {
	backend Backend

	mu        sync.Mutex
	cache     []Info
	refreshed time.Time
}

func NewManager(backend Backend) *Manager {
	return &Manager{backend: backend}
}

// Windows returns the current window list, refreshing the cache only when
// it is stale.
func (m *Manager) Windows() ([]Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if time.Since(m.refreshed) < cacheTTL && m.cache != nil {
		out := make([]Info, len(m.cache))
		copy(out, m.cache)
		return out, nil
	}

	list, err := m.backend.List()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate windows: %w", err)
	}
	m.cache = list
	m.refreshed = time.Now()

	out := make([]Info, len(list))
	copy(out, list)
	return out, nil
}

// Invalidate drops the cache so the next read re-enumerates.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	m.refreshed = time.Time{}
	m.mu.Unlock()
}

// VisibleWindows filters the enumeration down to visible windows.
func (m *Manager) VisibleWindows() ([]Info, error) {
	all, err := m.Windows()
	if err != nil {
		return nil, err
	}
	var out []Info
	for _, w := range all {
		if w.Visible {
			out = append(out, w)
		}
	}
	return out, nil
}

// FindByTitle returns windows whose title contains the pattern
// (case-insensitive), or matches exactly when exact is set.
func (m *Manager) FindByTitle(pattern string, exact bool) ([]Info, error) {
	all, err := m.Windows()
	if err != nil {
		return nil, err
	}
	pattern = strings.ToLower(pattern)
	var out []Info
	for _, w := range all {
		title := strings.ToLower(w.Title)
		if exact && title == pattern {
			out = append(out, w)
		} else if !exact && strings.Contains(title, pattern) {
			out = append(out, w)
		}
	}
	return out, nil
}

// FindByProcess returns windows owned by the named process.
func (m *Manager) FindByProcess(processName string) ([]Info, error) {
	all, err := m.Windows()
	if err != nil {
		return nil, err
	}
	processName = strings.ToLower(processName)
	var out []Info
	for _, w := range all {
		if strings.Contains(strings.ToLower(w.Process), processName) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (m *Manager) Activate(w Info) error { return m.backend.Activate(w.ID) }
func (m *Manager) Minimize(w Info) error { return m.mutate(w, m.backend.Minimize) }
func (m *Manager) Maximize(w Info) error { return m.mutate(w, m.backend.Maximize) }

func (m *Manager) Close(w Info) error {
	if err := m.backend.Close(w.ID); err != nil {
		return fmt.Errorf("failed to close window %q: %w", w.Title, err)
	}
	m.Invalidate()
	return nil
}

func (m *Manager) Move(w Info, x, y int) error {
	return m.mutateGeometry(w, x, y, w.Width, w.Height)
}

func (m *Manager) Resize(w Info, width, height int) error {
	return m.mutateGeometry(w, w.X, w.Y, width, height)
}

// Center positions the window in the middle of the screen.
func (m *Manager) Center(w Info) error {
	sw, sh, err := m.backend.ScreenSize()
	if err != nil {
		return fmt.Errorf("failed to query screen size: %w", err)
	}
	return m.mutateGeometry(w, (sw-w.Width)/2, (sh-w.Height)/2, w.Width, w.Height)
}

// TileHorizontal lays the given windows side by side across the screen.
func (m *Manager) TileHorizontal(list []Info) error {
	if len(list) == 0 {
		return fmt.Errorf("no windows to tile")
	}
	sw, sh, err := m.backend.ScreenSize()
	if err != nil {
		return fmt.Errorf("failed to query screen size: %w", err)
	}
	width := sw / len(list)
	for i, w := range list {
		if err := m.mutateGeometry(w, i*width, 0, width, sh); err != nil {
			return err
		}
	}
	log.Printf("🪟 [WINDOWS] Tiled %d window(s) horizontally", len(list))
	return nil
}

// TileVertical stacks the given windows top to bottom.
func (m *Manager) TileVertical(list []Info) error {
	if len(list) == 0 {
		return fmt.Errorf("no windows to tile")
	}
	sw, sh, err := m.backend.ScreenSize()
	if err != nil {
		return fmt.Errorf("failed to query screen size: %w", err)
	}
	height := sh / len(list)
	for i, w := range list {
		if err := m.mutateGeometry(w, 0, i*height, sw, height); err != nil {
			return err
		}
	}
	return nil
}

// MinimizeAll minimizes every visible window.
func (m *Manager) MinimizeAll() error {
	visible, err := m.VisibleWindows()
	if err != nil {
		return err
	}
	for _, w := range visible {
		if err := m.backend.Minimize(w.ID); err != nil {
			log.Printf("⚠️ [WINDOWS] Failed to minimize %q: %v", w.Title, err)
		}
	}
	m.Invalidate()
	return nil
}

func (m *Manager) mutate(w Info, op func(string) error) error {
	if err := op(w.ID); err != nil {
		return fmt.Errorf("window operation on %q failed: %w", w.Title, err)
	}
	m.Invalidate()
	return nil
}

func (m *Manager) mutateGeometry(w Info, x, y, width, height int) error {
	if err := m.backend.MoveResize(w.ID, x, y, width, height); err != nil {
		return fmt.Errorf("failed to place window %q: %w", w.Title, err)
	}
	m.Invalidate()
	return nil
}
