package windows

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// WmctrlBackend drives an X11 desktop through the wmctrl and xdotool
// utilities. It satisfies Backend on hosts where those tools exist.
type WmctrlBackend struct{}

func NewWmctrlBackend() (*WmctrlBackend, error) {
	if _, err := exec.LookPath("wmctrl"); err != nil {
		return nil, fmt.Errorf("wmctrl not found on PATH: %w", err)
	}
	return &WmctrlBackend{}, nil
}

// List parses `wmctrl -l -G -p` output: id, desktop, pid, x, y, w, h,
// host, title...
func (b *WmctrlBackend) List() ([]Info, error) {
	out, err := exec.Command("wmctrl", "-l", "-G", "-p").Output()
	if err != nil {
		return nil, fmt.Errorf("wmctrl -l failed: %w", err)
	}

	var list []Info
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 9 {
			continue
		}
		desktop, _ := strconv.Atoi(fields[1])
		x, _ := strconv.Atoi(fields[3])
		y, _ := strconv.Atoi(fields[4])
		w, _ := strconv.Atoi(fields[5])
		h, _ := strconv.Atoi(fields[6])
		list = append(list, Info{
			ID:      fields[0],
			Process: fields[2],
			X:       x,
			Y:       y,
			Width:   w,
			Height:  h,
			Title:   strings.Join(fields[8:], " "),
			Visible: desktop >= 0,
		})
	}
	return list, nil
}

func (b *WmctrlBackend) Activate(id string) error {
	return run("wmctrl", "-i", "-a", id)
}

func (b *WmctrlBackend) Minimize(id string) error {
	return run("xdotool", "windowminimize", id)
}

func (b *WmctrlBackend) Maximize(id string) error {
	return run("wmctrl", "-i", "-r", id, "-b", "add,maximized_vert,maximized_horz")
}

func (b *WmctrlBackend) Close(id string) error {
	return run("wmctrl", "-i", "-c", id)
}

func (b *WmctrlBackend) MoveResize(id string, x, y, width, height int) error {
	geometry := fmt.Sprintf("0,%d,%d,%d,%d", x, y, width, height)
	return run("wmctrl", "-i", "-r", id, "-e", geometry)
}

// ScreenSize reads the current resolution from xdotool.
func (b *WmctrlBackend) ScreenSize() (int, int, error) {
	out, err := exec.Command("xdotool", "getdisplaygeometry").Output()
	if err != nil {
		return 0, 0, fmt.Errorf("xdotool getdisplaygeometry failed: %w", err)
	}
	fields := strings.Fields(strings.TrimSpace(string(out)))
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("unexpected geometry output: %q", string(out))
	}
	w, _ := strconv.Atoi(fields[0])
	h, _ := strconv.Atoi(fields[1])
	return w, h, nil
}

func run(name string, args ...string) error {
	if out, err := exec.Command(name, args...).CombinedOutput(); err != nil {
		return fmt.Errorf("%s failed: %v (%s)", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}
