package exec

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bft-labs/stereosync/pkg/log"
)

func TestNewShellController_ExpandsTemplates(t *testing.T) {
	tests := []struct {
		name       string
		cfg        ShellConfig
		wantKill   string
		wantLaunch string
	}{
		{
			name:       "defaults",
			cfg:        ShellConfig{Node: "stereo_down", Camera: "/stereo_down"},
			wantKill:   "rosnode kill stereo_down",
			wantLaunch: "roslaunch turbot avt_vimba_camera.launch",
		},
		{
			name: "custom",
			cfg: ShellConfig{
				KillCommand:   "pkill -f {node}",
				LaunchCommand: "launch --ns {camera} --name {node}",
				Node:          "front",
				Camera:        "/front",
			},
			wantKill:   "pkill -f front",
			wantLaunch: "launch --ns /front --name front",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewShellController(tt.cfg, log.NewNoopLogger())
			if got := c.KillCommand(); got != tt.wantKill {
				t.Errorf("KillCommand() = %q, want %q", got, tt.wantKill)
			}
			if got := c.LaunchCommand(); got != tt.wantLaunch {
				t.Errorf("LaunchCommand() = %q, want %q", got, tt.wantLaunch)
			}
		})
	}
}

func TestShellController_StopRunsSynchronously(t *testing.T) {
	out := filepath.Join(t.TempDir(), "killed")
	c := NewShellController(ShellConfig{
		KillCommand: "echo {node} > " + out,
		Node:        "stereo_down",
	}, log.NewNoopLogger())

	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("kill command did not run: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "stereo_down" {
		t.Errorf("kill output = %q", got)
	}
}

func TestShellController_StopReportsFailure(t *testing.T) {
	c := NewShellController(ShellConfig{KillCommand: "exit 3"}, log.NewNoopLogger())

	if err := c.Stop(context.Background()); err == nil {
		t.Error("Stop() returned nil for a failing command")
	}
}

func TestShellController_StartInBackground(t *testing.T) {
	out := filepath.Join(t.TempDir(), "launched")
	c := NewShellController(ShellConfig{
		LaunchCommand: "echo {camera} > " + out,
		Camera:        "/stereo_down",
	}, log.NewNoopLogger())

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	c.Wait()

	if c.Launched() != 1 {
		t.Errorf("Launched() = %d, want 1", c.Launched())
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("launch command did not run: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "/stereo_down" {
		t.Errorf("launch output = %q", got)
	}
}

func TestShellController_ExitedLaunchesAreReleased(t *testing.T) {
	c := NewShellController(ShellConfig{LaunchCommand: "true"}, log.NewNoopLogger())

	const n = 5
	for i := 0; i < n; i++ {
		if err := c.Start(context.Background()); err != nil {
			t.Fatalf("Start() #%d error = %v", i, err)
		}
	}
	c.Wait()

	if got := c.Launched(); got != n {
		t.Errorf("Launched() = %d, want %d", got, n)
	}
	if got := c.Running(); got != 0 {
		t.Errorf("Running() = %d after Wait, want 0", got)
	}
}

func TestShellController_StartCanceled(t *testing.T) {
	c := NewShellController(ShellConfig{LaunchCommand: "true"}, log.NewNoopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.Start(ctx); err == nil {
		t.Error("Start() with canceled context returned nil")
	}
	if c.Launched() != 0 {
		t.Error("command launched despite canceled context")
	}
}
