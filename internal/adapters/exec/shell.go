// Package exec controls the camera driver through shell commands.
package exec

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/bft-labs/stereosync/internal/ports"
)

// Default command templates.
const (
	DefaultKillCommand   = "rosnode kill {node}"
	DefaultLaunchCommand = "roslaunch turbot avt_vimba_camera.launch"
)

// ShellConfig configures a ShellController.
type ShellConfig struct {
	// KillCommand is run synchronously to stop the driver.
	KillCommand string

	// LaunchCommand is started in the background to relaunch the driver.
	LaunchCommand string

	// Node replaces {node} in both templates.
	Node string

	// Camera replaces {camera} in both templates.
	Camera string

	// Shell runs the commands. Default "sh".
	Shell string
}

// ShellController implements ports.DriverController with shell commands.
// Exit codes are logged, never acted on.
type ShellController struct {
	kill   string
	launch string
	shell  string
	logger ports.Logger

	mu       sync.Mutex
	launched int
	running  int
	wg       sync.WaitGroup
}

// NewShellController expands the templates in cfg.
func NewShellController(cfg ShellConfig, logger ports.Logger) *ShellController {
	if cfg.KillCommand == "" {
		cfg.KillCommand = DefaultKillCommand
	}
	if cfg.LaunchCommand == "" {
		cfg.LaunchCommand = DefaultLaunchCommand
	}
	if cfg.Shell == "" {
		cfg.Shell = "sh"
	}
	r := strings.NewReplacer("{node}", cfg.Node, "{camera}", cfg.Camera)
	return &ShellController{
		kill:   r.Replace(cfg.KillCommand),
		launch: r.Replace(cfg.LaunchCommand),
		shell:  cfg.Shell,
		logger: logger,
	}
}

// KillCommand returns the expanded stop command.
func (c *ShellController) KillCommand() string { return c.kill }

// LaunchCommand returns the expanded start command.
func (c *ShellController) LaunchCommand() string { return c.launch }

// Stop runs the kill command and waits for it to exit.
func (c *ShellController) Stop(ctx context.Context) error {
	c.logger.Info("stopping driver", ports.String("command", c.kill))
	out, err := exec.CommandContext(ctx, c.shell, "-c", c.kill).CombinedOutput()
	if len(out) > 0 {
		c.logger.Debug("kill output", ports.String("output", strings.TrimSpace(string(out))))
	}
	if err != nil {
		return fmt.Errorf("run %q: %w", c.kill, err)
	}
	return nil
}

// Start launches the driver in the background and returns once the
// process exists. The driver is not tied to ctx; it outlives the node.
func (c *ShellController) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.logger.Info("launching driver", ports.String("command", c.launch))

	cmd := exec.Command(c.shell, "-c", c.launch)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %q: %w", c.launch, err)
	}

	c.mu.Lock()
	c.launched++
	c.running++
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		err := cmd.Wait()
		c.mu.Lock()
		c.running--
		c.mu.Unlock()
		c.logger.Info("launch command exited",
			ports.Int("pid", cmd.Process.Pid),
			ports.Bool("success", err == nil),
		)
	}()
	return nil
}

// Launched returns the number of launch commands started.
func (c *ShellController) Launched() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.launched
}

// Running returns the number of launch commands that have not exited.
func (c *ShellController) Running() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Wait blocks until every launched command has exited.
func (c *ShellController) Wait() {
	c.wg.Wait()
}
