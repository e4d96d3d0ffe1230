package collect

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"typewatch/internal/source"
)

var ErrNoCommand = errors.New("collector command is not configured")

// CommandCollector runs an external definition extractor once per file:
//
//	<Command...> <path>
//
// in the project root, and decodes its JSON stdout with Decode. Output is
// cached on disk by (command, file content) when Cache is set.
type CommandCollector struct {
	Command []string
	Cache   *DiskCache
	Logger  *slog.Logger
}

func (c *CommandCollector) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

// Collect implements Collector.
func (c *CommandCollector) Collect(ctx context.Context, root, path string) (*Collected, error) {
	if len(c.Command) == 0 {
		return nil, ErrNoCommand
	}
	text, err := source.ReadText(path)
	if err != nil {
		return nil, err
	}

	key := KeyFor(c.Command, text)
	var payload DiskPayload
	hit, err := c.Cache.Get(key, &payload)
	if err != nil {
		// битый кэш не фатален, просто пересобираем
		c.logger().Warn("collector cache read failed", "path", path, "err", err)
		hit = false
	}
	if hit {
		c.logger().Debug("collector cache hit", "path", path)
		return Decode(path, payload.Output, text)
	}

	out, err := c.run(ctx, root, path)
	if err != nil {
		return nil, err
	}
	if err := c.Cache.Put(key, &DiskPayload{
		Path:    path,
		Command: c.Command,
		Output:  out,
		Stored:  time.Now(),
	}); err != nil {
		c.logger().Warn("collector cache write failed", "path", path, "err", err)
	}
	return Decode(path, out, text)
}

func (c *CommandCollector) run(ctx context.Context, root, path string) ([]byte, error) {
	args := append(append([]string{}, c.Command[1:]...), path)
	// #nosec G204 -- command comes from the project configuration
	cmd := exec.CommandContext(ctx, c.Command[0], args...)
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("collector %s %s: %w\n%s", strings.Join(c.Command, " "), path, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
