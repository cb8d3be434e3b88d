package clip

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ProbeStore is the part of the clip collection the prober works against.
type ProbeStore interface {
	// NextUnprobed returns a clip whose duration is still unknown, or nil.
	NextUnprobed(ctx context.Context) (*Clip, error)
	SetDuration(ctx context.Context, id string, duration float64) error
	MarkProbeError(ctx context.Context, id string, msg string) error
}

// ProbeFunc returns the duration in seconds of the media at url.
type ProbeFunc func(ctx context.Context, url string) (float64, error)

// Prober fills in durations for clips added without one.
type Prober struct {
	Store    ProbeStore
	Probe    ProbeFunc
	Interval time.Duration
	Logger   *slog.Logger
}

// Start launches a goroutine that keeps polling for unprobed clips until ctx
// is cancelled.
func (p *Prober) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			n, err := p.RunOnce(ctx)
			if err != nil || n == 0 {
				// Nothing to do or a store error; wait and retry
				select {
				case <-ctx.Done():
					return
				case <-time.After(p.interval()):
				}
			}
		}
	}()
}

// RunOnce probes clips until none are left and returns how many it handled.
func (p *Prober) RunOnce(ctx context.Context) (int, error) {
	n := 0
	for {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		c, err := p.Store.NextUnprobed(ctx)
		if err != nil {
			return n, fmt.Errorf("failed to fetch unprobed clip: %w", err)
		}
		if c == nil {
			return n, nil
		}
		if err := p.probeClip(ctx, c); err != nil {
			return n, err
		}
		n++
	}
}

// probeClip probes one clip and stores the outcome. Only a failed store
// write is returned: the clip is still unprobed and would come straight back.
func (p *Prober) probeClip(ctx context.Context, c *Clip) error {
	probe := p.Probe
	if probe == nil {
		probe = FFProbe
	}
	d, err := probe(ctx, c.SourceURL)
	if err == nil && d <= 0 {
		err = fmt.Errorf("no duration reported")
	}
	if err != nil {
		p.logger().Warn("probe failed", "clip", c.ID, "source", c.SourceURL, "error", err)
		if err := p.Store.MarkProbeError(ctx, c.ID, err.Error()); err != nil {
			p.logger().Warn("failed to store probe error", "clip", c.ID, "error", err)
			return fmt.Errorf("failed to store probe error for %s: %w", c.ID, err)
		}
		return nil
	}
	if err := p.Store.SetDuration(ctx, c.ID, d); err != nil {
		p.logger().Warn("failed to store duration", "clip", c.ID, "error", err)
		return fmt.Errorf("failed to store duration for %s: %w", c.ID, err)
	}
	p.logger().Debug("probed clip", "clip", c.ID, "duration", d)
	return nil
}

func (p *Prober) interval() time.Duration {
	if p.Interval <= 0 {
		return 2 * time.Second
	}
	return p.Interval
}

func (p *Prober) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

// FFProbe reads the container duration with ffprobe.
func FFProbe(ctx context.Context, url string) (float64, error) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return 0, fmt.Errorf("ffprobe not found in PATH")
	}
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		url,
	)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(out.String()), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe duration %q: %w", out.String(), err)
	}
	return d, nil
}
