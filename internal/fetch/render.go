package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"podboost/internal/extproc"
	"podboost/internal/services"
)

// Scripts on the campaign page get this much virtual time to populate the
// DOM before chromium dumps it.
const renderVirtualTimeBudget = 10 * time.Second

// runFunc matches extproc.Run and exists as a test seam.
type runFunc func(ctx context.Context, command extproc.Command, opts ...extproc.Option) (extproc.Result, error)

// Renderer captures the JavaScript-rendered DOM of a page by driving a
// headless chromium. One render is one short-lived browser process; nothing
// is kept warm between checks.
type Renderer struct {
	binary    string
	userAgent string
	timeout   time.Duration
	run       runFunc
}

// RendererOption adjusts renderer construction.
type RendererOption func(*Renderer)

// WithRunner replaces the process runner. Tests use this to avoid spawning
// a real browser.
func WithRunner(run runFunc) RendererOption {
	return func(r *Renderer) {
		if run != nil {
			r.run = run
		}
	}
}

// NewRenderer builds a renderer around the given chromium binary.
func NewRenderer(binary, userAgent string, timeout time.Duration, opts ...RendererOption) *Renderer {
	renderer := &Renderer{
		binary:    binary,
		userAgent: userAgent,
		timeout:   timeout,
		run:       extproc.Run,
	}
	for _, opt := range opts {
		opt(renderer)
	}
	return renderer
}

// Render dumps the rendered DOM of url. The browser process is terminated
// when the render timeout elapses.
func (r *Renderer) Render(ctx context.Context, url string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", services.Wrap(services.ErrValidation, "fetch", "render", "url is required", nil)
	}

	args := []string{
		"--headless",
		"--disable-gpu",
		fmt.Sprintf("--virtual-time-budget=%d", renderVirtualTimeBudget.Milliseconds()),
	}
	if r.userAgent != "" {
		args = append(args, fmt.Sprintf("--user-agent=%s", r.userAgent))
	}
	args = append(args, "--dump-dom", url)

	result, err := r.run(ctx, extproc.Command{Binary: r.binary, Args: args}, extproc.WithTimeout(r.timeout))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(result.Stdout) == "" {
		return "", services.Wrap(services.ErrExternalTool, "fetch", "render",
			fmt.Sprintf("%s produced an empty document for %s", r.binary, url), nil)
	}
	return result.Stdout, nil
}
