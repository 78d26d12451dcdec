package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// ChromeConfig configures the headless Chrome driver.
type ChromeConfig struct {
	Headless  bool
	UserAgent string
	// OpTimeout bounds each individual automation action (navigation,
	// element wait, script evaluation). Zero means no per-action bound
	// beyond the caller's context.
	OpTimeout time.Duration
}

// chromeDriver implements [Driver] on top of a chromedp browser context.
//
// chromedp ties browser lifetime to a context chain: cancelling the browser
// context quits Chrome. Per-action contexts are derived from the browser
// context, with the caller's context wired in for cancellation.
type chromeDriver struct {
	browserCtx  context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc
	opTimeout   time.Duration
}

// NewChromeFactory returns a [DriverFactory] that starts a headless Chrome
// instance per session. The browser is launched and verified responsive
// before the factory returns, so a missing or broken Chrome binary surfaces
// as a factory error rather than a failure mid-pipeline.
func NewChromeFactory(cfg ChromeConfig) DriverFactory {
	return func(ctx context.Context) (Driver, error) {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", cfg.Headless),
			chromedp.NoSandbox,
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.WindowSize(1920, 1080),
		)
		if cfg.UserAgent != "" {
			opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
		}

		allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
		browserCtx, cancelCtx := chromedp.NewContext(allocCtx)

		d := &chromeDriver{
			browserCtx:  browserCtx,
			cancelCtx:   cancelCtx,
			cancelAlloc: cancelAlloc,
			opTimeout:   cfg.OpTimeout,
		}

		// Warm-up: force the browser process to start now.
		if err := d.run(ctx, chromedp.Navigate("about:blank")); err != nil {
			d.Close()
			return nil, fmt.Errorf("starting chrome: %w", err)
		}

		return d, nil
	}
}

// run executes chromedp actions against the browser context, honoring both
// the per-action timeout and the caller's cancellation.
func (d *chromeDriver) run(ctx context.Context, actions ...chromedp.Action) error {
	opCtx, cancel := context.WithCancel(d.browserCtx)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if d.opTimeout > 0 {
		var cancelTimeout context.CancelFunc
		opCtx, cancelTimeout = context.WithTimeout(opCtx, d.opTimeout)
		defer cancelTimeout()
	}

	if err := chromedp.Run(opCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func (d *chromeDriver) Navigate(ctx context.Context, url string) error {
	return d.run(ctx, chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery))
}

func (d *chromeDriver) WaitReady(ctx context.Context, selector string) error {
	return d.run(ctx, chromedp.WaitReady(selector, chromedp.ByQuery))
}

func (d *chromeDriver) Evaluate(ctx context.Context, expr string, out any) error {
	return d.run(ctx, chromedp.Evaluate(expr, out))
}

func (d *chromeDriver) Close() error {
	err := chromedp.Cancel(d.browserCtx)
	d.cancelCtx()
	d.cancelAlloc()
	return err
}
