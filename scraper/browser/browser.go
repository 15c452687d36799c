// Package browser owns the headless-Chrome plumbing shared by the chromedp
// based dealer scrapers.
package browser

import (
	"context"
	"os"
	"os/exec"

	"github.com/chromedp/chromedp"
)

// NewAllocator builds a headless Chrome allocator context with chromedp's
// log noise suppressed. The returned cancel tears down both contexts.
func NewAllocator(parent context.Context, chromeBin string) (context.Context, func()) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin == "" {
		chromeBin = FindChromeBinary()
	}
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	silentCtx, cancelSilent := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))

	return silentCtx, func() {
		cancelSilent()
		cancelAlloc()
	}
}

// FindChromeBinary locates a Chrome/Chromium binary on the host. An explicit
// binary path comes in through config, never read from the environment here.
func FindChromeBinary() string {
	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
