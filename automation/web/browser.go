// Package web drives a real browser through Playwright for navigation,
// searches and page interaction.
package web

import (
	"fmt"
	"log"
	"strings"
	"time"

	pw "github.com/playwright-community/playwright-go"
)

// Options configures the browser session.
type Options struct {
	Browser     string // "chromium", "chrome" or "firefox"
	Headless    bool
	PageTimeout time.Duration
}

// Browser owns one Playwright session and the single page the assistant
// works in. It is not safe for concurrent use; the assistant serializes
// access through the task executor.
type Browser struct {
	opts     Options
	instance *pw.Playwright
	browser  pw.Browser
	page     pw.Page
}

func NewBrowser(opts Options) *Browser {
	if opts.PageTimeout <= 0 {
		opts.PageTimeout = 30 * time.Second
	}
	if opts.Browser == "" {
		opts.Browser = "chromium"
	}
	return &Browser{opts: opts}
}

// Started reports whether a page is available.
func (b *Browser) Started() bool {
	return b.page != nil
}

// Start launches the configured browser and opens a blank page. Calling
// Start on a running session is a no-op.
func (b *Browser) Start() error {
	if b.page != nil {
		return nil
	}

	instance, err := pw.Run()
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	launchOptions := pw.BrowserTypeLaunchOptions{
		Headless: pw.Bool(b.opts.Headless),
	}

	var browserType pw.BrowserType
	switch strings.ToLower(b.opts.Browser) {
	case "firefox":
		browserType = instance.Firefox
	case "chrome":
		browserType = instance.Chromium
		launchOptions.Channel = pw.String("chrome")
	default:
		browserType = instance.Chromium
	}

	browser, err := browserType.Launch(launchOptions)
	if err != nil {
		instance.Stop()
		return fmt.Errorf("failed to launch %s: %w", b.opts.Browser, err)
	}

	page, err := browser.NewPage()
	if err != nil {
		browser.Close()
		instance.Stop()
		return fmt.Errorf("failed to open page: %w", err)
	}
	page.SetDefaultTimeout(float64(b.opts.PageTimeout.Milliseconds()))

	b.instance = instance
	b.browser = browser
	b.page = page
	log.Printf("🌐 [WEB] Browser started (%s, headless=%v)", b.opts.Browser, b.opts.Headless)
	return nil
}

// Navigate loads a URL, prefixing https:// when the scheme is missing.
func (b *Browser) Navigate(url string) error {
	if b.page == nil {
		return fmt.Errorf("browser not started")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}
	if _, err := b.page.Goto(url, pw.PageGotoOptions{
		WaitUntil: pw.WaitUntilStateDomcontentloaded,
		Timeout:   pw.Float(float64(b.opts.PageTimeout.Milliseconds())),
	}); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	log.Printf("🌐 [WEB] Navigated to %s", url)
	return nil
}

// findSmart tries five lookup strategies in order: CSS selector, XPath,
// link text, contains-text XPath and common attribute values.
func (b *Browser) findSmart(selectorOrText string) (pw.Locator, error) {
	if b.page == nil {
		return nil, fmt.Errorf("browser not started")
	}

	candidates := []pw.Locator{
		b.page.Locator(selectorOrText),
		b.page.Locator("xpath=" + selectorOrText),
		b.page.GetByText(selectorOrText, pw.PageGetByTextOptions{Exact: pw.Bool(true)}),
		b.page.Locator(fmt.Sprintf(`xpath=//*[contains(text(), '%s')]`, selectorOrText)),
	}
	for _, attr := range []string{"name", "id", "placeholder", "aria-label"} {
		candidates = append(candidates, b.page.Locator(fmt.Sprintf(`[%s=%q]`, attr, selectorOrText)))
	}

	for _, locator := range candidates {
		count, err := locator.Count()
		if err != nil || count == 0 {
			continue
		}
		first := locator.First()
		if visible, err := first.IsVisible(); err == nil && visible {
			return first, nil
		}
	}
	return nil, fmt.Errorf("element not found: %s", selectorOrText)
}

// Click locates an element and clicks it, falling back to a JS click when
// the normal click is intercepted.
func (b *Browser) Click(selectorOrText string) error {
	locator, err := b.findSmart(selectorOrText)
	if err != nil {
		return err
	}
	if err := locator.ScrollIntoViewIfNeeded(); err == nil {
		time.Sleep(200 * time.Millisecond)
	}
	if err := locator.Click(); err != nil {
		if _, jsErr := locator.Evaluate("el => el.click()", nil); jsErr != nil {
			return fmt.Errorf("click failed: %v (js fallback: %v)", err, jsErr)
		}
	}
	return nil
}

// TypeText fills a field located by the smart lookup.
func (b *Browser) TypeText(selectorOrText, text string, clearFirst bool) error {
	locator, err := b.findSmart(selectorOrText)
	if err != nil {
		return err
	}
	if !clearFirst {
		return locator.PressSequentially(text)
	}
	if err := locator.Fill(text); err != nil {
		return fmt.Errorf("failed to type into %s: %w", selectorOrText, err)
	}
	return nil
}

// PageText returns the visible text of the current page body.
func (b *Browser) PageText() (string, error) {
	if b.page == nil {
		return "", fmt.Errorf("browser not started")
	}
	text, err := b.page.Locator("body").TextContent()
	if err != nil {
		return "", fmt.Errorf("failed to read page text: %w", err)
	}
	return text, nil
}

// Screenshot captures the current page as PNG bytes.
func (b *Browser) Screenshot() ([]byte, error) {
	if b.page == nil {
		return nil, fmt.Errorf("browser not started")
	}
	data, err := b.page.Screenshot(pw.PageScreenshotOptions{})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return data, nil
}

// Scroll moves the viewport up or down by amount screens.
func (b *Browser) Scroll(direction string, amount int) error {
	if b.page == nil {
		return fmt.Errorf("browser not started")
	}
	if amount <= 0 {
		amount = 1
	}
	delta := 600 * amount
	if direction == "up" {
		delta = -delta
	}
	if _, err := b.page.Evaluate(fmt.Sprintf("window.scrollBy(0, %d)", delta)); err != nil {
		return fmt.Errorf("scroll failed: %w", err)
	}
	return nil
}

// Close tears down the page, browser and driver.
func (b *Browser) Close() {
	if b.page != nil {
		_ = b.page.Close()
		b.page = nil
	}
	if b.browser != nil {
		_ = b.browser.Close()
		b.browser = nil
	}
	if b.instance != nil {
		_ = b.instance.Stop()
		b.instance = nil
	}
	log.Printf("🌐 [WEB] Browser closed")
}
