package web

import (
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	pw "github.com/playwright-community/playwright-go"
)

// SearchResult is one scraped result entry.
type SearchResult struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Rank  int    `json:"rank"`
}

// SearchGoogle runs a Google query and returns the URL of the n-th
// organic result (1-based).
func (b *Browser) SearchGoogle(query string, resultNumber int) (string, error) {
	if resultNumber < 1 {
		resultNumber = 1
	}
	if err := b.Navigate("https://www.google.com"); err != nil {
		return "", err
	}
	b.dismissConsent()

	box, err := b.findSmart(`textarea[name="q"], input[name="q"]`)
	if err != nil {
		return "", fmt.Errorf("google search box not found: %w", err)
	}
	if err := box.Fill(query); err != nil {
		return "", fmt.Errorf("failed to type query: %w", err)
	}
	if err := box.Press("Enter"); err != nil {
		return "", fmt.Errorf("failed to submit query: %w", err)
	}
	b.waitSettled()

	results, err := b.googleResults()
	if err != nil {
		return "", err
	}
	if len(results) < resultNumber {
		return "", fmt.Errorf("not enough results (found %d, wanted #%d)", len(results), resultNumber)
	}
	target := results[resultNumber-1]
	log.Printf("🔍 [WEB] Result #%d: %s", resultNumber, target.URL)
	return target.URL, nil
}

// googleResults scrapes the organic result headings and their links.
func (b *Browser) googleResults() ([]SearchResult, error) {
	headings := b.page.Locator(`#search a:has(h3)`)
	count, err := headings.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	var results []SearchResult
	for i := 0; i < count; i++ {
		link := headings.Nth(i)
		href, err := link.GetAttribute("href")
		if err != nil || href == "" || !strings.HasPrefix(href, "http") {
			continue
		}
		title, _ := link.Locator("h3").First().TextContent()
		results = append(results, SearchResult{
			Title: strings.TrimSpace(title),
			URL:   href,
			Rank:  len(results) + 1,
		})
	}
	return results, nil
}

// SearchYouTube searches YouTube and returns the URL of the n-th video
// (1-based), skipping ads and shelf suggestions the way the a#video-title
// listing does.
func (b *Browser) SearchYouTube(query string, resultNumber int) (string, error) {
	if resultNumber < 1 {
		resultNumber = 1
	}
	searchURL := "https://www.youtube.com/results?search_query=" + url.QueryEscape(query)
	if err := b.Navigate(searchURL); err != nil {
		return "", err
	}
	b.dismissConsent()
	// YouTube populates results dynamically after load.
	b.page.WaitForTimeout(2000)

	videos := b.page.Locator("a#video-title")
	count, err := videos.Count()
	if err != nil {
		return "", fmt.Errorf("failed to list videos: %w", err)
	}
	if count < resultNumber {
		return "", fmt.Errorf("not enough videos (found %d, wanted #%d)", count, resultNumber)
	}

	target := videos.Nth(resultNumber - 1)
	href, err := target.GetAttribute("href")
	if err != nil || href == "" {
		return "", fmt.Errorf("video #%d has no link", resultNumber)
	}
	if strings.HasPrefix(href, "/") {
		href = "https://www.youtube.com" + href
	}
	title, _ := target.GetAttribute("title")
	log.Printf("🎬 [WEB] Video #%d: %s - %s", resultNumber, title, href)
	return href, nil
}

// dismissConsent clicks through the cookie-consent banners Google
// properties show on first visit. Failures are non-fatal.
func (b *Browser) dismissConsent() {
	buttons := []string{
		`button:has-text("Tout accepter")`,
		`button:has-text("Accept all")`,
		`button:has-text("J'accepte")`,
		`button:has-text("I agree")`,
		`#L2AGLb`,
	}
	for _, sel := range buttons {
		locator := b.page.Locator(sel)
		if count, err := locator.Count(); err == nil && count > 0 {
			if err := locator.First().Click(pw.LocatorClickOptions{Timeout: pw.Float(2000)}); err == nil {
				log.Printf("🍪 [WEB] Dismissed consent banner")
				return
			}
		}
	}
}

// waitSettled waits for the load state plus a short grace period for
// dynamic content.
func (b *Browser) waitSettled() {
	_ = b.page.WaitForLoadState(pw.PageWaitForLoadStateOptions{
		State: pw.LoadStateDomcontentloaded,
	})
	time.Sleep(time.Second)
}
