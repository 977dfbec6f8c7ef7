package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dtek-outage-monitor/internal/models"

	"github.com/charmbracelet/log"
	"github.com/playwright-community/playwright-go"
)

const (
	DTEK_SITE         = "https://www.dtek-kem.com.ua/ua/shutdowns"
	csrfTokenSelector = `meta[name="csrf-token"]`
	userAgent         = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/143.0.0.0 Safari/537.36"
)

// getHomeNumScript posts the address form to the site's ajax endpoint from
// inside the page, so the request carries the session cookies and csrf token.
const getHomeNumScript = `async ({ city, street, csrfToken, updateFact }) => {
	const formData = new URLSearchParams()
	formData.append("method", "getHomeNum")
	let i = 0
	if (city) {
		formData.append("data[" + i + "][name]", "city")
		formData.append("data[" + i + "][value]", city)
		i++
	}
	formData.append("data[" + i + "][name]", "street")
	formData.append("data[" + i + "][value]", street)
	i++
	formData.append("data[" + i + "][name]", "updateFact")
	formData.append("data[" + i + "][value]", updateFact)

	const response = await fetch("/ua/ajax", {
		method: "POST",
		headers: {
			"x-requested-with": "XMLHttpRequest",
			"x-csrf-token": csrfToken,
		},
		body: formData,
	})
	if (!response.ok) {
		throw new Error("ajax status " + response.status)
	}
	return await response.text()
}`

type Scraper interface {
	FetchStatus(ctx context.Context, addr models.Address) (models.StatusSnapshot, error)
}

type Options struct {
	PageURL  string
	Timeout  time.Duration
	Location *time.Location
}

type playwrightScraper struct {
	opts   Options
	logger *log.Logger
	now    func() time.Time
}

func NewScraper(opts Options, logger *log.Logger) Scraper {
	if opts.PageURL == "" {
		opts.PageURL = DTEK_SITE
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &playwrightScraper{
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

func (s *playwrightScraper) FetchStatus(ctx context.Context, addr models.Address) (models.StatusSnapshot, error) {
	raw, err := s.fetchRaw(ctx, addr)
	if err != nil {
		return models.StatusSnapshot{}, fmt.Errorf("%w: %w", models.ErrFetch, err)
	}

	snapshot, err := ParseResponse(raw, addr.House, s.now())
	if err != nil {
		return models.StatusSnapshot{}, fmt.Errorf("%w: %w", models.ErrFetch, err)
	}
	return snapshot, nil
}

func (s *playwrightScraper) fetchRaw(ctx context.Context, addr models.Address) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	s.logger.Debug("starting browser", "page", s.opts.PageURL)

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}
	defer pw.Stop()

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("could not launch browser: %w", err)
	}
	defer browser.Close()

	// Closing the browser unblocks whichever automation call is in flight.
	stop := context.AfterFunc(ctx, func() { _ = browser.Close() })
	defer stop()

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:  playwright.String(userAgent),
		Locale:     playwright.String("uk-UA"),
		TimezoneId: timezoneID(s.opts.Location),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create new context: %w", err)
	}
	defer bctx.Close()

	page, err := bctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("could not create page: %w", err)
	}
	defer page.Close()

	timeoutMs := float64(s.opts.Timeout.Milliseconds())
	page.SetDefaultTimeout(timeoutMs)

	if _, err := page.Goto(s.opts.PageURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   playwright.Float(timeoutMs),
	}); err != nil {
		return nil, ctxOr(ctx, fmt.Errorf("could not goto: %w", err))
	}

	csrfToken, err := page.Locator(csrfTokenSelector).GetAttribute("content")
	if err != nil {
		return nil, ctxOr(ctx, fmt.Errorf("could not read csrf token: %w", err))
	}
	if csrfToken == "" {
		return nil, errors.New("csrf token is empty")
	}

	s.logger.Debug("requesting outage info", "address", addr.String())

	result, err := page.Evaluate(getHomeNumScript, map[string]interface{}{
		"city":       addr.City,
		"street":     addr.Street,
		"csrfToken":  csrfToken,
		"updateFact": s.now().In(s.opts.Location).Format("02.01.2006, 15:04:05"),
	})
	if err != nil {
		return nil, ctxOr(ctx, fmt.Errorf("could not request outage info: %w", err))
	}

	body, ok := result.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected ajax result type %T", result)
	}
	return []byte(body), nil
}

// timezoneID returns the IANA name of loc for the browser context, or nil
// to keep the browser default when loc has no such name (time.Local).
func timezoneID(loc *time.Location) *string {
	if loc == nil || loc == time.Local || loc.String() == "Local" || loc.String() == "" {
		return nil
	}
	return playwright.String(loc.String())
}

// ctxOr prefers the context error so timeouts are reported as such rather
// than as a closed-browser failure.
func ctxOr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w (%v)", ctxErr, err)
	}
	return err
}
