package universe

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"RSLScreener/internal/model"
)

const stockAnalysisURL = "https://stockanalysis.com/list/nasdaq-stockholm/"

var quoteHrefRe = regexp.MustCompile(`/quote/sto/([^/]+)/`)

// StockAnalysis scrapes the Nasdaq Stockholm listing on stockanalysis.com.
type StockAnalysis struct {
	BaseURL  string
	MaxPages int
	Dedupe   bool
	Delay    time.Duration // pause between pages
	Client   *http.Client
}

// NewStockAnalysis creates a scraper with the default listing URL.
func NewStockAnalysis(maxPages int, dedupe bool) *StockAnalysis {
	return &StockAnalysis{
		BaseURL:  stockAnalysisURL,
		MaxPages: maxPages,
		Dedupe:   dedupe,
		Delay:    800 * time.Millisecond,
		Client:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *StockAnalysis) Name() string { return "stockanalysis" }

// Instruments walks the listing pages until one is empty or fails.
func (s *StockAnalysis) Instruments(ctx context.Context) ([]model.Instrument, error) {
	var all []model.Instrument
	for page := 1; page <= s.MaxPages; page++ {
		if page > 1 && s.Delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.Delay):
			}
		}

		url := s.BaseURL
		if page > 1 {
			url = fmt.Sprintf("%s?p=%d", s.BaseURL, page)
		}
		rows, err := s.scrapePage(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn().Err(err).Int("page", page).Msg("listing page failed")
			break
		}
		if len(rows) == 0 {
			break
		}
		all = append(all, rows...)
		log.Debug().Int("page", page).Int("rows", len(rows)).Int("total", len(all)).Msg("listing page scraped")
	}

	if len(all) == 0 {
		return nil, fmt.Errorf("stockanalysis: no tickers scraped from %s", s.BaseURL)
	}
	if s.Dedupe {
		raw := len(all)
		all = Deduplicate(all)
		log.Info().Int("raw", raw).Int("deduplicated", len(all)).Msg("share classes deduplicated")
	}
	return all, nil
}

func (s *StockAnalysis) scrapePage(ctx context.Context, url string) ([]model.Instrument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch listing: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	var rows []model.Instrument
	doc.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}
		href, ok := cells.Eq(1).Find("a").Attr("href")
		if !ok {
			return
		}
		m := quoteHrefRe.FindStringSubmatch(href)
		if m == nil {
			return
		}
		name := fixEncoding(strings.TrimSpace(cells.Eq(2).Text()))
		if name == "" {
			name = m[1]
		}
		rows = append(rows, model.Instrument{Name: name, Symbol: ToYahooSymbol(m[1])})
	})
	return rows, nil
}

// ToYahooSymbol converts a stockanalysis ticker (VOLV.B) to Yahoo form (VOLV-B.ST).
func ToYahooSymbol(ticker string) string {
	return strings.ReplaceAll(ticker, ".", "-") + ".ST"
}

// fixEncoding repairs UTF-8 text that was decoded as latin-1 (OrrÃ¶n -> Orrön).
func fixEncoding(text string) string {
	b := make([]byte, 0, len(text))
	for _, r := range text {
		if r > 0xFF {
			return text
		}
		b = append(b, byte(r))
	}
	if !utf8.Valid(b) {
		return text
	}
	return string(b)
}

var publSuffixRe = regexp.MustCompile(`(?i)\s*\(publ[.)]*`)

// classPriority lists share class suffixes from most to least liquid.
var classPriority = []string{"-B.ST", "-A.ST", "-D.ST", "-SDB.ST", "-SEK.ST", "-R.ST", "-C.ST"}

// Deduplicate keeps one share class per company, preferring the most liquid.
func Deduplicate(rows []model.Instrument) []model.Instrument {
	var order []string
	byCompany := make(map[string][]model.Instrument)
	for _, r := range rows {
		base := strings.TrimSpace(publSuffixRe.ReplaceAllString(r.Name, ""))
		if _, ok := byCompany[base]; !ok {
			order = append(order, base)
		}
		byCompany[base] = append(byCompany[base], r)
	}

	out := make([]model.Instrument, 0, len(order))
	for _, base := range order {
		out = append(out, pickClass(byCompany[base]))
	}
	return out
}

func pickClass(variants []model.Instrument) model.Instrument {
	if len(variants) == 1 {
		return variants[0]
	}
	for _, suffix := range classPriority {
		for _, v := range variants {
			if strings.HasSuffix(v.Symbol, suffix) {
				return v
			}
		}
	}
	return variants[0]
}
