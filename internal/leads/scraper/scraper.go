// Package scraper extracts candidate leads from a public web page.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"leadscope_backend/internal/leads/domain"
	"leadscope_backend/internal/leads/transport"
	"leadscope_backend/platform/logger"

	"golang.org/x/net/html"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	maxBodyBytes       = 5 << 20
	maxFullNameLength  = 50
	scrapedTag         = "scraped"
	userAgent          = "leadscope-scraper/1.0"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	// ErrFetch wraps non-2xx responses from the scraped site.
	ErrFetch = errors.New("fetch page")
)

// Scraper fetches pages and extracts leads from them.
type Scraper struct {
	httpClient *http.Client
	log        *logger.Logger
}

// New creates a scraper. A zero timeout uses the default of 10 seconds.
func New(timeout time.Duration, log *logger.Logger) *Scraper {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &Scraper{
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Scrape fetches rawURL and returns the leads found on it. Nothing is stored.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (transport.ScrapeResponse, error) {
	target := NormalizeURL(rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return transport.ScrapeResponse{}, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.log.ExternalCallFailed("scraper", "fetch", err)
		return transport.ScrapeResponse{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return transport.ScrapeResponse{}, fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return transport.ScrapeResponse{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	leads, err := Extract(string(body))
	if err != nil {
		return transport.ScrapeResponse{}, err
	}
	return transport.ScrapeResponse{SourceURL: target, Leads: leads}, nil
}

// NormalizeURL prepends https:// when the scheme is missing.
func NormalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://") {
		return rawURL
	}
	return "https://" + rawURL
}

// page is what one pass over the document collects.
type page struct {
	title       string
	siteName    string
	description string
	generator   string
	links       []link
	scriptSrcs  []string
	linkHrefs   []string
	text        strings.Builder
}

type link struct {
	href string
	text string
}

// Extract parses an HTML document and builds candidate leads from its
// social profile links and email addresses.
func Extract(document string) ([]transport.LeadInput, error) {
	root, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var p page
	walk(root, &p)

	companyName, industry := companyInfo(&p)
	techStack := detectTechStack(document, &p)

	leads := make([]transport.LeadInput, 0)
	seen := make(map[string]int)

	add := func(in transport.LeadInput) {
		key := in.Platform + ":" + strings.ToLower(in.Username)
		if i, ok := seen[key]; ok {
			if leads[i].FullName == nil && in.FullName != nil {
				leads[i].FullName = in.FullName
			}
			return
		}
		in.CompanyName = companyName
		in.CompanyIndustry = industry
		in.TechStack = techStack
		in.Tags = []string{scrapedTag}
		seen[key] = len(leads)
		leads = append(leads, in)
	}

	for _, l := range p.links {
		if strings.HasPrefix(strings.ToLower(l.href), "mailto:") {
			continue
		}
		platform, username, ok := SocialProfile(l.href)
		if !ok {
			continue
		}
		profileURL := l.href
		in := transport.LeadInput{
			Username:   username,
			Platform:   platform.String(),
			ProfileURL: &profileURL,
		}
		if name := strings.TrimSpace(l.text); name != "" && len(name) < maxFullNameLength {
			in.FullName = &name
		}
		add(in)
	}

	for _, email := range collectEmails(document, &p) {
		address := email
		username := strings.SplitN(email, "@", 2)[0]
		add(transport.LeadInput{
			Username: username,
			Platform: domain.PlatformOther.String(),
			Email:    &address,
		})
	}

	return leads, nil
}

func walk(n *html.Node, p *page) {
	switch n.Type {
	case html.ElementNode:
		switch n.Data {
		case "title":
			if n.FirstChild != nil && p.title == "" {
				p.title = strings.TrimSpace(n.FirstChild.Data)
			}
		case "meta":
			name := strings.ToLower(attr(n, "name"))
			property := strings.ToLower(attr(n, "property"))
			content := attr(n, "content")
			switch {
			case property == "og:site_name":
				p.siteName = strings.TrimSpace(content)
			case name == "description":
				p.description = content
			case name == "generator":
				p.generator = content
			}
		case "a":
			if href := attr(n, "href"); href != "" {
				p.links = append(p.links, link{href: href, text: textContent(n)})
			}
		case "script":
			if src := attr(n, "src"); src != "" {
				p.scriptSrcs = append(p.scriptSrcs, src)
			}
		case "link":
			if href := attr(n, "href"); href != "" {
				p.linkHrefs = append(p.linkHrefs, href)
			}
		}
	case html.TextNode:
		p.text.WriteString(n.Data)
		p.text.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, p)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

// SocialProfile maps a profile link to its platform and username.
func SocialProfile(href string) (domain.Platform, string, bool) {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil || u.Host == "" {
		return "", "", false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")

	parts := make([]string, 0)
	for _, part := range strings.Split(u.Path, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "", "", false
	}

	switch host {
	case "twitter.com", "x.com":
		if isReserved(parts[0], "intent", "share", "home", "search", "hashtag", "i") {
			return "", "", false
		}
		return domain.PlatformTwitter, clean(parts[0]), true
	case "instagram.com":
		if isReserved(parts[0], "p", "explore", "reel", "stories") {
			return "", "", false
		}
		return domain.PlatformInstagram, clean(parts[0]), true
	case "linkedin.com":
		if len(parts) >= 2 && (parts[0] == "in" || parts[0] == "pub") {
			return domain.PlatformLinkedIn, clean(parts[1]), true
		}
		return "", "", false
	case "facebook.com":
		if isReserved(parts[0], "sharer", "sharer.php", "share", "dialog", "plugins", "tr") {
			return "", "", false
		}
		return domain.PlatformFacebook, clean(parts[0]), true
	case "tiktok.com":
		return domain.PlatformTikTok, clean(parts[0]), true
	case "youtube.com":
		if len(parts) >= 2 && (parts[0] == "user" || parts[0] == "channel" || parts[0] == "c") {
			return domain.PlatformYouTube, clean(parts[1]), true
		}
		if strings.HasPrefix(parts[0], "@") {
			return domain.PlatformYouTube, clean(parts[0]), true
		}
		return "", "", false
	case "pinterest.com":
		return domain.PlatformPinterest, clean(parts[0]), true
	default:
		return "", "", false
	}
}

func isReserved(segment string, reserved ...string) bool {
	segment = strings.ToLower(segment)
	for _, r := range reserved {
		if segment == r {
			return true
		}
	}
	return false
}

func clean(username string) string {
	return strings.TrimPrefix(strings.TrimSpace(username), "@")
}

func collectEmails(document string, p *page) []string {
	found := make(map[string]struct{})
	for _, l := range p.links {
		if strings.HasPrefix(strings.ToLower(l.href), "mailto:") {
			address := strings.TrimPrefix(l.href[len("mailto:"):], "//")
			if i := strings.IndexByte(address, '?'); i >= 0 {
				address = address[:i]
			}
			if emailPattern.MatchString(address) {
				found[strings.ToLower(address)] = struct{}{}
			}
		}
	}
	for _, match := range emailPattern.FindAllString(p.text.String(), -1) {
		found[strings.ToLower(match)] = struct{}{}
	}

	emails := make([]string, 0, len(found))
	for e := range found {
		emails = append(emails, e)
	}
	sort.Strings(emails)
	return emails
}

var industryKeywords = []struct {
	industry string
	keywords []string
}{
	{"Technology", []string{"software", "tech", "saas", "cloud"}},
	{"Finance", []string{"finance", "bank", "fintech", "insurance"}},
	{"Healthcare", []string{"health", "clinic", "medical"}},
	{"Retail", []string{"shop", "store", "fashion"}},
	{"Marketing", []string{"marketing", "agency", "advertising"}},
}

func companyInfo(p *page) (*string, *string) {
	var name *string
	if p.siteName != "" {
		v := p.siteName
		name = &v
	} else if p.title != "" {
		v := strings.TrimSpace(strings.SplitN(p.title, "|", 2)[0])
		if v != "" {
			name = &v
		}
	}

	var industry *string
	description := strings.ToLower(p.description)
	if description != "" {
		for _, candidate := range industryKeywords {
			for _, kw := range candidate.keywords {
				if strings.Contains(description, kw) {
					v := candidate.industry
					industry = &v
					return name, industry
				}
			}
		}
	}
	return name, industry
}

var (
	reactScript   = regexp.MustCompile(`react(-dom)?(\.production)?(\.min)?\.js`)
	vueScript     = regexp.MustCompile(`vue(\.global)?(\.prod)?(\.min)?\.js`)
	angularScript = regexp.MustCompile(`angular(\.min)?\.js`)
)

func detectTechStack(document string, p *page) []string {
	lower := strings.ToLower(document)
	stack := make(map[string]struct{})
	has := func(name string) { stack[name] = struct{}{} }

	if strings.Contains(lower, "wp-content") || strings.Contains(lower, "wordpress") {
		has("WordPress")
	}
	if strings.Contains(lower, "cdn.shopify.com") || strings.Contains(lower, "shopify.com") {
		has("Shopify")
	}
	for _, src := range p.scriptSrcs {
		switch {
		case reactScript.MatchString(src):
			has("React")
		case vueScript.MatchString(src):
			has("Vue.js")
		case angularScript.MatchString(src):
			has("Angular")
		}
	}
	if strings.Contains(strings.ToLower(p.generator), "joomla") {
		has("Joomla")
	}
	if strings.Contains(lower, "google-analytics.com/analytics.js") || strings.Contains(lower, "gtag/js") || strings.Contains(lower, "gtag.js") {
		has("Google Analytics")
	}
	if strings.Contains(lower, "facebook.com/tr") || strings.Contains(lower, "connect.facebook.net") {
		has("Facebook Pixel")
	}

	out := make([]string, 0, len(stack))
	for name := range stack {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
