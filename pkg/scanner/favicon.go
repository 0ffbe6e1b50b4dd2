package scanner

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html"
)

// IconResolver finds a site's favicon when the page itself did not declare
// one in a way the adapter could read. Results are cached per host; a miss
// is cached too, as the conventional /favicon.ico guess.
type IconResolver struct {
	client *http.Client

	mu       sync.Mutex
	cache    map[string]string
	inflight map[string]bool
}

// NewIconResolver creates a resolver with a short-timeout HTTP client.
func NewIconResolver() *IconResolver {
	return &IconResolver{
		client:   &http.Client{Timeout: 3 * time.Second},
		cache:    make(map[string]string),
		inflight: make(map[string]bool),
	}
}

// Lookup returns the cached favicon for pageURL's host, kicking off a
// background fetch on a miss. It never touches the network itself; the
// snapshot path must not stall, so an unresolved icon stays empty until a
// later snapshot finds the cache filled.
func (r *IconResolver) Lookup(pageURL string) string {
	base, err := url.Parse(pageURL)
	if err != nil || base.Host == "" || (base.Scheme != "http" && base.Scheme != "https") {
		return ""
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if icon, ok := r.cache[base.Host]; ok {
		return icon
	}
	if !r.inflight[base.Host] {
		r.inflight[base.Host] = true
		go r.resolveHost(base)
	}
	return ""
}

func (r *IconResolver) resolveHost(base *url.URL) {
	icon := r.fetch(base)
	if icon == "" {
		icon = base.Scheme + "://" + base.Host + "/favicon.ico"
	}

	r.mu.Lock()
	r.cache[base.Host] = icon
	delete(r.inflight, base.Host)
	r.mu.Unlock()
}

// Resolve returns the favicon URL for the page at pageURL, or empty when
// the URL itself is unusable.
func (r *IconResolver) Resolve(pageURL string) string {
	base, err := url.Parse(pageURL)
	if err != nil || base.Host == "" || (base.Scheme != "http" && base.Scheme != "https") {
		return ""
	}

	r.mu.Lock()
	if icon, ok := r.cache[base.Host]; ok {
		r.mu.Unlock()
		return icon
	}
	r.mu.Unlock()

	r.resolveHost(base)

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache[base.Host]
}

// fetch loads the site root and scans its head for an icon link.
func (r *IconResolver) fetch(base *url.URL) string {
	root := *base
	root.Path = "/"
	root.RawQuery = ""
	root.Fragment = ""

	resp, err := r.client.Get(root.String())
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}

	href := findIconLink(resp.Body)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// findIconLink tokenizes HTML until it sees a <link rel~=icon> or leaves
// the document head.
func findIconLink(body io.Reader) string {
	z := html.NewTokenizer(body)
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			if tag == "body" {
				return ""
			}
			if tag != "link" || !hasAttr {
				continue
			}
			var rel, href string
			for {
				key, val, more := z.TagAttr()
				switch string(key) {
				case "rel":
					rel = strings.ToLower(string(val))
				case "href":
					href = string(val)
				}
				if !more {
					break
				}
			}
			if href == "" {
				continue
			}
			for _, part := range strings.Fields(rel) {
				if part == "icon" || part == "shortcut" || part == "apple-touch-icon" {
					return href
				}
			}
		}
	}
}
