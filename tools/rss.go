package tools

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Entry is one item parsed out of an RSS or Atom feed.
type Entry struct {
	Title   string
	Link    string
	Summary string
	Content string
}

// rss 2.0 document

type rssDoc struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Encoded     string `xml:"encoded"` // content:encoded
}

// atom document

type atomDoc struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title   string     `xml:"title"`
	Links   []atomLink `xml:"link"`
	Summary string     `xml:"summary"`
	Content string     `xml:"content"`
}

type atomLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

// FeedClient fetches and parses RSS/Atom feeds.
type FeedClient struct {
	httpClient *http.Client
}

// NewFeedClient wires an HTTP client; a nil client gets a sane default.
func NewFeedClient(client *http.Client) *FeedClient {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &FeedClient{httpClient: client}
}

// Fetch downloads one feed URL and returns its entries. RSS 2.0 is tried
// first, then Atom.
func (f *FeedClient) Fetch(ctx context.Context, url string) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "ai-nexus-herald/1.0")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}

	return ParseFeed(body)
}

// ParseFeed parses raw feed XML into entries.
func ParseFeed(data []byte) ([]Entry, error) {
	var rss rssDoc
	if err := xml.Unmarshal(data, &rss); err == nil && len(rss.Channel.Items) > 0 {
		entries := make([]Entry, 0, len(rss.Channel.Items))
		for _, item := range rss.Channel.Items {
			entries = append(entries, Entry{
				Title:   strings.TrimSpace(item.Title),
				Link:    strings.TrimSpace(item.Link),
				Summary: strings.TrimSpace(item.Description),
				Content: strings.TrimSpace(item.Encoded),
			})
		}
		return entries, nil
	}

	var atom atomDoc
	if err := xml.Unmarshal(data, &atom); err == nil && len(atom.Entries) > 0 {
		entries := make([]Entry, 0, len(atom.Entries))
		for _, item := range atom.Entries {
			entries = append(entries, Entry{
				Title:   strings.TrimSpace(item.Title),
				Link:    pickAtomLink(item.Links),
				Summary: strings.TrimSpace(item.Summary),
				Content: strings.TrimSpace(item.Content),
			})
		}
		return entries, nil
	}

	return nil, fmt.Errorf("unrecognized feed format")
}

func pickAtomLink(links []atomLink) string {
	for _, l := range links {
		if l.Rel == "" || l.Rel == "alternate" {
			return strings.TrimSpace(l.Href)
		}
	}
	if len(links) > 0 {
		return strings.TrimSpace(links[0].Href)
	}
	return ""
}
