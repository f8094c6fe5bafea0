package service

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	FeedLimit          = 20
	feedSummaryRunes   = 280
	feedGeneratorLabel = "newsdesk"
)

type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Generator     string    `xml:"generator"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string        `xml:"title"`
	Link        string        `xml:"link"`
	GUID        rssGUID       `xml:"guid"`
	Description string        `xml:"description"`
	Category    string        `xml:"category,omitempty"`
	PubDate     string        `xml:"pubDate,omitempty"`
	Enclosure   *rssEnclosure `xml:"enclosure,omitempty"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Type   string `xml:"type,attr"`
	Length int    `xml:"length,attr"`
}

// FeedService renders the latest articles as RSS 2.0.
type FeedService struct {
	articles *ArticleService
	siteName string
	baseURL  string
	now      func() time.Time
}

// NewFeedService creates a FeedService. baseURL is used to build absolute links.
func NewFeedService(articles *ArticleService, siteName, baseURL string) *FeedService {
	return &FeedService{
		articles: articles,
		siteName: siteName,
		baseURL:  strings.TrimRight(baseURL, "/"),
		now:      time.Now,
	}
}

// Generate returns the RSS document for the newest limit articles.
func (s *FeedService) Generate(limit int) ([]byte, error) {
	list, err := s.articles.List(ArticleFilter{Page: 1, PerPage: normalizePerPage(limit, FeedLimit)})
	if err != nil {
		return nil, err
	}

	channel := rssChannel{
		Title:         s.siteName,
		Link:          s.baseURL + "/",
		Description:   fmt.Sprintf("Latest news from %s", s.siteName),
		LastBuildDate: s.now().Format(time.RFC1123Z),
		Generator:     feedGeneratorLabel,
		Items:         make([]rssItem, 0, len(list.Articles)),
	}

	for _, article := range list.Articles {
		link := fmt.Sprintf("%s/news/%d", s.baseURL, article.ID)
		item := rssItem{
			Title:       article.Title,
			Link:        link,
			GUID:        rssGUID{IsPermaLink: true, Value: link},
			Description: summarize(article.Content, feedSummaryRunes),
			Category:    article.Category,
		}
		if !article.CreatedAt.IsZero() {
			item.PubDate = article.CreatedAt.Format(time.RFC1123Z)
		}
		if article.Image != "" {
			item.Enclosure = &rssEnclosure{
				URL:  fmt.Sprintf("%s/uploads/news/%s", s.baseURL, article.Image),
				Type: imageMIMEType(article.Image),
			}
		}
		channel.Items = append(channel.Items, item)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	encoder := xml.NewEncoder(&buf)
	encoder.Indent("", "  ")
	if err := encoder.Encode(rssDocument{Version: "2.0", Channel: channel}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func summarize(content string, limit int) string {
	collapsed := strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(collapsed) <= limit {
		return collapsed
	}
	runes := []rune(collapsed)
	return strings.TrimSpace(string(runes[:limit])) + "…"
}

func imageMIMEType(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".gif"):
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
