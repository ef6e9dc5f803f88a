package news

import (
	"btc-dca-dashboard/internal/types"
	"btc-dca-dashboard/lib/helpers"
	"context"
	"fmt"
	"github.com/pkg/errors"
	"net/http"
	"sort"
	"strings"
	"time"
)

const (
	maxItems   = 3
	dateLayout = "1/2/2006"
)

// Feed is the latest news and upcoming events.
type Feed struct {
	News   []types.NewsItem  `json:"news"`
	Events []types.EventItem `json:"events"`
}

type newsResponse struct {
	Data []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		PublishedAt string `json:"published_at"`
		UpdatedAt   int64  `json:"updated_at"`
	} `json:"data"`
}

type eventsResponse struct {
	Data []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		StartDate   string `json:"start_date"`
	} `json:"data"`
}

// Client reads news and events from the aggregator.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (c *Client) Fetch(ctx context.Context) (Feed, error) {
	var nr newsResponse
	if err := helpers.GetJSON(ctx, c.client, c.baseURL+"/news", &nr); err != nil {
		return Feed{}, errors.Wrap(err, "news")
	}
	var er eventsResponse
	if err := helpers.GetJSON(ctx, c.client, c.baseURL+"/events", &er); err != nil {
		return Feed{}, errors.Wrap(err, "events")
	}

	feed := Feed{News: []types.NewsItem{}, Events: []types.EventItem{}}
	for _, n := range nr.Data {
		item := types.NewsItem{Title: n.Title, URL: n.URL, PublishedAt: parseDate(n.PublishedAt)}
		if item.PublishedAt.IsZero() && n.UpdatedAt > 0 {
			item.PublishedAt = time.Unix(n.UpdatedAt, 0).UTC()
		}
		feed.News = append(feed.News, item)
	}
	for _, e := range er.Data {
		feed.Events = append(feed.Events, types.EventItem{
			Title:       e.Title,
			Description: e.Description,
			StartDate:   parseDate(e.StartDate),
		})
	}
	return feed, nil
}

func parseDate(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.000Z", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Overview renders the latest three news items and the next three events starting today or
// later as a plain-text summary.
func Overview(feed Feed, now time.Time) string {
	var newsLines []string
	for i, n := range feed.News {
		if i >= maxItems {
			break
		}
		newsLines = append(newsLines, fmt.Sprintf("%s: %s", n.PublishedAt.Format(dateLayout), n.Title))
	}

	upcoming := make([]types.EventItem, 0, len(feed.Events))
	for _, e := range feed.Events {
		if !e.StartDate.Before(startOfDay(now)) {
			upcoming = append(upcoming, e)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].StartDate.Before(upcoming[j].StartDate)
	})

	var eventLines []string
	for i, e := range upcoming {
		if i >= maxItems {
			break
		}
		eventLines = append(eventLines, fmt.Sprintf("%s: %s", e.StartDate.Format(dateLayout), e.Title))
	}

	return fmt.Sprintf("Latest Bitcoin News:\n%s\n\nUpcoming Events:\n%s",
		strings.Join(newsLines, "\n"), strings.Join(eventLines, "\n"))
}

// event dates carry no time of day; an event today is still upcoming
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
