// Package youtube parses YouTube video URLs and looks up live-stream
// metadata through the YouTube Data API.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

// DefaultLookupMessage is reported when the API error carries no message.
const DefaultLookupMessage = "failed to fetch video details"

var (
	// ErrVideoNotFound means the API returned no items for the id.
	ErrVideoNotFound = errors.New("youtube: video not found")
	// ErrNotLiveArchive means the video has no recorded live start time.
	ErrNotLiveArchive = errors.New("youtube: live start time unavailable; the video may not be an archived live stream")
)

// LookupError is a non-success HTTP response from the metadata API.
type LookupError struct {
	Status  int
	Message string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("youtube: lookup failed (%d): %s", e.Status, e.Message)
}

// Client fetches live-streaming details for a video.
type Client struct {
	svc *yt.Service
}

type clientOptions struct {
	endpoint string
	timeout  time.Duration
}

// Option configures a Client.
type Option func(*clientOptions)

// WithEndpoint overrides the API base URL (e.g. for tests). It must end with "/".
func WithEndpoint(endpoint string) Option {
	return func(o *clientOptions) { o.endpoint = endpoint }
}

// WithTimeout bounds each lookup.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.timeout = d }
}

// NewClient creates a Client talking to the public YouTube Data API. The
// API key is supplied per lookup, so no credentials are configured here.
func NewClient(opts ...Option) (*Client, error) {
	o := clientOptions{timeout: 15 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}
	copts := []option.ClientOption{option.WithHTTPClient(&http.Client{Timeout: o.timeout})}
	if o.endpoint != "" {
		copts = append(copts, option.WithEndpoint(o.endpoint))
	}
	svc, err := yt.NewService(context.Background(), copts...)
	if err != nil {
		return nil, fmt.Errorf("youtube: new service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// ActualStartTime returns the instant the live broadcast for videoID began.
func (c *Client) ActualStartTime(ctx context.Context, videoID, apiKey string) (time.Time, error) {
	resp, err := c.svc.Videos.List([]string{"liveStreamingDetails"}).
		Id(videoID).
		Context(ctx).
		Do(googleapi.QueryParameter("key", apiKey))
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			msg := gerr.Message
			if msg == "" {
				msg = DefaultLookupMessage
			}
			return time.Time{}, &LookupError{Status: gerr.Code, Message: msg}
		}
		return time.Time{}, fmt.Errorf("youtube: videos.list: %w", err)
	}
	if len(resp.Items) == 0 {
		return time.Time{}, ErrVideoNotFound
	}

	details := resp.Items[0].LiveStreamingDetails
	if details == nil || details.ActualStartTime == "" {
		return time.Time{}, ErrNotLiveArchive
	}
	start, err := time.Parse(time.RFC3339, details.ActualStartTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("youtube: parse actualStartTime %q: %w", details.ActualStartTime, err)
	}
	return start, nil
}
