// Package kmoni fetches rendered intensity map frames from the Kyoshin
// realtime monitor.
//
// Frames are published once per second as GIF images under a path that
// embeds the layer kind, the sensor depth, and the frame second in JST:
//
//	{base}/data/map_img/RealTimeImg/{kind}_{s|b}/{yyyyMMdd}/{yyyyMMddHHmmss}.{kind}_{s|b}.gif
//
// "s" selects the surface sensors, "b" the borehole ones. The monitor
// answers 404 until a frame's image is rendered, usually one to two
// seconds behind wall-clock time.
package kmoni

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"time"

	_ "image/gif"
	_ "image/png"

	"github.com/couchcryptid/quake-data-etl/internal/domain"
)

// jstZone renders frame timestamps in the monitor's local time.
var jstZone = time.FixedZone("JST", 9*60*60)

// Client implements domain.FrameFetcher against the monitor's HTTP image
// endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a monitor client. baseURL carries scheme and host
// without a trailing slash.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// Fetch retrieves the raw image bytes for one frame second. A 404 maps to
// domain.ErrFrameNotReady so callers can wait for the next cycle instead
// of treating publication lag as a failure.
func (c *Client) Fetch(ctx context.Context, t time.Time, kind domain.DataKind, borehole bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.frameURL(t, kind, borehole), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch frame: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("frame %s: %w", t.In(jstZone).Format(time.RFC3339), domain.ErrFrameNotReady)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("monitor error: status %d: %s", resp.StatusCode, body)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read frame body: %w", err)
	}
	return data, nil
}

// FetchFrame retrieves and decodes one frame into the grid the analysis
// pass samples.
func (c *Client) FetchFrame(ctx context.Context, t time.Time, kind domain.DataKind, borehole bool) (domain.Frame, error) {
	raw, err := c.Fetch(ctx, t, kind, borehole)
	if err != nil {
		return domain.Frame{}, err
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return domain.Frame{}, fmt.Errorf("decode frame image: %w", err)
	}

	c.logger.Debug("frame fetched",
		"kind", kind,
		"borehole", borehole,
		"frame_time", t.In(jstZone).Format(time.RFC3339),
		"format", format,
		"bytes", len(raw),
	)

	return domain.Frame{
		Time:     t,
		Kind:     kind,
		Borehole: borehole,
		Grid:     domain.NewImageGrid(img),
		Raw:      raw,
	}, nil
}

func (c *Client) frameURL(t time.Time, kind domain.DataKind, borehole bool) string {
	depth := "s"
	if borehole {
		depth = "b"
	}
	ts := t.In(jstZone)
	return fmt.Sprintf("%s/data/map_img/RealTimeImg/%s_%s/%s/%s.%s_%s.gif",
		c.baseURL, kind, depth, ts.Format("20060102"), ts.Format("20060102150405"), kind, depth)
}
