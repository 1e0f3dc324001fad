package finance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	yahooUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15"
	// five calendar-ish sessions always cover the two latest trading days,
	// even across a weekend or a holiday.
	dailyRange = "5d"
)

// HistorySource returns the recent daily closes of a full symbol (code+suffix),
// oldest first.
type HistorySource interface {
	DailyCloses(ctx context.Context, symbol string) ([]float64, error)
}

// YahooClient reads daily closes from the Yahoo Finance chart API, trying
// each host in turn and falling back to the spark API.
type YahooClient struct {
	HTTPClient *http.Client
	Hosts      []string
	Backoffs   []time.Duration
	Logger     *zap.Logger
}

func NewYahooClient(logger *zap.Logger) *YahooClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YahooClient{
		HTTPClient: &http.Client{},
		Hosts:      []string{"https://query1.finance.yahoo.com", "https://query2.finance.yahoo.com"},
		Backoffs:   []time.Duration{200 * time.Millisecond},
		Logger:     logger,
	}
}

// DailyCloses fetches the closes of the last few sessions for symbol.
func (y *YahooClient) DailyCloses(ctx context.Context, symbol string) ([]float64, error) {
	var yc yahooChartResp
	err := y.getJSON(ctx, symbol, func(host string) string {
		return fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=1d&events=div,splits", host, symbol, dailyRange)
	}, &yc)
	if err == nil {
		if len(yc.Chart.Result) == 0 || len(yc.Chart.Result[0].Indicators.Quote) == 0 {
			return nil, nil
		}
		return validCloses(yc.Chart.Result[0].Indicators.Quote[0].Close), nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	// Spark fallback
	y.Logger.Debug("chart api failed, trying spark", zap.String("symbol", symbol), zap.Error(err))
	var sp yahooSparkResp
	if sparkErr := y.getJSON(ctx, symbol, func(host string) string {
		return fmt.Sprintf("%s/v7/finance/spark?symbols=%s&range=%s&interval=1d", host, strings.ToUpper(symbol), dailyRange)
	}, &sp); sparkErr != nil {
		return nil, errors.Join(err, sparkErr)
	}
	if len(sp.Spark.Result) == 0 || len(sp.Spark.Result[0].Response) == 0 {
		return nil, nil
	}
	return validCloses(sp.Spark.Result[0].Response[0].Close), nil
}

// getJSON runs one pass over the hosts per backoff step until a host answers
// with a decodable JSON body.
func (y *YahooClient) getJSON(ctx context.Context, symbol string, addr func(host string) string, out any) error {
	var lastErr error
	for attempt := 0; attempt < len(y.Backoffs)+1; attempt++ {
		for _, host := range y.Hosts {
			lastErr = y.getOnce(ctx, symbol, addr(host), out)
			if lastErr == nil {
				return nil
			}
			if ctx.Err() != nil {
				return lastErr
			}
		}
		if attempt < len(y.Backoffs) {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(y.Backoffs[attempt]):
			}
		}
	}
	return lastErr
}

func (y *YahooClient) getOnce(ctx context.Context, symbol, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", yahooUserAgent)
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", fmt.Sprintf("https://finance.yahoo.com/quote/%s", strings.ToUpper(symbol)))
	resp, err := y.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return fmt.Errorf("failed to read yahoo response: %w", readErr)
	}
	if resp.StatusCode == http.StatusTooManyRequests || strings.HasPrefix(string(body), "Edge: Too Many Requests") {
		return fmt.Errorf("yahoo %s returned 429: Edge: Too Many Requests", req.URL.Host)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("yahoo %s returned %d: %s", req.URL.Host, resp.StatusCode, preview(body))
	}
	if strings.HasPrefix(string(body), "<") || strings.HasPrefix(string(body), "Edge:") {
		return fmt.Errorf("yahoo returned non-json body: %s", preview(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse yahoo json: %v; body: %s", err, preview(body))
	}
	return nil
}
