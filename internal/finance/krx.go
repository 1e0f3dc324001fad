package finance

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// KRX market data endpoint serving the listed-issues table (MDCSTAT01901).
const (
	DefaultListingURL = "http://data.krx.co.kr/comm/bldAttendant/getJsonData.cmd"
	krxListingBld     = "dbms/MDC/STAT/standard/MDCSTAT01901"
	krxReferer        = "http://data.krx.co.kr/contents/MDC/MDI/mdiLoader/index.cmd?menuId=MDC0201020201"
	listingTimeout    = 20 * time.Second
	maxPreviewLen     = 120
)

// KRXListing loads instrument listings from the KRX data portal.
type KRXListing struct {
	URL        string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

func NewKRXListing(addr string, logger *zap.Logger) *KRXListing {
	if addr == "" {
		addr = DefaultListingURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KRXListing{
		URL:        addr,
		HTTPClient: &http.Client{Timeout: listingTimeout},
		Logger:     logger,
	}
}

// Listing returns the issues of segment (SegmentAll, SegmentKOSPI or SegmentKOSDAQ).
func (k *KRXListing) Listing(ctx context.Context, segment string) ([]DirectoryRecord, error) {
	form := url.Values{}
	form.Set("bld", krxListingBld)
	form.Set("locale", "ko_KR")
	form.Set("mktId", segment)
	form.Set("share", "1")
	form.Set("csvxls_isNo", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, k.URL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15")
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("Referer", krxReferer)

	start := time.Now()
	resp, err := k.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("krx listing %s: %w", segment, err)
	}
	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	k.Logger.Debug("krx listing response",
		zap.String("segment", segment),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("took", time.Since(start)))
	if readErr != nil {
		return nil, fmt.Errorf("failed to read krx response: %w", readErr)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("krx listing %s returned %d: %s", segment, resp.StatusCode, preview(body))
	}
	return parseKRXListing(body)
}

func parseKRXListing(body []byte) ([]DirectoryRecord, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("krx returned non-json body: %s", preview(body))
	}
	block := gjson.GetBytes(body, "OutBlock_1")
	if !block.IsArray() {
		return nil, fmt.Errorf("krx response has no OutBlock_1")
	}
	items := block.Array()
	out := make([]DirectoryRecord, 0, len(items))
	for _, v := range items {
		code := strings.TrimSpace(v.Get("ISU_SRT_CD").String())
		name := strings.TrimSpace(v.Get("ISU_ABBRV").String())
		if name == "" {
			name = strings.TrimSpace(v.Get("ISU_NM").String())
		}
		if code == "" || name == "" {
			continue
		}
		out = append(out, DirectoryRecord{Name: name, Code: code})
	}
	return out, nil
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > maxPreviewLen {
		s = s[:maxPreviewLen]
	}
	return s
}
