package finance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
)

const chartBody = `{"chart":{"result":[{"meta":{"symbol":"005930.KS","gmtoffset":32400,"timezone":"KST"},
"timestamp":[1,2,3,4,5],
"indicators":{"quote":[{"close":[70100,null,70500,71000,null]}]}}],"error":null}}`

const sparkBody = `{"spark":{"result":[{"symbol":"086520.KQ","response":[{"timestamp":[1,2,3],"close":[101000,null,103500]}]}],"error":null}}`

func newTestYahoo(hosts ...string) *YahooClient {
	y := NewYahooClient(nil)
	y.Hosts = hosts
	y.Backoffs = nil
	return y
}

func TestYahooClient_DailyCloses(t *testing.T) {
	var paths []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		if r.URL.Query().Get("range") != dailyRange {
			t.Errorf("range = %q, want %q", r.URL.Query().Get("range"), dailyRange)
		}
		w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	got, err := newTestYahoo(srv.URL).DailyCloses(context.Background(), "005930.KS")
	if err != nil {
		t.Fatalf("DailyCloses() unexpected error = %v", err)
	}
	if want := []float64{70100, 70500, 71000}; !reflect.DeepEqual(got, want) {
		t.Errorf("DailyCloses() = %v, want %v", got, want)
	}
	if len(paths) != 1 || paths[0] != "/v8/finance/chart/005930.KS" {
		t.Errorf("requested paths = %v", paths)
	}
}

func TestYahooClient_HostFallback(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("Edge: Too Many Requests"))
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chartBody))
	}))
	defer good.Close()

	got, err := newTestYahoo(bad.URL, good.URL).DailyCloses(context.Background(), "005930.KS")
	if err != nil {
		t.Fatalf("DailyCloses() unexpected error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("DailyCloses() = %v, want 3 closes", got)
	}
}

func TestYahooClient_SparkFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/v8/") {
			w.Write([]byte("<html>blocked</html>"))
			return
		}
		if got := r.URL.Query().Get("symbols"); got != "086520.KQ" {
			t.Errorf("spark symbols = %q", got)
		}
		w.Write([]byte(sparkBody))
	}))
	defer srv.Close()

	got, err := newTestYahoo(srv.URL).DailyCloses(context.Background(), "086520.KQ")
	if err != nil {
		t.Fatalf("DailyCloses() unexpected error = %v", err)
	}
	if want := []float64{101000, 103500}; !reflect.DeepEqual(got, want) {
		t.Errorf("DailyCloses() = %v, want %v", got, want)
	}
}

func TestYahooClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"not found", http.StatusNotFound, `{"chart":{"result":null,"error":{"code":"Not Found"}}}`, "returned 404"},
		{"html", http.StatusOK, "<html></html>", "non-json"},
		{"garbage", http.StatusOK, "{", "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()
			_, err := newTestYahoo(srv.URL).DailyCloses(context.Background(), "999999.KS")
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("DailyCloses() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestYahooClient_EmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
	}))
	defer srv.Close()
	got, err := newTestYahoo(srv.URL).DailyCloses(context.Background(), "005930.KS")
	if err != nil || len(got) != 0 {
		t.Errorf("DailyCloses() = %v, %v, want no closes and no error", got, err)
	}
}
