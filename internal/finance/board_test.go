package finance

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestWon(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0원"},
		{80000, "80,000원"},
		{1234567, "1,234,567원"},
	}
	for _, tt := range tests {
		if got := Won(tt.in); got != tt.want {
			t.Errorf("Won(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatBoard(t *testing.T) {
	rep := Report{
		Snapshots: []QuoteSnapshot{
			{DisplayName: "삼성전자", Code: "005930", CurrentClose: 90000, TargetPrice: 80000, AchievementPct: 112.5, DailyChangePct: 5.88},
			{DisplayName: "SK하이닉스", Code: "000660", CurrentClose: 171000, TargetPrice: 200000, AchievementPct: 85.5, DailyChangePct: -5},
		},
		Diagnostics: []Diagnostic{
			{Kind: DiagNoData, Name: "카카오", Code: "035720"},
			{Kind: DiagUnresolved, Name: "없는회사"},
		},
		DirectoryReady: true,
		GeneratedAt:    time.Date(2026, 3, 4, 6, 30, 0, 0, time.UTC),
	}
	got := FormatBoard(rep)
	for _, want := range []string{
		"03/04 15:30 KST",
		"삼성전자 🔥\n  90,000원 (+5.88%) • target 80,000원 • 112.5%",
		"SK하이닉스 📈\n  171,000원 (-5.00%) • target 200,000원 • 85.5%",
		"- (카카오, 035720): no data found",
		"- 없는회사: could not resolve",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatBoard() missing %q in\n%s", want, got)
		}
	}
	if strings.Contains(got, "not ready") {
		t.Errorf("FormatBoard() warns about the directory on a ready report:\n%s", got)
	}
}

func TestFormatBoard_DirectoryNotReady(t *testing.T) {
	rep := Report{Diagnostics: []Diagnostic{{Kind: DiagDirectoryUnavailable, Detail: "krx down"}}}
	got := FormatBoard(rep)
	if !strings.Contains(got, "not ready") || !strings.Contains(got, "No quotes") {
		t.Errorf("FormatBoard() = %q", got)
	}
	if strings.Contains(got, "Skipped") {
		t.Errorf("FormatBoard() lists the directory diagnostic as skipped:\n%s", got)
	}
}

func TestMakeBoardChart(t *testing.T) {
	if _, err := MakeBoardChart(nil, time.Time{}); err == nil {
		t.Error("MakeBoardChart(nil) expected error")
	}
	img, err := MakeBoardChart([]QuoteSnapshot{
		{DisplayName: "삼성전자", AchievementPct: 112.5},
		{DisplayName: "SK하이닉스", AchievementPct: 85.5},
	}, time.Now())
	if err != nil {
		t.Fatalf("MakeBoardChart() unexpected error = %v", err)
	}
	if !bytes.HasPrefix(img, []byte("\x89PNG")) {
		t.Errorf("MakeBoardChart() did not return a PNG")
	}
}
