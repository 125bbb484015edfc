package console

import (
	"testing"
	"time"
)

func TestClassifyStatus(t *testing.T) {
	cases := map[string]StatusClass{
		"Pending":   ClassPending,
		"Success":   ClassSuccess,
		"Failed":    ClassFailed,
		"":          ClassNeutral,
		"REVERSED":  ClassNeutral,
		"pending":   ClassNeutral, // status matching is exact, not case-folded
	}
	for status, want := range cases {
		if got := ClassifyStatus(status); got != want {
			t.Errorf("ClassifyStatus(%q) = %s, want %s", status, got, want)
		}
	}
}

func TestFormatAmountGroupsDigits(t *testing.T) {
	cases := map[int64]string{
		1:       "1",
		100:     "100",
		1250:    "1,250",
		1250000: "1,250,000",
	}
	for amount, want := range cases {
		if got := FormatAmount(amount); got != want {
			t.Errorf("FormatAmount(%d) = %q, want %q", amount, got, want)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC)
	got := FormatTimestamp(ts)
	want := ts.Local().Format("Jan 2, 2006 15:04:05")
	if got != want {
		t.Fatalf("FormatTimestamp = %q, want %q", got, want)
	}
}
