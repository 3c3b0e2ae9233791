package widgets

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "00:00"},
		{5, "00:05"},
		{59, "00:59"},
		{60, "01:00"},
		{62, "01:02"},
		{922, "15:22"},
		{3599, "59:59"},
		{3600, "60:00"},
		{5999, "99:59"},
		{6000, "100:00"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.seconds), func(t *testing.T) {
			if got := FormatElapsed(tt.seconds); got != tt.want {
				t.Errorf("FormatElapsed(%d) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestFormatElapsed_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 10_000_000).Draw(t, "seconds")

		out := FormatElapsed(n)
		mm, ss, ok := strings.Cut(out, ":")
		if !ok {
			t.Fatalf("FormatElapsed(%d) = %q has no separator", n, out)
		}

		if len(ss) != 2 {
			t.Fatalf("seconds field %q is not two digits", ss)
		}
		if len(mm) < 2 {
			t.Fatalf("minutes field %q is shorter than two digits", mm)
		}
		if n < 6000 && len(mm) != 2 {
			t.Fatalf("minutes field %q should be two digits below 100 minutes", mm)
		}

		minutes, err := strconv.Atoi(mm)
		if err != nil || minutes != n/60 {
			t.Fatalf("minutes = %q, want %d", mm, n/60)
		}
		seconds, err := strconv.Atoi(ss)
		if err != nil || seconds != n%60 {
			t.Fatalf("seconds = %q, want %d", ss, n%60)
		}
	})
}
