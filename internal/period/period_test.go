package period

import (
	"testing"
	"time"
)

func TestEnumerateOrder(t *testing.T) {
	periods := Enumerate([]int{2021, 2019})

	if len(periods) != 24 {
		t.Fatalf("expected 24 periods, got %d", len(periods))
	}
	if periods[0] != (Period{Year: 2021, Month: time.January}) {
		t.Fatalf("expected 2021-01 first, got %s", periods[0])
	}
	if periods[11] != (Period{Year: 2021, Month: time.December}) {
		t.Fatalf("expected 2021-12 at index 11, got %s", periods[11])
	}
	if periods[12] != (Period{Year: 2019, Month: time.January}) {
		t.Fatalf("expected years kept in caller order, got %s at index 12", periods[12])
	}
	for i := 1; i < 12; i++ {
		if !periods[i-1].Before(periods[i]) {
			t.Fatalf("months out of order at index %d: %s then %s", i, periods[i-1], periods[i])
		}
	}
}

func TestEnumerateEmpty(t *testing.T) {
	if got := Enumerate(nil); len(got) != 0 {
		t.Fatalf("expected no periods for no years, got %d", len(got))
	}
}

func TestClassify(t *testing.T) {
	now := time.Date(2021, time.June, 15, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		p    Period
		want Class
	}{
		{Period{2020, time.December}, Past},
		{Period{2021, time.May}, Past},
		{Period{2021, time.June}, Current},
		{Period{2021, time.July}, Future},
		{Period{2022, time.January}, Future},
		{Period{1999, time.June}, Past},
	}
	for _, tc := range cases {
		if got := Classify(tc.p, now); got != tc.want {
			t.Errorf("Classify(%s) = %s, want %s", tc.p, got, tc.want)
		}
	}
}

func TestClassifyYearBoundary(t *testing.T) {
	// January runs must treat last December as past and next February as
	// future even though the year differs in opposite directions.
	now := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)

	if got := Classify(Period{2020, time.December}, now); got != Past {
		t.Errorf("december of previous year = %s, want past", got)
	}
	if got := Classify(Period{2021, time.January}, now); got != Current {
		t.Errorf("january of current year = %s, want current", got)
	}
	if got := Classify(Period{2021, time.February}, now); got != Future {
		t.Errorf("february of current year = %s, want future", got)
	}
}

func TestFilenameRoundTrip(t *testing.T) {
	p := Period{Year: 2020, Month: time.March}

	if got := p.Filename(); got != "2020-03.txt.gz" {
		t.Fatalf("Filename() = %q", got)
	}

	parsed, ok := ParseFilename(p.Filename())
	if !ok {
		t.Fatalf("ParseFilename rejected %q", p.Filename())
	}
	if parsed != p {
		t.Fatalf("round trip mismatch: got %s, want %s", parsed, p)
	}
}

func TestParseFilenameRejectsStrays(t *testing.T) {
	for _, name := range []string{
		"golang.mbox",
		"2020-13.txt.gz",
		"2020-00.txt.gz",
		"2020-January.txt.gz",
		"202001.txt.gz",
		"2020-01.txt.gz.prev",
		"state.db",
	} {
		if _, ok := ParseFilename(name); ok {
			t.Errorf("ParseFilename accepted %q", name)
		}
	}
}

func TestRemoteName(t *testing.T) {
	p := Period{Year: 2020, Month: time.January}
	if got := p.RemoteName(); got != "2020-January.txt.gz" {
		t.Fatalf("RemoteName() = %q", got)
	}
}
