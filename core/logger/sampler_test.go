package logger

import "testing"

func TestRatioSamplerWindow(t *testing.T) {
	s := newRatioSampler(2, 5)

	var allowed int
	for i := 0; i < 10; i++ {
		if s.Allow() {
			allowed++
		}
	}
	if allowed != 4 {
		t.Fatalf("allowed = %d over two windows, want 4", allowed)
	}
}

func TestRatioSamplerDisabled(t *testing.T) {
	s := newRatioSampler(0, 0)
	for i := 0; i < 3; i++ {
		if !s.Allow() {
			t.Fatal("zeroed sampler must allow everything")
		}
	}
}

func TestParseRatioSpec(t *testing.T) {
	cases := []struct {
		spec     string
		num, den int
	}{
		{"1/50", 1, 50},
		{"3 / 10", 3, 10},
		{"25", 1, 25},
		{"", 0, 0},
		{"garbage", 0, 0},
		{"-4", 0, 0},
	}
	for _, tc := range cases {
		num, den := parseRatioSpec(tc.spec)
		if num != tc.num || den != tc.den {
			t.Fatalf("parseRatioSpec(%q) = %d/%d, want %d/%d", tc.spec, num, den, tc.num, tc.den)
		}
	}
}
