package services

import (
	"math"
	"testing"
)

func TestTokenOverlapRatio(t *testing.T) {
	cases := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"identical", "the quick brown fox", "the quick brown fox", 1.0},
		{"disjoint", "alpha beta gamma", "one two three", 0.0},
		{"half overlap", "a b c d", "c d e f", 1.0 / 3.0},
		{"case and punctuation ignored", "Hello, World!", "hello world", 1.0},
		{"empty left", "", "something", 0.0},
		{"both empty", "", "", 0.0},
		{"repeated tokens collapse", "spam spam spam", "spam", 1.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := TokenOverlapRatio(tc.a, tc.b)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("TokenOverlapRatio(%q, %q) = %.4f, want %.4f", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestPopulationVariance(t *testing.T) {
	cases := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single value", []float64{42}, 0},
		{"constant series", []float64{5, 5, 5, 5}, 0},
		{"known variance", []float64{2, 4, 4, 4, 5, 5, 7, 9}, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PopulationVariance(tc.values)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("PopulationVariance(%v) = %.4f, want %.4f", tc.values, got, tc.want)
			}
		})
	}
}

func TestClampUnit(t *testing.T) {
	if got := clampUnit(-0.5); got != 0 {
		t.Fatalf("expected 0, got %.2f", got)
	}
	if got := clampUnit(1.5); got != 1 {
		t.Fatalf("expected 1, got %.2f", got)
	}
	if got := clampUnit(0.42); got != 0.42 {
		t.Fatalf("expected passthrough, got %.2f", got)
	}
}
