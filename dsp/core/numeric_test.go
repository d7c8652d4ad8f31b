package core

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name            string
		value, min, max float64
		want            float64
	}{
		{"inside", 0.5, 0, 1, 0.5},
		{"below", -2, 0, 1, 0},
		{"above", 3, 0, 1, 1},
		{"swapped bounds", 0.5, 1, 0, 0.5},
		{"at lower bound", 0, 0, 1, 0},
		{"at upper bound", 1, 0, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.value, tt.min, tt.max); got != tt.want {
				t.Errorf("Clamp(%f, %f, %f) = %f, want %f", tt.value, tt.min, tt.max, got, tt.want)
			}
		})
	}
}

func TestLerp(t *testing.T) {
	tests := []struct {
		name    string
		a, b, t float64
		want    float64
	}{
		{"at a", 2, 6, 0, 2},
		{"at b", 2, 6, 1, 6},
		{"midpoint", 2, 6, 0.5, 4},
		{"beyond b", 0, 1, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Lerp(tt.a, tt.b, tt.t); got != tt.want {
				t.Errorf("Lerp(%f, %f, %f) = %f, want %f", tt.a, tt.b, tt.t, got, tt.want)
			}
		})
	}
}

func TestDBConversions(t *testing.T) {
	tests := []struct {
		db  float64
		lin float64
	}{
		{0, 1},
		{20, 10},
		{-20, 0.1},
		{6.020599913279624, 2},
	}

	for _, tt := range tests {
		if got := DBToLinear(tt.db); !NearlyEqual(got, tt.lin, 1e-12) {
			t.Errorf("DBToLinear(%f) = %g, want %g", tt.db, got, tt.lin)
		}

		if got := LinearToDB(tt.lin); !NearlyEqual(got, tt.db, 1e-9) {
			t.Errorf("LinearToDB(%g) = %f, want %f", tt.lin, got, tt.db)
		}
	}

	if !math.IsInf(LinearToDB(0), -1) {
		t.Error("LinearToDB(0) should be -Inf")
	}

	if !math.IsNaN(LinearToDB(-1)) {
		t.Error("LinearToDB(-1) should be NaN")
	}
}

func TestNearlyEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
		eps  float64
		want bool
	}{
		{"identical", 1, 1, 1e-12, true},
		{"tiny difference", 1, 1 + 1e-13, 1e-12, true},
		{"relative difference", 1e9, 1e9 + 1, 1e-6, true},
		{"clear difference", 1, 2, 1e-6, false},
		{"both zero", 0, 0, 1e-12, true},
		{"default epsilon", 1, 1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NearlyEqual(tt.a, tt.b, tt.eps); got != tt.want {
				t.Errorf("NearlyEqual(%g, %g, %g) = %v, want %v", tt.a, tt.b, tt.eps, got, tt.want)
			}
		})
	}
}
