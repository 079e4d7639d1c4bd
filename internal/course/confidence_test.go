package course

import "testing"

func TestIsLowConfidence(t *testing.T) {
	cases := []struct {
		accuracy float64
		explicit bool
		want     bool
	}{
		{100, false, false},
		{80, false, false},
		{79.99, false, true},
		{0, false, true},
		{95, true, true},
		{80, true, true},
	}
	for _, tc := range cases {
		if got := IsLowConfidence(tc.accuracy, tc.explicit); got != tc.want {
			t.Fatalf("IsLowConfidence(%v, %v) = %v, want %v", tc.accuracy, tc.explicit, got, tc.want)
		}
	}
}
