package domain

import "testing"

func TestWorstHealthStatus(t *testing.T) {
	cases := []struct {
		in   []string
		want string
	}{
		{nil, HealthStatusOK},
		{[]string{HealthStatusOK, ""}, HealthStatusOK},
		{[]string{HealthStatusOK, HealthStatusDegraded}, HealthStatusDegraded},
		{[]string{HealthStatusError, HealthStatusDegraded}, HealthStatusError},
		{[]string{"warming"}, HealthStatusDegraded},
	}
	for _, tc := range cases {
		if got := WorstHealthStatus(tc.in...); got != tc.want {
			t.Fatalf("WorstHealthStatus(%v) = %s, want %s", tc.in, got, tc.want)
		}
	}
}
