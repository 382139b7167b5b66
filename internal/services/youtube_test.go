package services

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/youtube/v3"

	"github.com/blueblud7/dailyYoutubeSummary/internal/models"
)

func quotaErr() error {
	return &googleapi.Error{Code: 403, Errors: []googleapi.ErrorItem{{Reason: "quotaExceeded"}}}
}

func TestWithRotationTriesEveryKey(t *testing.T) {
	svc, err := NewYouTubeService([]string{"key-a", "key-b", "key-c"})
	if err != nil {
		t.Fatalf("NewYouTubeService failed: %v", err)
	}

	calls := 0
	err = svc.withRotation(context.Background(), func(client *youtube.Service) error {
		calls++
		return quotaErr()
	})
	if !errors.Is(err, models.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded after exhausting the pool, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected one attempt per key, got %d", calls)
	}
}

func TestWithRotationStopsOnNonQuotaError(t *testing.T) {
	svc, err := NewYouTubeService([]string{"key-a", "key-b"})
	if err != nil {
		t.Fatalf("NewYouTubeService failed: %v", err)
	}

	calls := 0
	rotErr := errors.New("connection reset")
	err = svc.withRotation(context.Background(), func(client *youtube.Service) error {
		calls++
		return rotErr
	})
	if !errors.Is(err, rotErr) {
		t.Fatalf("expected the original error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("non-quota errors must not rotate, got %d calls", calls)
	}
}

func TestWithRotationDoesNotHoldLockDuringCall(t *testing.T) {
	svc, err := NewYouTubeService([]string{"key-a"})
	if err != nil {
		t.Fatalf("NewYouTubeService failed: %v", err)
	}

	err = svc.withRotation(context.Background(), func(client *youtube.Service) error {
		// A concurrent fetch must be able to take the lock while this
		// call is in flight.
		if !svc.mu.TryLock() {
			t.Error("service lock held during the API call")
			return nil
		}
		svc.mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("withRotation failed: %v", err)
	}
}

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"PT1H2M3S", 3723},
		{"PT15M", 900},
		{"PT45S", 45},
		{"PT2H", 7200},
		{"PT1H30S", 3630},
		{"PT0S", 0},
		{"", 0},
		{"P1D", 0},
		{"garbage", 0},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			if got := parseISODuration(tc.input); got != tc.want {
				t.Errorf("parseISODuration(%q) = %d, want %d", tc.input, got, tc.want)
			}
		})
	}
}

func TestDedupeIDs(t *testing.T) {
	got := dedupeIDs([]string{"a", "b", "a", "c", "b", "a"})
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %d IDs, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestIsQuotaExceeded(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			"403 quotaExceeded",
			&googleapi.Error{Code: 403, Errors: []googleapi.ErrorItem{{Reason: "quotaExceeded"}}},
			true,
		},
		{
			"403 dailyLimitExceeded",
			&googleapi.Error{Code: 403, Errors: []googleapi.ErrorItem{{Reason: "dailyLimitExceeded"}}},
			true,
		},
		{
			"429",
			&googleapi.Error{Code: 429},
			true,
		},
		{
			"403 forbidden for another reason",
			&googleapi.Error{Code: 403, Errors: []googleapi.ErrorItem{{Reason: "forbidden"}}},
			false,
		},
		{
			"404",
			&googleapi.Error{Code: 404},
			false,
		},
		{
			"plain error",
			errors.New("connection reset"),
			false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := isQuotaExceeded(tc.err); got != tc.want {
				t.Errorf("isQuotaExceeded = %v, want %v", got, tc.want)
			}
		})
	}
}
