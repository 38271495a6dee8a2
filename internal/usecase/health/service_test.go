package health

import (
	"context"
	"errors"
	"testing"
)

type stubPinger struct{ err error }

func (s *stubPinger) Ping(_ context.Context) error { return s.err }

type stubChecker struct{ err error }

func (s *stubChecker) HealthCheck(_ context.Context) error { return s.err }

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&stubPinger{}, &stubChecker{})

	report := svc.Check(context.Background())
	if report.Status != Healthy {
		t.Errorf("Status = %q", report.Status)
	}
	if report.Checks["cache"] != CheckOK || report.Checks["model"] != CheckOK {
		t.Errorf("Checks = %v", report.Checks)
	}
}

func TestCheck_CacheDown(t *testing.T) {
	svc := New(&stubPinger{err: errors.New("refused")}, &stubChecker{})

	report := svc.Check(context.Background())
	if report.Status != Degraded {
		t.Errorf("Status = %q, want degraded", report.Status)
	}
	if report.Checks["cache"] != CheckError {
		t.Errorf("cache check = %q", report.Checks["cache"])
	}
}

func TestCheck_NilDependenciesSkipped(t *testing.T) {
	svc := New(nil, nil)

	report := svc.Check(context.Background())
	if report.Status != Healthy {
		t.Errorf("Status = %q", report.Status)
	}
	if len(report.Checks) != 0 {
		t.Errorf("Checks = %v, want empty", report.Checks)
	}
}
