package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/commitcraft/commitcraft/internal/pkg/hostcheck"
)

func TestResolveCount(t *testing.T) {
	tests := []struct {
		name        string
		flagChanged bool
		flagValue   int
		configured  int
		want        int
	}{
		{"flag set wins over config", true, 2, 5, 2},
		{"flag default yields configured count", false, 1, 3, 3},
		{"flag default without config keeps default", false, 1, 0, 1},
		{"negative configured count ignored", false, 1, -2, 1},
		{"flag set to one still wins", true, 1, 4, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveCount(tt.flagChanged, tt.flagValue, tt.configured)
			if got != tt.want {
				t.Errorf("resolveCount(%v, %d, %d) = %d, want %d",
					tt.flagChanged, tt.flagValue, tt.configured, got, tt.want)
			}
		})
	}
}

func TestResolveCount_ConfiguredCountAppliesWithoutFlag(t *testing.T) {
	cmd := NewCommitCmd()

	// No -n flag on the command line: the flag holds its default of 1 but
	// must not shadow a configured generation.count.
	if err := cmd.ParseFlags(nil); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	if cmd.Flags().Changed("count") {
		t.Fatal("count should not be marked changed without -n")
	}
	flagValue, err := cmd.Flags().GetInt("count")
	if err != nil {
		t.Fatalf("GetInt(count) error = %v", err)
	}
	if got := resolveCount(cmd.Flags().Changed("count"), flagValue, 3); got != 3 {
		t.Errorf("resolveCount without -n = %d, want configured 3", got)
	}

	cmd = NewCommitCmd()
	if err := cmd.ParseFlags([]string{"-n", "2"}); err != nil {
		t.Fatalf("ParseFlags(-n 2) error = %v", err)
	}
	flagValue, err = cmd.Flags().GetInt("count")
	if err != nil {
		t.Fatalf("GetInt(count) error = %v", err)
	}
	if got := resolveCount(cmd.Flags().Changed("count"), flagValue, 3); got != 2 {
		t.Errorf("resolveCount with -n 2 = %d, want 2", got)
	}
}

type fakeHostCheckRecorder struct {
	done     bool
	recorded int
	setErr   error
}

func (f *fakeHostCheckRecorder) IsHostCheckDone() bool { return f.done }

func (f *fakeHostCheckRecorder) SetHostCheckDone() error {
	f.recorded++
	return f.setErr
}

type fakeHostChecker struct {
	result  *hostcheck.Result
	err     error
	detects int
}

func (f *fakeHostChecker) Detect(ctx context.Context) (*hostcheck.Result, error) {
	f.detects++
	return f.result, f.err
}

func TestEnsureOllamaHostCheck_FirstUseRecordsResult(t *testing.T) {
	rec := &fakeHostCheckRecorder{}
	checker := &fakeHostChecker{result: &hostcheck.Result{Installed: true, BinaryPath: "/usr/bin/ollama"}}

	ensureOllamaHostCheck(context.Background(), rec, checker)

	if checker.detects != 1 {
		t.Errorf("Detect called %d times, want 1", checker.detects)
	}
	if rec.recorded != 1 {
		t.Errorf("SetHostCheckDone called %d times, want 1", rec.recorded)
	}
}

func TestEnsureOllamaHostCheck_SkipsWhenAlreadyDone(t *testing.T) {
	rec := &fakeHostCheckRecorder{done: true}
	checker := &fakeHostChecker{result: &hostcheck.Result{Installed: true}}

	ensureOllamaHostCheck(context.Background(), rec, checker)

	if checker.detects != 0 {
		t.Errorf("Detect called %d times, want 0 when already recorded", checker.detects)
	}
	if rec.recorded != 0 {
		t.Errorf("SetHostCheckDone called %d times, want 0", rec.recorded)
	}
}

func TestEnsureOllamaHostCheck_RecordsEvenWhenBinaryMissing(t *testing.T) {
	rec := &fakeHostCheckRecorder{}
	checker := &fakeHostChecker{result: &hostcheck.Result{
		Installed:    false,
		Instructions: "install ollama",
	}}

	ensureOllamaHostCheck(context.Background(), rec, checker)

	// A missing binary is guidance, not a retry condition.
	if rec.recorded != 1 {
		t.Errorf("SetHostCheckDone called %d times, want 1", rec.recorded)
	}
}

func TestEnsureOllamaHostCheck_DetectErrorLeavesStateUnset(t *testing.T) {
	rec := &fakeHostCheckRecorder{}
	checker := &fakeHostChecker{err: errors.New("boom")}

	ensureOllamaHostCheck(context.Background(), rec, checker)

	if rec.recorded != 0 {
		t.Errorf("SetHostCheckDone called %d times, want 0 on detect error", rec.recorded)
	}
}
