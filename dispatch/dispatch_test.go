package dispatch

import (
	"errors"
	"testing"

	"github.com/gogpu/cvcore/cverr"
)

func TestDoCpuSelection(t *testing.T) {
	gpuCalled := false
	op := Op[int]{
		Name: "test_op",
		Cpu:  func() (int, error) { return 1, nil },
		Gpu:  func() (int, error) { gpuCalled = true; return 2, nil },
	}

	got, err := Do(Cpu, op)
	if err != nil {
		t.Fatalf("Do(Cpu) error = %v", err)
	}
	if got != 1 {
		t.Errorf("Do(Cpu) = %d, want 1 (cpu result)", got)
	}
	if gpuCalled {
		t.Error("Do(Cpu) must not invoke the GPU path")
	}
}

func TestDoGpuSelectionNoFallback(t *testing.T) {
	cpuCalled := false
	op := Op[int]{
		Name: "test_op",
		Cpu:  func() (int, error) { cpuCalled = true; return 1, nil },
		Gpu:  func() (int, error) { return 0, cverr.New(cverr.GpuUnavailable, "test_op", "no device") },
	}

	_, err := Do(Gpu, op)
	if err == nil {
		t.Fatal("Do(Gpu) with failing GPU path should return an error")
	}
	if cpuCalled {
		t.Error("Do(Gpu) must never fall back to CPU")
	}
}

func TestDoAutoFallsBackOnGpuUnavailable(t *testing.T) {
	op := Op[int]{
		Name: "test_op",
		Cpu:  func() (int, error) { return 42, nil },
		Gpu:  func() (int, error) { return 0, cverr.New(cverr.GpuUnavailable, "test_op", "no device") },
	}

	got, err := Do(Auto, op)
	if err != nil {
		t.Fatalf("Do(Auto) error = %v", err)
	}
	if got != 42 {
		t.Errorf("Do(Auto) = %d, want 42 (cpu fallback result)", got)
	}
}

func TestDoAutoFallsBackOnGpuCompileAndDispatch(t *testing.T) {
	for _, kind := range []cverr.Kind{cverr.GpuCompile, cverr.GpuDispatch} {
		op := Op[int]{
			Name: "test_op",
			Cpu:  func() (int, error) { return 7, nil },
			Gpu:  func() (int, error) { return 0, cverr.New(kind, "test_op", "failed") },
		}
		got, err := Do(Auto, op)
		if err != nil {
			t.Fatalf("Do(Auto) with kind %v: error = %v", kind, err)
		}
		if got != 7 {
			t.Errorf("Do(Auto) with kind %v = %d, want 7", kind, got)
		}
	}
}

func TestDoAutoDoesNotFallBackOnInputErrors(t *testing.T) {
	for _, kind := range []cverr.Kind{cverr.InvalidInput, cverr.UnsupportedDepth, cverr.UnsupportedChannels, cverr.NumericOverflow} {
		cpuCalled := false
		wantErr := cverr.New(kind, "test_op", "bad input")
		op := Op[int]{
			Name: "test_op",
			Cpu:  func() (int, error) { cpuCalled = true; return 1, nil },
			Gpu:  func() (int, error) { return 0, wantErr },
		}
		_, err := Do(Auto, op)
		if !errors.Is(err, wantErr) && err != wantErr {
			t.Errorf("Do(Auto) with kind %v should surface the GPU error unchanged, got %v", kind, err)
		}
		if cpuCalled {
			t.Errorf("Do(Auto) with kind %v must not fall back", kind)
		}
	}
}

func TestDoNoGpuPathAlwaysUsesCpu(t *testing.T) {
	op := Op[int]{
		Name: "cpu_only_op",
		Cpu:  func() (int, error) { return 9, nil },
		Gpu:  nil,
	}

	for _, sel := range []Backend{Auto, Cpu, Gpu} {
		got, err := Do(sel, op)
		if err != nil {
			t.Fatalf("Do(%v) with no GPU path: error = %v", sel, err)
		}
		if got != 9 {
			t.Errorf("Do(%v) with no GPU path = %d, want 9", sel, got)
		}
	}
}

func TestDefaultSelection(t *testing.T) {
	orig := Default()
	t.Cleanup(func() { SetDefault(orig) })

	SetDefault(Gpu)
	if Default() != Gpu {
		t.Errorf("Default() = %v, want Gpu", Default())
	}

	SetDefault(Auto)
	if Default() != Auto {
		t.Errorf("Default() = %v, want Auto", Default())
	}
}

func TestBackendString(t *testing.T) {
	cases := map[Backend]string{Auto: "auto", Cpu: "cpu", Gpu: "gpu"}
	for b, want := range cases {
		if got := b.String(); got != want {
			t.Errorf("Backend(%d).String() = %q, want %q", b, got, want)
		}
	}
}
