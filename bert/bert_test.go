package bert

import "testing"

// TestValidatorZeroErrorOnOwnSequence exercises invariant 5: feeding the
// generator's own output to a validator seeded to the same initial state
// yields 0 errors over a long run once synchronized.
func TestValidatorZeroErrorOnOwnSequence(t *testing.T) {
	gen := NewGenerator()
	val := NewValidator()

	for i := 0; i < 5*period; i++ {
		val.Push(gen.Next())
	}

	if !val.Synced() {
		t.Fatal("validator never reached sync on a clean PRBS-9 stream")
	}
	if val.Errors != 0 {
		t.Fatalf("validator reported %d errors on its own generator's output", val.Errors)
	}
	if val.BER() != 0 {
		t.Fatalf("BER = %v, want 0", val.BER())
	}
}

func TestValidatorSyncsAfterRun(t *testing.T) {
	gen := NewGenerator()
	val := NewValidator()

	for i := 0; i < syncRun-1; i++ {
		if val.Synced() {
			t.Fatalf("validator synced early, after %d bits", i)
		}
		val.Push(gen.Next())
	}
	val.Push(gen.Next())
	if !val.Synced() {
		t.Fatalf("validator not synced after %d matching bits", syncRun)
	}
}

func TestValidatorResetClearsState(t *testing.T) {
	gen := NewGenerator()
	val := NewValidator()
	for i := 0; i < syncRun+5; i++ {
		val.Push(gen.Next())
	}
	if !val.Synced() || val.Bits == 0 {
		t.Fatal("setup failed to reach synced, nonzero state")
	}

	val.Reset()
	if val.Synced() || val.Bits != 0 || val.Errors != 0 {
		t.Fatal("Reset did not clear validator state")
	}
}

func TestValidatorDetectsErrors(t *testing.T) {
	gen := NewGenerator()
	val := NewValidator()

	for i := 0; i < syncRun+10; i++ {
		val.Push(gen.Next())
	}
	if !val.Synced() {
		t.Fatal("setup failed to reach sync")
	}

	errorsBefore := val.Errors
	val.Push(1 - gen.Next()) // flip one bit
	if val.Errors != errorsBefore+1 {
		t.Fatalf("flipped bit not counted as error")
	}
}
