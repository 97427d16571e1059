package framer

import (
	"math/rand"
	"testing"
)

// TestInterleaveBijection exercises invariant 2: the polynomial mapping
// is a permutation of [0, 368), and forward followed by inverse is the
// identity.
func TestInterleaveBijection(t *testing.T) {
	seen := make([]bool, FrameBits)
	for _, src := range interleaveMap {
		if seen[src] {
			t.Fatalf("interleaveMap is not a bijection: %d seen twice", src)
		}
		seen[src] = true
	}

	bits := make([]bool, FrameBits)
	for i := range bits {
		bits[i] = rand.Intn(2) == 1
	}

	inter := Interleave(bits)
	back := Deinterleave(inter)
	for i := range bits {
		if back[i] != bits[i] {
			t.Fatalf("deinterleave(interleave(x)) != x at bit %d", i)
		}
	}
}

// TestInterleaveGolden checks a handful of known M17 interleaver source
// positions.
func TestInterleaveGolden(t *testing.T) {
	want := map[int]int{0: 0, 1: 137, 2: 90, 3: 227, 4: 180, 5: 317}
	for i, src := range want {
		if interleaveMap[i] != src {
			t.Fatalf("interleaveMap[%d] = %d, want %d", i, interleaveMap[i], src)
		}
	}
}

// TestRandomizerSelfInverse exercises invariant 1: applying the
// randomizer twice yields the input.
func TestRandomizerSelfInverse(t *testing.T) {
	body := make([]byte, 46)
	rand.Read(body)

	once := Derandomize(body)
	twice := Derandomize(once)

	for i := range body {
		if twice[i] != body[i] {
			t.Fatalf("randomizer not self-inverse at byte %d: %02X != %02X", i, twice[i], body[i])
		}
	}
}

func TestDerandomizeBitsSelfInverse(t *testing.T) {
	bits := make([]bool, FrameBits)
	for i := range bits {
		bits[i] = rand.Intn(2) == 1
	}

	once := DerandomizeBits(bits)
	twice := DerandomizeBits(once)

	for i := range bits {
		if twice[i] != bits[i] {
			t.Fatalf("bit randomizer not self-inverse at bit %d", i)
		}
	}
}

func TestFramerAccumulatesExactFrame(t *testing.T) {
	f := NewFramer()
	if f.State() != Unlocked {
		t.Fatalf("new Framer not Unlocked")
	}

	f.Sync(SyncLSF, true)
	if f.State() != Synced {
		t.Fatalf("Sync did not transition to Synced")
	}

	var body []bool
	var kind SyncKind
	var ok bool
	for i := 0; i < FrameBits/2-1; i++ {
		body, kind, ok = f.Push(true, false)
		if ok {
			t.Fatalf("frame completed early at symbol %d", i)
		}
	}

	body, kind, ok = f.Push(true, false)
	if !ok {
		t.Fatal("frame did not complete after FrameBits/2 symbols")
	}
	if len(body) != FrameBits {
		t.Fatalf("completed frame has %d bits, want %d", len(body), FrameBits)
	}
	if kind != SyncLSF {
		t.Fatalf("completed frame kind = %s, want LSF", kind)
	}
	if f.State() != Unlocked {
		t.Fatal("Framer did not return to Unlocked after emitting frame")
	}
}

func TestFramerSyncIgnoredWhileSynced(t *testing.T) {
	f := NewFramer()
	f.Sync(SyncLSF, true)
	f.Push(true, true)
	f.Sync(SyncStream, true) // must be ignored; still accumulating LSF

	for i := 0; i < FrameBits/2-2; i++ {
		f.Push(false, false)
	}
	_, kind, ok := f.Push(false, false)
	if !ok || kind != SyncLSF {
		t.Fatalf("mid-frame Sync call corrupted frame kind: got %s ok=%v", kind, ok)
	}
}

func TestFramerUnlocksAfterSustainedDCDLoss(t *testing.T) {
	f := NewFramer()
	f.Sync(SyncPacket, true)
	f.Push(true, false)

	f.TickDCD(false)
	if f.State() != Synced {
		t.Fatal("single DCD-false tick unlocked the framer early")
	}
	f.TickDCD(false)
	f.TickDCD(false)
	if f.State() != Unlocked {
		t.Fatal("framer did not unlock after sustained DCD loss")
	}
}

func TestFramerIgnoresSyncWithoutDCD(t *testing.T) {
	f := NewFramer()
	f.Sync(SyncLSF, false)
	if f.State() != Unlocked {
		t.Fatal("Sync without DCD should not lock the framer")
	}
}
