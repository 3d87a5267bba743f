package vm

import (
	"testing"

	"github.com/evmspec/evmcore/word"
)

func TestMemoryGrowthTracksActiveWords(t *testing.T) {
	m := newMemory()
	if m.ActiveWords() != 0 {
		t.Fatalf("ActiveWords() = %d, want 0", m.ActiveWords())
	}
	m.Store(32, word.FromUint64(1))
	if got := m.ActiveWords(); got != 2 {
		t.Errorf("ActiveWords() after Store(32,_) = %d, want 2", got)
	}
}

func TestMemoryLoadZeroPadsPastWrittenEnd(t *testing.T) {
	m := newMemory()
	got := m.Load(0)
	if !got.IsZero() {
		t.Errorf("Load(0) on fresh memory = %v, want 0", got)
	}
}

func TestMemoryCopyFromZeroPadsShortSource(t *testing.T) {
	m := newMemory()
	m.CopyFrom(0, []byte{0xaa, 0xbb}, 0, 4)
	got := m.Read(0, 4)
	want := []byte{0xaa, 0xbb, 0x00, 0x00}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("CopyFrom result = %x, want %x", got, want)
		}
	}
}
