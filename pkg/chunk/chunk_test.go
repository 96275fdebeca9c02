package chunk

import "testing"

func TestPlan_Arithmetic(t *testing.T) {
	const c = 1024

	tests := []struct {
		name     string
		fileSize int64
		want     int
		lastSize int64
	}{
		{"empty", 0, 0, 0},
		{"one byte", 1, 1, 1},
		{"just under", c - 1, 1, c - 1},
		{"exact", c, 1, c},
		{"just over", c + 1, 2, 1},
		{"ten chunks", 10 * c, 10, c},
		{"ten and a half", 10*c + c/2, 11, c / 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			specs, err := Plan("f", tt.fileSize, c)
			if err != nil {
				t.Fatalf("Plan: %v", err)
			}
			if len(specs) != tt.want {
				t.Fatalf("len = %d, want %d", len(specs), tt.want)
			}
			if len(specs) == 0 {
				return
			}

			var total int64
			for i, s := range specs {
				if s.Index != uint32(i) {
					t.Errorf("specs[%d].Index = %d", i, s.Index)
				}
				total += s.Size()
			}
			if total != tt.fileSize {
				t.Errorf("sum of sizes = %d, want %d", total, tt.fileSize)
			}
			if got := specs[len(specs)-1].Size(); got != tt.lastSize {
				t.Errorf("last chunk size = %d, want %d", got, tt.lastSize)
			}
			for _, s := range specs[:len(specs)-1] {
				if s.Size() != c {
					t.Errorf("chunk %d size = %d, want %d", s.Index, s.Size(), int64(c))
				}
			}
			if !Contiguous(specs) {
				t.Error("plan is not contiguous")
			}
		})
	}
}

func TestPlan_InvalidInput(t *testing.T) {
	if _, err := Plan("f", -1, 1024); err == nil {
		t.Error("negative file size should fail")
	}
	if _, err := Plan("f", 100, 0); err == nil {
		t.Error("zero chunk size should fail")
	}
	if _, err := Plan("f", 100, -5); err == nil {
		t.Error("negative chunk size should fail")
	}
}

func TestCount(t *testing.T) {
	tests := []struct {
		fileSize, chunkSize int64
		want                uint32
	}{
		{0, 1024, 0},
		{1, 1024, 1},
		{1024, 1024, 1},
		{1025, 1024, 2},
		{10240, 1024, 10},
	}
	for _, tt := range tests {
		if got := Count(tt.fileSize, tt.chunkSize); got != tt.want {
			t.Errorf("Count(%d, %d) = %d, want %d", tt.fileSize, tt.chunkSize, got, tt.want)
		}
	}
}

func TestIndexForOffset(t *testing.T) {
	if got := IndexForOffset(0, 1024); got != 0 {
		t.Errorf("IndexForOffset(0) = %d", got)
	}
	if got := IndexForOffset(1023, 1024); got != 0 {
		t.Errorf("IndexForOffset(1023) = %d", got)
	}
	if got := IndexForOffset(1024, 1024); got != 1 {
		t.Errorf("IndexForOffset(1024) = %d", got)
	}
}

func TestAt_LastChunkClipped(t *testing.T) {
	s := At("f", 2, 2500, 1024)
	if s.Start != 2048 || s.End != 2500 {
		t.Errorf("At = [%d,%d), want [2048,2500)", s.Start, s.End)
	}
	if s.Size() != 452 {
		t.Errorf("Size = %d, want 452", s.Size())
	}
}

func TestContiguous_DetectsGapAndOverlap(t *testing.T) {
	base, _ := Plan("f", 3*1024, 1024)

	gap := []Spec{base[0], base[2]}
	if Contiguous(gap) {
		t.Error("gap not detected")
	}

	dup := []Spec{base[0], base[0]}
	if Contiguous(dup) {
		t.Error("duplicate index not detected")
	}
}

func TestSortByIndex(t *testing.T) {
	specs, _ := Plan("f", 4*1024, 1024)
	shuffled := []Spec{specs[2], specs[0], specs[3], specs[1]}
	SortByIndex(shuffled)
	for i, s := range shuffled {
		if s.Index != uint32(i) {
			t.Fatalf("pos %d has index %d after sort", i, s.Index)
		}
	}
}
