package bytesize

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want ByteSize
	}{
		{"0", 0},
		{"1024", 1024},
		{"1Ki", KiB},
		{"1KiB", KiB},
		{"1Mi", MiB},
		{"64Mi", 64 * MiB},
		{"1MB", MB},
		{"1.5Mi", MiB + 512*KiB},
		{"2Gi", 2 * GiB},
		{"  512 Ki ", 512 * KiB},
		{"100b", 100},
	}

	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "1X", "Mi", "-5Ki", "1..2Mi"} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) should fail", in)
		}
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		in   ByteSize
		want string
	}{
		{512, "512B"},
		{KiB, "1.00KiB"},
		{MiB, "1.00MiB"},
		{3 * GiB / 2, "1.50GiB"},
	}

	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", uint64(tt.in), got, tt.want)
		}
	}
}

func TestUnmarshalText(t *testing.T) {
	var b ByteSize
	if err := b.UnmarshalText([]byte("4Mi")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if b != 4*MiB {
		t.Errorf("UnmarshalText = %d, want %d", b, 4*MiB)
	}
}
