package booking

import (
	"testing"
)

func TestNormalizeDate_CanonicalForms(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"2024-06-01", "2024-06-01"},
		{"2024-06-01T10:00:00Z", "2024-06-01"},
		{"2024-06-01T00:00:00.000Z", "2024-06-01"},
		{"2024-06-01 15:04:05", "2024-06-01"},
	}
	for _, tc := range cases {
		got, err := NormalizeDate(tc.raw)
		if err != nil {
			t.Fatalf("NormalizeDate(%q): unexpected error: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizeDate_Invalid(t *testing.T) {
	for _, raw := range []string{"", "June 1st", "01/06/2024", "2024-13-40"} {
		_, err := NormalizeDate(raw)
		if err == nil {
			t.Errorf("NormalizeDate(%q): expected error", raw)
			continue
		}
		be, ok := AsError(err)
		if !ok || be.Code != CodeInvalid {
			t.Errorf("NormalizeDate(%q): expected invalid error, got %v", raw, err)
		}
	}
}

func TestNormalizeTime(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"10:00", "10:00"},
		{"9:30", "09:30"},
		{" 14:45 ", "14:45"},
	}
	for _, tc := range cases {
		got, err := NormalizeTime(tc.raw)
		if err != nil {
			t.Fatalf("NormalizeTime(%q): unexpected error: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Errorf("NormalizeTime(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizeTime_Invalid(t *testing.T) {
	for _, raw := range []string{"", "25:00", "10:60", "noon"} {
		if _, err := NormalizeTime(raw); err == nil {
			t.Errorf("NormalizeTime(%q): expected error", raw)
		}
	}
}

func TestNormalizeSlot_SameSlotSameKeys(t *testing.T) {
	d1, t1, err := NormalizeSlot("2024-06-01T00:00:00.000Z", "10:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d2, t2, err := NormalizeSlot("2024-06-01", "10:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d1 != d2 || t1 != t2 {
		t.Errorf("equivalent slots normalized differently: (%q,%q) vs (%q,%q)", d1, t1, d2, t2)
	}
}

func TestSlotKey(t *testing.T) {
	got := SlotKey("doc-1", "2024-06-01", "10:00")
	want := "doc-1@2024-06-01@10:00"
	if got != want {
		t.Errorf("SlotKey = %q, want %q", got, want)
	}
}

func TestDisplayDate(t *testing.T) {
	if got := DisplayDate("2024-06-01"); got != "01-06-2024" {
		t.Errorf("DisplayDate = %q, want %q", got, "01-06-2024")
	}
}
