package sets

import "testing"

func TestSet(t *testing.T) {
	s := New("php", "hhi")
	s.Add("hh")
	s.Add("php")
	if !s.Has("hh") || s.Has("js") {
		t.Fatalf("unexpected membership: %v", s)
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 members, got %d", s.Len())
	}
	got := Sorted(s)
	want := []string{"hh", "hhi", "php"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Sorted() = %v, want %v", got, want)
		}
	}
}
