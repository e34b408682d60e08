package gridref

import (
	"errors"
	"sync"
	"testing"
)

func TestLetters(t *testing.T) {
	tests := []struct {
		ref  Ref
		want string
	}{
		{Ref{0, 0}, "SV"},
		{Ref{544912, 258437}, "TL"},
		{Ref{325000, 673000}, "NT"},
		{Ref{450000, 1210000}, "HP"},
	}
	for _, tt := range tests {
		got, err := tt.ref.Letters()
		if err != nil || got != tt.want {
			t.Errorf("Letters(%v) = %q, %v; want %q", tt.ref, got, err, tt.want)
		}
	}
	if _, err := (Ref{-1, 5}).Letters(); !errors.Is(err, ErrOutsideGrid) {
		t.Errorf("expected ErrOutsideGrid, got %v", err)
	}
}

func TestFormat(t *testing.T) {
	r := Ref{Easting: 544912, Northing: 258437}
	tests := map[int]string{
		2:  "TL 4 5",
		6:  "TL 449 584",
		10: "TL 44912 58437",
	}
	for digits, want := range tests {
		got, err := r.Format(digits)
		if err != nil || got != want {
			t.Errorf("Format(%d) = %q, %v; want %q", digits, got, err, want)
		}
	}
	if _, err := r.Format(7); err == nil {
		t.Error("expected an error for an odd precision")
	}
	if got := (Ref{Easting: 512345, Northing: 203456}).String(); got != "TL 12345 03456" {
		t.Errorf("String() = %q", got)
	}
}

func TestConvertCambridge(t *testing.T) {
	var c Converter
	var wg sync.WaitGroup
	refs := make([]Ref, 4)
	errs := make([]error, 4)
	for i := range refs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			refs[i], errs[i] = c.Convert(52.2053, 0.1218)
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("Convert %d: %v", i, err)
		}
		if refs[i] != refs[0] {
			t.Errorf("concurrent conversions disagree: %v and %v", refs[i], refs[0])
		}
	}
	r := refs[0]
	if r.Easting < 540000 || r.Easting >= 550000 || r.Northing < 250000 || r.Northing >= 260000 {
		t.Errorf("Cambridge converted to %v, expected TL 4x 5x", r)
	}
	if s, _ := r.Format(2); s != "TL 4 5" {
		t.Errorf("got %q", s)
	}
}

func TestConvertOutsideGrid(t *testing.T) {
	if _, err := Convert(0, 0); !errors.Is(err, ErrOutsideGrid) {
		t.Errorf("expected ErrOutsideGrid, got %v", err)
	}
}
