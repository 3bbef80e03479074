package platform

import "testing"

func TestRelocate(t *testing.T) {
	left := Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	right := Rect{X: 1920, Y: 0, Width: 2560, Height: 1440}
	small := Rect{X: 1920, Y: 0, Width: 1280, Height: 720}

	tests := []struct {
		name     string
		win      Rect
		from, to Rect
		want     Rect
	}{
		{
			name: "keeps offset",
			win:  Rect{X: 100, Y: 50, Width: 800, Height: 600},
			from: left, to: right,
			want: Rect{X: 2020, Y: 50, Width: 800, Height: 600},
		},
		{
			name: "moves back",
			win:  Rect{X: 2020, Y: 50, Width: 800, Height: 600},
			from: right, to: left,
			want: Rect{X: 100, Y: 50, Width: 800, Height: 600},
		},
		{
			name: "pushed inside when overflowing",
			win:  Rect{X: 1000, Y: 400, Width: 800, Height: 600},
			from: left, to: small,
			want: Rect{X: 2400, Y: 120, Width: 800, Height: 600},
		},
		{
			name: "clamped when larger than target",
			win:  Rect{X: 0, Y: 0, Width: 1920, Height: 1080},
			from: left, to: small,
			want: Rect{X: 1920, Y: 0, Width: 1280, Height: 720},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Relocate(tt.win, tt.from, tt.to); got != tt.want {
				t.Errorf("Relocate(%+v) = %+v, want %+v", tt.win, got, tt.want)
			}
		})
	}
}

func TestRectCenter(t *testing.T) {
	tests := []struct {
		r    Rect
		want Point
	}{
		{Rect{X: 0, Y: 0, Width: 1920, Height: 1080}, Point{X: 960, Y: 540}},
		{Rect{X: 1920, Y: 0, Width: 2560, Height: 1440}, Point{X: 3200, Y: 720}},
		{Rect{X: 0, Y: 0, Width: 1365, Height: 767}, Point{X: 682, Y: 383}},
		{Rect{X: -1280, Y: 0, Width: 1280, Height: 1024}, Point{X: -640, Y: 512}},
	}
	for _, tt := range tests {
		if got := tt.r.Center(); got != tt.want {
			t.Errorf("%+v.Center() = %+v, want %+v", tt.r, got, tt.want)
		}
	}
}
