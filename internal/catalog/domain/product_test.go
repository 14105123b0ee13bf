package domain

import "testing"

func TestImagesFirst(t *testing.T) {
	tests := []struct {
		name   string
		images Images
		want   string
		ok     bool
	}{
		{name: "nil", images: nil},
		{name: "empty", images: Images{}},
		{name: "blank urls only", images: Images{{URL: ""}}},
		{name: "first wins", images: Images{{URL: "a.png"}, {URL: "b.png"}}, want: "a.png", ok: true},
		{name: "skips blank", images: Images{{URL: ""}, {URL: "b.png"}}, want: "b.png", ok: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.images.First()
			if ok != tt.ok || got.URL != tt.want {
				t.Fatalf("First() = %q, %v; want %q, %v", got.URL, ok, tt.want, tt.ok)
			}
		})
	}
}
