package observer

import "testing"

func TestAssetKind(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"uploads/img_abc.png", "image"},
		{"uploads/photo.JPG", "image"},
		{"uploads/veo_abc.mp4", "video"},
		{"uploads/doc_abc.pdf", "pdf"},
		{"uploads/notes.txt", ""},
		{"uploads/noext", ""},
	}
	for _, tc := range cases {
		if got := AssetKind(tc.path); got != tc.want {
			t.Errorf("AssetKind(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}
