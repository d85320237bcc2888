package minio

import "testing"

func TestObjectURL(t *testing.T) {
	cases := []struct {
		base, bucket, object, want string
	}{
		{"http://cdn.local/", "recipes", "/2024/a.webp", "http://cdn.local/recipes/2024/a.webp"},
		{"https://files.example.com", "/recipes/", "b.jpg", "https://files.example.com/recipes/b.jpg"},
		{"   ", "recipes", "c.png", ""},
	}
	for _, tc := range cases {
		if got := ObjectURL(tc.base, tc.bucket, tc.object); got != tc.want {
			t.Fatalf("ObjectURL(%q, %q, %q) = %q, want %q", tc.base, tc.bucket, tc.object, got, tc.want)
		}
	}
}
