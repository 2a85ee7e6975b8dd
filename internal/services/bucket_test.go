package services

import "testing"

func TestEvidenceTypeOf(t *testing.T) {
	cases := []struct {
		name        string
		contentType string
		want        string
	}{
		{name: "jpeg", contentType: "image/jpeg", want: "image"},
		{name: "png", contentType: "image/png", want: "image"},
		{name: "gif", contentType: "image/gif", want: "image"},
		{name: "pdf", contentType: "application/pdf", want: "document"},
		{name: "empty", contentType: "", want: "document"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := EvidenceTypeOf(tc.contentType); got != tc.want {
				t.Fatalf("EvidenceTypeOf(%q) = %q, want %q", tc.contentType, got, tc.want)
			}
		})
	}
}

func TestValidateEvidenceUpload(t *testing.T) {
	cases := []struct {
		name        string
		count       int
		size        int64
		contentType string
		wantErr     bool
	}{
		{name: "valid image", count: 1, size: 1024, contentType: "image/png"},
		{name: "valid pdf at limit", count: MaxEvidenceFiles, size: MaxEvidenceFileSize, contentType: "application/pdf"},
		{name: "too many files", count: MaxEvidenceFiles + 1, size: 1024, contentType: "image/png", wantErr: true},
		{name: "file too large", count: 1, size: MaxEvidenceFileSize + 1, contentType: "image/png", wantErr: true},
		{name: "unsupported type", count: 1, size: 1024, contentType: "video/mp4", wantErr: true},
		{name: "unsupported svg", count: 1, size: 1024, contentType: "image/svg+xml", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateEvidenceUpload(tc.count, tc.size, tc.contentType)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
