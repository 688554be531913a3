package logging

import (
	"log/slog"
	"testing"
)

func TestWithCommon(t *testing.T) {
	base := []slog.Attr{slog.String(FieldDetail, "boxscore")}
	tests := []struct {
		name, service, version string
		wantKeys               []string
	}{
		{"both", "nhlapi", "dev", []string{FieldDetail, FieldService, FieldVersion}},
		{"service only", "nhlapi", "", []string{FieldDetail, FieldService}},
		{"neither", "", "", []string{FieldDetail}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WithCommon(append([]slog.Attr(nil), base...), tt.service, tt.version)
			if len(got) != len(tt.wantKeys) {
				t.Fatalf("expected %d attrs, got %+v", len(tt.wantKeys), got)
			}
			for i, key := range tt.wantKeys {
				if got[i].Key != key {
					t.Fatalf("attr %d: expected key %q, got %q", i, key, got[i].Key)
				}
			}
		})
	}
}
