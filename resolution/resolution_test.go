package resolution

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Resolution
		wantErr bool
	}{
		{"1920x1080", Resolution{1920, 1080}, false},
		{"640:480", Resolution{640, 480}, false},
		{" 720P ", Resolution{1280, 720}, false},
		{"480p", Resolution{854, 480}, false},
		{"", Resolution{}, false},
		{"999p", Resolution{}, true},
		{"axb", Resolution{}, true},
		{"0x480", Resolution{}, true},
		{"640x480x3", Resolution{}, true},
		{"huge", Resolution{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatting(t *testing.T) {
	r := New(320, 240)
	if r.String() != "320x240" {
		t.Errorf("Unexpected String(): %s", r.String())
	}
	if r.ScaleFilter() != "scale=320:240" {
		t.Errorf("Unexpected ScaleFilter(): %s", r.ScaleFilter())
	}
	if r.AspectRatio() != 320.0/240.0 {
		t.Errorf("Unexpected aspect ratio: %v", r.AspectRatio())
	}
	if !r.Valid() || r.IsEmpty() {
		t.Error("Expected a valid, non-empty resolution")
	}
	if EmptyResolution().Valid() || !EmptyResolution().IsEmpty() {
		t.Error("Expected the empty resolution to be empty and invalid")
	}
}
