package recommend

import "testing"

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"lowercase passthrough", "matrix", "matrix"},
		{"uppercase folded", "The MATRIX", "thematrix"},
		{"punctuation stripped", "WALL·E", "walle"},
		{"hyphens stripped", "Wall-E", "walle"},
		{"digits kept", "Blade Runner 2049", "bladerunner2049"},
		{"accents kept", "Amélie", "amélie"},
		{"ampersand stripped", "Law & Order", "laworder"},
		{"colon and spaces stripped", "Mission: Impossible", "missionimpossible"},
		{"only punctuation", "!!!...", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTitle(tt.title); got != tt.want {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestNormalizeTitleIdempotent(t *testing.T) {
	titles := []string{"The MATRIX", "WALL·E", "Blade Runner 2049", "Amélie"}
	for _, title := range titles {
		once := NormalizeTitle(title)
		twice := NormalizeTitle(once)
		if once != twice {
			t.Errorf("normalization not idempotent for %q: %q != %q", title, once, twice)
		}
	}
}

func TestClassifyKind(t *testing.T) {
	tests := []struct {
		label string
		want  MediaKind
	}{
		{"tv", KindSeries},
		{"TV", KindSeries},
		{"tv show", KindSeries},
		{"TV Show", KindSeries},
		{"show", KindSeries},
		{"series", KindSeries},
		{"Limited Series", KindSeries},
		{"movie", KindMovie},
		{"Movie", KindMovie},
		{"film", KindMovie},
		{"documentary", KindMovie},
		{"", KindMovie},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := ClassifyKind(tt.label); got != tt.want {
				t.Errorf("ClassifyKind(%q) = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}

func TestMediaKindExternal(t *testing.T) {
	if got := KindSeries.External(); got != "tv" {
		t.Errorf("KindSeries.External() = %q, want tv", got)
	}
	if got := KindMovie.External(); got != "movie" {
		t.Errorf("KindMovie.External() = %q, want movie", got)
	}
}
