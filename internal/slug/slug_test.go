package slug

import (
	"strings"
	"testing"
)

func TestMake(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Inflación de junio: qué dicen los números", "inflacion-de-junio-que-dicen-los-numeros"},
		{"El Niño llegó al país", "el-nino-llego-al-pais"},
		{"  Hola   Mundo  ", "hola-mundo"},
		{"100% real, no fake", "100-real-no-fake"},
		{"¿Qué pasó?", "que-paso"},
		{"", ""},
		{"---", ""},
	}

	for _, tc := range tests {
		if got := Make(tc.in); got != tc.want {
			t.Errorf("Make(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMakeTruncatesAtWordBoundary(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("palabra ", 30)
	got := Make(long)
	if len(got) > maxLength {
		t.Fatalf("slug length %d exceeds %d", len(got), maxLength)
	}
	if strings.HasSuffix(got, "-") {
		t.Fatalf("slug %q ends with a hyphen", got)
	}
	if strings.Contains(got, "palabr-") {
		t.Fatalf("slug %q truncated mid word", got)
	}
}

func TestWithSuffix(t *testing.T) {
	t.Parallel()

	if got := WithSuffix("nota-del-dia", "a1b2c3d4"); got != "nota-del-dia-a1b2c3d4" {
		t.Fatalf("WithSuffix = %q", got)
	}
	if got := WithSuffix("nota", ""); got != "nota" {
		t.Fatalf("empty suffix should return base, got %q", got)
	}
	if got := WithSuffix("", "a1b2c3d4"); got != "a1b2c3d4" {
		t.Fatalf("empty base should return suffix, got %q", got)
	}

	long := Make(strings.Repeat("seccion ", 30))
	got := WithSuffix(long, "a1b2c3d4")
	if len(got) > maxLength {
		t.Fatalf("suffixed slug length %d exceeds %d", len(got), maxLength)
	}
	if !strings.HasSuffix(got, "-a1b2c3d4") {
		t.Fatalf("suffixed slug %q missing suffix", got)
	}
}
