package reader

import (
	"strings"
	"testing"
)

func TestCleanText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "windows line endings", in: "hola\r\nmundo\r\n", want: "hola\n\nmundo"},
		{name: "inline whitespace collapsed", in: "una   nota\t breve", want: "una nota breve"},
		{name: "blank lines dropped", in: "parrafo uno\n\n\n\nparrafo dos", want: "parrafo uno\n\nparrafo dos"},
		{name: "empty input", in: "   \n \t ", want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := CleanText(tc.in); got != tc.want {
				t.Fatalf("CleanText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestExtractText(t *testing.T) {
	t.Parallel()

	html := `<!DOCTYPE html>
<html><head><title>Nota</title></head>
<body>
<article>
<h1>Suben las tarifas</h1>
<p>El gobierno anunció un aumento del veinte por ciento en las tarifas de transporte público a partir del mes próximo.</p>
<p>Las asociaciones de usuarios reclamaron una audiencia pública antes de la entrada en vigencia del nuevo cuadro tarifario.</p>
</article>
</body></html>`

	text, err := ExtractText(html, "https://ejemplo.ar/nota")
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if !strings.Contains(text, "aumento del veinte por ciento") {
		t.Fatalf("extracted text missing article body: %q", text)
	}
	if strings.Contains(text, "<p>") {
		t.Fatalf("extracted text still contains markup: %q", text)
	}
}

func TestExtractTextEmptyInput(t *testing.T) {
	t.Parallel()

	if _, err := ExtractText("   ", ""); err == nil {
		t.Fatal("expected error for empty raw html")
	}
}
