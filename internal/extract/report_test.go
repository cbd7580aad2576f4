package extract

import (
	"strings"
	"testing"
)

func TestReportText_Paragraphs(t *testing.T) {
	html := `<html><head><title>Ignored</title><style>p{}</style></head>
<body>
  <h1>Rapport   annuel</h1>
  <p>Les émissions induites totales s'élèvent à
     3,472 millions de tonnes de CO2.</p>
  <script>var x = 1;</script>
  <p>Second <b>paragraph</b>.</p>
</body></html>`

	text, err := ReportText(html)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	lines := strings.Split(text, "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d: %q", len(lines), text)
	}
	if lines[0] != "Rapport annuel" {
		t.Errorf("Unexpected heading line: %q", lines[0])
	}
	if !strings.Contains(lines[1], "3,472 millions de tonnes de CO2.") {
		t.Errorf("Expected collapsed paragraph, got %q", lines[1])
	}
	if lines[2] != "Second paragraph ." {
		t.Errorf("Unexpected inline text: %q", lines[2])
	}
	if strings.Contains(text, "var x") || strings.Contains(text, "Ignored") {
		t.Errorf("Script or head content leaked: %q", text)
	}
}

func TestReportText_Tables(t *testing.T) {
	html := `<table>
<tr><th>Metric</th><th>Value</th></tr>
<tr><td>Scope 1</td><td>1,200 tCO2</td></tr>
<tr><td>A | B</td><td></td></tr>
</table>`

	text, err := ReportText(html)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	want := "| Metric | Value |\n| Scope 1 | 1,200 tCO2 |\n| A / B |  |"
	if text != want {
		t.Errorf("Expected:\n%s\ngot:\n%s", want, text)
	}
}
