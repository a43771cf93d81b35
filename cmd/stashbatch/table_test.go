package main

import (
	"strings"
	"testing"
)

func TestRenderTablePadsShortRows(t *testing.T) {
	got := renderTable(
		[]string{"Plugin", "Version"},
		[][]string{{"stashbatch"}},
	)
	lines := strings.Split(got, "\n")
	if len(lines) != 5 {
		t.Fatalf("expected bordered header plus one row, got:\n%s", got)
	}
	if !strings.Contains(got, "stashbatch") {
		t.Fatalf("row cell missing from output:\n%s", got)
	}
	if strings.Contains(got, "<nil>") {
		t.Fatalf("missing cell must render empty, got:\n%s", got)
	}
}

func TestRenderTableRightAlignsNumericColumns(t *testing.T) {
	got := renderTable(
		[]string{"Run", "Processed"},
		[][]string{{"deadbeef", "5/5"}, {"cafef00d", "12/120"}},
		1,
	)
	var short, long string
	for _, line := range strings.Split(got, "\n") {
		if strings.Contains(line, "5/5") && !strings.Contains(line, "12/120") {
			short = line
		}
		if strings.Contains(line, "12/120") {
			long = line
		}
	}
	if short == "" || long == "" {
		t.Fatalf("rows missing from output:\n%s", got)
	}
	if strings.Index(short, "5/5")+len("5/5") != strings.Index(long, "12/120")+len("12/120") {
		t.Fatalf("numeric column not right aligned:\n%s", got)
	}
}

func TestRenderTableEmptyHeaders(t *testing.T) {
	if got := renderTable(nil, nil); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}
