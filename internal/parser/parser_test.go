package parser

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseSimpleCommand(t *testing.T) {
	p := Parse("ls -l /tmp")
	if p.Err != "" {
		t.Fatalf("unexpected error: %s", p.Err)
	}
	want := []Command{{"ls", "-l", "/tmp"}}
	if !reflect.DeepEqual(p.Stages, want) {
		t.Errorf("Stages = %#v, want %#v", p.Stages, want)
	}
}

func TestParsePipeline(t *testing.T) {
	p := Parse("cat file | grep foo | wc -l")
	if p.Err != "" {
		t.Fatalf("unexpected error: %s", p.Err)
	}
	want := []Command{
		{"cat", "file"},
		{"grep", "foo"},
		{"wc", "-l"},
	}
	if !reflect.DeepEqual(p.Stages, want) {
		t.Errorf("Stages = %#v, want %#v", p.Stages, want)
	}
}

func TestParseRedirections(t *testing.T) {
	p := Parse("sort < in.txt > out.txt")
	if p.Err != "" {
		t.Fatalf("unexpected error: %s", p.Err)
	}
	if !p.HasInFile || p.InFile != "in.txt" {
		t.Errorf("InFile = %q (has=%v), want in.txt", p.InFile, p.HasInFile)
	}
	if !p.HasOutFile || p.OutFile != "out.txt" || p.OutAppend {
		t.Errorf("OutFile = %q append=%v (has=%v), want out.txt non-append", p.OutFile, p.OutAppend, p.HasOutFile)
	}
}

func TestParseAppendRedirection(t *testing.T) {
	p := Parse("echo hi >> out.txt")
	if p.Err != "" {
		t.Fatalf("unexpected error: %s", p.Err)
	}
	if !p.HasOutFile || !p.OutAppend || p.OutFile != "out.txt" {
		t.Errorf("expected append to out.txt, got %+v", p)
	}
}

func TestParseBackground(t *testing.T) {
	p := Parse("sleep 30 &")
	if p.Err != "" {
		t.Fatalf("unexpected error: %s", p.Err)
	}
	if !p.Background {
		t.Error("Background = false, want true")
	}
	want := []Command{{"sleep", "30"}}
	if !reflect.DeepEqual(p.Stages, want) {
		t.Errorf("Stages = %#v, want %#v", p.Stages, want)
	}
}

// Words after '&' are appended to the current stage rather than
// rejected, a deliberately preserved quirk.
func TestParseTrailingWordsAfterAmpAreAppended(t *testing.T) {
	p := Parse("sleep 30 & echo done")
	if p.Err != "" {
		t.Fatalf("unexpected error: %s", p.Err)
	}
	if !p.Background {
		t.Error("Background = false, want true")
	}
	want := []Command{{"sleep", "30", "echo", "done"}}
	if !reflect.DeepEqual(p.Stages, want) {
		t.Errorf("Stages = %#v, want %#v", p.Stages, want)
	}
}

func TestParseMisplacedPipeLeading(t *testing.T) {
	p := Parse("| ls")
	if p.Err != "misplaced pipe" {
		t.Errorf("Err = %q, want %q", p.Err, "misplaced pipe")
	}
}

func TestParseMisplacedPipeTrailing(t *testing.T) {
	p := Parse("ls |")
	if p.Err != "misplaced pipe" {
		t.Errorf("Err = %q, want %q", p.Err, "misplaced pipe")
	}
}

func TestParseMisplacedPipeAdjacent(t *testing.T) {
	p := Parse("ls | | grep foo")
	if p.Err != "misplaced pipe" {
		t.Errorf("Err = %q, want %q", p.Err, "misplaced pipe")
	}
}

func TestParseMissingRedirFilename(t *testing.T) {
	cases := []string{"ls >", "ls <", "ls >>"}
	for _, line := range cases {
		p := Parse(line)
		if p.Err == "" {
			t.Errorf("Parse(%q): expected error, got none", line)
		}
	}
}

func TestParseDuplicateRedirection(t *testing.T) {
	p := Parse("ls > a.txt > b.txt")
	if p.Err == "" {
		t.Error("expected error on duplicate output redirection")
	}

	p = Parse("ls < a.txt < b.txt")
	if p.Err == "" {
		t.Error("expected error on duplicate input redirection")
	}
}

func TestParseInvariantStagesVsError(t *testing.T) {
	cases := []string{
		"ls -l", "cat a | cat b", "ls >", "|", "echo a &",
	}
	for _, line := range cases {
		p := Parse(line)
		if (len(p.Stages) >= 1) != (p.Err == "") {
			t.Errorf("Parse(%q): stages/error invariant violated: stages=%v err=%q", line, p.Stages, p.Err)
		}
	}
}

func TestParseExpandsGlobBeforeBuild(t *testing.T) {
	dir := t.TempDir()
	old, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })

	for _, name := range []string{"a.c", "b.c"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	p := Parse("echo *.c")
	if p.Err != "" {
		t.Fatalf("unexpected error: %s", p.Err)
	}
	if len(p.Stages) != 1 || len(p.Stages[0]) != 3 {
		t.Fatalf("Stages = %#v, want one stage of 3 words", p.Stages)
	}
	if p.Stages[0][0] != "echo" {
		t.Errorf("Stages[0][0] = %q, want echo", p.Stages[0][0])
	}
}

func TestCommandTextRoundTrip(t *testing.T) {
	cases := []string{
		"cat file | grep foo",
		"sort < in.txt > out.txt",
		"echo hi >> out.txt",
		"sleep 30 &",
	}
	for _, line := range cases {
		p := Parse(line)
		if p.Err != "" {
			t.Fatalf("Parse(%q): unexpected error: %s", line, p.Err)
		}
		text := CommandText(p)
		reparsed := Parse(text)
		if reparsed.Err != "" {
			t.Fatalf("re-parsing CommandText(%q) = %q failed: %s", line, text, reparsed.Err)
		}
		if !reflect.DeepEqual(p.Stages, reparsed.Stages) {
			t.Errorf("round-trip mismatch for %q: got stages %#v via %q, want %#v",
				line, reparsed.Stages, text, p.Stages)
		}
	}
}
