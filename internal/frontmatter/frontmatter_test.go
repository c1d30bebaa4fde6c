package frontmatter

import (
	"strings"
	"testing"
)

func TestSplit(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
		ok      bool
	}{
		{"basic", "---\ntitle: Hi\n---\nbody", "title: Hi", true},
		{"multi", "---\na: 1\nb: 2\n---\n", "a: 1\nb: 2", true},
		{"empty with blank line", "---\n\n---\nbody", "", true},
		{"empty without blank line", "---\n---\nbody", "", false},
		{"no opening", "title: Hi\n---\nbody", "", false},
		{"leading blank line", "\n---\ntitle: Hi\n---\n", "", false},
		{"unclosed", "---\ntitle: Hi\nbody", "", false},
		{"first closing wins", "---\na: 1\n---\nb\n---\n", "a: 1", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, ok := Split(tc.content)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if b.Text != tc.want {
				t.Errorf("text = %q, want %q", b.Text, tc.want)
			}
		})
	}
}

func TestEnsureTag_AppendsToExistingBlock(t *testing.T) {
	in := "---\ntitle: Hello\ndate: 2024-01-02\n---\n\n# Hello\n"
	out, changed := EnsureTag(in, "golang")
	if !changed {
		t.Fatal("expected change")
	}
	want := "---\ntitle: Hello\ndate: 2024-01-02\ntag: golang\n---\n\n# Hello\n"
	if out != want {
		t.Errorf("out = %q, want %q", out, want)
	}
}

func TestEnsureTag_KeepsExistingTag(t *testing.T) {
	in := "---\ntitle: Hello\ntag: life\n---\nbody\n"
	out, changed := EnsureTag(in, "golang")
	if changed || out != in {
		t.Errorf("existing tag must win, got %q", out)
	}
}

func TestEnsureTag_SubstringMatchCountsAsTagged(t *testing.T) {
	in := "---\ntitle: \"hashtag: fun\"\n---\nbody\n"
	out, changed := EnsureTag(in, "golang")
	if changed || out != in {
		t.Errorf("substring tag: should be treated as tagged, got %q", out)
	}
}

func TestEnsureTag_SynthesizesBlock(t *testing.T) {
	in := "# Untitled\nSome text.\n"
	out, changed := EnsureTag(in, "notes")
	if !changed {
		t.Fatal("expected change")
	}
	want := "---\ntag: notes\n---\n\n# Untitled\nSome text.\n"
	if out != want {
		t.Errorf("out = %q, want %q", out, want)
	}
}

func TestEnsureTag_EmptyBlock(t *testing.T) {
	out, _ := EnsureTag("---\n\n---\nbody", "x")
	if out != "---\n\ntag: x\n---\nbody" {
		t.Errorf("out = %q", out)
	}
	if strings.Count(out, "tag: x") != 1 {
		t.Errorf("tag written more than once: %q", out)
	}
}

func TestEnsureTag_Idempotent(t *testing.T) {
	once, _ := EnsureTag("---\ntitle: A\n---\nbody", "c")
	twice, changed := EnsureTag(once, "c")
	if changed || twice != once {
		t.Errorf("second pass changed content: %q", twice)
	}
}

func TestParse_FieldsAndBody(t *testing.T) {
	r, err := Parse([]byte("---\ntitle: Hello\ntag: golang\ndate: 2024-03-05\n---\n\n# Heading\nBody text.\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title != "Hello" {
		t.Errorf("title = %q", r.Title)
	}
	if r.Tag != "golang" {
		t.Errorf("tag = %q", r.Tag)
	}
	if r.Date != "2024-03-05" {
		t.Errorf("date = %q", r.Date)
	}
	if r.Body != "# Heading\nBody text.\n" {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	r, _ := Parse([]byte("# Just a heading\nSome text.\n"))
	if r.Fields != nil {
		t.Errorf("expected nil fields, got %v", r.Fields)
	}
	if r.Title != "Just a heading" {
		t.Errorf("title = %q", r.Title)
	}
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	input := "---\n: invalid: yaml: {{{\n---\nBody\n"
	r, _ := Parse([]byte(input))
	if r.Fields != nil {
		t.Errorf("expected nil fields on invalid YAML")
	}
	if r.Body != input {
		t.Errorf("body = %q, want whole document", r.Body)
	}
}

func TestParse_CreateAtDate(t *testing.T) {
	r, _ := Parse([]byte("---\ntitle: Old post\ncreateAt: 2021/07/04\n---\nBody\n"))
	if r.Date != "2021/07/04" {
		t.Errorf("date = %q, want createAt value", r.Date)
	}

	r, _ = Parse([]byte("---\ndate: 2024-01-01\ncreateAt: 2021/07/04\n---\nBody\n"))
	if r.Date != "2024-01-01" {
		t.Errorf("date = %q, want date to win over createAt", r.Date)
	}
}
