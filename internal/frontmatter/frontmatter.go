// Package frontmatter locates and edits the metadata block at the top of a post,
// and decodes it for indexing.
//
// A block is a line containing exactly "---", one "key: value" pair per line,
// and a closing "---" line. Editing works on the raw text so that key order
// and formatting survive a rewrite byte for byte.
package frontmatter

import (
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	delim  = "---"
	tagKey = "tag"
)

// Block is the raw metadata block of a document.
type Block struct {
	// Text is everything between the opening and closing delimiter lines.
	Text string
	// end is the offset in the document just past Text.
	end int
}

// Split finds the metadata block. The document must open with "---\n";
// the first "\n---" after that line closes the block. An empty block needs a
// blank line between its delimiters.
func Split(content string) (Block, bool) {
	open := delim + "\n"
	if !strings.HasPrefix(content, open) {
		return Block{}, false
	}
	start := len(open)
	idx := strings.Index(content[start:], "\n"+delim)
	if idx < 0 {
		return Block{}, false
	}
	return Block{Text: content[start : start+idx], end: start + idx}, true
}

// HasTag reports whether the block mentions a tag key. This is a plain
// substring match on the block text, so "tag:" inside any value counts too.
func (b Block) HasTag() bool {
	return strings.Contains(b.Text, tagKey+":")
}

// EnsureTag returns content whose metadata block declares tag. An existing
// tag is never overwritten. A document without a block gets a new one,
// separated from the original body by a blank line. changed is false when
// content is returned as is.
func EnsureTag(content, tag string) (out string, changed bool) {
	line := tagKey + ": " + tag
	b, ok := Split(content)
	if !ok {
		return delim + "\n" + line + "\n" + delim + "\n\n" + content, true
	}
	if b.HasTag() {
		return content, false
	}
	return content[:b.end] + "\n" + line + content[b.end:], true
}

// Result holds the decoded view of a post.
type Result struct {
	Fields map[string]any
	Body   string
	Title  string
	Tag    string
	Date   string
}

// Parse decodes the metadata block as YAML and derives title, tag and date.
// Documents without a block, or with a block that is not valid YAML, are
// treated as all body.
func Parse(data []byte) (*Result, error) {
	content := string(data)
	res := &Result{Body: content}

	if b, ok := Split(content); ok {
		var fields map[string]any
		if err := yaml.Unmarshal([]byte(b.Text), &fields); err == nil {
			res.Fields = fields
			res.Body = bodyAfter(content, b)
		}
	}

	res.Tag = stringField(res.Fields, tagKey)
	res.Date = dateField(res.Fields, "date", "createAt")
	res.Title = deriveTitle(res.Fields, res.Body)
	return res, nil
}

// bodyAfter returns the text following the closing delimiter line.
func bodyAfter(content string, b Block) string {
	rest := content[b.end+1+len(delim):]
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[i+1:]
	} else {
		rest = ""
	}
	return strings.TrimLeft(rest, "\r\n")
}

func stringField(fields map[string]any, key string) string {
	if v, ok := fields[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// dateField returns the first of keys holding a quoted string or a YAML timestamp.
func dateField(fields map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := fields[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case time.Time:
			return v.Format(time.DateOnly)
		}
	}
	return ""
}

// deriveTitle returns the "title" field if present, otherwise the first
// H1 heading, otherwise empty string.
func deriveTitle(fields map[string]any, body string) string {
	if t := stringField(fields, "title"); t != "" {
		return t
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
