package mcpserver

// PostFormatContract describes the post file layout and metadata block that
// LLM consumers should follow when reading or writing posts.
const PostFormatContract = `# Oasis Post Format

Posts are Markdown files stored in a flat layout, one directory per locale.

## Layout

` + "```" + `text
posts/
  en-US/
    hello-world.md
    kindle-review.md
  zh-CN/
    hello-world.md
` + "```" + `

- The file name without ` + "`" + `.md` + "`" + ` is the post **slug**; it is unique within a locale.
- The same slug in two locales is a translation of the same post.
- Subdirectories under a locale are the legacy category layout. Run the
  ` + "`" + `migrate_posts` + "`" + ` tool to flatten them; documents there are not indexed.

## Metadata block

` + "```" + `markdown
---
title: Hello world            # display title; falls back to the first "# " heading
date: 2024-03-05              # ISO date; "createAt" is read when "date" is absent
tag: golang                   # the category; exactly one per post
---

Body text in standard Markdown.
` + "```" + `

## Rules

1. The block opens with ` + "`" + `---` + "`" + ` on the very first line and closes at the next
   line starting with ` + "`" + `---` + "`" + `.
2. One ` + "`" + `key: value` + "`" + ` pair per line. Keys are English; values may be any language.
3. ` + "`" + `tag` + "`" + ` is a single string. Categories are derived from it, in the order
   their first post appears.
4. Encoding is UTF-8.
`
