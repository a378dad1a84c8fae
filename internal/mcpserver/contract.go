package mcpserver

// OrgFormatContract describes the canonical org outline format that
// LLM consumers should follow when creating or updating documents.
const OrgFormatContract = `# Ansuz Org Format Contract

Every org document stored in Ansuz MUST follow this structure.

## Structure

` + "```" + `org
* TODO [#A] Headline title :tag1:tag2:
  SCHEDULED: <2025-01-20 Mon> DEADLINE: <2025-01-24 Fri>
  :PROPERTIES:
  :CATEGORY: project-x
  :END:
  Body text belonging to the headline.
** Nested child headline
   Child body. Children inherit parent tags.
` + "```" + `

## Rules

1. **Headlines** start at column one with one or more stars followed by a
   space. The star count is the nesting level; a level N headline is a child
   of the nearest preceding headline with fewer stars.
2. **Todo keywords** (` + "`" + `TODO` + "`" + `, ` + "`" + `DONE` + "`" + ` by default) come right after the stars.
   A ` + "`" + `[#X]` + "`" + ` priority cookie is only recognised directly after a todo keyword.
3. **Tags** form a trailing ` + "`" + `:tag1:tag2:` + "`" + ` block at the end of the headline
   line. Allowed characters: letters, digits, ` + "`" + `_` + "`" + `, ` + "`" + `%` + "`" + `, ` + "`" + `@` + "`" + `, ` + "`" + `#` + "`" + `.
   The ` + "`" + `ARCHIVE` + "`" + ` tag excludes a subtree from the agenda.
4. **Planning line** (SCHEDULED / DEADLINE / CLOSED timestamps) must be the
   FIRST line under the headline; anywhere else it is plain body text.
5. **Property drawer** (` + "`" + `:PROPERTIES:` + "`" + ` ... ` + "`" + `:END:` + "`" + `) must be the first
   content line, or the second when a planning line precedes it.
6. **Timestamps**: ` + "`" + `<2025-01-20 Mon>` + "`" + ` is active (appears in the agenda),
   ` + "`" + `[2025-01-20 Mon]` + "`" + ` is inactive. Optional time ` + "`" + `10:30` + "`" + ` and repeater
   ` + "`" + `+1w` + "`" + ` follow the weekday. Date ranges join two timestamps with ` + "`" + `--` + "`" + `.
7. **File paths** end with ` + "`" + `.org` + "`" + ` and use forward slashes. File and
   directory names MUST be in English (Latin characters); headline titles and
   body content may use any language.
8. **Encoding** is UTF-8 with a trailing newline.

## Attachments

- Upload files via the ` + "`" + `upload_attachment` + "`" + ` tool. It returns an ` + "`" + `orgLink` + "`" + `
  field ready to paste into a document body.
- Attachments are stored in the shared ` + "`" + `attachments/` + "`" + ` directory (flat, no sub-folders).
- Reference them with an absolute path: ` + "`" + `[[/attachments/figure.png][figure]]` + "`" + `
- Supported formats: png, jpg, jpeg, gif, webp, svg, pdf.

## Example

` + "```" + `org
* TODO [#A] Weekly review :routine:
  SCHEDULED: <2025-01-20 Mon 09:00 +1w>
  :PROPERTIES:
  :CATEGORY: planning
  :END:
  Review open projects and the inbox.
** DONE Collect inbox items
   CLOSED: [2025-01-19 Sun 17:42]
* Reading list
  [[/attachments/paper-draft.pdf][current draft]]
` + "```" + `
`
