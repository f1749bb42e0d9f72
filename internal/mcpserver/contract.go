package mcpserver

// RuleFormat describes how move rules are configured and evaluated, for
// LLM consumers deciding whether a note will move.
const RuleFormat = `# notemover Rule Format

Rules live under ` + "`" + `mover.rules` + "`" + ` in the YAML config and are evaluated top to
bottom. The first rule that matches a note decides its destination folder.

## Rule fields

` + "```" + `yaml
mover:
  rules:
    - folder: Projects          # REQUIRED - destination folder, relative to the vault
      tag: "#project"           # match a frontmatter or inline tag
    - folder: Archive
      property: status          # match a frontmatter key
      value: done               # OPTIONAL - and its value
    - folder: Journal
      pattern: '^\d{4}-\d{2}-\d{2}$'   # regex on the note title (file name without .md)
    - folder: Inbox/Web
      path: '^clippings/'       # regex on the vault-relative path
      template: web-clipping    # OPTIONAL - template appended before the move
` + "```" + `

Each rule sets exactly one of ` + "`" + `tag` + "`" + `, ` + "`" + `property` + "`" + `, ` + "`" + `pattern` + "`" + `, ` + "`" + `path` + "`" + `.

## Evaluation

1. Only ` + "`" + `.md` + "`" + ` files are considered.
2. Notes inside an excluded folder are skipped.
3. A note with ` + "`" + `AutoNoteMover: disable` + "`" + ` in its frontmatter is never moved.
4. A note already in its destination is left alone.
5. A file with the same name in the destination blocks the move. Nothing is overwritten.
6. A folder next to the note with the same name (its companion folder) moves along
   when ` + "`" + `move_folder_note` + "`" + ` is enabled.

## Trigger

- ` + "`" + `Automatic` + "`" + ` (indicator ` + "`" + `[A]` + "`" + `): notes move as soon as they are created or edited.
- ` + "`" + `Manual` + "`" + ` (indicator ` + "`" + `[M]` + "`" + `): notes move only through ` + "`" + `move_note` + "`" + ` or ` + "`" + `move_all_notes` + "`" + `.
`
