package droid

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// delimiter marks the frontmatter boundary at the start of a line.
const delimiter = "---"

// maxDescription caps the description length in runes. Longer descriptions
// are cut to maxDescription-3 runes plus an ellipsis.
const maxDescription = 500

var nameRE = regexp.MustCompile(`^[a-z0-9\-_]+$`)

// Parse failure reasons. Loading skips the offending file and records the
// wrapped reason; nothing here aborts a directory scan.
var (
	ErrMissingName        = errors.New("missing required field: name")
	ErrInvalidName        = errors.New("name must use lowercase letters, digits, hyphens, underscores")
	ErrUnterminatedHeader = errors.New("no closing frontmatter delimiter found")
)

// ValidName reports whether name is a well-formed droid name.
func ValidName(name string) bool {
	return nameRE.MatchString(name)
}

// Parse turns raw document content into a Droid. Scope and SourcePath are
// left unset for the caller to fill. The header is decoded permissively:
// unknown fields are ignored, duplicate keys take the last occurrence, and
// a value of the wrong shape falls back to the field's default instead of
// failing the file. Only a missing or malformed name, an unterminated
// header, or YAML the decoder cannot read at all fail the parse.
func Parse(content string) (*Droid, error) {
	header, body, err := splitFrontmatter(content)
	if err != nil {
		return nil, err
	}

	d := &Droid{Model: DefaultModel}
	if err := decodeHeader(header, d); err != nil {
		return nil, fmt.Errorf("parsing frontmatter: %w", err)
	}

	if d.Name == "" {
		return nil, ErrMissingName
	}
	if !ValidName(d.Name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, d.Name)
	}
	if d.Model == "" {
		d.Model = DefaultModel
	}
	d.Description = truncateDescription(d.Description)
	d.SystemPrompt = strings.TrimSpace(body)

	return d, nil
}

// ParseFile reads and parses the droid document at path, recording path as
// the droid's SourcePath. Scope is filled by the caller.
func ParseFile(path string) (*Droid, error) {
	content, err := os.ReadFile(path) //nolint:gosec // path comes from scanned directory entries
	if err != nil {
		return nil, fmt.Errorf("reading droid file: %w", err)
	}
	d, err := Parse(string(content))
	if err != nil {
		return nil, err
	}
	d.SourcePath = path
	return d, nil
}

// splitFrontmatter separates the YAML header block from the body. Content
// that does not start with the delimiter degrades gracefully: empty header,
// full content as body. A started but unclosed header is an error.
func splitFrontmatter(content string) (header, body string, err error) {
	if !strings.HasPrefix(content, delimiter) {
		return "", content, nil
	}

	rest := content[len(delimiter):]
	header, body, found := strings.Cut(rest, "\n"+delimiter)
	if !found {
		return "", "", ErrUnterminatedHeader
	}

	return strings.TrimPrefix(header, "\n"), body, nil
}

// decodeHeader fills d from the YAML header block. The block is walked as a
// yaml.Node tree rather than unmarshalled into a struct: struct decoding
// rejects duplicate mapping keys, while headers want the last occurrence to
// win.
func decodeHeader(header string, d *Droid) error {
	if strings.TrimSpace(header) == "" {
		return nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(header), &doc); err != nil {
		return err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		// Header is not a mapping (bare scalar or list); nothing to read.
		return nil
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			continue
		}
		switch key.Value {
		case "name":
			d.Name = scalarString(value)
		case "description":
			d.Description = scalarString(value)
		case "model":
			d.Model = scalarString(value)
		case "tools":
			d.Tools = stringList(value)
		case "proactive":
			d.Proactive = scalarBool(value)
		case "triggers":
			d.Triggers = stringList(value)
		}
	}

	return nil
}

// scalarString reads a scalar node as text. Numbers and booleans keep their
// literal form; null and non-scalar shapes read as empty.
func scalarString(n *yaml.Node) string {
	if n == nil || n.Kind != yaml.ScalarNode || n.Tag == "!!null" {
		return ""
	}
	return n.Value
}

// scalarBool reads a boolean node, defaulting to false on any mismatch.
func scalarBool(n *yaml.Node) bool {
	if n == nil || n.Kind != yaml.ScalarNode {
		return false
	}
	var b bool
	if err := n.Decode(&b); err != nil {
		return false
	}
	return b
}

// stringList reads a sequence of scalars. A bare scalar becomes a
// one-element list; null or any other shape reads as nil. An empty
// sequence stays a non-nil empty list, which for tools means "restricted
// to nothing" rather than "unrestricted".
func stringList(n *yaml.Node) []string {
	switch {
	case n == nil:
		return nil
	case n.Kind == yaml.SequenceNode:
		out := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			if s := scalarString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case n.Kind == yaml.ScalarNode && n.Tag != "!!null":
		return []string{n.Value}
	default:
		return nil
	}
}

func truncateDescription(s string) string {
	runes := []rune(s)
	if len(runes) <= maxDescription {
		return s
	}
	return string(runes[:maxDescription-3]) + "..."
}
