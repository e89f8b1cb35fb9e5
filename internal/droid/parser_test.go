package droid

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		want        *Droid
		wantErr     bool
		errContains string
	}{
		{
			name: "all fields populated",
			content: `---
name: code-reviewer
description: Reviews code for style issues
model: opus
tools: ["Read", "Grep"]
proactive: true
triggers: ["review", "style"]
---

You review code.
`,
			want: &Droid{
				Name:         "code-reviewer",
				Description:  "Reviews code for style issues",
				SystemPrompt: "You review code.",
				Model:        "opus",
				Tools:        []string{"Read", "Grep"},
				Proactive:    true,
				Triggers:     []string{"review", "style"},
			},
		},
		{
			name: "minimal header defaults everything else",
			content: `---
name: minimal
---

Prompt body.
`,
			want: &Droid{
				Name:         "minimal",
				SystemPrompt: "Prompt body.",
				Model:        DefaultModel,
			},
		},
		{
			name: "empty model falls back to inherit",
			content: `---
name: fallback
model:
---
Body.
`,
			want: &Droid{
				Name:         "fallback",
				SystemPrompt: "Body.",
				Model:        DefaultModel,
			},
		},
		{
			name: "unknown model passes through",
			content: `---
name: experimental
model: turbo-9000
---
Body.
`,
			want: &Droid{
				Name:         "experimental",
				SystemPrompt: "Body.",
				Model:        "turbo-9000",
			},
		},
		{
			name: "empty tools list restricts to nothing",
			content: `---
name: locked
tools: []
---
Body.
`,
			want: &Droid{
				Name:         "locked",
				SystemPrompt: "Body.",
				Model:        DefaultModel,
				Tools:        []string{},
			},
		},
		{
			name: "scalar tools value becomes one-element list",
			content: `---
name: single
tools: Read
---
Body.
`,
			want: &Droid{
				Name:         "single",
				SystemPrompt: "Body.",
				Model:        DefaultModel,
				Tools:        []string{"Read"},
			},
		},
		{
			name: "mapping where list expected falls back to default",
			content: `---
name: mismatched
tools:
  read: true
---
Body.
`,
			want: &Droid{
				Name:         "mismatched",
				SystemPrompt: "Body.",
				Model:        DefaultModel,
			},
		},
		{
			name: "numeric description is stringified",
			content: `---
name: numbered
description: 42
---
Body.
`,
			want: &Droid{
				Name:         "numbered",
				Description:  "42",
				SystemPrompt: "Body.",
				Model:        DefaultModel,
			},
		},
		{
			name: "non-boolean proactive falls back to false",
			content: `---
name: hesitant
proactive: banana
---
Body.
`,
			want: &Droid{
				Name:         "hesitant",
				SystemPrompt: "Body.",
				Model:        DefaultModel,
			},
		},
		{
			name: "duplicate keys take the last occurrence",
			content: `---
name: first
description: first description
name: second
description: second description
---
Body.
`,
			want: &Droid{
				Name:         "second",
				Description:  "second description",
				SystemPrompt: "Body.",
				Model:        DefaultModel,
			},
		},
		{
			name: "unknown header fields are ignored",
			content: `---
name: tolerant
color: purple
priority: 9
---
Body.
`,
			want: &Droid{
				Name:         "tolerant",
				SystemPrompt: "Body.",
				Model:        DefaultModel,
			},
		},
		{
			name:        "missing name fails",
			content:     "---\ndescription: no name here\n---\nBody.\n",
			wantErr:     true,
			errContains: "missing required field: name",
		},
		{
			name:        "empty header fails on missing name",
			content:     "---\n---\nBody.\n",
			wantErr:     true,
			errContains: "missing required field: name",
		},
		{
			name:        "no frontmatter degrades to empty header and fails on name",
			content:     "just some prose without a header\n",
			wantErr:     true,
			errContains: "missing required field: name",
		},
		{
			name:        "uppercase name rejected",
			content:     "---\nname: BadName\n---\nBody.\n",
			wantErr:     true,
			errContains: "lowercase",
		},
		{
			name:        "name with spaces rejected",
			content:     "---\nname: two words\n---\nBody.\n",
			wantErr:     true,
			errContains: "lowercase",
		},
		{
			name:        "unterminated header fails",
			content:     "---\nname: dangling\n",
			wantErr:     true,
			errContains: "no closing frontmatter delimiter",
		},
		{
			name:        "broken yaml fails",
			content:     "---\nname: \"unclosed\ndescription: broken\n---\nBody.\n",
			wantErr:     true,
			errContains: "parsing frontmatter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Parse(tt.content)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d)
		})
	}
}

func TestParse_BodyHandling(t *testing.T) {
	t.Run("leading and trailing blank lines trimmed", func(t *testing.T) {
		d, err := Parse("---\nname: x\n---\n\n\nFirst line.\n\nSecond line.\n\n\n")
		require.NoError(t, err)
		assert.Equal(t, "First line.\n\nSecond line.", d.SystemPrompt)
	})

	t.Run("interior whitespace preserved", func(t *testing.T) {
		d, err := Parse("---\nname: x\n---\nline one\n    indented\n\tline three\n")
		require.NoError(t, err)
		assert.Equal(t, "line one\n    indented\n\tline three", d.SystemPrompt)
	})

	t.Run("delimiters inside body stay in body", func(t *testing.T) {
		d, err := Parse("---\nname: x\n---\nabove\n---\nbelow\n")
		require.NoError(t, err)
		assert.Equal(t, "above\n---\nbelow", d.SystemPrompt)
	})

	t.Run("empty body is allowed", func(t *testing.T) {
		d, err := Parse("---\nname: x\n---\n")
		require.NoError(t, err)
		assert.Empty(t, d.SystemPrompt)
	})
}

func TestParse_TruncatesLongDescription(t *testing.T) {
	long := strings.Repeat("d", 600)
	d, err := Parse("---\nname: chatty\ndescription: " + long + "\n---\nBody.\n")
	require.NoError(t, err)

	assert.Len(t, []rune(d.Description), 500)
	assert.True(t, strings.HasSuffix(d.Description, "..."))
	assert.Equal(t, strings.Repeat("d", 497), strings.TrimSuffix(d.Description, "..."))
}

func TestParseFile(t *testing.T) {
	t.Run("sets source path", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "helper.md")
		content := "---\nname: helper\ndescription: Helps out\n---\nYou help.\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		d, err := ParseFile(path)
		require.NoError(t, err)
		assert.Equal(t, "helper", d.Name)
		assert.Equal(t, path, d.SourcePath)
		assert.Empty(t, d.Scope, "scope is filled by the caller, not the parser")
	})

	t.Run("unreadable file returns error", func(t *testing.T) {
		_, err := ParseFile(filepath.Join(t.TempDir(), "absent.md"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading droid file")
	})
}

func TestValidName(t *testing.T) {
	valid := []string{"a", "code-reviewer", "test_runner", "droid2", "a-b_c3"}
	for _, name := range valid {
		assert.True(t, ValidName(name), "expected %q to be valid", name)
	}

	invalid := []string{"", "Upper", "with space", "dot.name", "slash/name", "émoji"}
	for _, name := range invalid {
		assert.False(t, ValidName(name), "expected %q to be invalid", name)
	}
}

func TestParse_RoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		name := rapid.StringMatching(`[a-z0-9][a-z0-9_-]{0,15}`).Draw(t, "name")
		desc := rapid.StringMatching(`[A-Za-z]{1,10} [A-Za-z]{1,10}`).Draw(t, "desc")
		body := rapid.StringMatching(`[A-Za-z ]{1,40}`).Draw(t, "body")

		content := "---\nname: " + name + "\ndescription: " + desc + "\n---\n" + body + "\n"
		d, err := Parse(content)
		require.NoError(t, err)
		assert.Equal(t, name, d.Name)
		assert.Equal(t, desc, d.Description)
		assert.Equal(t, strings.TrimSpace(body), d.SystemPrompt)
	})
}

func TestParse_LastDuplicateWinsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		values := rapid.SliceOfN(rapid.StringMatching(`[a-z0-9]{1,12}`), 2, 6).Draw(t, "values")

		var sb strings.Builder
		sb.WriteString("---\n")
		for _, v := range values {
			sb.WriteString("name: " + v + "\n")
		}
		sb.WriteString("---\nBody.\n")

		d, err := Parse(sb.String())
		require.NoError(t, err)
		assert.Equal(t, values[len(values)-1], d.Name)
	})
}
