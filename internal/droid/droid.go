// Package droid defines the droid document model and its frontmatter parser.
// A droid is a markdown file whose YAML header describes a specialized agent
// profile and whose body is the agent's system prompt.
package droid

// Scope indicates which directory a droid was loaded from.
type Scope string

const (
	// ScopeUser marks droids from the user-level directory.
	ScopeUser Scope = "user"
	// ScopeProject marks droids from the project-level directory.
	// Project droids override user droids with the same name.
	ScopeProject Scope = "project"
)

// Valid reports whether s is one of the recognized scopes.
func (s Scope) Valid() bool {
	return s == ScopeUser || s == ScopeProject
}

// DefaultModel is the sentinel model value meaning "inherit the caller's model".
const DefaultModel = "inherit"

// KnownModels lists the recognized model tiers. The list is advisory: loading
// accepts any model string, and doctor reports values outside it as warnings.
var KnownModels = []string{"sonnet", "opus", "haiku", DefaultModel}

// KnownTools lists the capability names understood by agent runtimes.
// Advisory, like KnownModels.
var KnownTools = []string{
	"Read", "Write", "Edit", "Bash", "Glob", "Grep",
	"WebFetch", "WebSearch", "Task", "TodoWrite",
	"NotebookEdit", "AskUserQuestion", "BashOutput", "KillShell",
}

// Droid represents one parsed droid document.
type Droid struct {
	// Name identifies the droid: lowercase letters, digits, hyphens,
	// underscores. Unique within the effective collection.
	Name string `json:"name"`

	// Description is a short free-text summary shown in listings.
	Description string `json:"description"`

	// SystemPrompt is the document body after the frontmatter, verbatim
	// apart from trimmed leading/trailing whitespace.
	SystemPrompt string `json:"system_prompt"`

	// Model is the model tier this droid requests, or DefaultModel.
	Model string `json:"model"`

	// Tools is the capability allow-list. A nil slice means unrestricted.
	Tools []string `json:"tools"`

	// Proactive gates eligibility for automatic suggestion.
	Proactive bool `json:"proactive"`

	// Triggers are keywords consulted by the suggestion heuristic.
	Triggers []string `json:"triggers"`

	// SourcePath is the path of the file this droid was loaded from. When a
	// project droid overrides a user droid, it points at the project file.
	SourcePath string `json:"source_path"`

	// Scope records which directory the file was found in. Derived at load
	// time, not persisted in the document.
	Scope Scope `json:"scope"`
}

// Unrestricted reports whether the droid may use every capability.
func (d *Droid) Unrestricted() bool {
	return d.Tools == nil
}

// Summary is the compact listing row for a droid.
type Summary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Scope       Scope  `json:"scope"`
	Proactive   bool   `json:"proactive"`
}

// Summary returns the compact listing row for d.
func (d *Droid) Summary() Summary {
	return Summary{
		Name:        d.Name,
		Description: d.Description,
		Scope:       d.Scope,
		Proactive:   d.Proactive,
	}
}
