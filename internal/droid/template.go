package droid

import "fmt"

// Template returns the document content for a newly created droid. The
// bracketed placeholders are meant to be replaced before first use.
func Template(name string) string {
	return fmt.Sprintf(`---
name: %s
description: Brief description of what this DROID does
model: inherit
tools: ["Read", "Grep", "Glob"]
proactive: false
triggers: []
---

You are a specialized assistant for [specific task].

Your responsibilities:
- [Responsibility 1]
- [Responsibility 2]
- [Responsibility 3]

Guidelines:
- [Guideline 1]
- [Guideline 2]
`, name)
}
