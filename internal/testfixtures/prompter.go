package testfixtures

import "sync"

// ScriptedPrompter satisfies the session.UserPrompter contract with canned
// responses and records everything surfaced to the visitor.
type ScriptedPrompter struct {
	mu sync.Mutex

	// Names are consumed in order by PromptName; when exhausted, the
	// prompt's fallback is returned.
	Names []string
	// ConfirmAnswer is returned by every Confirm call.
	ConfirmAnswer bool

	Prompts       []string
	Confirmations []string
	Notices       []string
}

// NewScriptedPrompter returns a prompter that answers name prompts from
// names and confirms everything.
func NewScriptedPrompter(names ...string) *ScriptedPrompter {
	return &ScriptedPrompter{Names: names, ConfirmAnswer: true}
}

// PromptName pops the next scripted name, falling back when none remain or
// the scripted value is empty.
func (p *ScriptedPrompter) PromptName(message, fallback string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Prompts = append(p.Prompts, message)
	if len(p.Names) == 0 {
		return fallback
	}
	name := p.Names[0]
	p.Names = p.Names[1:]
	if name == "" {
		return fallback
	}
	return name
}

// Confirm records the question and returns the configured answer.
func (p *ScriptedPrompter) Confirm(message string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Confirmations = append(p.Confirmations, message)
	return p.ConfirmAnswer
}

// Notify records the informational message.
func (p *ScriptedPrompter) Notify(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Notices = append(p.Notices, message)
}

// NoticeCount reports how many notices were surfaced.
func (p *ScriptedPrompter) NoticeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Notices)
}
