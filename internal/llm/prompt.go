package llm

import (
	"fmt"
	"strings"
)

// Options controls which cleanup steps the prompt asks for.
type Options struct {
	RemoveFillerWords bool
	AddPunctuation    bool
	FixGrammar        bool
	Simplify          bool
}

// BuildSystemPrompt generates the system prompt for transcript cleanup.
func BuildSystemPrompt(opts Options) string {
	var tasks []string

	if opts.RemoveFillerWords {
		tasks = append(tasks, "Remove filler words (um, uh, like, you know, etc.) and repeated words")
	}
	if opts.AddPunctuation {
		tasks = append(tasks, "Add proper punctuation")
	}
	if opts.FixGrammar {
		tasks = append(tasks, "Fix grammar errors")
	}
	if opts.Simplify {
		tasks = append(tasks, "Split long sentences into short, plain sentences")
	}
	if len(tasks) == 0 {
		tasks = append(tasks, "Clean up the text while preserving meaning")
	}

	var b strings.Builder
	b.WriteString("You prepare speech-to-text transcripts for translation into sign language video.\n\n")
	b.WriteString("Tasks:\n")
	for _, task := range tasks {
		fmt.Fprintf(&b, "- %s\n", task)
	}
	b.WriteString("\nRules:\n")
	b.WriteString("- Preserve the original meaning\n")
	b.WriteString("- Keep the same language as the input\n")
	b.WriteString("- Do not add any new information\n")
	b.WriteString("- Output ONLY the cleaned text, nothing else\n")
	b.WriteString("- If the input is empty or nonsensical, return it as-is\n")
	return b.String()
}

// BuildUserPrompt generates the user prompt with the text to process
func BuildUserPrompt(text string, customPrompt string) string {
	if customPrompt != "" {
		return fmt.Sprintf("%s\n\nText to process:\n%s", customPrompt, text)
	}
	return text
}
