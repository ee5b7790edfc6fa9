package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mkarel/prospect/internal/model"
	"github.com/mkarel/prospect/internal/store"
)

const systemPrompt = `You are a sales-intelligence research assistant. You analyze what is known
about a company and decide what to record and where to look next.

ALWAYS respond with valid JSON in this exact format:
{
  "relevant_data": ["data point 1", "data point 2"],
  "actions": [
    {"function": "function_name", "params": {"param1": "value1"}}
  ],
  "next_steps": [
    {"function": "explore_page", "params": {"url": "/about", "reason": "find team info"}}
  ],
  "status": "continue"
}

Status is "continue" (keep exploring) or "complete" (sufficient data collected).

Available functions:
- save_contact: {"name": "...", "title": "...", "email": "...", "phone": "...", "source": "...", "source_url": "..."}
- save_pain_point: {"description": "...", "evidence": "...", "source": "...", "source_url": "..."}
- extract_tech_stack: {"technologies": ["..."], "category": "...", "source_url": "..."}
- save_news: {"title": "...", "summary": "...", "source_url": "..."}
- save_company_info: {"key": "...", "value": "..."}
- download_image: {"url": "...", "person_name": "...", "context": "..."}
- explore_page: {"url": "...", "reason": "..."}
- search_linkedin: {"company": "...", "person": "..."}
- search_news: {"company": "...", "topics": ["..."]}

Rules for save_contact (strictly enforced):
- Provide at least one of name or email. Phone-only contacts are rejected.
- Form labels like "Email *" are input fields, not contacts. Do not save them.
- Always include source_url so the fact can be cited.

Never request an exploration of a URL listed under sources_explored.`

// buildUserPrompt embeds the subject, the accumulated knowledge, and the
// explored-source list so the model is discouraged from repeating itself.
func buildUserPrompt(subject model.Subject, snap store.Snapshot) (string, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s\n", subject.DisplayName())
	if subject.Website != "" {
		fmt.Fprintf(&b, "Website: %s\n", subject.Website)
	}
	b.WriteString("\n=== CURRENT ACCUMULATED DATA ===\n")
	b.Write(data)
	b.WriteString("\n\n=== YOUR TASK ===\n")
	b.WriteString("1. What relevant information can be extracted from the data above?\n")
	b.WriteString("2. What actions should be taken to record it?\n")
	b.WriteString("3. What should be explored next? Skip everything in sources_explored.\n")
	b.WriteString("4. Is the data sufficient, or should research continue?\n\n")
	b.WriteString("Respond with JSON only.\n")

	return b.String(), nil
}
