package core

import (
	"fmt"
	"strings"
)

const (
	statusIndexed = "Sites successfully indexed."
	statusFailed  = "Site indexing failed."
)

// IndexingStatus reports success if at least one extraction produced real
// content; only when both results are the unreachable sentinel does it read
// the failure variant.
func IndexingStatus(first, second string) string {
	if strings.HasPrefix(first, scrapeFailurePrefix) && strings.HasPrefix(second, scrapeFailurePrefix) {
		return statusFailed
	}
	return statusIndexed
}

// BuildChatPrompt assembles the full instruction prompt for a text turn:
// the indexing status line, the scraped context block, the per-query-type
// formatting rules, and the mandatory trailing disclaimer.
func BuildChatPrompt(message, indexingStatus, cdscoContext, pubmedContext string) string {
	return fmt.Sprintf(`You are "MedAI", an expert medical information assistant. Your responses must be extremely concise and perfectly formatted.

User query: "%s"

Scraped Context:
---
%s
%s
---

YOUR TASK & FORMATTING RULES:
1.  FIRST LINE ONLY: Your entire response MUST begin with the indexing status and nothing else. The status is: "%s"
2.  TOP SEPARATOR: Immediately after the status line, you MUST insert a markdown horizontal rule (`+"`---`"+`).
3.  MAIN ANSWER: After the separator, provide the main answer.
    - If the query is about drug/food interactions, use "### Safety", "### Side Effects", and "### Prevention" headings. Use only short bullet points under each.
    - If it's a general question, provide a brief, direct answer without special headings.
    - If context is empty, state the answer is based on general knowledge.
4.  BOTTOM SEPARATOR: Before the disclaimer, you MUST insert another markdown horizontal rule (`+"`---`"+`).
5.  DISCLAIMER: End with the mandatory disclaimer.

Disclaimer Text:
### Disclaimer
AI assistant. Consult a professional for medical or legal advice.`, message, cdscoContext, pubmedContext, indexingStatus)
}

// BuildImagePrompt assembles the prompt for an image turn. Image queries
// skip web extraction entirely.
func BuildImagePrompt(message string) string {
	return fmt.Sprintf(`You are "MedAI", an expert medical information assistant. Analyze the attached image in a medical context.

User query: "%s"

YOUR TASK & FORMATTING RULES:
1.  Describe what the image shows that is relevant to the user's query. If the image is a medicine label or prescription, identify the medication and summarize its purpose.
2.  Be extremely concise. Use short bullet points where it helps.
3.  If the image cannot be interpreted, say so plainly.
4.  End with the mandatory disclaimer below, preceded by a markdown horizontal rule (`+"`---`"+`).

Disclaimer Text:
### Disclaimer
AI assistant. Consult a professional for medical or legal advice.`, message)
}
