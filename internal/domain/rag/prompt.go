package rag

import "strings"

// ContextSeparator joins retrieved chunks in the grounded prompt. A visible
// divider keeps adjacent chunks from bleeding into each other.
const ContextSeparator = "\n\n---\n\n"

// RefusalLine is the fixed off-topic answer mandated by the no-context
// template.
const RefusalLine = "That's not in the context. I can only answer questions related to your uploaded document."

const noContextTemplate = `You are a helpful AI assistant. You can only answer questions related to the documents the user uploads in this chat.

If the user asks anything that is not related to their uploaded documents, respond politely with:
"` + RefusalLine + `"

If the user talks about or asks something related to their documents but has not uploaded any yet, respond with:
"Please upload a document first so I can assist you with it."

Otherwise, if the user's message is about their uploaded document, respond naturally and helpfully.

USER MESSAGE: `

const groundedTemplate = `You are a helpful AI assistant that answers questions about documents.

Your task is to provide detailed and comprehensive answers based solely on the information in the context below.

Rules:
- Use ONLY the information provided in the context
- Be thorough and detailed in your explanations
- If the answer requires multiple pieces of information, combine them into a complete response
- If the information is not in the context, clearly state that
- Maintain a natural, conversational tone

CONTEXT:
`

// BuildPrompt selects the grounded template when contextText is non-empty and
// the conversational no-context template otherwise. Pure function; the
// template text is a deployment constant.
func BuildPrompt(queryText, contextText string) string {
	if strings.TrimSpace(contextText) == "" {
		return noContextTemplate + queryText + "\n\nRESPONSE:"
	}
	var b strings.Builder
	b.WriteString(groundedTemplate)
	b.WriteString(contextText)
	b.WriteString("\n\nQUESTION: ")
	b.WriteString(queryText)
	b.WriteString("\n\nANSWER:")
	return b.String()
}
