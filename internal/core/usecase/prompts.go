package usecase

import (
	"fmt"
	"strings"

	"github.com/mkorolev/insight-router/internal/core/domain"
)

func buildClassificationPrompt(query string) string {
	return fmt.Sprintf(`You are a routing component for a query API.
Classify the user request into exactly one category and answer with that
single word, nothing else:

chart - the user wants a chart or visualization
rag - the user wants information that should be answered from the knowledge base
both - the user wants information and a chart
direct - small talk or a request that needs neither

User request:
%s`, query)
}

func buildExtractionPrompt(query string) string {
	return fmt.Sprintf(`Extract visualization parameters from the user request.
Return strict JSON object with keys:
chartKind (one of: bar, line, pie, doughnut, radar), title (string), dataDescription (string).
No markdown, no extra keys.

User request:
%s`, query)
}

func buildAnswerSynthesisPrompt(entries []domain.RetrievedEntry, question string) string {
	var contextBuilder strings.Builder
	for _, entry := range entries {
		contextBuilder.WriteString(fmt.Sprintf(
			"[%s]\nQ: %s\nA: %s\n\n",
			entry.ID,
			entry.Question,
			entry.Answer,
		))
	}

	return fmt.Sprintf(`Answer the user question only from the context below.
If the context is insufficient, say it directly.

Question:
%s

Context:
%s`, question, contextBuilder.String())
}

func buildCombinedSynthesisPrompt(ragAnswer, chartSummary string) string {
	return fmt.Sprintf(`Combine the following answer and chart description into
one cohesive reply that answers the question and mentions the created chart.
Return plain text.

Answer:
%s

Chart:
%s`, ragAnswer, chartSummary)
}

func buildDirectReplyPrompt(query string) string {
	return fmt.Sprintf(`You are a helpful assistant. Answer briefly and politely.

User:
%s`, query)
}
