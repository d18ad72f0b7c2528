package openai

import (
	"fmt"
	"strings"

	"github.com/masterhudini/ainews/ai"
	"github.com/masterhudini/ainews/core"
)

const analysisResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "articles": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "url": {
            "type": "string"
          },
          "topic": {
            "type": "string"
          },
          "insight": {
            "type": "string"
          }
        },
        "required": ["url", "topic", "insight"],
        "additionalProperties": false
      }
    },
    "digest": {
      "type": "string"
    }
  },
  "required": ["articles", "digest"],
  "additionalProperties": false
}`

const analysisPromptTemplate = `You are an AI industry analyst. You will receive a batch of news articles,
each with a URL, a title, and a body excerpt. Classify every article and write a digest of the batch.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Return exactly one entry in "articles" for every article in the input, keyed by its URL copied verbatim.
- The topic field must match exactly one of the listed values: %s.
- The insight is a single sentence stating the most important takeaway of the article.
- The digest is a short paragraph (2-4 sentences) summarizing the batch as a whole.
- Base topics and insights only on the given text. Do not hallucinate facts not present in the articles.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.`

// buildAnalyzerPrompt creates the system prompt with the topic set embedded.
func buildAnalyzerPrompt() string {
	return fmt.Sprintf(analysisPromptTemplate,
		analysisResponseSchema,
		strings.Join(ai.Topics, ", "))
}

// bodyExcerptLength bounds how much of each body is sent to the model.
const bodyExcerptLength = 1500

// renderArticles formats a batch of articles as the user message for analysis.
func renderArticles(articles []*core.Article) string {
	var b strings.Builder
	for i, article := range articles {
		if i > 0 {
			b.WriteString("\n---\n")
		}
		fmt.Fprintf(&b, "URL: %s\n", article.URL)
		fmt.Fprintf(&b, "Title: %s\n", article.Title)
		fmt.Fprintf(&b, "Body: %s\n", excerpt(article.Body, bodyExcerptLength))
	}
	return b.String()
}

func excerpt(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
