package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/weave/ai"
)

const extractionResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "entities": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {
            "type": "string"
          },
          "type": {
            "type": "string"
          }
        },
        "required": ["name", "type"],
        "additionalProperties": false
      }
    }
  },
  "required": ["entities"],
  "additionalProperties": false
}`

const extractionPromptTemplate = `Extract the named entities mentioned in the given text and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- An entity name is the surface form exactly as it appears in the text, with surrounding whitespace removed. Do not lowercase, translate, or rephrase it.
- Type labels are upper-case NER tags. Prefer one of: %s.
- ORG is a company, agency, or institution. PERSON is a real or fictional person. GPE is a country, city, or state. DATE is an absolute or relative date expression. LOC is a non-GPE location. NORP is a nationality, religious, or political group.
- Include only entities that are explicitly mentioned in the text. Do not hallucinate.
- List each distinct entity once, even if it is mentioned multiple times.
- If no entities can be identified, return "entities": [].
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.



Example:
Input: "Marie Curie moved to Paris in 1891 to study at the Sorbonne."
Output:
{
  "entities": [
    {"name":"Marie Curie","type":"PERSON"},
    {"name":"Paris","type":"GPE"},
    {"name":"1891","type":"DATE"},
    {"name":"Sorbonne","type":"ORG"}
  ]
}

Example (informal, lowercase):
Input: "saw the new acme corp office in berlin yesterday"
Output:
{
  "entities": [
    {"name":"acme corp","type":"ORG"},
    {"name":"berlin","type":"GPE"},
    {"name":"yesterday","type":"DATE"}
  ]
}

Example (no entities):
Input: "the weather is nice today and i feel great"
Output:
{
  "entities": [
    {"name":"today","type":"DATE"}
  ]
}`

// buildSystemPrompt creates the system prompt with entity types embedded.
func buildSystemPrompt() string {
	return fmt.Sprintf(extractionPromptTemplate,
		extractionResponseSchema,
		strings.Join(ai.EntityTypes, ", "))
}
