package assistant

import (
	"google.golang.org/genai"

	"github.com/JaimeStill/docket/internal/cases"
)

func analysisSchema() *genai.Schema {
	severities := make([]string, 0, 3)
	for _, s := range cases.Severities() {
		severities = append(severities, string(s))
	}

	stringList := &genai.Schema{
		Type:  genai.TypeArray,
		Items: &genai.Schema{Type: genai.TypeString},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary":   {Type: genai.TypeString},
			"keyPoints": stringList,
			"risks": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"severity":    {Type: genai.TypeString, Enum: severities},
						"description": {Type: genai.TypeString},
					},
					Required: []string{"severity", "description"},
				},
			},
			"actions": stringList,
			"draftResponse": {
				Type:        genai.TypeString,
				Description: "The complete email with blank lines between paragraphs, ready to send.",
			},
		},
		Required: []string{"summary", "keyPoints", "risks", "actions", "draftResponse"},
	}
}
