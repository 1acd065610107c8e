package agent

import (
	"google.golang.org/genai"
)

// Part is one element of an event's content. The concrete type is one of
// TextPart, FunctionCallPart, FunctionResponsePart or UnknownPart.
type Part interface {
	isPart()
}

type TextPart struct {
	Text    string
	Thought bool
}

type FunctionCallPart struct {
	Name string
	Args map[string]any
}

type FunctionResponsePart struct {
	Name     string
	Response map[string]any
}

// Result returns response.result when it is a non-empty string.
func (p FunctionResponsePart) Result() (string, bool) {
	if p.Response == nil {
		return "", false
	}
	s, ok := p.Response["result"].(string)
	return s, ok && s != ""
}

// UnknownPart is a part with none of the recognized fields (inline data,
// executable code and so on). Extractors skip it.
type UnknownPart struct{}

func (TextPart) isPart()             {}
func (FunctionCallPart) isPart()     {}
func (FunctionResponsePart) isPart() {}
func (UnknownPart) isPart()          {}

// ParseParts converts genai content into tagged parts. Nil content and nil
// parts are tolerated.
func ParseParts(c *genai.Content) []Part {
	if c == nil {
		return nil
	}

	parts := make([]Part, 0, len(c.Parts))
	for _, p := range c.Parts {
		switch {
		case p == nil:
			continue
		case p.FunctionCall != nil:
			parts = append(parts, FunctionCallPart{Name: p.FunctionCall.Name, Args: p.FunctionCall.Args})
		case p.FunctionResponse != nil:
			parts = append(parts, FunctionResponsePart{Name: p.FunctionResponse.Name, Response: p.FunctionResponse.Response})
		case p.Text != "":
			parts = append(parts, TextPart{Text: p.Text, Thought: p.Thought})
		default:
			parts = append(parts, UnknownPart{})
		}
	}
	return parts
}
