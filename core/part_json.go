package core

import (
	"encoding/json"
	"fmt"
)

// partEnvelope is the tagged wire form of a Part. The Type field selects
// which payload fields are meaningful, letting the closed Part set survive a
// JSON round trip through durable stores.
type partEnvelope struct {
	Type             string            `json:"type"`
	Text             string            `json:"text,omitempty"`
	Data             map[string]any    `json:"data,omitempty"`
	FunctionCall     *FunctionCall     `json:"function_call,omitempty"`
	FunctionResponse *FunctionResponse `json:"function_response,omitempty"`
	Metadata         map[string]any    `json:"metadata,omitempty"`
}

const (
	partTypeText             = "text"
	partTypeData             = "data"
	partTypeFunctionCall     = "function_call"
	partTypeFunctionResponse = "function_response"
)

type contentWire struct {
	Role  string         `json:"role,omitempty"`
	Parts []partEnvelope `json:"parts"`
}

// MarshalJSON encodes the content with type-tagged parts.
func (c Content) MarshalJSON() ([]byte, error) {
	wire := contentWire{Role: c.Role, Parts: make([]partEnvelope, 0, len(c.Parts))}

	for _, p := range c.Parts {
		switch part := p.(type) {
		case TextPart:
			wire.Parts = append(wire.Parts, partEnvelope{Type: partTypeText, Text: part.Text, Metadata: part.Metadata})
		case DataPart:
			wire.Parts = append(wire.Parts, partEnvelope{Type: partTypeData, Data: part.Data, Metadata: part.Metadata})
		case FunctionCallPart:
			fc := part.FunctionCall
			wire.Parts = append(wire.Parts, partEnvelope{Type: partTypeFunctionCall, FunctionCall: &fc, Metadata: part.Metadata})
		case FunctionResponsePart:
			fr := part.FunctionResponse
			wire.Parts = append(wire.Parts, partEnvelope{Type: partTypeFunctionResponse, FunctionResponse: &fr, Metadata: part.Metadata})
		default:
			return nil, fmt.Errorf("unsupported part type %T", p)
		}
	}

	return json.Marshal(wire)
}

// UnmarshalJSON decodes type-tagged parts back into the concrete Part set.
func (c *Content) UnmarshalJSON(data []byte) error {
	var wire contentWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	c.Role = wire.Role
	c.Parts = make([]Part, 0, len(wire.Parts))

	for _, env := range wire.Parts {
		switch env.Type {
		case partTypeText:
			c.Parts = append(c.Parts, TextPart{Text: env.Text, Metadata: env.Metadata})
		case partTypeData:
			c.Parts = append(c.Parts, DataPart{Data: env.Data, Metadata: env.Metadata})
		case partTypeFunctionCall:
			var fc FunctionCall
			if env.FunctionCall != nil {
				fc = *env.FunctionCall
			}
			c.Parts = append(c.Parts, FunctionCallPart{FunctionCall: fc, Metadata: env.Metadata})
		case partTypeFunctionResponse:
			var fr FunctionResponse
			if env.FunctionResponse != nil {
				fr = *env.FunctionResponse
			}
			c.Parts = append(c.Parts, FunctionResponsePart{FunctionResponse: fr, Metadata: env.Metadata})
		default:
			return fmt.Errorf("unsupported part type %q", env.Type)
		}
	}

	return nil
}
