// Package prompt assembles structured LLM prompts from declarative specs.
// A prompt is a sequence of [SECTION] blocks; the response schema travels in
// its own section so every provider sees the same contract regardless of
// native schema support.
package prompt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Field describes a single output field in a simple schema.
type Field struct {
	Name        string
	Type        string
	Required    bool
	Description string
}

// Example captures an optional input/output example pair.
type Example struct {
	InputJSON  string
	OutputJSON string
}

// StructuredSpec defines the sections of a structured prompt.
type StructuredSpec struct {
	Purpose      string
	Background   string
	OutputFields []Field
	Constraints  []string
	Rules        []string
	Assumptions  []string
	ResponseJSON map[string]any // rendered as [OUTPUT_SCHEMA]
	OutputFormat string
	Language     string
	Examples     []Example
}

// Builder renders a prompt for the given request input.
type Builder func(ctx context.Context, input any) (string, error)

// StructuredBuilder renders a structured prompt with the input embedded as
// indented JSON.
func StructuredBuilder(spec StructuredSpec) Builder {
	return func(_ context.Context, input any) (string, error) {
		if strings.TrimSpace(spec.Purpose) == "" {
			return "", fmt.Errorf("prompt: purpose is empty")
		}
		inputJSON, err := formatAnyJSON(input)
		if err != nil {
			return "", fmt.Errorf("prompt: encode input: %w", err)
		}
		schemaJSON := ""
		if spec.ResponseJSON != nil {
			b, err := json.MarshalIndent(spec.ResponseJSON, "", "  ")
			if err != nil {
				return "", fmt.Errorf("prompt: encode schema: %w", err)
			}
			schemaJSON = string(b)
		}

		var buf bytes.Buffer
		writeSection(&buf, "PURPOSE", spec.Purpose)
		writeSection(&buf, "BACKGROUND", spec.Background)
		writeSection(&buf, "INPUT", inputJSON)
		writeSection(&buf, "OUTPUT", formatFields(spec.OutputFields))
		writeSection(&buf, "OUTPUT_SCHEMA", schemaJSON)
		writeSection(&buf, "CONSTRAINTS", formatList(spec.Constraints))
		writeSection(&buf, "RULES", formatList(spec.Rules))
		writeSection(&buf, "ASSUMPTIONS", formatList(spec.Assumptions))
		writeSection(&buf, "OUTPUT_FORMAT", spec.OutputFormat)
		writeSection(&buf, "LANGUAGE", spec.Language)
		if len(spec.Examples) > 0 {
			writeSection(&buf, "EXAMPLES", formatExamples(spec.Examples))
		}
		return strings.TrimSpace(buf.String()) + "\n", nil
	}
}

func formatAnyJSON(v any) (string, error) {
	if v == nil {
		return "null", nil
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func formatFields(fields []Field) string {
	var buf strings.Builder
	for _, f := range fields {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			continue
		}
		req := "optional"
		if f.Required {
			req = "required"
		}
		if f.Description != "" {
			fmt.Fprintf(&buf, "- %s (%s, %s): %s\n", name, f.Type, req, f.Description)
		} else {
			fmt.Fprintf(&buf, "- %s (%s, %s)\n", name, f.Type, req)
		}
	}
	return strings.TrimRight(buf.String(), "\n")
}

func formatList(items []string) string {
	var buf strings.Builder
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		fmt.Fprintf(&buf, "- %s\n", item)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func formatExamples(examples []Example) string {
	var buf strings.Builder
	for i, ex := range examples {
		fmt.Fprintf(&buf, "Example %d:\n", i+1)
		if strings.TrimSpace(ex.InputJSON) != "" {
			buf.WriteString("INPUT:\n" + strings.TrimRight(ex.InputJSON, "\n") + "\n")
		}
		if strings.TrimSpace(ex.OutputJSON) != "" {
			buf.WriteString("OUTPUT:\n" + strings.TrimRight(ex.OutputJSON, "\n") + "\n")
		}
		buf.WriteString("\n")
	}
	return strings.TrimRight(buf.String(), "\n")
}

func writeSection(buf *bytes.Buffer, title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	buf.WriteString("[" + title + "]\n")
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString("\n")
}
