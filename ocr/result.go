package ocr

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Result is the text extracted from a capture.
type Result struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Language   string  `json:"language"`
}

// Confidences used when the model ignores the requested JSON format.
const (
	rawTextConfidence     = 0.9
	invalidJSONConfidence = 0.8
	unknownLanguage       = "unknown"
)

const resultSchema = `{
  "type": "object",
  "required": ["text", "confidence", "language"],
  "properties": {
    "text":       {"type": "string"},
    "confidence": {"type": "number", "minimum": 0, "maximum": 1},
    "language":   {"type": "string"}
  }
}`

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(resultSchema))
	})
	return schema, schemaErr
}

// ParseResult extracts the JSON object the model was asked for. Replies
// without an object are taken verbatim; objects that fail validation fall
// back to the verbatim reply with a lower confidence.
func ParseResult(content string) Result {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return Result{Text: content, Confidence: rawTextConfidence, Language: unknownLanguage}
	}
	block := content[start : end+1]

	if err := validate(block); err != nil {
		return Result{Text: content, Confidence: invalidJSONConfidence, Language: unknownLanguage}
	}
	var r Result
	if err := json.Unmarshal([]byte(block), &r); err != nil {
		return Result{Text: content, Confidence: invalidJSONConfidence, Language: unknownLanguage}
	}
	return r
}

func validate(block string) error {
	s, err := compiledSchema()
	if err != nil {
		return err
	}
	res, err := s.Validate(gojsonschema.NewStringLoader(block))
	if err != nil {
		return err
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("ocr result does not match schema: %s", strings.Join(msgs, "; "))
	}
	return nil
}
