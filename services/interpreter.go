package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"zillow-finder/llm"
	"zillow-finder/models"
	"zillow-finder/utils"
)

const interpreterInstruction = "Parse any real-estate query into JSON keys " +
	"homeType, zipcode, city, state; default homeType='homes'."

var errNoJSONObject = errors.New("no JSON object in response")

// Interpreter turns free text into a StructuredFilter using a language model.
// It never retries; retry policy belongs to the Completer.
type Interpreter struct {
	completer llm.Completer
	timeout   time.Duration
	logger    *utils.Logger
}

// NewInterpreter creates an Interpreter. A zero timeout means no deadline
// beyond the caller's context.
func NewInterpreter(completer llm.Completer, timeout time.Duration, logger *utils.Logger) *Interpreter {
	return &Interpreter{completer: completer, timeout: timeout, logger: logger}
}

// Interpret returns the filter for text, or an error wrapping ErrNotInterpretable.
func (i *Interpreter) Interpret(ctx context.Context, text string) (models.StructuredFilter, error) {
	if strings.TrimSpace(text) == "" {
		return models.StructuredFilter{}, fmt.Errorf("%w: empty query", ErrNotInterpretable)
	}

	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	raw, err := i.completer.Complete(ctx, interpreterInstruction, text)
	if err != nil {
		return models.StructuredFilter{}, fmt.Errorf("%w: %v", ErrNotInterpretable, err)
	}

	obj, err := parseLenientJSON(raw)
	if err != nil {
		i.logger.Debug("[interpreter] Unparseable reply: %q", raw)
		return models.StructuredFilter{}, fmt.Errorf("%w: %v", ErrNotInterpretable, err)
	}
	if len(obj) == 0 {
		return models.StructuredFilter{}, fmt.Errorf("%w: empty result", ErrNotInterpretable)
	}

	return filterFromMap(obj), nil
}

// parseLenientJSON extracts a JSON object from a model reply that may be
// wrapped in a code fence or surrounded by prose. Attempts, in order: the
// trimmed text, the text with fence markers removed, and the span from the
// first '{' to the last '}'.
func parseLenientJSON(text string) (map[string]any, error) {
	trimmed := strings.TrimSpace(text)
	if obj, ok := decodeObject(trimmed); ok {
		return obj, nil
	}

	unfenced := stripCodeFence(trimmed)
	if obj, ok := decodeObject(unfenced); ok {
		return obj, nil
	}

	start, end := strings.Index(unfenced, "{"), strings.LastIndex(unfenced, "}")
	if start >= 0 && start < end {
		if obj, ok := decodeObject(unfenced[start : end+1]); ok {
			return obj, nil
		}
	}
	return nil, errNoJSONObject
}

func decodeObject(s string) (map[string]any, bool) {
	if s == "" {
		return nil, false
	}
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return nil, false
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, false
	}
	return obj, true
}

// stripCodeFence removes a leading ```lang marker and a trailing ``` marker.
func stripCodeFence(s string) string {
	if strings.HasPrefix(s, "```") {
		s = s[3:]
		if nl := strings.IndexAny(s, "\r\n"); nl >= 0 && isFenceLang(s[:nl]) {
			s = s[nl:]
		} else if nl < 0 && isFenceLang(s) {
			s = ""
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func isFenceLang(s string) bool {
	for _, r := range s {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}

func filterFromMap(obj map[string]any) models.StructuredFilter {
	f := models.StructuredFilter{
		HomeType: strings.TrimSpace(models.Stringify(obj["homeType"])),
		Zipcode:  strings.TrimSpace(models.Stringify(obj["zipcode"])),
		City:     strings.TrimSpace(models.Stringify(obj["city"])),
		State:    strings.TrimSpace(models.Stringify(obj["state"])),
	}
	if f.HomeType == "" {
		f.HomeType = models.DefaultHomeType
	}
	return f
}
