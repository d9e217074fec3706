package agent

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/tailored-agentic-units/contract-review/core/contract"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	schemaOnce sync.Once
	schemaErr  error
	schemas    = make(map[string]*jsonschema.Schema)
)

func compileSchemas() error {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020

		for _, name := range []string{"review", "proposal"} {
			data, err := schemaFS.ReadFile("schemas/" + name + ".json")
			if err != nil {
				schemaErr = fmt.Errorf("read %s schema: %w", name, err)
				return
			}

			url := "schemas/" + name + ".json"
			if err := c.AddResource(url, strings.NewReader(string(data))); err != nil {
				schemaErr = fmt.Errorf("load %s schema: %w", name, err)
				return
			}

			compiled, err := c.Compile(url)
			if err != nil {
				schemaErr = fmt.Errorf("compile %s schema: %w", name, err)
				return
			}
			schemas[name] = compiled
		}
	})
	return schemaErr
}

// ExtractJSON returns the first complete JSON object embedded in text,
// tolerating surrounding prose and markdown fences. Text after the object is
// ignored, braces included.
func ExtractJSON(text string) (string, error) {
	for offset := 0; ; {
		i := strings.IndexByte(text[offset:], '{')
		if i < 0 {
			return "", fmt.Errorf("%w: no JSON object found", ErrInvalidResponse)
		}
		offset += i

		var raw json.RawMessage
		if err := json.NewDecoder(strings.NewReader(text[offset:])).Decode(&raw); err == nil {
			return string(raw), nil
		}
		offset++
	}
}

func validate(schema, text string) (string, error) {
	if err := compileSchemas(); err != nil {
		return "", err
	}

	raw, err := ExtractJSON(text)
	if err != nil {
		return "", err
	}

	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if err := schemas[schema].Validate(doc); err != nil {
		return "", fmt.Errorf("%w: %s schema: %v", ErrInvalidResponse, schema, err)
	}

	return raw, nil
}

// DecodeReview parses a completion into a ReviewResult.
func DecodeReview(text string) (contract.ReviewResult, error) {
	raw, err := validate("review", text)
	if err != nil {
		return contract.ReviewResult{}, err
	}

	var result contract.ReviewResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return contract.ReviewResult{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return result, nil
}

type proposalDocument struct {
	Proposals  []string       `json:"proposals"`
	Rationale  string         `json:"rationale"`
	Amendments map[string]any `json:"amendments"`
}

// DecodeProposal parses a completion into a proposal for c. Amendments name
// contract fields by their JSON names and are applied to a copy of c.
func DecodeProposal(text string, c contract.ContractInfo, iteration int) (Proposal, error) {
	raw, err := validate("proposal", text)
	if err != nil {
		return Proposal{}, err
	}

	var doc proposalDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return Proposal{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	amended, err := amend(c, doc.Amendments)
	if err != nil {
		return Proposal{}, err
	}

	return Proposal{
		Proposal: contract.NegotiationProposal{
			Iteration:   iteration,
			Proposals:   doc.Proposals,
			TargetScore: contract.TargetRiskScore,
			Rationale:   doc.Rationale,
			Changes:     c.Diff(amended),
		},
		Contract: amended,
	}, nil
}

func amend(c contract.ContractInfo, amendments map[string]any) (contract.ContractInfo, error) {
	if len(amendments) == 0 {
		return c, nil
	}

	data, err := json.Marshal(c)
	if err != nil {
		return c, err
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return c, err
	}
	for k, v := range amendments {
		fields[k] = v
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return c, err
	}

	var amended contract.ContractInfo
	if err := json.Unmarshal(merged, &amended); err != nil {
		return c, fmt.Errorf("%w: amendments: %v", ErrInvalidResponse, err)
	}
	if err := amended.Validate(); err != nil {
		return c, fmt.Errorf("%w: amendments: %w", ErrInvalidResponse, err)
	}
	return amended, nil
}
