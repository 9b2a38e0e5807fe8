package question

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matthewbaird/signatures/internal/types"
)

//go:embed bank.yaml
var defaultBank []byte

type bankFile struct {
	Questions []types.Question `yaml:"questions"`
}

// DefaultBank decodes the embedded question bank.
func DefaultBank() ([]types.Question, error) {
	return LoadBank(defaultBank)
}

// LoadBank decodes a YAML question bank. Unknown fields are rejected.
func LoadBank(data []byte) ([]types.Question, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f bankFile
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding question bank: %w", err)
	}
	return f.Questions, nil
}

// LoadBankFile reads a YAML question bank from disk.
func LoadBankFile(path string) ([]types.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading question bank: %w", err)
	}
	return LoadBank(data)
}
