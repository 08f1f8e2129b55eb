package director

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WriteScript validates script and stores it as YAML, creating the parent
// directory when needed. Nothing is written for an invalid script.
func WriteScript(script *Script, path string) error {
	if err := script.Validate(); err != nil {
		return fmt.Errorf("script %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(script); err != nil {
		f.Close()
		return fmt.Errorf("encode script %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadScript decodes and validates a script. Unknown keys are an error.
func ReadScript(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var script Script
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&script); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("script %s: %w", path, ErrEmptyScript)
		}
		return nil, fmt.Errorf("parse script %s: %w", path, err)
	}
	if err := script.Validate(); err != nil {
		return nil, fmt.Errorf("script %s: %w", path, err)
	}
	return &script, nil
}
