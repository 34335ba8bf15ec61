package starmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Dataset Serialization API
// =============================================================================

// MarshalDataset converts a dataset to indented JSON bytes.
func MarshalDataset(ds *Dataset) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteDataset(ds, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteDataset writes a dataset as JSON to w.
func WriteDataset(ds *Dataset, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ds); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteDatasetFile writes a dataset to a JSON file.
func WriteDatasetFile(ds *Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteDataset(ds, f)
}

// ReadDataset decodes a dataset from r.
//
// Two shapes are accepted: the dataset object written by [WriteDataset], and
// a bare array of system connections as produced by the original extraction
// scripts.
func ReadDataset(r io.Reader) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("decode: empty input")
	}

	if data[0] == '[' {
		var systems []SystemConnection
		if err := json.Unmarshal(data, &systems); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		return &Dataset{Systems: systems}, nil
	}

	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &ds, nil
}

// ReadDatasetFile reads a dataset from a JSON file.
func ReadDatasetFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadDataset(f)
}
