package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/poiesic/datamill/core"
)

// ReadMetadata reads metadata.json from a version directory.
func ReadMetadata(dir string) (*core.DatasetMetadata, error) {
	path := filepath.Join(dir, MetadataFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, notFound(path, err)
	}
	var meta core.DatasetMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrFormat, path, err)
	}
	return &meta, nil
}

// CountSamples counts the records in a version's data.jsonl without
// decoding them. A final line without a newline still counts.
func CountSamples(dir string) (int, error) {
	path := filepath.Join(dir, DataFile)
	f, err := os.Open(path)
	if err != nil {
		return 0, notFound(path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	buf := make([]byte, 32*1024)
	count := 0
	pending := false
	for {
		n, err := r.Read(buf)
		if n > 0 {
			lines := bytes.Count(buf[:n], []byte{'\n'})
			count += lines
			pending = buf[n-1] != '\n'
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}
	if pending {
		count++
	}
	return count, nil
}

// LoadSamples decodes every record of a version's data.jsonl in order.
func LoadSamples(dir string) ([]core.Sample, error) {
	path := filepath.Join(dir, DataFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, notFound(path, err)
	}
	defer f.Close()

	var samples []core.Sample
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		var s core.Sample
		if err := json.Unmarshal(scanner.Bytes(), &s); err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %w", core.ErrFormat, path, line, err)
		}
		samples = append(samples, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return samples, nil
}

func notFound(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", core.ErrNotFound, path)
	}
	return fmt.Errorf("failed to open %s: %w", path, err)
}
