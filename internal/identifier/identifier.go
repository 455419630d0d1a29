// Package identifier reads, classifies and names the resource identifiers
// handed to an evaluation batch.
package identifier

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
)

// Category is the kind of resource an identifier points at.
type Category string

const (
	Model   Category = "MODEL"
	Dataset Category = "DATASET"
	Code    Category = "CODE"
)

// ErrUnclassifiable is returned for identifiers that cannot be categorised at all.
var ErrUnclassifiable = errors.New("unclassifiable identifier")

const hubHost = "huggingface.co"

// Classify maps an identifier onto a category by pattern.
// Hub dataset pages are DATASET, other hub pages are MODEL and anything else
// is treated as a CODE repository.
func Classify(id string) (Category, error) {
	s := strings.TrimSpace(id)
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrUnclassifiable)
	}
	if strings.ContainsAny(s, " \t") {
		return "", fmt.Errorf("%w: %q contains whitespace", ErrUnclassifiable, s)
	}
	if _, err := url.Parse(s); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnclassifiable, err)
	}

	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, hubHost+"/datasets"):
		return Dataset, nil
	case strings.Contains(lower, hubHost):
		return Model, nil
	default:
		return Code, nil
	}
}

// ModelName returns the short model name: the last path segment, ignoring a
// trailing slash and any /tree/<revision> suffix. Non-hub identifiers are
// returned unchanged.
func ModelName(id string) string {
	if !strings.Contains(id, hubHost+"/") {
		return id
	}
	clean := strings.TrimRight(id, "/")
	if i := strings.Index(clean, "/tree/"); i >= 0 {
		clean = clean[:i]
	}
	return clean[strings.LastIndex(clean, "/")+1:]
}

// Read parses newline- or comma-separated identifiers, trimming whitespace
// and skipping blanks.
func Read(r io.Reader) ([]string, error) {
	var ids []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		for _, part := range strings.Split(sc.Text(), ",") {
			if p := strings.TrimSpace(part); p != "" {
				ids = append(ids, p)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan identifiers: %w", err)
	}
	return ids, nil
}

// ReadFile reads identifiers from path.
func ReadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open identifiers: %w", err)
	}
	defer f.Close()
	return Read(f)
}
