// Package storage loads parallel string pairs from TSV, YAML and HTML files.
package storage

import (
	"bufio"
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
	"gopkg.in/yaml.v3"

	"github.com/happyhackingspace/parallign"
	"github.com/happyhackingspace/parallign/align"
	"github.com/happyhackingspace/parallign/internal/htmlutil"
)

// Format identifies an on-disk pair format.
type Format int

const (
	FormatTSV Format = iota
	FormatYAML
	FormatHTML
)

func (f Format) String() string {
	switch f {
	case FormatTSV:
		return "tsv"
	case FormatYAML:
		return "yaml"
	case FormatHTML:
		return "html"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// FormatOf returns the format implied by the file extension of name.
func FormatOf(name string) (Format, bool) {
	switch strings.ToLower(path.Ext(name)) {
	case ".tsv", ".txt":
		return FormatTSV, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".html", ".htm":
		return FormatHTML, true
	}
	return 0, false
}

// IterOptions controls pair loading behavior.
type IterOptions struct {
	DropDuplicates bool
	SkipMalformed  bool
	Verbose        bool
}

// DefaultIterOptions returns the default options for loading pairs.
// Duplicates are kept because pair frequency feeds the counts.
func DefaultIterOptions() IterOptions {
	return IterOptions{SkipMalformed: true}
}

// Storage wraps a folder of pair files.
type Storage struct {
	Folder string
}

// NewStorage creates a Storage for the given data folder.
func NewStorage(folder string) *Storage {
	return &Storage{Folder: folder}
}

// Files returns every supported file under the folder, sorted by path.
func (s *Storage) Files() ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.Folder, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := FormatOf(p); ok {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// IterPairs loads the pairs of every supported file in the folder.
func (s *Storage) IterPairs(opts IterOptions) ([]parallign.Pair, error) {
	files, err := s.Files()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.Folder, err)
	}
	var all []parallign.Pair
	for _, f := range files {
		pairs, err := readFile(f, opts)
		if err != nil {
			return nil, err
		}
		if opts.Verbose {
			slog.Debug("Loaded pair file", "path", f, "pairs", len(pairs))
		}
		all = append(all, pairs...)
	}
	if opts.DropDuplicates {
		all = dropDuplicates(all)
	}
	return all, nil
}

// ReadPairs loads pairs from a single file.
func ReadPairs(name string, opts IterOptions) ([]parallign.Pair, error) {
	pairs, err := readFile(name, opts)
	if err != nil {
		return nil, err
	}
	if opts.DropDuplicates {
		pairs = dropDuplicates(pairs)
	}
	return pairs, nil
}

func readFile(name string, opts IterOptions) ([]parallign.Pair, error) {
	format, ok := FormatOf(name)
	if !ok {
		return nil, fmt.Errorf("%s: unsupported file extension", name)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Decode(f, format, name, opts)
}

// Decode reads pairs in the given format. name is only used in messages.
// Malformed records fail with align.ErrFormat unless opts.SkipMalformed is set.
func Decode(r io.Reader, format Format, name string, opts IterOptions) ([]parallign.Pair, error) {
	switch format {
	case FormatTSV:
		return decodeTSV(r, name, opts)
	case FormatYAML:
		return decodeYAML(r, name, opts)
	case FormatHTML:
		return decodeHTML(r)
	}
	return nil, fmt.Errorf("%s: unknown format %v", name, format)
}

func decodeTSV(r io.Reader, name string, opts IterOptions) ([]parallign.Pair, error) {
	var pairs []parallign.Pair
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) != 2 {
			err := fmt.Errorf("%w: %s:%d: expected 2 tab-separated fields, got %d", align.ErrFormat, name, lineNo, len(parts))
			if opts.SkipMalformed {
				slog.Warn("Skipping malformed line", "error", err)
				continue
			}
			return nil, err
		}
		pairs = append(pairs, parallign.Pair{Source: parts[0], Target: parts[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return pairs, nil
}

// decodeYAML accepts a sequence of pairs, either at the top level or under
// a "pairs" key. Each item is a {source, target} mapping or a two-element list.
func decodeYAML(r io.Reader, name string, opts IterOptions) ([]parallign.Pair, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s: %v", align.ErrFormat, name, err)
	}
	node := &root
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if node.Kind == yaml.MappingNode {
		node = mappingValue(node, "pairs")
	}
	if node == nil || node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: %s: expected a list of pairs", align.ErrFormat, name)
	}

	pairs := make([]parallign.Pair, 0, len(node.Content))
	for _, item := range node.Content {
		p, err := yamlPair(item)
		if err != nil {
			err = fmt.Errorf("%w: %s:%d: %v", align.ErrFormat, name, item.Line, err)
			if opts.SkipMalformed {
				slog.Warn("Skipping malformed pair", "error", err)
				continue
			}
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func yamlPair(n *yaml.Node) (parallign.Pair, error) {
	switch n.Kind {
	case yaml.SequenceNode:
		var two []string
		if err := n.Decode(&two); err != nil {
			return parallign.Pair{}, err
		}
		if len(two) != 2 {
			return parallign.Pair{}, fmt.Errorf("expected 2 elements, got %d", len(two))
		}
		return parallign.Pair{Source: two[0], Target: two[1]}, nil
	case yaml.MappingNode:
		if mappingValue(n, "source") == nil && mappingValue(n, "target") == nil {
			return parallign.Pair{}, fmt.Errorf("mapping has neither source nor target")
		}
		var p parallign.Pair
		if err := n.Decode(&p); err != nil {
			return parallign.Pair{}, err
		}
		return p, nil
	}
	return parallign.Pair{}, fmt.Errorf("expected a mapping or a list")
}

func decodeHTML(r io.Reader) ([]parallign.Pair, error) {
	doc, err := htmlutil.LoadHTML(r)
	if err != nil {
		return nil, err
	}
	raw := htmlutil.ExtractPairs(doc)
	pairs := make([]parallign.Pair, len(raw))
	for i, p := range raw {
		pairs[i] = parallign.Pair{Source: p[0], Target: p[1]}
	}
	return pairs, nil
}

// dropDuplicates keeps the first occurrence of every (source, target) pair.
func dropDuplicates(pairs []parallign.Pair) []parallign.Pair {
	seen := make(map[string]bool, len(pairs))
	out := pairs[:0]
	for _, p := range pairs {
		hash := fmt.Sprintf("%x", md5.Sum([]byte(p.Source+"\x00"+p.Target)))
		if seen[hash] {
			continue
		}
		seen[hash] = true
		out = append(out, p)
	}
	return out
}

// FetchPairs downloads rawURL and decodes it by the extension of its path,
// falling back to HTML.
func FetchPairs(ctx context.Context, rawURL string, opts IterOptions) ([]parallign.Pair, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	format, ok := FormatOf(u.Path)
	if !ok {
		format = FormatHTML
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; parallign/1.0)")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	pairs, err := Decode(io.LimitReader(resp.Body, 10*1024*1024), format, rawURL, opts)
	if err != nil {
		return nil, err
	}
	if opts.DropDuplicates {
		pairs = dropDuplicates(pairs)
	}
	return pairs, nil
}

// IsURL reports whether s looks like an http(s) URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Load reads pairs from a URL, a directory or a single file.
func Load(ctx context.Context, source string, opts IterOptions) ([]parallign.Pair, error) {
	if IsURL(source) {
		return FetchPairs(ctx, source, opts)
	}
	info, err := os.Stat(source)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return NewStorage(source).IterPairs(opts)
	}
	return ReadPairs(source, opts)
}

// ModelName derives a model name from a data source: the registrable domain
// for URLs, otherwise the base name without extension.
func ModelName(source string) string {
	if IsURL(source) {
		return GetDomain(source)
	}
	base := filepath.Base(filepath.Clean(source))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// GetDomain extracts the domain name from a URL, without public suffix.
func GetDomain(rawURL string) string {
	host := rawURL
	if idx := strings.Index(host, "://"); idx >= 0 {
		host = host[idx+3:]
	}
	if idx := strings.Index(host, "/"); idx >= 0 {
		host = host[:idx]
	}
	if idx := strings.Index(host, ":"); idx >= 0 {
		host = host[:idx]
	}

	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	if idx := strings.Index(domain, "."); idx >= 0 {
		return domain[:idx]
	}
	return domain
}
