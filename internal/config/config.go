// Package config loads the optional .scorebind.kdl project file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/ndisidore/scorebind/pkg/xmlschema"
)

// FileName is the project configuration file looked up in the working
// directory.
const FileName = ".scorebind.kdl"

// Sentinel errors for configuration failures.
var (
	ErrNoConfig       = errors.New("no configuration file found")
	ErrUnknownNode    = errors.New("unknown node type")
	ErrDuplicateField = errors.New("duplicate field")
	ErrMissingField   = errors.New("missing required field")
	ErrExtraArgs      = errors.New("too many arguments")
	ErrTypeMismatch   = errors.New("argument type mismatch")
	ErrInvalidValue   = errors.New("invalid value")
)

// Config is the project configuration. Command-line flags override it.
type Config struct {
	Parse ParseConfig
	Write WriteConfig
	Batch BatchConfig
}

// ParseConfig controls measure decoding.
type ParseConfig struct {
	Lax     bool
	KeepDOM bool
}

// WriteConfig controls document output.
type WriteConfig struct {
	Indent int
}

// BatchConfig controls multi-file commands.
type BatchConfig struct {
	Parallelism int // 0 means one worker per CPU
	Ignore      []string
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{Write: WriteConfig{Indent: 2}}
}

// Flags converts the parse section to decoder flags.
func (p ParseConfig) Flags() xmlschema.Flags {
	var f xmlschema.Flags
	if p.Lax {
		f |= xmlschema.FlagLax
	}
	if p.KeepDOM {
		f |= xmlschema.FlagKeepDOM
	}
	return f
}

// Find returns the path of FileName in dir when it exists.
func Find(dir string) (string, bool) {
	path := filepath.Join(dir, FileName)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

// LoadFile reads and parses the configuration at path. A missing file
// yields ErrNoConfig.
func LoadFile(path string) (cfg Config, err error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("%s: %w", path, ErrNoConfig)
		}
		return Config{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()
	return Parse(f, path)
}

// Parse parses KDL content from r on top of Default().
func Parse(r io.Reader, filename string) (Config, error) {
	doc, err := kdl.Parse(r)
	if err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", filename, err)
	}

	cfg := Default()
	seen := make(map[string]bool, len(doc.Nodes))
	for _, node := range doc.Nodes {
		name := node.Name.ValueString()
		if seen[name] {
			return Config{}, fmt.Errorf("%s: %w: %q", filename, ErrDuplicateField, name)
		}
		seen[name] = true

		switch name {
		case "parse":
			err = parseSection(node, &cfg.Parse)
		case "write":
			err = writeSection(node, &cfg.Write)
		case "batch":
			err = batchSection(node, &cfg.Batch)
		default:
			err = fmt.Errorf("%w: %q (expected parse, write or batch)", ErrUnknownNode, name)
		}
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", filename, err)
		}
	}
	return cfg, nil
}

// ParseString parses KDL content from a string.
func ParseString(content string) (Config, error) {
	return Parse(strings.NewReader(content), "<string>")
}

func parseSection(node *document.Node, p *ParseConfig) error {
	for _, child := range node.Children {
		name := child.Name.ValueString()
		switch name {
		case "lax":
			v, err := flagArg(child)
			if err != nil {
				return fmt.Errorf("parse: %s: %w", name, err)
			}
			p.Lax = v
		case "keep-dom":
			v, err := flagArg(child)
			if err != nil {
				return fmt.Errorf("parse: %s: %w", name, err)
			}
			p.KeepDOM = v
		case "flags":
			names, err := stringArgs(child)
			if err != nil {
				return fmt.Errorf("parse: flags: %w", err)
			}
			f, err := xmlschema.ParseFlags(names)
			if err != nil {
				return fmt.Errorf("parse: flags: %w", err)
			}
			p.Lax = p.Lax || f.Has(xmlschema.FlagLax)
			p.KeepDOM = p.KeepDOM || f.Has(xmlschema.FlagKeepDOM)
		default:
			return fmt.Errorf("parse: %w: %q", ErrUnknownNode, name)
		}
	}
	return nil
}

func writeSection(node *document.Node, w *WriteConfig) error {
	for _, child := range node.Children {
		name := child.Name.ValueString()
		if name != "indent" {
			return fmt.Errorf("write: %w: %q", ErrUnknownNode, name)
		}
		n, err := intArg(child)
		if err != nil {
			return fmt.Errorf("write: indent: %w", err)
		}
		if n < 0 || n > 16 {
			return fmt.Errorf("write: indent %d: %w (expected 0..16)", n, ErrInvalidValue)
		}
		w.Indent = n
	}
	return nil
}

func batchSection(node *document.Node, b *BatchConfig) error {
	for _, child := range node.Children {
		name := child.Name.ValueString()
		switch name {
		case "parallelism":
			n, err := intArg(child)
			if err != nil {
				return fmt.Errorf("batch: parallelism: %w", err)
			}
			if n < 0 {
				return fmt.Errorf("batch: parallelism %d: %w", n, ErrInvalidValue)
			}
			b.Parallelism = n
		case "ignore":
			patterns, err := stringArgs(child)
			if err != nil {
				return fmt.Errorf("batch: ignore: %w", err)
			}
			b.Ignore = append(b.Ignore, patterns...)
		default:
			return fmt.Errorf("batch: %w: %q", ErrUnknownNode, name)
		}
	}
	return nil
}

// flagArg reads a switch node: no argument means true, otherwise exactly
// one boolean.
func flagArg(node *document.Node) (bool, error) {
	switch len(node.Arguments) {
	case 0:
		return true, nil
	case 1:
		b, ok := node.Arguments[0].ResolvedValue().(bool)
		if !ok {
			return false, fmt.Errorf("not a boolean: %w", ErrTypeMismatch)
		}
		return b, nil
	default:
		return false, fmt.Errorf("got %d arguments: %w", len(node.Arguments), ErrExtraArgs)
	}
}

// intArg reads exactly one integer argument.
func intArg(node *document.Node) (int, error) {
	switch {
	case len(node.Arguments) == 0:
		return 0, ErrMissingField
	case len(node.Arguments) > 1:
		return 0, fmt.Errorf("got %d arguments: %w", len(node.Arguments), ErrExtraArgs)
	}
	switch v := node.Arguments[0].ResolvedValue().(type) {
	case int64:
		return int(v), nil
	case int:
		return v, nil
	case float64:
		if v == float64(int(v)) {
			return int(v), nil
		}
	}
	return 0, fmt.Errorf("not an integer: %w", ErrTypeMismatch)
}

// stringArgs reads one or more string arguments.
func stringArgs(node *document.Node) ([]string, error) {
	if len(node.Arguments) == 0 {
		return nil, ErrMissingField
	}
	out := make([]string, 0, len(node.Arguments))
	for i, arg := range node.Arguments {
		s, ok := arg.ResolvedValue().(string)
		if !ok {
			return nil, fmt.Errorf("argument %d: not a string: %w", i, ErrTypeMismatch)
		}
		out = append(out, s)
	}
	return out, nil
}
