package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/reoring/ndskema"
	"github.com/reoring/ndskema/ndarrow"
	"github.com/reoring/ndskema/source/cbor"
	"github.com/reoring/ndskema/source/gojson"
	jsonsrc "github.com/reoring/ndskema/source/json"
	"github.com/reoring/ndskema/source/msgpack"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// exitError carries the process exit code out of a subcommand.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func fatalf(format string, a ...any) error {
	return &exitError{code: 1, msg: fmt.Sprintf(format, a...)}
}

func usageErr(format string, a ...any) error {
	return &exitError{code: 2, msg: fmt.Sprintf(format, a...)}
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}
	var err error
	switch args[0] {
	case "decode":
		err = decodeCmd(args[1:], stdout, stderr)
	case "check":
		err = checkCmd(args[1:], stdout, stderr)
	default:
		usage(stderr)
		return 2
	}
	if err == nil {
		return 0
	}
	if ee, ok := err.(*exitError); ok {
		if ee.msg != "" {
			fmt.Fprintln(stderr, ee.msg)
		}
		return ee.code
	}
	fmt.Fprintln(stderr, err)
	return 1
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "ndskema CLI\n\nUsage:\n  ndskema decode -schema schema.json -input data.json [-format json|gojson|msgpack|cbor] [-max-depth N] [-max-bytes N] [-strict-dup] [-arrow] [-v]\n  ndskema check -schema schema.yaml\n\nNotes:\n  - Schema files ending in .yaml or .yml are read as YAML, anything else as JSON.")
}

func decodeCmd(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		schemaPath string
		inputPath  string
		format     string
		maxDepth   int
		maxBytes   int64
		strictDup  bool
		withArrow  bool
		verbose    bool
	)
	fs.StringVar(&schemaPath, "schema", "", "schema file (.json, .yaml or .yml)")
	fs.StringVar(&inputPath, "input", "", "input document; - reads stdin")
	fs.StringVar(&format, "format", "json", "input format: json, gojson, msgpack or cbor")
	fs.IntVar(&maxDepth, "max-depth", 0, "maximum input nesting depth (0 = unlimited)")
	fs.Int64Var(&maxBytes, "max-bytes", 0, "maximum input size in bytes (0 = unlimited)")
	fs.BoolVar(&strictDup, "strict-dup", false, "reject duplicate keys anywhere in the input")
	fs.BoolVar(&withArrow, "arrow", false, "include the Arrow type of each buffer")
	fs.BoolVar(&verbose, "v", false, "enable verbose logs")
	if err := fs.Parse(args); err != nil {
		return usageErr("")
	}
	if schemaPath == "" || inputPath == "" {
		fs.Usage()
		return usageErr("")
	}
	if verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return fatalf("logger: %v", err)
		}
		defer func() { _ = l.Sync() }()
		ndskema.SetLogger(l)
	}

	s, err := loadSchema(schemaPath)
	if err != nil {
		return fatalf("schema %s: %v", schemaPath, err)
	}

	in, closeIn, err := openInput(inputPath)
	if err != nil {
		return fatalf("input: %v", err)
	}
	defer closeIn()

	opt := ndskema.DecodeOpt{MaxDepth: maxDepth, MaxBytes: maxBytes}
	if strictDup {
		opt.Strictness.OnDuplicateKey = ndskema.Error
	}

	ctx := context.Background()
	var v ndskema.Value
	switch format {
	case "json":
		v, err = ndskema.Decode(ctx, s, jsonsrc.NewReader(in), opt)
	case "gojson":
		v, err = ndskema.Decode(ctx, s, gojson.Driver().NewReader(in), opt)
	case "msgpack":
		v, err = ndskema.Decode(ctx, s, msgpack.NewReader(in), opt)
	case "cbor":
		v, err = ndskema.Decode(ctx, s, cbor.NewReader(in), opt)
	default:
		return usageErr("unknown format %q", format)
	}
	if err != nil {
		return fatalf("decode: %v", err)
	}

	out := summarize(v, "", withArrow)
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fatalf("write: %v", err)
	}
	return nil
}

func checkCmd(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var schemaPath string
	fs.StringVar(&schemaPath, "schema", "", "schema file (.json, .yaml or .yml)")
	if err := fs.Parse(args); err != nil {
		return usageErr("")
	}
	if schemaPath == "" {
		fs.Usage()
		return usageErr("")
	}
	s, err := loadSchema(schemaPath)
	if err != nil {
		return fatalf("schema %s: %v", schemaPath, err)
	}
	b, err := json.MarshalIndent(s.JSONSchema(), "", "  ")
	if err != nil {
		return fatalf("render: %v", err)
	}
	fmt.Fprintln(stdout, string(b))
	return nil
}

func loadSchema(path string) (*ndskema.Schema, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ndskema.ParseSchemaYAML(b)
	default:
		return ndskema.ParseSchemaJSON(b)
	}
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

// entry describes one decoded value by its JSON Pointer.
type entry struct {
	Path  string `json:"path"`
	Kind  string `json:"kind"`
	DType string `json:"dtype,omitempty"`
	Shape []int  `json:"shape,omitempty"`
	Value any    `json:"value,omitempty"`
	Arrow string `json:"arrow,omitempty"`
}

// summarize flattens v into one entry per buffer or dynamic value, in
// output order.
func summarize(v ndskema.Value, path string, withArrow bool) []entry {
	pointer := path
	if pointer == "" {
		pointer = "/"
	}
	switch t := v.(type) {
	case ndskema.List:
		var out []entry
		for i, e := range t {
			out = append(out, summarize(e, path+"/"+strconv.Itoa(i), withArrow)...)
		}
		return out
	case *ndskema.Map:
		var out []entry
		t.Range(func(k string, e ndskema.Value) bool {
			out = append(out, summarize(e, path+"/"+escape(k), withArrow)...)
			return true
		})
		return out
	case ndskema.Dynamic:
		return []entry{{Path: pointer, Kind: "dynamic", Value: t.Interface()}}
	case ndskema.Buffer:
		e := entry{Path: pointer, DType: t.DType().String()}
		if t.IsScalar() {
			e.Kind = "scalar"
			e.Value = t.At(0)
		} else {
			e.Kind = "array"
			e.Shape = t.Dims()
		}
		if withArrow {
			shape := t.Dims()
			if shape == nil {
				shape = []int{1}
			}
			if dt, err := ndarrow.ArrayType(t.DType(), shape); err == nil {
				e.Arrow = dt.String()
			}
		}
		return []entry{e}
	}
	return nil
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func escape(k string) string { return pointerEscaper.Replace(k) }
