package ndskema

// Strictness configures enforcement for duplicate keys.
type Strictness struct {
	OnDuplicateKey Severity // Warn or Error (duplicate keys in any input map).
}

// Severity expresses the severity level for issues.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// DecodeOpt bundles decoding options. The zero value applies no input limits.
type DecodeOpt struct {
	Strictness Strictness
	MaxDepth   int   // maximum container nesting of the input; 0 means unlimited
	MaxBytes   int64 // maximum consumed input bytes; 0 means unlimited
}

func lastOpt(opts []DecodeOpt) DecodeOpt {
	if len(opts) == 0 {
		return DecodeOpt{}
	}
	return opts[len(opts)-1]
}
