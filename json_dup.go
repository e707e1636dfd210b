package ndskema

import (
	"context"
	"io"
)

// DetectDuplicateKeys scans src to its end and reports every key repeated
// within one map, without decoding anything. maxIssues <= 0 means no limit.
// The returned error is set when the input itself is malformed; issues found
// before that point are still returned.
func DetectDuplicateKeys(ctx context.Context, src Source, maxIssues int) (Issues, error) {
	var found Issues
	s := EnforceSourceWith(src, DecodeOpt{Strictness: Strictness{OnDuplicateKey: Warn}}, func(iss Issue) {
		found = AppendIssues(found, newIssue(CodeDuplicateKey, iss.Path, map[string]any{"key": lastSegment(iss.Path)}))
		found[len(found)-1].Offset = iss.Offset
	})
	depth := 0
	for {
		if err := ctx.Err(); err != nil {
			return found, err
		}
		if maxIssues > 0 && len(found) >= maxIssues {
			return found[:maxIssues], nil
		}
		tok, err := s.NextToken()
		if err == io.EOF && depth > 0 {
			err = io.ErrUnexpectedEOF
		}
		if err == io.EOF {
			return found, nil
		}
		if err != nil {
			return found, toIssues(err, "", src.Location())
		}
		switch tok.Kind {
		case TokenBeginObject, TokenBeginArray:
			depth++
		case TokenEndObject, TokenEndArray:
			depth--
		}
	}
}

// DetectJSONDuplicateKeysBytes runs DetectDuplicateKeys over JSON bytes
// through the current JSON driver.
func DetectJSONDuplicateKeysBytes(data []byte, maxIssues int) (Issues, error) {
	return DetectDuplicateKeys(context.Background(), JSONBytes(data), maxIssues)
}

// DetectJSONDuplicateKeysReader runs DetectDuplicateKeys over a JSON reader.
func DetectJSONDuplicateKeysReader(r io.Reader, maxIssues int) (Issues, error) {
	return DetectDuplicateKeys(context.Background(), JSONReader(r), maxIssues)
}
