package config

import (
	"os"

	"github.com/XiaoConstantine/ropevo-go/pkg/emulator"
	"github.com/XiaoConstantine/ropevo-go/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ParseRegisterPatternFile reads a YAML file of named register patterns:
//
//	exec_mprotect:
//	  rax: 0x7d
//	  rdi: 0x1000
//	stack_pivot:
//	  rsp: 0xdeadbeef
//
// The pattern names are operator documentation; what comes back is one
// RegisterPattern per entry, in file order. A malformed file is a
// recoverable, caller-facing condition, so failures come back as Parsing
// errors rather than panics.
func ParseRegisterPatternFile(path string) ([]*emulator.RegisterPattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to read register pattern file"),
			errors.Fields{"path": path})
	}

	patterns, err := parseRegisterPatterns(data)
	if err != nil {
		return nil, errors.WithFields(err, errors.Fields{"path": path})
	}
	return patterns, nil
}

// parseRegisterPatterns decodes the document through yaml.Node rather
// than a map so that the file's register order survives into the
// patterns; pattern serialization depends on that order.
func parseRegisterPatterns(data []byte) ([]*emulator.RegisterPattern, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, errors.Parsing, "failed to parse register pattern file")
	}
	if len(doc.Content) == 0 {
		return nil, errors.New(errors.Parsing, "register pattern file is empty")
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New(errors.Parsing,
			"register pattern file must map pattern names to register maps")
	}

	var patterns []*emulator.RegisterPattern
	for i := 0; i+1 < len(root.Content); i += 2 {
		nameNode, bodyNode := root.Content[i], root.Content[i+1]
		if bodyNode.Kind != yaml.MappingNode {
			return nil, errors.WithFields(
				errors.New(errors.Parsing, "register pattern must map register names to values"),
				errors.Fields{"pattern": nameNode.Value})
		}

		pattern := emulator.NewRegisterPattern()
		for j := 0; j+1 < len(bodyNode.Content); j += 2 {
			regNode, valNode := bodyNode.Content[j], bodyNode.Content[j+1]
			var value uint64
			if err := valNode.Decode(&value); err != nil {
				return nil, errors.WithFields(
					errors.Wrap(err, errors.Parsing, "failed to parse register value"),
					errors.Fields{"pattern": nameNode.Value, "register": regNode.Value})
			}
			pattern.Set(regNode.Value, value)
		}
		patterns = append(patterns, pattern)
	}
	return patterns, nil
}
