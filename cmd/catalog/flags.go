package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/asakaida/unicatalog/internal/entities"
)

// parseAttrFlags parses repeated --attr values of the form
// name[:type]=value. A value of exactly "null" clears the attribute.
//
//	--attr course_code=CS101 --attr credits:number=6 --attr syllabus:text=null
func parseAttrFlags(flags []string) (map[string]entities.AttributeInput, error) {
	if len(flags) == 0 {
		return nil, nil
	}

	attrs := make(map[string]entities.AttributeInput, len(flags))
	for _, flag := range flags {
		key, value, ok := strings.Cut(flag, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --attr %q: want name[:type]=value", flag)
		}
		name, typ, _ := strings.Cut(key, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("invalid --attr %q: %w", flag, entities.ErrAttributeNameRequired)
		}
		if _, dup := attrs[name]; dup {
			return nil, fmt.Errorf("attribute %q given more than once", name)
		}

		dataType := entities.DataType(strings.TrimSpace(typ))
		if value == "null" {
			attrs[name] = entities.Clear(dataType)
		} else {
			attrs[name] = entities.SetTo(value, dataType)
		}
	}
	return attrs, nil
}

// mergeAttrs folds flag attributes over attributes decoded from --json
func mergeAttrs(base, override map[string]entities.AttributeInput) map[string]entities.AttributeInput {
	if len(override) == 0 {
		return base
	}
	if base == nil {
		base = make(map[string]entities.AttributeInput, len(override))
	}
	for name, in := range override {
		base[name] = in
	}
	return base
}

// decodeJSONFlag decodes a --json document into dst
func decodeJSONFlag(raw string, dst interface{}) error {
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("invalid --json document: %w", err)
	}
	return nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: want a positive integer", arg)
	}
	return id, nil
}
