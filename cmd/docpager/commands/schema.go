package commands

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Alp4ka/docpager"
)

// buildSchema builds a schema from field declarations of the form
// "name:type[:option...]", where options are nullable, unique, unsortable
// and hidden.
func buildSchema(idType string, fields []string) (*docpager.Schema, error) {
	typ, err := docpager.ParseFieldType(idType)
	if err != nil {
		return nil, fmt.Errorf("invalid identifier type: %w", err)
	}

	schema := docpager.NewSchema("_id", typ)
	for _, decl := range fields {
		parts := strings.Split(decl, ":")
		if len(parts) < 2 || parts[0] == "" {
			return nil, fmt.Errorf("invalid field declaration '%s': expected name:type[:option...]", decl)
		}

		typ, err = docpager.ParseFieldType(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid field declaration '%s': %w", decl, err)
		}

		opts := make([]docpager.FieldOption, 0, len(parts)-2)
		for _, opt := range parts[2:] {
			switch opt {
			case "nullable":
				opts = append(opts, docpager.Nullable())
			case "unique":
				opts = append(opts, docpager.Unique())
			case "unsortable":
				opts = append(opts, docpager.Unsortable())
			case "hidden":
				opts = append(opts, docpager.Hidden())
			default:
				return nil, fmt.Errorf("invalid field declaration '%s': unknown option '%s'", decl, opt)
			}
		}

		schema.Field(parts[0], typ, opts...)
	}

	return schema, nil
}

// parseFilter turns "field=value" pairs into query parameters.
func parseFilter(pairs []string) (url.Values, error) {
	values := url.Values{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter '%s': expected field=value", pair)
		}

		values.Add(key, value)
	}

	return values, nil
}
