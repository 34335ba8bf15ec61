package config

import (
	stderrors "errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/auroramap/pkg/errors"
)

// validate is a singleton validator instance reporting TOML key names.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every section and returns the first violation as an
// INVALID_CONFIG error.
func (c *Config) Validate() error {
	c.Cache.Redis.Enabled = c.Cache.Backend == CacheRedis
	if c.Source.Save != "" && c.Source.Dataset != "" {
		return errors.New(errors.ErrCodeInvalidConfig, "source.save and source.dataset are mutually exclusive")
	}
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid config")
	}

	e := verrs[0]
	field := keyPath(e.Namespace())
	switch e.Tag() {
	case "required", "required_if":
		return errors.New(errors.ErrCodeInvalidConfig, "%s is required", field)
	case "oneof":
		return errors.New(errors.ErrCodeInvalidConfig, "%s must be one of: %s, got %v", field, strings.ReplaceAll(e.Param(), " ", ", "), e.Value())
	case "gt", "gte", "lt", "lte":
		return errors.New(errors.ErrCodeInvalidConfig, "%s must be %s %s, got %v", field, comparison(e.Tag()), e.Param(), e.Value())
	case "gtfield", "gtefield":
		return errors.New(errors.ErrCodeInvalidConfig, "%s must be %s %s", field, comparison(strings.TrimSuffix(e.Tag(), "field")), keyPath(e.Param()))
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "%s: validation failed (%s)", field, e.Tag())
	}
}

// keyPath turns "Config.layout.base_radius" into "layout.base_radius" and
// a Go field name like "MinScale" into "min_scale".
func keyPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	var b strings.Builder
	for i, r := range ns {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

func comparison(tag string) string {
	switch tag {
	case "gt":
		return "greater than"
	case "gte":
		return "at least"
	case "lt":
		return "less than"
	default:
		return "at most"
	}
}
