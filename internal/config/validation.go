package config

import (
	"fmt"

	"git.home.luguber.info/inful/apidocbuilder/internal/definition"
	"git.home.luguber.info/inful/apidocbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/apidocbuilder/internal/util/sets"
)

// Validate checks a defaulted configuration. Failures are config-category errors.
func Validate(cfg *Config) error {
	v := configurationValidator{config: cfg}
	for _, check := range []func() error{v.validateProducts, v.validateInputs, v.validateOutput} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

type configurationValidator struct {
	config *Config
}

func (cv configurationValidator) validateProducts() error {
	if len(cv.config.Products) == 0 {
		return errors.ConfigError("at least one product must be configured").Build()
	}
	seen := sets.New[definition.Product]()
	for i, p := range cv.config.Products {
		if _, err := definition.ParseProduct(string(p.Name)); err != nil {
			return errors.WrapError(err, errors.CategoryConfig, fmt.Sprintf("products[%d]", i)).Fatal().Build()
		}
		if seen.Has(p.Name) {
			return errors.ConfigError(fmt.Sprintf("product %s configured twice", p.Name)).Build()
		}
		seen.Add(p.Name)
		if len(p.Roots) == 0 {
			return errors.ConfigError(fmt.Sprintf("product %s has no source roots", p.Name)).Build()
		}
		for j, r := range p.Roots {
			if r.Path == "" {
				return errors.ConfigError(fmt.Sprintf("product %s roots[%d]: path is required", p.Name, j)).Build()
			}
		}
	}
	return nil
}

func (cv configurationValidator) validateInputs() error {
	if cv.config.ExamplesDir == "" {
		return errors.ConfigError("examples_dir is required").Build()
	}
	for _, ext := range cv.config.Extensions {
		if ext == "" {
			return errors.ConfigError("extensions must not contain empty values").Build()
		}
	}
	if cv.config.Build.Concurrency < 1 {
		return errors.ConfigError("build.concurrency must be >= 1").Build()
	}
	switch cv.config.Notify.Retry.Backoff {
	case "", RetryBackoffFixed, RetryBackoffLinear, RetryBackoffExponential:
	default:
		return errors.ConfigError(fmt.Sprintf("notify.retry.backoff: unknown mode %q", cv.config.Notify.Retry.Backoff)).Build()
	}
	if r := cv.config.Notify.Retry.MaxRetries; r != nil && *r < 0 {
		return errors.ConfigError("notify.retry.max_retries must be >= 0").Build()
	}
	return nil
}

func (cv configurationValidator) validateOutput() error {
	out := cv.config.Output
	paths := map[string]string{
		"nav_index_file": out.NavIndexFile,
		"tag_file":       out.TagFile,
		"search_db":      out.SearchDB,
	}
	seen := make(map[string]string, len(paths))
	for _, name := range []string{"nav_index_file", "tag_file", "search_db"} {
		p := paths[name]
		if other, ok := seen[p]; ok {
			return errors.ConfigError(fmt.Sprintf("output.%s and output.%s point at the same file %s", other, name, p)).Build()
		}
		seen[p] = name
	}
	return nil
}
