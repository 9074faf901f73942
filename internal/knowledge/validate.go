package knowledge

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var ErrInvalidKnowledgeBase = errors.New("invalid knowledge base")

// ConfigError describes one defect found while loading a knowledge base.
type ConfigError struct {
	Path   string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("knowledge base: %s: %s", e.Path, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidKnowledgeBase }

func configErr(path, format string, args ...any) error {
	return &ConfigError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

func validate(data Data) error {
	var errs []error

	if len(data.Conditions) == 0 {
		errs = append(errs, configErr("conditions", "catalog is empty"))
	}

	seen := make(map[string]bool, len(data.Conditions))
	for i, c := range data.Conditions {
		path := fmt.Sprintf("conditions[%d]", i)
		if c.ID != "" {
			path = fmt.Sprintf("conditions[%s]", c.ID)
		}

		switch {
		case strings.TrimSpace(c.ID) == "":
			errs = append(errs, configErr(path, "missing id"))
		case seen[c.ID]:
			errs = append(errs, configErr(path, "duplicate id"))
		}
		seen[c.ID] = true

		if strings.TrimSpace(c.Name) == "" {
			errs = append(errs, configErr(path, "missing name"))
		}
		if !c.Severity.Valid() {
			errs = append(errs, configErr(path, "unknown severity %q", c.Severity))
		}
		if len(c.Symptoms) == 0 {
			errs = append(errs, configErr(path, "no symptoms"))
		}

		for symptom, w := range c.Weights {
			if w <= 0 {
				errs = append(errs, configErr(path, "weight for %q must be positive, got %d", symptom, w))
			}
			if !slices.Contains(c.Symptoms, symptom) {
				errs = append(errs, configErr(path, "weight for %q which is not in the symptom profile", symptom))
			}
		}

		profile := make(map[string]bool, len(c.Symptoms))
		for _, symptom := range c.Symptoms {
			if profile[symptom] {
				errs = append(errs, configErr(path, "symptom %q listed twice", symptom))
			}
			profile[symptom] = true

			_, weighted := c.Weights[symptom]
			if !weighted && !data.Synonyms.Has(symptom) {
				errs = append(errs, configErr(path, "symptom %q has neither a weight nor a synonym entry", symptom))
			}
		}
	}

	for _, dup := range data.Synonyms.dups {
		errs = append(errs, configErr("synonyms", "canonical symptom %q defined more than once", dup))
	}
	for _, e := range data.Synonyms.entries {
		path := fmt.Sprintf("synonyms[%s]", e.Canonical)
		if strings.TrimSpace(e.Canonical) == "" {
			errs = append(errs, configErr("synonyms", "empty canonical symptom"))
			continue
		}
		if len(e.Variants) == 0 {
			errs = append(errs, configErr(path, "no variants"))
			continue
		}
		if !slices.Contains(e.Variants, e.Canonical) {
			errs = append(errs, configErr(path, "variants must include the canonical name"))
		}
		for _, v := range e.Variants {
			if v == "" || v != strings.ToLower(v) {
				errs = append(errs, configErr(path, "variant %q must be non-empty and lower-case", v))
			}
		}
	}

	if len(data.Emergency.Critical) == 0 {
		errs = append(errs, configErr("emergency.critical", "no trigger phrases"))
	}
	if len(data.Emergency.Urgent) == 0 {
		errs = append(errs, configErr("emergency.urgent", "no trigger phrases"))
	}
	for _, p := range append(slices.Clone(data.Emergency.Critical), data.Emergency.Urgent...) {
		if p == "" || p != strings.ToLower(p) {
			errs = append(errs, configErr("emergency", "phrase %q must be non-empty and lower-case", p))
		}
	}

	return errors.Join(errs...)
}
