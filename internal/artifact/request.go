package artifact

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bartekus/intellidb/internal/faults"
)

// Request describes a single generation as typed by the operator. Commands
// build it once, validate it, and never modify it afterwards.
type Request struct {
	Kind        Kind   `validate:"required,artifact_kind"`
	Name        string `validate:"required,identifier"`
	ModelName   string `validate:"omitempty,identifier"`
	Description string
	// Path overrides the output directory; empty means the convention.
	Path      string
	MaxTokens int `validate:"gte=0"`
	// CreateModel asks compound commands to emit the model as well.
	CreateModel bool
}

// NewRequest normalizes name and model to studly identifiers and trims the
// description.
func NewRequest(kind Kind, name, model, description, path string) Request {
	return Request{
		Kind:        kind,
		Name:        Studly(strings.TrimSpace(name)),
		ModelName:   Studly(strings.TrimSpace(model)),
		Description: strings.TrimSpace(description),
		Path:        strings.TrimSpace(path),
	}
}

// Model returns the target model name, defaulting to Name.
func (r Request) Model() string {
	if r.ModelName != "" {
		return r.ModelName
	}
	return r.Name
}

// DescriptionOrDefault returns the operator's description or a fixed
// per-kind default.
func (r Request) DescriptionOrDefault() string {
	if r.Description != "" {
		return r.Description
	}
	return DefaultDescription(r.Kind, r.Name, r.Model())
}

// DefaultDescription is used when the operator gives none.
func DefaultDescription(k Kind, name, model string) string {
	switch k {
	case KindMiddleware:
		return fmt.Sprintf("A middleware that handles %s logic", name)
	case KindRepository:
		return fmt.Sprintf("A repository that encapsulates data access for %s", name)
	case KindRepositoryInterface, KindEloquentRepository, KindService:
		return fmt.Sprintf("Create a repository and service for %s", name)
	case KindModel:
		return fmt.Sprintf("An Eloquent model representing %s records", name)
	case KindMigration:
		return fmt.Sprintf("A migration that manages the %s table", TableName(name))
	case KindFactory:
		return fmt.Sprintf("A factory that produces realistic fake %s records", model)
	case KindRule:
		return fmt.Sprintf("A validation rule that handles %s logic", name)
	default:
		return name
	}
}

// TableName guesses the table a migration targets from its name:
// "CreateUsersTable" -> "users", "AddEmailToUsersTable" -> "users".
func TableName(migration string) string {
	s := Snake(migration)
	s = strings.TrimSuffix(s, "_table")
	if i := strings.LastIndex(s, "_to_"); i >= 0 {
		s = s[i+len("_to_"):]
	} else if i := strings.LastIndex(s, "_from_"); i >= 0 {
		s = s[i+len("_from_"):]
	} else {
		s = strings.TrimPrefix(s, "create_")
	}
	return s
}

var (
	identifierRE = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)
	validate     = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	mustRegister(v, "identifier", func(fl validator.FieldLevel) bool {
		return identifierRE.MatchString(fl.Field().String())
	})
	mustRegister(v, "artifact_kind", func(fl validator.FieldLevel) bool {
		return Kind(fl.Field().String()).Valid()
	})
	return v
}

// mustRegister panics when tag cannot be registered, so a bad tag fails at
// package init rather than on the first request.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("artifact: registering %q validation: %v", tag, err))
	}
}

// Validate rejects requests that cannot produce a well-formed file name or
// class name.
func (r Request) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return faults.Wrap(faults.KindValidation, "artifact.Validate", "validating request", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", strings.ToLower(fe.Field())))
		case "identifier":
			msgs = append(msgs, fmt.Sprintf("%s %q is not a valid class name", strings.ToLower(fe.Field()), fe.Value()))
		case "artifact_kind":
			msgs = append(msgs, fmt.Sprintf("unknown artifact kind %q", fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %q", strings.ToLower(fe.Field()), fe.Tag()))
		}
	}
	return faults.New(faults.KindValidation, "artifact.Validate", strings.Join(msgs, "; "))
}
