package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"draftpad/internal/intl"
	"draftpad/internal/model"

	"github.com/go-playground/validator/v10"
)

const TitleMaxLength = 255

type Field string

const (
	FieldTitle  Field = "title"
	FieldTopics Field = "topics"
	FieldBody   Field = "body"
)

// Fields lists the validated fields in form order.
var Fields = []Field{FieldTitle, FieldTopics, FieldBody}

type Kind string

const (
	KindMissing       Kind = "missing_required_field"
	KindTooLong       Kind = "field_too_long"
	KindInvalidTopic  Kind = "invalid_topic_format"
	KindTooManyTopics Kind = "too_many_topics"
)

type FieldError struct {
	Field   Field  `json:"field"`
	Kind    Kind   `json:"kind"`
	Max     int    `json:"max,omitempty"`
	Topic   string `json:"topic,omitempty"`
	Message string `json:"message"`
}

func (e FieldError) Error() string { return string(e.Field) + ": " + e.Message }

// Errors holds the first failing rule per field.
type Errors map[Field]FieldError

func (e Errors) OK() bool { return len(e) == 0 }

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, f := range Fields {
		if fe, ok := e[f]; ok {
			parts = append(parts, fe.Error())
		}
	}
	return strings.Join(parts, "; ")
}

// List returns the errors in form order.
func (e Errors) List() []FieldError {
	out := make([]FieldError, 0, len(e))
	for _, f := range Fields {
		if fe, ok := e[f]; ok {
			out = append(out, fe)
		}
	}
	return out
}

// topicPattern is the permitted topic character set.
var topicPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

func ValidTopic(topic string) bool { return topicPattern.MatchString(topic) }

// topicRule is the topic format check bound to the active locale. It reports
// the localized message for a rejected topic.
type topicRule struct {
	msgs *intl.Formatter
}

func (r topicRule) check(topic string) (ok bool, message string) {
	if ValidTopic(topic) {
		return true, ""
	}
	return false, r.msgs.Message("topics_error_invalid_topic", topic)
}

type draftForm struct {
	Title  string   `validate:"required,max=255"`
	Topics []string `validate:"required,min=1,dive,topic"`
	Body   string   `validate:"required"`
}

// Validator evaluates the draft form rules and produces messages for one locale.
type Validator struct {
	v         *validator.Validate
	msgs      *intl.Formatter
	topic     topicRule
	maxTopics int
}

type Option func(*Validator)

// WithMaxTopics caps the number of topics; n <= 0 means unlimited.
func WithMaxTopics(n int) Option {
	return func(v *Validator) { v.maxTopics = n }
}

func New(msgs *intl.Formatter, opts ...Option) *Validator {
	rule := topicRule{msgs: msgs}
	v := validator.New()
	_ = v.RegisterValidation("topic", func(fl validator.FieldLevel) bool {
		ok, _ := rule.check(fl.Field().String())
		return ok
	})
	out := &Validator{v: v, msgs: msgs, topic: rule}
	for _, opt := range opts {
		opt(out)
	}
	return out
}

func (val *Validator) Validate(f model.Fields) Errors {
	errs := Errors{}
	form := draftForm{Title: f.Title, Topics: f.Topics, Body: f.Body}
	if err := val.v.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			// InvalidValidationError: only possible when the form struct itself is broken.
			panic(fmt.Errorf("validate: %w", err))
		}
		for _, fe := range verrs {
			e := val.fieldError(fe)
			if _, seen := errs[e.Field]; !seen {
				errs[e.Field] = e
			}
		}
	}
	if _, bad := errs[FieldTopics]; !bad && val.maxTopics > 0 && len(f.Topics) > val.maxTopics {
		errs[FieldTopics] = FieldError{
			Field:   FieldTopics,
			Kind:    KindTooManyTopics,
			Max:     val.maxTopics,
			Message: val.msgs.Message("topics_error_count", val.maxTopics),
		}
	}
	return errs
}

// ValidateField runs the rules for a single field. It returns nil when the field is valid.
func (val *Validator) ValidateField(field Field, f model.Fields) *FieldError {
	errs := val.Validate(f)
	if fe, ok := errs[field]; ok {
		return &fe
	}
	return nil
}

func (val *Validator) fieldError(fe validator.FieldError) FieldError {
	name := fe.StructField()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	switch name {
	case "Title":
		if fe.Tag() == "max" {
			return FieldError{Field: FieldTitle, Kind: KindTooLong, Max: TitleMaxLength,
				Message: val.msgs.Message("title_error_too_long", TitleMaxLength)}
		}
		return FieldError{Field: FieldTitle, Kind: KindMissing, Message: val.msgs.Message("title_error_empty")}
	case "Topics":
		if fe.Tag() == "topic" {
			topic, _ := fe.Value().(string)
			_, msg := val.topic.check(topic)
			return FieldError{Field: FieldTopics, Kind: KindInvalidTopic, Topic: topic, Message: msg}
		}
		return FieldError{Field: FieldTopics, Kind: KindMissing, Message: val.msgs.Message("topics_error_empty")}
	default:
		return FieldError{Field: FieldBody, Kind: KindMissing, Message: val.msgs.Message("story_error_empty")}
	}
}
