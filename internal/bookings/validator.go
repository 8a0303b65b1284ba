package bookings

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// fieldOrder fixes the order in which failures are reported.
var fieldOrder = map[string]int{
	"name":                 0,
	"contact":              1,
	"date":                 2,
	"time":                 3,
	"guests":               4,
	"special_requirements": 5,
}

type fieldValidator struct {
	validate  *validator.Validate
	locale    Locale
	maxGuests int
}

func newFieldValidator(locale Locale, maxGuests int) *fieldValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &fieldValidator{validate: v, locale: locale, maxGuests: maxGuests}
}

// normalize trims f, checks every rule, and on success returns f with date
// and time rewritten into canonical form.
func (v *fieldValidator) normalize(f Fields) (Fields, error) {
	f = f.trimmed()
	failures := make(map[string]FieldError)

	if err := v.validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Fields{}, fmt.Errorf("bookings: validate fields: %w", err)
		}
		for _, fe := range verrs {
			failures[fe.Field()] = translate(fe)
		}
	}

	if _, failed := failures["date"]; !failed {
		date, err := v.locale.ParseDate(f.Date)
		if err != nil {
			failures["date"] = FieldError{Field: "date", Reason: ReasonInvalidFormat, Message: fmt.Sprintf("%q is not a recognised date", f.Date)}
		} else {
			f.Date = date
		}
	}
	if _, failed := failures["time"]; !failed {
		t, err := v.locale.ParseTime(f.Time)
		if err != nil {
			failures["time"] = FieldError{Field: "time", Reason: ReasonInvalidFormat, Message: fmt.Sprintf("%q is not a recognised time", f.Time)}
		} else {
			f.Time = t
		}
	}
	if _, failed := failures["guests"]; !failed && v.maxGuests > 0 && f.Guests > v.maxGuests {
		failures["guests"] = FieldError{Field: "guests", Reason: ReasonOutOfRange, Message: fmt.Sprintf("must be at most %d", v.maxGuests)}
	}

	if len(failures) == 0 {
		return f, nil
	}
	out := make([]FieldError, 0, len(failures))
	for _, fe := range failures {
		out = append(out, fe)
	}
	sortFieldErrors(out)
	return Fields{}, &ValidationError{Fields: out}
}

func translate(fe validator.FieldError) FieldError {
	switch fe.Tag() {
	case "required":
		return FieldError{Field: fe.Field(), Reason: ReasonRequired, Message: "is required"}
	case "min":
		return FieldError{Field: fe.Field(), Reason: ReasonOutOfRange, Message: fmt.Sprintf("must be at least %s", fe.Param())}
	default:
		return FieldError{Field: fe.Field(), Reason: ReasonInvalidFormat, Message: fmt.Sprintf("failed %s check", fe.Tag())}
	}
}

func sortFieldErrors(errs []FieldError) {
	sort.Slice(errs, func(i, j int) bool {
		return fieldOrder[errs[i].Field] < fieldOrder[errs[j].Field]
	})
}
