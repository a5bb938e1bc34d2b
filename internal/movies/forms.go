package movies

import (
	"errors"
	"fmt"
	"strings"
	gosync "sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type rateForm struct {
	Rating string `form:"rating" binding:"required,rating"`
	Review string `form:"review" binding:"required,max=250"`
}

type addForm struct {
	Title string `form:"title" binding:"required,max=250"`
}

var (
	registerOnce gosync.Once
	registerErr  error
)

// RegisterValidators adds the custom form rules to gin's validator.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("form validator engine is %T, want *validator.Validate", binding.Validator.Engine())
			return
		}
		if err := v.RegisterValidation("rating", func(fl validator.FieldLevel) bool {
			_, err := ParseRating(fl.Field().String())
			return err == nil
		}); err != nil {
			registerErr = fmt.Errorf("register rating rule: %w", err)
		}
	})
	return registerErr
}

var fieldLabels = map[string]string{
	"Rating": "Rating",
	"Review": "Review",
	"Title":  "Movie title",
}

// formErrors turns a binding error into one message per field.
func formErrors(err error) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["form"] = "The form could not be read."
		return out
	}
	for _, fe := range verrs {
		label := fieldLabels[fe.Field()]
		if label == "" {
			label = fe.Field()
		}
		switch fe.Tag() {
		case "required":
			out[strings.ToLower(fe.Field())] = label + " is required."
		case "rating":
			out[strings.ToLower(fe.Field())] = fmt.Sprintf("%s must be a number between %g and %g, e.g. 7.5.", label, MinRating, MaxRating)
		case "max":
			out[strings.ToLower(fe.Field())] = fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
		default:
			out[strings.ToLower(fe.Field())] = label + " is invalid."
		}
	}
	return out
}
