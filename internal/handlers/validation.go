package handlers

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/domain"
)

var registerValidatorsOnce sync.Once

// RegisterValidators adds the ledger and committee tags to gin's validator and makes
// field errors report json names.
func RegisterValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if tag == "" || tag == "-" {
				return f.Name
			}
			return tag
		})
		_ = v.RegisterValidation("entry_type", func(fl validator.FieldLevel) bool {
			return domain.EntryType(fl.Field().String()).IsValid()
		})
		_ = v.RegisterValidation("vote_choice", func(fl validator.FieldLevel) bool {
			return domain.VoteChoice(fl.Field().String()).IsValid()
		})
	})
}
