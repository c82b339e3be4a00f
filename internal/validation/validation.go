package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// FieldErrors 字段 -> 错误信息列表
type FieldErrors map[string][]string

// Add 追加一条字段错误
func (f FieldErrors) Add(field, msg string) {
	f[field] = append(f[field], msg)
}

var (
	once     sync.Once
	validate *validator.Validate
)

// jsonTagName 错误里使用 json 字段名而不是 Go 字段名
func jsonTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// Install 为 gin 默认校验器注册 json 字段名
func Install() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonTagName)
	}
}

// Struct 使用与 gin binding 相同的规则（binding 标签）校验结构体
// 供非 HTTP 调用方（如命令行）使用
func Struct(obj interface{}) FieldErrors {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.SetTagName("binding")
		validate.RegisterTagNameFunc(jsonTagName)
	})

	if err := validate.Struct(obj); err != nil {
		if fields, ok := Translate(err); ok {
			return fields
		}
		return FieldErrors{"non_field_errors": {err.Error()}}
	}
	return nil
}

// Translate 把 validator.ValidationErrors 转成字段错误
// err 不是校验错误时返回 false
func Translate(err error) (FieldErrors, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}

	fields := FieldErrors{}
	for _, fe := range verrs {
		fields.Add(fe.Field(), message(fe))
	}
	return fields, true
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", fe.Param())
	}
	return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
}
