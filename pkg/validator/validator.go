package validator

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// 自定义校验标签
const (
	notBlankTag   = "notblank"
	moduleCodeTag = "modulecode"

	// maxModuleCodeLen 规范化后课程代码的最大长度
	maxModuleCodeLen = 32
)

var (
	translator ut.Translator
	once       sync.Once
)

// Register 向 gin 的校验引擎注册 JSON 字段名、英文翻译与自定义标签
// 多次调用只生效一次
func Register() error {
	var regErr error
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			regErr = errors.New("gin 校验引擎不是 validator/v10")
			return
		}
		regErr = setup(v)
	})
	return regErr
}

func setup(v *validator.Validate) error {
	_en := en.New()
	uni := ut.New(_en, _en)
	trans, ok := uni.GetTranslator("en")
	if !ok {
		return errors.New("未找到 en 翻译器")
	}
	translator = trans
	if err := en_translations.RegisterDefaultTranslations(v, translator); err != nil {
		return err
	}

	// 错误信息使用 JSON 字段名
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation(notBlankTag, notBlank); err != nil {
		return err
	}
	if err := v.RegisterValidation(moduleCodeTag, moduleCode); err != nil {
		return err
	}
	if err := registerTranslation(v, notBlankTag, "{0} must not be blank"); err != nil {
		return err
	}
	return registerTranslation(v, moduleCodeTag, "{0} must contain only letters, digits, spaces or dashes")
}

func registerTranslation(v *validator.Validate, tag, text string) error {
	return v.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Translate 将绑定错误转换为可读文本；非校验错误原样返回 err.Error()
func Translate(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || translator == nil {
		return err.Error()
	}
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, fe.Translate(translator))
	}
	return strings.Join(msgs, "; ")
}

// notBlank 去除首尾空白后非空
func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			return true
		}
		field = field.Elem()
	}
	if field.Kind() != reflect.String {
		return true
	}
	return strings.TrimSpace(field.String()) != ""
}

// moduleCode 课程代码只允许字母、数字、空格与连字符，且不能为空白
func moduleCode(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			return true
		}
		field = field.Elem()
	}
	s := strings.TrimSpace(field.String())
	if s == "" || len(s) > maxModuleCodeLen {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ', r == '-':
		default:
			return false
		}
	}
	return true
}
