package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/ja"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	ja_translations "github.com/go-playground/validator/v10/translations/ja"
	"github.com/google/uuid"
	"github.com/irsalhamdi/course-platform/core/fault"
)

var validate *validator.Validate

var uni *ut.UniversalTranslator

var translator ut.Translator

var messages = map[string]map[string]string{
	"en": {
		fault.KeyUnauthenticated:       "you are not signed in",
		fault.KeyNotAdmin:              "you are not an administrator",
		fault.KeyCourseNotFound:        "the course does not exist",
		fault.KeyChapterNotFound:       "the chapter does not exist",
		fault.KeyCategoryNotFound:      "the category does not exist",
		fault.KeyVideoAssetNotFound:    "the chapter has no video asset",
		fault.KeyRequiredFieldsEmpty:   "required fields are empty",
		fault.KeyPurchaseAlreadyExists: "the course has already been purchased",
		fault.KeyInvalidSignature:      "the webhook signature is invalid",
		fault.KeyProviderFailure:       "an external service failed, please try again later",
	},
	"ja": {
		fault.KeyUnauthenticated:       "認証されていません",
		fault.KeyNotAdmin:              "管理者ではありません",
		fault.KeyCourseNotFound:        "存在しない講座です",
		fault.KeyChapterNotFound:       "存在しないチャプターです",
		fault.KeyCategoryNotFound:      "存在しないカテゴリーです",
		fault.KeyVideoAssetNotFound:    "動画が登録されていません",
		fault.KeyRequiredFieldsEmpty:   "必須項目が入力されていません",
		fault.KeyPurchaseAlreadyExists: "既に購入済みの講座です",
		fault.KeyInvalidSignature:      "Webhookの署名が不正です",
		fault.KeyProviderFailure:       "外部サービスでエラーが発生しました",
	},
}

func init() {

	validate = validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	uni = ut.New(en.New(), en.New(), ja.New())

	enT, _ := uni.GetTranslator("en")
	jaT, _ := uni.GetTranslator("ja")
	en_translations.RegisterDefaultTranslations(validate, enT)
	ja_translations.RegisterDefaultTranslations(validate, jaT)

	for locale, msgs := range messages {
		t, _ := uni.GetTranslator(locale)
		for key, text := range msgs {
			_ = t.Add(key, text, false)
		}
	}

	translator = enT
}

// SetLocale selects the language of validation errors and messages. It is
// meant to be called once during startup.
func SetLocale(locale string) error {
	t, found := uni.GetTranslator(locale)
	if !found {
		return fmt.Errorf("unsupported locale %q", locale)
	}
	translator = t
	return nil
}

// Message returns the localized text for a fault message key.
func Message(key string) string {
	s, err := translator.T(key)
	if err != nil || s == "" {
		return key
	}
	return s
}

func Check(val any) error {
	if err := validate.Struct(val); err != nil {

		verrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}

		if len(verrors) < 1 {
			return nil
		}

		return errors.New(verrors[0].Translate(translator))
	}

	return nil
}

func GenerateID() string {
	return uuid.NewString()
}
