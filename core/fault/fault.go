// Package fault holds the closed set of domain failures returned by the
// course, chapter, video and purchase workflows. The web layer maps each
// Kind to a status code in one place.
package fault

import "errors"

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindPrecondition
	KindConflict
	KindUnauthorized
	KindForbidden
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindPrecondition:
		return "precondition_failed"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindExternal:
		return "external_provider"
	}
	return "internal"
}

// Message keys. Their localized texts are registered by package validate.
const (
	KeyUnauthenticated       = "unauthenticated"
	KeyNotAdmin              = "not_admin"
	KeyCourseNotFound        = "course_not_found"
	KeyChapterNotFound       = "chapter_not_found"
	KeyCategoryNotFound      = "category_not_found"
	KeyVideoAssetNotFound    = "video_asset_not_found"
	KeyRequiredFieldsEmpty   = "required_fields_empty"
	KeyPurchaseAlreadyExists = "purchase_already_exists"
	KeyInvalidSignature      = "invalid_signature"
	KeyProviderFailure       = "provider_failure"
)

type Error struct {
	Kind Kind
	Key  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Key + ": " + e.Err.Error()
	}
	return e.Key
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any Error with the same kind and key, so a sentinel still
// matches after Wrap attached a cause to it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Key == e.Key
}

// Wrap returns a copy of e carrying err as its cause.
func (e *Error) Wrap(err error) error {
	return &Error{Kind: e.Kind, Key: e.Key, Err: err}
}

var (
	ErrUnauthenticated       = &Error{Kind: KindUnauthorized, Key: KeyUnauthenticated}
	ErrNotAdmin              = &Error{Kind: KindForbidden, Key: KeyNotAdmin}
	ErrCourseNotFound        = &Error{Kind: KindNotFound, Key: KeyCourseNotFound}
	ErrChapterNotFound       = &Error{Kind: KindNotFound, Key: KeyChapterNotFound}
	ErrCategoryNotFound      = &Error{Kind: KindNotFound, Key: KeyCategoryNotFound}
	ErrVideoAssetNotFound    = &Error{Kind: KindNotFound, Key: KeyVideoAssetNotFound}
	ErrRequiredFieldsEmpty   = &Error{Kind: KindPrecondition, Key: KeyRequiredFieldsEmpty}
	ErrPurchaseAlreadyExists = &Error{Kind: KindConflict, Key: KeyPurchaseAlreadyExists}
	ErrInvalidSignature      = &Error{Kind: KindPrecondition, Key: KeyInvalidSignature}
	ErrProvider              = &Error{Kind: KindExternal, Key: KeyProviderFailure}
)

// Provider marks err as a failure of the video or payment provider.
func Provider(err error) error {
	return ErrProvider.Wrap(err)
}

// KindOf reports the kind and message key of err, or KindInternal when err
// is not a domain failure.
func KindOf(err error) (Kind, string) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, fe.Key
	}
	return KindInternal, ""
}
