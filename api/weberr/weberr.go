// Package weberr decorates errors with what the web layer needs to answer a
// request: a response body with its status, and extra log fields.
package weberr

import "errors"

type Opt func(error) error

// Wrap applies opts to err in order.
func Wrap(err error, opts ...Opt) error {
	for _, opt := range opts {
		err = opt(err)
	}
	return err
}

func WithResponse(body any, status int) Opt {
	return func(err error) error {
		return &responseError{error: err, body: body, status: status}
	}
}

func WithFields(fields map[string]any) Opt {
	return func(err error) error {
		return &fieldsError{error: err, fields: fields}
	}
}

// Response returns the outermost response attached to err.
func Response(err error) (body any, status int, ok bool) {
	var re *responseError
	if errors.As(err, &re) {
		return re.body, re.status, true
	}
	return nil, 0, false
}

// Fields merges the log fields attached anywhere in err's chain; outer
// fields win.
func Fields(err error) (map[string]any, bool) {
	var out map[string]any
	for err != nil {
		var fe *fieldsError
		if !errors.As(err, &fe) {
			break
		}
		if out == nil {
			out = make(map[string]any)
		}
		for k, v := range fe.fields {
			if _, ok := out[k]; !ok {
				out[k] = v
			}
		}
		err = fe.error
	}
	return out, out != nil
}

type responseError struct {
	error
	body   any
	status int
}

func (e *responseError) Unwrap() error { return e.error }

type fieldsError struct {
	error
	fields map[string]any
}

func (e *fieldsError) Unwrap() error { return e.error }
