package middleware

import (
	"context"
	"net/http"

	"github.com/irsalhamdi/course-platform/api/web"
	"github.com/irsalhamdi/course-platform/api/weberr"
	"github.com/irsalhamdi/course-platform/core/fault"
	"github.com/irsalhamdi/course-platform/validate"
	"github.com/sirupsen/logrus"
)

// Status maps a domain failure kind to its HTTP status code.
func Status(k fault.Kind) int {
	switch k {
	case fault.KindNotFound:
		return http.StatusNotFound
	case fault.KindPrecondition, fault.KindConflict:
		return http.StatusBadRequest
	case fault.KindUnauthorized:
		return http.StatusUnauthorized
	case fault.KindForbidden:
		return http.StatusForbidden
	case fault.KindExternal:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func Errors(log logrus.FieldLogger) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			err := handler(ctx, w, r)
			if err == nil {
				return nil
			}

			fields := logrus.Fields{
				"req_id":  ContextRequestID(ctx),
				"message": err,
			}
			if f, ok := weberr.Fields(err); ok {
				for k, v := range f {
					fields[k] = v
				}
			}

			kind, key := fault.KindOf(err)
			if key != "" {
				fields["kind"] = kind.String()
			}

			if kind == fault.KindInternal || kind == fault.KindExternal {
				log.WithFields(fields).Error("ERROR")
			} else {
				log.WithFields(fields).Warn("request failed")
			}

			if body, code, ok := weberr.Response(err); ok {
				return web.Respond(ctx, w, body, code)
			}

			if key != "" {
				er := weberr.ErrorResponse{Error: validate.Message(key)}
				return web.Respond(ctx, w, er, Status(kind))
			}

			er := weberr.ErrorResponse{
				Error: http.StatusText(http.StatusInternalServerError),
			}
			return web.Respond(ctx, w, er, http.StatusInternalServerError)
		}
		return h
	}
	return m
}
