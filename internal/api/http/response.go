package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText string   `json:"status"`               // user-level status message
	AppCode    string   `json:"code,omitempty"`       // grpc status code name
	ErrorText  string   `json:"error,omitempty"`      // application-level error message
	Violations []string `json:"violations,omitempty"` // "field: message" per failed field
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

var (
	ErrNotFound        = &ErrResponse{HTTPStatusCode: http.StatusNotFound, StatusText: "Resource not found."}
	ErrTooManyRequests = &ErrResponse{HTTPStatusCode: http.StatusTooManyRequests, StatusText: http.StatusText(http.StatusTooManyRequests)}
)

// ErrStatus converts err into a response using its grpc status code.
// Errors without a status become 500 and their text is not exposed.
func ErrStatus(err error) *ErrResponse {
	st := status.Convert(err)
	code := runtime.HTTPStatusFromCode(st.Code())
	e := &ErrResponse{
		Err:            err,
		HTTPStatusCode: code,
		StatusText:     http.StatusText(code),
		AppCode:        st.Code().String(),
		ErrorText:      st.Message(),
	}
	switch st.Code() {
	case codes.Unknown, codes.Internal:
		e.ErrorText = ""
	}
	for _, d := range st.Details() {
		if br, ok := d.(*errdetails.BadRequest); ok {
			for _, v := range br.GetFieldViolations() {
				msg := v.GetDescription()
				if v.GetField() != "" {
					msg = v.GetField() + ": " + msg
				}
				e.Violations = append(e.Violations, msg)
			}
		}
	}
	return e
}

// ErrInvalidRequest is used for bodies and params that cannot be decoded at all.
func ErrInvalidRequest(err error) *ErrResponse {
	return ErrStatus(status.Error(codes.InvalidArgument, err.Error()))
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	e := ErrStatus(err)
	if e.HTTPStatusCode >= http.StatusInternalServerError {
		slog.Default().ErrorContext(r.Context(), msg, slog.String("err", err.Error()))
	} else {
		slog.Default().DebugContext(r.Context(), msg, slog.String("err", err.Error()))
	}
	render.Render(w, r, e)
}
