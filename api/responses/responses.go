package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync/atomic"

	pkgerrors "github.com/kruthishkandula/Grocery-be/pkg/errors"
	"github.com/kruthishkandula/Grocery-be/pkg/logger"
	"github.com/kruthishkandula/Grocery-be/pkg/types"
)

var exposeErrors atomic.Bool

// ExposeErrors toggles whether error envelopes carry the internal error text.
// It must stay off in prod.
func ExposeErrors(enabled bool) {
	exposeErrors.Store(enabled)
}

func WriteSuccess(w http.ResponseWriter, message string, result any) {
	WriteSuccessStatus(w, http.StatusOK, message, result)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, message string, result any) {
	writeJSON(w, status, types.Envelope{
		Status:  types.StatusSuccess,
		Message: message,
		Result:  result,
	})
}

func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	status := types.StatusFailure
	if meta.HTTPStatus >= http.StatusInternalServerError {
		status = types.StatusError
	}

	result := types.ErrorResult{Code: string(typed.Code())}
	if meta.DetailsAllowed {
		result.Details = typed.Details()
	}
	if exposeErrors.Load() {
		result.Error = errorText(err)
	}

	if logg != nil {
		fields := pkgerrors.Dump(err).Fields()
		fields["status"] = meta.HTTPStatus
		fields["message_code"] = typed.MessageCode()
		if d, ok := typed.Details().(map[string]any); ok {
			if step, ok := d["step"]; ok {
				fields["step"] = step
			}
		}
		ctx = logg.WithFields(ctx, fields)
		if meta.HTTPStatus >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", err)
		} else {
			logg.Warn(ctx, "request.rejected")
		}
	}

	writeJSON(w, meta.HTTPStatus, types.Envelope{
		Status:  status,
		Message: typed.MessageCode(),
		Result:  result,
	})
}

// errorText is the top error followed by its root cause.
func errorText(err error) string {
	root := err
	for next := errors.Unwrap(root); next != nil; next = errors.Unwrap(root) {
		root = next
	}
	if root == err {
		return err.Error()
	}
	return err.Error() + ": " + root.Error()
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
