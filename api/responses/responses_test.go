package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/kruthishkandula/Grocery-be/pkg/errors"
	"github.com/kruthishkandula/Grocery-be/pkg/logger"
)

type envelope struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Result  map[string]any `json:"result"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var body envelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessStatus(w, http.StatusCreated, "ORDER_CREATED", map[string]string{"order_id": "#order1"})

	if got := w.Code; got != http.StatusCreated {
		t.Fatalf("expected status 201 but got %d", got)
	}
	body := decode(t, w)
	assert.Equal(t, "SUCCESS", body.Status)
	assert.Equal(t, "ORDER_CREATED", body.Message)
	assert.Equal(t, "#order1", body.Result["order_id"])
}

func TestWriteErrorMapsTypedErrorToFailure(t *testing.T) {
	ExposeErrors(false)
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "bad input").
		WithDetails(map[string]any{"field": "order_id"}).
		WithMessageCode("ORDER_ID_REQUIRED")
	WriteError(context.Background(), logger.Nop(), w, err)

	if got := w.Code; got != http.StatusBadRequest {
		t.Fatalf("expected status 400 but got %d", got)
	}
	body := decode(t, w)
	assert.Equal(t, "FAILURE", body.Status)
	assert.Equal(t, "ORDER_ID_REQUIRED", body.Message)
	assert.Equal(t, string(pkgerrors.CodeValidation), body.Result["code"])
	assert.Equal(t, map[string]any{"field": "order_id"}, body.Result["details"])
	assert.NotContains(t, body.Result, "error")
}

func TestWriteErrorForbiddenHidesDetails(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeForbidden, "not yours").
		WithDetails(map[string]any{"order_id": "#order1"})
	WriteError(context.Background(), nil, w, err)

	assert.Equal(t, http.StatusForbidden, w.Code)
	body := decode(t, w)
	assert.Equal(t, "UNAUTHORIZED_ACCESS", body.Message)
	assert.NotContains(t, body.Result, "details")
}

func TestWriteErrorDefaultsToInternalForUntypedErrors(t *testing.T) {
	ExposeErrors(false)
	w := httptest.NewRecorder()
	WriteError(context.Background(), logger.Nop(), w, errors.New("boom"))

	if got := w.Code; got != http.StatusInternalServerError {
		t.Fatalf("expected status 500 but got %d", got)
	}
	body := decode(t, w)
	assert.Equal(t, "ERROR", body.Status)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", body.Message)
	assert.Equal(t, string(pkgerrors.CodeInternal), body.Result["code"])
	assert.NotContains(t, body.Result, "error")
}

func TestWriteErrorExposesTextWhenEnabled(t *testing.T) {
	ExposeErrors(true)
	t.Cleanup(func() { ExposeErrors(false) })

	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, errors.New("boom"))

	body := decode(t, w)
	assert.Contains(t, body.Result["error"], "boom")
}
