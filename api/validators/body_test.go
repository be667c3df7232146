package validators

import (
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/kruthishkandula/Grocery-be/pkg/errors"
)

type line struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

type cartRequest struct {
	PaymentID string `json:"payment_id" validate:"required"`
	Items     []line `json:"items" validate:"required,min=1,dive"`
}

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	field, _ := details["field"].(string)
	return field
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"payment_id":"pay_1","items":[{"product_id":3,"quantity":2}]}`))
	var dest cartRequest
	require.NoError(t, DecodeJSONBody(req, &dest))
	assert.Equal(t, "pay_1", dest.PaymentID)
	assert.Equal(t, int64(3), dest.Items[0].ProductID)
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"payment_id":"pay_1","items":[{"product_id":3,"quantity":2}],"admin":true}`))
	var dest cartRequest
	err := DecodeJSONBody(req, &dest)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyNamesFirstFailingField(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"payment_id":"pay_1","items":[{"product_id":3,"quantity":0}]}`))
	var dest cartRequest
	assert.Equal(t, "items[0].quantity", fieldOf(t, DecodeJSONBody(req, &dest)))

	req = httptest.NewRequest("POST", "/", strings.NewReader(`{"items":[]}`))
	dest = cartRequest{}
	assert.Equal(t, "payment_id", fieldOf(t, DecodeJSONBody(req, &dest)))
}

func TestDecodeJSONBodyTreatsEmptyBodyAsEmptyObject(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(""))
	var dest struct {
		Page int `json:"page"`
	}
	require.NoError(t, DecodeJSONBody(req, &dest))
}

func TestDecodeJSONBodyRejectsMalformedJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"payment_id":`))
	var dest cartRequest
	require.True(t, pkgerrors.IsCode(DecodeJSONBody(req, &dest), pkgerrors.CodeValidation))
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "12 Park St & Co", SanitizeText("  <b>12 Park St</b> & Co<script>alert(1)</script> "))
	assert.Equal(t, `Flat 4, "Lotus" Tower, O'Neil Rd`, SanitizeText(`Flat 4, "Lotus" Tower, O'Neil Rd`))
}

func TestSanitizeTextStripsEncodedMarkup(t *testing.T) {
	out := SanitizeText("12 Road &lt;script&gt;alert(1)&lt;/script&gt;")
	assert.NotContains(t, out, "<")
	assert.NotContains(t, out, ">")
	assert.Equal(t, "12 Road", out)

	out = SanitizeText("12 Road &amp;lt;b&amp;gt;")
	assert.NotContains(t, out, "<")
	assert.NotContains(t, out, ">")
}

func TestSanitizeTextKeepsMultibyteAddresses(t *testing.T) {
	address := strings.Repeat("a", 499) + " गांधी नगर"
	out := SanitizeText(address)
	assert.Equal(t, address, out)
	assert.True(t, utf8.ValidString(out))
}

func TestDecodeJSONBodyCountsRunesForMax(t *testing.T) {
	type addressRequest struct {
		DeliveryAddress string `json:"delivery_address" validate:"required,max=5"`
	}
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"delivery_address":"नगर"}`))
	var dest addressRequest
	require.NoError(t, DecodeJSONBody(req, &dest))

	req = httptest.NewRequest("POST", "/", strings.NewReader(`{"delivery_address":"गांधी नगर"}`))
	dest = addressRequest{}
	assert.Equal(t, "delivery_address", fieldOf(t, DecodeJSONBody(req, &dest)))
}

func TestDecodeJSONBodyRejectsTrailingData(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"payment_id":"pay_1","items":[{"product_id":3,"quantity":2}]} junk`))
	var dest cartRequest
	require.True(t, pkgerrors.IsCode(DecodeJSONBody(req, &dest), pkgerrors.CodeValidation))

	req = httptest.NewRequest("POST", "/", strings.NewReader(`{"payment_id":"pay_1","items":[{"product_id":3,"quantity":2}]}{"payment_id":"pay_2"}`))
	dest = cartRequest{}
	require.True(t, pkgerrors.IsCode(DecodeJSONBody(req, &dest), pkgerrors.CodeValidation))

	req = httptest.NewRequest("POST", "/", strings.NewReader("{\"payment_id\":\"pay_1\",\"items\":[{\"product_id\":3,\"quantity\":2}]}\n"))
	dest = cartRequest{}
	require.NoError(t, DecodeJSONBody(req, &dest))
}
