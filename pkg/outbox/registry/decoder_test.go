package registry

import (
	"encoding/json"
	"testing"

	"github.com/kruthishkandula/Grocery-be/pkg/enums"
	"github.com/kruthishkandula/Grocery-be/pkg/outbox/payloads"
)

func TestDecoderRegistry(t *testing.T) {
	reg := NewDecoderRegistry()
	reg.Register(enums.EventOrderStatusChanged, 2, func(payload json.RawMessage) (interface{}, error) {
		var decoded map[string]string
		if err := json.Unmarshal(payload, &decoded); err != nil {
			return nil, err
		}
		return decoded, nil
	})

	input := json.RawMessage(`{"to_status":"shipped"}`)
	output, err := reg.Decode(enums.EventOrderStatusChanged, 2, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outMap, ok := output.(map[string]string); !ok || outMap["to_status"] != "shipped" {
		t.Fatalf("unexpected output %+v", output)
	}

	if _, err := reg.Decode(enums.EventOrderStatusChanged, 1, input); err == nil {
		t.Fatalf("expected error for unregistered version")
	}
}

func TestDefaultDecoders(t *testing.T) {
	reg := DefaultDecoders()

	output, err := reg.Decode(enums.EventOrderCreated, 1, json.RawMessage(`{"order_id":"#order01","items_count":2,"total_amount":"116.00"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	created, ok := output.(*payloads.OrderCreatedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", output)
	}
	if created.OrderID != "#order01" || created.ItemsCount != 2 || created.TotalAmount != "116.00" {
		t.Fatalf("unexpected payload %+v", created)
	}

	if _, err := reg.Decode(enums.EventPaymentCreated, 1, json.RawMessage(`not-json`)); err == nil {
		t.Fatalf("expected decode error")
	}
}
