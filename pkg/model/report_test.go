package model

import (
	"encoding/json"
	"testing"
)

func TestJSONBValueAndScan(t *testing.T) {
	original := JSONB{"summary": "沟通能力强", "confidence": float64(80)}

	value, err := original.Value()
	if err != nil {
		t.Fatalf("Value() error: %v", err)
	}

	data, ok := value.([]byte)
	if !ok {
		t.Fatalf("expected []byte value, got %T", value)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal value error: %v", err)
	}

	if decoded["summary"] != "沟通能力强" {
		t.Fatalf("expected summary to round-trip, got %v", decoded["summary"])
	}

	var scanned JSONB
	if err := scanned.Scan(data); err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	if scanned["summary"] != "沟通能力强" {
		t.Fatalf("expected scanned summary to round-trip, got %v", scanned["summary"])
	}
}

func TestJSONBGormDataType(t *testing.T) {
	value := JSONB{"ok": true}
	if value.GormDataType() != "jsonb" {
		t.Fatalf("expected jsonb data type, got %q", value.GormDataType())
	}
}

func TestSubscriptionRemaining(t *testing.T) {
	sub := Subscription{QuotaTotal: 3, QuotaUsed: 1}
	if sub.Remaining() != 2 {
		t.Fatalf("expected remaining 2, got %d", sub.Remaining())
	}
}
