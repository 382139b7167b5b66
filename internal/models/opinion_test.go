package models

import (
	"encoding/json"
	"testing"
)

func TestEntityUnmarshalObject(t *testing.T) {
	var e Entity
	if err := json.Unmarshal([]byte(`{"name": "삼성전자", "category": "company"}`), &e); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if e.Name != "삼성전자" || e.Category != "company" {
		t.Errorf("unexpected entity: %+v", e)
	}
}

func TestEntityUnmarshalBareString(t *testing.T) {
	var e Entity
	if err := json.Unmarshal([]byte(`" 테슬라 "`), &e); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if e.Name != "테슬라" {
		t.Errorf("expected trimmed name, got %q", e.Name)
	}
	if e.Category != "" {
		t.Errorf("bare string should have no category, got %q", e.Category)
	}
}

func TestEntityUnmarshalMixedList(t *testing.T) {
	var entities []Entity
	raw := `[{"name": "연준", "category": "person"}, "달러", {"name": "금리"}]`
	if err := json.Unmarshal([]byte(raw), &entities); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(entities) != 3 {
		t.Fatalf("expected 3 entities, got %d", len(entities))
	}
	if entities[1].Name != "달러" {
		t.Errorf("unexpected second entity: %+v", entities[1])
	}
}
