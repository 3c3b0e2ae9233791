package domain

import "testing"

func TestEvent_GetString(t *testing.T) {
	e := Event{EventData: map[string]interface{}{
		"color": "red",
		"count": 3,
	}}

	if v, ok := e.GetString("color"); !ok || v != "red" {
		t.Errorf("GetString(color) = %q, %v; want red, true", v, ok)
	}
	if _, ok := e.GetString("count"); ok {
		t.Error("GetString on a non-string field should report false")
	}
	if got := e.GetStringOr("missing", "blue"); got != "blue" {
		t.Errorf("GetStringOr(missing) = %q, want blue", got)
	}
}

func TestEvent_GetInt64(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  int64
		ok    bool
	}{
		{"int", 922, 922, true},
		{"int64", int64(7), 7, true},
		{"float64 from JSON", float64(62), 62, true},
		{"string", "62", 0, false},
		{"nil", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Event{EventData: map[string]interface{}{"v": tt.value}}
			got, ok := e.GetInt64("v")
			if got != tt.want || ok != tt.ok {
				t.Errorf("GetInt64() = %d, %v; want %d, %v", got, ok, tt.want, tt.ok)
			}
		})
	}

	var empty Event
	if got := empty.GetInt64Or("v", -1); got != -1 {
		t.Errorf("GetInt64Or on nil data = %d, want -1", got)
	}
}

func TestEvent_GetBool(t *testing.T) {
	e := Event{EventData: map[string]interface{}{"running": true, "n": 1}}

	if v, ok := e.GetBool("running"); !ok || !v {
		t.Errorf("GetBool(running) = %v, %v; want true, true", v, ok)
	}
	if got := e.GetBoolOr("n", false); got {
		t.Error("GetBoolOr on a non-bool field should return the default")
	}
}

func TestAllEventTypes_Unique(t *testing.T) {
	seen := make(map[EventType]bool)
	for _, et := range AllEventTypes {
		if seen[et] {
			t.Errorf("duplicate event type %s", et)
		}
		seen[et] = true
	}
}
