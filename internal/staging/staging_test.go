package staging

import (
	"encoding/json"
	"testing"
)

type fakeEntity struct {
	Name     string          `json:"name"`
	Students []int64         `json:"students"`
	Phone    string          `json:"phone"`
	Changes  json.RawMessage `json:"changes,omitempty"`
}

func TestMerge(t *testing.T) {
	current := &fakeEntity{Name: "GR1", Students: []int64{1, 2}, Phone: "050"}

	snap, err := Merge(current, json.RawMessage(`{"students":[2,3]}`))
	if err != nil {
		t.Fatal(err)
	}

	var got fakeEntity
	if err := json.Unmarshal(snap, &got); err != nil {
		t.Fatal(err)
	}
	// Непереданные поля остаются из текущей сущности.
	if got.Name != "GR1" || got.Phone != "050" {
		t.Errorf("нетронутые поля потеряны: %+v", got)
	}
	if len(got.Students) != 2 || got.Students[0] != 2 || got.Students[1] != 3 {
		t.Errorf("students = %v, ожидали [2 3]", got.Students)
	}
}

func TestMergeDropsSupersededProposal(t *testing.T) {
	// Сущность уже в Proposed: прежнее предложение не должно вложиться
	// в новый снимок.
	current := &fakeEntity{Name: "GR1", Changes: json.RawMessage(`{"phone":"055"}`)}

	snap, err := Merge(current, json.RawMessage(`{"phone":"050"}`))
	if err != nil {
		t.Fatal(err)
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(snap, &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["changes"]; ok {
		t.Errorf("снимок тащит прежнее предложение: %s", snap)
	}
	var got fakeEntity
	if err := json.Unmarshal(snap, &got); err != nil {
		t.Fatal(err)
	}
	if got.Name != "GR1" || got.Phone != "050" {
		t.Errorf("снимок = %+v", got)
	}
}

func TestMergeBadPatch(t *testing.T) {
	current := &fakeEntity{Name: "GR1"}
	if _, err := Merge(current, json.RawMessage(`{"name":`)); err == nil {
		t.Fatal("битый JSON должен возвращать ошибку")
	}
}

func TestStateString(t *testing.T) {
	if Clean.String() != "clean" || Proposed.String() != "proposed" {
		t.Errorf("clean=%s proposed=%s", Clean, Proposed)
	}
}
