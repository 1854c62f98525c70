package service

import (
	"encoding/json"
	"testing"
)

func TestStripChanges(t *testing.T) {
	out, err := stripChanges(json.RawMessage(`{"name":"GR1","changes":{"name":"x"}}`))
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["changes"]; ok {
		t.Error("changes должен быть вырезан из правки")
	}
	if _, ok := m["name"]; !ok {
		t.Error("остальные поля должны остаться")
	}
}

func TestExtractPreferredGroup(t *testing.T) {
	cases := []struct {
		name     string
		patch    string
		wantID   int64
		wantNone bool
		wantKept bool
	}{
		{"число остаётся в правке", `{"status":"sold","group":7}`, 7, false, true},
		{"newGroup с фронта", `{"status":"sold","group":"newGroup"}`, 0, true, false},
		{"null", `{"status":"sold","group":null}`, 0, true, false},
		{"нет поля", `{"status":"sold"}`, 0, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, gid, err := extractPreferredGroup(json.RawMessage(tc.patch))
			if err != nil {
				t.Fatal(err)
			}
			var m map[string]json.RawMessage
			if err := json.Unmarshal(out, &m); err != nil {
				t.Fatal(err)
			}
			if _, ok := m["group"]; ok != tc.wantKept {
				t.Errorf("group в правке: %v, ожидали %v", ok, tc.wantKept)
			}
			if tc.wantNone {
				if gid != nil {
					t.Errorf("предпочтение = %d, ожидали отсутствие", *gid)
				}
				return
			}
			if gid == nil || *gid != tc.wantID {
				t.Errorf("предпочтение = %v, ожидали %d", gid, tc.wantID)
			}
		})
	}
}

func TestExtractPassword(t *testing.T) {
	stripped, plain, err := extractPassword(json.RawMessage(`{"email":"a@b.az","password":"secret1"}`))
	if err != nil {
		t.Fatal(err)
	}
	if plain != "secret1" {
		t.Errorf("plain = %q", plain)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(stripped, &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["password"]; ok {
		t.Error("password не должен оставаться в правке")
	}

	_, plain, err = extractPassword(json.RawMessage(`{"email":"a@b.az"}`))
	if err != nil || plain != "" {
		t.Errorf("без поля: plain=%q err=%v", plain, err)
	}
}
