package membership

import (
	"reflect"
	"testing"
)

func TestDiff(t *testing.T) {
	cases := []struct {
		name    string
		old     []int64
		updated []int64
		added   []int64
		removed []int64
	}{
		{"без изменений", []int64{1, 2}, []int64{1, 2}, nil, nil},
		{"замена B на C", []int64{1, 2}, []int64{2, 3}, []int64{3}, []int64{1}},
		{"пустая старая", nil, []int64{5, 6}, []int64{5, 6}, nil},
		{"пустая новая", []int64{5, 6}, nil, nil, []int64{5, 6}},
		{"дубликаты во входе", []int64{1, 1, 2}, []int64{2, 2, 3}, []int64{3}, []int64{1, 1}},
		{"порядок сохраняется", []int64{9, 8, 7}, []int64{3, 1, 2}, []int64{3, 1, 2}, []int64{9, 8, 7}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			added, removed := Diff(tc.old, tc.updated)
			if !reflect.DeepEqual(added, tc.added) {
				t.Errorf("added = %v, ожидали %v", added, tc.added)
			}
			if !reflect.DeepEqual(removed, tc.removed) {
				t.Errorf("removed = %v, ожидали %v", removed, tc.removed)
			}
		})
	}
}
