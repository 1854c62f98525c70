package access

import (
	"testing"

	"educrm/internal/models"
)

func TestResolve(t *testing.T) {
	worker := Actor{
		ID:   7,
		Role: models.RoleWorker,
		Profiles: []models.Profile{
			{Profile: "students", Power: "update"},
			{Profile: "groups", Power: "all"},
			{Profile: "consultation", Power: "only-show"},
		},
	}

	cases := []struct {
		name    string
		actor   Actor
		profile string
		want    Power
	}{
		{"админ без ограничений", Actor{Role: models.RoleAdmin}, "students", Full},
		{"воркер с power=all", worker, "groups", Full},
		{"воркер с power=update", worker, "students", StageOnly},
		{"воркер с power=only-show", worker, "consultation", ReadOnly},
		{"воркер без настройки раздела", worker, "events", ReadOnly},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Resolve(tc.actor, tc.profile); got != tc.want {
				t.Fatalf("Resolve(%s) = %v, ожидали %v", tc.profile, got, tc.want)
			}
		})
	}
}
