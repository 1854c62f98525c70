package access

import "educrm/internal/models"

// Power — разрешённый уровень доступа актора к разделу системы.
type Power int

const (
	ReadOnly Power = iota
	StageOnly
	Full
)

func (p Power) String() string {
	switch p {
	case Full:
		return "full"
	case StageOnly:
		return "stage-only"
	default:
		return "read-only"
	}
}

// Actor — вызывающий с точки зрения прав: роль и, для воркеров,
// настройки по разделам.
type Actor struct {
	ID       int64
	Role     models.Role
	Profiles []models.Profile
}

// Resolve переводит роль и профили в уровень доступа к разделу.
// Админы и преподаватели не ограничены профилями; у воркера действует
// настройка power соответствующего раздела ("all" / "update" /
// "only-show"), отсутствие настройки читается как запрет на запись.
func Resolve(actor Actor, profile string) Power {
	if actor.Role != models.RoleWorker {
		return Full
	}
	for _, p := range actor.Profiles {
		if p.Profile != profile {
			continue
		}
		switch p.Power {
		case "all":
			return Full
		case "update":
			return StageOnly
		default:
			return ReadOnly
		}
	}
	return ReadOnly
}
