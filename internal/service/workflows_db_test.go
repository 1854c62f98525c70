//go:build testutil
// +build testutil

package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"educrm/internal/access"
	"educrm/internal/db"
	"educrm/internal/models"
	"educrm/internal/service"
	"educrm/internal/testutil/testdb"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var admin = access.Actor{ID: 1, Role: models.RoleAdmin}

func seedCourse(t *testing.T, database *testdb.DBHandle, name string) int64 {
	t.Helper()
	ctx := context.Background()
	c := models.Course{Name: name}
	if err := db.CreateCourse(ctx, database.DB, &c); err != nil {
		t.Fatal(err)
	}
	for i, topic := range []string{"Введение", "Типы данных", "Функции"} {
		sy := models.Syllabus{CourseID: c.ID, OrderNumber: i + 1, Name: topic}
		if err := db.CreateSyllabus(ctx, database.DB, &sy); err != nil {
			t.Fatal(err)
		}
	}
	return c.ID
}

func seedStudent(t *testing.T, database *testdb.DBHandle, name, fin string) int64 {
	t.Helper()
	st := models.Student{FullName: name, Fin: fin}
	if err := db.CreateStudent(context.Background(), database.DB, &st); err != nil {
		t.Fatal(err)
	}
	return st.ID
}

func TestGroupMembershipSync(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()
	svc := service.New(h.DB, zap.NewNop().Sugar(), nil)

	courseID := seedCourse(t, h, "Backend")
	a := seedStudent(t, h, "Студент A", "FINA001")
	b := seedStudent(t, h, "Студент B", "FINB002")
	c := seedStudent(t, h, "Студент C", "FINC003")

	start, end := date(2026, time.February, 2), date(2026, time.February, 15)
	g := models.Group{
		Name: "Backend 1", GroupNumber: 1, CourseID: courseID,
		Students: []int64{a, b}, StartDate: &start, EndDate: &end,
		LessonDays: []models.LessonSlot{{Day: 1, Time: "11:00"}},
		Status:     models.GroupCurrent,
	}
	if err := svc.CreateGroup(ctx, admin, &g); err != nil {
		t.Fatal(err)
	}

	lessons, total, err := db.ListLessonsByGroup(ctx, h.DB, g.ID, start, end.AddDate(0, 0, 1), 100, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Fatalf("уроков = %d, ожидали 2 понедельника", total)
	}
	for _, l := range lessons {
		if len(l.Students) != 2 {
			t.Fatalf("посадка урока %d: %d студентов", l.ID, len(l.Students))
		}
	}

	patch := fmt.Sprintf(`{"students":[%d,%d]}`, b, c)
	staged, err := svc.UpdateGroup(ctx, admin, g.ID, json.RawMessage(patch))
	if err != nil {
		t.Fatal(err)
	}
	if staged {
		t.Fatal("админская правка не должна откладываться")
	}

	// Обе стороны членства и все уроки должны сойтись.
	ids, err := db.ListGroupStudentIDs(ctx, h.DB, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Errorf("состав группы = %v", ids)
	}
	for _, id := range ids {
		if id == a {
			t.Errorf("студент A остался в группе: %v", ids)
		}
	}

	for sid, want := range map[int64]int{a: 0, b: 1, c: 1} {
		es, err := db.ListEnrollmentsByStudent(ctx, h.DB, sid)
		if err != nil {
			t.Fatal(err)
		}
		if len(es) != want {
			t.Errorf("enrollment студента %d: %d, ожидали %d", sid, len(es), want)
		}
	}

	lessons, _, err = db.ListLessonsByGroup(ctx, h.DB, g.ID, start, end.AddDate(0, 0, 1), 100, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, l := range lessons {
		seen := map[int64]bool{}
		for _, ls := range l.Students {
			seen[ls.StudentID] = true
		}
		if seen[a] || !seen[b] || !seen[c] {
			t.Errorf("урок %d: посадка %v", l.ID, seen)
		}
	}
}

func TestLessonGenerationIdempotent(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()
	svc := service.New(h.DB, zap.NewNop().Sugar(), nil)

	courseID := seedCourse(t, h, "Frontend")
	start, end := date(2026, time.February, 2), date(2026, time.February, 15)
	g := models.Group{
		Name: "Frontend 1", GroupNumber: 1, CourseID: courseID,
		StartDate: &start, EndDate: &end,
		LessonDays: []models.LessonSlot{{Day: 1, Time: "10:00"}},
		Status:     models.GroupCurrent,
	}
	if err := svc.CreateGroup(ctx, admin, &g); err != nil {
		t.Fatal(err)
	}

	_, first, err := db.ListLessonsByGroup(ctx, h.DB, g.ID, start, end.AddDate(0, 0, 1), 100, 0)
	if err != nil {
		t.Fatal(err)
	}

	// Повторная правка с изменением дат не трогает календарь: уроки
	// уже существуют.
	patch := `{"endDate":"2026-03-01T00:00:00Z"}`
	if _, err := svc.UpdateGroup(ctx, admin, g.ID, json.RawMessage(patch)); err != nil {
		t.Fatal(err)
	}
	_, second, err := db.ListLessonsByGroup(ctx, h.DB, g.ID, start, date(2026, time.March, 2), 100, 0)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("уроков стало %d, было %d", second, first)
	}
}

func TestStagedEditFlow(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()
	svc := service.New(h.DB, zap.NewNop().Sugar(), nil)

	worker := access.Actor{
		ID:   7,
		Role: models.RoleWorker,
		Profiles: []models.Profile{
			{Profile: service.ProfileStudents, Power: "update"},
		},
	}

	sid := seedStudent(t, h, "Студент", "FIN777")

	staged, err := svc.UpdateStudent(ctx, worker, sid, json.RawMessage(`{"phone":"0551234567"}`))
	if err != nil {
		t.Fatal(err)
	}
	if !staged {
		t.Fatal("правка воркера с power=update обязана откладываться")
	}

	// Верхнеуровневые поля не тронуты, кандидат лежит в changes.
	st, err := db.GetStudentByID(ctx, h.DB, sid)
	if err != nil {
		t.Fatal(err)
	}
	if st.Phone != "" {
		t.Errorf("телефон применился до подтверждения: %q", st.Phone)
	}
	raw, err := db.GetChanges(ctx, h.DB, "students", sid)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) == 0 {
		t.Fatal("changes пуст после отложенной правки")
	}

	if err := svc.ConfirmStudent(ctx, admin, sid); err != nil {
		t.Fatal(err)
	}
	st, err = db.GetStudentByID(ctx, h.DB, sid)
	if err != nil {
		t.Fatal(err)
	}
	if st.Phone != "0551234567" {
		t.Errorf("после confirm телефон = %q", st.Phone)
	}
	if raw, _ := db.GetChanges(ctx, h.DB, "students", sid); len(raw) != 0 {
		t.Error("changes не очищен после confirm")
	}

	// Cancel: поля как были, changes пуст.
	if _, err := svc.UpdateStudent(ctx, worker, sid, json.RawMessage(`{"phone":"0509999999"}`)); err != nil {
		t.Fatal(err)
	}
	if err := svc.CancelStudent(ctx, admin, sid); err != nil {
		t.Fatal(err)
	}
	st, _ = db.GetStudentByID(ctx, h.DB, sid)
	if st.Phone != "0551234567" {
		t.Errorf("cancel изменил поля: %q", st.Phone)
	}
	if raw, _ := db.GetChanges(ctx, h.DB, "students", sid); len(raw) != 0 {
		t.Error("changes не очищен после cancel")
	}

	// Воркер не может подтверждать сам.
	if _, err := svc.UpdateStudent(ctx, worker, sid, json.RawMessage(`{"phone":"051"}`)); err != nil {
		t.Fatal(err)
	}
	if err := svc.ConfirmStudent(ctx, worker, sid); err == nil {
		t.Error("подтверждение воркером должно быть запрещено")
	}
}

func TestPromotionCapacity(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()
	svc := service.New(h.DB, zap.NewNop().Sugar(), nil)

	courseID := seedCourse(t, h, "Math")

	full := models.Group{Name: "Math 1", GroupNumber: 1, CourseID: courseID, Status: models.GroupWaiting}
	if err := db.CreateGroup(ctx, h.DB, &full); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 18; i++ {
		sid := seedStudent(t, h, fmt.Sprintf("Студент %d", i), fmt.Sprintf("FIN%03d", i))
		if err := db.AddGroupStudent(ctx, h.DB, full.ID, sid); err != nil {
			t.Fatal(err)
		}
	}

	c := models.Consultation{
		ContactDate: time.Now(), StudentName: "Новичок", Fin: "FINNEW1",
		CourseID: courseID, Status: models.ConsultAppointed,
	}
	if err := db.CreateConsultation(ctx, h.DB, &c); err != nil {
		t.Fatal(err)
	}

	staged, _, err := svc.UpdateConsultation(ctx, admin, c.ID, json.RawMessage(`{"status":"sold"}`))
	if err != nil {
		t.Fatal(err)
	}
	if staged {
		t.Fatal("админская правка не должна откладываться")
	}

	// Единственная ожидающая группа забита: должна появиться Math 2.
	got, err := db.GetConsultationByID(ctx, h.DB, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.StudentID == nil || got.GroupID == nil {
		t.Fatalf("консультация не промоушена: %+v", got)
	}
	ng, err := db.GetGroupByID(ctx, h.DB, *got.GroupID)
	if err != nil {
		t.Fatal(err)
	}
	if ng.Name != "Math 2" || ng.GroupNumber != 2 {
		t.Errorf("новая группа %q #%d, ожидали Math 2 #2", ng.Name, ng.GroupNumber)
	}
	if len(ng.Students) != 1 || ng.Students[0] != *got.StudentID {
		t.Errorf("состав новой группы %v", ng.Students)
	}
	es, err := db.ListEnrollmentsByStudent(ctx, h.DB, *got.StudentID)
	if err != nil {
		t.Fatal(err)
	}
	if len(es) != 1 || es[0].GroupID != ng.ID {
		t.Errorf("enrollment нового студента %v", es)
	}

	// Повторная продажа по тому же fin не плодит студентов.
	c2 := models.Consultation{
		ContactDate: time.Now(), StudentName: "Новичок", Fin: "FINNEW1",
		CourseID: courseID, Status: models.ConsultAppointed,
	}
	if err := db.CreateConsultation(ctx, h.DB, &c2); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.UpdateConsultation(ctx, admin, c2.ID, json.RawMessage(`{"status":"sold"}`)); err != nil {
		t.Fatal(err)
	}
	got2, _ := db.GetConsultationByID(ctx, h.DB, c2.ID)
	if got2.StudentID == nil || *got2.StudentID != *got.StudentID {
		t.Errorf("дедупликация по fin не сработала: %v vs %v", got2.StudentID, got.StudentID)
	}
}

func TestPromotionPrefersRequestedGroup(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()
	svc := service.New(h.DB, zap.NewNop().Sugar(), nil)

	courseID := seedCourse(t, h, "QA")
	g1 := models.Group{Name: "QA 1", GroupNumber: 1, CourseID: courseID, Status: models.GroupWaiting}
	g2 := models.Group{Name: "QA 2", GroupNumber: 2, CourseID: courseID, Status: models.GroupWaiting}
	if err := db.CreateGroup(ctx, h.DB, &g1); err != nil {
		t.Fatal(err)
	}
	if err := db.CreateGroup(ctx, h.DB, &g2); err != nil {
		t.Fatal(err)
	}

	c := models.Consultation{
		ContactDate: time.Now(), StudentName: "Кандидат", Fin: "FINQA01",
		CourseID: courseID, Status: models.ConsultAppointed,
	}
	if err := db.CreateConsultation(ctx, h.DB, &c); err != nil {
		t.Fatal(err)
	}

	patch := fmt.Sprintf(`{"status":"sold","group":%d}`, g2.ID)
	if _, _, err := svc.UpdateConsultation(ctx, admin, c.ID, json.RawMessage(patch)); err != nil {
		t.Fatal(err)
	}
	got, _ := db.GetConsultationByID(ctx, h.DB, c.ID)
	if got.GroupID == nil || *got.GroupID != g2.ID {
		t.Errorf("запрошенная группа проигнорирована: %v", got.GroupID)
	}
}

func TestStagedSaleKeepsRequestedGroup(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()
	svc := service.New(h.DB, zap.NewNop().Sugar(), nil)

	worker := access.Actor{
		ID:   9,
		Role: models.RoleWorker,
		Profiles: []models.Profile{
			{Profile: service.ProfileConsultations, Power: "update"},
		},
	}

	courseID := seedCourse(t, h, "Design")
	g1 := models.Group{Name: "Design 1", GroupNumber: 1, CourseID: courseID, Status: models.GroupWaiting}
	g2 := models.Group{Name: "Design 2", GroupNumber: 2, CourseID: courseID, Status: models.GroupWaiting}
	if err := db.CreateGroup(ctx, h.DB, &g1); err != nil {
		t.Fatal(err)
	}
	if err := db.CreateGroup(ctx, h.DB, &g2); err != nil {
		t.Fatal(err)
	}

	c := models.Consultation{
		ContactDate: time.Now(), StudentName: "Кандидат", Fin: "FINDS01",
		CourseID: courseID, Status: models.ConsultAppointed,
	}
	if err := db.CreateConsultation(ctx, h.DB, &c); err != nil {
		t.Fatal(err)
	}

	// Воркер откладывает продажу с пожеланием конкретной группы.
	patch := fmt.Sprintf(`{"status":"sold","group":%d}`, g2.ID)
	staged, result, err := svc.UpdateConsultation(ctx, worker, c.ID, json.RawMessage(patch))
	if err != nil {
		t.Fatal(err)
	}
	if !staged || result != nil {
		t.Fatalf("правка воркера: staged=%v result=%v", staged, result)
	}
	got, err := db.GetConsultationByID(ctx, h.DB, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status == models.ConsultSold || got.StudentID != nil {
		t.Fatalf("отложенная продажа применилась сразу: %+v", got)
	}

	// Подтверждение обязано отработать пожелание так же, как прямая правка.
	result, err = svc.ConfirmConsultation(ctx, admin, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if result == nil || result.Group == nil || result.Group.ID != g2.ID {
		t.Fatalf("промоушен после confirm мимо запрошенной группы: %+v", result)
	}
	got, err = db.GetConsultationByID(ctx, h.DB, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.ConsultSold {
		t.Errorf("статус после confirm = %q", got.Status)
	}
	if got.GroupID == nil || *got.GroupID != g2.ID {
		t.Errorf("группа после confirm = %v, ожидали %d", got.GroupID, g2.ID)
	}
	if got.StudentID == nil {
		t.Error("студент после confirm не заведён")
	}
}
