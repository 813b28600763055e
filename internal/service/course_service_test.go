package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/LanceHuang1/course-web-app/internal/dto"
	"github.com/LanceHuang1/course-web-app/internal/model"
	"github.com/LanceHuang1/course-web-app/internal/repository"
	apperrors "github.com/LanceHuang1/course-web-app/pkg/errors"
	"github.com/LanceHuang1/course-web-app/pkg/timefmt"
)

// ── 测试辅助 ──

func setupTestCourseService(records ...model.CourseRecord) (CourseService, *mockCourseRepo) {
	repo := newMockCourseRepo(records...)
	svc := NewCourseService(NewCourseStore(repo), timefmt.NewFormatter(timefmt.LayoutSlash), 52, zap.NewNop())
	return svc, repo
}

func createReq(name, student, teacher, start, end string) *dto.CreateCourseRequest {
	return &dto.CreateCourseRequest{
		CourseName:  name,
		StudentName: student,
		TeacherName: teacher,
		StartTime:   start,
		EndTime:     end,
	}
}

// ── Create 测试 ──

func TestCourseService_Create_Success(t *testing.T) {
	svc, repo := setupTestCourseService(
		course(1, "Math", "Ann", "Bob", "2024/01/01 09:00", "2024/01/01 10:00"),
		course(5, "Art", "Dan", "Cat", "2024/01/02 09:00", "2024/01/02 10:00"),
	)

	result, err := svc.Create(context.Background(), createReq("數學", "Ann", "Bob", "2024-03-01 09:00", "2024-03-01 10:30"))
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.ID != 6 {
		t.Errorf("期望 ID=6（最大 ID + 1），实际=%d", result.ID)
	}
	if result.StartTime != "2024/03/01 09:00" {
		t.Errorf("期望按规范格式保存，实际=%s", result.StartTime)
	}
	if result.Hours != 1.5 || !result.Valid {
		t.Errorf("期望 Hours=1.5 Valid=true，实际 %+v", result)
	}
	if result.Label != "6: 數學" {
		t.Errorf("期望 Label=\"6: 數學\"，实际=%q", result.Label)
	}

	saved := repo.snapshot()
	if len(saved) != 3 || saved[2].ID != 6 {
		t.Errorf("新记录应追加到末尾: %+v", saved)
	}
}

func TestCourseService_Create_EmptyStore(t *testing.T) {
	svc, _ := setupTestCourseService()

	result, err := svc.Create(context.Background(), createReq("", "", "", "2024/01/01 09:00", "2024/01/01 10:00"))
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.ID != 1 {
		t.Errorf("空存储期望 ID=1，实际=%d", result.ID)
	}
}

func TestCourseService_Create_InvalidDoesNotSave(t *testing.T) {
	tests := []struct {
		name   string
		req    *dto.CreateCourseRequest
		target error
	}{
		{"结束早于开始", createReq("Math", "", "", "2024/01/01 10:00", "2024/01/01 09:00"), apperrors.ErrInvalidRange},
		{"起止相同", createReq("Math", "", "", "2024/01/01 10:00", "2024/01/01 10:00"), apperrors.ErrInvalidRange},
		{"格式错误", createReq("Math", "", "", "01/01/2024 10:00", "2024/01/01 11:00"), apperrors.ErrInvalidTimeFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := setupTestCourseService()
			_, err := svc.Create(context.Background(), tt.req)
			if !errors.Is(err, tt.target) {
				t.Fatalf("期望 %v，实际: %v", tt.target, err)
			}
			if repo.saveCount != 0 {
				t.Errorf("校验失败时不应写存储，saveCount=%d", repo.saveCount)
			}
		})
	}
}

func TestCourseService_InvalidWriteLeavesFileUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courses.json")
	fileRepo := repository.NewCourseFileRepo(path)
	seed := []model.CourseRecord{course(1, "Math", "Ann", "Bob", "2024/01/01 09:00", "2024/01/01 10:00")}
	if err := fileRepo.Save(context.Background(), seed); err != nil {
		t.Fatal(err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	svc := NewCourseService(NewCourseStore(fileRepo), timefmt.NewFormatter(""), 52, zap.NewNop())

	if _, err := svc.Create(context.Background(), createReq("Art", "", "", "2024/01/01 10:00", "2024/01/01 09:00")); err == nil {
		t.Fatal("期望 Create 返回 RangeError")
	}
	if _, err := svc.Update(context.Background(), 1, createReq("Art", "", "", "bad", "2024/01/01 09:00")); err == nil {
		t.Fatal("期望 Update 返回 FormatError")
	}
	if _, err := svc.Update(context.Background(), 42, createReq("Art", "", "", "2024/01/01 09:00", "2024/01/01 10:00")); err == nil {
		t.Fatal("期望 Update 返回 NotFoundError")
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Errorf("失败的写操作不应改变文件\nbefore=%s\nafter=%s", before, after)
	}
}

// ── GetByID / List 测试 ──

func TestCourseService_GetByID(t *testing.T) {
	svc, _ := setupTestCourseService(course(3, "Math", "Ann", "Bob", "2024/01/01 09:00", "2024/01/01 10:00"))

	got, err := svc.GetByID(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetByID 应成功: %v", err)
	}
	if got.CourseName != "Math" {
		t.Errorf("期望 Math，实际=%s", got.CourseName)
	}

	_, err = svc.GetByID(context.Background(), 9)
	var nf *apperrors.NotFoundError
	if !errors.As(err, &nf) || nf.ID != 9 {
		t.Errorf("期望 NotFoundError{ID:9}，实际: %v", err)
	}
}

func TestCourseService_List(t *testing.T) {
	svc, _ := setupTestCourseService(
		course(1, "Math", "Ann", "Bob", "2024/01/05 09:00", "2024/01/05 10:00"),
		course(2, "Art", "Ann", "Cat", "2024/02/05 09:00", "2024/02/05 10:00"),
		course(3, "Math", "Dan", "Bob", "oops", "2024/01/05 10:00"),
	)
	ctx := context.Background()

	all, err := svc.List(ctx, &dto.CourseListRequest{})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("无筛选时应返回全部记录，实际 %d", len(all))
	}
	if all[2].Valid || all[2].Hours != 0 {
		t.Errorf("无法解析的记录应标记为无效: %+v", all[2])
	}

	jan, err := svc.List(ctx, &dto.CourseListRequest{From: "2024-01-01", To: "2024/01/31", Course: "*"})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(jan) != 1 || jan[0].ID != 1 {
		t.Errorf("一月应只有 ID=1，实际 %+v", jan)
	}

	math, err := svc.List(ctx, &dto.CourseListRequest{Course: "Math"})
	if err != nil {
		t.Fatal(err)
	}
	if len(math) != 1 {
		t.Errorf("按课程筛选时跳过无法解析的记录，期望 1 条，实际 %d", len(math))
	}

	_, err = svc.List(ctx, &dto.CourseListRequest{From: "yesterday"})
	if !errors.Is(err, apperrors.ErrInvalidTimeFormat) {
		t.Errorf("期望 ErrInvalidTimeFormat，实际: %v", err)
	}
}

func TestCourseService_List_EmptyCourseMeansAll(t *testing.T) {
	svc, _ := setupTestCourseService(
		course(1, "Math", "Ann", "Bob", "2024/01/05 09:00", "2024/01/05 10:00"),
		course(2, "", "Ann", "Bob", "2024/01/06 09:00", "2024/01/06 10:00"),
	)
	ctx := context.Background()

	// 有日期筛选时，空课程名仍表示全部课程，而不是"课程名为空"
	got, err := svc.List(ctx, &dto.CourseListRequest{From: "2024/01/01", Course: ""})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("空课程名应返回全部课程，实际 %d 条", len(got))
	}

	star, err := svc.List(ctx, &dto.CourseListRequest{From: "2024/01/01", Course: "*"})
	if err != nil {
		t.Fatal(err)
	}
	if len(star) != len(got) {
		t.Errorf("空课程名与 \"*\" 应等价，实际 %d / %d", len(got), len(star))
	}
}

// ── Update / Reschedule 测试 ──

func TestCourseService_Update(t *testing.T) {
	svc, repo := setupTestCourseService(
		course(1, "Math", "Ann", "Bob", "2024/01/01 09:00", "2024/01/01 10:00"),
		course(2, "Art", "Dan", "Cat", "2024/01/02 09:00", "2024/01/02 10:00"),
	)

	got, err := svc.Update(context.Background(), 2, createReq("Piano", "Eve", "Fay", "2024-01-03 14:00", "2024-01-03 15:00"))
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if got.ID != 2 || got.CourseName != "Piano" || got.StartTime != "2024/01/03 14:00" {
		t.Errorf("更新结果不符: %+v", got)
	}

	saved := repo.snapshot()
	if saved[1].CourseName != "Piano" || saved[0].CourseName != "Math" {
		t.Errorf("应原位替换: %+v", saved)
	}
}

func TestCourseService_Update_NotFound(t *testing.T) {
	svc, repo := setupTestCourseService(course(1, "Math", "", "", "2024/01/01 09:00", "2024/01/01 10:00"))

	_, err := svc.Update(context.Background(), 7, createReq("Art", "", "", "2024/01/01 09:00", "2024/01/01 10:00"))
	if !errors.Is(err, apperrors.ErrCourseNotFound) {
		t.Errorf("期望 ErrCourseNotFound，实际: %v", err)
	}
	if repo.saveCount != 0 {
		t.Error("记录不存在时不应写存储")
	}
}

func TestCourseService_Reschedule_KeepsNames(t *testing.T) {
	svc, _ := setupTestCourseService(course(1, "Math", "Ann", "Bob", "2024/01/01 09:00", "2024/01/01 10:00"))

	got, err := svc.Reschedule(context.Background(), 1, &dto.RescheduleCourseRequest{
		StartTime: "2024/01/02 13:00",
		EndTime:   "2024/01/02 15:00",
	})
	if err != nil {
		t.Fatalf("Reschedule 应成功: %v", err)
	}
	if got.CourseName != "Math" || got.StudentName != "Ann" || got.TeacherName != "Bob" {
		t.Errorf("名称应保持不变: %+v", got)
	}
	if got.StartTime != "2024/01/02 13:00" || got.Hours != 2 {
		t.Errorf("时间更新不符: %+v", got)
	}

	_, err = svc.Reschedule(context.Background(), 1, &dto.RescheduleCourseRequest{
		StartTime: "2024/01/02 15:00",
		EndTime:   "2024/01/02 13:00",
	})
	if !errors.Is(err, apperrors.ErrInvalidRange) {
		t.Errorf("期望 ErrInvalidRange，实际: %v", err)
	}
}

// ── Delete 测试 ──

func TestCourseService_Delete(t *testing.T) {
	svc, repo := setupTestCourseService(
		course(1, "Math", "", "", "2024/01/01 09:00", "2024/01/01 10:00"),
		course(2, "Art", "", "", "2024/01/02 09:00", "2024/01/02 10:00"),
	)
	ctx := context.Background()

	if err := svc.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if saved := repo.snapshot(); len(saved) != 1 || saved[0].ID != 2 {
		t.Errorf("删除后应只剩 ID=2: %+v", saved)
	}

	// 再次删除同一 ID：无错误且不写存储
	if err := svc.Delete(ctx, 1); err != nil {
		t.Fatalf("重复删除不应报错: %v", err)
	}
	if repo.saveCount != 1 {
		t.Errorf("重复删除不应写存储，saveCount=%d", repo.saveCount)
	}
}

func TestCourseService_Delete_SaveError(t *testing.T) {
	svc, repo := setupTestCourseService(course(1, "Math", "", "", "2024/01/01 09:00", "2024/01/01 10:00"))
	repo.saveErr = errors.New("disk full")

	if err := svc.Delete(context.Background(), 1); err == nil {
		t.Error("保存失败时应返回错误")
	}
}

// ── PrepareCopy 测试 ──

func TestCourseService_PrepareCopy(t *testing.T) {
	svc, repo := setupTestCourseService(course(4, "Math", "Ann", "Bob", "2024/01/01 09:00", "2024/01/01 10:00"))

	pending, err := svc.PrepareCopy(context.Background(), 4)
	if err != nil {
		t.Fatalf("PrepareCopy 应成功: %v", err)
	}
	if pending.Kind != "copy" || pending.SourceID != 4 {
		t.Errorf("PendingAction 不符: %+v", pending)
	}
	if pending.Fields.CourseName != "Math" || pending.Fields.EndTime != "2024/01/01 10:00" {
		t.Errorf("表单应预填源记录字段: %+v", pending.Fields)
	}
	if repo.saveCount != 0 {
		t.Error("PrepareCopy 不应写存储")
	}
}

// ── Repeat 测试 ──

func TestCourseService_Repeat_Weekly(t *testing.T) {
	svc, repo := setupTestCourseService(course(1, "Math", "Ann", "Bob", "2024/01/01 09:00", "2024/01/01 10:30"))

	got, err := svc.Repeat(context.Background(), 1, &dto.RepeatCourseRequest{RRule: "FREQ=WEEKLY;COUNT=4"})
	if err != nil {
		t.Fatalf("Repeat 应成功: %v", err)
	}
	if got.Truncated {
		t.Error("未达上限时不应截断")
	}
	if len(got.Created) != 3 {
		t.Fatalf("COUNT=4 含源记录，期望新增 3 条，实际 %d", len(got.Created))
	}

	wantStarts := []string{"2024/01/08 09:00", "2024/01/15 09:00", "2024/01/22 09:00"}
	for i, c := range got.Created {
		if c.ID != i+2 {
			t.Errorf("第 %d 条期望 ID=%d，实际=%d", i, i+2, c.ID)
		}
		if c.StartTime != wantStarts[i] {
			t.Errorf("第 %d 条开始时间期望 %s，实际 %s", i, wantStarts[i], c.StartTime)
		}
		if c.Hours != 1.5 || c.CourseName != "Math" || c.TeacherName != "Bob" {
			t.Errorf("复制应保持时长与名称: %+v", c)
		}
	}
	if len(repo.snapshot()) != 4 || repo.saveCount != 1 {
		t.Errorf("应一次性保存 4 条记录，saveCount=%d", repo.saveCount)
	}
}

func TestCourseService_Repeat_Truncated(t *testing.T) {
	repo := newMockCourseRepo(course(1, "Math", "", "", "2024/01/01 09:00", "2024/01/01 10:00"))
	svc := NewCourseService(NewCourseStore(repo), timefmt.NewFormatter(""), 2, zap.NewNop())

	got, err := svc.Repeat(context.Background(), 1, &dto.RepeatCourseRequest{RRule: "FREQ=DAILY"})
	if err != nil {
		t.Fatalf("Repeat 应成功: %v", err)
	}
	if !got.Truncated || len(got.Created) != 2 {
		t.Errorf("无终止条件的规则应截断到上限 2，实际 %d 条 truncated=%v", len(got.Created), got.Truncated)
	}
}

func TestCourseService_Repeat_Errors(t *testing.T) {
	svc, repo := setupTestCourseService(
		course(1, "Math", "", "", "2024/01/01 09:00", "2024/01/01 10:00"),
		course(2, "Art", "", "", "bad", "2024/01/01 10:00"),
	)
	ctx := context.Background()

	if _, err := svc.Repeat(ctx, 1, &dto.RepeatCourseRequest{RRule: "FREQ=SOMETIMES"}); !errors.Is(err, ErrRepeatInvalidRule) {
		t.Errorf("期望 ErrRepeatInvalidRule，实际: %v", err)
	}
	if _, err := svc.Repeat(ctx, 9, &dto.RepeatCourseRequest{RRule: "FREQ=WEEKLY;COUNT=2"}); !errors.Is(err, apperrors.ErrCourseNotFound) {
		t.Errorf("期望 ErrCourseNotFound，实际: %v", err)
	}
	if _, err := svc.Repeat(ctx, 2, &dto.RepeatCourseRequest{RRule: "FREQ=WEEKLY;COUNT=2"}); !errors.Is(err, apperrors.ErrInvalidTimeFormat) {
		t.Errorf("期望 ErrInvalidTimeFormat，实际: %v", err)
	}
	if repo.saveCount != 0 {
		t.Error("出错时不应写存储")
	}
}

func TestCourseService_Repeat_SubMinuteRules(t *testing.T) {
	svc, repo := setupTestCourseService(course(1, "Math", "", "", "2024/01/01 09:00", "2024/01/01 10:00"))
	ctx := context.Background()

	if _, err := svc.Repeat(ctx, 1, &dto.RepeatCourseRequest{RRule: "FREQ=SECONDLY;COUNT=3"}); !errors.Is(err, ErrRepeatInvalidRule) {
		t.Errorf("FREQ=SECONDLY 期望 ErrRepeatInvalidRule，实际: %v", err)
	}
	if repo.saveCount != 0 {
		t.Error("规则无效时不应写存储")
	}

	// 09:00:00, 09:00:30, 09:01:00, 09:01:30 截断后只剩 09:01 一个新时间
	got, err := svc.Repeat(ctx, 1, &dto.RepeatCourseRequest{RRule: "FREQ=MINUTELY;BYSECOND=0,30;COUNT=4"})
	if err != nil {
		t.Fatalf("Repeat 应成功: %v", err)
	}
	if len(got.Created) != 1 || got.Created[0].StartTime != "2024/01/01 09:01" {
		t.Fatalf("同一分钟内的发生时间应合并，实际 %+v", got.Created)
	}

	seen := make(map[string]bool)
	for _, rec := range repo.snapshot() {
		key := rec.StartTime + "|" + rec.EndTime
		if seen[key] {
			t.Errorf("不应生成起止时间完全相同的副本: %s", key)
		}
		seen[key] = true
	}
}

// ── 并发 ──

func TestCourseService_ConcurrentCreates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courses.json")
	svc := NewCourseService(NewCourseStore(repository.NewCourseFileRepo(path)), timefmt.NewFormatter(""), 52, zap.NewNop())

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(context.Background(), createReq("Math", "", "", "2024/01/01 09:00", "2024/01/01 10:00"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("并发 Create 失败: %v", err)
		}
	}

	records, err := repository.NewCourseFileRepo(path).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != n {
		t.Fatalf("期望 %d 条记录，实际 %d", n, len(records))
	}
	seen := make(map[int]bool)
	for _, r := range records {
		if seen[r.ID] {
			t.Errorf("ID %d 重复", r.ID)
		}
		seen[r.ID] = true
	}
}
