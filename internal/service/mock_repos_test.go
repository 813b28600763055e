package service

import (
	"context"
	"sync"

	"github.com/LanceHuang1/course-web-app/internal/model"
)

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	mu        sync.Mutex
	records   []model.CourseRecord
	loadErr   error
	saveErr   error
	saveCount int
}

func newMockCourseRepo(records ...model.CourseRecord) *mockCourseRepo {
	return &mockCourseRepo{records: append([]model.CourseRecord{}, records...)}
}

func (m *mockCourseRepo) Load(_ context.Context) ([]model.CourseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]model.CourseRecord{}, m.records...), nil
}

func (m *mockCourseRepo) Save(_ context.Context, records []model.CourseRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records = append([]model.CourseRecord{}, records...)
	m.saveCount++
	return nil
}

func (m *mockCourseRepo) snapshot() []model.CourseRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.CourseRecord{}, m.records...)
}

// ── 测试数据 ──

func course(id int, name, student, teacher, start, end string) model.CourseRecord {
	return model.CourseRecord{
		ID:          id,
		CourseName:  name,
		StudentName: student,
		TeacherName: teacher,
		StartTime:   start,
		EndTime:     end,
	}
}
