package service

import (
	"context"
	"sync"

	"github.com/LanceHuang1/course-web-app/internal/model"
	"github.com/LanceHuang1/course-web-app/internal/repository"
)

// CourseStore 串行化 load→mutate→save，防止并发请求交错写回整份文件
//
// 写路径持有写锁；读路径持读锁，只会看到完整写入后的文件。
type CourseStore struct {
	mu   sync.RWMutex
	repo repository.CourseRepository
}

// NewCourseStore 包装课程仓储
func NewCourseStore(repo repository.CourseRepository) *CourseStore {
	return &CourseStore{repo: repo}
}

// load 读取全部记录
func (s *CourseStore) load(ctx context.Context) ([]model.CourseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repo.Load(ctx)
}

// mutate 在写锁内加载记录并交给 fn 变更；fn 返回错误时不写回
func (s *CourseStore) mutate(ctx context.Context, fn func([]model.CourseRecord) ([]model.CourseRecord, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	next, err := fn(records)
	if err != nil {
		return err
	}
	return s.repo.Save(ctx, next)
}
