package repository

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Course CourseRepository
}

// NewRepository 创建 Repository 聚合；storePath 为课程 JSON 文件路径
func NewRepository(storePath string) *Repository {
	return &Repository{
		Course: NewCourseFileRepo(storePath),
	}
}
