package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/LanceHuang1/course-web-app/internal/model"
)

// CourseRepository 课程记录存储接口
//
// 存储是整个列表的快照：Load 读取全部，Save 整体覆盖。
type CourseRepository interface {
	Load(ctx context.Context) ([]model.CourseRecord, error)
	Save(ctx context.Context, records []model.CourseRecord) error
}

type courseFileRepo struct {
	path string
}

// NewCourseFileRepo 创建基于单个 JSON 文件的 CourseRepository
func NewCourseFileRepo(path string) CourseRepository {
	return &courseFileRepo{path: path}
}

func (r *courseFileRepo) Load(ctx context.Context) ([]model.CourseRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// 文件不存在等价于空列表
			return []model.CourseRecord{}, nil
		}
		return nil, fmt.Errorf("读取课程文件失败: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []model.CourseRecord{}, nil
	}

	var records []model.CourseRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("解析课程文件失败: %w", err)
	}
	if records == nil {
		records = []model.CourseRecord{}
	}
	return records, nil
}

func (r *courseFileRepo) Save(ctx context.Context, records []model.CourseRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if records == nil {
		records = []model.CourseRecord{}
	}

	data, err := encodeCourses(records)
	if err != nil {
		return fmt.Errorf("序列化课程失败: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("创建数据目录失败: %w", err)
	}

	// 同目录临时文件 + rename，整体替换
	tmp, err := os.CreateTemp(dir, ".courses-*.tmp")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("写入临时文件失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("替换课程文件失败: %w", err)
	}
	return nil
}

// encodeCourses 2 空格缩进，保留非 ASCII 字符与 <>& 原文
func encodeCourses(records []model.CourseRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NextID 返回 max(id)+1，空列表返回 1
func NextID(records []model.CourseRecord) int {
	maxID := 0
	for _, r := range records {
		if r.ID > maxID {
			maxID = r.ID
		}
	}
	return maxID + 1
}
