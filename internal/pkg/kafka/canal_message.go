package kafka

import (
	"fmt"
	"strconv"
)

const (
	canalInsert = "INSERT"
	canalUpdate = "UPDATE"
	canalDelete = "DELETE"
)

// CanalMessage 定义了 Canal 推送到 Kafka 的 JSON 数据结构
type CanalMessage struct {
	ID       int64    `json:"id"`
	Database string   `json:"database"`
	Table    string   `json:"table"`
	PKNames  []string `json:"pkNames"`
	IsDDL    bool     `json:"isDdl"`
	Type     string   `json:"type"`
	ES       int64    `json:"es"`
	TS       int64    `json:"ts"`

	// Data 存储变更后的数据
	Data []map[string]interface{} `json:"data"`

	// Old 存储变更前被修改的字段
	Old []map[string]interface{} `json:"old"`
}

// OldRow 第 i 行变更前的字段，INSERT/DELETE 时为 nil
func (m *CanalMessage) OldRow(i int) map[string]interface{} {
	if i < len(m.Old) {
		return m.Old[i]
	}
	return nil
}

// rowUint64 canal 把所有列都序列化为字符串，这里同时兼容数字
func rowUint64(row map[string]interface{}, key string) uint64 {
	switch v := row[key].(type) {
	case string:
		n, _ := strconv.ParseUint(v, 10, 64)
		return n
	case float64:
		if v < 0 {
			return 0
		}
		return uint64(v)
	case nil:
		return 0
	default:
		n, _ := strconv.ParseUint(fmt.Sprint(v), 10, 64)
		return n
	}
}
