package model

import "testing"

func TestCodeList_ScanAndValue(t *testing.T) {
	var l CodeList

	if err := l.Scan([]byte(`{CS301,"MA 302",CS401}`)); err != nil {
		t.Fatalf("Scan 失败: %v", err)
	}
	if len(l) != 3 || l[0] != "CS301" || l[1] != "MA 302" || l[2] != "CS401" {
		t.Errorf("Scan 结果错误: %v", l)
	}

	v, err := l.Value()
	if err != nil {
		t.Fatalf("Value 失败: %v", err)
	}
	if v != `{"CS301","MA 302","CS401"}` {
		t.Errorf("Value 结果错误: %v", v)
	}

	if err := l.Scan(nil); err != nil {
		t.Fatalf("Scan nil 失败: %v", err)
	}
	if l != nil {
		t.Errorf("Scan nil 后期望 nil, 实际 %v", l)
	}
}

func TestCodeList_NilValueIsEmptyArray(t *testing.T) {
	var l CodeList
	v, err := l.Value()
	if err != nil {
		t.Fatalf("Value nil 失败: %v", err)
	}
	if v != "{}" {
		t.Errorf("nil CodeList 应写入 '{}', 实际 %v", v)
	}
}

func TestCodeList_ScanEmpty(t *testing.T) {
	var l CodeList
	if err := l.Scan("{}"); err != nil {
		t.Fatalf("Scan 空数组失败: %v", err)
	}
	if len(l) != 0 {
		t.Errorf("期望空列表，实际 %v", l)
	}
}
