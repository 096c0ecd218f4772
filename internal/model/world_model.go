package model

import (
	"encoding/json"
)

// WorldModel 对一段内容讨论的结构化理解
// 以 JSON 形式存放在 conversations.world_model
type WorldModel struct {
	Context   map[string]string `json:"context"`   // 关键概念 -> 当前理解
	Topics    []string          `json:"topics"`    // 正在讨论的主题
	Questions []string          `json:"questions"` // 待探索的问题
	Summary   string            `json:"summary"`   // 当前讨论摘要
}

// ConceptNote 概念及其理解，模型输出 context 时使用的数组形式
type ConceptNote struct {
	Concept       string `json:"concept"`
	Understanding string `json:"understanding"`
}

// UnmarshalJSON 兼容 context 的两种写法:
// 对象 {"概念": "理解"}（入库格式）和数组 [{"concept","understanding"}]（模型输出格式）
func (w *WorldModel) UnmarshalJSON(data []byte) error {
	var raw struct {
		Context   json.RawMessage `json:"context"`
		Topics    []string        `json:"topics"`
		Questions []string        `json:"questions"`
		Summary   string          `json:"summary"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	w.Topics = raw.Topics
	w.Questions = raw.Questions
	w.Summary = raw.Summary
	w.Context = nil

	if len(raw.Context) == 0 || string(raw.Context) == "null" {
		return nil
	}
	if raw.Context[0] == '[' {
		var notes []ConceptNote
		if err := json.Unmarshal(raw.Context, &notes); err != nil {
			return err
		}
		w.Context = make(map[string]string, len(notes))
		for _, n := range notes {
			w.Context[n.Concept] = n.Understanding
		}
		return nil
	}
	return json.Unmarshal(raw.Context, &w.Context)
}

// Normalize 把 nil 字段换成空值，保证序列化结果稳定
func (w WorldModel) Normalize() WorldModel {
	if w.Context == nil {
		w.Context = map[string]string{}
	}
	if w.Topics == nil {
		w.Topics = []string{}
	}
	if w.Questions == nil {
		w.Questions = []string{}
	}
	return w
}
