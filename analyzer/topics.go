package analyzer

import (
	"sort"
	"strings"
)

// TopicBucket is one entry of the fixed topic taxonomy: a display label, the
// keywords that vote for it and the per-occurrence weight of those votes.
type TopicBucket struct {
	Label    string
	Keywords []string
	Weight   float64
}

// defaultTopics is the built-in taxonomy. Declaration order is significant:
// it is the deterministic tie-breaker between equally scored topics.
var defaultTopics = []TopicBucket{
	{
		Label:    "编程技术",
		Keywords: []string{"编程", "代码", "程序", "软件", "网站", "算法", "开发", "技术", "python", "javascript", "app"},
		Weight:   1.5,
	},
	{
		Label:    "学习教育",
		Keywords: []string{"学习", "知识", "读书", "课程", "研究", "教育", "考试", "笔记", "学会"},
		Weight:   1.2,
	},
	{
		Label:    "职场发展",
		Keywords: []string{"工作", "职业", "事业", "公司", "老板", "同事", "项目", "职场", "面试", "上班"},
		Weight:   1.2,
	},
	{
		Label:    "情感关系",
		Keywords: []string{"爱情", "恋爱", "男友", "女友", "伴侣", "约会", "感情", "恋人", "喜欢"},
		Weight:   1.3,
	},
	{
		Label:    "科学探索",
		Keywords: []string{"科学", "实验", "理论", "发现", "数学", "物理", "化学", "宇宙", "自然"},
		Weight:   1.4,
	},
	{
		Label:    "艺术文化",
		Keywords: []string{"艺术", "音乐", "电影", "文学", "创作", "文化", "绘画", "诗歌", "戏剧"},
		Weight:   1.2,
	},
	{
		Label:    "哲学思辨",
		Keywords: []string{"哲学", "思考", "人生", "意义", "存在", "思想", "智慧", "真理", "人性"},
		Weight:   1.4,
	},
	{
		Label:    "日常生活",
		Keywords: []string{"生活", "日常", "每天", "平时", "习惯", "家人", "朋友", "相处"},
		Weight:   1.0,
	},
	{
		Label:    "健康养生",
		Keywords: []string{"健康", "身体", "锻炼", "运动", "饮食", "睡眠", "医生", "养生"},
		Weight:   1.0,
	},
	{
		Label:    "旅行见闻",
		Keywords: []string{"旅行", "旅游", "城市", "国家", "景点", "风景", "度假"},
		Weight:   1.0,
	},
	{
		Label:    "美食烹饪",
		Keywords: []string{"美食", "餐厅", "做饭", "烹饪", "味道", "食物", "料理"},
		Weight:   1.0,
	},
	{
		Label:    "历史典故",
		Keywords: []string{"历史", "古代", "朝代", "人物", "传统", "古典", "典故"},
		Weight:   1.2,
	},
	{
		Label:    "心理情绪",
		Keywords: []string{"心理", "情绪", "压力", "焦虑", "开心", "难过", "心情", "感受"},
		Weight:   1.1,
	},
	{
		Label:    "未来规划",
		Keywords: []string{"未来", "计划", "目标", "梦想", "规划", "打算", "理想"},
		Weight:   1.1,
	},
}

// Topics scores the text against the taxonomy and returns the best matches,
// capped at MaxTopics. Score is occurrences times bucket weight, summed per
// keyword, plus a breadth bonus when more than one distinct keyword from the
// same bucket matched. Ties keep taxonomy declaration order.
func (h *Heuristic) Topics(text string) []TopicMatch {
	clean := cleanText(text)
	if clean == "" {
		return nil
	}

	var matches []TopicMatch
	for _, bucket := range defaultTopics {
		distinct := 0
		score := 0.0
		for _, kw := range bucket.Keywords {
			if c := strings.Count(clean, kw); c > 0 {
				distinct++
				score += float64(c) * bucket.Weight
			}
		}
		if distinct == 0 {
			continue
		}
		// Breadth over repetition: several distinct keywords from one
		// bucket say more than one keyword repeated.
		if distinct > 1 {
			score += h.cfg.BreadthBonus
		}
		matches = append(matches, TopicMatch{Label: bucket.Label, Score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > h.cfg.MaxTopics {
		matches = matches[:h.cfg.MaxTopics]
	}
	return matches
}
