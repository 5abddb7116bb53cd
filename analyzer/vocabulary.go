package analyzer

// Locale data for the heuristics. The word lists are configuration, not
// algorithm: they may be swapped for another locale without touching the
// scoring rules.

// stopWords are pronouns, auxiliaries and interrogatives that never make
// useful titles.
var stopWords = map[string]struct{}{
	"的": {}, "了": {}, "吗": {}, "呢": {}, "吧": {}, "啊": {},
	"什么": {}, "怎么": {}, "怎样": {}, "如何": {}, "为什么": {},
	"这个": {}, "那个": {}, "这些": {}, "那些": {}, "哪些": {},
	"可以": {}, "应该": {}, "能否": {}, "是否": {}, "有没有": {},
	"觉得": {}, "认为": {}, "知道": {}, "告诉": {}, "请问": {},
	"我们": {}, "你们": {}, "他们": {}, "自己": {}, "大家": {},
	"一个": {}, "一些": {}, "一下": {}, "有点": {}, "非常": {},
	"但是": {}, "因为": {}, "所以": {}, "如果": {}, "还是": {},
	"关于": {}, "对于": {}, "建议": {}, "问题": {}, "时候": {},
}

// techTerms are Latin-script tokens admitted despite containing no CJK
// ideographs.
var techTerms = map[string]struct{}{
	"python": {}, "javascript": {}, "java": {}, "go": {}, "rust": {},
	"sql": {}, "html": {}, "css": {}, "api": {}, "app": {},
	"ai": {}, "web": {}, "linux": {}, "docker": {}, "react": {},
	"vue": {}, "node": {}, "git": {},
}

// importanceCategories are the five fixed domain-importance buckets used by
// the keyword scorer.
var importanceCategories = map[string][]string{
	"technical": {
		"编程", "代码", "程序", "算法", "技术", "软件", "开发",
		"数据", "模型", "网络", "系统", "架构", "调试",
	},
	"academic": {
		"科学", "研究", "理论", "实验", "数学", "物理", "化学",
		"历史", "哲学", "文学", "知识", "论文",
	},
	"business": {
		"工作", "职业", "事业", "公司", "项目", "管理", "创业",
		"市场", "面试", "职场", "同事", "老板",
	},
	"lifestyle": {
		"生活", "健康", "运动", "美食", "旅行", "朋友", "家人",
		"习惯", "睡眠", "爱情", "兴趣", "爱好",
	},
	"abstract": {
		"智慧", "意义", "思想", "真理", "自由", "命运", "幸福",
		"勇气", "人性", "灵魂", "梦想", "人生",
	},
}

// importanceSet is the flattened lookup over importanceCategories.
var importanceSet = func() map[string]struct{} {
	set := make(map[string]struct{})
	for _, words := range importanceCategories {
		for _, w := range words {
			set[w] = struct{}{}
		}
	}
	return set
}()

func isStopWord(term string) bool {
	_, ok := stopWords[term]
	return ok
}

func isImportant(term string) bool {
	_, ok := importanceSet[term]
	return ok
}

func isTechTerm(term string) bool {
	_, ok := techTerms[term]
	return ok
}
