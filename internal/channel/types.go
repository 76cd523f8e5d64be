package channel

import (
	"sort"
	"strconv"
)

const (
	TypeUnknown     = 0
	TypeOpenAI      = 1
	TypeAzure       = 3
	TypeCloseAI     = 4
	TypeOpenAISB    = 5
	TypeCustom      = 8
	TypeAIProxy     = 10
	TypeAPI2GPT     = 12
	TypeAIGC2D      = 13
	TypeAnthropic   = 14
	TypeBaidu       = 15
	TypeZhipu       = 16
	TypeAli         = 17
	TypeXunfei      = 18
	TypeAI360       = 19
	TypeOpenRouter  = 20
	TypeTencent     = 23
	TypeGemini      = 24
	TypeMoonshot    = 25
	TypeAwsClaude   = 33
	TypeDeepSeek    = 36
	TypeSiliconFlow = 44
)

// TypeLabel is a display label with the badge color used by the web console.
type TypeLabel struct {
	Value int    `json:"value"`
	Text  string `json:"text"`
	Color string `json:"color"`
}

// typeLabels is fixed at program start and never written afterwards.
var typeLabels = map[int]TypeLabel{
	TypeUnknown:     {TypeUnknown, "Unknown type", "grey"},
	TypeOpenAI:      {TypeOpenAI, "OpenAI", "green"},
	TypeAzure:       {TypeAzure, "Azure OpenAI", "olive"},
	TypeCloseAI:     {TypeCloseAI, "CloseAI", "teal"},
	TypeOpenAISB:    {TypeOpenAISB, "OpenAI-SB", "brown"},
	TypeCustom:      {TypeCustom, "Custom", "pink"},
	TypeAIProxy:     {TypeAIProxy, "AI Proxy", "purple"},
	TypeAPI2GPT:     {TypeAPI2GPT, "API2GPT", "blue"},
	TypeAIGC2D:      {TypeAIGC2D, "AIGC2D", "purple"},
	TypeAnthropic:   {TypeAnthropic, "Anthropic Claude", "black"},
	TypeBaidu:       {TypeBaidu, "Baidu Wenxin", "blue"},
	TypeZhipu:       {TypeZhipu, "Zhipu ChatGLM", "violet"},
	TypeAli:         {TypeAli, "Ali Tongyi", "orange"},
	TypeXunfei:      {TypeXunfei, "Xunfei Spark", "blue"},
	TypeAI360:       {TypeAI360, "360 ZhiNao", "green"},
	TypeOpenRouter:  {TypeOpenRouter, "OpenRouter", "black"},
	TypeTencent:     {TypeTencent, "Tencent Hunyuan", "teal"},
	TypeGemini:      {TypeGemini, "Google Gemini", "blue"},
	TypeMoonshot:    {TypeMoonshot, "Moonshot AI", "black"},
	TypeAwsClaude:   {TypeAwsClaude, "AWS Claude", "black"},
	TypeDeepSeek:    {TypeDeepSeek, "DeepSeek", "black"},
	TypeSiliconFlow: {TypeSiliconFlow, "SiliconFlow", "blue"},
}

// LabelForType falls back to the numeric value for types the table does not know.
func LabelForType(t int) TypeLabel {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return TypeLabel{Value: t, Text: strconv.Itoa(t)}
}

// TypeLabels lists every known type ordered by value.
func TypeLabels() []TypeLabel {
	out := make([]TypeLabel, 0, len(typeLabels))
	for _, l := range typeLabels {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}
