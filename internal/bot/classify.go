package bot

import "strings"

// Command is what a user message resolved to.
type Command int

const (
	CmdUnknown Command = iota
	CmdStart
	CmdHelp
	CmdKeyword
	CmdChannel
	CmdInfluencer
	CmdDaily
	CmdWeekly
	CmdHot
	CmdTrend
	CmdMulti
)

// Request is a classified user message.
type Request struct {
	Command Command
	Args    []string
}

// Keyword groups: any trigger word in a message maps to the canonical
// keyword the reports are built on.
var keywordGroups = []struct {
	canonical string
	triggers  []string
}{
	{"주식", []string{"주식", "증시", "코스피", "나스닥"}},
	{"부동산", []string{"부동산", "아파트", "집값"}},
	{"금리", []string{"금리", "기준금리", "연준"}},
	{"달러", []string{"달러", "환율", "원화"}},
}

var channelTriggers = []string{"체슬리", "언더스탠딩", "소수몽키"}

var influencerTriggers = []string{"박세익", "오건영", "홍춘욱", "김준송"}

// Classify routes a raw message to a command. Slash commands are explicit;
// everything else goes through trigger-word matching, most specific first.
// Unmatched text falls back to a keyword lookup on the whole message.
func Classify(text string) Request {
	text = strings.TrimSpace(text)
	if text == "" {
		return Request{Command: CmdUnknown}
	}

	if strings.HasPrefix(text, "/") {
		return classifySlash(text)
	}

	// Influencer and channel names beat keyword groups; a message naming a
	// person is asking about that person's view.
	for _, name := range influencerTriggers {
		if strings.Contains(text, name) {
			return Request{Command: CmdInfluencer, Args: []string{name}}
		}
	}
	for _, name := range channelTriggers {
		if strings.Contains(text, name) {
			return Request{Command: CmdChannel, Args: []string{name}}
		}
	}

	if containsAny(text, "핫", "인기", "화제") {
		return Request{Command: CmdHot}
	}
	if containsAny(text, "트렌드", "추세") {
		kw := firstKeywordIn(text)
		if kw == "" {
			kw = "주식"
		}
		return Request{Command: CmdTrend, Args: []string{kw}}
	}
	if containsAny(text, "주간", "위클리") {
		return Request{Command: CmdWeekly}
	}

	if kw := firstKeywordIn(text); kw != "" {
		return Request{Command: CmdKeyword, Args: []string{kw}}
	}

	if containsAny(text, "오늘", "일일", "투자", "시장", "리포트") {
		return Request{Command: CmdDaily}
	}

	return Request{Command: CmdUnknown}
}

func classifySlash(text string) Request {
	fields := strings.Fields(text)
	cmd := strings.ToLower(fields[0])
	// Strip bot mention suffix, e.g. /daily@my_bot.
	if at := strings.Index(cmd, "@"); at > 0 {
		cmd = cmd[:at]
	}
	args := fields[1:]

	switch cmd {
	case "/start":
		return Request{Command: CmdStart}
	case "/help":
		return Request{Command: CmdHelp}
	case "/keyword":
		return Request{Command: CmdKeyword, Args: args}
	case "/channel":
		return Request{Command: CmdChannel, Args: args}
	case "/influencer":
		return Request{Command: CmdInfluencer, Args: args}
	case "/daily":
		return Request{Command: CmdDaily}
	case "/weekly":
		return Request{Command: CmdWeekly}
	case "/hot":
		return Request{Command: CmdHot}
	case "/trend":
		return Request{Command: CmdTrend, Args: args}
	case "/multi":
		return Request{Command: CmdMulti, Args: args}
	default:
		return Request{Command: CmdUnknown}
	}
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func firstKeywordIn(text string) string {
	for _, group := range keywordGroups {
		for _, trigger := range group.triggers {
			if strings.Contains(text, trigger) {
				return group.canonical
			}
		}
	}
	return ""
}
